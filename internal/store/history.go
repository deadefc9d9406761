package store

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/logging"
)

// HistoryState is the durable form of the undo/redo stacks, oldest first.
type HistoryState struct {
	Undo []glossary.Collection `json:"undo"`
	Redo []glossary.Collection `json:"redo"`
}

// HistoryStore reads and writes HistoryState under HistoryKey.
type HistoryStore struct {
	kv  KV
	log *slog.Logger
}

func NewHistoryStore(kv KV, log *slog.Logger) *HistoryStore {
	return &HistoryStore{kv: kv, log: logging.OrNop(log).With("component", "history")}
}

// Load returns the persisted stacks. Each stack is decoded on its own: a
// malformed or non-array stack loads as empty without discarding the other.
func (h *HistoryStore) Load(ctx context.Context) HistoryState {
	st := HistoryState{Undo: []glossary.Collection{}, Redo: []glossary.Collection{}}

	raw, ok, err := h.kv.Get(ctx, HistoryKey)
	if err != nil {
		h.log.Warn("history load failed, starting empty", "key", HistoryKey, "error", err)
		return st
	}
	if !ok {
		return st
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		h.log.Warn("history data unreadable, starting empty", "key", HistoryKey, "error", err)
		return st
	}
	st.Undo = h.decodeStack("undo", fields["undo"])
	st.Redo = h.decodeStack("redo", fields["redo"])
	return st
}

func (h *HistoryStore) decodeStack(name string, raw json.RawMessage) []glossary.Collection {
	if len(raw) == 0 {
		return []glossary.Collection{}
	}
	var stack []glossary.Collection
	if err := json.Unmarshal(raw, &stack); err != nil {
		h.log.Warn("history stack unreadable, dropping it", "stack", name, "error", err)
		return []glossary.Collection{}
	}
	for i := range stack {
		if stack[i] == nil {
			stack[i] = glossary.Collection{}
		}
	}
	if stack == nil {
		stack = []glossary.Collection{}
	}
	return stack
}

// Save writes both stacks.
func (h *HistoryStore) Save(ctx context.Context, st HistoryState) error {
	if st.Undo == nil {
		st.Undo = []glossary.Collection{}
	}
	if st.Redo == nil {
		st.Redo = []glossary.Collection{}
	}
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := h.kv.Put(ctx, HistoryKey, string(data)); err != nil {
		h.log.Warn("history save failed", "key", HistoryKey, "undo", len(st.Undo), "redo", len(st.Redo), "error", err)
		return err
	}
	return nil
}
