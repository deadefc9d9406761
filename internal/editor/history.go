package editor

import (
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/store"
)

// DefaultMaxHistory caps each stack when no limit is configured.
const DefaultMaxHistory = 50

// History keeps bounded undo and redo stacks of full-collection snapshots.
// Stacks are ordered oldest first; the top is the last element.
type History struct {
	max  int
	undo []glossary.Collection
	redo []glossary.Collection
}

// NewHistory returns empty stacks capped at max entries each.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	return &History{max: max}
}

// Restore replaces both stacks with persisted state, keeping the newest
// max entries of each.
func (h *History) Restore(st store.HistoryState) {
	h.undo = h.trim(cloneStack(st.Undo))
	h.redo = h.trim(cloneStack(st.Redo))
}

// State returns a copy of both stacks for persistence.
func (h *History) State() store.HistoryState {
	return store.HistoryState{Undo: cloneStack(h.undo), Redo: cloneStack(h.redo)}
}

// RecordUndoPoint pushes a snapshot of prev onto undo and clears redo.
func (h *History) RecordUndoPoint(prev glossary.Collection) {
	h.undo = h.push(h.undo, prev)
	h.redo = nil
}

// Undo pops the newest undo snapshot, pushes current onto redo and
// returns the snapshot. ok is false when there is nothing to undo.
func (h *History) Undo(current glossary.Collection) (glossary.Collection, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = h.push(h.redo, current)
	return prev.Clone(), true
}

// Redo is the mirror of Undo.
func (h *History) Redo(current glossary.Collection) (glossary.Collection, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = h.push(h.undo, current)
	return next.Clone(), true
}

// Depth returns the sizes of the undo and redo stacks.
func (h *History) Depth() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

// push appends a deep copy of c and evicts from the bottom past max.
func (h *History) push(stack []glossary.Collection, c glossary.Collection) []glossary.Collection {
	return h.trim(append(stack, c.Clone()))
}

func (h *History) trim(stack []glossary.Collection) []glossary.Collection {
	if over := len(stack) - h.max; over > 0 {
		stack = append([]glossary.Collection(nil), stack[over:]...)
	}
	return stack
}

func cloneStack(stack []glossary.Collection) []glossary.Collection {
	out := make([]glossary.Collection, len(stack))
	for i, c := range stack {
		out[i] = c.Clone()
	}
	return out
}
