package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/logging"
)

// Records holds the ordered collection and mirrors it to CollectionKey.
// It is not safe for concurrent use; the editor serializes access.
type Records struct {
	kv    KV
	log   *slog.Logger
	now   func() time.Time
	items glossary.Collection
	last  time.Time
}

// OpenRecords loads the persisted collection. Absent, unreadable or
// malformed data yields an empty collection and a logged warning.
func OpenRecords(ctx context.Context, kv KV, log *slog.Logger, now func() time.Time) *Records {
	if now == nil {
		now = time.Now
	}
	r := &Records{
		kv:  kv,
		log: logging.OrNop(log).With("component", "records"),
		now: now,
	}
	r.items = r.load(ctx)
	return r
}

func (r *Records) load(ctx context.Context) glossary.Collection {
	raw, ok, err := r.kv.Get(ctx, CollectionKey)
	if err != nil {
		r.log.Warn("glossary load failed, starting empty", "key", CollectionKey, "error", err)
		return glossary.Collection{}
	}
	if !ok {
		return glossary.Collection{}
	}
	c, err := DecodeCollection([]byte(raw))
	if err != nil {
		r.log.Warn("glossary data unreadable, starting empty", "key", CollectionKey, "error", err)
		return glossary.Collection{}
	}
	return c
}

// DecodeCollection parses a JSON array of records. null decodes as empty.
func DecodeCollection(data []byte) (glossary.Collection, error) {
	var c glossary.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	if c == nil {
		c = glossary.Collection{}
	}
	return c, nil
}

// Reload re-reads the durable copy, replacing the in-memory collection.
func (r *Records) Reload(ctx context.Context) {
	r.items = r.load(ctx)
}

// All returns a deep copy of the collection.
func (r *Records) All() glossary.Collection {
	return r.items.Clone()
}

// View returns the live collection. Callers must not modify it.
func (r *Records) View() glossary.Collection {
	return r.items
}

// Len returns the number of records.
func (r *Records) Len() int {
	return len(r.items)
}

// Save writes the collection. A failed write leaves memory intact; the
// error is for the caller to surface as a warning.
func (r *Records) Save(ctx context.Context) error {
	data, err := json.Marshal(r.items)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if err := r.kv.Put(ctx, CollectionKey, string(data)); err != nil {
		r.log.Warn("glossary save failed", "key", CollectionKey, "records", len(r.items), "error", err)
		return err
	}
	return nil
}

// Append appends rec unvalidated and saves. A record without a createdAt
// is stamped with one; a present createdAt is kept. Stamps assigned by one
// Records are strictly increasing and never at or before a kept value seen
// earlier, so two quick appends of the same word and sense never share an
// identity.
func (r *Records) Append(ctx context.Context, rec glossary.Record) (glossary.Record, error) {
	if rec.CreatedAt == "" {
		ts := r.now().UTC().Truncate(time.Millisecond)
		if !ts.After(r.last) {
			ts = r.last.Add(time.Millisecond)
		}
		r.last = ts
		rec.CreatedAt = glossary.FormatTime(ts)
	} else if kept, err := time.Parse(glossary.TimeLayout, rec.CreatedAt); err == nil && kept.After(r.last) {
		r.last = kept
	}

	r.items = append(r.items, rec)
	return rec, r.Save(ctx)
}

// ReplaceAll swaps in a copy of c and saves.
func (r *Records) ReplaceAll(ctx context.Context, c glossary.Collection) error {
	r.items = c.Clone()
	return r.Save(ctx)
}
