package editor

import (
	"sort"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
)

// PendingEdit is one staged field value awaiting commit.
type PendingEdit struct {
	Row   glossary.RowID `json:"-"`
	Field glossary.Field `json:"field"`
	Value string         `json:"value"`
}

// CommitStats reports what a commit did.
type CommitStats struct {
	// AppliedRows counts rows that were found and changed.
	AppliedRows int `json:"applied_rows"`
	// AppliedFields counts individual field values written.
	AppliedFields int `json:"applied_fields"`
	// SkippedRows counts staged rows that no longer exist.
	SkippedRows int `json:"skipped_rows"`
}

// Stager accumulates validated field edits keyed by row identity.
// It never touches a collection until Commit.
type Stager struct {
	pending map[glossary.RowID]map[glossary.Field]string
}

func NewStager() *Stager {
	return &Stager{pending: make(map[glossary.RowID]map[glossary.Field]string)}
}

// Stage records value for (id, field). When value equals original the
// entry is removed instead, and the row drops out once it has no fields.
// Staging the same value twice leaves the same state.
func (s *Stager) Stage(id glossary.RowID, field glossary.Field, value, original string) {
	if value == original {
		if fields, ok := s.pending[id]; ok {
			delete(fields, field)
			if len(fields) == 0 {
				delete(s.pending, id)
			}
		}
		return
	}
	fields, ok := s.pending[id]
	if !ok {
		fields = make(map[glossary.Field]string)
		s.pending[id] = fields
	}
	fields[field] = value
}

// HasPending reports whether any row has staged edits.
func (s *Stager) HasPending() bool {
	return len(s.pending) > 0
}

// Rows returns the number of rows with staged edits.
func (s *Stager) Rows() int {
	return len(s.pending)
}

// Value returns the staged value for (id, field), if any.
func (s *Stager) Value(id glossary.RowID, field glossary.Field) (string, bool) {
	v, ok := s.pending[id][field]
	return v, ok
}

// Pending lists staged edits in a stable order.
func (s *Stager) Pending() []PendingEdit {
	var out []PendingEdit
	for id, fields := range s.pending {
		for f, v := range fields {
			out = append(out, PendingEdit{Row: id, Field: f, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Field < out[j].Field
	})
	return out
}

// Commit applies every staged edit whose row still resolves in c to a deep
// copy of c and returns it. Rows that no longer resolve are skipped.
// Pending is cleared in all cases.
func (s *Stager) Commit(c glossary.Collection) (glossary.Collection, CommitStats) {
	next := c.Clone()
	var stats CommitStats

	ids := make([]glossary.RowID, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		idx := glossary.FindIndex(next, id)
		if idx < 0 {
			stats.SkippedRows++
			continue
		}
		for f, v := range s.pending[id] {
			if next[idx].Set(f, v) {
				stats.AppliedFields++
			}
		}
		stats.AppliedRows++
	}

	s.Clear()
	return next, stats
}

// Clear drops all staged edits.
func (s *Stager) Clear() {
	clear(s.pending)
}
