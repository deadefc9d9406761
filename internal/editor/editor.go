// Package editor implements the staged-edit and undo/redo session over the
// glossary: a Viewing/Editing mode, a set of pending cell edits and bounded
// history, all persisted through the store package.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/logging"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/metrics"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/store"
)

// Mode is the editor state.
type Mode int

const (
	Viewing Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "viewing"
}

// ChangeKind names the operation behind a Change.
type ChangeKind string

const (
	ChangeAppend ChangeKind = "append"
	ChangeStage  ChangeKind = "stage"
	ChangeMode   ChangeKind = "mode"
	ChangeCommit ChangeKind = "commit"
	ChangeUndo   ChangeKind = "undo"
	ChangeRedo   ChangeKind = "redo"
	ChangeClear  ChangeKind = "clear"
	ChangeReload ChangeKind = "reload"
)

// Change is delivered to subscribers after every mutating operation.
type Change struct {
	Kind        ChangeKind
	Mode        Mode
	Records     int
	PendingRows int
	UndoDepth   int
	RedoDepth   int
	// Warnings lists durable writes that failed; memory state is still current.
	Warnings []string
}

// StageResult reports the outcome of staging one cell.
type StageResult struct {
	Accepted bool   `json:"accepted"`
	Staged   bool   `json:"staged"`
	Stale    bool   `json:"stale,omitempty"`
	Value    string `json:"value,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Pending  int    `json:"pending_rows"`
}

// CommitResult reports a commit.
type CommitResult struct {
	CommitStats
	Records   int      `json:"records"`
	UndoDepth int      `json:"undo_depth"`
	RedoDepth int      `json:"redo_depth"`
	Warnings  []string `json:"warnings,omitempty"`
}

// HistoryResult reports an undo or redo.
type HistoryResult struct {
	Applied   bool     `json:"applied"`
	Records   int      `json:"records"`
	UndoDepth int      `json:"undo_depth"`
	RedoDepth int      `json:"redo_depth"`
	Warnings  []string `json:"warnings,omitempty"`
}

// MutationResult reports an append, clear or reload.
type MutationResult struct {
	Records  int      `json:"records"`
	Warnings []string `json:"warnings,omitempty"`
}

// State is a consistent snapshot of the session.
type State struct {
	Mode      Mode
	Records   glossary.Collection
	Pending   []PendingEdit
	UndoDepth int
	RedoDepth int
}

// Option configures an Editor.
type Option func(*Editor)

func WithLogger(l *slog.Logger) Option { return func(e *Editor) { e.log = l } }

func WithClock(now func() time.Time) Option { return func(e *Editor) { e.now = now } }

func WithMaxHistory(n int) Option { return func(e *Editor) { e.maxHistory = n } }

func WithMetrics(m *metrics.Metrics) Option { return func(e *Editor) { e.metrics = m } }

// Editor is the single owner of the collection, pending edits and history.
// All methods are safe for concurrent use; they are serialized by one lock.
type Editor struct {
	mu         sync.Mutex
	mode       Mode
	records    *store.Records
	historyDB  *store.HistoryStore
	history    *History
	stager     *Stager
	maxHistory int

	log     *slog.Logger
	now     func() time.Time
	metrics *metrics.Metrics

	obsMu     sync.Mutex
	observers map[int]func(Change)
	nextObs   int
}

// New loads the collection and history from kv and returns a Viewing editor.
func New(ctx context.Context, kv store.KV, opts ...Option) *Editor {
	e := &Editor{
		now:        time.Now,
		maxHistory: DefaultMaxHistory,
		observers:  make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = logging.OrNop(e.log).With("component", "editor")

	e.records = store.OpenRecords(ctx, kv, e.log, e.now)
	e.historyDB = store.NewHistoryStore(kv, e.log)
	e.history = NewHistory(e.maxHistory)
	e.history.Restore(e.historyDB.Load(ctx))
	e.stager = NewStager()

	e.metrics.State(e.records.Len(), 0)
	return e
}

// Subscribe registers fn for change notifications and returns a function
// that removes it. fn runs outside the editor lock.
func (e *Editor) Subscribe(fn func(Change)) (unsubscribe func()) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	id := e.nextObs
	e.nextObs++
	e.observers[id] = fn
	return func() {
		e.obsMu.Lock()
		defer e.obsMu.Unlock()
		delete(e.observers, id)
	}
}

func (e *Editor) notify(ch Change) {
	e.obsMu.Lock()
	fns := make([]func(Change), 0, len(e.observers))
	for _, fn := range e.observers {
		fns = append(fns, fn)
	}
	e.obsMu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}
}

// changeLocked builds a Change from the current state. Caller holds mu.
func (e *Editor) changeLocked(kind ChangeKind, warnings []string) Change {
	undo, redo := e.history.Depth()
	e.metrics.State(e.records.Len(), e.stager.Rows())
	return Change{
		Kind:        kind,
		Mode:        e.mode,
		Records:     e.records.Len(),
		PendingRows: e.stager.Rows(),
		UndoDepth:   undo,
		RedoDepth:   redo,
		Warnings:    warnings,
	}
}

// Mode returns the current mode.
func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Collection returns a deep copy of the records.
func (e *Editor) Collection() glossary.Collection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.records.All()
}

// State returns a consistent snapshot of the whole session.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	undo, redo := e.history.Depth()
	return State{
		Mode:      e.mode,
		Records:   e.records.All(),
		Pending:   e.stager.Pending(),
		UndoDepth: undo,
		RedoDepth: redo,
	}
}

// BeginEdit enters Editing. Calling it while Editing is a no-op.
func (e *Editor) BeginEdit() {
	e.mu.Lock()
	if e.mode == Editing {
		e.mu.Unlock()
		return
	}
	e.mode = Editing
	ch := e.changeLocked(ChangeMode, nil)
	e.mu.Unlock()

	e.log.Debug("edit mode on")
	e.notify(ch)
}

// Stage validates raw for (id, field) and records it as pending.
// A row that no longer exists is a silent no-op (Stale). A rejected value
// returns a VALIDATION_FAILED error and leaves pending edits unchanged.
func (e *Editor) Stage(id glossary.RowID, field glossary.Field, raw string) (StageResult, error) {
	e.mu.Lock()
	if e.mode != Editing {
		e.mu.Unlock()
		return StageResult{}, errors.NewInvalidRequest("edit mode is off; begin editing first")
	}

	idx := glossary.FindIndex(e.records.View(), id)
	if idx < 0 {
		res := StageResult{Stale: true, Pending: e.stager.Rows()}
		e.mu.Unlock()
		e.metrics.Stage(metrics.StageStale)
		e.log.Debug("stage on missing row ignored", "row", id.String())
		return res, nil
	}

	v := glossary.Validate(field, raw)
	if !v.Accepted {
		res := StageResult{Reason: v.Reason, Pending: e.stager.Rows()}
		e.mu.Unlock()
		e.metrics.Stage(metrics.StageRejected)
		return res, errors.NewValidationFailed(string(field), v.Reason)
	}

	original := e.records.View()[idx].Get(field)
	e.stager.Stage(id, field, v.Value, original)
	res := StageResult{
		Accepted: true,
		Staged:   v.Value != original,
		Value:    v.Value,
		Pending:  e.stager.Rows(),
	}
	ch := e.changeLocked(ChangeStage, nil)
	e.mu.Unlock()

	if res.Staged {
		e.metrics.Stage(metrics.StageAccepted)
	} else {
		e.metrics.Stage(metrics.StageReverted)
	}
	e.notify(ch)
	return res, nil
}

// Commit applies pending edits as one undoable step and returns to Viewing.
// With nothing pending, or when every staged row has vanished, no undo
// point is recorded and the collection is untouched.
func (e *Editor) Commit(ctx context.Context) CommitResult {
	e.mu.Lock()

	var res CommitResult
	if e.stager.HasPending() {
		before := e.records.All()
		next, stats := e.stager.Commit(before)
		res.CommitStats = stats
		if stats.AppliedRows > 0 {
			e.history.RecordUndoPoint(before)
			res.Warnings = e.persistLocked(ctx, next)
		}
	}
	e.mode = Viewing
	res.Records = e.records.Len()
	res.UndoDepth, res.RedoDepth = e.history.Depth()
	ch := e.changeLocked(ChangeCommit, res.Warnings)
	e.mu.Unlock()

	e.metrics.Commit(res.AppliedRows)
	e.log.Info("commit", "applied_rows", res.AppliedRows, "applied_fields", res.AppliedFields, "skipped_rows", res.SkippedRows)
	e.notify(ch)
	return res
}

// Discard drops pending edits and returns to Viewing. No undo point is recorded.
func (e *Editor) Discard() {
	e.mu.Lock()
	dropped := e.stager.Rows()
	e.stager.Clear()
	e.mode = Viewing
	ch := e.changeLocked(ChangeMode, nil)
	e.mu.Unlock()

	if dropped > 0 {
		e.log.Info("pending edits discarded", "rows", dropped)
	}
	e.notify(ch)
}

// Undo restores the previous snapshot. Pending edits are discarded first;
// the mode is unchanged. Applied is false when there is nothing to undo.
func (e *Editor) Undo(ctx context.Context) HistoryResult {
	return e.travel(ctx, ChangeUndo, e.history.Undo)
}

// Redo re-applies the most recently undone snapshot.
func (e *Editor) Redo(ctx context.Context) HistoryResult {
	return e.travel(ctx, ChangeRedo, e.history.Redo)
}

func (e *Editor) travel(ctx context.Context, kind ChangeKind, step func(glossary.Collection) (glossary.Collection, bool)) HistoryResult {
	e.mu.Lock()
	e.stager.Clear()

	var res HistoryResult
	snap, ok := step(e.records.All())
	if ok {
		res.Applied = true
		res.Warnings = e.persistLocked(ctx, snap)
	}
	res.Records = e.records.Len()
	res.UndoDepth, res.RedoDepth = e.history.Depth()
	ch := e.changeLocked(kind, res.Warnings)
	e.mu.Unlock()

	e.metrics.History(string(kind), ok)
	if ok {
		e.log.Info(string(kind), "records", res.Records, "undo_depth", res.UndoDepth, "redo_depth", res.RedoDepth)
	}
	e.notify(ch)
	return res
}

// Append adds records unvalidated. Records without a createdAt get one;
// a present createdAt is kept.
// Pending edits are discarded, as for any external change.
func (e *Editor) Append(ctx context.Context, recs ...glossary.Record) ([]glossary.Record, MutationResult) {
	e.mu.Lock()
	e.stager.Clear()

	added := make([]glossary.Record, 0, len(recs))
	var warnings []string
	for _, r := range recs {
		stamped, err := e.records.Append(ctx, r)
		added = append(added, stamped)
		if err != nil {
			warnings = e.warn(warnings, store.CollectionKey, err)
		}
	}
	res := MutationResult{Records: e.records.Len(), Warnings: dedupe(warnings)}
	ch := e.changeLocked(ChangeAppend, res.Warnings)
	e.mu.Unlock()

	e.metrics.Append(len(added))
	e.notify(ch)
	return added, res
}

// ClearAll empties the collection. History is left as is and pending
// edits are discarded.
func (e *Editor) ClearAll(ctx context.Context) MutationResult {
	e.mu.Lock()
	e.stager.Clear()

	var warnings []string
	if err := e.records.ReplaceAll(ctx, glossary.Collection{}); err != nil {
		warnings = e.warn(warnings, store.CollectionKey, err)
	}
	res := MutationResult{Records: 0, Warnings: warnings}
	ch := e.changeLocked(ChangeClear, warnings)
	e.mu.Unlock()

	e.log.Info("glossary cleared")
	e.notify(ch)
	return res
}

// Reload re-reads collection and history from the durable store, e.g.
// after another process wrote to it. Pending edits are discarded.
func (e *Editor) Reload(ctx context.Context) MutationResult {
	e.mu.Lock()
	e.stager.Clear()
	e.records.Reload(ctx)
	e.history.Restore(e.historyDB.Load(ctx))
	res := MutationResult{Records: e.records.Len()}
	ch := e.changeLocked(ChangeReload, nil)
	e.mu.Unlock()

	e.notify(ch)
	return res
}

// persistLocked installs next as the collection and writes collection and
// history. Write failures become warnings. Caller holds mu.
func (e *Editor) persistLocked(ctx context.Context, next glossary.Collection) []string {
	var warnings []string
	if err := e.records.ReplaceAll(ctx, next); err != nil {
		warnings = e.warn(warnings, store.CollectionKey, err)
	}
	if err := e.historyDB.Save(ctx, e.history.State()); err != nil {
		warnings = e.warn(warnings, store.HistoryKey, err)
	}
	return warnings
}

func (e *Editor) warn(warnings []string, key string, err error) []string {
	e.metrics.PersistFailure(key)
	return append(warnings, fmt.Sprintf("could not save %s: %v", key, err))
}

func dedupe(in []string) []string {
	if len(in) < 2 {
		return in
	}
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
