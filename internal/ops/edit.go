package ops

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/editor"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
)

// ModeOutput reports the editor mode after a mode change.
type ModeOutput struct {
	Mode        string `json:"mode"`
	PendingRows int    `json:"pending_rows"`
}

// BeginEdit turns edit mode on.
func BeginEdit(ed *editor.Editor) *ModeOutput {
	ed.BeginEdit()
	return modeOutput(ed)
}

// Discard drops pending edits and turns edit mode off.
func Discard(ed *editor.Editor) *ModeOutput {
	ed.Discard()
	return modeOutput(ed)
}

func modeOutput(ed *editor.Editor) *ModeOutput {
	st := ed.State()
	return &ModeOutput{Mode: st.Mode.String(), PendingRows: pendingRows(st.Pending)}
}

// StageInput contains parameters for the Stage operation.
type StageInput struct {
	RowRef
	Field string `json:"field"` // required
	Value string `json:"value"`
}

// StageOutput contains the result of the Stage operation.
type StageOutput struct {
	Row   int    `json:"row,omitempty"`
	ID    string `json:"id"`
	Field string `json:"field"`
	editor.StageResult
}

// Stage validates a value for one cell and stages it. Edit mode must be on.
func Stage(ed *editor.Editor, input StageInput) (*StageOutput, error) {
	field, err := parseEditableField(input.Field)
	if err != nil {
		return nil, err
	}
	c := ed.Collection()
	id, err := ResolveRow(c, input.RowRef)
	if err != nil {
		return nil, err
	}

	res, err := ed.Stage(id, field, input.Value)
	if err != nil {
		return nil, err
	}
	return &StageOutput{
		Row:         positionOf(c, id),
		ID:          string(id),
		Field:       string(field),
		StageResult: res,
	}, nil
}

func parseEditableField(name string) (glossary.Field, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.NewInvalidRequest("field is required")
	}
	f, ok := glossary.ParseField(name)
	if !ok {
		names := make([]string, len(glossary.EditableFields))
		for i, ef := range glossary.EditableFields {
			names[i] = string(ef)
		}
		return "", errors.NewInvalidRequest(fmt.Sprintf("field %q is not editable; editable: %s", name, strings.Join(names, ", ")))
	}
	return f, nil
}

// Commit applies pending edits as one undoable step.
func Commit(ctx context.Context, ed *editor.Editor) *editor.CommitResult {
	res := ed.Commit(ctx)
	return &res
}

// PendingItem is one staged value with the row it belongs to.
type PendingItem struct {
	Row       int    `json:"row"` // 0 when the row no longer exists
	Word      string `json:"word"`
	Sense     string `json:"sense"`
	CreatedAt string `json:"created_at"`
	Field     string `json:"field"`
	Value     string `json:"value"`
	Original  string `json:"original"`
}

// PendingOutput contains the result of the Pending operation.
type PendingOutput struct {
	Mode  string        `json:"mode"`
	Rows  int           `json:"rows"`
	Items []PendingItem `json:"items"`
}

// Pending lists staged edits in row order.
func Pending(ed *editor.Editor) *PendingOutput {
	st := ed.State()
	items := make([]PendingItem, 0, len(st.Pending))
	for _, p := range st.Pending {
		word, sense, createdAt, _ := p.Row.Parts()
		item := PendingItem{
			Word:      word,
			Sense:     sense,
			CreatedAt: createdAt,
			Field:     string(p.Field),
			Value:     p.Value,
		}
		if idx := glossary.FindIndex(st.Records, p.Row); idx >= 0 {
			item.Row = idx + 1
			item.Original = st.Records[idx].Get(p.Field)
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Row < items[j].Row })
	return &PendingOutput{Mode: st.Mode.String(), Rows: pendingRows(st.Pending), Items: items}
}

// EditInput contains parameters for the one-shot Edit operation.
type EditInput struct {
	RowRef
	Set    map[string]string `json:"set"` // field -> raw value, required
	DryRun bool              `json:"dry_run,omitempty"`
}

// EditOutput contains the result of the Edit operation.
type EditOutput struct {
	Staged []StageOutput        `json:"staged"`
	DryRun bool                 `json:"dry_run,omitempty"`
	Commit *editor.CommitResult `json:"commit,omitempty"`
}

// Edit enters edit mode, stages every value in Set for one row and commits
// them as a single undoable step. A rejected value discards everything
// staged by this call and returns the validation error. With DryRun the
// values are validated and then discarded.
func Edit(ctx context.Context, ed *editor.Editor, input EditInput) (*EditOutput, error) {
	if len(input.Set) == 0 {
		return nil, errors.NewInvalidRequest("at least one field=value is required")
	}
	fields := make([]string, 0, len(input.Set))
	for name := range input.Set {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	ed.BeginEdit()
	out := &EditOutput{Staged: []StageOutput{}, DryRun: input.DryRun}
	for _, name := range fields {
		staged, err := Stage(ed, StageInput{RowRef: input.RowRef, Field: name, Value: input.Set[name]})
		if err != nil {
			ed.Discard()
			return nil, err
		}
		out.Staged = append(out.Staged, *staged)
	}

	if input.DryRun {
		ed.Discard()
		return out, nil
	}
	out.Commit = Commit(ctx, ed)
	return out, nil
}
