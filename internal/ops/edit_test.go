package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
)

func TestStage_RequiresEditMode(t *testing.T) {
	ed, _ := newTestEditor(t, sampleRecords()...)

	_, err := Stage(ed, StageInput{RowRef: RowRef{Row: 1}, Field: "note", Value: "x"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
}

func TestStage_UnknownField(t *testing.T) {
	ed, _ := newTestEditor(t, sampleRecords()...)
	ed.BeginEdit()

	for _, f := range []string{"", "createdAt", "colour"} {
		_, err := Stage(ed, StageInput{RowRef: RowRef{Row: 1}, Field: f, Value: "x"})
		require.True(t, errors.Is(err, errors.ErrInvalidRequest), "field %q: got %v", f, err)
	}
}

func TestStage_Rejected(t *testing.T) {
	ed, _ := newTestEditor(t, sampleRecords()...)
	ed.BeginEdit()

	_, err := Stage(ed, StageInput{RowRef: RowRef{Row: 1}, Field: "definition_en", Value: "   "})
	require.True(t, errors.Is(err, errors.ErrValidationFailed), "got %v", err)
	ge, ok := errors.As(err)
	require.True(t, ok)
	require.Equal(t, glossary.ReasonRequired, ge.Details["reason"])
	require.Empty(t, Pending(ed).Items)
}

func TestStage_StaleTripleIsNoOp(t *testing.T) {
	ed, _ := newTestEditor(t, sampleRecords()...)
	ed.BeginEdit()

	out, err := Stage(ed, StageInput{
		RowRef: RowRef{Word: "gone", Sense: "x", CreatedAt: "2020-01-01T00:00:00.000Z"},
		Field:  "note",
		Value:  "x",
	})
	require.NoError(t, err)
	require.True(t, out.Stale)
	require.Equal(t, 0, out.Row)
	require.Empty(t, Pending(ed).Items)
}

func TestEditWorkflow_StageCommitUndoRedo(t *testing.T) {
	ctx := context.Background()
	ed, _ := newTestEditor(t, sampleRecords()...)
	before := ed.Collection()

	require.Equal(t, "editing", BeginEdit(ed).Mode)

	out, err := Stage(ed, StageInput{RowRef: RowRef{Row: 1}, Field: "example-en", Value: "a ;b;  c "})
	require.NoError(t, err)
	require.True(t, out.Staged)
	require.Equal(t, "a; b; c", out.Value)
	require.Equal(t, 1, out.Row)

	_, err = Stage(ed, StageInput{RowRef: RowRef{Row: 1}, Field: "note", Value: "check"})
	require.NoError(t, err)

	pending := Pending(ed)
	require.Equal(t, 1, pending.Rows)
	require.Len(t, pending.Items, 2)
	require.Equal(t, "scaffolding", pending.Items[0].Word)
	require.Equal(t, 1, pending.Items[0].Row)

	commit := Commit(ctx, ed)
	require.Equal(t, 1, commit.AppliedRows)
	require.Equal(t, 2, commit.AppliedFields)
	require.Equal(t, 1, commit.UndoDepth)
	require.Equal(t, "viewing", Status(ed).Mode)

	after := ed.Collection()
	require.Equal(t, "a; b; c", after[0].ExampleEn)
	require.Equal(t, "check", after[0].Note)

	undo := Undo(ctx, ed)
	require.True(t, undo.Applied)
	require.True(t, ed.Collection().Equal(before))

	redo := Redo(ctx, ed)
	require.True(t, redo.Applied)
	require.True(t, ed.Collection().Equal(after))

	st := Status(ed)
	require.True(t, st.CanUndo)
	require.False(t, st.CanRedo)
}

func TestDiscard_DropsPending(t *testing.T) {
	ed, _ := newTestEditor(t, sampleRecords()...)
	before := ed.Collection()
	BeginEdit(ed)
	_, err := Stage(ed, StageInput{RowRef: RowRef{Row: 2}, Field: "word", Value: "output"})
	require.NoError(t, err)

	out := Discard(ed)
	require.Equal(t, "viewing", out.Mode)
	require.Equal(t, 0, out.PendingRows)
	require.True(t, ed.Collection().Equal(before))
	require.Equal(t, 0, Status(ed).UndoDepth)
}

func TestEdit_OneShot(t *testing.T) {
	ctx := context.Background()
	ed, _ := newTestEditor(t, sampleRecords()...)

	out, err := Edit(ctx, ed, EditInput{
		RowRef: RowRef{Row: 3},
		Set:    map[string]string{"note": "everyday", "sense": "Everyday"},
	})
	require.NoError(t, err)
	require.Len(t, out.Staged, 2)
	require.NotNil(t, out.Commit)
	require.Equal(t, 1, out.Commit.AppliedRows)

	c := ed.Collection()
	require.Equal(t, "everyday", c[2].Note)
	require.Equal(t, "Everyday", c[2].Sense)
	require.Equal(t, 1, Status(ed).UndoDepth)
}

func TestEdit_DryRunLeavesCollection(t *testing.T) {
	ed, _ := newTestEditor(t, sampleRecords()...)
	before := ed.Collection()

	out, err := Edit(context.Background(), ed, EditInput{
		RowRef: RowRef{Row: 1},
		Set:    map[string]string{"note": "maybe"},
		DryRun: true,
	})
	require.NoError(t, err)
	require.True(t, out.DryRun)
	require.Nil(t, out.Commit)
	require.True(t, ed.Collection().Equal(before))
	require.Equal(t, "viewing", Status(ed).Mode)
}

func TestEdit_RejectedValueDiscardsAll(t *testing.T) {
	ed, _ := newTestEditor(t, sampleRecords()...)
	before := ed.Collection()

	_, err := Edit(context.Background(), ed, EditInput{
		RowRef: RowRef{Row: 1},
		Set:    map[string]string{"note": "fine", "word": ""},
	})
	require.True(t, errors.Is(err, errors.ErrValidationFailed), "got %v", err)
	require.True(t, ed.Collection().Equal(before))
	require.Empty(t, Pending(ed).Items)
	require.Equal(t, 0, Status(ed).UndoDepth)
}

func TestEdit_RequiresValues(t *testing.T) {
	ed, _ := newTestEditor(t, sampleRecords()...)
	_, err := Edit(context.Background(), ed, EditInput{RowRef: RowRef{Row: 1}})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	ed, _ := newTestEditor(t, sampleRecords()...)

	_, err := Clear(ctx, ed, ClearInput{})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
	require.Len(t, ed.Collection(), 3)

	res, err := Clear(ctx, ed, ClearInput{Confirm: true})
	require.NoError(t, err)
	require.Equal(t, 0, res.Records)
	require.Empty(t, ed.Collection())
}

func TestUndo_EmptyIsNotError(t *testing.T) {
	ed, _ := newTestEditor(t)
	require.False(t, Undo(context.Background(), ed).Applied)
	require.False(t, Redo(context.Background(), ed).Applied)
}
