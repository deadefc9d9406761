package ops

import (
	"context"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/editor"
)

// Undo restores the previous snapshot. An empty undo stack is not an error.
func Undo(ctx context.Context, ed *editor.Editor) *editor.HistoryResult {
	res := ed.Undo(ctx)
	return &res
}

// Redo re-applies the most recently undone snapshot.
func Redo(ctx context.Context, ed *editor.Editor) *editor.HistoryResult {
	res := ed.Redo(ctx)
	return &res
}

// StatusOutput summarizes the session.
type StatusOutput struct {
	Mode        string `json:"mode"`
	Records     int    `json:"records"`
	PendingRows int    `json:"pending_rows"`
	UndoDepth   int    `json:"undo_depth"`
	RedoDepth   int    `json:"redo_depth"`
	CanUndo     bool   `json:"can_undo"`
	CanRedo     bool   `json:"can_redo"`
}

// Status reports mode, record count and history depth.
func Status(ed *editor.Editor) *StatusOutput {
	st := ed.State()
	return &StatusOutput{
		Mode:        st.Mode.String(),
		Records:     len(st.Records),
		PendingRows: pendingRows(st.Pending),
		UndoDepth:   st.UndoDepth,
		RedoDepth:   st.RedoDepth,
		CanUndo:     st.UndoDepth > 0,
		CanRedo:     st.RedoDepth > 0,
	}
}
