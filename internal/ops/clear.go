package ops

import (
	"context"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/editor"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
)

// ClearInput contains parameters for the Clear operation.
type ClearInput struct {
	Confirm bool `json:"confirm"` // must be true
}

// Clear empties the glossary. Undo history is kept.
func Clear(ctx context.Context, ed *editor.Editor, input ClearInput) (*editor.MutationResult, error) {
	if !input.Confirm {
		return nil, errors.NewInvalidRequest("clearing the glossary requires confirm=true")
	}
	res := ed.ClearAll(ctx)
	return &res, nil
}
