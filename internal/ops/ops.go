// Package ops holds the command-level operations shared by the CLI, the MCP
// server and the web UI. Each operation takes an Input and returns an Output.
package ops

import (
	"fmt"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
)

// Pagination limits
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// RowRef addresses one row, either by 1-based position in the collection or
// by its identity triple (word, sense, created_at).
type RowRef struct {
	Row       int    `json:"row,omitempty"`
	Word      string `json:"word,omitempty"`
	Sense     string `json:"sense,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ResolveRow validates ref against c and returns the row identity.
// Rules:
// - Must use exactly one addressing mode: row OR the identity triple
// - A position outside 1..len(c) is NOT_FOUND
// - A triple is not checked for existence; staging a vanished row is a no-op
func ResolveRow(c glossary.Collection, ref RowRef) (glossary.RowID, error) {
	hasTriple := ref.Word != "" || ref.Sense != "" || ref.CreatedAt != ""
	if ref.Row != 0 && hasTriple {
		return "", errors.NewInvalidRequest("specify either row or word/sense/created_at, not both")
	}
	if ref.Row != 0 {
		if ref.Row < 1 || ref.Row > len(c) {
			return "", errors.NewNotFound(rowLabel(ref.Row))
		}
		return glossary.IdentityOf(c[ref.Row-1]), nil
	}
	if !hasTriple {
		return "", errors.NewInvalidRequest("must specify row or word/sense/created_at")
	}
	return glossary.NewRowID(ref.Word, ref.Sense, ref.CreatedAt), nil
}

// positionOf returns the 1-based position of id in c, or 0.
func positionOf(c glossary.Collection, id glossary.RowID) int {
	return glossary.FindIndex(c, id) + 1
}

func rowLabel(n int) string {
	return fmt.Sprintf("row %d", n)
}
