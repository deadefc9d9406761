package ops

import (
	"context"
	"strings"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/editor"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
)

// AddInput contains parameters for the Add operation.
type AddInput struct {
	Word          string `json:"word"`  // required
	Sense         string `json:"sense"` // default: General
	DefinitionEn  string `json:"definition_en"`
	TranslationJa string `json:"translation_ja"`
	ExampleEn     string `json:"example_en"`
	Note          string `json:"note"`
}

// AddOutput contains the result of the Add operation.
type AddOutput struct {
	Row      int             `json:"row"`
	ID       string          `json:"id"`
	Record   glossary.Record `json:"record"`
	Records  int             `json:"records"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Add appends one record through the unvalidated append path. Only the
// word is required; values are stored as given apart from trimming.
func Add(ctx context.Context, ed *editor.Editor, input AddInput) (*AddOutput, error) {
	word := strings.TrimSpace(input.Word)
	if word == "" {
		return nil, errors.NewInvalidRequest("word is required")
	}
	sense := strings.TrimSpace(input.Sense)
	if sense == "" {
		sense = glossary.GeneralSense
	}

	added, res := ed.Append(ctx, glossary.Record{
		Word:          word,
		Sense:         sense,
		DefinitionEn:  strings.TrimSpace(input.DefinitionEn),
		TranslationJa: strings.TrimSpace(input.TranslationJa),
		ExampleEn:     strings.TrimSpace(input.ExampleEn),
		Note:          strings.TrimSpace(input.Note),
	})
	rec := added[0]
	id := glossary.IdentityOf(rec)
	return &AddOutput{
		Row:      positionOf(ed.Collection(), id),
		ID:       string(id),
		Record:   rec,
		Records:  res.Records,
		Warnings: res.Warnings,
	}, nil
}
