package ops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/editor"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/lookup"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/metrics"
)

// LookupInput contains parameters for the Lookup operation.
type LookupInput struct {
	Term string `json:"term"` // required
	// Save lists the card senses to send to the glossary ("General" or a
	// domain name). Matching ignores case. "all" saves every card.
	Save []string `json:"save,omitempty"`
}

// Card is one sense of a looked-up term, ready to become a record.
type Card struct {
	Word          string `json:"word"`
	Sense         string `json:"sense"`
	DefinitionEn  string `json:"definition_en"`
	TranslationJa string `json:"translation_ja"`
}

// Record converts the card to an unstamped glossary record.
func (c Card) Record() glossary.Record {
	return glossary.Record{
		Word:          c.Word,
		Sense:         c.Sense,
		DefinitionEn:  c.DefinitionEn,
		TranslationJa: c.TranslationJa,
	}
}

// LookupOutput contains the result of the Lookup operation.
type LookupOutput struct {
	Term     string            `json:"term"`
	Result   *lookup.Result    `json:"result"`
	Cards    []Card            `json:"cards"`
	Saved    []glossary.Record `json:"saved,omitempty"`
	Records  int               `json:"records,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

// Lookup asks the definition service about a term and optionally appends
// selected cards to the glossary.
func Lookup(ctx context.Context, ed *editor.Editor, client lookup.Client, m *metrics.Metrics, input LookupInput) (*LookupOutput, error) {
	term, err := lookup.NormalizeTerm(input.Term)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := client.Define(ctx, term)
	m.Lookup(start, err)
	if err != nil {
		return nil, err
	}
	result := lookup.Shape(term, raw)
	cards := Cards(result)

	out := &LookupOutput{Term: term, Result: result, Cards: cards}
	if len(input.Save) == 0 {
		return out, nil
	}

	chosen, err := selectCards(cards, input.Save)
	if err != nil {
		return nil, err
	}
	recs := make([]glossary.Record, len(chosen))
	for i, c := range chosen {
		recs[i] = c.Record()
	}
	saved, res := ed.Append(ctx, recs...)
	out.Saved = saved
	out.Records = res.Records
	out.Warnings = res.Warnings
	return out, nil
}

// Cards returns the General card followed by one card per domain sense.
func Cards(r *lookup.Result) []Card {
	cards := []Card{{
		Word:          r.Headword,
		Sense:         glossary.GeneralSense,
		DefinitionEn:  r.General.DefinitionEn,
		TranslationJa: r.General.TranslationJa,
	}}
	for _, d := range r.Domains {
		cards = append(cards, Card{
			Word:          r.Headword,
			Sense:         d.Domain,
			DefinitionEn:  d.DefinitionEn,
			TranslationJa: d.TranslationJa,
		})
	}
	return cards
}

func selectCards(cards []Card, senses []string) ([]Card, error) {
	for _, s := range senses {
		if strings.EqualFold(strings.TrimSpace(s), "all") {
			return cards, nil
		}
	}
	var chosen []Card
	for _, s := range senses {
		s = strings.TrimSpace(s)
		found := false
		for _, c := range cards {
			if strings.EqualFold(c.Sense, s) {
				chosen = append(chosen, c)
				found = true
				break
			}
		}
		if !found {
			available := make([]string, len(cards))
			for i, c := range cards {
				available[i] = c.Sense
			}
			return nil, errors.NewInvalidRequest(fmt.Sprintf("no card with sense %q; available: %s", s, strings.Join(available, ", ")))
		}
	}
	return chosen, nil
}
