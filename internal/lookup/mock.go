package lookup

import (
	"context"
	"fmt"
)

// Mock answers without a network, for offline use and tests.
type Mock struct{}

func (Mock) Define(ctx context.Context, term string) (*Result, error) {
	term, err := NormalizeTerm(term)
	if err != nil {
		return nil, err
	}
	return &Result{
		Headword:   term,
		DidYouMean: []string{},
		General: Sense{
			DefinitionEn:  fmt.Sprintf("A concise learner-style meaning of %q.", term),
			TranslationJa: "簡潔な定義。",
		},
		Domains:      []DomainSense{},
		RelatedForms: []RelatedForm{},
	}, nil
}
