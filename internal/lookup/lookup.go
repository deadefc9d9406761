// Package lookup asks the definition service for a term's general and
// domain-specific senses.
package lookup

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/config"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
)

// Limits applied when shaping a response.
const (
	MaxSuggestions = 3
	MaxDomains     = 3
)

// Client resolves a term into a Result.
type Client interface {
	Define(ctx context.Context, term string) (*Result, error)
}

// Result is the shaped definition-service response.
type Result struct {
	Headword     string        `json:"headword"`
	CorrectedTo  *string       `json:"corrected_to"`
	DidYouMean   []string      `json:"did_you_mean"`
	General      Sense         `json:"general"`
	Domains      []DomainSense `json:"domains"`
	RelatedForms []RelatedForm `json:"related_forms"`
}

// Sense is one meaning with its Japanese translation.
type Sense struct {
	DefinitionEn  string `json:"definition_en"`
	TranslationJa string `json:"translation_ja"`
}

// DomainSense is a specialist meaning, e.g. in Linguistics or SLA.
type DomainSense struct {
	Domain string `json:"domain"`
	Sense
}

// RelatedForm is a derived word form.
type RelatedForm struct {
	Form    string `json:"form"`
	Pos     string `json:"pos"`
	JaGloss string `json:"ja_gloss"`
}

// New returns the HTTP client when a service URL is configured, else the mock.
func New(cfg config.LookupConfig, log *slog.Logger) Client {
	if strings.TrimSpace(cfg.URL) == "" {
		return Mock{}
	}
	return NewHTTPClient(cfg.URL, time.Duration(cfg.TimeoutSeconds)*time.Second, log)
}

// NormalizeTerm trims term and rejects an empty one.
func NormalizeTerm(term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", errors.NewInvalidRequest("term is required (word or short phrase)")
	}
	return term, nil
}

// Shape applies the response limits: at most MaxSuggestions suggestions,
// only domains that name a domain and carry a definition (at most
// MaxDomains), and the typed term as headword when none is given.
func Shape(term string, r *Result) *Result {
	out := &Result{
		Headword:     strings.TrimSpace(r.Headword),
		General:      r.General,
		DidYouMean:   []string{},
		Domains:      []DomainSense{},
		RelatedForms: []RelatedForm{},
	}
	if out.Headword == "" {
		out.Headword = term
	}
	if r.CorrectedTo != nil && strings.TrimSpace(*r.CorrectedTo) != "" {
		c := strings.TrimSpace(*r.CorrectedTo)
		out.CorrectedTo = &c
	}
	for _, s := range r.DidYouMean {
		if len(out.DidYouMean) == MaxSuggestions {
			break
		}
		if s = strings.TrimSpace(s); s != "" {
			out.DidYouMean = append(out.DidYouMean, s)
		}
	}
	for _, d := range r.Domains {
		if len(out.Domains) == MaxDomains {
			break
		}
		if strings.TrimSpace(d.Domain) == "" || strings.TrimSpace(d.DefinitionEn) == "" {
			continue
		}
		out.Domains = append(out.Domains, d)
	}
	out.RelatedForms = append(out.RelatedForms, r.RelatedForms...)
	return out
}
