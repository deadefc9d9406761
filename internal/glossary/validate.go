package glossary

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Length limits, counted in characters (runes).
const (
	MaxWordChars         = 80
	MaxSenseChars        = 80
	MaxDefinitionChars   = 300
	MaxTranslationChars  = 200
	MaxNoteChars         = 160
	MaxExampleParts      = 3
	MaxExamplePartChars  = 40
	exampleJoinSeparator = "; "
)

// Rejection reasons.
const (
	ReasonRequired     = "Required"
	ReasonOneLine      = "One line only"
	ReasonTooManyParts = "≤ 3 items separated by ';'"
	ReasonPartTooLong  = "Each ≤ 40 chars"
	ReasonNotEditable  = "Not editable"
)

// whitespaceRegex matches runs of whitespace, including the Unicode space
// separators (no-break space, ideographic space) typed in Japanese text.
var whitespaceRegex = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)

// exampleSepRegex matches a ';' with any surrounding spaces.
var exampleSepRegex = regexp.MustCompile(`\s*;\s*`)

// Verdict is the outcome of validating one field value.
type Verdict struct {
	Accepted bool
	// Value is the normalized value to store when Accepted.
	Value string
	// Reason explains a rejection.
	Reason string
}

func accept(v string) Verdict   { return Verdict{Accepted: true, Value: v} }
func reject(why string) Verdict { return Verdict{Reason: why} }

// CollapseWhitespace trims s and collapses internal whitespace runs to one space.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// CountChars returns the character count as runes (not bytes).
func CountChars(s string) int {
	return utf8.RuneCountInString(s)
}

func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

func maxChars(n int) string {
	return fmt.Sprintf("≤ %d chars", n)
}

// Validate checks a raw user-entered value for field f and returns the
// normalized value or a reason. It is pure.
//
// Line breaks are checked on the raw value with its ends trimmed, so a
// trailing newline from a terminal does not count; every other rule
// applies to the whitespace-collapsed value.
func Validate(f Field, raw string) Verdict {
	v := CollapseWhitespace(raw)

	switch f {
	case FieldWord:
		if v == "" {
			return reject(ReasonRequired)
		}
		if CountChars(v) > MaxWordChars {
			return reject(maxChars(MaxWordChars))
		}
	case FieldSense:
		if CountChars(v) > MaxSenseChars {
			return reject(maxChars(MaxSenseChars))
		}
	case FieldDefinitionEn:
		if v == "" {
			return reject(ReasonRequired)
		}
		if CountChars(v) > MaxDefinitionChars {
			return reject(maxChars(MaxDefinitionChars))
		}
	case FieldTranslationJa:
		if v == "" {
			return reject(ReasonRequired)
		}
		if CountChars(v) > MaxTranslationChars {
			return reject(maxChars(MaxTranslationChars))
		}
	case FieldExampleEn:
		return validateExample(raw, v)
	case FieldNote:
		if hasLineBreak(strings.TrimSpace(raw)) {
			return reject(ReasonOneLine)
		}
		if CountChars(v) > MaxNoteChars {
			return reject(maxChars(MaxNoteChars))
		}
	default:
		return reject(ReasonNotEditable)
	}
	return accept(v)
}

func validateExample(raw, collapsed string) Verdict {
	if collapsed == "" {
		return accept("")
	}
	if hasLineBreak(strings.TrimSpace(raw)) {
		return reject(ReasonOneLine)
	}

	var parts []string
	for _, p := range strings.Split(exampleSepRegex.ReplaceAllString(collapsed, ";"), ";") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > MaxExampleParts {
		return reject(ReasonTooManyParts)
	}
	for _, p := range parts {
		if CountChars(p) > MaxExamplePartChars {
			return reject(ReasonPartTooLong)
		}
	}
	return accept(strings.Join(parts, exampleJoinSeparator))
}
