package glossary

import "time"

// TimeLayout is the createdAt format: UTC, millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// GeneralSense labels the general (non-domain) meaning of a word.
const GeneralSense = "General"

// Record is one glossary entry. JSON keys match the durable layout
// written by earlier versions of the glossary.
type Record struct {
	Word          string `json:"word"`
	Sense         string `json:"sense"`
	DefinitionEn  string `json:"definition_en"`
	TranslationJa string `json:"translation_ja"`
	ExampleEn     string `json:"example_en"`
	Note          string `json:"note"`

	// CreatedAt is assigned once at append time and never edited.
	CreatedAt string `json:"createdAt"`
}

// Collection is the ordered list of records; order is insertion order.
type Collection []Record

// Clone returns a deep copy. Records hold only strings, so a fresh
// backing array is enough to make the copy independent.
func (c Collection) Clone() Collection {
	if c == nil {
		return Collection{}
	}
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// Equal reports whether both collections hold the same records in the same order.
func (c Collection) Equal(other Collection) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// FormatTime renders t in the createdAt layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Field names an editable record attribute.
type Field string

const (
	FieldWord          Field = "word"
	FieldSense         Field = "sense"
	FieldDefinitionEn  Field = "definition_en"
	FieldTranslationJa Field = "translation_ja"
	FieldExampleEn     Field = "example_en"
	FieldNote          Field = "note"
)

// EditableFields lists the fields in display order. createdAt is not editable.
var EditableFields = []Field{
	FieldWord,
	FieldSense,
	FieldDefinitionEn,
	FieldTranslationJa,
	FieldExampleEn,
	FieldNote,
}

// ParseField maps a field name to a Field. Dashed and camel-case
// spellings ("definition-en", "definitionEn") are accepted too.
func ParseField(name string) (Field, bool) {
	switch name {
	case "word":
		return FieldWord, true
	case "sense":
		return FieldSense, true
	case "definition_en", "definition-en", "definitionEn":
		return FieldDefinitionEn, true
	case "translation_ja", "translation-ja", "translationJa":
		return FieldTranslationJa, true
	case "example_en", "example-en", "exampleEn":
		return FieldExampleEn, true
	case "note":
		return FieldNote, true
	}
	return "", false
}

// Get returns the value of field f.
func (r Record) Get(f Field) string {
	switch f {
	case FieldWord:
		return r.Word
	case FieldSense:
		return r.Sense
	case FieldDefinitionEn:
		return r.DefinitionEn
	case FieldTranslationJa:
		return r.TranslationJa
	case FieldExampleEn:
		return r.ExampleEn
	case FieldNote:
		return r.Note
	}
	return ""
}

// Set assigns v to field f. It reports false for a non-editable field.
func (r *Record) Set(f Field, v string) bool {
	switch f {
	case FieldWord:
		r.Word = v
	case FieldSense:
		r.Sense = v
	case FieldDefinitionEn:
		r.DefinitionEn = v
	case FieldTranslationJa:
		r.TranslationJa = v
	case FieldExampleEn:
		r.ExampleEn = v
	case FieldNote:
		r.Note = v
	default:
		return false
	}
	return true
}
