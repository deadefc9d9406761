package glossary

import "strings"

// idSeparator joins the identity parts. The ASCII unit separator does not
// occur in typed glossary text.
const idSeparator = "\x1f"

// RowID identifies a record by its word, sense and createdAt.
// Two records with identical triples share an ID; lookups hit the first.
type RowID string

// NewRowID composes a RowID from its parts.
func NewRowID(word, sense, createdAt string) RowID {
	return RowID(word + idSeparator + sense + idSeparator + createdAt)
}

// IdentityOf returns the RowID of r.
func IdentityOf(r Record) RowID {
	return NewRowID(r.Word, r.Sense, r.CreatedAt)
}

// Parts splits id back into word, sense and createdAt.
func (id RowID) Parts() (word, sense, createdAt string, ok bool) {
	parts := strings.Split(string(id), idSeparator)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// String renders the ID with a readable separator.
func (id RowID) String() string {
	return strings.ReplaceAll(string(id), idSeparator, " | ")
}

// FindIndex returns the index of the first record whose identity equals id,
// or -1. Matching is exact; no normalization is applied.
func FindIndex(c Collection, id RowID) int {
	for i := range c {
		if IdentityOf(c[i]) == id {
			return i
		}
	}
	return -1
}
