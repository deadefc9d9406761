package glossary

import "testing"

func TestRowID_RoundTrip(t *testing.T) {
	id := NewRowID("latency", "Networking", "2024-05-01T10:00:00.000Z")

	word, sense, createdAt, ok := id.Parts()
	if !ok {
		t.Fatal("Parts() ok = false")
	}
	if word != "latency" || sense != "Networking" || createdAt != "2024-05-01T10:00:00.000Z" {
		t.Errorf("Parts() = %q, %q, %q", word, sense, createdAt)
	}
}

func TestRowID_SeparatorInsideFields(t *testing.T) {
	// Pipes in user text must not break identity.
	r := Record{Word: "a|||b", Sense: "x|y", CreatedAt: "t"}
	c := Collection{{Word: "a", Sense: "b|||x|y", CreatedAt: "t"}, r}

	if got := FindIndex(c, IdentityOf(r)); got != 1 {
		t.Errorf("FindIndex = %d, want 1", got)
	}
}

func TestFindIndex(t *testing.T) {
	c := Collection{
		{Word: "cache", Sense: "General", CreatedAt: "t1"},
		{Word: "cache", Sense: "Computing", CreatedAt: "t2"},
	}

	tests := []struct {
		name string
		id   RowID
		want int
	}{
		{"first", NewRowID("cache", "General", "t1"), 0},
		{"second", NewRowID("cache", "Computing", "t2"), 1},
		{"sense differs", NewRowID("cache", "computing", "t2"), -1},
		{"no normalization", NewRowID(" cache", "General", "t1"), -1},
		{"empty collection id", NewRowID("", "", ""), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindIndex(c, tt.id); got != tt.want {
				t.Errorf("FindIndex = %d, want %d", got, tt.want)
			}
		})
	}

	if FindIndex(nil, NewRowID("cache", "General", "t1")) != -1 {
		t.Error("FindIndex on nil collection should be -1")
	}
}

func TestParts_Malformed(t *testing.T) {
	if _, _, _, ok := RowID("no-separators").Parts(); ok {
		t.Error("Parts() ok = true for malformed id")
	}
}
