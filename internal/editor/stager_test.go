package editor

import (
	"testing"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
)

func sampleCollection() glossary.Collection {
	return glossary.Collection{
		{Word: "latency", Sense: "Networking", DefinitionEn: "delay", TranslationJa: "遅延", CreatedAt: "2024-05-01T10:00:00.000Z"},
		{Word: "cache", Sense: "General", DefinitionEn: "hidden store", TranslationJa: "隠し場所", CreatedAt: "2024-05-01T10:00:01.000Z"},
		{Word: "cache", Sense: "Computing", DefinitionEn: "fast memory", TranslationJa: "キャッシュ", CreatedAt: "2024-05-01T10:00:02.000Z"},
	}
}

func TestStager_StageIsIdempotent(t *testing.T) {
	s := NewStager()
	id := glossary.IdentityOf(sampleCollection()[0])

	s.Stage(id, glossary.FieldNote, "check RTT", "")
	once := s.Pending()
	s.Stage(id, glossary.FieldNote, "check RTT", "")
	twice := s.Pending()

	if len(once) != 1 || len(twice) != 1 || once[0] != twice[0] {
		t.Errorf("Pending after repeat stage = %v, want %v", twice, once)
	}
}

func TestStager_StageBackToOriginalRemovesEntry(t *testing.T) {
	s := NewStager()
	id := glossary.IdentityOf(sampleCollection()[0])

	s.Stage(id, glossary.FieldDefinitionEn, "time to respond", "delay")
	s.Stage(id, glossary.FieldNote, "x", "")
	s.Stage(id, glossary.FieldDefinitionEn, "delay", "delay")

	if _, ok := s.Value(id, glossary.FieldDefinitionEn); ok {
		t.Error("definition still staged after reverting to original")
	}
	if s.Rows() != 1 {
		t.Fatalf("Rows() = %d, want 1", s.Rows())
	}

	s.Stage(id, glossary.FieldNote, "", "")
	if s.HasPending() {
		t.Error("HasPending() = true after reverting every field")
	}
}

func TestStager_CommitAppliesAllResolvable(t *testing.T) {
	c := sampleCollection()
	s := NewStager()
	s.Stage(glossary.IdentityOf(c[0]), glossary.FieldNote, "ping", "")
	s.Stage(glossary.IdentityOf(c[0]), glossary.FieldWord, "latencies", "latency")
	s.Stage(glossary.IdentityOf(c[2]), glossary.FieldExampleEn, "cache hit", "")
	s.Stage(glossary.NewRowID("gone", "", "t"), glossary.FieldNote, "x", "")

	next, stats := s.Commit(c)

	if stats.AppliedRows != 2 || stats.AppliedFields != 3 || stats.SkippedRows != 1 {
		t.Errorf("stats = %+v, want 2 rows, 3 fields, 1 skipped", stats)
	}
	if next[0].Word != "latencies" || next[0].Note != "ping" || next[2].ExampleEn != "cache hit" {
		t.Errorf("commit result = %+v", next)
	}
	if c[0].Word != "latency" {
		t.Error("Commit mutated its input")
	}
	if s.HasPending() {
		t.Error("pending not cleared after commit")
	}
}

func TestStager_CommitStaleRowIsNoOp(t *testing.T) {
	c := sampleCollection()
	s := NewStager()
	s.Stage(glossary.IdentityOf(c[1]), glossary.FieldNote, "n", "")

	next, stats := s.Commit(glossary.Collection{})

	if len(next) != 0 {
		t.Errorf("next = %v, want empty", next)
	}
	if stats.AppliedRows != 0 || stats.SkippedRows != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if s.HasPending() {
		t.Error("pending not cleared after stale commit")
	}
}

func TestStager_PendingOrderIsStable(t *testing.T) {
	c := sampleCollection()
	s := NewStager()
	s.Stage(glossary.IdentityOf(c[2]), glossary.FieldNote, "b", "")
	s.Stage(glossary.IdentityOf(c[2]), glossary.FieldExampleEn, "a", "")
	s.Stage(glossary.IdentityOf(c[1]), glossary.FieldNote, "c", "")

	p := s.Pending()
	if len(p) != 3 {
		t.Fatalf("len(Pending) = %d", len(p))
	}
	for i := 1; i < len(p); i++ {
		if p[i-1].Row > p[i].Row || (p[i-1].Row == p[i].Row && p[i-1].Field > p[i].Field) {
			t.Errorf("Pending not sorted: %v", p)
		}
	}
}
