package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/db"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
)

// failingKV wraps a MemoryKV and fails writes while failWrites is set.
type failingKV struct {
	*MemoryKV
	failWrites bool
}

func (f *failingKV) Put(ctx context.Context, key, value string) error {
	if f.failWrites {
		return errors.New("quota exceeded")
	}
	return f.MemoryKV.Put(ctx, key, value)
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func openSQLite(t *testing.T, dir string) *sql.DB {
	t.Helper()
	conn, err := db.Init(dir)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRecords_RoundTripSQLite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kv := NewSQLiteKV(openSQLite(t, dir))

	recs := OpenRecords(ctx, kv, nil, fixedClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
	require.Equal(t, 0, recs.Len())

	added, err := recs.Append(ctx, glossary.Record{Word: "latency", Sense: "Networking", DefinitionEn: "delay", TranslationJa: "遅延"})
	require.NoError(t, err)
	require.Equal(t, "2024-05-01T10:00:00.000Z", added.CreatedAt)

	// A second store over the same medium sees the same collection.
	reopened := OpenRecords(ctx, kv, nil, nil)
	require.True(t, reopened.All().Equal(recs.All()))
}

func TestRecords_AppendTimestampsIncrease(t *testing.T) {
	ctx := context.Background()
	recs := OpenRecords(ctx, NewMemoryKV(), nil, fixedClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))

	a, err := recs.Append(ctx, glossary.Record{Word: "cache", Sense: "General"})
	require.NoError(t, err)
	b, err := recs.Append(ctx, glossary.Record{Word: "cache", Sense: "General"})
	require.NoError(t, err)

	require.NotEqual(t, glossary.IdentityOf(a), glossary.IdentityOf(b))
	require.Equal(t, "2024-05-01T10:00:00.001Z", b.CreatedAt)
}

func TestRecords_AppendKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	recs := OpenRecords(ctx, kv, nil, fixedClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))

	got, err := recs.Append(ctx, glossary.Record{Word: "x", CreatedAt: "1999-01-01T00:00:00.000Z"})
	require.NoError(t, err)
	require.Equal(t, "1999-01-01T00:00:00.000Z", got.CreatedAt)

	reopened := OpenRecords(ctx, kv, nil, nil)
	require.Equal(t, "1999-01-01T00:00:00.000Z", reopened.All()[0].CreatedAt)
}

func TestRecords_AppendStampsMissingCreatedAt(t *testing.T) {
	ctx := context.Background()
	recs := OpenRecords(ctx, NewMemoryKV(), nil, fixedClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))

	got, err := recs.Append(ctx, glossary.Record{Word: "x"})
	require.NoError(t, err)
	require.Equal(t, "2024-05-01T10:00:00.000Z", got.CreatedAt)
}

func TestRecords_AppendStampsAfterKeptCreatedAt(t *testing.T) {
	ctx := context.Background()
	recs := OpenRecords(ctx, NewMemoryKV(), nil, fixedClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))

	_, err := recs.Append(ctx, glossary.Record{Word: "cache", Sense: "General", CreatedAt: "2024-05-01T10:00:00.000Z"})
	require.NoError(t, err)
	got, err := recs.Append(ctx, glossary.Record{Word: "cache", Sense: "General"})
	require.NoError(t, err)
	require.Equal(t, "2024-05-01T10:00:00.001Z", got.CreatedAt)
}

func TestRecords_CorruptLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	for name, raw := range map[string]string{
		"garbage":     "{not json",
		"object":      `{"word":"x"}`,
		"null":        "null",
		"wrong types": `[{"word": 7}]`,
	} {
		t.Run(name, func(t *testing.T) {
			kv := NewMemoryKV()
			require.NoError(t, kv.Put(ctx, CollectionKey, raw))

			recs := OpenRecords(ctx, kv, nil, nil)
			require.Equal(t, 0, recs.Len())
			require.NotNil(t, recs.All())
		})
	}
}

func TestRecords_LegacyLayoutLoads(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	legacy := `[{"word":"bandwidth","sense":"General","definition_en":"capacity","translation_ja":"帯域幅","example_en":"","note":"","createdAt":"2024-01-02T03:04:05.678Z","extra":"ignored"}]`
	require.NoError(t, kv.Put(ctx, CollectionKey, legacy))

	recs := OpenRecords(ctx, kv, nil, nil)
	require.Equal(t, 1, recs.Len())
	require.Equal(t, "帯域幅", recs.View()[0].TranslationJa)
	require.Equal(t, "2024-01-02T03:04:05.678Z", recs.View()[0].CreatedAt)
}

func TestRecords_WriteFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{MemoryKV: NewMemoryKV(), failWrites: true}
	recs := OpenRecords(ctx, kv, nil, nil)

	_, err := recs.Append(ctx, glossary.Record{Word: "jitter"})
	require.Error(t, err)
	require.Equal(t, 1, recs.Len(), "in-memory collection must keep the append")

	_, ok, _ := kv.Get(ctx, CollectionKey)
	require.False(t, ok)
}

func TestRecords_ReplaceAllCopies(t *testing.T) {
	ctx := context.Background()
	recs := OpenRecords(ctx, NewMemoryKV(), nil, nil)

	c := glossary.Collection{{Word: "a"}}
	require.NoError(t, recs.ReplaceAll(ctx, c))
	c[0].Word = "mutated"
	require.Equal(t, "a", recs.View()[0].Word)
}

func TestHistoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	hs := NewHistoryStore(kv, nil)

	st := HistoryState{
		Undo: []glossary.Collection{{}, {{Word: "a"}}},
		Redo: []glossary.Collection{{{Word: "b"}}},
	}
	require.NoError(t, hs.Save(ctx, st))

	got := hs.Load(ctx)
	require.Len(t, got.Undo, 2)
	require.Len(t, got.Redo, 1)
	require.Equal(t, "b", got.Redo[0][0].Word)
}

func TestHistoryStore_DefensiveLoad(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		raw      string
		wantUndo int
		wantRedo int
	}{
		{"garbage", "%%%", 0, 0},
		{"array instead of object", `[1,2]`, 0, 0},
		{"undo not an array", `{"undo": "x", "redo": [[]]}`, 0, 1},
		{"redo missing", `{"undo": [[], []]}`, 2, 0},
		{"null snapshot", `{"undo": [null], "redo": []}`, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := NewMemoryKV()
			require.NoError(t, kv.Put(ctx, HistoryKey, tt.raw))

			got := NewHistoryStore(kv, nil).Load(ctx)
			require.Len(t, got.Undo, tt.wantUndo)
			require.Len(t, got.Redo, tt.wantRedo)
			for _, snap := range got.Undo {
				require.NotNil(t, snap)
			}
		})
	}
}

func TestHistoryStore_SaveWritesEmptyArrays(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, NewHistoryStore(kv, nil).Save(ctx, HistoryState{}))

	raw, ok, _ := kv.Get(ctx, HistoryKey)
	require.True(t, ok)
	require.JSONEq(t, `{"undo":[],"redo":[]}`, raw)
}

func TestClassName(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	name, err := ClassName(ctx, kv)
	require.NoError(t, err)
	require.Empty(t, name)

	require.NoError(t, SetClassName(ctx, kv, "  2-B English "))
	name, err = ClassName(ctx, kv)
	require.NoError(t, err)
	require.Equal(t, "2-B English", name)
}
