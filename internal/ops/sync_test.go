package ops

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/sheets"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/store"
)

// fakeSheet records appended rows in memory.
type fakeSheet struct {
	title     string
	existing  map[string]bool
	batches   [][][]string
	appendErr error
}

func (s *fakeSheet) Title() string { return s.title }

func (s *fakeSheet) CreatedAts(ctx context.Context) (map[string]bool, error) {
	return s.existing, nil
}

func (s *fakeSheet) AppendRows(ctx context.Context, rows [][]string) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.batches = append(s.batches, rows)
	for _, r := range rows {
		s.existing[r[sheets.CreatedAtColumn]] = true
	}
	return nil
}

type fakeOpener struct {
	sheets map[string]*fakeSheet
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{sheets: make(map[string]*fakeSheet)}
}

func (o *fakeOpener) Open(ctx context.Context, title string) (sheets.Sheet, bool, error) {
	if s, ok := o.sheets[title]; ok {
		return s, false, nil
	}
	s := &fakeSheet{title: title, existing: make(map[string]bool)}
	o.sheets[title] = s
	return s, true, nil
}

func TestSync_SendsOnlyNewRecords(t *testing.T) {
	ctx := context.Background()
	ed, kv := newTestEditor(t, sampleRecords()...)
	opener := newFakeOpener()

	out, err := Sync(ctx, ed, kv, opener, nil, SyncInput{ClassName: " 2-B "})
	require.NoError(t, err)
	require.Equal(t, "Glossary Data – 2-B", out.Title)
	require.Equal(t, "2-B", out.ClassName)
	require.True(t, out.Created)
	require.Equal(t, 3, out.Sent)
	require.Equal(t, 0, out.Skipped)

	name, err := store.ClassName(ctx, kv)
	require.NoError(t, err)
	require.Equal(t, "2-B", name)

	_, err = Add(ctx, ed, AddInput{Word: "recast"})
	require.NoError(t, err)

	again, err := Sync(ctx, ed, kv, opener, nil, SyncInput{})
	require.NoError(t, err)
	require.Equal(t, "Glossary Data – 2-B", again.Title, "remembered class name is used")
	require.False(t, again.Created)
	require.Equal(t, 1, again.Sent)
	require.Equal(t, 3, again.Skipped)

	sheet := opener.sheets["Glossary Data – 2-B"]
	require.Len(t, sheet.batches, 2)
	require.Equal(t, "recast", sheet.batches[1][0][0])
}

func TestSync_NothingNewIsNotError(t *testing.T) {
	ctx := context.Background()
	ed, kv := newTestEditor(t, sampleRecords()...)
	opener := newFakeOpener()

	_, err := Sync(ctx, ed, kv, opener, nil, SyncInput{})
	require.NoError(t, err)
	out, err := Sync(ctx, ed, kv, opener, nil, SyncInput{})
	require.NoError(t, err)
	require.Equal(t, "Glossary Data", out.Title)
	require.Equal(t, 0, out.Sent)
	require.Equal(t, 3, out.Skipped)
}

func TestSync_Chunks(t *testing.T) {
	ctx := context.Background()
	recs := make([]glossary.Record, sheets.ChunkSize+5)
	for i := range recs {
		recs[i] = glossary.Record{Word: "w", Sense: "General"}
	}
	ed, kv := newTestEditor(t, recs...)
	opener := newFakeOpener()

	out, err := Sync(ctx, ed, kv, opener, nil, SyncInput{ClassName: "big"})
	require.NoError(t, err)
	require.Equal(t, sheets.ChunkSize+5, out.Sent)

	batches := opener.sheets[sheets.TitleFor("big")].batches
	require.Len(t, batches, 2)
	require.Len(t, batches[0], sheets.ChunkSize)
	require.Len(t, batches[1], 5)
}

func TestSync_EmptyGlossary(t *testing.T) {
	ed, kv := newTestEditor(t)
	_, err := Sync(context.Background(), ed, kv, newFakeOpener(), nil, SyncInput{})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
}

func TestSync_AppendFailure(t *testing.T) {
	ctx := context.Background()
	ed, kv := newTestEditor(t, sampleRecords()...)
	opener := newFakeOpener()
	opener.sheets["Glossary Data"] = &fakeSheet{
		title:     "Glossary Data",
		existing:  map[string]bool{},
		appendErr: stderrors.New("quota exceeded"),
	}

	_, err := Sync(ctx, ed, kv, opener, nil, SyncInput{})
	require.True(t, errors.Is(err, errors.ErrSyncFailed), "got %v", err)
}

func TestSync_StampsMissingCreatedAt(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Put(ctx, store.CollectionKey, `[{"word":"old","sense":"General"}]`))
	ed, _ := newTestEditorOn(t, kv)
	opener := newFakeOpener()

	out, err := Sync(ctx, ed, kv, opener, nil, SyncInput{})
	require.NoError(t, err)
	require.Equal(t, 1, out.Sent)
	row := opener.sheets["Glossary Data"].batches[0][0]
	require.NotEmpty(t, row[sheets.CreatedAtColumn])
	require.Empty(t, ed.Collection()[0].CreatedAt, "stored record is not modified")
}
