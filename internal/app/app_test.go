package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/config"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/logging"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/lookup"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/sheets"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/store"
)

func TestOpen_PersistsAcrossProcesses(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := config.DefaultConfig()

	a, err := Open(ctx, cfg, dir, nil)
	require.NoError(t, err)
	a.Editor.Append(ctx, glossary.Record{Word: "recast", Sense: "SLA"})
	a.Editor.BeginEdit()
	id := glossary.IdentityOf(a.Editor.Collection()[0])
	_, err = a.Editor.Stage(id, glossary.FieldNote, "feedback move")
	require.NoError(t, err)
	a.Editor.Commit(ctx)
	require.NoError(t, a.Close())

	b, err := Open(ctx, cfg, dir, nil)
	require.NoError(t, err)
	defer b.Close()

	st := b.Editor.State()
	require.Len(t, st.Records, 1)
	require.Equal(t, "feedback move", st.Records[0].Note)
	require.Equal(t, 1, st.UndoDepth)
}

type readOnlyKV struct {
	*store.MemoryKV
}

func (readOnlyKV) Put(context.Context, string, string) error {
	return errors.New("read-only")
}

func TestNew_WriteFailureLoggedOnce(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	log := logging.New(config.LogConfig{Level: "info", Format: "text"}, &buf, "")
	a := New(ctx, config.DefaultConfig(), t.TempDir(), log, readOnlyKV{store.NewMemoryKV()})

	_, res := a.Editor.Append(ctx, glossary.Record{Word: "recast"})
	require.Len(t, res.Warnings, 1)
	require.Equal(t, 1, strings.Count(buf.String(), "level=WARN"), buf.String())
}

func TestNew_DefaultsToMockLookup(t *testing.T) {
	a := New(context.Background(), config.DefaultConfig(), t.TempDir(), nil, store.NewMemoryKV())
	_, ok := a.Lookup.(lookup.Mock)
	require.True(t, ok)
}

func TestSheets_DirDriverUnderBaseDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a, err := Open(ctx, config.DefaultConfig(), dir, nil)
	require.NoError(t, err)
	defer a.Close()

	o, err := a.Sheets(ctx)
	require.NoError(t, err)
	dirOpener, ok := o.(*sheets.DirOpener)
	require.True(t, ok)

	_, created, err := dirOpener.Open(ctx, sheets.TitleFor(""))
	require.NoError(t, err)
	require.True(t, created)
	require.FileExists(t, filepath.Join(dir, "sheets", "Glossary Data.tsv"))

	again, err := a.Sheets(ctx)
	require.NoError(t, err)
	require.Same(t, o, again)
}
