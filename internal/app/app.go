// Package app wires configuration, the durable store and the collaborators
// into the single Editor a process works with. The CLI, the shell, the MCP
// server and the web UI all go through an App.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/config"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/db"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/editor"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/logging"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/lookup"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/metrics"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/sheets"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/store"
)

// App holds everything one process needs. Editor is the only owner of the
// glossary state; everything else is stateless or read-only.
type App struct {
	Config  *config.Config
	BaseDir string
	Log     *slog.Logger
	Metrics *metrics.Metrics
	KV      store.KV
	Editor  *editor.Editor
	Lookup  lookup.Client

	db *sql.DB

	sheetsMu sync.Mutex
	sheets   sheets.Opener
}

// Open opens the SQLite store under baseDir and wires an App over it.
// The caller must call Close.
func Open(ctx context.Context, cfg *config.Config, baseDir string, log *slog.Logger) (*App, error) {
	database, err := db.Init(baseDir)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	db.ConfigurePool(database, cfg)

	a := New(ctx, cfg, baseDir, log, store.NewSQLiteKV(database))
	a.db = database
	return a, nil
}

// New wires an App over an existing key/value medium.
func New(ctx context.Context, cfg *config.Config, baseDir string, log *slog.Logger, kv store.KV) *App {
	log = logging.OrNop(log)
	m := metrics.New()
	ed := editor.New(ctx, kv,
		editor.WithLogger(log),
		editor.WithMaxHistory(cfg.MaxHistory),
		editor.WithMetrics(m),
	)

	return &App{
		Config:  cfg,
		BaseDir: baseDir,
		Log:     log,
		Metrics: m,
		KV:      kv,
		Editor:  ed,
		Lookup:  lookup.New(cfg.Lookup, log),
	}
}

// Sheets returns the sync target, opening it on first use.
func (a *App) Sheets(ctx context.Context) (sheets.Opener, error) {
	a.sheetsMu.Lock()
	defer a.sheetsMu.Unlock()
	if a.sheets != nil {
		return a.sheets, nil
	}
	o, err := sheets.Open(ctx, a.Config.Sync, a.BaseDir)
	if err != nil {
		return nil, errors.NewSyncFailed(a.Config.Sync.Driver, err)
	}
	a.sheets = o
	return o, nil
}

// SetSheets replaces the sync target.
func (a *App) SetSheets(o sheets.Opener) {
	a.sheetsMu.Lock()
	defer a.sheetsMu.Unlock()
	a.sheets = o
}

// Close releases the database, if one was opened.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
