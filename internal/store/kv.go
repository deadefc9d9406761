// Package store persists the glossary, its undo/redo history and small
// settings in a durable key/value medium.
package store

import (
	"context"
	"database/sql"
	"sync"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/db"
)

// Durable keys. The names match the layout earlier versions wrote, so an
// exported dump of that data can be loaded as-is.
const (
	CollectionKey = "domainGlossary.v1"
	HistoryKey    = "domainGlossary.history.v2"
	ClassNameKey  = "gs.className"
)

// KV is a durable string key/value medium.
type KV interface {
	// Get returns the value for key; ok is false when key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string) error
}

// SQLiteKV stores values in the kv table.
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV wraps an initialized database (see db.Init).
func NewSQLiteKV(conn *sql.DB) *SQLiteKV {
	return &SQLiteKV{db: conn}
}

func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	return db.GetValue(ctx, s.db, key)
}

func (s *SQLiteKV) Put(ctx context.Context, key, value string) error {
	return db.PutValue(ctx, s.db, key, value)
}

// MemoryKV keeps values in process memory. Tests use it in place of SQLite.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
