package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/robalyx/steamfriends/internal/storage"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
	CREATE TABLE IF NOT EXISTS records (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (CAST(strftime('%s', 'now') AS INTEGER))
	)
`

// Backend stores values in a single SQLite table.
// A sqlite.Conn is not safe for concurrent use, so access is serialized.
type Backend struct {
	conn   *sqlite.Conn
	logger *zap.Logger
	mu     sync.Mutex
}

// New opens (or creates) the database at path and ensures the schema exists.
func New(path string, logger *zap.Logger) (*Backend, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate|sqlite.OpenReadWrite|sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := sqlitex.ExecuteTransient(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &Backend{
		conn:   conn,
		logger: logger.Named("sqlite_store"),
	}, nil
}

// Get reads the value stored for key.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.conn.SetInterrupt(ctx.Done())
	defer b.conn.SetInterrupt(nil)

	var (
		value []byte
		found bool
	)

	err := sqlitex.Execute(b.conn, "SELECT value FROM records WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = []byte(stmt.ColumnText(0))
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", key, err)
	}

	if !found {
		return nil, storage.ErrNotFound
	}

	return value, nil
}

// Put inserts or replaces the value stored for key.
func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.conn.SetInterrupt(ctx.Done())
	defer b.conn.SetInterrupt(nil)

	err := sqlitex.Execute(b.conn, `
		INSERT INTO records (key, value, updated_at) VALUES (?, ?, CAST(strftime('%s', 'now') AS INTEGER))
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, &sqlitex.ExecOptions{
		Args: []any{key, string(value)},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}

	b.logger.Debug("Wrote record to SQLite", zap.String("key", key), zap.Int("bytes", len(value)))

	return nil
}

// Close closes the underlying connection.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.conn.Close()
}
