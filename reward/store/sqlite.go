package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite stores ledgers in a single table of a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("store: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS reward_ledgers (
			world      TEXT PRIMARY KEY,
			data       BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: init sqlite: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Load(ctx context.Context, world string) (map[string]any, bool, error) {
	var b []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM reward_ledgers WHERE world = ?`, world).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: select %s: %w", world, err)
	}
	data, err := decode(b)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *SQLite) Save(ctx context.Context, world string, data map[string]any) error {
	b, err := encode(data)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reward_ledgers (world, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(world) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		world, b, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("store: upsert %s: %w", world, err)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }
