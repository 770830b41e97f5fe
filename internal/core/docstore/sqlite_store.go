package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	path       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLiteStore keeps documents in a local SQLite file. It is used for local
// runs and tests.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and creates if needed) the database at path. Use
// ":memory:" for a throwaway store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps :memory: alive.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure sqlite: %w", err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Write(ctx context.Context, path string, value interface{}) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}
	data, err := encode(value)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (path, value, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		p, string(data), now, now)
	if err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

func (s *SQLiteStore) Read(ctx context.Context, path string, out interface{}) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}

	var value string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE path = ?`, p).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", p, err)
	}
	return Document{Path: p, Value: []byte(value)}.Decode(out)
}

func (s *SQLiteStore) List(ctx context.Context, prefix string) ([]Document, error) {
	p, err := CleanPath(prefix)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, value, updated_at FROM documents WHERE path LIKE ? ORDER BY path`, p+"/%")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var d Document
		var value string
		if err := rows.Scan(&d.Path, &value, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list %s: %w", p, err)
		}
		d.Value = []byte(value)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, path string) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, p)
	if err != nil {
		return fmt.Errorf("delete %s: %w", p, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
