// Package hoststub is a development stand-in for the editor host: it
// persists one opaque text block per task in SQLite and serves full
// snapshots over HTTP and websocket, so the panel can run without a real
// host process.
package hoststub

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Row is one persisted task text.
type Row struct {
	ID   string
	Text string
}

// Store persists task texts.
type Store struct {
	db *sql.DB
}

// Open creates a store and runs migrations.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS task_texts (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put upserts a task text.
func (s *Store) Put(id, text string) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO task_texts (id, text, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET text = excluded.text, updated_at = excluded.updated_at`,
		id, text, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert task text: %w", err)
	}
	return nil
}

// Delete removes a task text. Unknown ids are a no-op.
func (s *Store) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM task_texts WHERE id = ?`, id)
	return err
}

// List returns all task texts in creation order.
func (s *Store) List() ([]Row, error) {
	rows, err := s.db.Query(`SELECT id, text FROM task_texts ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("query task texts: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Text); err != nil {
			return nil, fmt.Errorf("scan task text: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
