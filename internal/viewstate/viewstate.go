// Package viewstate models the panel's ambient view state as one explicit
// struct with a load/save boundary, instead of free-floating globals. The
// persistent side is a small SQLite settings table; the host never sees any
// of it.
package viewstate

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taskdock/taskdock/internal/filter"
	"github.com/taskdock/taskdock/internal/models"
	_ "modernc.org/sqlite"
)

// State is everything the view remembers between sessions plus the pieces
// the dispatcher needs at runtime.
type State struct {
	SelectedTaskID     string
	Filter             filter.Criteria
	SidebarVisible     bool
	FilterPanelVisible bool
	// Collapsed lists the category ids whose sections are folded.
	Collapsed []models.TaskState
}

// Default returns the state of a fresh panel: nothing selected, identity
// filter, sidebar shown, all categories expanded.
func Default() State {
	return State{
		Filter:         filter.Reset(),
		SidebarVisible: true,
	}
}

// IsCollapsed reports whether a category section is folded.
func (s State) IsCollapsed(id models.TaskState) bool {
	for _, c := range s.Collapsed {
		if c == id {
			return true
		}
	}
	return false
}

// Settings persists the view state.
type Settings struct {
	db *sql.DB
}

// OpenSettings opens (creating if needed) the settings database.
func OpenSettings(dbPath string) (*Settings, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create settings directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Settings{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate settings: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Settings) Close() error {
	return s.db.Close()
}

func (s *Settings) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

const (
	keySelected    = "selected_task_id"
	keyQuery       = "search_query"
	keyPriority    = "priority_filter"
	keySidebar     = "sidebar_visible"
	keyFilterPanel = "filter_panel_visible"
	keyCollapsed   = "collapsed_categories"
)

// Load reads the persisted state, filling defaults for missing keys.
func (s *Settings) Load() (State, error) {
	st := Default()

	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return st, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return st, fmt.Errorf("scan setting: %w", err)
		}
		switch key {
		case keySelected:
			st.SelectedTaskID = value
		case keyQuery:
			st.Filter.Query = value
		case keyPriority:
			if value != "" {
				st.Filter.Priority = value
			}
		case keySidebar:
			st.SidebarVisible, _ = strconv.ParseBool(value)
		case keyFilterPanel:
			st.FilterPanelVisible, _ = strconv.ParseBool(value)
		case keyCollapsed:
			st.Collapsed = nil
			for _, part := range strings.Split(value, ",") {
				if part = strings.TrimSpace(part); part != "" {
					st.Collapsed = append(st.Collapsed, models.TaskState(part))
				}
			}
		}
	}
	return st, rows.Err()
}

// Save writes the state back. Each key is upserted; absent keys keep their
// defaults on the next Load.
func (s *Settings) Save(st State) error {
	collapsed := make([]string, len(st.Collapsed))
	for i, c := range st.Collapsed {
		collapsed[i] = string(c)
	}

	pairs := map[string]string{
		keySelected:    st.SelectedTaskID,
		keyQuery:       st.Filter.Query,
		keyPriority:    st.Filter.Priority,
		keySidebar:     strconv.FormatBool(st.SidebarVisible),
		keyFilterPanel: strconv.FormatBool(st.FilterPanelVisible),
		keyCollapsed:   strings.Join(collapsed, ","),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range pairs {
		_, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		)
		if err != nil {
			return fmt.Errorf("upsert setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}
