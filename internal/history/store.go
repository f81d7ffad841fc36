// Package history is the durable store: the append-only log of
// completed sessions plus the single in-progress session snapshot.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pavelanni/mocktest/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		date DATETIME NOT NULL,
		test_name TEXT NOT NULL,
		section TEXT NOT NULL,
		score INTEGER NOT NULL,
		questions INTEGER NOT NULL,
		correct_answers INTEGER NOT NULL,
		by_type TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		data TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records a completed session. Entries are never merged or
// deduplicated.
func (s *Store) Append(e model.HistoryEntry) error {
	byType := ""
	if len(e.ByType) > 0 {
		data, err := json.Marshal(e.ByType)
		if err != nil {
			return fmt.Errorf("marshal type counts: %w", err)
		}
		byType = string(data)
	}
	_, err := s.db.Exec(
		`INSERT INTO history (id, date, test_name, section, score, questions, correct_answers, by_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date, e.TestName, e.Section, e.Score, e.Questions, e.CorrectAnswers, byType,
	)
	return err
}

// List returns all entries, newest first.
func (s *Store) List() ([]model.HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, date, test_name, section, score, questions, correct_answers, by_type
		 FROM history ORDER BY date DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		var byType string
		if err := rows.Scan(&e.ID, &e.Date, &e.TestName, &e.Section, &e.Score, &e.Questions, &e.CorrectAnswers, &byType); err != nil {
			return nil, err
		}
		if byType != "" {
			if err := json.Unmarshal([]byte(byType), &e.ByType); err != nil {
				return nil, fmt.Errorf("decode type counts for entry %s: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes every history entry.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM history`)
	return err
}

// Count returns the number of recorded sessions.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM history`).Scan(&count)
	return count, err
}
