package history

import (
	"database/sql"
	"encoding/json"

	"github.com/pavelanni/mocktest/internal/session"
)

// snapshotKey is the fixed storage key for the single in-progress
// session, matching the key the browser player used for its tab state.
const snapshotKey = "gre_test_state"

// SaveSnapshot upserts the in-progress session state.
func (s *Store) SaveSnapshot(snap session.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO snapshots (key, data) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = ?`,
		snapshotKey, string(data), string(data),
	)
	return err
}

// LoadSnapshot returns the saved session state, if any. A corrupted
// payload is reported as an error so the caller can ignore it.
func (s *Store) LoadSnapshot() (session.Snapshot, bool, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM snapshots WHERE key = ?`, snapshotKey).Scan(&data)
	if err == sql.ErrNoRows {
		return session.Snapshot{}, false, nil
	}
	if err != nil {
		return session.Snapshot{}, false, err
	}
	var snap session.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return session.Snapshot{}, false, err
	}
	return snap, true, nil
}

// ClearSnapshot removes any saved session state.
func (s *Store) ClearSnapshot() error {
	_, err := s.db.Exec(`DELETE FROM snapshots WHERE key = ?`, snapshotKey)
	return err
}
