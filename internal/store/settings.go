package store

import (
	"database/sql"
	"fmt"
)

// Setting keys in use. The PIN hash guards the parent area when a shared
// family device stays logged in.
const (
	SettingPINHash         = "pin_hash"
	SettingSoundEnabled    = "sound_enabled"
	SettingCelebrations    = "celebrations_enabled"
	SettingChildReordering = "child_reordering_enabled"
)

// SettingsStore holds per-parent key/value preferences.
type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the value for a key, or "" when the key is unset.
func (s *SettingsStore) Get(parentUserID int64, key string) (string, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM settings WHERE parent_user_id = ? AND key = ?`,
		parentUserID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) GetAll(parentUserID int64) (map[string]string, error) {
	rows, err := s.db.Query(
		`SELECT key, value FROM settings WHERE parent_user_id = ?`,
		parentUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (s *SettingsStore) Set(parentUserID int64, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (parent_user_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (parent_user_id, key) DO UPDATE SET value = excluded.value`,
		parentUserID, key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *SettingsStore) Delete(parentUserID int64, key string) error {
	_, err := s.db.Exec(
		`DELETE FROM settings WHERE parent_user_id = ? AND key = ?`,
		parentUserID, key,
	)
	if err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}
