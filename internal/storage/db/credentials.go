package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RegistryCredential is a stored mod registry API key. Keys live only in
// the local database and leave the machine solely as the x-api-key header
// on registry requests.
type RegistryCredential struct {
	Name      string // credential slot, e.g. "modregistry"
	APIKey    string
	UpdatedAt time.Time
}

// SaveCredential stores an API key under name, replacing any previous key.
func (d *DB) SaveCredential(name, apiKey string) error {
	_, err := d.Exec(`
		INSERT OR REPLACE INTO registry_credentials (name, api_key, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, name, apiKey)
	if err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	return nil
}

// Credential returns the stored key for name, or nil when none is stored.
func (d *DB) Credential(name string) (*RegistryCredential, error) {
	row := d.QueryRow(`
		SELECT name, api_key, updated_at
		FROM registry_credentials
		WHERE name = ?
	`, name)

	var cred RegistryCredential
	if err := row.Scan(&cred.Name, &cred.APIKey, &cred.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading credential: %w", err)
	}
	return &cred, nil
}

// DeleteCredential removes the key stored under name. Deleting an absent
// credential is not an error.
func (d *DB) DeleteCredential(name string) error {
	if _, err := d.Exec("DELETE FROM registry_credentials WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting credential: %w", err)
	}
	return nil
}

// HasCredential reports whether a key is stored under name.
func (d *DB) HasCredential(name string) (bool, error) {
	var n int
	if err := d.QueryRow("SELECT COUNT(*) FROM registry_credentials WHERE name = ?", name).Scan(&n); err != nil {
		return false, fmt.Errorf("checking credential: %w", err)
	}
	return n > 0, nil
}
