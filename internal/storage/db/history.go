package db

import (
	"fmt"
	"time"
)

// HistoryEntry is one recorded operation: a game install/update/delete or a
// mod install/uninstall/toggle. Best-effort audit data, never consulted for
// state decisions.
type HistoryEntry struct {
	ID        int64
	Operation string
	Branch    string
	Version   int
	ModID     int
	FileID    int
	Detail    string
	CreatedAt time.Time
}

// Operation names recorded in history rows.
const (
	OpInstall      = "install"
	OpUpdate       = "update"
	OpDelete       = "delete"
	OpLaunch       = "launch"
	OpModInstall   = "mod_install"
	OpModUninstall = "mod_uninstall"
	OpModToggle    = "mod_toggle"
)

// RecordHistory appends an entry to the operation history.
func (d *DB) RecordHistory(entry HistoryEntry) error {
	_, err := d.Exec(`
        INSERT INTO history (operation, branch, version, mod_id, file_id, detail)
        VALUES (?, ?, ?, ?, ?, ?)
    `, entry.Operation, entry.Branch, entry.Version, entry.ModID, entry.FileID, entry.Detail)
	if err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	return nil
}

// History returns the most recent entries, newest first, up to limit.
func (d *DB) History(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.Query(`
        SELECT id, operation, branch, version,
               COALESCE(mod_id, 0), COALESCE(file_id, 0), COALESCE(detail, ''),
               created_at
        FROM history
        ORDER BY id DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Operation, &e.Branch, &e.Version, &e.ModID, &e.FileID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
