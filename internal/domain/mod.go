package domain

import "fmt"

// ModRecord is the installed state of one mod inside one instance's mods
// directory. The directory listing plus the filename grammar is the source
// of truth; records are rebuilt from a scan on every query, never cached
// across mutations.
type ModRecord struct {
	ModID    int
	FileID   int
	Slug     string
	Enabled  bool
	FileName string // on-disk name, including the disabled suffix when present
	Branch   Branch
	Version  int

	// LatestFileID is populated by update checks, zero otherwise.
	LatestFileID int
}

// Key identifies a mod within an instance, used for install serialization.
func (m ModRecord) Key() string {
	return ModKey(m.Branch, m.Version, m.ModID)
}

// ModKey builds the per-(instance, mod) lock key.
func ModKey(branch Branch, version, modID int) string {
	return fmt.Sprintf("%s/%d/%d", branch, version, modID)
}
