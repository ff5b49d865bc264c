package core

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"glaunch/internal/domain"
)

// Mod files inside an instance's mods directory follow the grammar
//
//	<slug>_m<modID>_f<fileID>.zip            enabled
//	<slug>_m<modID>_f<fileID>.zip.disabled   disabled
//
// The listing of that directory is the source of truth for installed mod
// state: the suffix encodes the enabled flag, so toggling is a rename and
// never a re-download, and the two variants must never coexist for one id.

const disabledSuffix = ".disabled"

// modFilePattern parses the filename grammar. The slug match is greedy but
// cannot swallow the id fields because those are anchored by the literal
// _m/_f markers and the extension.
var modFilePattern = regexp.MustCompile(`^(.+)_m(\d+)_f(\d+)\.zip(\.disabled)?$`)

// slugSanitizer collapses anything outside the safe filename alphabet.
// Slugs arrive from the network and participate in paths, so they are
// reduced to lowercase letters, digits and dashes before use.
var slugSanitizer = regexp.MustCompile(`[^a-z0-9-]+`)

// SanitizeSlug normalizes a registry slug for filename use.
func SanitizeSlug(slug string) string {
	s := slugSanitizer.ReplaceAllString(strings.ToLower(slug), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "mod"
	}
	return s
}

// ModFileName renders the on-disk name for a mod file.
func ModFileName(slug string, modID, fileID int, enabled bool) string {
	name := fmt.Sprintf("%s_m%d_f%d.zip", SanitizeSlug(slug), modID, fileID)
	if !enabled {
		name += disabledSuffix
	}
	return name
}

// ParseModFileName extracts a ModRecord from a filename. Returns nil when
// the name does not match the grammar; such files are ignored by scans
// rather than treated as errors, since users drop stray files into mods
// directories.
func ParseModFileName(filename string) *domain.ModRecord {
	filename = filepath.Base(filename)

	matches := modFilePattern.FindStringSubmatch(filename)
	if matches == nil {
		return nil
	}

	modID, err := strconv.Atoi(matches[2])
	if err != nil {
		return nil
	}
	fileID, err := strconv.Atoi(matches[3])
	if err != nil {
		return nil
	}

	return &domain.ModRecord{
		ModID:    modID,
		FileID:   fileID,
		Slug:     matches[1],
		Enabled:  matches[4] == "",
		FileName: filename,
	}
}
