package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Branch is a release channel. Versions are numbered independently per branch.
type Branch int

const (
	BranchRelease Branch = iota
	BranchPreRelease
)

func (b Branch) String() string {
	switch b {
	case BranchRelease:
		return "release"
	case BranchPreRelease:
		return "pre-release"
	default:
		return "unknown"
	}
}

// ParseBranch converts a string to a Branch.
func ParseBranch(s string) (Branch, error) {
	switch s {
	case "release", "":
		return BranchRelease, nil
	case "pre-release", "prerelease", "pre":
		return BranchPreRelease, nil
	default:
		return BranchRelease, fmt.Errorf("%w: unknown branch %q", ErrValidation, s)
	}
}

// LatestVersion is the sentinel version meaning "auto-updating install".
// An instance pinned to a concrete version N>0 is an immutable snapshot;
// a LatestVersion instance is rewritten in place on update.
const LatestVersion = 0

// InstanceStatus is the externally observable state of an instance.
// Installing/Updating are transient and never survive a crash: staging
// plus atomic swap guarantees an instance is either absent, or fully at
// some concrete version.
type InstanceStatus int

const (
	StatusNotInstalled InstanceStatus = iota
	StatusInstalled
	StatusUpdateAvailable
)

func (s InstanceStatus) String() string {
	switch s {
	case StatusNotInstalled:
		return "not installed"
	case StatusInstalled:
		return "installed"
	case StatusUpdateAvailable:
		return "update available"
	default:
		return "unknown"
	}
}

// Instance is one on-disk installation of the game.
type Instance struct {
	Branch           Branch
	Version          int // 0 = latest-tracking
	InstalledVersion int // concrete version recorded in version.txt
	Path             string
	InstalledAt      time.Time
	Status           InstanceStatus
}

// UpdateInfo describes a pending update for a latest-tracking instance.
// Derived on demand, never stored.
type UpdateInfo struct {
	Branch      Branch
	OldVersion  int
	NewVersion  int
	HasUserData bool // saves/settings exist that the swap must carry over
}

const (
	playerNameMinLen = 1
	playerNameMaxLen = 16
)

// ValidatePlayerName enforces the 1-16 character nickname constraint.
// Checked before any network or filesystem work begins.
func ValidatePlayerName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < playerNameMinLen || n > playerNameMaxLen {
		return fmt.Errorf("%w: player name must be 1-16 characters, got %d", ErrValidation, n)
	}
	return nil
}
