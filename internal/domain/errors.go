package domain

import "errors"

var (
	ErrValidation  = errors.New("invalid input")
	ErrNetwork     = errors.New("network failure")
	ErrRateLimited = errors.New("rate limited by registry")
	ErrFilesystem  = errors.New("filesystem operation failed")
	ErrModConflict = errors.New("mod conflict")
	ErrModNotFound = errors.New("mod not found")
	ErrGame        = errors.New("game operation failed")
	ErrCancelled   = errors.New("cancelled")
	ErrBusy        = errors.New("instance is busy")
)

// ErrorKind classifies an error for the event bus and JSON output.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindNetwork     ErrorKind = "network"
	KindRateLimited ErrorKind = "rate_limited"
	KindFilesystem  ErrorKind = "filesystem"
	KindModConflict ErrorKind = "mod_conflict"
	KindGame        ErrorKind = "game"
	KindCancelled   ErrorKind = "cancelled"
	KindUnknown     ErrorKind = "unknown"
)

// Kind maps an error chain onto the taxonomy. Wrapped sentinels win over
// the generic fallback; cancellation is checked first so a cancelled
// download is never reported as a network failure.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrModConflict), errors.Is(err, ErrBusy):
		return KindModConflict
	case errors.Is(err, ErrModNotFound), errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrFilesystem):
		return KindFilesystem
	case errors.Is(err, ErrGame):
		return KindGame
	default:
		return KindUnknown
	}
}
