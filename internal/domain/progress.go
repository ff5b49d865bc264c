package domain

// ProgressEvent is the payload fanned out to the UI boundary during game
// installs and mod operations. Progress is 0-1; -1 means indeterminate
// (total size unknown). Marshaling to a UI thread is the presentation
// layer's job, not the core's.
type ProgressEvent struct {
	Stage       string  `json:"stage"`
	Progress    float64 `json:"progress"`
	Message     string  `json:"message,omitempty"`
	CurrentFile string  `json:"currentFile,omitempty"`
	Speed       string  `json:"speed,omitempty"`
	Downloaded  int64   `json:"downloaded"`
	Total       int64   `json:"total"`
}

// ErrorEvent carries a failed boundary operation to subscribers: taxonomy
// kind, human message, optional technical detail.
type ErrorEvent struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
}

// Install stages reported on ProgressEvent.Stage.
const (
	StageResolving   = "resolving"
	StageDownloading = "downloading"
	StageExtracting  = "extracting"
	StageSwapping    = "swapping"
	StageDone        = "done"
)
