package dashboard

import (
	"errors"

	"github.com/spandan3/smart-waste-classifier/internal/preview"
	"github.com/spandan3/smart-waste-classifier/internal/waste"
)

// State is the position of the dashboard in its selection/classification cycle.
type State int

const (
	Idle State = iota
	Selected
	Classifying
	Resulted
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selected:
		return "selected"
	case Classifying:
		return "classifying"
	case Resulted:
		return "resulted"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Source tells how a file reached the dashboard.
type Source int

const (
	// SourcePicker accepts any file.
	SourcePicker Source = iota
	// SourceDrop only accepts image/* content.
	SourceDrop
)

// ParseSource maps a form value to a Source. Anything but "drop" is the picker.
func ParseSource(v string) Source {
	if v == "drop" {
		return SourceDrop
	}
	return SourcePicker
}

var (
	// ErrNotImage rejects dropped files whose MIME type is not image/*.
	ErrNotImage = errors.New("dropped file is not an image")
	// ErrClassifyInFlight rejects a classify request while another is running.
	ErrClassifyInFlight = errors.New("classification already in progress")
)

// File is the image the user selected.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Result is the last successful classification.
type Result struct {
	Prediction waste.Label `json:"prediction"`
	Confidence float64     `json:"confidence"`
}

// ClassificationError is returned when the service call fails. Message is the
// fixed user-facing text; Err is kept for logs.
type ClassificationError struct {
	Message string
	Err     error
}

func (e *ClassificationError) Error() string {
	return e.Message
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// Snapshot is a copy of the dashboard state for rendering.
type Snapshot struct {
	State       State       `json:"state"`
	FileName    string      `json:"file_name,omitempty"`
	ContentType string      `json:"content_type,omitempty"`
	FileSize    int         `json:"file_size,omitempty"`
	PreviewRef  preview.Ref `json:"preview_ref,omitempty"`
	Classifying bool        `json:"classifying"`
	Result      *Result     `json:"result,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// HasFile reports whether a file is selected.
func (s Snapshot) HasFile() bool {
	return s.State != Idle
}
