// Package classifier talks to the external waste classification service.
package classifier

import (
	"context"
	"errors"

	"github.com/spandan3/smart-waste-classifier/internal/waste"
)

// DefaultEndpoint is the local classification service the dashboard targets.
const DefaultEndpoint = "http://localhost:5000/classify"

// FailureMessage is the only failure text ever shown to the user.
const FailureMessage = "Failed to classify waste. Please try again."

// ErrClassification marks every failed classification attempt. The cause is
// kept for logging only.
var ErrClassification = errors.New("classification failed")

// Upload is the image handed to the service.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Result contains the outcome returned by the classification service.
type Result struct {
	Prediction waste.Label
	Confidence float64
}

// Client exposes the subset of functionality used by the dashboard.
type Client interface {
	Classify(ctx context.Context, upload Upload) (*Result, error)
}
