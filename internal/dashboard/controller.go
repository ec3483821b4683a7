// Package dashboard holds the state behind the waste classifier dashboard:
// the selected image, its preview reference, the in-flight flag, and the last
// result or error. Both the web and the terminal surfaces drive it.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spandan3/smart-waste-classifier/internal/classifier"
	"github.com/spandan3/smart-waste-classifier/internal/logging"
	"github.com/spandan3/smart-waste-classifier/internal/preview"
	"github.com/spandan3/smart-waste-classifier/internal/waste"
)

// Controller owns the dashboard state. It is safe for concurrent use; the
// lock is never held across the classification call.
type Controller struct {
	store  preview.Store
	client classifier.Client
	logger *zap.Logger

	mu          sync.Mutex
	file        *File
	previewRef  preview.Ref
	classifying bool
	result      *Result
	errMsg      string
	// generation changes on every select and reset so a late response can
	// tell it no longer belongs to the current file.
	generation uint64
	stats      counters
}

// NewController constructs a controller in the Idle state.
func NewController(store preview.Store, client classifier.Client, logger *zap.Logger) *Controller {
	return &Controller{
		store:  store,
		client: client,
		logger: logger.Named("dashboard"),
	}
}

// SelectFile makes file the current selection. Dropped files must carry an
// image/* content type; a rejected drop leaves the state untouched.
func (c *Controller) SelectFile(ctx context.Context, file File, source Source) error {
	if source == SourceDrop && !isImage(file.ContentType) {
		c.logger.Info("rejected dropped file",
			zap.String("file", file.Name),
			zap.String("content_type", file.ContentType))
		return ErrNotImage
	}

	ref, err := c.store.Create(ctx, preview.Blob{Name: file.Name, ContentType: file.ContentType, Data: file.Data})
	if err != nil {
		wrapped := logging.NewOperationError("dashboard.select_file", "", err)
		c.logger.Error("failed to create preview", zap.Error(wrapped), zap.String("file", file.Name))
		return wrapped
	}

	c.mu.Lock()
	previous := c.previewRef
	c.file = &file
	c.previewRef = ref
	c.result = nil
	c.errMsg = ""
	c.generation++
	c.mu.Unlock()

	logging.WithOperation(c.logger, "dashboard.select_file", string(ref)).Info("file selected",
		zap.String("file", file.Name),
		zap.String("content_type", file.ContentType),
		zap.Int("size", len(file.Data)))

	c.release(ctx, previous)
	return nil
}

// Classify sends the selected file to the service. Without a selection it
// does nothing. A failure is recorded as the error state and also returned
// as a *ClassificationError.
func (c *Controller) Classify(ctx context.Context) error {
	c.mu.Lock()
	if c.file == nil {
		c.mu.Unlock()
		return nil
	}
	if c.classifying {
		c.mu.Unlock()
		return ErrClassifyInFlight
	}
	c.classifying = true
	c.errMsg = ""
	generation := c.generation
	ref := c.previewRef
	upload := classifier.Upload{Name: c.file.Name, ContentType: c.file.ContentType, Data: c.file.Data}
	c.mu.Unlock()

	opLogger := logging.WithOperation(c.logger, "dashboard.classify", string(ref))
	started := time.Now()
	res, err := c.client.Classify(ctx, upload)
	elapsed := time.Since(started)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.classifying = false

	if generation != c.generation {
		c.stats.discarded++
		opLogger.Info("discarding response for a replaced selection", zap.Duration("elapsed", elapsed))
		return nil
	}

	if err != nil {
		c.stats.record(false, elapsed)
		c.result = nil
		c.errMsg = classifier.FailureMessage
		opLogger.Error("classification failed", zap.Error(logging.NewOperationError("dashboard.classify", string(ref), err)))
		return &ClassificationError{Message: classifier.FailureMessage, Err: err}
	}

	c.stats.record(true, elapsed)
	c.result = &Result{Prediction: res.Prediction, Confidence: res.Confidence}
	opLogger.Info("classification succeeded",
		zap.String("prediction", string(res.Prediction)),
		zap.Float64("confidence", res.Confidence),
		zap.Duration("elapsed", elapsed))
	return nil
}

// Reset returns to Idle and revokes the preview reference.
func (c *Controller) Reset(ctx context.Context) {
	c.mu.Lock()
	previous := c.previewRef
	c.file = nil
	c.previewRef = ""
	c.result = nil
	c.errMsg = ""
	c.generation++
	c.mu.Unlock()

	c.release(ctx, previous)
}

// Close releases the current preview reference on teardown. A classification
// still in flight finishes unobserved.
func (c *Controller) Close(ctx context.Context) {
	c.Reset(ctx)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		PreviewRef:  c.previewRef,
		Classifying: c.classifying,
		Error:       c.errMsg,
	}
	if c.file != nil {
		snap.FileName = c.file.Name
		snap.ContentType = c.file.ContentType
		snap.FileSize = len(c.file.Data)
	}
	if c.result != nil {
		r := *c.result
		snap.Result = &r
	}

	switch {
	case c.file == nil:
		snap.State = Idle
	case c.classifying:
		snap.State = Classifying
	case c.result != nil:
		snap.State = Resulted
	case c.errMsg != "":
		snap.State = Errored
	default:
		snap.State = Selected
	}
	return snap
}

// OpenPreview loads the blob behind the current preview reference.
func (c *Controller) OpenPreview(ctx context.Context) (*preview.Blob, error) {
	c.mu.Lock()
	ref := c.previewRef
	c.mu.Unlock()

	if ref == "" {
		return nil, preview.ErrNotFound
	}
	blob, err := c.store.Open(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("open preview: %w", err)
	}
	return blob, nil
}

func (c *Controller) release(ctx context.Context, ref preview.Ref) {
	if ref == "" {
		return
	}
	if err := c.store.Revoke(ctx, ref); err != nil {
		logging.WithOperation(c.logger, "dashboard.release_preview", string(ref)).Warn("failed to revoke preview", zap.Error(err))
	}
}

func isImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// Tip returns the recycling advice for the current result, if any.
func (s Snapshot) Tip() (string, bool) {
	if s.Result == nil {
		return "", false
	}
	return waste.Tip(s.Result.Prediction)
}

// ShowProTip reports whether the generic pro-tip block is rendered.
func (s Snapshot) ShowProTip() bool {
	return s.Result != nil && waste.ShowProTip(s.Result.Prediction)
}
