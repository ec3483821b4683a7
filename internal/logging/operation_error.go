package logging

import "fmt"

// OperationError annotates an error with the dashboard operation and the
// preview reference that was current when it failed.
type OperationError struct {
	Operation  string
	PreviewRef string
	Err        error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	if e.PreviewRef != "" {
		return fmt.Sprintf("%s (preview_ref=%s): %v", e.Operation, e.PreviewRef, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewOperationError wraps err with the operation name and preview reference.
// A nil err yields nil so call sites can wrap unconditionally.
func NewOperationError(operation, previewRef string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Operation: operation, PreviewRef: previewRef, Err: err}
}
