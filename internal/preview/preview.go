// Package preview keeps selected images addressable for display until they
// are revoked. It stands in for the object URLs a browser would hand out.
package preview

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned for references that were never issued or have been revoked.
var ErrNotFound = errors.New("preview not found")

// Ref is a revocable handle to a stored blob.
type Ref string

// Blob is the stored image together with what is needed to serve it back.
type Blob struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Store issues, resolves and revokes preview references.
type Store interface {
	Create(ctx context.Context, blob Blob) (Ref, error)
	Open(ctx context.Context, ref Ref) (*Blob, error)
	Revoke(ctx context.Context, ref Ref) error
}

func newRef() Ref {
	return Ref(uuid.NewString())
}
