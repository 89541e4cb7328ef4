package ports

import (
	"context"
	"io"
	"time"
)

// PutObjectInput groups parameters for ObjectStore.Put to keep param count low.
type PutObjectInput struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// PutObjectResult reports the stored object's location.
type PutObjectResult struct {
	Key string
	// URL is the public URL when the store serves objects publicly, empty otherwise.
	URL string
}

// ObjectStore persists uploaded files (avatars, portfolios, documents) in the
// hosted object-storage service.
type ObjectStore interface {
	Put(ctx context.Context, in PutObjectInput) (PutObjectResult, error)
	Delete(ctx context.Context, key string) error

	// PresignGet issues a time-limited download URL for a private object.
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}
