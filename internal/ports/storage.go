package ports

import (
	"context"
	"io"
)

type PutObjectInput struct {
	ObjectKey   string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type PutObjectOutput struct {
	// ObjectKey is what DeleteObject expects. For gcs, s3 and localfs it is
	// the input key; for gdrive it is the Drive fileId.
	ObjectKey string
	// URL is the publicly resolvable location of the object.
	URL  string
	Size int64
}

// StorageProvider is durable object storage (gcs, s3, gdrive, localfs).
type StorageProvider interface {
	Provider() string

	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
	DeleteObject(ctx context.Context, objectKey string) error

	// Ping checks the backing store is reachable. Used by the deep health check.
	Ping(ctx context.Context) error
}
