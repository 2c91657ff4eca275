package domain

import (
	"context"
	"io"
	"time"
)

// BlobInfo describes a stored object.
type BlobInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
}

// BlobWriter uploads objects to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// BlobReader retrieves and enumerates stored objects.
type BlobReader interface {
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
}

// BlobDeleter removes stored objects.
type BlobDeleter interface {
	Delete(ctx context.Context, path string) error
}

// Archiver ages data out of the primary store into blob storage: raw broker
// statements on upload, and old journal rows on a retention schedule.
type Archiver interface {
	ArchiveStatement(ctx context.Context, batchID, fileName string, data []byte) (string, error)
	ArchiveTrades(ctx context.Context, before time.Time) (int64, error)
}
