package port

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a stored file.
type FileInfo struct {
	SizeBytes   int64
	ContentType string
}

// Storage defines blob store operations. Keys are paths inside a
// bucket; SaveFile accepts size -1 for streamed writes of unknown
// length so multi-gigabyte outputs never sit in memory.
type Storage interface {
	InitBucket(bucket string) error
	GeneratePresignedDownloadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error)
	FileExists(ctx context.Context, bucket, fileKey string) (bool, error)
	StatFile(ctx context.Context, bucket, fileKey string) (FileInfo, error)
	RemoveFile(ctx context.Context, bucket, fileKey string) error
	GetFile(ctx context.Context, bucket, fileKey string) (io.ReadSeekCloser, error)
	SaveFile(ctx context.Context, bucket, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error
	// ListFiles returns every object key under the given prefix.
	ListFiles(ctx context.Context, bucket, prefix string) ([]string, error)
	// RemovePrefix deletes every object under the given prefix. It is a
	// no-op when the prefix matches nothing.
	RemovePrefix(ctx context.Context, bucket, prefix string) error
}
