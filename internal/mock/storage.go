package mock

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/edmetrics/lessons-media-go/internal/port"
)

// Storage is an in-memory port.Storage. Objects live in a map keyed by
// "bucket/fileKey"; error fields let tests inject failures per
// operation.
type Storage struct {
	mu      sync.Mutex
	Objects map[string][]byte

	// DeferGetErrors makes GetFile behave like object stores that only
	// surface a missing key once the body is read: the open call
	// succeeds and the first Read fails.
	DeferGetErrors bool

	SaveErr     error
	GetErr      error
	StatErr     error
	ListErr     error
	RemoveErr   error
	PresignErr  error
	InitErr     error
	PresignedURL string

	SavedKeys   []string
	RemovedKeys []string
}

var _ port.Storage = (*Storage)(nil)

func NewStorage() *Storage {
	return &Storage{Objects: make(map[string][]byte)}
}

func (s *Storage) key(bucket, fileKey string) string { return bucket + "/" + fileKey }

func (s *Storage) InitBucket(bucket string) error { return s.InitErr }

func (s *Storage) GeneratePresignedDownloadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	if s.PresignErr != nil {
		return "", s.PresignErr
	}
	if s.PresignedURL != "" {
		return s.PresignedURL, nil
	}
	return "https://storage.test/" + bucket + "/" + fileKey, nil
}

func (s *Storage) FileExists(ctx context.Context, bucket, fileKey string) (bool, error) {
	if s.StatErr != nil {
		return false, s.StatErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[s.key(bucket, fileKey)]
	return ok, nil
}

func (s *Storage) StatFile(ctx context.Context, bucket, fileKey string) (port.FileInfo, error) {
	if s.StatErr != nil {
		return port.FileInfo{}, s.StatErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Objects[s.key(bucket, fileKey)]
	if !ok {
		return port.FileInfo{}, port.ErrObjectNotFound
	}
	return port.FileInfo{SizeBytes: int64(len(data))}, nil
}

func (s *Storage) RemoveFile(ctx context.Context, bucket, fileKey string) error {
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, s.key(bucket, fileKey))
	s.RemovedKeys = append(s.RemovedKeys, fileKey)
	return nil
}

type readSeekNopCloser struct{ *bytes.Reader }

func (readSeekNopCloser) Close() error { return nil }

// failingReader errors on first use, mimicking a deferred GET.
type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error)       { return 0, r.err }
func (r failingReader) Seek(int64, int) (int64, error) { return 0, r.err }
func (r failingReader) Close() error                   { return nil }

func (s *Storage) GetFile(ctx context.Context, bucket, fileKey string) (io.ReadSeekCloser, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Objects[s.key(bucket, fileKey)]
	if !ok {
		if s.DeferGetErrors {
			return failingReader{err: errors.New("the specified key does not exist")}, nil
		}
		return nil, port.ErrObjectNotFound
	}
	return readSeekNopCloser{bytes.NewReader(data)}, nil
}

func (s *Storage) SaveFile(ctx context.Context, bucket, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[s.key(bucket, fileKey)] = data
	s.SavedKeys = append(s.SavedKeys, fileKey)
	return nil
}

func (s *Storage) ListFiles(ctx context.Context, bucket, prefix string) ([]string, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	full := s.key(bucket, prefix)
	var keys []string
	for k := range s.Objects {
		if strings.HasPrefix(k, full) {
			keys = append(keys, strings.TrimPrefix(k, bucket+"/"))
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Storage) RemovePrefix(ctx context.Context, bucket, prefix string) error {
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	full := s.key(bucket, prefix)
	for k := range s.Objects {
		if strings.HasPrefix(k, full) {
			delete(s.Objects, k)
			s.RemovedKeys = append(s.RemovedKeys, strings.TrimPrefix(k, bucket+"/"))
		}
	}
	return nil
}
