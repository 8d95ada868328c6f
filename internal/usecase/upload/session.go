package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/edmetrics/lessons-media-go/internal/logger"
	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

// sessionMetadata is the per-session JSON object persisted alongside
// the chunks. Completion is never tracked here: it is always recounted
// from the stored chunk keys.
type sessionMetadata struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	FileSize    int64     `json:"file_size"`
	ChunkSize   int64     `json:"chunk_size"`
	TotalChunks int       `json:"total_chunks"`
	CreatedAt   time.Time `json:"created_at"`
}

type sessionManagerSrv struct {
	strg    port.Storage
	bucket  string
	genUUID port.UUIDGen
}

var _ port.UploadSessionManager = (*sessionManagerSrv)(nil)

func NewSessionManager(strg port.Storage, bucket string, genUUID port.UUIDGen) port.UploadSessionManager {
	return &sessionManagerSrv{strg: strg, bucket: bucket, genUUID: genUUID}
}

func metadataKey(id uuid.UUID) string {
	return fmt.Sprintf("uploads/%s/metadata.json", id)
}

func sessionPrefix(id uuid.UUID) string {
	return fmt.Sprintf("uploads/%s/", id)
}

func chunkPrefix(id uuid.UUID) string {
	return fmt.Sprintf("uploads/%s/chunks/", id)
}

func chunkKey(id uuid.UUID, index int) string {
	return fmt.Sprintf("%schunk_%d", chunkPrefix(id), index)
}

func (s *sessionManagerSrv) Initiate(ctx context.Context, in port.InitiateUploadInput) (port.InitiateUploadOutput, error) {
	if in.FileName == "" {
		return port.InitiateUploadOutput{}, fmt.Errorf("%w: file name is required", ErrInvalidArgument)
	}
	if in.FileSize <= 0 {
		return port.InitiateUploadOutput{}, fmt.Errorf("%w: file size must be positive", ErrInvalidArgument)
	}
	if in.ChunkSize <= 0 {
		return port.InitiateUploadOutput{}, fmt.Errorf("%w: chunk size must be positive", ErrInvalidArgument)
	}
	if in.TotalChunks <= 0 {
		return port.InitiateUploadOutput{}, fmt.Errorf("%w: total chunks must be positive", ErrInvalidArgument)
	}

	meta := sessionMetadata{
		ID:          s.genUUID(),
		FileName:    in.FileName,
		FileSize:    in.FileSize,
		ChunkSize:   in.ChunkSize,
		TotalChunks: in.TotalChunks,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.saveMetadata(ctx, meta); err != nil {
		return port.InitiateUploadOutput{}, fmt.Errorf("failed to create upload session: %w", err)
	}

	logger.Info(ctx, "upload session initiated", "session_id", meta.ID.String(), "total_chunks", meta.TotalChunks)
	return port.InitiateUploadOutput{SessionID: meta.ID, ChunkSize: meta.ChunkSize}, nil
}

func (s *sessionManagerSrv) ReceiveChunk(ctx context.Context, in port.ReceiveChunkInput) (port.ChunkProgressOutput, error) {
	meta, err := s.loadMetadata(ctx, in.SessionID)
	if err != nil {
		return port.ChunkProgressOutput{}, err
	}

	if in.TotalChunks != 0 && in.TotalChunks != meta.TotalChunks {
		return port.ChunkProgressOutput{}, fmt.Errorf("%w: total chunks %d does not match session's %d", ErrInvalidArgument, in.TotalChunks, meta.TotalChunks)
	}
	if in.ChunkIndex < 0 || in.ChunkIndex >= meta.TotalChunks {
		return port.ChunkProgressOutput{}, fmt.Errorf("%w: chunk index %d out of range [0, %d)", ErrInvalidArgument, in.ChunkIndex, meta.TotalChunks)
	}

	// Re-sent chunks simply overwrite the stored object.
	key := chunkKey(meta.ID, in.ChunkIndex)
	opts := map[string]string{"Content-Type": "application/octet-stream"}
	if err := s.strg.SaveFile(ctx, s.bucket, key, in.Data, in.Size, opts); err != nil {
		return port.ChunkProgressOutput{}, fmt.Errorf("failed to store chunk %d: %w", in.ChunkIndex, err)
	}

	return s.progress(ctx, meta)
}

func (s *sessionManagerSrv) Status(ctx context.Context, sessionID uuid.UUID) (port.ChunkProgressOutput, error) {
	meta, err := s.loadMetadata(ctx, sessionID)
	if err != nil {
		return port.ChunkProgressOutput{}, err
	}
	return s.progress(ctx, meta)
}

func (s *sessionManagerSrv) Finalise(ctx context.Context, sessionID uuid.UUID) (port.FinaliseUploadOutput, error) {
	meta, err := s.loadMetadata(ctx, sessionID)
	if err != nil {
		return port.FinaliseUploadOutput{}, err
	}

	received, err := s.countChunks(ctx, meta.ID)
	if err != nil {
		return port.FinaliseUploadOutput{}, err
	}
	if received != meta.TotalChunks {
		return port.FinaliseUploadOutput{}, &IncompleteError{Expected: meta.TotalChunks, Found: received}
	}

	finalKey := fmt.Sprintf("lessons/videos/%s_%s", meta.ID, meta.FileName)
	if err := s.assemble(ctx, meta, finalKey); err != nil {
		return port.FinaliseUploadOutput{}, err
	}

	info, err := s.strg.StatFile(ctx, s.bucket, finalKey)
	if err != nil {
		return port.FinaliseUploadOutput{}, fmt.Errorf("failed to stat assembled file %q: %w", finalKey, err)
	}
	if info.SizeBytes != meta.FileSize {
		if err := s.strg.RemoveFile(ctx, s.bucket, finalKey); err != nil {
			logger.Warn(ctx, "failed to remove mis-sized assembled file", "key", finalKey, "error", err)
		}
		return port.FinaliseUploadOutput{}, fmt.Errorf("assembled file size %d does not match expected %d", info.SizeBytes, meta.FileSize)
	}

	if err := s.strg.RemovePrefix(ctx, s.bucket, sessionPrefix(meta.ID)); err != nil {
		logger.Warn(ctx, "failed to clean up upload session", "session_id", meta.ID.String(), "error", err)
	}

	logger.Info(ctx, "upload finalised", "session_id", meta.ID.String(), "file_path", finalKey, "file_size", info.SizeBytes)
	return port.FinaliseUploadOutput{
		FilePath: finalKey,
		FileName: meta.FileName,
		FileSize: info.SizeBytes,
	}, nil
}

func (s *sessionManagerSrv) Cancel(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.strg.RemovePrefix(ctx, s.bucket, sessionPrefix(sessionID)); err != nil {
		return fmt.Errorf("failed to cancel upload session %q: %w", sessionID.String(), err)
	}
	return nil
}

// assemble streams every chunk in index order through a pipe into a
// single object, so the full file never sits in memory.
func (s *sessionManagerSrv) assemble(ctx context.Context, meta sessionMetadata, finalKey string) error {
	pr, pw := io.Pipe()
	go func() {
		for i := 0; i < meta.TotalChunks; i++ {
			chunk, err := s.strg.GetFile(ctx, s.bucket, chunkKey(meta.ID, i))
			if err != nil {
				pw.CloseWithError(fmt.Errorf("failed to read chunk %d: %w", i, err))
				return
			}
			if _, err := io.Copy(pw, chunk); err != nil {
				chunk.Close()
				pw.CloseWithError(fmt.Errorf("failed to stream chunk %d: %w", i, err))
				return
			}
			chunk.Close()
		}
		pw.Close()
	}()

	opts := map[string]string{"Content-Type": "application/octet-stream"}
	if err := s.strg.SaveFile(ctx, s.bucket, finalKey, pr, -1, opts); err != nil {
		pr.CloseWithError(err)
		return fmt.Errorf("failed to assemble upload into %q: %w", finalKey, err)
	}
	return nil
}

func (s *sessionManagerSrv) saveMetadata(ctx context.Context, meta sessionMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	opts := map[string]string{"Content-Type": "application/json"}
	return s.strg.SaveFile(ctx, s.bucket, metadataKey(meta.ID), bytes.NewReader(data), int64(len(data)), opts)
}

func (s *sessionManagerSrv) loadMetadata(ctx context.Context, id uuid.UUID) (sessionMetadata, error) {
	// The blob store reports a missing key only once the object is
	// read, never from the open call, so existence is checked with a
	// stat up front.
	key := metadataKey(id)
	if _, err := s.strg.StatFile(ctx, s.bucket, key); err != nil {
		if errors.Is(err, port.ErrObjectNotFound) {
			return sessionMetadata{}, ErrSessionNotFound
		}
		return sessionMetadata{}, fmt.Errorf("failed to load upload session %q: %w", id.String(), err)
	}

	file, err := s.strg.GetFile(ctx, s.bucket, key)
	if err != nil {
		return sessionMetadata{}, fmt.Errorf("failed to load upload session %q: %w", id.String(), err)
	}
	defer file.Close()

	var meta sessionMetadata
	if err := json.NewDecoder(file).Decode(&meta); err != nil {
		return sessionMetadata{}, fmt.Errorf("corrupt metadata for session %q: %w", id.String(), err)
	}
	return meta, nil
}

func (s *sessionManagerSrv) countChunks(ctx context.Context, id uuid.UUID) (int, error) {
	keys, err := s.strg.ListFiles(ctx, s.bucket, chunkPrefix(id))
	if err != nil {
		return 0, fmt.Errorf("failed to list chunks for session %q: %w", id.String(), err)
	}
	return len(keys), nil
}

func (s *sessionManagerSrv) progress(ctx context.Context, meta sessionMetadata) (port.ChunkProgressOutput, error) {
	received, err := s.countChunks(ctx, meta.ID)
	if err != nil {
		return port.ChunkProgressOutput{}, err
	}
	pct := float64(received) / float64(meta.TotalChunks) * 100
	return port.ChunkProgressOutput{
		ReceivedChunks: received,
		TotalChunks:    meta.TotalChunks,
		Progress:       math.Round(pct*100) / 100,
		IsComplete:     received == meta.TotalChunks,
	}, nil
}
