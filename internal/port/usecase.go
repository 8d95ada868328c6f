package port

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/edmetrics/lessons-media-go/internal/model"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

type UUIDGen func() uuid.UUID

// UploadSessionManager owns the chunked-upload lifecycle: one session
// per file, chunks received in any order, one assembled object on
// finalise.
type UploadSessionManager interface {
	Initiate(ctx context.Context, in InitiateUploadInput) (InitiateUploadOutput, error)
	ReceiveChunk(ctx context.Context, in ReceiveChunkInput) (ChunkProgressOutput, error)
	Status(ctx context.Context, sessionID uuid.UUID) (ChunkProgressOutput, error)
	Finalise(ctx context.Context, sessionID uuid.UUID) (FinaliseUploadOutput, error)
	Cancel(ctx context.Context, sessionID uuid.UUID) error
}

type InitiateUploadInput struct {
	FileName    string
	FileSize    int64
	ChunkSize   int64
	TotalChunks int
}
type InitiateUploadOutput struct {
	SessionID uuid.UUID `json:"upload_id"`
	ChunkSize int64     `json:"chunk_size"`
}

type ReceiveChunkInput struct {
	SessionID   uuid.UUID
	ChunkIndex  int
	TotalChunks int
	Data        io.Reader
	Size        int64
}
type ChunkProgressOutput struct {
	ReceivedChunks int     `json:"uploaded_chunks"`
	TotalChunks    int     `json:"total_chunks"`
	Progress       float64 `json:"progress"`
	IsComplete     bool    `json:"is_complete"`
}

type FinaliseUploadOutput struct {
	FilePath string `json:"file_path"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

// VideoAttacher records an assembled upload as a lesson's source video
// and queues transcoding.
type VideoAttacher interface {
	AttachVideo(ctx context.Context, in AttachVideoInput) error
}
type AttachVideoInput struct {
	LessonID uuid.UUID
	FilePath string
	FileName string
	FileSize int64
}

// TranscodeRequester re-queues transcoding for a lesson that already
// has a source video.
type TranscodeRequester interface {
	RequestTranscode(ctx context.Context, lessonID uuid.UUID) error
}

// TranscodeOrchestrator runs the whole probe→plan→encode→manifest
// pipeline for one lesson. Executed by the worker.
type TranscodeOrchestrator interface {
	Transcode(ctx context.Context, lessonID uuid.UUID) error
}

// TranscodingStatusGetter reports pipeline progress for a lesson.
type TranscodingStatusGetter interface {
	GetTranscodingStatus(ctx context.Context, lessonID uuid.UUID) (TranscodingStatusOutput, error)
}
type RenditionOutput struct {
	Quality      string  `json:"quality"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Bitrate      int     `json:"bitrate"`
	PlaylistPath *string `json:"playlist_path"`
	FileSize     *int64  `json:"file_size"`
	Status       string  `json:"status"`
	ErrorMessage *string `json:"error_message"`
}
type TranscodingStatusOutput struct {
	Status             model.JobStatus   `json:"status"`
	Progress           int               `json:"progress"`
	MasterPlaylistPath *string           `json:"master_playlist_path"`
	MasterPlaylistURL  *string           `json:"master_playlist_url"`
	StartedAt          *time.Time        `json:"started_at"`
	CompletedAt        *time.Time        `json:"completed_at"`
	Renditions         []RenditionOutput `json:"renditions"`
}

// GenerationRequester records the generation inputs on the lesson and
// queues the generation task.
type GenerationRequester interface {
	RequestGeneration(ctx context.Context, in RequestGenerationInput) error
}
type RequestGenerationInput struct {
	LessonID uuid.UUID
	Script   string
	AvatarID string
	VoiceID  string
	TestMode bool
}

// GenerationOrchestrator drives one avatar-generation run to a
// terminal state. Executed by the worker.
type GenerationOrchestrator interface {
	Generate(ctx context.Context, lessonID uuid.UUID) error
}

// GenerationStatusGetter reports generation progress for a lesson.
type GenerationStatusGetter interface {
	GetGenerationStatus(ctx context.Context, lessonID uuid.UUID) (GenerationStatusOutput, error)
}
type GenerationStatusOutput struct {
	Status        model.JobStatus `json:"status"`
	RemoteVideoID *string         `json:"remote_video_id"`
	Error         *string         `json:"error"`
	StartedAt     *time.Time      `json:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at"`
}

// CatalogGetter exposes the remote vendor's avatar/voice catalogs and
// quota, cached where possible.
type CatalogGetter interface {
	GetAvatars(ctx context.Context) (json.RawMessage, error)
	GetVoices(ctx context.Context) (json.RawMessage, error)
	GetQuota(ctx context.Context) (json.RawMessage, error)
}
