package model

import (
	"time"

	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

type RenditionStatus string

const (
	RenditionStatusPending    RenditionStatus = "pending"
	RenditionStatusProcessing RenditionStatus = "processing"
	RenditionStatusCompleted  RenditionStatus = "completed"
	RenditionStatusFailed     RenditionStatus = "failed"
)

// Rendition is one quality tier's outcome for a lesson's source video.
// Quality labels are unique per lesson; all rows for a lesson are
// cleared at the start of a fresh transcode run.
type Rendition struct {
	ID           uuid.UUID       `json:"id"`
	LessonID     uuid.UUID       `json:"lesson_id"`
	Quality      string          `json:"quality"`
	Width        int             `json:"width"`
	Height       int             `json:"height"`
	Bitrate      int             `json:"bitrate"` // video bitrate, kbps
	PlaylistPath *string         `json:"playlist_path"`
	FileSize     *int64          `json:"file_size"`
	Status       RenditionStatus `json:"status"`
	ErrorMessage *string         `json:"error_message"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
