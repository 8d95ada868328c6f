package model

import (
	"time"

	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

// JobStatus tracks the lifecycle of a background pipeline run
// (transcoding or avatar generation) attached to a lesson.
type JobStatus string

const (
	JobStatusNone       JobStatus = "none"
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsActive reports whether a run is queued or in flight. Only one
// active run per lesson is allowed for a given pipeline.
func (s JobStatus) IsActive() bool {
	return s == JobStatusPending || s == JobStatusProcessing
}

// Lesson is the owning record for one source video and its two
// pipeline state machines.
type Lesson struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`

	// source video
	VideoPath         *string `json:"video_path"`
	OriginalVideoPath *string `json:"original_video_path"`
	VideoFilename     *string `json:"video_filename"`
	DurationSeconds   *int    `json:"duration_seconds"`

	// transcoding state machine
	TranscodingStatus      JobStatus  `json:"transcoding_status"`
	TranscodingProgress    int        `json:"transcoding_progress"`
	MasterPlaylistPath     *string    `json:"master_playlist_path"`
	TranscodingStartedAt   *time.Time `json:"transcoding_started_at"`
	TranscodingCompletedAt *time.Time `json:"transcoding_completed_at"`
	SourceWidth            *int       `json:"source_width"`
	SourceHeight           *int       `json:"source_height"`
	SourceBitrate          *int       `json:"source_bitrate"`

	// avatar generation state machine
	AvatarScript          *string    `json:"avatar_script"`
	AvatarID              *string    `json:"avatar_id"`
	VoiceID               *string    `json:"voice_id"`
	AvatarTestMode        bool       `json:"avatar_test_mode"`
	RemoteVideoID         *string    `json:"remote_video_id"`
	GenerationStatus      JobStatus  `json:"generation_status"`
	GenerationError       *string    `json:"generation_error"`
	GenerationStartedAt   *time.Time `json:"generation_started_at"`
	GenerationCompletedAt *time.Time `json:"generation_completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
