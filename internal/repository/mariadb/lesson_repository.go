package mariadb

import (
	"context"
	"database/sql"
	"log"

	"github.com/edmetrics/lessons-media-go/internal/model"
	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

type LessonRepository struct {
	db *sql.DB
}

// compile-time check: *LessonRepository must satisfy port.LessonRepository
var _ port.LessonRepository = (*LessonRepository)(nil)

func NewLessonRepository(db *sql.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

func (r *LessonRepository) Create(ctx context.Context, lesson *model.Lesson) error {
	log.Printf("creating database record for lesson #%s...", lesson.ID)

	const query = `
      INSERT INTO lessons
        (id, title, video_path, original_video_path, video_filename, duration_seconds,
         transcoding_status, transcoding_progress, master_playlist_path,
         transcoding_started_at, transcoding_completed_at,
         source_width, source_height, source_bitrate,
         avatar_script, avatar_id, voice_id, avatar_test_mode, remote_video_id,
         generation_status, generation_error, generation_started_at, generation_completed_at)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		lesson.ID, lesson.Title,
		lesson.VideoPath, lesson.OriginalVideoPath, lesson.VideoFilename, lesson.DurationSeconds,
		lesson.TranscodingStatus, lesson.TranscodingProgress, lesson.MasterPlaylistPath,
		lesson.TranscodingStartedAt, lesson.TranscodingCompletedAt,
		lesson.SourceWidth, lesson.SourceHeight, lesson.SourceBitrate,
		lesson.AvatarScript, lesson.AvatarID, lesson.VoiceID, lesson.AvatarTestMode, lesson.RemoteVideoID,
		lesson.GenerationStatus, lesson.GenerationError, lesson.GenerationStartedAt, lesson.GenerationCompletedAt,
	)
	return err
}

func (r *LessonRepository) Update(ctx context.Context, lesson *model.Lesson) error {
	log.Printf("updating database record for lesson #%s...", lesson.ID)

	const query = `
      UPDATE lessons
      SET
        title                    = ?,
        video_path               = ?,
        original_video_path      = ?,
        video_filename           = ?,
        duration_seconds         = ?,
        transcoding_status       = ?,
        transcoding_progress     = ?,
        master_playlist_path     = ?,
        transcoding_started_at   = ?,
        transcoding_completed_at = ?,
        source_width             = ?,
        source_height            = ?,
        source_bitrate           = ?,
        avatar_script            = ?,
        avatar_id                = ?,
        voice_id                 = ?,
        avatar_test_mode         = ?,
        remote_video_id          = ?,
        generation_status        = ?,
        generation_error         = ?,
        generation_started_at    = ?,
        generation_completed_at  = ?
      WHERE id = ?
    `
	_, err := r.db.ExecContext(ctx, query,
		lesson.Title,
		lesson.VideoPath, lesson.OriginalVideoPath, lesson.VideoFilename, lesson.DurationSeconds,
		lesson.TranscodingStatus, lesson.TranscodingProgress, lesson.MasterPlaylistPath,
		lesson.TranscodingStartedAt, lesson.TranscodingCompletedAt,
		lesson.SourceWidth, lesson.SourceHeight, lesson.SourceBitrate,
		lesson.AvatarScript, lesson.AvatarID, lesson.VoiceID, lesson.AvatarTestMode, lesson.RemoteVideoID,
		lesson.GenerationStatus, lesson.GenerationError, lesson.GenerationStartedAt, lesson.GenerationCompletedAt,
		lesson.ID, // WHERE clause
	)
	return err
}

func (r *LessonRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error) {
	log.Printf("fetching lesson #%s from the database...", id)

	const query = `
      SELECT id, title, video_path, original_video_path, video_filename, duration_seconds,
             transcoding_status, transcoding_progress, master_playlist_path,
             transcoding_started_at, transcoding_completed_at,
             source_width, source_height, source_bitrate,
             avatar_script, avatar_id, voice_id, avatar_test_mode, remote_video_id,
             generation_status, generation_error, generation_started_at, generation_completed_at,
             created_at, updated_at
      FROM lessons
      WHERE id = ?
    `
	row := r.db.QueryRowContext(ctx, query, id)
	var lesson model.Lesson
	if err := row.Scan(
		&lesson.ID, &lesson.Title,
		&lesson.VideoPath, &lesson.OriginalVideoPath, &lesson.VideoFilename, &lesson.DurationSeconds,
		&lesson.TranscodingStatus, &lesson.TranscodingProgress, &lesson.MasterPlaylistPath,
		&lesson.TranscodingStartedAt, &lesson.TranscodingCompletedAt,
		&lesson.SourceWidth, &lesson.SourceHeight, &lesson.SourceBitrate,
		&lesson.AvatarScript, &lesson.AvatarID, &lesson.VoiceID, &lesson.AvatarTestMode, &lesson.RemoteVideoID,
		&lesson.GenerationStatus, &lesson.GenerationError, &lesson.GenerationStartedAt, &lesson.GenerationCompletedAt,
		&lesson.CreatedAt, &lesson.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &lesson, nil
}
