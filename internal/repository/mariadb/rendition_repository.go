package mariadb

import (
	"context"
	"database/sql"
	"log"

	"github.com/edmetrics/lessons-media-go/internal/model"
	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

type RenditionRepository struct {
	db *sql.DB
}

// compile-time check: *RenditionRepository must satisfy port.RenditionRepository
var _ port.RenditionRepository = (*RenditionRepository)(nil)

func NewRenditionRepository(db *sql.DB) *RenditionRepository {
	return &RenditionRepository{db: db}
}

func (r *RenditionRepository) Create(ctx context.Context, rendition *model.Rendition) error {
	log.Printf("creating rendition %q for lesson #%s...", rendition.Quality, rendition.LessonID)

	const query = `
      INSERT INTO renditions
        (id, lesson_id, quality, width, height, bitrate, playlist_path, file_size, status, error_message)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		rendition.ID, rendition.LessonID, rendition.Quality,
		rendition.Width, rendition.Height, rendition.Bitrate,
		rendition.PlaylistPath, rendition.FileSize,
		rendition.Status, rendition.ErrorMessage,
	)
	return err
}

func (r *RenditionRepository) Update(ctx context.Context, rendition *model.Rendition) error {
	log.Printf("updating rendition %q for lesson #%s, with status %q...", rendition.Quality, rendition.LessonID, rendition.Status)

	const query = `
      UPDATE renditions
      SET
        playlist_path = ?,
        file_size     = ?,
        status        = ?,
        error_message = ?
      WHERE id = ?
    `
	_, err := r.db.ExecContext(ctx, query,
		rendition.PlaylistPath,
		rendition.FileSize,
		rendition.Status,
		rendition.ErrorMessage,
		rendition.ID, // WHERE clause
	)
	return err
}

func (r *RenditionRepository) ListForLesson(ctx context.Context, lessonID uuid.UUID) ([]*model.Rendition, error) {
	const query = `
      SELECT id, lesson_id, quality, width, height, bitrate, playlist_path, file_size, status, error_message, created_at, updated_at
      FROM renditions
      WHERE lesson_id = ?
      ORDER BY height ASC
    `
	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	var renditions []*model.Rendition
	for rows.Next() {
		var rendition model.Rendition
		if err := rows.Scan(
			&rendition.ID, &rendition.LessonID, &rendition.Quality,
			&rendition.Width, &rendition.Height, &rendition.Bitrate,
			&rendition.PlaylistPath, &rendition.FileSize,
			&rendition.Status, &rendition.ErrorMessage,
			&rendition.CreatedAt, &rendition.UpdatedAt,
		); err != nil {
			return nil, err
		}
		renditions = append(renditions, &rendition)
	}
	return renditions, rows.Err()
}

func (r *RenditionRepository) DeleteForLesson(ctx context.Context, lessonID uuid.UUID) error {
	log.Printf("deleting all renditions for lesson #%s...", lessonID)

	const query = `DELETE FROM renditions WHERE lesson_id = ?`
	_, err := r.db.ExecContext(ctx, query, lessonID)
	return err
}
