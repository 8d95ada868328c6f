package transcode

import (
	"context"
	"fmt"
	"time"

	"github.com/edmetrics/lessons-media-go/internal/logger"
	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

const playlistURLExpiry = time.Hour

type statusGetterSrv struct {
	lessonRepo    port.LessonRepository
	renditionRepo port.RenditionRepository
	strg          port.Storage
	bucket        string
}

var _ port.TranscodingStatusGetter = (*statusGetterSrv)(nil)

func NewStatusGetter(lessonRepo port.LessonRepository, renditionRepo port.RenditionRepository, strg port.Storage, bucket string) port.TranscodingStatusGetter {
	return &statusGetterSrv{lessonRepo: lessonRepo, renditionRepo: renditionRepo, strg: strg, bucket: bucket}
}

func (s *statusGetterSrv) GetTranscodingStatus(ctx context.Context, lessonID uuid.UUID) (port.TranscodingStatusOutput, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return port.TranscodingStatusOutput{}, fmt.Errorf("failed to load lesson %q: %w", lessonID.String(), err)
	}

	renditions, err := s.renditionRepo.ListForLesson(ctx, lessonID)
	if err != nil {
		return port.TranscodingStatusOutput{}, fmt.Errorf("failed to list renditions: %w", err)
	}

	out := port.TranscodingStatusOutput{
		Status:             lesson.TranscodingStatus,
		Progress:           lesson.TranscodingProgress,
		MasterPlaylistPath: lesson.MasterPlaylistPath,
		StartedAt:          lesson.TranscodingStartedAt,
		CompletedAt:        lesson.TranscodingCompletedAt,
		Renditions:         make([]port.RenditionOutput, 0, len(renditions)),
	}

	if lesson.MasterPlaylistPath != nil {
		url, err := s.strg.GeneratePresignedDownloadURL(ctx, s.bucket, *lesson.MasterPlaylistPath, playlistURLExpiry)
		if err != nil {
			logger.Warn(ctx, "failed to presign master playlist", "error", err)
		} else {
			out.MasterPlaylistURL = &url
		}
	}

	for _, r := range renditions {
		out.Renditions = append(out.Renditions, port.RenditionOutput{
			Quality:      r.Quality,
			Width:        r.Width,
			Height:       r.Height,
			Bitrate:      r.Bitrate,
			PlaylistPath: r.PlaylistPath,
			FileSize:     r.FileSize,
			Status:       string(r.Status),
			ErrorMessage: r.ErrorMessage,
		})
	}
	return out, nil
}
