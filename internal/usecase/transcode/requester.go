package transcode

import (
	"context"
	"fmt"

	"github.com/edmetrics/lessons-media-go/internal/logger"
	"github.com/edmetrics/lessons-media-go/internal/model"
	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

type videoAttacherSrv struct {
	lessonRepo port.LessonRepository
	strg       port.Storage
	bucket     string
	dispatcher port.TaskDispatcher
}

var _ port.VideoAttacher = (*videoAttacherSrv)(nil)

func NewVideoAttacher(lessonRepo port.LessonRepository, strg port.Storage, bucket string, dispatcher port.TaskDispatcher) port.VideoAttacher {
	return &videoAttacherSrv{lessonRepo: lessonRepo, strg: strg, bucket: bucket, dispatcher: dispatcher}
}

// AttachVideo records an assembled upload as the lesson's source video,
// resets the transcode state machine and queues a run.
func (s *videoAttacherSrv) AttachVideo(ctx context.Context, in port.AttachVideoInput) error {
	lesson, err := s.lessonRepo.GetByID(ctx, in.LessonID)
	if err != nil {
		return fmt.Errorf("failed to load lesson %q: %w", in.LessonID.String(), err)
	}
	if lesson.TranscodingStatus.IsActive() {
		return ErrJobAlreadyActive
	}

	exists, err := s.strg.FileExists(ctx, s.bucket, in.FilePath)
	if err != nil {
		return fmt.Errorf("failed to check source file %q: %w", in.FilePath, err)
	}
	if !exists {
		return fmt.Errorf("%w: %q not found in storage", ErrSourceMissing, in.FilePath)
	}

	lesson.VideoPath = &in.FilePath
	lesson.OriginalVideoPath = &in.FilePath
	lesson.VideoFilename = &in.FileName
	lesson.DurationSeconds = nil
	resetTranscodingState(lesson)

	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		return fmt.Errorf("failed to attach video: %w", err)
	}
	if err := s.dispatcher.EnqueueTranscodeLesson(ctx, lesson.ID); err != nil {
		return fmt.Errorf("failed to enqueue transcoding: %w", err)
	}

	logger.Info(ctx, "video attached", "file_path", in.FilePath, "file_size", in.FileSize)
	return nil
}

type requesterSrv struct {
	lessonRepo port.LessonRepository
	dispatcher port.TaskDispatcher
}

var _ port.TranscodeRequester = (*requesterSrv)(nil)

func NewRequester(lessonRepo port.LessonRepository, dispatcher port.TaskDispatcher) port.TranscodeRequester {
	return &requesterSrv{lessonRepo: lessonRepo, dispatcher: dispatcher}
}

// RequestTranscode queues a fresh run for a lesson that already has a
// source video. Only one run may be queued or in flight at a time.
func (s *requesterSrv) RequestTranscode(ctx context.Context, lessonID uuid.UUID) error {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("failed to load lesson %q: %w", lessonID.String(), err)
	}
	if lesson.VideoPath == nil || *lesson.VideoPath == "" {
		return ErrSourceMissing
	}
	if lesson.TranscodingStatus.IsActive() {
		return ErrJobAlreadyActive
	}

	resetTranscodingState(lesson)
	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		return fmt.Errorf("failed to queue transcoding: %w", err)
	}
	if err := s.dispatcher.EnqueueTranscodeLesson(ctx, lesson.ID); err != nil {
		return fmt.Errorf("failed to enqueue transcoding: %w", err)
	}
	return nil
}

func resetTranscodingState(lesson *model.Lesson) {
	lesson.TranscodingStatus = model.JobStatusPending
	lesson.TranscodingProgress = 0
	lesson.MasterPlaylistPath = nil
	lesson.TranscodingStartedAt = nil
	lesson.TranscodingCompletedAt = nil
}
