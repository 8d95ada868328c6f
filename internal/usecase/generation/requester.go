package generation

import (
	"context"
	"fmt"

	"github.com/edmetrics/lessons-media-go/internal/model"
	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

type requesterSrv struct {
	lessonRepo port.LessonRepository
	dispatcher port.TaskDispatcher
}

var _ port.GenerationRequester = (*requesterSrv)(nil)

func NewRequester(lessonRepo port.LessonRepository, dispatcher port.TaskDispatcher) port.GenerationRequester {
	return &requesterSrv{lessonRepo: lessonRepo, dispatcher: dispatcher}
}

// RequestGeneration records the synthesis inputs on the lesson and
// queues the run. A stale remote id from a failed run is cleared so the
// next run submits fresh.
func (s *requesterSrv) RequestGeneration(ctx context.Context, in port.RequestGenerationInput) error {
	if in.Script == "" || in.AvatarID == "" || in.VoiceID == "" {
		return fmt.Errorf("%w: script, avatar and voice are all required", ErrMissingInput)
	}

	lesson, err := s.lessonRepo.GetByID(ctx, in.LessonID)
	if err != nil {
		return fmt.Errorf("failed to load lesson %q: %w", in.LessonID.String(), err)
	}
	if lesson.GenerationStatus.IsActive() {
		return ErrJobAlreadyActive
	}

	lesson.AvatarScript = &in.Script
	lesson.AvatarID = &in.AvatarID
	lesson.VoiceID = &in.VoiceID
	lesson.AvatarTestMode = in.TestMode
	lesson.RemoteVideoID = nil
	lesson.GenerationStatus = model.JobStatusPending
	lesson.GenerationError = nil
	lesson.GenerationStartedAt = nil
	lesson.GenerationCompletedAt = nil

	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		return fmt.Errorf("failed to queue generation: %w", err)
	}
	if err := s.dispatcher.EnqueueGenerateVideo(ctx, lesson.ID); err != nil {
		return fmt.Errorf("failed to enqueue generation: %w", err)
	}
	return nil
}

type statusGetterSrv struct {
	lessonRepo port.LessonRepository
}

var _ port.GenerationStatusGetter = (*statusGetterSrv)(nil)

func NewStatusGetter(lessonRepo port.LessonRepository) port.GenerationStatusGetter {
	return &statusGetterSrv{lessonRepo: lessonRepo}
}

func (s *statusGetterSrv) GetGenerationStatus(ctx context.Context, lessonID uuid.UUID) (port.GenerationStatusOutput, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return port.GenerationStatusOutput{}, fmt.Errorf("failed to load lesson %q: %w", lessonID.String(), err)
	}
	return port.GenerationStatusOutput{
		Status:        lesson.GenerationStatus,
		RemoteVideoID: lesson.RemoteVideoID,
		Error:         lesson.GenerationError,
		StartedAt:     lesson.GenerationStartedAt,
		CompletedAt:   lesson.GenerationCompletedAt,
	}, nil
}
