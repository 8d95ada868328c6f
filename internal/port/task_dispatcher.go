package port

import (
	"context"

	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

// TaskDispatcher enqueues asynchronous pipeline tasks for a lesson.
type TaskDispatcher interface {
	EnqueueTranscodeLesson(ctx context.Context, id uuid.UUID) error
	EnqueueGenerateVideo(ctx context.Context, id uuid.UUID) error
}
