package task

import (
	"context"

	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

type NoopDispatcher struct{}

var _ port.TaskDispatcher = (*NoopDispatcher)(nil)

func NewNoopDispatcher() *NoopDispatcher { return &NoopDispatcher{} }

func (d *NoopDispatcher) EnqueueTranscodeLesson(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (d *NoopDispatcher) EnqueueGenerateVideo(ctx context.Context, id uuid.UUID) error {
	return nil
}
