package mock

import (
	"context"

	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

// Dispatcher records enqueued task ids.
type Dispatcher struct {
	TranscodeErr  error
	GenerationErr error

	TranscodeIDs  []uuid.UUID
	GenerationIDs []uuid.UUID
}

var _ port.TaskDispatcher = (*Dispatcher)(nil)

func (d *Dispatcher) EnqueueTranscodeLesson(ctx context.Context, id uuid.UUID) error {
	if d.TranscodeErr != nil {
		return d.TranscodeErr
	}
	d.TranscodeIDs = append(d.TranscodeIDs, id)
	return nil
}

func (d *Dispatcher) EnqueueGenerateVideo(ctx context.Context, id uuid.UUID) error {
	if d.GenerationErr != nil {
		return d.GenerationErr
	}
	d.GenerationIDs = append(d.GenerationIDs, id)
	return nil
}
