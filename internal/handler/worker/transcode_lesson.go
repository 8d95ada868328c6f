package worker

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/task"
	"github.com/edmetrics/lessons-media-go/internal/usecase/transcode"
	lmuuid "github.com/edmetrics/lessons-media-go/internal/uuid"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TranscodeLessonHandler handles a transcode-lesson task. Errors that
// retrying cannot fix are wrapped in asynq.SkipRetry.
func TranscodeLessonHandler(ctx context.Context, p task.TranscodeLessonPayload, svc port.TranscodeOrchestrator) error {
	id, err := uuid.Parse(p.LessonID)
	if err != nil {
		log.Printf("❌  Invalid lesson ID %q: %v", p.LessonID, err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := svc.Transcode(ctx, lmuuid.UUID(id)); err != nil {
		log.Printf("❌  Failed to transcode lesson #%s: %v", id, err)
		if errors.Is(err, transcode.ErrEncoderUnavailable) || errors.Is(err, transcode.ErrNoViableRendition) || errors.Is(err, transcode.ErrSourceMissing) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	log.Printf("✅  Successfully transcoded lesson #%s", id)
	return nil
}
