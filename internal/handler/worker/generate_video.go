package worker

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/task"
	"github.com/edmetrics/lessons-media-go/internal/usecase/generation"
	lmuuid "github.com/edmetrics/lessons-media-go/internal/uuid"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// GenerateVideoHandler handles a generate-video task. Incomplete
// inputs cannot be fixed by retrying, so they skip the retry budget.
func GenerateVideoHandler(ctx context.Context, p task.GenerateVideoPayload, svc port.GenerationOrchestrator) error {
	id, err := uuid.Parse(p.LessonID)
	if err != nil {
		log.Printf("❌  Invalid lesson ID %q: %v", p.LessonID, err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := svc.Generate(ctx, lmuuid.UUID(id)); err != nil {
		log.Printf("❌  Failed to generate avatar video for lesson #%s: %v", id, err)
		if errors.Is(err, generation.ErrMissingInput) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	log.Printf("✅  Successfully generated avatar video for lesson #%s", id)
	return nil
}
