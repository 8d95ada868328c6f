package port

import (
	"context"

	"github.com/edmetrics/lessons-media-go/internal/model"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

// LessonRepository defines persistence operations for lessons.
type LessonRepository interface {
	Create(ctx context.Context, lesson *model.Lesson) error
	Update(ctx context.Context, lesson *model.Lesson) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error)
}

// RenditionRepository defines persistence operations for rendition
// records. ListForLesson returns rows ordered ascending by target
// height so manifest ordering matches planning order.
type RenditionRepository interface {
	Create(ctx context.Context, rendition *model.Rendition) error
	Update(ctx context.Context, rendition *model.Rendition) error
	ListForLesson(ctx context.Context, lessonID uuid.UUID) ([]*model.Rendition, error)
	DeleteForLesson(ctx context.Context, lessonID uuid.UUID) error
}
