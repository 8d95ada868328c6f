package mock

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/edmetrics/lessons-media-go/internal/model"
	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

var ErrNotFound = errors.New("mock: not found")

// LessonRepo is an in-memory port.LessonRepository. Updates replace the
// stored copy so later reads observe them, mirroring a row re-read.
type LessonRepo struct {
	mu      sync.Mutex
	Lessons map[uuid.UUID]*model.Lesson

	CreateErr error
	UpdateErr error
	GetErr    error

	UpdateCalls int
}

var _ port.LessonRepository = (*LessonRepo)(nil)

func NewLessonRepo() *LessonRepo {
	return &LessonRepo{Lessons: make(map[uuid.UUID]*model.Lesson)}
}

func (r *LessonRepo) Create(ctx context.Context, lesson *model.Lesson) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *lesson
	r.Lessons[lesson.ID] = &cp
	return nil
}

func (r *LessonRepo) Update(ctx context.Context, lesson *model.Lesson) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UpdateCalls++
	cp := *lesson
	r.Lessons[lesson.ID] = &cp
	return nil
}

func (r *LessonRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	lesson, ok := r.Lessons[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *lesson
	return &cp, nil
}

// RenditionRepo is an in-memory port.RenditionRepository.
type RenditionRepo struct {
	mu         sync.Mutex
	Renditions map[uuid.UUID]*model.Rendition

	CreateErr error
	UpdateErr error
	ListErr   error
	DeleteErr error

	DeleteCalls int
}

var _ port.RenditionRepository = (*RenditionRepo)(nil)

func NewRenditionRepo() *RenditionRepo {
	return &RenditionRepo{Renditions: make(map[uuid.UUID]*model.Rendition)}
}

func (r *RenditionRepo) Create(ctx context.Context, rendition *model.Rendition) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rendition
	r.Renditions[rendition.ID] = &cp
	return nil
}

func (r *RenditionRepo) Update(ctx context.Context, rendition *model.Rendition) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rendition
	r.Renditions[rendition.ID] = &cp
	return nil
}

func (r *RenditionRepo) ListForLesson(ctx context.Context, lessonID uuid.UUID) ([]*model.Rendition, error) {
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Rendition
	for _, rendition := range r.Renditions {
		if rendition.LessonID == lessonID {
			cp := *rendition
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Height < out[j].Height })
	return out, nil
}

func (r *RenditionRepo) DeleteForLesson(ctx context.Context, lessonID uuid.UUID) error {
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.DeleteCalls++
	for id, rendition := range r.Renditions {
		if rendition.LessonID == lessonID {
			delete(r.Renditions, id)
		}
	}
	return nil
}
