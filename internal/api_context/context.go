package api_context

import (
	"context"

	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

type ctxKey string

const (
	LessonIDKey  ctxKey = "lessonID"
	SessionIDKey ctxKey = "sessionID"
	AuthSubKey   ctxKey = "authSub"
)

func LessonIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(LessonIDKey).(uuid.UUID)
	return id, ok
}

func SessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(SessionIDKey).(uuid.UUID)
	return id, ok
}

func AuthSubFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(AuthSubKey).(string)
	return sub, ok
}
