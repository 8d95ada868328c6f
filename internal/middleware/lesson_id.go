package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/edmetrics/lessons-media-go/internal/api_context"
	"github.com/edmetrics/lessons-media-go/internal/handler/api"
	lmuuid "github.com/edmetrics/lessons-media-go/internal/uuid"
	"github.com/go-chi/chi/v5"
	guuid "github.com/google/uuid"
)

func WithLessonID() func(http.Handler) http.Handler {
	return paramUUID("id", api_context.LessonIDKey, "lesson ID")
}

func WithSessionID() func(http.Handler) http.Handler {
	return paramUUID("id", api_context.SessionIDKey, "upload ID")
}

func paramUUID(param string, key any, label string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, param)
			if id == "" {
				api.WriteError(w, http.StatusBadRequest, fmt.Sprintf("%s is required", label), nil)
				return
			}
			parsedID, err := guuid.Parse(id)
			if err != nil {
				api.WriteError(w, http.StatusBadRequest, fmt.Sprintf("%s %q is not a valid UUID", label, id), nil)
				return
			}

			// stash it in context and call the real handler
			ctx := context.WithValue(r.Context(), key, lmuuid.UUID(parsedID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
