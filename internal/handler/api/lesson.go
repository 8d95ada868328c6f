package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/edmetrics/lessons-media-go/internal/api_context"
	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/usecase/generation"
	"github.com/edmetrics/lessons-media-go/internal/usecase/transcode"
	"github.com/edmetrics/lessons-media-go/internal/validation"
)

type AttachVideoRequest struct {
	FilePath string `json:"file_path" validate:"required"`
	FileName string `json:"file_name" validate:"required"`
	FileSize int64  `json:"file_size" validate:"gte=0"`
}

func AttachVideoHandler(svc port.VideoAttacher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lessonID, ok := api_context.LessonIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "lesson ID is required", nil)
			return
		}

		var req AttachVideoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request payload", err)
			return
		}
		if errs := validation.ValidateStruct(req); errs != nil {
			errsJSON, err := validation.ErrorsToJson(errs)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to encode validation errors", err)
				return
			}
			RespondRawJSON(w, http.StatusBadRequest, []byte(errsJSON))
			log.Printf("❌  Validation failed: %s", errsJSON)
			return
		}

		err := svc.AttachVideo(r.Context(), port.AttachVideoInput{
			LessonID: lessonID,
			FilePath: req.FilePath,
			FileName: req.FileName,
			FileSize: req.FileSize,
		})
		if err != nil {
			writeTranscodeError(w, lessonID.String(), "could not attach video", err)
			return
		}

		w.WriteHeader(http.StatusAccepted)
		log.Printf("✅  Successfully attached video to lesson #%s", lessonID)
	}
}

func RequestTranscodeHandler(svc port.TranscodeRequester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lessonID, ok := api_context.LessonIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "lesson ID is required", nil)
			return
		}

		if err := svc.RequestTranscode(r.Context(), lessonID); err != nil {
			writeTranscodeError(w, lessonID.String(), "could not queue transcoding", err)
			return
		}

		w.WriteHeader(http.StatusAccepted)
		log.Printf("✅  Successfully queued transcoding for lesson #%s", lessonID)
	}
}

func TranscodingStatusHandler(svc port.TranscodingStatusGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lessonID, ok := api_context.LessonIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "lesson ID is required", nil)
			return
		}

		out, err := svc.GetTranscodingStatus(r.Context(), lessonID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("could not read transcoding status of lesson #%s", lessonID), err)
			return
		}
		RespondJSON(w, http.StatusOK, out)
	}
}

type RequestGenerationRequest struct {
	Script   string `json:"script" validate:"required"`
	AvatarID string `json:"avatar_id" validate:"required"`
	VoiceID  string `json:"voice_id" validate:"required"`
	TestMode bool   `json:"test_mode"`
}

func RequestGenerationHandler(svc port.GenerationRequester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lessonID, ok := api_context.LessonIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "lesson ID is required", nil)
			return
		}

		var req RequestGenerationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request payload", err)
			return
		}
		if errs := validation.ValidateStruct(req); errs != nil {
			errsJSON, err := validation.ErrorsToJson(errs)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to encode validation errors", err)
				return
			}
			RespondRawJSON(w, http.StatusBadRequest, []byte(errsJSON))
			log.Printf("❌  Validation failed: %s", errsJSON)
			return
		}

		err := svc.RequestGeneration(r.Context(), port.RequestGenerationInput{
			LessonID: lessonID,
			Script:   req.Script,
			AvatarID: req.AvatarID,
			VoiceID:  req.VoiceID,
			TestMode: req.TestMode,
		})
		if err != nil {
			switch {
			case errors.Is(err, generation.ErrJobAlreadyActive):
				WriteError(w, http.StatusConflict, "a generation job is already active for this lesson", nil)
			case errors.Is(err, generation.ErrMissingInput):
				WriteError(w, http.StatusBadRequest, err.Error(), nil)
			default:
				WriteError(w, http.StatusInternalServerError, "could not queue generation", err)
			}
			return
		}

		w.WriteHeader(http.StatusAccepted)
		log.Printf("✅  Successfully queued avatar generation for lesson #%s", lessonID)
	}
}

func GenerationStatusHandler(svc port.GenerationStatusGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lessonID, ok := api_context.LessonIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "lesson ID is required", nil)
			return
		}

		out, err := svc.GetGenerationStatus(r.Context(), lessonID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("could not read generation status of lesson #%s", lessonID), err)
			return
		}
		RespondJSON(w, http.StatusOK, out)
	}
}

func writeTranscodeError(w http.ResponseWriter, lessonID, msg string, err error) {
	switch {
	case errors.Is(err, transcode.ErrJobAlreadyActive):
		WriteError(w, http.StatusConflict, "a transcoding job is already active for this lesson", nil)
	case errors.Is(err, transcode.ErrSourceMissing):
		WriteError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("%s for lesson #%s", msg, lessonID), err)
	}
}
