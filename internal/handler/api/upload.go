package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/edmetrics/lessons-media-go/internal/api_context"
	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/usecase/upload"
	"github.com/edmetrics/lessons-media-go/internal/validation"
)

type InitiateUploadRequest struct {
	FileName    string `json:"file_name" validate:"required"`
	FileSize    int64  `json:"file_size" validate:"required,gt=0"`
	ChunkSize   int64  `json:"chunk_size" validate:"required,gt=0"`
	TotalChunks int    `json:"total_chunks" validate:"required,gt=0"`
}

func InitiateUploadHandler(svc port.UploadSessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req InitiateUploadRequest
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

		out, err := svc.Initiate(r.Context(), port.InitiateUploadInput{
			FileName:    req.FileName,
			FileSize:    req.FileSize,
			ChunkSize:   req.ChunkSize,
			TotalChunks: req.TotalChunks,
		})
		if err != nil {
			if errors.Is(err, upload.ErrInvalidArgument) {
				WriteError(w, http.StatusBadRequest, "invalid upload parameters", err)
				return
			}
			WriteError(w, http.StatusInternalServerError, "could not initiate upload", err)
			return
		}

		RespondJSON(w, http.StatusCreated, out)
		log.Printf("✅  Successfully initiated upload session #%s", out.SessionID)
	}
}

type UploadChunkResponse struct {
	ChunkNumber    int     `json:"chunk_number"`
	UploadedChunks int     `json:"uploaded_chunks"`
	TotalChunks    int     `json:"total_chunks"`
	Progress       float64 `json:"progress"`
	IsComplete     bool    `json:"is_complete"`
}

func UploadChunkHandler(svc port.UploadSessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := api_context.SessionIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "upload ID is required", nil)
			return
		}

		chunkNumber, err := strconv.Atoi(r.URL.Query().Get("chunk_number"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "chunk_number query parameter is required", err)
			return
		}
		totalChunks := 0
		if raw := r.URL.Query().Get("total_chunks"); raw != "" {
			totalChunks, err = strconv.Atoi(raw)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "total_chunks must be a number", err)
				return
			}
		}

		out, err := svc.ReceiveChunk(r.Context(), port.ReceiveChunkInput{
			SessionID:   sessionID,
			ChunkIndex:  chunkNumber,
			TotalChunks: totalChunks,
			Data:        r.Body,
			Size:        r.ContentLength,
		})
		if err != nil {
			writeUploadError(w, sessionID.String(), "could not store chunk", err)
			return
		}

		RespondJSON(w, http.StatusOK, UploadChunkResponse{
			ChunkNumber:    chunkNumber,
			UploadedChunks: out.ReceivedChunks,
			TotalChunks:    out.TotalChunks,
			Progress:       out.Progress,
			IsComplete:     out.IsComplete,
		})
	}
}

func UploadStatusHandler(svc port.UploadSessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := api_context.SessionIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "upload ID is required", nil)
			return
		}

		out, err := svc.Status(r.Context(), sessionID)
		if err != nil {
			writeUploadError(w, sessionID.String(), "could not read upload status", err)
			return
		}
		RespondJSON(w, http.StatusOK, out)
	}
}

func FinaliseUploadHandler(svc port.UploadSessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := api_context.SessionIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "upload ID is required", nil)
			return
		}

		out, err := svc.Finalise(r.Context(), sessionID)
		if err != nil {
			var incomplete *upload.IncompleteError
			if errors.As(err, &incomplete) {
				WriteError(w, http.StatusBadRequest, fmt.Sprintf("upload incomplete: %d of %d chunks received", incomplete.Found, incomplete.Expected), nil)
				return
			}
			writeUploadError(w, sessionID.String(), fmt.Sprintf("could not finalise upload #%s", sessionID), err)
			return
		}

		RespondJSON(w, http.StatusOK, out)
		log.Printf("✅  Successfully finalised upload session #%s", sessionID)
	}
}

func CancelUploadHandler(svc port.UploadSessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := api_context.SessionIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "upload ID is required", nil)
			return
		}

		if err := svc.Cancel(r.Context(), sessionID); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("could not cancel upload #%s", sessionID), err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
		log.Printf("✅  Successfully cancelled upload session #%s", sessionID)
	}
}

func writeUploadError(w http.ResponseWriter, sessionID, msg string, err error) {
	switch {
	case errors.Is(err, upload.ErrSessionNotFound):
		WriteError(w, http.StatusNotFound, fmt.Sprintf("upload session #%s not found", sessionID), nil)
	case errors.Is(err, upload.ErrInvalidArgument):
		WriteError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, msg, err)
	}
}
