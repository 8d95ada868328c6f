package mock

import (
	"context"
	"encoding/json"
	"io"

	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

// SessionManager is a canned port.UploadSessionManager for handler
// tests.
type SessionManager struct {
	InitiateOut port.InitiateUploadOutput
	InitiateErr error
	InitiateIn  port.InitiateUploadInput

	ChunkOut  port.ChunkProgressOutput
	ChunkErr  error
	ChunkIn   port.ReceiveChunkInput
	ChunkBody []byte

	StatusOut port.ChunkProgressOutput
	StatusErr error

	FinaliseOut port.FinaliseUploadOutput
	FinaliseErr error

	CancelErr    error
	CancelledIDs []uuid.UUID
}

var _ port.UploadSessionManager = (*SessionManager)(nil)

func (m *SessionManager) Initiate(ctx context.Context, in port.InitiateUploadInput) (port.InitiateUploadOutput, error) {
	m.InitiateIn = in
	return m.InitiateOut, m.InitiateErr
}

func (m *SessionManager) ReceiveChunk(ctx context.Context, in port.ReceiveChunkInput) (port.ChunkProgressOutput, error) {
	m.ChunkIn = in
	if in.Data != nil {
		m.ChunkBody, _ = io.ReadAll(in.Data)
	}
	return m.ChunkOut, m.ChunkErr
}

func (m *SessionManager) Status(ctx context.Context, sessionID uuid.UUID) (port.ChunkProgressOutput, error) {
	return m.StatusOut, m.StatusErr
}

func (m *SessionManager) Finalise(ctx context.Context, sessionID uuid.UUID) (port.FinaliseUploadOutput, error) {
	return m.FinaliseOut, m.FinaliseErr
}

func (m *SessionManager) Cancel(ctx context.Context, sessionID uuid.UUID) error {
	m.CancelledIDs = append(m.CancelledIDs, sessionID)
	return m.CancelErr
}

type VideoAttacher struct {
	Err error
	In  port.AttachVideoInput
}

var _ port.VideoAttacher = (*VideoAttacher)(nil)

func (m *VideoAttacher) AttachVideo(ctx context.Context, in port.AttachVideoInput) error {
	m.In = in
	return m.Err
}

type TranscodeRequester struct {
	Err error
	IDs []uuid.UUID
}

var _ port.TranscodeRequester = (*TranscodeRequester)(nil)

func (m *TranscodeRequester) RequestTranscode(ctx context.Context, lessonID uuid.UUID) error {
	m.IDs = append(m.IDs, lessonID)
	return m.Err
}

type TranscodingStatusGetter struct {
	Out port.TranscodingStatusOutput
	Err error
}

var _ port.TranscodingStatusGetter = (*TranscodingStatusGetter)(nil)

func (m *TranscodingStatusGetter) GetTranscodingStatus(ctx context.Context, lessonID uuid.UUID) (port.TranscodingStatusOutput, error) {
	return m.Out, m.Err
}

type GenerationRequester struct {
	Err error
	In  port.RequestGenerationInput
}

var _ port.GenerationRequester = (*GenerationRequester)(nil)

func (m *GenerationRequester) RequestGeneration(ctx context.Context, in port.RequestGenerationInput) error {
	m.In = in
	return m.Err
}

type GenerationStatusGetter struct {
	Out port.GenerationStatusOutput
	Err error
}

var _ port.GenerationStatusGetter = (*GenerationStatusGetter)(nil)

func (m *GenerationStatusGetter) GetGenerationStatus(ctx context.Context, lessonID uuid.UUID) (port.GenerationStatusOutput, error) {
	return m.Out, m.Err
}

type TranscodeOrchestrator struct {
	Err error
	IDs []uuid.UUID
}

var _ port.TranscodeOrchestrator = (*TranscodeOrchestrator)(nil)

func (m *TranscodeOrchestrator) Transcode(ctx context.Context, lessonID uuid.UUID) error {
	m.IDs = append(m.IDs, lessonID)
	return m.Err
}

type GenerationOrchestrator struct {
	Err error
	IDs []uuid.UUID
}

var _ port.GenerationOrchestrator = (*GenerationOrchestrator)(nil)

func (m *GenerationOrchestrator) Generate(ctx context.Context, lessonID uuid.UUID) error {
	m.IDs = append(m.IDs, lessonID)
	return m.Err
}

type CatalogGetter struct {
	AvatarsOut json.RawMessage
	VoicesOut  json.RawMessage
	QuotaOut   json.RawMessage
	Err        error
}

var _ port.CatalogGetter = (*CatalogGetter)(nil)

func (m *CatalogGetter) GetAvatars(ctx context.Context) (json.RawMessage, error) {
	return m.AvatarsOut, m.Err
}

func (m *CatalogGetter) GetVoices(ctx context.Context) (json.RawMessage, error) {
	return m.VoicesOut, m.Err
}

func (m *CatalogGetter) GetQuota(ctx context.Context) (json.RawMessage, error) {
	return m.QuotaOut, m.Err
}
