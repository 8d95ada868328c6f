package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edmetrics/lessons-media-go/internal/logger"
	"github.com/edmetrics/lessons-media-go/internal/model"
	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

const (
	outputWidth  = 1920
	outputHeight = 1080
)

type orchestratorSrv struct {
	lessonRepo   port.LessonRepository
	strg         port.Storage
	bucket       string
	client       port.GenerationClient
	dispatcher   port.TaskDispatcher
	pollInterval time.Duration
	maxPolls     int
	genUUID      port.UUIDGen
}

var _ port.GenerationOrchestrator = (*orchestratorSrv)(nil)

func NewOrchestrator(
	lessonRepo port.LessonRepository,
	strg port.Storage,
	bucket string,
	client port.GenerationClient,
	dispatcher port.TaskDispatcher,
	pollInterval time.Duration,
	maxPolls int,
	genUUID port.UUIDGen,
) port.GenerationOrchestrator {
	return &orchestratorSrv{
		lessonRepo:   lessonRepo,
		strg:         strg,
		bucket:       bucket,
		client:       client,
		dispatcher:   dispatcher,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
		genUUID:      genUUID,
	}
}

func (s *orchestratorSrv) Generate(ctx context.Context, lessonID uuid.UUID) error {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("failed to load lesson %q: %w", lessonID.String(), err)
	}

	if !hasInputs(lesson) {
		return s.fail(ctx, lesson, ErrMissingInput)
	}

	remoteID, err := s.ensureSubmitted(ctx, lesson)
	if err != nil {
		return s.fail(ctx, lesson, err)
	}

	status, err := s.pollUntilDone(ctx, remoteID)
	if err != nil {
		return s.fail(ctx, lesson, err)
	}

	videoKey, size, err := s.storeVideo(ctx, lesson.ID, status.VideoURL)
	if err != nil {
		return s.fail(ctx, lesson, err)
	}

	if err := s.commit(ctx, lesson, videoKey, status); err != nil {
		return err
	}

	if err := s.dispatcher.EnqueueTranscodeLesson(ctx, lesson.ID); err != nil {
		return fmt.Errorf("failed to chain transcoding: %w", err)
	}

	logger.Info(ctx, "avatar video generated", "video_path", videoKey, "size", size)
	return nil
}

func hasInputs(lesson *model.Lesson) bool {
	filled := func(p *string) bool { return p != nil && *p != "" }
	return filled(lesson.AvatarScript) && filled(lesson.AvatarID) && filled(lesson.VoiceID)
}

// ensureSubmitted resumes an in-flight remote job when one is recorded,
// and submits a fresh one otherwise. Stale remote ids from failed runs
// are discarded.
func (s *orchestratorSrv) ensureSubmitted(ctx context.Context, lesson *model.Lesson) (string, error) {
	if lesson.RemoteVideoID != nil && *lesson.RemoteVideoID != "" && lesson.GenerationStatus == model.JobStatusProcessing {
		logger.Info(ctx, "resuming remote generation", "remote_video_id", *lesson.RemoteVideoID)
		return *lesson.RemoteVideoID, nil
	}

	now := time.Now().UTC()
	lesson.RemoteVideoID = nil
	lesson.GenerationStatus = model.JobStatusProcessing
	lesson.GenerationError = nil
	lesson.GenerationStartedAt = &now
	lesson.GenerationCompletedAt = nil
	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		return "", fmt.Errorf("failed to mark generation processing: %w", err)
	}

	remoteID, err := s.client.Submit(ctx, port.SubmitGenerationInput{
		Script:   *lesson.AvatarScript,
		AvatarID: *lesson.AvatarID,
		VoiceID:  *lesson.VoiceID,
		Width:    outputWidth,
		Height:   outputHeight,
		TestMode: lesson.AvatarTestMode,
	})
	if err != nil {
		return "", fmt.Errorf("failed to submit generation: %w", err)
	}

	// Persist the id before polling so a worker restart can resume.
	lesson.RemoteVideoID = &remoteID
	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		return "", fmt.Errorf("failed to persist remote video id: %w", err)
	}

	logger.Info(ctx, "generation submitted", "remote_video_id", remoteID)
	return remoteID, nil
}

// pollUntilDone polls the remote job to a terminal state. Unknown
// statuses count as still-running; transient status-check errors are
// retried on the next tick.
func (s *orchestratorSrv) pollUntilDone(ctx context.Context, remoteID string) (port.GenerationStatus, error) {
	for attempt := 0; attempt < s.maxPolls; attempt++ {
		status, err := s.client.Status(ctx, remoteID)
		if err != nil {
			logger.Warn(ctx, "status check failed", "attempt", attempt, "error", err)
		} else {
			switch status.Status {
			case "completed":
				return status, nil
			case "failed":
				if status.Error != "" {
					return port.GenerationStatus{}, fmt.Errorf("%w: %s", ErrRemoteGenerationFailed, status.Error)
				}
				return port.GenerationStatus{}, ErrRemoteGenerationFailed
			}
		}

		select {
		case <-ctx.Done():
			return port.GenerationStatus{}, ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
	return port.GenerationStatus{}, ErrGenerationTimeout
}

func (s *orchestratorSrv) storeVideo(ctx context.Context, lessonID uuid.UUID, videoURL string) (string, int64, error) {
	if videoURL == "" {
		return "", 0, fmt.Errorf("%w: remote job finished without a video url", ErrDownloadFailed)
	}

	body, size, err := s.client.Download(ctx, videoURL)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer body.Close()

	suffix := strings.ReplaceAll(s.genUUID().String(), "-", "")[:8]
	key := fmt.Sprintf("lessons/videos/avatar_%s_%s.mp4", lessonID, suffix)
	opts := map[string]string{"Content-Type": "video/mp4"}
	if err := s.strg.SaveFile(ctx, s.bucket, key, body, size, opts); err != nil {
		return "", 0, fmt.Errorf("failed to store generated video: %w", err)
	}

	info, err := s.strg.StatFile(ctx, s.bucket, key)
	if err != nil {
		return "", 0, fmt.Errorf("failed to stat generated video: %w", err)
	}
	return key, info.SizeBytes, nil
}

// commit swaps the generated file in as the lesson's source video and
// queues it for transcoding.
func (s *orchestratorSrv) commit(ctx context.Context, lesson *model.Lesson, videoKey string, status port.GenerationStatus) error {
	if lesson.VideoPath != nil && lesson.OriginalVideoPath == nil {
		prev := *lesson.VideoPath
		lesson.OriginalVideoPath = &prev
	}

	filename := videoKey[strings.LastIndex(videoKey, "/")+1:]
	duration := int(status.DurationSeconds)
	now := time.Now().UTC()

	lesson.VideoPath = &videoKey
	lesson.VideoFilename = &filename
	lesson.DurationSeconds = &duration
	lesson.GenerationStatus = model.JobStatusCompleted
	lesson.GenerationError = nil
	lesson.GenerationCompletedAt = &now

	lesson.TranscodingStatus = model.JobStatusPending
	lesson.TranscodingProgress = 0
	lesson.MasterPlaylistPath = nil
	lesson.TranscodingStartedAt = nil
	lesson.TranscodingCompletedAt = nil

	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		return fmt.Errorf("failed to commit generated video: %w", err)
	}
	return nil
}

func (s *orchestratorSrv) fail(ctx context.Context, lesson *model.Lesson, cause error) error {
	msg := cause.Error()
	now := time.Now().UTC()
	lesson.GenerationStatus = model.JobStatusFailed
	lesson.GenerationError = &msg
	lesson.GenerationCompletedAt = &now
	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		logger.Error(ctx, "failed to mark generation failed", "error", err)
	}
	return cause
}
