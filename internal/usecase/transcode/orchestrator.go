package transcode

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/edmetrics/lessons-media-go/internal/logger"
	"github.com/edmetrics/lessons-media-go/internal/model"
	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

type orchestratorSrv struct {
	lessonRepo    port.LessonRepository
	renditionRepo port.RenditionRepository
	strg          port.Storage
	bucket        string
	prober        port.Prober
	encoder       port.Encoder
	ladder        []model.QualityTier
	tempDir       string
	genUUID       port.UUIDGen
}

var _ port.TranscodeOrchestrator = (*orchestratorSrv)(nil)

func NewOrchestrator(
	lessonRepo port.LessonRepository,
	renditionRepo port.RenditionRepository,
	strg port.Storage,
	bucket string,
	prober port.Prober,
	encoder port.Encoder,
	ladder []model.QualityTier,
	tempDir string,
	genUUID port.UUIDGen,
) port.TranscodeOrchestrator {
	return &orchestratorSrv{
		lessonRepo:    lessonRepo,
		renditionRepo: renditionRepo,
		strg:          strg,
		bucket:        bucket,
		prober:        prober,
		encoder:       encoder,
		ladder:        ladder,
		tempDir:       tempDir,
		genUUID:       genUUID,
	}
}

func hlsPrefix(lessonID uuid.UUID) string {
	return fmt.Sprintf("lessons/hls/%s/", lessonID)
}

func (s *orchestratorSrv) Transcode(ctx context.Context, lessonID uuid.UUID) error {
	if !s.prober.Available() || !s.encoder.Available() {
		return ErrEncoderUnavailable
	}

	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("failed to load lesson %q: %w", lessonID.String(), err)
	}
	if lesson.VideoPath == nil || *lesson.VideoPath == "" {
		return ErrSourceMissing
	}

	now := time.Now().UTC()
	lesson.TranscodingStatus = model.JobStatusProcessing
	lesson.TranscodingProgress = 0
	lesson.TranscodingStartedAt = &now
	lesson.TranscodingCompletedAt = nil
	lesson.MasterPlaylistPath = nil
	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		return fmt.Errorf("failed to mark lesson processing: %w", err)
	}

	workDir, err := os.MkdirTemp(s.tempDir, "transcode-*")
	if err != nil {
		s.markFailed(ctx, lesson)
		return fmt.Errorf("failed to create work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn(ctx, "failed to remove work dir", "dir", workDir, "error", err)
		}
	}()

	sourcePath, err := s.downloadSource(ctx, *lesson.VideoPath, workDir)
	if err != nil {
		s.markFailed(ctx, lesson)
		return err
	}

	probe, err := s.prober.Probe(ctx, sourcePath)
	if err != nil {
		s.markFailed(ctx, lesson)
		return fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}

	duration := probe.DurationSeconds
	lesson.DurationSeconds = &duration
	lesson.SourceWidth = &probe.Width
	lesson.SourceHeight = &probe.Height
	lesson.SourceBitrate = &probe.Bitrate
	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		return fmt.Errorf("failed to persist probe results: %w", err)
	}
	logger.Info(ctx, "source probed",
		"width", probe.Width, "height", probe.Height,
		"duration_s", probe.DurationSeconds, "bitrate_kbps", probe.Bitrate)

	plan, err := PlanRenditions(s.ladder, probe.Width, probe.Height)
	if err != nil {
		s.markFailed(ctx, lesson)
		return err
	}

	rows, err := s.resetRenditions(ctx, lessonID, plan)
	if err != nil {
		s.markFailed(ctx, lesson)
		return err
	}

	// Clear any artefacts from a previous run before uploading fresh ones.
	if err := s.strg.RemovePrefix(ctx, s.bucket, hlsPrefix(lessonID)); err != nil {
		logger.Warn(ctx, "failed to clear previous artefacts", "error", err)
	}

	completed := s.encodeAll(ctx, lesson, plan, rows, sourcePath, workDir)
	if len(completed) == 0 {
		s.markFailed(ctx, lesson)
		return ErrNoCompletedRenditions
	}

	masterKey, err := s.uploadMasterPlaylist(ctx, lessonID, completed)
	if err != nil {
		s.markFailed(ctx, lesson)
		return err
	}

	// The run may have been cancelled while encoding. Abandon the
	// commit rather than resurrect a dead run.
	current, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("failed to re-read lesson before commit: %w", err)
	}
	if current.TranscodingStatus != model.JobStatusProcessing {
		logger.Warn(ctx, "transcoding no longer active, abandoning commit", "status", string(current.TranscodingStatus))
		return nil
	}

	done := time.Now().UTC()
	current.TranscodingStatus = model.JobStatusCompleted
	current.TranscodingProgress = 100
	current.MasterPlaylistPath = &masterKey
	current.TranscodingCompletedAt = &done
	if err := s.lessonRepo.Update(ctx, current); err != nil {
		return fmt.Errorf("failed to complete transcoding: %w", err)
	}

	logger.Info(ctx, "transcoding completed", "renditions", len(completed), "master_playlist", masterKey)
	return nil
}

// encodeAll processes tiers sequentially ascending. A tier failure is
// recorded on its row and the loop moves on.
func (s *orchestratorSrv) encodeAll(ctx context.Context, lesson *model.Lesson, plan []model.QualityTier, rows map[string]*model.Rendition, sourcePath, workDir string) []model.QualityTier {
	var completed []model.QualityTier
	for i, tier := range plan {
		row := rows[tier.Label]
		row.Status = model.RenditionStatusProcessing
		if err := s.renditionRepo.Update(ctx, row); err != nil {
			logger.Error(ctx, "failed to mark rendition processing", "quality", tier.Label, "error", err)
		}

		if err := s.encodeTier(ctx, lesson.ID, tier, row, sourcePath, workDir); err != nil {
			msg := err.Error()
			row.Status = model.RenditionStatusFailed
			row.ErrorMessage = &msg
			logger.Error(ctx, "rendition failed", "quality", tier.Label, "error", err)
		} else {
			row.Status = model.RenditionStatusCompleted
			completed = append(completed, tier)
		}
		if err := s.renditionRepo.Update(ctx, row); err != nil {
			logger.Error(ctx, "failed to update rendition", "quality", tier.Label, "error", err)
		}

		lesson.TranscodingProgress = int(math.Ceil(float64(i+1) / float64(len(plan)) * 100))
		if err := s.lessonRepo.Update(ctx, lesson); err != nil {
			logger.Error(ctx, "failed to update progress", "error", err)
		}
	}
	return completed
}

func (s *orchestratorSrv) encodeTier(ctx context.Context, lessonID uuid.UUID, tier model.QualityTier, row *model.Rendition, sourcePath, workDir string) error {
	outDir := filepath.Join(workDir, tier.Label)
	result, err := s.encoder.EncodeHLS(ctx, sourcePath, outDir, tier)
	if err != nil {
		return err
	}

	prefix := hlsPrefix(lessonID) + tier.Label + "/"
	if err := s.uploadDir(ctx, outDir, prefix); err != nil {
		return fmt.Errorf("failed to upload %s artefacts: %w", tier.Label, err)
	}

	playlistKey := prefix + "playlist.m3u8"
	row.PlaylistPath = &playlistKey
	row.FileSize = &result.TotalBytes
	return nil
}

func (s *orchestratorSrv) resetRenditions(ctx context.Context, lessonID uuid.UUID, plan []model.QualityTier) (map[string]*model.Rendition, error) {
	if err := s.renditionRepo.DeleteForLesson(ctx, lessonID); err != nil {
		return nil, fmt.Errorf("failed to clear previous renditions: %w", err)
	}
	rows := make(map[string]*model.Rendition, len(plan))
	for _, tier := range plan {
		row := &model.Rendition{
			ID:       s.genUUID(),
			LessonID: lessonID,
			Quality:  tier.Label,
			Width:    tier.Width,
			Height:   tier.Height,
			Bitrate:  tier.VideoBitrate,
			Status:   model.RenditionStatusPending,
		}
		if err := s.renditionRepo.Create(ctx, row); err != nil {
			return nil, fmt.Errorf("failed to create rendition row for %s: %w", tier.Label, err)
		}
		rows[tier.Label] = row
	}
	return rows, nil
}

func (s *orchestratorSrv) downloadSource(ctx context.Context, videoKey, workDir string) (string, error) {
	// The blob store reports a missing key only once the object is
	// read, so check existence before opening. A read failure after a
	// successful check is transient and left retryable.
	exists, err := s.strg.FileExists(ctx, s.bucket, videoKey)
	if err != nil {
		return "", fmt.Errorf("failed to check source %q: %w", videoKey, err)
	}
	if !exists {
		return "", fmt.Errorf("%w: %q", ErrSourceMissing, videoKey)
	}

	src, err := s.strg.GetFile(ctx, s.bucket, videoKey)
	if err != nil {
		return "", fmt.Errorf("failed to open source %q: %w", videoKey, err)
	}
	defer src.Close()

	localPath := filepath.Join(workDir, "source"+filepath.Ext(videoKey))
	dst, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create local source file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to download source %q: %w", videoKey, err)
	}
	return localPath, nil
}

func (s *orchestratorSrv) uploadDir(ctx context.Context, dir, keyPrefix string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := s.uploadFile(ctx, filepath.Join(dir, entry.Name()), keyPrefix+entry.Name()); err != nil {
			return err
		}
	}
	return nil
}

func (s *orchestratorSrv) uploadFile(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	opts := map[string]string{"Content-Type": contentTypeFor(localPath)}
	return s.strg.SaveFile(ctx, s.bucket, key, f, info.Size(), opts)
}

func (s *orchestratorSrv) uploadMasterPlaylist(ctx context.Context, lessonID uuid.UUID, completed []model.QualityTier) (string, error) {
	manifest := BuildMasterPlaylist(completed)
	key := hlsPrefix(lessonID) + "master.m3u8"
	opts := map[string]string{"Content-Type": "application/vnd.apple.mpegurl"}
	if err := s.strg.SaveFile(ctx, s.bucket, key, strings.NewReader(manifest), int64(len(manifest)), opts); err != nil {
		return "", fmt.Errorf("failed to upload master playlist: %w", err)
	}
	return key, nil
}

func (s *orchestratorSrv) markFailed(ctx context.Context, lesson *model.Lesson) {
	now := time.Now().UTC()
	lesson.TranscodingStatus = model.JobStatusFailed
	lesson.TranscodingCompletedAt = &now
	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		logger.Error(ctx, "failed to mark transcoding failed", "error", err)
	}
}

func contentTypeFor(path string) string {
	switch filepath.Ext(path) {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	default:
		return "application/octet-stream"
	}
}
