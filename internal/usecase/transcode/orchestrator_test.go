package transcode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/edmetrics/lessons-media-go/internal/config"
	"github.com/edmetrics/lessons-media-go/internal/mock"
	"github.com/edmetrics/lessons-media-go/internal/model"
	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

const testBucket = "lessons"

type fixture struct {
	lessonRepo    *mock.LessonRepo
	renditionRepo *mock.RenditionRepo
	strg          *mock.Storage
	prober        *mock.Prober
	encoder       *mock.Encoder
	lesson        *model.Lesson
	orch          port.TranscodeOrchestrator
}

func newFixture(t *testing.T, probeW, probeH int) *fixture {
	t.Helper()

	videoKey := "lessons/videos/src.mp4"
	strg := mock.NewStorage()
	strg.Objects[testBucket+"/"+videoKey] = []byte("source video bytes")

	lesson := &model.Lesson{
		ID:                uuid.NewUUID(),
		Title:             "Intro lecture",
		VideoPath:         &videoKey,
		TranscodingStatus: model.JobStatusPending,
	}
	lessonRepo := mock.NewLessonRepo()
	if err := lessonRepo.Create(context.Background(), lesson); err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		lessonRepo:    lessonRepo,
		renditionRepo: mock.NewRenditionRepo(),
		strg:          strg,
		prober:        &mock.Prober{Out: model.ProbeResult{Width: probeW, Height: probeH, Duration: 120.5, DurationSeconds: 120, Bitrate: 3000, Codec: "h264", FPS: 25, HasAudio: true}},
		encoder:       &mock.Encoder{},
		lesson:        lesson,
	}
	f.orch = NewOrchestrator(
		f.lessonRepo, f.renditionRepo, f.strg, testBucket,
		f.prober, f.encoder, config.DefaultQualityLadder(),
		t.TempDir(), uuid.NewUUID,
	)
	return f
}

func (f *fixture) reload(t *testing.T) *model.Lesson {
	t.Helper()
	lesson, err := f.lessonRepo.GetByID(context.Background(), f.lesson.ID)
	if err != nil {
		t.Fatal(err)
	}
	return lesson
}

func TestTranscode_FullSuccess(t *testing.T) {
	f := newFixture(t, 1920, 1080)

	if err := f.orch.Transcode(context.Background(), f.lesson.ID); err != nil {
		t.Fatalf("transcode failed: %v", err)
	}

	lesson := f.reload(t)
	if lesson.TranscodingStatus != model.JobStatusCompleted {
		t.Errorf("status = %s, want completed", lesson.TranscodingStatus)
	}
	if lesson.TranscodingProgress != 100 {
		t.Errorf("progress = %d, want 100", lesson.TranscodingProgress)
	}
	if lesson.SourceWidth == nil || *lesson.SourceWidth != 1920 {
		t.Error("source width not persisted")
	}
	if lesson.DurationSeconds == nil || *lesson.DurationSeconds != 120 {
		t.Error("duration not persisted")
	}
	wantMaster := fmt.Sprintf("lessons/hls/%s/master.m3u8", f.lesson.ID)
	if lesson.MasterPlaylistPath == nil || *lesson.MasterPlaylistPath != wantMaster {
		t.Errorf("master playlist path = %v, want %s", lesson.MasterPlaylistPath, wantMaster)
	}
	if lesson.TranscodingStartedAt == nil || lesson.TranscodingCompletedAt == nil {
		t.Error("timestamps not recorded")
	}

	manifest := string(f.strg.Objects[testBucket+"/"+wantMaster])
	for _, q := range []string{"240p", "480p", "720p", "1080p"} {
		if !strings.Contains(manifest, q+"/playlist.m3u8") {
			t.Errorf("manifest missing %s entry:\n%s", q, manifest)
		}
	}

	renditions, _ := f.renditionRepo.ListForLesson(context.Background(), f.lesson.ID)
	if len(renditions) != 4 {
		t.Fatalf("rendition rows = %d, want 4", len(renditions))
	}
	for _, r := range renditions {
		if r.Status != model.RenditionStatusCompleted {
			t.Errorf("%s status = %s, want completed", r.Quality, r.Status)
		}
		if r.PlaylistPath == nil {
			t.Errorf("%s missing playlist path", r.Quality)
		}
	}

	// Segment artefacts must land under the per-quality prefixes.
	keys, _ := f.strg.ListFiles(context.Background(), testBucket, fmt.Sprintf("lessons/hls/%s/720p/", f.lesson.ID))
	if len(keys) < 2 {
		t.Errorf("720p artefacts = %v, want playlist and segment", keys)
	}
}

func TestTranscode_PartialFailureStillCompletes(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	f.encoder.FailLabels = map[string]error{"720p": errors.New("encoder crashed")}

	if err := f.orch.Transcode(context.Background(), f.lesson.ID); err != nil {
		t.Fatalf("transcode failed: %v", err)
	}

	lesson := f.reload(t)
	if lesson.TranscodingStatus != model.JobStatusCompleted {
		t.Errorf("status = %s, want completed", lesson.TranscodingStatus)
	}

	manifest := string(f.strg.Objects[testBucket+"/"+*lesson.MasterPlaylistPath])
	if strings.Contains(manifest, "720p/playlist.m3u8") {
		t.Errorf("manifest must not reference the failed tier:\n%s", manifest)
	}
	if !strings.Contains(manifest, "1080p/playlist.m3u8") {
		t.Errorf("manifest missing surviving tier:\n%s", manifest)
	}

	renditions, _ := f.renditionRepo.ListForLesson(context.Background(), f.lesson.ID)
	for _, r := range renditions {
		if r.Quality == "720p" {
			if r.Status != model.RenditionStatusFailed {
				t.Errorf("720p status = %s, want failed", r.Status)
			}
			if r.ErrorMessage == nil || !strings.Contains(*r.ErrorMessage, "encoder crashed") {
				t.Errorf("720p error message = %v", r.ErrorMessage)
			}
		} else if r.Status != model.RenditionStatusCompleted {
			t.Errorf("%s status = %s, want completed", r.Quality, r.Status)
		}
	}
}

func TestTranscode_TotalFailure(t *testing.T) {
	f := newFixture(t, 854, 480)
	f.encoder.FailLabels = map[string]error{
		"240p": errors.New("boom"),
		"480p": errors.New("boom"),
	}

	err := f.orch.Transcode(context.Background(), f.lesson.ID)
	if !errors.Is(err, ErrNoCompletedRenditions) {
		t.Fatalf("err = %v, want ErrNoCompletedRenditions", err)
	}

	lesson := f.reload(t)
	if lesson.TranscodingStatus != model.JobStatusFailed {
		t.Errorf("status = %s, want failed", lesson.TranscodingStatus)
	}
	if lesson.MasterPlaylistPath != nil {
		t.Error("no master playlist may be recorded on total failure")
	}
}

func TestTranscode_BelowFloor(t *testing.T) {
	f := newFixture(t, 160, 120)

	err := f.orch.Transcode(context.Background(), f.lesson.ID)
	if !errors.Is(err, ErrNoViableRendition) {
		t.Fatalf("err = %v, want ErrNoViableRendition", err)
	}
	if f.reload(t).TranscodingStatus != model.JobStatusFailed {
		t.Error("lesson must be marked failed")
	}
	if len(f.encoder.Encoded) != 0 {
		t.Errorf("no tier should be encoded, got %v", f.encoder.Encoded)
	}
}

func TestTranscode_EncoderUnavailable(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	f.encoder.Unavailable = true

	err := f.orch.Transcode(context.Background(), f.lesson.ID)
	if !errors.Is(err, ErrEncoderUnavailable) {
		t.Fatalf("err = %v, want ErrEncoderUnavailable", err)
	}
	// The guard fires before any state change.
	if f.reload(t).TranscodingStatus != model.JobStatusPending {
		t.Error("lesson state must be untouched when tools are missing")
	}
}

func TestTranscode_NoSourceVideo(t *testing.T) {
	f := newFixture(t, 1920, 1080)
	f.lesson.VideoPath = nil
	if err := f.lessonRepo.Update(context.Background(), f.lesson); err != nil {
		t.Fatal(err)
	}

	if err := f.orch.Transcode(context.Background(), f.lesson.ID); !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("err = %v, want ErrSourceMissing", err)
	}
}

func TestTranscode_SourceObjectGone_MissingKeySurfacesOnRead(t *testing.T) {
	// The lesson points at a key that is no longer stored, and the
	// store only reports the missing key once the object is read. The
	// run must still fail with the non-retryable sentinel.
	f := newFixture(t, 1920, 1080)
	f.strg.DeferGetErrors = true
	delete(f.strg.Objects, testBucket+"/"+*f.lesson.VideoPath)

	err := f.orch.Transcode(context.Background(), f.lesson.ID)
	if !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("err = %v, want ErrSourceMissing", err)
	}
	if f.reload(t).TranscodingStatus != model.JobStatusFailed {
		t.Error("lesson must be marked failed when the source object is gone")
	}
}

func TestTranscode_ClearsPreviousRenditions(t *testing.T) {
	f := newFixture(t, 854, 480)

	stale := &model.Rendition{
		ID:       uuid.NewUUID(),
		LessonID: f.lesson.ID,
		Quality:  "1080p",
		Status:   model.RenditionStatusCompleted,
	}
	if err := f.renditionRepo.Create(context.Background(), stale); err != nil {
		t.Fatal(err)
	}

	if err := f.orch.Transcode(context.Background(), f.lesson.ID); err != nil {
		t.Fatalf("transcode failed: %v", err)
	}

	renditions, _ := f.renditionRepo.ListForLesson(context.Background(), f.lesson.ID)
	for _, r := range renditions {
		if r.Quality == "1080p" {
			t.Error("stale rendition row survived the run")
		}
	}
	if len(renditions) != 2 {
		t.Errorf("rendition rows = %d, want 2", len(renditions))
	}
}
