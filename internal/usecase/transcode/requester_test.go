package transcode

import (
	"context"
	"errors"
	"testing"

	"github.com/edmetrics/lessons-media-go/internal/mock"
	"github.com/edmetrics/lessons-media-go/internal/model"
	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/uuid"
)

func seedLesson(t *testing.T, repo *mock.LessonRepo, status model.JobStatus, videoKey string) *model.Lesson {
	t.Helper()
	lesson := &model.Lesson{
		ID:                uuid.NewUUID(),
		Title:             "Lesson",
		TranscodingStatus: status,
	}
	if videoKey != "" {
		lesson.VideoPath = &videoKey
	}
	if err := repo.Create(context.Background(), lesson); err != nil {
		t.Fatal(err)
	}
	return lesson
}

func TestAttachVideo(t *testing.T) {
	repo := mock.NewLessonRepo()
	strg := mock.NewStorage()
	dispatcher := &mock.Dispatcher{}
	lesson := seedLesson(t, repo, model.JobStatusNone, "")

	key := "lessons/videos/abc_lecture.mp4"
	strg.Objects[testBucket+"/"+key] = []byte("assembled")

	attacher := NewVideoAttacher(repo, strg, testBucket, dispatcher)
	err := attacher.AttachVideo(context.Background(), port.AttachVideoInput{
		LessonID: lesson.ID,
		FilePath: key,
		FileName: "lecture.mp4",
		FileSize: 9,
	})
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), lesson.ID)
	if got.VideoPath == nil || *got.VideoPath != key {
		t.Errorf("video path = %v, want %s", got.VideoPath, key)
	}
	if got.VideoFilename == nil || *got.VideoFilename != "lecture.mp4" {
		t.Errorf("video filename = %v", got.VideoFilename)
	}
	if got.TranscodingStatus != model.JobStatusPending {
		t.Errorf("status = %s, want pending", got.TranscodingStatus)
	}
	if len(dispatcher.TranscodeIDs) != 1 || dispatcher.TranscodeIDs[0] != lesson.ID {
		t.Errorf("enqueued ids = %v", dispatcher.TranscodeIDs)
	}
}

func TestAttachVideo_MissingFile(t *testing.T) {
	repo := mock.NewLessonRepo()
	dispatcher := &mock.Dispatcher{}
	lesson := seedLesson(t, repo, model.JobStatusNone, "")

	attacher := NewVideoAttacher(repo, mock.NewStorage(), testBucket, dispatcher)
	err := attacher.AttachVideo(context.Background(), port.AttachVideoInput{
		LessonID: lesson.ID,
		FilePath: "lessons/videos/ghost.mp4",
		FileName: "ghost.mp4",
	})
	if !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("err = %v, want ErrSourceMissing", err)
	}
	if len(dispatcher.TranscodeIDs) != 0 {
		t.Error("nothing may be enqueued when the file is missing")
	}
}

func TestAttachVideo_RejectsActiveRun(t *testing.T) {
	repo := mock.NewLessonRepo()
	lesson := seedLesson(t, repo, model.JobStatusProcessing, "lessons/videos/old.mp4")

	attacher := NewVideoAttacher(repo, mock.NewStorage(), testBucket, &mock.Dispatcher{})
	err := attacher.AttachVideo(context.Background(), port.AttachVideoInput{
		LessonID: lesson.ID,
		FilePath: "lessons/videos/new.mp4",
		FileName: "new.mp4",
	})
	if !errors.Is(err, ErrJobAlreadyActive) {
		t.Fatalf("err = %v, want ErrJobAlreadyActive", err)
	}
}

func TestRequestTranscode(t *testing.T) {
	repo := mock.NewLessonRepo()
	dispatcher := &mock.Dispatcher{}
	lesson := seedLesson(t, repo, model.JobStatusFailed, "lessons/videos/src.mp4")

	requester := NewRequester(repo, dispatcher)
	if err := requester.RequestTranscode(context.Background(), lesson.ID); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), lesson.ID)
	if got.TranscodingStatus != model.JobStatusPending {
		t.Errorf("status = %s, want pending", got.TranscodingStatus)
	}
	if got.TranscodingProgress != 0 || got.MasterPlaylistPath != nil {
		t.Error("previous run state must be reset")
	}
	if len(dispatcher.TranscodeIDs) != 1 {
		t.Errorf("enqueued = %v", dispatcher.TranscodeIDs)
	}
}

func TestRequestTranscode_Guards(t *testing.T) {
	repo := mock.NewLessonRepo()
	requester := NewRequester(repo, &mock.Dispatcher{})
	ctx := context.Background()

	noVideo := seedLesson(t, repo, model.JobStatusNone, "")
	if err := requester.RequestTranscode(ctx, noVideo.ID); !errors.Is(err, ErrSourceMissing) {
		t.Errorf("err = %v, want ErrSourceMissing", err)
	}

	for _, status := range []model.JobStatus{model.JobStatusPending, model.JobStatusProcessing} {
		active := seedLesson(t, repo, status, "lessons/videos/src.mp4")
		if err := requester.RequestTranscode(ctx, active.ID); !errors.Is(err, ErrJobAlreadyActive) {
			t.Errorf("status %s: err = %v, want ErrJobAlreadyActive", status, err)
		}
	}
}

func TestGetTranscodingStatus(t *testing.T) {
	repo := mock.NewLessonRepo()
	renditionRepo := mock.NewRenditionRepo()
	strg := mock.NewStorage()
	ctx := context.Background()

	lesson := seedLesson(t, repo, model.JobStatusCompleted, "lessons/videos/src.mp4")
	master := "lessons/hls/" + lesson.ID.String() + "/master.m3u8"
	lesson.MasterPlaylistPath = &master
	lesson.TranscodingProgress = 100
	if err := repo.Update(ctx, lesson); err != nil {
		t.Fatal(err)
	}

	for _, q := range []struct {
		label  string
		height int
	}{{"480p", 480}, {"240p", 240}} {
		if err := renditionRepo.Create(ctx, &model.Rendition{
			ID:       uuid.NewUUID(),
			LessonID: lesson.ID,
			Quality:  q.label,
			Height:   q.height,
			Status:   model.RenditionStatusCompleted,
		}); err != nil {
			t.Fatal(err)
		}
	}

	getter := NewStatusGetter(repo, renditionRepo, strg, testBucket)
	out, err := getter.GetTranscodingStatus(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}

	if out.Status != model.JobStatusCompleted || out.Progress != 100 {
		t.Errorf("status = %s progress = %d", out.Status, out.Progress)
	}
	if out.MasterPlaylistURL == nil {
		t.Error("expected presigned master playlist url")
	}
	if len(out.Renditions) != 2 {
		t.Fatalf("renditions = %d, want 2", len(out.Renditions))
	}
	// Ordered ascending by height.
	if out.Renditions[0].Quality != "240p" || out.Renditions[1].Quality != "480p" {
		t.Errorf("rendition order = %s, %s", out.Renditions[0].Quality, out.Renditions[1].Quality)
	}
}
