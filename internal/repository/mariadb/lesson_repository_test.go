package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/edmetrics/lessons-media-go/internal/model"
	lmuuid "github.com/edmetrics/lessons-media-go/internal/uuid"
	"github.com/google/uuid"
)

// bin matches the BINARY(16) representation the driver hands to Scan.
func bin(u lmuuid.UUID) []byte {
	g := uuid.UUID(u)
	return g[:]
}

var lessonColumns = []string{
	"id", "title", "video_path", "original_video_path", "video_filename", "duration_seconds",
	"transcoding_status", "transcoding_progress", "master_playlist_path",
	"transcoding_started_at", "transcoding_completed_at",
	"source_width", "source_height", "source_bitrate",
	"avatar_script", "avatar_id", "voice_id", "avatar_test_mode", "remote_video_id",
	"generation_status", "generation_error", "generation_started_at", "generation_completed_at",
	"created_at", "updated_at",
}

func TestLessonRepository_Create_Success(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	defer func() { _ = sqlDB.Close() }()

	repo := NewLessonRepository(sqlDB)

	mockID := lmuuid.UUID(uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"))
	videoPath := "lessons/videos/x_lecture.mp4"
	l := &model.Lesson{
		ID:                mockID,
		Title:             "Intro to Go",
		VideoPath:         &videoPath,
		TranscodingStatus: model.JobStatusNone,
		GenerationStatus:  model.JobStatusNone,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lessons")).
		WithArgs(
			l.ID, l.Title,
			l.VideoPath, l.OriginalVideoPath, l.VideoFilename, l.DurationSeconds,
			l.TranscodingStatus, l.TranscodingProgress, l.MasterPlaylistPath,
			l.TranscodingStartedAt, l.TranscodingCompletedAt,
			l.SourceWidth, l.SourceHeight, l.SourceBitrate,
			l.AvatarScript, l.AvatarID, l.VoiceID, l.AvatarTestMode, l.RemoteVideoID,
			l.GenerationStatus, l.GenerationError, l.GenerationStartedAt, l.GenerationCompletedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), l); err != nil {
		t.Errorf("Create() returned unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestLessonRepository_Update_Success(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	defer func() { _ = sqlDB.Close() }()

	repo := NewLessonRepository(sqlDB)

	mockID := lmuuid.UUID(uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"))
	master := "lessons/hls/aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee/master.m3u8"
	l := &model.Lesson{
		ID:                  mockID,
		Title:               "Intro to Go",
		TranscodingStatus:   model.JobStatusCompleted,
		TranscodingProgress: 100,
		MasterPlaylistPath:  &master,
		GenerationStatus:    model.JobStatusNone,
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE lessons")).
		WithArgs(
			l.Title,
			l.VideoPath, l.OriginalVideoPath, l.VideoFilename, l.DurationSeconds,
			l.TranscodingStatus, l.TranscodingProgress, l.MasterPlaylistPath,
			l.TranscodingStartedAt, l.TranscodingCompletedAt,
			l.SourceWidth, l.SourceHeight, l.SourceBitrate,
			l.AvatarScript, l.AvatarID, l.VoiceID, l.AvatarTestMode, l.RemoteVideoID,
			l.GenerationStatus, l.GenerationError, l.GenerationStartedAt, l.GenerationCompletedAt,
			l.ID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), l); err != nil {
		t.Errorf("Update() returned unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestLessonRepository_GetByID(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	defer func() { _ = sqlDB.Close() }()

	repo := NewLessonRepository(sqlDB)

	mockID := lmuuid.UUID(uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"))
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(lessonColumns).AddRow(
			bin(mockID), "Intro to Go",
			"lessons/videos/x_lecture.mp4", nil, "lecture.mp4", 120,
			string(model.JobStatusCompleted), 100, nil,
			nil, nil,
			1920, 1080, 4200,
			nil, nil, nil, false, nil,
			string(model.JobStatusNone), nil, nil, nil,
			now, now,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM lessons")).
			WithArgs(mockID).
			WillReturnRows(rows)

		got, err := repo.GetByID(context.Background(), mockID)
		if err != nil {
			t.Fatalf("GetByID() returned unexpected error: %v", err)
		}
		if got.ID != mockID || got.Title != "Intro to Go" {
			t.Errorf("lesson = %+v", got)
		}
		if got.TranscodingStatus != model.JobStatusCompleted || *got.SourceHeight != 1080 {
			t.Errorf("transcoding fields = %+v", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM lessons")).
			WithArgs(mockID).
			WillReturnError(sql.ErrNoRows)

		if _, err := repo.GetByID(context.Background(), mockID); !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("err = %v, want sql.ErrNoRows", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
