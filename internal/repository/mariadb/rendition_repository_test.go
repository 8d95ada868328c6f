package mariadb

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/edmetrics/lessons-media-go/internal/model"
	lmuuid "github.com/edmetrics/lessons-media-go/internal/uuid"
	"github.com/google/uuid"
)

func TestRenditionRepository_Create_Success(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	defer func() { _ = sqlDB.Close() }()

	repo := NewRenditionRepository(sqlDB)

	lessonID := lmuuid.UUID(uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"))
	r := &model.Rendition{
		ID:       lmuuid.UUID(uuid.MustParse("11111111-2222-3333-4444-555555555555")),
		LessonID: lessonID,
		Quality:  "720p",
		Width:    1280,
		Height:   720,
		Bitrate:  2500,
		Status:   model.RenditionStatusPending,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO renditions")).
		WithArgs(
			r.ID, r.LessonID, r.Quality,
			r.Width, r.Height, r.Bitrate,
			r.PlaylistPath, r.FileSize,
			r.Status, r.ErrorMessage,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), r); err != nil {
		t.Errorf("Create() returned unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestRenditionRepository_Update_Success(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	defer func() { _ = sqlDB.Close() }()

	repo := NewRenditionRepository(sqlDB)

	playlist := "lessons/hls/aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee/720p/playlist.m3u8"
	size := int64(8_400_000)
	r := &model.Rendition{
		ID:           lmuuid.UUID(uuid.MustParse("11111111-2222-3333-4444-555555555555")),
		Quality:      "720p",
		PlaylistPath: &playlist,
		FileSize:     &size,
		Status:       model.RenditionStatusCompleted,
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE renditions")).
		WithArgs(r.PlaylistPath, r.FileSize, r.Status, r.ErrorMessage, r.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), r); err != nil {
		t.Errorf("Update() returned unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestRenditionRepository_ListForLesson(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	defer func() { _ = sqlDB.Close() }()

	repo := NewRenditionRepository(sqlDB)

	lessonID := lmuuid.UUID(uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"))
	now := time.Now()
	columns := []string{
		"id", "lesson_id", "quality", "width", "height", "bitrate",
		"playlist_path", "file_size", "status", "error_message",
		"created_at", "updated_at",
	}

	t.Run("two rows height ascending", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow(
				bin(lmuuid.UUID(uuid.MustParse("11111111-2222-3333-4444-555555555555"))),
				bin(lessonID), "240p", 426, 240, 400,
				"lessons/hls/aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee/240p/playlist.m3u8", int64(1_200_000),
				string(model.RenditionStatusCompleted), nil,
				now, now,
			).
			AddRow(
				bin(lmuuid.UUID(uuid.MustParse("66666666-7777-8888-9999-000000000000"))),
				bin(lessonID), "720p", 1280, 720, 2500,
				nil, nil,
				string(model.RenditionStatusFailed), "encode exited with status 1",
				now, now,
			)
		mock.ExpectQuery(regexp.QuoteMeta("FROM renditions")).
			WithArgs(lessonID).
			WillReturnRows(rows)

		got, err := repo.ListForLesson(context.Background(), lessonID)
		if err != nil {
			t.Fatalf("ListForLesson() returned unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d renditions, want 2", len(got))
		}
		if got[0].Quality != "240p" || got[1].Quality != "720p" {
			t.Errorf("qualities = %q, %q", got[0].Quality, got[1].Quality)
		}
		if got[1].ErrorMessage == nil || *got[1].ErrorMessage != "encode exited with status 1" {
			t.Errorf("error message = %v", got[1].ErrorMessage)
		}
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM renditions")).
			WithArgs(lessonID).
			WillReturnError(errors.New("boom"))

		if _, err := repo.ListForLesson(context.Background(), lessonID); err == nil {
			t.Error("expected error, got nil")
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestRenditionRepository_DeleteForLesson(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	defer func() { _ = sqlDB.Close() }()

	repo := NewRenditionRepository(sqlDB)

	lessonID := lmuuid.UUID(uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM renditions WHERE lesson_id = ?")).
		WithArgs(lessonID).
		WillReturnResult(sqlmock.NewResult(0, 4))

	if err := repo.DeleteForLesson(context.Background(), lessonID); err != nil {
		t.Errorf("DeleteForLesson() returned unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
