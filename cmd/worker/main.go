package main

import (
	"context"
	"os"

	"github.com/edmetrics/lessons-media-go/internal/avatargen"
	"github.com/edmetrics/lessons-media-go/internal/config"
	"github.com/edmetrics/lessons-media-go/internal/db"
	"github.com/edmetrics/lessons-media-go/internal/encode"
	workerHandler "github.com/edmetrics/lessons-media-go/internal/handler/worker"
	"github.com/edmetrics/lessons-media-go/internal/logger"
	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/probe"
	"github.com/edmetrics/lessons-media-go/internal/repository/mariadb"
	"github.com/edmetrics/lessons-media-go/internal/storage"
	"github.com/edmetrics/lessons-media-go/internal/task"
	generationSvc "github.com/edmetrics/lessons-media-go/internal/usecase/generation"
	transcodeSvc "github.com/edmetrics/lessons-media-go/internal/usecase/transcode"
	lmuuid "github.com/edmetrics/lessons-media-go/internal/uuid"
	"github.com/hibiken/asynq"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	if cfg.RedisAddr == "" {
		logger.Error(ctx, "❌  REDIS_ADDR is required for the worker")
		os.Exit(1)
	}

	database := initDb(ctx, cfg)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Errorf(ctx, "DB close error: %v", err)
		}
	}()

	strg := initStorage(ctx, cfg)

	lessonRepo := mariadb.NewLessonRepository(database.DB)
	renditionRepo := mariadb.NewRenditionRepository(database.DB)

	opts := task.Options{
		MaxRetries:        cfg.TaskMaxRetries,
		RetryDelay:        cfg.TaskRetryDelay,
		TranscodeTimeout:  cfg.TranscodeTimeout,
		GenerationTimeout: cfg.GenerationTimeout,
	}
	dispatcher := task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword, opts)

	prober := probe.NewFFprobe(cfg.FFprobePath)
	encoder := encode.NewFFmpegEncoder(cfg.FFmpegPath)
	transcodeOrch := transcodeSvc.NewOrchestrator(
		lessonRepo,
		renditionRepo,
		strg,
		cfg.Bucket,
		prober,
		encoder,
		cfg.Qualities,
		cfg.TempDir,
		lmuuid.NewUUID,
	)

	genClient := avatargen.NewClient(cfg.AvatarAPIBaseURL, cfg.AvatarAPIKey)
	generationOrch := generationSvc.NewOrchestrator(
		lessonRepo,
		strg,
		cfg.Bucket,
		genClient,
		dispatcher,
		cfg.GenerationPollInterval,
		cfg.GenerationMaxPolls,
		lmuuid.NewUUID,
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(task.TypeTranscodeLesson, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseTranscodeLessonPayload(t)
		if err != nil {
			return err
		}
		return workerHandler.TranscodeLessonHandler(ctx, p, transcodeOrch)
	})
	mux.HandleFunc(task.TypeGenerateVideo, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseGenerateVideoPayload(t)
		if err != nil {
			return err
		}
		return workerHandler.GenerateVideoHandler(ctx, p, generationOrch)
	})

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				task.QueueTranscoding: 6,
				task.QueueGeneration:  4,
			},
			RetryDelayFunc: opts.RetryDelayFunc,
		},
	)

	logger.Info(ctx, "🚀 Worker starting…")
	if err := srv.Run(mux); err != nil {
		logger.Errorf(ctx, "❌  Could not run worker server: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Worker gracefully stopped")
}

func initDb(ctx context.Context, cfg *config.Settings) *db.Database {
	logger.Info(ctx, "initialising database...")

	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}

	return database
}

func initStorage(ctx context.Context, cfg *config.Settings) port.Storage {
	strg, err := storage.NewStorage(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	return strg
}
