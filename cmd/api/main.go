package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/edmetrics/lessons-media-go/internal/avatargen"
	"github.com/edmetrics/lessons-media-go/internal/cache"
	"github.com/edmetrics/lessons-media-go/internal/config"
	"github.com/edmetrics/lessons-media-go/internal/db"
	"github.com/edmetrics/lessons-media-go/internal/handler/api"
	"github.com/edmetrics/lessons-media-go/internal/logger"
	cMiddleware "github.com/edmetrics/lessons-media-go/internal/middleware"
	"github.com/edmetrics/lessons-media-go/internal/port"
	"github.com/edmetrics/lessons-media-go/internal/repository/mariadb"
	"github.com/edmetrics/lessons-media-go/internal/storage"
	"github.com/edmetrics/lessons-media-go/internal/task"
	generationSvc "github.com/edmetrics/lessons-media-go/internal/usecase/generation"
	transcodeSvc "github.com/edmetrics/lessons-media-go/internal/usecase/transcode"
	uploadSvc "github.com/edmetrics/lessons-media-go/internal/usecase/upload"
	lmuuid "github.com/edmetrics/lessons-media-go/internal/uuid"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	database := initDb(ctx, cfg)

	r := initRouter(ctx, cfg.JWTPublicKey)

	strg := initStorage(ctx, cfg)
	if err := strg.InitBucket(cfg.Bucket); err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize bucket %q: %v", cfg.Bucket, err)
		os.Exit(1)
	}

	lessonRepo := mariadb.NewLessonRepository(database.DB)
	renditionRepo := mariadb.NewRenditionRepository(database.DB)

	var ca port.Cache
	var dispatcher port.TaskDispatcher
	if cfg.RedisAddr != "" {
		ca = cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)
		dispatcher = task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword, task.Options{
			MaxRetries:        cfg.TaskMaxRetries,
			RetryDelay:        cfg.TaskRetryDelay,
			TranscodeTimeout:  cfg.TranscodeTimeout,
			GenerationTimeout: cfg.GenerationTimeout,
		})
		logger.Info(ctx, "✅  Redis enabled")
	} else {
		ca = cache.NewNoop()
		dispatcher = task.NewNoopDispatcher()
		logger.Warn(ctx, "⚠️  Redis not configured — caching and queuing are disabled")
	}

	sessionSvc := uploadSvc.NewSessionManager(strg, cfg.Bucket, lmuuid.NewUUID)
	r.Post("/uploads/initiate", api.InitiateUploadHandler(sessionSvc))
	r.With(cMiddleware.WithSessionID()).
		Post("/uploads/{id}/chunks", api.UploadChunkHandler(sessionSvc))
	r.With(cMiddleware.WithSessionID()).
		Get("/uploads/{id}/status", api.UploadStatusHandler(sessionSvc))
	r.With(cMiddleware.WithSessionID()).
		Post("/uploads/{id}/finalise", api.FinaliseUploadHandler(sessionSvc))
	r.With(cMiddleware.WithSessionID()).
		Delete("/uploads/{id}", api.CancelUploadHandler(sessionSvc))

	attacherSvc := transcodeSvc.NewVideoAttacher(lessonRepo, strg, cfg.Bucket, dispatcher)
	r.With(cMiddleware.WithLessonID()).
		Post("/lessons/{id}/video", api.AttachVideoHandler(attacherSvc))

	transcodeRequesterSvc := transcodeSvc.NewRequester(lessonRepo, dispatcher)
	r.With(cMiddleware.WithLessonID()).
		Post("/lessons/{id}/transcode", api.RequestTranscodeHandler(transcodeRequesterSvc))

	transcodingStatusSvc := transcodeSvc.NewStatusGetter(lessonRepo, renditionRepo, strg, cfg.Bucket)
	r.With(cMiddleware.WithLessonID()).
		Get("/lessons/{id}/transcoding", api.TranscodingStatusHandler(transcodingStatusSvc))

	generationRequesterSvc := generationSvc.NewRequester(lessonRepo, dispatcher)
	r.With(cMiddleware.WithLessonID()).
		Post("/lessons/{id}/generation", api.RequestGenerationHandler(generationRequesterSvc))

	generationStatusSvc := generationSvc.NewStatusGetter(lessonRepo)
	r.With(cMiddleware.WithLessonID()).
		Get("/lessons/{id}/generation", api.GenerationStatusHandler(generationStatusSvc))

	genClient := avatargen.NewClient(cfg.AvatarAPIBaseURL, cfg.AvatarAPIKey)
	catalogSvc := generationSvc.NewCatalogGetter(genClient, ca)
	r.Get("/avatars", api.ListAvatarsHandler(catalogSvc))
	r.Get("/voices", api.ListVoicesHandler(catalogSvc))
	r.Get("/quota", api.RemainingQuotaHandler(catalogSvc))

	listenRouter(ctx, r, cfg, database)
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

func initRouter(ctx context.Context, jwtKey string) *chi.Mux {
	logger.Info(ctx, "initialising router...")

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(cMiddleware.WithServiceAuth(jwtKey))

	r.NotFound(api.NotFoundHandler())
	r.MethodNotAllowed(api.MethodNotAllowedHandler())

	return r
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

func listenRouter(ctx context.Context, r *chi.Mux, cfg *config.Settings, database *db.Database) {
	srv := &http.Server{Addr: ":" + strconv.Itoa(cfg.ServerPort), Handler: r}

	// start serving
	go func() {
		logger.Infof(ctx, "🚀 API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Listen error: %v", err)
			os.Exit(1)
		}
	}()

	// block until we get SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "❌  Server shutdown failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Server gracefully stopped")

	if err := database.Close(); err != nil {
		logger.Errorf(ctx, "DB close error: %v", err)
		os.Exit(1)
	}
}
