package config

import (
	"fmt"
	"log"
	"time"

	"github.com/edmetrics/lessons-media-go/internal/model"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Settings struct {
	MariaDBDSN      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ServerPort      int

	RedisAddr     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	Bucket         string

	JWTPublicKey string

	FFmpegPath  string
	FFprobePath string
	TempDir     string

	// quality ladder, ascending by target height
	Qualities []model.QualityTier

	AvatarAPIKey     string
	AvatarAPIBaseURL string
	AvatarTestMode   bool

	GenerationPollInterval time.Duration
	GenerationMaxPolls     int

	TaskMaxRetries    int
	TaskRetryDelay    time.Duration
	TranscodeTimeout  time.Duration
	GenerationTimeout time.Duration
}

func Load() (*Settings, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found; proceeding with OS environment variables")
	}

	viper.AutomaticEnv()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	for _, key := range []string{
		"MARIADB_DSN",
		"MARIADB_MAX_OPEN_CONN",
		"MARIADB_MAX_IDLE_CONNS",
		"MARIADB_CONN_MAX_LIFETIME",
		"SERVER_PORT",
		"MINIO_ENDPOINT",
		"MINIO_ACCESS_KEY",
		"MINIO_SECRET_KEY",
	} {
		if !viper.IsSet(key) {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	viper.SetDefault("BUCKET", "lessons")
	viper.SetDefault("FFMPEG_PATH", "/usr/bin/ffmpeg")
	viper.SetDefault("FFPROBE_PATH", "/usr/bin/ffprobe")
	viper.SetDefault("TRANSCODING_TEMP_DIR", "/tmp/transcoding")
	viper.SetDefault("AVATAR_API_BASE_URL", "https://api.heygen.com")
	viper.SetDefault("AVATAR_DEFAULT_TEST_MODE", true)
	viper.SetDefault("GENERATION_POLL_INTERVAL", 15)
	viper.SetDefault("GENERATION_MAX_POLLS", 120)
	viper.SetDefault("TASK_MAX_RETRIES", 3)
	viper.SetDefault("TASK_RETRY_DELAY", 60)
	viper.SetDefault("TRANSCODE_TIMEOUT", 3600)
	// Must exceed the poll ceiling (interval x max polls = 1800s) plus
	// the download window, or the queue kills a run that completes on a
	// late poll.
	viper.SetDefault("GENERATION_TIMEOUT", 2400)

	return &Settings{
		MariaDBDSN:      viper.GetString("MARIADB_DSN"),
		MaxOpenConns:    viper.GetInt("MARIADB_MAX_OPEN_CONN"),
		MaxIdleConns:    viper.GetInt("MARIADB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: time.Duration(viper.GetInt("MARIADB_CONN_MAX_LIFETIME")) * time.Second,
		ServerPort:      viper.GetInt("SERVER_PORT"),

		RedisAddr:     viper.GetString("REDIS_ADDR"),
		RedisPassword: viper.GetString("REDIS_PASSWORD"),

		MinioEndpoint:  viper.GetString("MINIO_ENDPOINT"),
		MinioAccessKey: viper.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey: viper.GetString("MINIO_SECRET_KEY"),
		MinioUseSSL:    viper.GetBool("MINIO_USE_SSL"),
		Bucket:         viper.GetString("BUCKET"),

		JWTPublicKey: viper.GetString("JWT_PUBLIC_KEY"),

		FFmpegPath:  viper.GetString("FFMPEG_PATH"),
		FFprobePath: viper.GetString("FFPROBE_PATH"),
		TempDir:     viper.GetString("TRANSCODING_TEMP_DIR"),

		Qualities: DefaultQualityLadder(),

		AvatarAPIKey:     viper.GetString("AVATAR_API_KEY"),
		AvatarAPIBaseURL: viper.GetString("AVATAR_API_BASE_URL"),
		AvatarTestMode:   viper.GetBool("AVATAR_DEFAULT_TEST_MODE"),

		GenerationPollInterval: time.Duration(viper.GetInt("GENERATION_POLL_INTERVAL")) * time.Second,
		GenerationMaxPolls:     viper.GetInt("GENERATION_MAX_POLLS"),

		TaskMaxRetries:    viper.GetInt("TASK_MAX_RETRIES"),
		TaskRetryDelay:    time.Duration(viper.GetInt("TASK_RETRY_DELAY")) * time.Second,
		TranscodeTimeout:  time.Duration(viper.GetInt("TRANSCODE_TIMEOUT")) * time.Second,
		GenerationTimeout: time.Duration(viper.GetInt("GENERATION_TIMEOUT")) * time.Second,
	}, nil
}

// DefaultQualityLadder returns the built-in rendition tiers, ascending
// by target height. Tiers taller than the source are never produced.
func DefaultQualityLadder() []model.QualityTier {
	return []model.QualityTier{
		{Label: "240p", Width: 426, Height: 240, VideoBitrate: 400, AudioBitrate: 64, MaxRate: 500, BufferSize: 800},
		{Label: "480p", Width: 854, Height: 480, VideoBitrate: 1000, AudioBitrate: 96, MaxRate: 1200, BufferSize: 2000},
		{Label: "720p", Width: 1280, Height: 720, VideoBitrate: 2500, AudioBitrate: 128, MaxRate: 3000, BufferSize: 5000},
		{Label: "1080p", Width: 1920, Height: 1080, VideoBitrate: 5000, AudioBitrate: 192, MaxRate: 6000, BufferSize: 10000},
	}
}
