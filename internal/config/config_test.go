package config

import (
	"os"
	"testing"
	"time"
)

func chtmp(t *testing.T) {
	t.Helper()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("could not chdir to temp dir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Fatalf("could not chdir back to original dir: %v", err)
		}
	})
}

func requiredEnv() map[string]string {
	return map[string]string{
		"MARIADB_DSN":               "user:pass@tcp(localhost:3306)/db",
		"MARIADB_MAX_OPEN_CONN":     "10",
		"MARIADB_MAX_IDLE_CONNS":    "5",
		"MARIADB_CONN_MAX_LIFETIME": "30",
		"SERVER_PORT":               "8080",
		"MINIO_ENDPOINT":            "localhost:9000",
		"MINIO_ACCESS_KEY":          "minio",
		"MINIO_SECRET_KEY":          "minio123",
	}
}

func TestLoad_Success(t *testing.T) {
	// Switch to a temp directory to avoid loading a real .env
	chtmp(t)

	reqs := requiredEnv()
	for k, v := range reqs {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.MariaDBDSN != reqs["MARIADB_DSN"] {
		t.Errorf("MariaDBDSN: expected %q, got %q", reqs["MARIADB_DSN"], cfg.MariaDBDSN)
	}
	if cfg.MaxOpenConns != 10 {
		t.Errorf("MaxOpenConns: expected %d, got %d", 10, cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime != 30*time.Second {
		t.Errorf("ConnMaxLifetime: expected %v, got %v", 30*time.Second, cfg.ConnMaxLifetime)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort: expected %d, got %d", 8080, cfg.ServerPort)
	}

	// defaults kick in for everything optional
	if cfg.Bucket != "lessons" {
		t.Errorf("Bucket: expected %q, got %q", "lessons", cfg.Bucket)
	}
	if cfg.FFmpegPath != "/usr/bin/ffmpeg" || cfg.FFprobePath != "/usr/bin/ffprobe" {
		t.Errorf("tool paths = %q, %q", cfg.FFmpegPath, cfg.FFprobePath)
	}
	if cfg.AvatarAPIBaseURL != "https://api.heygen.com" {
		t.Errorf("AvatarAPIBaseURL: got %q", cfg.AvatarAPIBaseURL)
	}
	if cfg.GenerationPollInterval != 15*time.Second {
		t.Errorf("GenerationPollInterval: got %v", cfg.GenerationPollInterval)
	}
	if cfg.GenerationMaxPolls != 120 {
		t.Errorf("GenerationMaxPolls: got %d", cfg.GenerationMaxPolls)
	}
	if cfg.TaskMaxRetries != 3 || cfg.TaskRetryDelay != 60*time.Second {
		t.Errorf("task retry settings = %d, %v", cfg.TaskMaxRetries, cfg.TaskRetryDelay)
	}
	if cfg.TranscodeTimeout != time.Hour || cfg.GenerationTimeout != 40*time.Minute {
		t.Errorf("task timeouts = %v, %v", cfg.TranscodeTimeout, cfg.GenerationTimeout)
	}
	// A generation that completes on the last poll still needs the
	// download window before the handler returns.
	pollCeiling := cfg.GenerationPollInterval * time.Duration(cfg.GenerationMaxPolls)
	if cfg.GenerationTimeout <= pollCeiling {
		t.Errorf("GenerationTimeout %v must exceed poll ceiling %v", cfg.GenerationTimeout, pollCeiling)
	}
	if len(cfg.Qualities) != 4 || cfg.Qualities[0].Label != "240p" || cfg.Qualities[3].Label != "1080p" {
		t.Errorf("quality ladder = %+v", cfg.Qualities)
	}
}

func TestLoad_MissingRequiredVars(t *testing.T) {
	cases := []struct {
		missingKey string
		wantErr    string
	}{
		{"MARIADB_DSN", "MARIADB_DSN is required"},
		{"MARIADB_MAX_OPEN_CONN", "MARIADB_MAX_OPEN_CONN is required"},
		{"MARIADB_MAX_IDLE_CONNS", "MARIADB_MAX_IDLE_CONNS is required"},
		{"MARIADB_CONN_MAX_LIFETIME", "MARIADB_CONN_MAX_LIFETIME is required"},
		{"SERVER_PORT", "SERVER_PORT is required"},
		{"MINIO_ENDPOINT", "MINIO_ENDPOINT is required"},
		{"MINIO_ACCESS_KEY", "MINIO_ACCESS_KEY is required"},
		{"MINIO_SECRET_KEY", "MINIO_SECRET_KEY is required"},
	}

	for _, tc := range cases {
		t.Run(tc.missingKey, func(t *testing.T) {
			chtmp(t)

			for k, v := range requiredEnv() {
				if k == tc.missingKey {
					if err := os.Unsetenv(k); err != nil {
						t.Fatalf("could not unset key %s in env: %v", k, err)
					}
				} else {
					t.Setenv(k, v)
				}
			}

			cfg, err := Load()
			if err == nil {
				t.Fatalf("expected error for missing %s, got nil", tc.missingKey)
			}
			if err.Error() != tc.wantErr {
				t.Errorf("error = %q; want %q", err.Error(), tc.wantErr)
			}
			if cfg != nil {
				t.Errorf("expected cfg nil on error, got %#v", cfg)
			}
		})
	}
}

func TestDefaultQualityLadder_Ascending(t *testing.T) {
	ladder := DefaultQualityLadder()
	for i := 1; i < len(ladder); i++ {
		if ladder[i].Height <= ladder[i-1].Height {
			t.Errorf("tier %q is not taller than %q", ladder[i].Label, ladder[i-1].Label)
		}
		if ladder[i].VideoBitrate <= ladder[i-1].VideoBitrate {
			t.Errorf("tier %q bitrate does not grow from %q", ladder[i].Label, ladder[i-1].Label)
		}
	}
}
