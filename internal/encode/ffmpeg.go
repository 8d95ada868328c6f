package encode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/edmetrics/lessons-media-go/internal/model"
	"github.com/edmetrics/lessons-media-go/internal/port"
)

const (
	videoCodec     = "libx264"
	audioCodec     = "aac"
	preset         = "medium"
	profile        = "main"
	level          = "3.1"
	pixelFormat    = "yuv420p"
	audioSampleHz  = "44100"
	audioChannels  = "2"
	gopSize        = "48"
	segmentSeconds = "6"

	playlistName   = "playlist.m3u8"
	segmentPattern = "segment_%03d.ts"
)

// FFmpegEncoder produces HLS renditions by shelling out to the ffmpeg
// binary. One invocation encodes one quality tier into its own output
// directory.
type FFmpegEncoder struct {
	binPath string
}

var _ port.Encoder = (*FFmpegEncoder)(nil)

func NewFFmpegEncoder(binPath string) *FFmpegEncoder {
	return &FFmpegEncoder{binPath: binPath}
}

// Available reports whether the ffmpeg binary can be executed.
func (e *FFmpegEncoder) Available() bool {
	return exec.Command(e.binPath, "-version").Run() == nil
}

func (e *FFmpegEncoder) EncodeHLS(ctx context.Context, inputPath, outputDir string, tier model.QualityTier) (port.EncodeResult, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return port.EncodeResult{}, fmt.Errorf("failed to create output dir %q: %w", outputDir, err)
	}

	args := buildHLSArgs(inputPath, outputDir, tier)
	cmd := exec.CommandContext(ctx, e.binPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return port.EncodeResult{}, fmt.Errorf("ffmpeg failed for %s: %v: %s", tier.Label, err, lastLines(stderr.String(), 10))
	}

	playlistPath := filepath.Join(outputDir, playlistName)
	if _, err := os.Stat(playlistPath); err != nil {
		return port.EncodeResult{}, fmt.Errorf("ffmpeg produced no playlist for %s: %w", tier.Label, err)
	}

	segments, totalBytes, err := collectSegments(outputDir)
	if err != nil {
		return port.EncodeResult{}, err
	}
	if segments == 0 {
		return port.EncodeResult{}, fmt.Errorf("ffmpeg produced no segments for %s", tier.Label)
	}

	return port.EncodeResult{
		PlaylistPath: playlistPath,
		SegmentCount: segments,
		TotalBytes:   totalBytes,
	}, nil
}

// buildHLSArgs assembles the full ffmpeg invocation for one tier. The
// scale filter downscales preserving aspect ratio, then pads to the
// exact tier dimensions so every rendition has a uniform frame size.
func buildHLSArgs(inputPath, outputDir string, t model.QualityTier) []string {
	scaleFilter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		t.Width, t.Height, t.Width, t.Height,
	)

	return []string{
		"-y",
		"-i", inputPath,
		"-c:v", videoCodec,
		"-preset", preset,
		"-profile:v", profile,
		"-level", level,
		"-pix_fmt", pixelFormat,
		"-vf", scaleFilter,
		"-b:v", fmt.Sprintf("%dk", t.VideoBitrate),
		"-maxrate", fmt.Sprintf("%dk", t.MaxRate),
		"-bufsize", fmt.Sprintf("%dk", t.BufferSize),
		"-g", gopSize,
		"-keyint_min", gopSize,
		"-sc_threshold", "0",
		"-c:a", audioCodec,
		"-b:a", fmt.Sprintf("%dk", t.AudioBitrate),
		"-ar", audioSampleHz,
		"-ac", audioChannels,
		"-f", "hls",
		"-hls_time", segmentSeconds,
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", filepath.Join(outputDir, segmentPattern),
		filepath.Join(outputDir, playlistName),
	}
}

func collectSegments(dir string) (int, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read output dir %q: %w", dir, err)
	}

	var count int
	var total int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
		if strings.HasSuffix(entry.Name(), ".ts") {
			count++
		}
	}
	return count, total, nil
}

// lastLines keeps the tail of ffmpeg's stderr, which is where the
// actual failure reason lands.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
