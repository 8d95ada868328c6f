package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/edmetrics/lessons-media-go/internal/model"
	"github.com/edmetrics/lessons-media-go/internal/port"
)

// ffprobeOutput mirrors the JSON ffprobe prints with
// -show_format -show_streams.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
	BitRate  string `json:"bit_rate"`
}

type ffprobeStream struct {
	CodecType  string `json:"codec_type"` // "video" or "audio"
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"` // e.g. "30000/1001"
}

// FFprobe probes local video files by shelling out to the ffprobe binary.
type FFprobe struct {
	binPath string
}

// compile-time check: *FFprobe must satisfy port.Prober
var _ port.Prober = (*FFprobe)(nil)

func NewFFprobe(binPath string) *FFprobe {
	return &FFprobe{binPath: binPath}
}

// Available reports whether the ffprobe binary can be executed.
func (p *FFprobe) Available() bool {
	return exec.Command(p.binPath, "-version").Run() == nil
}

func (p *FFprobe) Probe(ctx context.Context, path string) (model.ProbeResult, error) {
	if _, err := os.Stat(path); err != nil {
		return model.ProbeResult{}, fmt.Errorf("video file not found: %q: %w", path, err)
	}

	cmd := exec.CommandContext(ctx, p.binPath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return model.ProbeResult{}, fmt.Errorf("ffprobe failed: %v: %s", err, stderr.String())
	}

	return parseOutput(stdout.Bytes())
}

func parseOutput(data []byte) (model.ProbeResult, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return model.ProbeResult{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var videoStream, audioStream *ffprobeStream
	for i := range out.Streams {
		s := &out.Streams[i]
		if s.CodecType == "video" && videoStream == nil {
			videoStream = s
		}
		if s.CodecType == "audio" && audioStream == nil {
			audioStream = s
		}
	}
	if videoStream == nil {
		return model.ProbeResult{}, fmt.Errorf("no video stream found in file")
	}

	duration, _ := strconv.ParseFloat(out.Format.Duration, 64)
	bitrate, _ := strconv.Atoi(out.Format.BitRate)
	size, _ := strconv.ParseInt(out.Format.Size, 10, 64)

	codec := videoStream.CodecName
	if codec == "" {
		codec = "unknown"
	}

	return model.ProbeResult{
		Width:           videoStream.Width,
		Height:          videoStream.Height,
		Duration:        duration,
		DurationSeconds: int(duration),
		Bitrate:         bitrate / 1000, // convert to kbps
		Codec:           codec,
		FPS:             parseFPS(videoStream.RFrameRate),
		HasAudio:        audioStream != nil,
		FileSize:        size,
	}, nil
}

// parseFPS parses the ffprobe frame-rate fraction (e.g. "24/1" or
// "30000/1001"), falling back to 24 when unparseable.
func parseFPS(frameRate string) float64 {
	parts := strings.Split(frameRate, "/")
	if len(parts) == 2 {
		num, errN := strconv.ParseFloat(parts[0], 64)
		den, errD := strconv.ParseFloat(parts[1], 64)
		if errN == nil && errD == nil && den > 0 {
			return math.Round(num/den*100) / 100
		}
	}
	if f, err := strconv.ParseFloat(frameRate, 64); err == nil && f > 0 {
		return f
	}
	return 24
}
