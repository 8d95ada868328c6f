package mock

import (
	"context"
	"os"
	"path/filepath"

	"github.com/edmetrics/lessons-media-go/internal/model"
	"github.com/edmetrics/lessons-media-go/internal/port"
)

// Prober returns canned probe results.
type Prober struct {
	Out         model.ProbeResult
	Err         error
	Unavailable bool
	Called      bool
	ProbedPath  string
}

var _ port.Prober = (*Prober)(nil)

func (p *Prober) Available() bool { return !p.Unavailable }

func (p *Prober) Probe(ctx context.Context, path string) (model.ProbeResult, error) {
	p.Called = true
	p.ProbedPath = path
	if p.Err != nil {
		return model.ProbeResult{}, p.Err
	}
	return p.Out, nil
}

// Encoder fakes per-tier encodes. FailLabels maps a quality label to
// the error its encode should return; successful tiers get a playlist
// and one segment written into the output dir so upload walks find
// real files.
type Encoder struct {
	Unavailable bool
	FailLabels  map[string]error
	Encoded     []string
}

var _ port.Encoder = (*Encoder)(nil)

func (e *Encoder) Available() bool { return !e.Unavailable }

func (e *Encoder) EncodeHLS(ctx context.Context, inputPath, outputDir string, tier model.QualityTier) (port.EncodeResult, error) {
	e.Encoded = append(e.Encoded, tier.Label)
	if err, ok := e.FailLabels[tier.Label]; ok {
		return port.EncodeResult{}, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return port.EncodeResult{}, err
	}
	playlist := filepath.Join(outputDir, "playlist.m3u8")
	segment := filepath.Join(outputDir, "segment_000.ts")
	if err := os.WriteFile(playlist, []byte("#EXTM3U\n"), 0o644); err != nil {
		return port.EncodeResult{}, err
	}
	data := []byte(tier.Label + " segment data")
	if err := os.WriteFile(segment, data, 0o644); err != nil {
		return port.EncodeResult{}, err
	}

	return port.EncodeResult{
		PlaylistPath: playlist,
		SegmentCount: 1,
		TotalBytes:   int64(len(data)) + 8,
	}, nil
}
