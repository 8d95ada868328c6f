package port

import (
	"context"

	"github.com/edmetrics/lessons-media-go/internal/model"
)

// Prober extracts stream/container metadata from a local video file by
// invoking an external analysis tool.
type Prober interface {
	// Available reports whether the underlying tool can be executed.
	Available() bool
	Probe(ctx context.Context, path string) (model.ProbeResult, error)
}

// EncodeResult describes one produced segmented rendition.
type EncodeResult struct {
	PlaylistPath string // local path of the rendition playlist
	SegmentCount int
	TotalBytes   int64
}

// Encoder produces one segmented rendition of a local source file by
// invoking an external encoder process.
type Encoder interface {
	Available() bool
	EncodeHLS(ctx context.Context, inputPath, outputDir string, tier model.QualityTier) (EncodeResult, error)
}
