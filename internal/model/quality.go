package model

// QualityTier is one configured output quality. Bitrates are in kbps.
type QualityTier struct {
	Label        string
	Width        int
	Height       int
	VideoBitrate int
	AudioBitrate int
	MaxRate      int
	BufferSize   int
}

// ProbeResult holds the source metadata extracted before planning
// renditions.
type ProbeResult struct {
	Width           int
	Height          int
	Duration        float64
	DurationSeconds int
	Bitrate         int // kbps
	Codec           string
	FPS             float64
	HasAudio        bool
	FileSize        int64
}
