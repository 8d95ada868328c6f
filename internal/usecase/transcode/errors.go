package transcode

import "errors"

var (
	// ErrEncoderUnavailable means the encoding binaries cannot be
	// executed. The task is fatal and must not be retried.
	ErrEncoderUnavailable = errors.New("encoding tools are not available")

	ErrSourceMissing         = errors.New("lesson has no source video")
	ErrProbeFailed           = errors.New("failed to probe source video")
	ErrNoViableRendition     = errors.New("source resolution below the lowest quality tier")
	ErrNoCompletedRenditions = errors.New("every rendition failed to encode")
	ErrJobAlreadyActive      = errors.New("a transcoding job is already active for this lesson")
)
