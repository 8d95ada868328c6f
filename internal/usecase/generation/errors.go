package generation

import "errors"

var (
	// ErrMissingInput means the lesson lacks a script, avatar or voice.
	// The task is fatal and must not be retried.
	ErrMissingInput = errors.New("generation inputs are incomplete")

	ErrRemoteGenerationFailed = errors.New("remote generation failed")
	ErrGenerationTimeout      = errors.New("generation did not finish within the polling window")
	ErrDownloadFailed         = errors.New("failed to download generated video")
	ErrJobAlreadyActive       = errors.New("a generation job is already active for this lesson")
)
