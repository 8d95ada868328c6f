package upload

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid upload argument")
	ErrSessionNotFound = errors.New("upload session not found")
)

// IncompleteError reports a finalise attempt on a session that is
// still missing chunks.
type IncompleteError struct {
	Expected int
	Found    int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("upload incomplete: %d of %d chunks received", e.Found, e.Expected)
}
