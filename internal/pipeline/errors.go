package pipeline

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrMissingIdentifier is returned when a request names no profile or user.
var ErrMissingIdentifier = eris.New("pipeline: missing identifier")

// ErrInvalidProfileURL is returned when an absolute profile URL does not
// point at a supported host.
var ErrInvalidProfileURL = eris.New("pipeline: invalid profile url")

// UpstreamError reports a failed fetch, network level or error status,
// from a source that has no cached fallback to serve instead. Status is
// zero when the request never produced a response.
type UpstreamError struct {
	Source string
	Status int
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("pipeline: %s upstream unreachable", e.Source)
	}
	return fmt.Sprintf("pipeline: %s upstream returned status %d", e.Source, e.Status)
}
