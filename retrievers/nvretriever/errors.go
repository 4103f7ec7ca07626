package nvretriever

import (
	"errors"
	"fmt"
)

var (
	ErrMissingEndpoint       = errors.New("nvretriever: endpoint URL is required")
	ErrMissingCollectionName = errors.New("nvretriever: collection name is required")
	ErrMalformedResponse     = errors.New("nvretriever: malformed response")
	ErrCollectionIDMissing   = errors.New("nvretriever: response has no collection.id")
	ErrMalformedChunk        = errors.New("nvretriever: search chunk is missing a required field")
	ErrMissingSource         = errors.New("nvretriever: document has no string \"source\" metadata")
	ErrUnexpectedStatus      = errors.New("nvretriever: unexpected status code")
	ErrInvalidText           = errors.New("nvretriever: text document is not valid UTF-8")
)

// ResolutionError reports that a collection name could not be turned into a
// collection id. A client is never constructed when this happens.
type ResolutionError struct {
	Endpoint   string
	Collection string
	Pipeline   string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *ResolutionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("nvretriever: resolve collection %q (pipeline %q) at %s: status %d: %v",
			e.Collection, e.Pipeline, e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("nvretriever: resolve collection %q (pipeline %q) at %s: %v",
		e.Collection, e.Pipeline, e.Endpoint, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
