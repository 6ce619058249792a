package tmdb

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the API answered with an empty body or
// a JSON null.
var ErrEmptyResponse = errors.New("empty response body")

// RemoteFetchError is returned by every catalog operation that could not
// produce a result. Resource names what could not be retrieved.
type RemoteFetchError struct {
	Resource string
	Err      error
}

func (e *RemoteFetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to fetch %s", e.Resource)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.Resource, e.Err)
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}

// StatusError is a non-200 answer from the catalog API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("TMDB API returned status %d: %s", e.StatusCode, e.Body)
}
