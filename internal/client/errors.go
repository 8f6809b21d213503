package client

import (
	"errors"
	"fmt"
	"net/http"
)

// FetchError reports a failed request against the catalog service. Either StatusCode is set
// (the service answered with a non-success status) or Err holds the transport/decoding cause.
type FetchError struct {
	Op         string // "catalog page", "categories" or "product"
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		status := e.Status
		if status == "" {
			status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
		}
		return fmt.Sprintf("failed to fetch %s: catalog responded with %s", e.Op, status)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is a FetchError for a missing resource.
func IsNotFound(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr) && fetchErr.IsNotFound()
}
