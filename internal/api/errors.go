package api

import (
	"fmt"
	"net/http"
)

// StatusError reports a non-success HTTP status. Server-side statuses
// (500-599) are retried by BaseClient before one of these surfaces.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API returned status %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("API returned status %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

// Transient reports whether the status is worth retrying.
func (e *StatusError) Transient() bool {
	return e.StatusCode >= http.StatusInternalServerError && e.StatusCode < 600
}
