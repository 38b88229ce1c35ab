package api

import (
	"net/http"
)

// HTTPClient interface for HTTP operations (allows mocking in tests).
// Follows Interface Segregation Principle.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Logger is the narrow diagnostics interface API components depend on.
// *zap.SugaredLogger satisfies it; tests inject a recording double.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// ClientConfig holds common configuration for API clients.
// The bearer credential is not part of it: authorization is injected at the
// transport level (see NewHTTPClient), so client code never sees the token.
type ClientConfig struct {
	BaseURL   string
	UserAgent string
	PageSize  int
}
