package api

import (
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// DefaultHTTPTimeout bounds every outbound request, including body reads.
const DefaultHTTPTimeout = 30 * time.Second

// NewHTTPClient builds the one reusable HTTP client for the process.
// When token is non-empty the transport injects "Authorization: Bearer <token>"
// on every request through a static oauth2 token source, so no other component
// ever handles the credential.
func NewHTTPClient(timeout time.Duration, token string) *http.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	client := &http.Client{Timeout: timeout}
	if token != "" {
		client.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}
	return client
}
