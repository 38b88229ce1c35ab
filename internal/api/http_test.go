package api

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// TestNewHTTPClient_WithToken tests that a configured credential becomes a
// bearer token source on the transport.
// Follows AAA (Arrange, Act, Assert) pattern.
func TestNewHTTPClient_WithToken(t *testing.T) {
	// Act
	client := NewHTTPClient(10*time.Second, "secret-token")

	// Assert
	if client.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", client.Timeout)
	}

	transport, ok := client.Transport.(*oauth2.Transport)
	if !ok {
		t.Fatalf("expected oauth2 transport, got %T", client.Transport)
	}

	token, err := transport.Source.Token()
	if err != nil {
		t.Fatalf("expected token from source, got error %v", err)
	}

	if token.AccessToken != "secret-token" {
		t.Errorf("expected access token 'secret-token', got %q", token.AccessToken)
	}

	if token.Type() != "Bearer" {
		t.Errorf("expected Bearer token type, got %q", token.Type())
	}
}

// TestNewHTTPClient_WithoutToken tests that no authorization transport is
// installed when no credential is configured.
func TestNewHTTPClient_WithoutToken(t *testing.T) {
	// Act
	client := NewHTTPClient(0, "")

	// Assert
	if client.Transport != nil {
		t.Errorf("expected default transport, got %T", client.Transport)
	}

	if client.Timeout != DefaultHTTPTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultHTTPTimeout, client.Timeout)
	}
}
