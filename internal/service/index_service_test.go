package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/richlew/gist-index/internal/api"
	"github.com/richlew/gist-index/internal/domain"
)

// mockSource is a test double for GistSource.
// Follows FIRST principles - Independent tests.
type mockSource struct {
	listFunc func(ctx context.Context, username string) ([]domain.Gist, error)
}

func (m *mockSource) ListGists(ctx context.Context, username string) ([]domain.Gist, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, username)
	}
	return nil, nil
}

// mockWriter is a test double for GistWriter.
type mockWriter struct {
	updateFunc func(ctx context.Context, gistID, filename, content string) (string, error)
	calls      int
}

func (m *mockWriter) UpdateGist(ctx context.Context, gistID, filename, content string) (string, error) {
	m.calls++
	if m.updateFunc != nil {
		return m.updateFunc(ctx, gistID, filename, content)
	}
	return "", nil
}

// mockRenderer is a test double for Renderer.
type mockRenderer struct {
	document string
	rendered []domain.Gist
}

func (m *mockRenderer) Render(gists []domain.Gist) string {
	m.rendered = gists
	return m.document
}

// testLogger records log lines for assertions.
type testLogger struct {
	lines []string
}

func (l *testLogger) Infof(template string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(template, args...))
}

func (l *testLogger) Warnf(template string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(template, args...))
}

func (l *testLogger) contains(substr string) bool {
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// TestRun tests the full happy path: list, render, emit, update.
// Follows AAA (Arrange, Act, Assert) pattern.
func TestRun(t *testing.T) {
	// Arrange
	source := &mockSource{
		listFunc: func(ctx context.Context, username string) ([]domain.Gist, error) {
			return []domain.Gist{{ID: "aa11"}, {ID: "bb22"}}, nil
		},
	}
	writer := &mockWriter{
		updateFunc: func(ctx context.Context, gistID, filename, content string) (string, error) {
			if gistID != "ghi789" {
				t.Errorf("expected gist id 'ghi789', got '%s'", gistID)
			}
			if filename != "index.md" {
				t.Errorf("expected filename 'index.md', got '%s'", filename)
			}
			if content != "rendered document" {
				t.Errorf("expected the rendered document, got %q", content)
			}
			return "https://gist.github.com/richlew/ghi789", nil
		},
	}
	renderer := &mockRenderer{document: "rendered document"}
	logger := &testLogger{}
	out := &bytes.Buffer{}

	svc := NewIndexService(source, writer, renderer, logger, out)

	// Act
	err := svc.Run(context.Background(), RunParams{
		Username: "richlew",
		GistID:   "ghi789",
		Filename: "index.md",
		HasToken: true,
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.String() != "rendered document" {
		t.Errorf("expected document on the output sink, got %q", out.String())
	}
	if len(renderer.rendered) != 2 {
		t.Errorf("expected renderer to receive 2 gists, got %d", len(renderer.rendered))
	}
	if writer.calls != 1 {
		t.Errorf("expected exactly 1 update call, got %d", writer.calls)
	}
	if !logger.contains("updated gist: https://gist.github.com/richlew/ghi789") {
		t.Errorf("expected update status line, got %v", logger.lines)
	}
}

// TestRun_SkipsUpdateWithoutGistID tests that no write happens when the
// index gist id is not configured.
func TestRun_SkipsUpdateWithoutGistID(t *testing.T) {
	// Arrange
	writer := &mockWriter{}
	logger := &testLogger{}
	out := &bytes.Buffer{}
	svc := NewIndexService(&mockSource{}, writer, &mockRenderer{document: "doc"}, logger, out)

	// Act
	err := svc.Run(context.Background(), RunParams{
		Username: "richlew",
		GistID:   "",
		Filename: "index.md",
		HasToken: true,
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if writer.calls != 0 {
		t.Errorf("expected no update calls, got %d", writer.calls)
	}
	if out.Len() == 0 {
		t.Error("expected the document to be emitted anyway")
	}
	if !logger.contains("skipping gist update") {
		t.Errorf("expected skip diagnostic, got %v", logger.lines)
	}
}

// TestRun_SkipsUpdateWithoutToken tests that no write happens when no token
// is configured.
func TestRun_SkipsUpdateWithoutToken(t *testing.T) {
	// Arrange
	writer := &mockWriter{}
	logger := &testLogger{}
	svc := NewIndexService(&mockSource{}, writer, &mockRenderer{document: "doc"}, logger, &bytes.Buffer{})

	// Act
	err := svc.Run(context.Background(), RunParams{
		Username: "richlew",
		GistID:   "ghi789",
		Filename: "index.md",
		HasToken: false,
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if writer.calls != 0 {
		t.Errorf("expected no update calls, got %d", writer.calls)
	}
	if !logger.contains("skipping gist update") {
		t.Errorf("expected skip diagnostic, got %v", logger.lines)
	}
}

// TestRun_ListError tests that a listing failure aborts before any output.
func TestRun_ListError(t *testing.T) {
	// Arrange
	source := &mockSource{
		listFunc: func(ctx context.Context, username string) ([]domain.Gist, error) {
			return nil, errors.New("boom")
		},
	}
	writer := &mockWriter{}
	out := &bytes.Buffer{}
	svc := NewIndexService(source, writer, &mockRenderer{document: "doc"}, &testLogger{}, out)

	// Act
	err := svc.Run(context.Background(), RunParams{Username: "richlew"})

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "richlew") {
		t.Errorf("expected error to mention the username, got: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output on listing failure, got %q", out.String())
	}
	if writer.calls != 0 {
		t.Errorf("expected no update calls, got %d", writer.calls)
	}
}

// TestRun_UpdateErrorAfterEmit tests that an update failure is wrapped and
// the already-emitted document survives.
func TestRun_UpdateErrorAfterEmit(t *testing.T) {
	// Arrange
	cause := &api.StatusError{StatusCode: 500, URL: "https://api.github.com/gists/ghi789"}
	writer := &mockWriter{
		updateFunc: func(ctx context.Context, gistID, filename, content string) (string, error) {
			return "", cause
		},
	}
	out := &bytes.Buffer{}
	svc := NewIndexService(&mockSource{}, writer, &mockRenderer{document: "doc"}, &testLogger{}, out)

	// Act
	err := svc.Run(context.Background(), RunParams{
		Username: "richlew",
		GistID:   "ghi789",
		Filename: "index.md",
		HasToken: true,
	})

	// Assert
	var updateErr *UpdateError
	if !errors.As(err, &updateErr) {
		t.Fatalf("expected UpdateError, got %v", err)
	}

	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected wrapped StatusError to stay reachable, got %v", err)
	}
	if statusErr.StatusCode != 500 {
		t.Errorf("expected status 500, got %d", statusErr.StatusCode)
	}

	if out.String() != "doc" {
		t.Errorf("expected the document to survive the failed update, got %q", out.String())
	}
}
