package service

import (
	"context"
	"fmt"
	"io"

	"github.com/richlew/gist-index/internal/domain"
)

// GistSource lists the gists to index.
// Follows Interface Segregation Principle (allows mocking in tests).
type GistSource interface {
	ListGists(ctx context.Context, username string) ([]domain.Gist, error)
}

// GistWriter pushes the rendered document back into the index gist.
type GistWriter interface {
	UpdateGist(ctx context.Context, gistID, filename, content string) (string, error)
}

// Renderer produces the index document for a set of gists.
type Renderer interface {
	Render(gists []domain.Gist) string
}

// Logger captures the diagnostics the service emits alongside the document.
type Logger interface {
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// UpdateError marks a failure in the update step. By the time it occurs the
// document has already been written to the output sink, so callers can
// report the failure without losing the run's result.
type UpdateError struct {
	Err error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("gist update failed: %v", e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}

// RunParams carries the per-run settings the service needs.
type RunParams struct {
	Username string
	GistID   string
	Filename string
	HasToken bool
}

// IndexService orchestrates one indexing run.
// Follows Single Responsibility Principle - sequencing only, no HTTP or
// formatting of its own.
type IndexService struct {
	source   GistSource
	writer   GistWriter
	renderer Renderer
	logger   Logger
	out      io.Writer
}

// NewIndexService creates a new index service writing the document to out.
// Uses dependency injection for all collaborators (IoC).
func NewIndexService(source GistSource, writer GistWriter, renderer Renderer, logger Logger, out io.Writer) *IndexService {
	return &IndexService{
		source:   source,
		writer:   writer,
		renderer: renderer,
		logger:   logger,
		out:      out,
	}
}

// Run executes one full pass: list, render, emit, then push the document to
// the index gist when both the gist id and a token are configured. The
// document always reaches the output sink before any update is attempted, so
// a failing update never loses it.
func (s *IndexService) Run(ctx context.Context, params RunParams) error {
	gists, err := s.source.ListGists(ctx, params.Username)
	if err != nil {
		return fmt.Errorf("failed to list gists for %s: %w", params.Username, err)
	}
	s.logger.Infof("fetched %d public gists for %s", len(gists), params.Username)

	document := s.renderer.Render(gists)
	if _, err := io.WriteString(s.out, document); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	if params.GistID == "" || !params.HasToken {
		s.logger.Warnf("skipping gist update: INDEX_GIST_ID and GITHUB_TOKEN are both required")
		return nil
	}

	url, err := s.writer.UpdateGist(ctx, params.GistID, params.Filename, document)
	if err != nil {
		return &UpdateError{Err: err}
	}
	s.logger.Infof("updated gist: %s", url)

	return nil
}
