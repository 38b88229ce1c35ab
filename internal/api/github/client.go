package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/richlew/gist-index/internal/api"
	"github.com/richlew/gist-index/internal/domain"
)

const (
	acceptHeader = "application/vnd.github+json"
	apiVersion   = "2022-11-28"

	// indexGistDescription is rewritten on every update so the index gist
	// stays recognizable in the owner's gist list.
	indexGistDescription = "Auto-generated index of my PUBLIC gists"

	// unknownURL stands in when the update response omits html_url.
	unknownURL = "(unknown)"
)

// Transport is the retrying request layer the client issues calls through.
// *api.BaseClient satisfies it.
// Follows Interface Segregation Principle (allows mocking in tests).
type Transport interface {
	DoWithRetry(ctx context.Context, method, url string, body []byte, header http.Header) (*http.Response, error)
}

// UserNotFoundError indicates the gists listing endpoint returned 404 for
// the requested username.
type UserNotFoundError struct {
	Username string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user %q not found or gists not accessible", e.Username)
}

// GistNotFoundError indicates the target gist returned 404 on update, either
// because the id is wrong or because the token cannot write to it.
type GistNotFoundError struct {
	GistID string
}

func (e *GistNotFoundError) Error() string {
	return fmt.Sprintf("gist %q not found or not writable with the provided token", e.GistID)
}

// Client implements gist listing and updating against the GitHub REST API.
// Follows Single Responsibility Principle - only handles GitHub API communication.
type Client struct {
	baseURL   string
	userAgent string
	pageSize  int
	transport Transport
}

// NewClient creates a new GitHub gists client.
// Uses dependency injection for Transport (IoC).
func NewClient(config api.ClientConfig, transport Transport) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = api.DefaultPageSize
	}

	return &Client{
		baseURL:   baseURL,
		userAgent: config.UserAgent,
		pageSize:  pageSize,
		transport: transport,
	}
}

// ListGists retrieves all gists of a user, walking the paginated listing
// until an empty page is returned. Gists come back in API order; sorting is
// the caller's concern.
func (c *Client) ListGists(ctx context.Context, username string) ([]domain.Gist, error) {
	var gists []domain.Gist

	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/users/%s/gists?page=%d&per_page=%d", c.baseURL, username, page, c.pageSize)

		records, err := c.fetchPage(ctx, url, username)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			break
		}

		for _, record := range records {
			gists = append(gists, convertGist(record))
		}
	}

	return gists, nil
}

// fetchPage requests a single listing page and decodes it.
// Follows Single Level of Abstraction Principle (SLAP).
func (c *Client) fetchPage(ctx context.Context, url, username string) ([]gistRecord, error) {
	resp, err := c.transport.DoWithRetry(ctx, http.MethodGet, url, nil, c.defaultHeader())
	if err != nil {
		return nil, fmt.Errorf("failed to list gists: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &UserNotFoundError{Username: username}
	}
	if err := checkStatus(resp, url); err != nil {
		return nil, err
	}

	var records []gistRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode gists page: %w", err)
	}

	return records, nil
}

// UpdateGist replaces the content of one file inside the gist and refreshes
// its description. Returns the gist's html_url for reporting.
func (c *Client) UpdateGist(ctx context.Context, gistID, filename, content string) (string, error) {
	payload := updateGistRequest{
		Description: indexGistDescription,
		Files: map[string]gistFileContent{
			filename: {Content: content},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode gist update: %w", err)
	}

	url := fmt.Sprintf("%s/gists/%s", c.baseURL, gistID)
	header := c.defaultHeader()
	header.Set("Content-Type", "application/json")

	resp, err := c.transport.DoWithRetry(ctx, http.MethodPatch, url, body, header)
	if err != nil {
		return "", fmt.Errorf("failed to update gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", &GistNotFoundError{GistID: gistID}
	}
	if err := checkStatus(resp, url); err != nil {
		return "", err
	}

	var updated updatedGistResponse
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return "", fmt.Errorf("failed to decode gist update response: %w", err)
	}
	if updated.HTMLURL == "" {
		return unknownURL, nil
	}

	return updated.HTMLURL, nil
}

// defaultHeader builds the headers GitHub expects on every request.
func (c *Client) defaultHeader() http.Header {
	header := http.Header{}
	header.Set("Accept", acceptHeader)
	header.Set("X-GitHub-Api-Version", apiVersion)
	header.Set("User-Agent", c.userAgent)
	return header
}

// checkStatus converts any non-2xx response into an *api.StatusError
// carrying a short body excerpt.
func checkStatus(resp *http.Response, url string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return &api.StatusError{
		StatusCode: resp.StatusCode,
		URL:        url,
		Body:       string(excerpt),
	}
}

// convertGist converts a GitHub gist record to the domain model. The
// updated_at timestamp is kept as the raw string so records without one sort
// after everything else.
func convertGist(record gistRecord) domain.Gist {
	files := make(map[string]domain.GistFile, len(record.Files))
	for name, file := range record.Files {
		files[name] = domain.GistFile{
			Filename: file.Filename,
			Size:     file.Size,
			Language: file.Language,
			RawURL:   file.RawURL,
		}
	}

	return domain.Gist{
		ID:          record.ID,
		Description: record.Description,
		Files:       files,
		UpdatedAt:   record.UpdatedAt,
		HTMLURL:     record.HTMLURL,
		Public:      record.Public,
	}
}

// GitHub API response types
type gistRecord struct {
	ID          string                  `json:"id"`
	Description string                  `json:"description"`
	Public      bool                    `json:"public"`
	HTMLURL     string                  `json:"html_url"`
	UpdatedAt   string                  `json:"updated_at"`
	Files       map[string]gistFileInfo `json:"files"`
}

type gistFileInfo struct {
	Filename string `json:"filename"`
	Size     int    `json:"size"`
	Language string `json:"language"`
	RawURL   string `json:"raw_url"`
}

type updateGistRequest struct {
	Description string                     `json:"description"`
	Files       map[string]gistFileContent `json:"files"`
}

type gistFileContent struct {
	Content string `json:"content"`
}

type updatedGistResponse struct {
	HTMLURL string `json:"html_url"`
}
