package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	_ "time/tzdata"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/richlew/gist-index/internal/api"
	"github.com/richlew/gist-index/internal/api/github"
	"github.com/richlew/gist-index/internal/config"
	"github.com/richlew/gist-index/internal/index"
	"github.com/richlew/gist-index/internal/service"
)

// Exit codes are part of the tool's contract with its callers (cron, CI);
// each failure class keeps its own code.
const (
	exitOK            = 0
	exitMissingConfig = 1
	exitUserNotFound  = 2
	exitGistNotFound  = 4
	exitUpdateFailed  = 5
	exitFailure       = 6
)

var (
	// Global flags
	flagUsername string
	flagGistID   string
	flagFilename string
	flagFormat   string
	flagTimeZone string
	flagConfig   string
	preview      bool
	verbose      bool

	// Logger
	logger *zap.SugaredLogger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gist-index",
	Short: "Build and publish an index of a user's public gists",
	Long: `gist-index fetches all public gists of a GitHub user, renders a sorted
table document, and always prints it to stdout. When both INDEX_GIST_ID and
GITHUB_TOKEN are configured it also pushes the document into that gist.

Designed to run unattended (cron, CI): stdout carries only the document,
stderr carries diagnostics, and the exit code tells the scheduler what
happened.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose)
		return err
	},
	RunE: runIndex,
}

func init() {
	rootCmd.Flags().StringVarP(&flagUsername, "username", "u", "", "GitHub username whose public gists get indexed (or set GITHUB_USERNAME)")
	rootCmd.Flags().StringVar(&flagGistID, "gist-id", "", "gist that receives the rendered document (or set INDEX_GIST_ID)")
	rootCmd.Flags().StringVar(&flagFilename, "filename", "", "file inside the index gist to overwrite (default "+config.DefaultTargetFilename+")")
	rootCmd.Flags().StringVar(&flagFormat, "format", "", "output format: markdown or html (default markdown)")
	rootCmd.Flags().StringVar(&flagTimeZone, "timezone", "", "IANA zone for displayed timestamps (default "+config.DefaultTimeZone+")")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to a YAML config file (or set GIST_INDEX_CONFIG)")
	rootCmd.Flags().BoolVar(&preview, "preview", false, "render the Markdown document for the terminal instead of printing it raw")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func main() {
	os.Exit(run())
}

func run() int {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()

	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}

	if logger != nil {
		logger.Errorf("%v", err)
	} else {
		fmt.Fprintf(os.Stderr, "gist-index: %v\n", err)
	}
	return exitCodeFor(err)
}

// runIndex executes one full indexing pass.
func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.Overrides{
		Username:       flagUsername,
		IndexGistID:    flagGistID,
		TargetFilename: flagFilename,
		Format:         flagFormat,
		TimeZone:       flagTimeZone,
		ConfigFile:     flagConfig,
	})
	if err != nil {
		return err
	}
	logger.Debugf("configured for user %s (format %s, timezone %s)", cfg.Username, cfg.Format, cfg.DisplayTimeZone)

	var out io.Writer = os.Stdout
	if preview {
		if cfg.Format != config.FormatMarkdown {
			return &config.ConfigError{Reason: "--preview only applies to markdown output"}
		}
		out = &previewWriter{out: os.Stdout}
	}

	svc := buildService(cfg, out)
	return svc.Run(cmd.Context(), service.RunParams{
		Username: cfg.Username,
		GistID:   cfg.IndexGistID,
		Filename: cfg.TargetFilename,
		HasToken: cfg.Token != "",
	})
}

// buildService wires up all dependencies and returns the configured service.
// This is the composition root where all dependencies are created and injected.
// Follows SOLID principles and IoC (Inversion of Control).
func buildService(cfg *config.Config, out io.Writer) *service.IndexService {
	httpClient := api.NewHTTPClient(cfg.HTTPTimeout, cfg.Token)
	base := api.NewBaseClient(httpClient, api.RetryPolicy{
		MaxRetries:  cfg.MaxRetries,
		BackoffBase: cfg.BackoffBase,
	}, logger)

	client := github.NewClient(api.ClientConfig{
		BaseURL:   cfg.BaseURL,
		UserAgent: config.UserAgent,
		PageSize:  api.DefaultPageSize,
	}, base)

	var renderer service.Renderer
	if cfg.Format == config.FormatHTML {
		renderer = index.NewHTMLRenderer(cfg.Location)
	} else {
		renderer = index.NewMarkdownRenderer(cfg.Location)
	}

	return service.NewIndexService(client, client, renderer, logger, out)
}

// newLogger builds the stderr diagnostics logger.
func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	built, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return built.Sugar(), nil
}

// exitCodeFor maps the run's error to the exit code contract: 0 success,
// 1 missing or invalid configuration, 2 user not found, 4 index gist not
// found, 5 update failed with an HTTP status error, 6 anything else.
func exitCodeFor(err error) int {
	var missingErr *config.MissingEnvError
	var configErr *config.ConfigError
	if errors.As(err, &missingErr) || errors.As(err, &configErr) {
		return exitMissingConfig
	}

	var userErr *github.UserNotFoundError
	if errors.As(err, &userErr) {
		return exitUserNotFound
	}

	var gistErr *github.GistNotFoundError
	if errors.As(err, &gistErr) {
		return exitGistNotFound
	}

	var updateErr *service.UpdateError
	if errors.As(err, &updateErr) {
		var statusErr *api.StatusError
		if errors.As(updateErr.Err, &statusErr) {
			return exitUpdateFailed
		}
		return exitFailure
	}

	return exitFailure
}

// previewWriter renders Markdown through glamour on its way to the terminal.
// Only the local presentation changes; the raw document is what reaches the
// gist.
type previewWriter struct {
	out io.Writer
}

func (w *previewWriter) Write(p []byte) (int, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to build preview renderer: %w", err)
	}

	rendered, err := renderer.Render(string(p))
	if err != nil {
		return 0, fmt.Errorf("failed to render preview: %w", err)
	}

	if _, err := io.WriteString(w.out, rendered); err != nil {
		return 0, err
	}
	return len(p), nil
}
