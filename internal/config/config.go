package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	envUsername   = "GITHUB_USERNAME"
	envGistID     = "INDEX_GIST_ID"
	envToken      = "GITHUB_TOKEN"
	envFilename   = "TARGET_MD_FILENAME"
	envFormat     = "GIST_INDEX_FORMAT"
	envTimeZone   = "GIST_INDEX_TIMEZONE"
	envBaseURL    = "GITHUB_URL"
	envConfigFile = "GIST_INDEX_CONFIG"
)

const (
	// DefaultTargetFilename is the file inside the index gist that receives
	// the rendered document.
	DefaultTargetFilename = "Public-Gists-by-Rich-Lewis.md"

	// DefaultTimeZone is the IANA zone timestamps are displayed in.
	DefaultTimeZone = "America/New_York"

	DefaultBaseURL = "https://api.github.com"

	FormatMarkdown = "markdown"
	FormatHTML     = "html"

	// UserAgent identifies this tool to the GitHub API.
	UserAgent = "gist-index/1.0 (+https://github.com/richlew/gist-index)"

	defaultHTTPTimeout = 30 * time.Second
	defaultMaxRetries  = 3
	defaultBackoffBase = 2.0
)

// MissingEnvError indicates a required setting was absent from every source.
type MissingEnvError struct {
	Name string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("%s is not set (set the variable or pass --username)", e.Name)
}

// ConfigError indicates an invalid or unreadable configuration source.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config holds application configuration, built once at startup.
// Follows Single Responsibility - only holds configuration data.
type Config struct {
	// Username whose public gists get indexed.
	Username string

	// IndexGistID is the gist that receives the rendered document. Empty
	// means the update step is skipped.
	IndexGistID string

	// Token authenticates API requests. Required for the update step.
	Token string

	TargetFilename  string
	Format          string
	DisplayTimeZone string

	// Location is DisplayTimeZone resolved against the timezone database.
	Location *time.Location

	BaseURL     string
	HTTPTimeout time.Duration
	MaxRetries  int
	BackoffBase float64
}

// Overrides carries flag-level settings that beat every other source.
type Overrides struct {
	Username       string
	IndexGistID    string
	TargetFilename string
	Format         string
	TimeZone       string
	ConfigFile     string
}

// Load builds the configuration by layering sources, lowest first:
// defaults, YAML file, environment variables, flag overrides.
func Load(overrides Overrides) (*Config, error) {
	cfg := &Config{
		TargetFilename:  DefaultTargetFilename,
		Format:          FormatMarkdown,
		DisplayTimeZone: DefaultTimeZone,
		BaseURL:         DefaultBaseURL,
		HTTPTimeout:     defaultHTTPTimeout,
		MaxRetries:      defaultMaxRetries,
		BackoffBase:     defaultBackoffBase,
	}

	path := overrides.ConfigFile
	if path == "" {
		path = os.Getenv(envConfigFile)
	}
	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	override(&cfg.Username, overrides.Username)
	override(&cfg.IndexGistID, overrides.IndexGistID)
	override(&cfg.TargetFilename, overrides.TargetFilename)
	override(&cfg.Format, overrides.Format)
	override(&cfg.DisplayTimeZone, overrides.TimeZone)

	if cfg.Username == "" {
		return nil, &MissingEnvError{Name: envUsername}
	}

	cfg.Format = strings.ToLower(cfg.Format)
	if cfg.Format != FormatMarkdown && cfg.Format != FormatHTML {
		return nil, &ConfigError{
			Reason: fmt.Sprintf("format must be %q or %q, got %q", FormatMarkdown, FormatHTML, cfg.Format),
		}
	}

	location, err := time.LoadLocation(cfg.DisplayTimeZone)
	if err != nil {
		return nil, &ConfigError{
			Reason: fmt.Sprintf("timezone %q", cfg.DisplayTimeZone),
			Err:    err,
		}
	}
	cfg.Location = location

	return cfg, nil
}

// fileConfig is the YAML schema of the optional config file.
type fileConfig struct {
	Username       string  `yaml:"username"`
	IndexGistID    string  `yaml:"index_gist_id"`
	Token          string  `yaml:"token"`
	TargetFilename string  `yaml:"target_filename"`
	Format         string  `yaml:"format"`
	TimeZone       string  `yaml:"timezone"`
	BaseURL        string  `yaml:"base_url"`
	HTTPTimeout    string  `yaml:"http_timeout"`
	MaxRetries     int     `yaml:"max_retries"`
	BackoffBase    float64 `yaml:"backoff_base"`
}

// applyFile merges settings from the YAML file at path. Unknown keys are
// rejected so typos fail loudly.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Reason: fmt.Sprintf("config file %s", path), Err: err}
	}

	var file fileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return &ConfigError{Reason: fmt.Sprintf("config file %s", path), Err: err}
	}

	override(&cfg.Username, file.Username)
	override(&cfg.IndexGistID, file.IndexGistID)
	override(&cfg.Token, file.Token)
	override(&cfg.TargetFilename, file.TargetFilename)
	override(&cfg.Format, file.Format)
	override(&cfg.DisplayTimeZone, file.TimeZone)
	override(&cfg.BaseURL, file.BaseURL)

	if file.HTTPTimeout != "" {
		timeout, err := time.ParseDuration(file.HTTPTimeout)
		if err != nil {
			return &ConfigError{Reason: fmt.Sprintf("http_timeout in %s", path), Err: err}
		}
		cfg.HTTPTimeout = timeout
	}
	if file.MaxRetries > 0 {
		cfg.MaxRetries = file.MaxRetries
	}
	if file.BackoffBase > 0 {
		cfg.BackoffBase = file.BackoffBase
	}

	return nil
}

// applyEnv merges settings from environment variables.
func applyEnv(cfg *Config) {
	overrideEnv(&cfg.Username, envUsername)
	overrideEnv(&cfg.IndexGistID, envGistID)
	overrideEnv(&cfg.Token, envToken)
	overrideEnv(&cfg.TargetFilename, envFilename)
	overrideEnv(&cfg.Format, envFormat)
	overrideEnv(&cfg.DisplayTimeZone, envTimeZone)
	overrideEnv(&cfg.BaseURL, envBaseURL)
}

func overrideEnv(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func override(target *string, value string) {
	if value != "" {
		*target = value
	}
}
