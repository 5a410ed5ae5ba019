// Package config provides the run configuration for the end-to-end suite.
// It is built once per process from environment variables and passed
// explicitly to whatever needs it (page objects, the auth bootstrap, the CLI).
//
// BASE_URL selects the application under test. When it is unset the suite
// targets the in-process stand-in application instead.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public deployment of the application under test.
	DefaultBaseURL = "https://buggy.justtestit.org/"

	// DefaultPassword is the password of both seeded accounts unless TEST_USER_PASS is set.
	DefaultPassword = "123456789Go@"

	defaultAuthStatePath  = "playwright/.auth/user.json"
	defaultCaptureDir     = "test-results"
	defaultArtifactRegion = "us-east-1"
)

// Routes are the application paths the suite navigates to.
type Routes struct {
	Home     string
	Register string
	Profile  string
}

// DefaultRoutes are the routes exposed by the application.
var DefaultRoutes = Routes{
	Home:     "/",
	Register: "/register",
	Profile:  "/profile",
}

// Credentials is an immutable username/password pair.
type Credentials struct {
	Username string
	Password string
}

// Users are the accounts the suite logs in with.
type Users struct {
	Primary   Credentials // used by login, profile and the auth bootstrap
	Secondary Credentials // used by password-change scenarios
}

// BrowserConfig selects and tunes the browser.
type BrowserConfig struct {
	Name     string // chromium, firefox or webkit
	Headless bool
	SlowMo   time.Duration
}

// Timeouts bound every wait the page objects perform.
type Timeouts struct {
	Element         time.Duration // visibility waits and assertions
	LoaderAppear    time.Duration
	LoaderDisappear time.Duration
	Navigation      time.Duration
}

// ArtifactConfig configures publishing of captures to an S3-compatible bucket.
type ArtifactConfig struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// Enabled reports whether captures should be published.
func (a ArtifactConfig) Enabled() bool {
	return a.Bucket != ""
}

// Config holds all run configuration.
type Config struct {
	BaseURL string
	StandIn bool // serve the stand-in application and point BaseURL at it

	Routes Routes
	Users  Users

	Browser  BrowserConfig
	Timeouts Timeouts

	AuthStatePath       string // storage-state artifact written by the auth bootstrap
	RegistrationFixture string // optional external registration fixture
	CaptureDir          string // screenshots, video and traces
	StandInLoaderDelay  time.Duration

	Artifacts ArtifactConfig
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// LoadConfig loads configuration from environment variables and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Routes: DefaultRoutes,
	}

	cfg.BaseURL = getEnvOrDefault("BASE_URL", "")
	cfg.StandIn = cfg.BaseURL == ""
	if cfg.StandIn {
		cfg.BaseURL = DefaultBaseURL
	}

	// TEST_USER_PASS overrides the password of both accounts.
	password := getEnvOrDefault("TEST_USER_PASS", DefaultPassword)
	cfg.Users = Users{
		Primary:   Credentials{Username: "ky", Password: password},
		Secondary: Credentials{Username: "ky2", Password: password},
	}

	cfg.Browser = BrowserConfig{
		Name:     getEnvOrDefault("BROWSER", "chromium"),
		Headless: os.Getenv("HEADFUL") == "",
		SlowMo:   time.Duration(parseIntOrDefault("SLOW_MO", 0)) * time.Millisecond,
	}

	cfg.Timeouts = Timeouts{
		Element:         time.Duration(parseIntOrDefault("E2E_TIMEOUT_MS", 5000)) * time.Millisecond,
		LoaderAppear:    parseDurationOrDefault("E2E_LOADER_APPEAR", 2*time.Second),
		LoaderDisappear: parseDurationOrDefault("E2E_LOADER_DISAPPEAR", 10*time.Second),
		Navigation:      parseDurationOrDefault("E2E_NAVIGATION_TIMEOUT", 30*time.Second),
	}

	cfg.AuthStatePath = getEnvOrDefault("AUTH_STATE_PATH", defaultAuthStatePath)
	cfg.RegistrationFixture = getEnvOrDefault("REGISTRATION_FIXTURE", "")
	cfg.CaptureDir = getEnvOrDefault("CAPTURE_DIR", defaultCaptureDir)
	cfg.StandInLoaderDelay = parseDurationOrDefault("STANDIN_LOADER_DELAY", 300*time.Millisecond)

	cfg.Artifacts = ArtifactConfig{
		Bucket:          getEnvOrDefault("ARTIFACT_BUCKET", ""),
		Endpoint:        getEnvOrDefault("ARTIFACT_ENDPOINT", ""),
		Region:          getEnvOrDefault("ARTIFACT_REGION", defaultArtifactRegion),
		AccessKeyID:     getEnvOrDefault("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnvOrDefault("AWS_SECRET_ACCESS_KEY", ""),
	}
	// Custom endpoints (minio, gofakes3) need path-style addressing.
	cfg.Artifacts.UsePathStyle = cfg.Artifacts.Endpoint != ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []string

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("BASE_URL must be an absolute URL, got %q", c.BaseURL))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("BASE_URL must use http or https, got %q", u.Scheme))
	}

	switch c.Browser.Name {
	case "chromium", "firefox", "webkit":
	default:
		errs = append(errs, fmt.Sprintf("BROWSER must be chromium, firefox or webkit, got %q", c.Browser.Name))
	}

	if c.Users.Primary.Username == "" || c.Users.Primary.Password == "" {
		errs = append(errs, "primary user credentials are required")
	}

	if c.Timeouts.Element <= 0 {
		errs = append(errs, "E2E_TIMEOUT_MS must be positive")
	}
	if c.Timeouts.LoaderAppear <= 0 || c.Timeouts.LoaderDisappear <= 0 {
		errs = append(errs, "loader timeouts must be positive")
	}

	if c.AuthStatePath == "" {
		errs = append(errs, "AUTH_STATE_PATH must not be empty")
	}

	if c.Artifacts.Enabled() && c.Artifacts.Region == "" {
		errs = append(errs, "ARTIFACT_REGION is required when ARTIFACT_BUCKET is set")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// WithBaseURL returns a copy of the configuration targeting baseURL.
func (c *Config) WithBaseURL(baseURL string) *Config {
	cp := *c
	cp.BaseURL = baseURL
	return &cp
}

// URL resolves a route or relative path against BaseURL.
// Absolute URLs are returned unchanged.
func (c *Config) URL(path string) string {
	ref, err := url.Parse(path)
	if err != nil || ref.IsAbs() {
		return path
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return path
	}
	return base.ResolveReference(ref).String()
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func parseIntOrDefault(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
