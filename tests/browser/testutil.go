// Package browser holds the end-to-end browser suite.
// All tests use the shared BrowserTestEnv via SetupBrowserTestEnv(t).
//
// With BASE_URL unset the suite serves the stand-in application on httptest;
// set BASE_URL to run the same tests against a deployment.
package browser

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/buggy-e2e/internal/artifacts"
	"github.com/kuitang/buggy-e2e/internal/authstate"
	"github.com/kuitang/buggy-e2e/internal/buggyapp"
	"github.com/kuitang/buggy-e2e/internal/config"
	"github.com/kuitang/buggy-e2e/internal/obs"
	"github.com/kuitang/buggy-e2e/internal/pages"
)

const (
	// Never introduce a larger timeout value anywhere in tests/browser.
	browserMaxTimeoutMS = 5000
	browserMaxTimeout   = 5 * time.Second
)

var browserFixtureMu sync.Mutex
var browserSharedFixture *BrowserTestEnv

// BrowserTestEnv is shared by every browser test of the package.
type BrowserTestEnv struct {
	Config    *config.Config
	App       *buggyapp.Server // nil against a deployment
	Server    *httptest.Server
	Capture   *artifacts.Capture
	Publisher *artifacts.Publisher
	TempDir   string

	pw        *playwright.Playwright
	browser   playwright.Browser
	browserMu sync.Mutex

	authMu      sync.Mutex
	authWritten bool
	authReady   bool
}

// SetupBrowserTestEnv returns the shared environment with a running browser.
// The test is skipped under -short or when Playwright is unavailable.
func SetupBrowserTestEnv(t *testing.T) *BrowserTestEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("browser tests skipped in -short mode")
	}

	env := getOrCreateSharedBrowserTestEnv(t)
	env.InitBrowser(t)
	return env
}

func getOrCreateSharedBrowserTestEnv(t *testing.T) *BrowserTestEnv {
	t.Helper()

	browserFixtureMu.Lock()
	defer browserFixtureMu.Unlock()

	if browserSharedFixture != nil {
		return browserSharedFixture
	}
	browserSharedFixture = createBrowserTestEnv(t)
	return browserSharedFixture
}

func createBrowserTestEnv(t *testing.T) *BrowserTestEnv {
	t.Helper()

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	tempDir, err := os.MkdirTemp("", "buggy-e2e-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	env := &BrowserTestEnv{TempDir: tempDir}

	if cfg.StandIn {
		app, err := buggyapp.New(buggyapp.OptionsFromConfig(cfg))
		if err != nil {
			t.Fatalf("Failed to create stand-in app: %v", err)
		}
		env.App = app
		env.Server = httptest.NewServer(app.Handler())
		cfg = cfg.WithBaseURL(env.Server.URL + "/")
		// Stand-in sessions die with the process, so the artifact must too.
		cfg.AuthStatePath = filepath.Join(tempDir, ".auth", "user.json")
	}
	env.Config = cfg

	env.Capture, err = artifacts.NewCapture(cfg.CaptureDir)
	if err != nil {
		t.Fatalf("Failed to create capture dir: %v", err)
	}
	env.Publisher, err = artifacts.NewPublisherFromConfig(context.Background(), cfg.Artifacts)
	if err != nil {
		t.Fatalf("Failed to create artifact publisher: %v", err)
	}
	return env
}

// cleanupSharedBrowserTestEnv tears the fixture down. Captures are published
// and kept only when the run failed.
func cleanupSharedBrowserTestEnv(failed bool) {
	browserFixtureMu.Lock()
	defer browserFixtureMu.Unlock()

	env := browserSharedFixture
	if env == nil {
		return
	}
	browserSharedFixture = nil
	log := obs.Pkg("browser_tests")

	if env.browser != nil {
		_ = env.browser.Close()
	}
	if env.pw != nil {
		_ = env.pw.Stop()
	}
	if env.Server != nil {
		env.Server.Close()
	}
	if env.App != nil {
		env.App.Close()
	}

	if failed {
		if env.Publisher != nil {
			keys, err := env.Publisher.Publish(context.Background(), env.Capture)
			if err != nil {
				log.Error("artifacts_publish_failed", "run_id", env.Capture.RunID, "err", err)
			} else {
				log.Info("artifacts_published", "run_id", env.Capture.RunID, "count", len(keys))
			}
		}
		log.Info("captures_kept", "dir", env.Capture.Dir())
	} else {
		_ = env.Capture.Remove()
	}
	_ = os.RemoveAll(env.TempDir)
}

func TestMain(m *testing.M) {
	obs.Init()
	code := m.Run()
	cleanupSharedBrowserTestEnv(code != 0)
	os.Exit(code)
}

// InitBrowser starts Playwright and the configured browser once.
func (env *BrowserTestEnv) InitBrowser(t *testing.T) {
	t.Helper()

	env.browserMu.Lock()
	defer env.browserMu.Unlock()

	if env.browser != nil {
		return
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Skip("Playwright not available:", err)
	}
	browser, err := pages.Launch(pw, env.Config.Browser)
	if err != nil {
		_ = pw.Stop()
		t.Skip("Could not launch browser:", err)
	}
	env.pw = pw
	env.browser = browser
}

// NewPage opens a page in a fresh context. On failure a screenshot is saved
// to the run's capture directory before the context closes.
func (env *BrowserTestEnv) NewPage(t *testing.T) playwright.Page {
	t.Helper()
	return env.newPage(t, playwright.BrowserNewContextOptions{})
}

// NewAuthenticatedPage opens a page whose context starts logged in as the
// primary user, bootstrapping the storage state on first use.
func (env *BrowserTestEnv) NewAuthenticatedPage(t *testing.T) playwright.Page {
	t.Helper()
	env.EnsureAuthState(t)
	return env.newPage(t, authstate.ContextOptions(env.Config.AuthStatePath))
}

// EnsureAuthState writes the storage-state artifact once per run.
// It reports whether this call or an earlier one wrote a new artifact.
func (env *BrowserTestEnv) EnsureAuthState(t *testing.T) bool {
	t.Helper()

	env.authMu.Lock()
	defer env.authMu.Unlock()

	if !env.authReady {
		written, err := authstate.Ensure(env.Context(t), env.browser, env.Config)
		if err != nil {
			t.Fatalf("auth bootstrap failed: %v", err)
		}
		env.authWritten = written
		env.authReady = true
	}
	return env.authWritten
}

func (env *BrowserTestEnv) newPage(t *testing.T, options playwright.BrowserNewContextOptions) playwright.Page {
	t.Helper()

	options.RecordVideo = &playwright.RecordVideo{Dir: env.Capture.Path("video")}
	bctx, err := env.browser.NewContext(options)
	if err != nil {
		t.Fatalf("could not create browser context: %v", err)
	}
	bctx.SetDefaultTimeout(browserMaxTimeoutMS)
	t.Cleanup(func() {
		if err := bctx.Close(); err != nil {
			t.Logf("could not close browser context: %v", err)
		}
	})

	page, err := bctx.NewPage()
	if err != nil {
		t.Fatalf("could not create page: %v", err)
	}
	t.Cleanup(func() {
		if !t.Failed() {
			return
		}
		if path, err := env.Capture.Screenshot(page, t.Name(), "failure"); err != nil {
			t.Logf("could not capture failure screenshot: %v", err)
		} else {
			t.Logf("failure screenshot: %s", path)
		}
	})
	return page
}

// Context returns a context whose log lines carry the test name.
func (env *BrowserTestEnv) Context(t *testing.T) context.Context {
	return obs.WithTest(obs.WithRun(context.Background(), env.Capture.RunID), t.Name())
}

// Base binds page to the run configuration.
func (env *BrowserTestEnv) Base(t *testing.T, page playwright.Page) *pages.Base {
	return pages.NewBase(env.Context(t), page, env.Config)
}
