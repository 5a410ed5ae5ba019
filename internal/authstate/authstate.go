// Package authstate produces and validates the logged-in storage-state artifact.
//
// Bootstrap logs the primary user in once and saves the browser storage state
// so that tests can start already authenticated. A sidecar file records a
// fingerprint of the base URL and credentials that produced the artifact; an
// artifact whose fingerprint no longer matches is stale and is regenerated.
package authstate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/buggy-e2e/internal/config"
	"github.com/kuitang/buggy-e2e/internal/errs"
	"github.com/kuitang/buggy-e2e/internal/obs"
	"github.com/kuitang/buggy-e2e/internal/pages"
)

// MetaSuffix is appended to the artifact path to name the fingerprint sidecar.
const MetaSuffix = ".meta.json"

// Meta is the sidecar stored next to the storage-state artifact.
type Meta struct {
	Fingerprint string    `json:"fingerprint"`
	BaseURL     string    `json:"base_url"`
	Username    string    `json:"username"`
	CreatedAt   time.Time `json:"created_at"`
}

// Fingerprint identifies the target and credentials an artifact was made for.
// The password only contributes through the hash.
func Fingerprint(cfg *config.Config) string {
	sum := sha256.New()
	for _, part := range []string{cfg.BaseURL, cfg.Users.Primary.Username, cfg.Users.Primary.Password} {
		sum.Write([]byte(part))
		sum.Write([]byte{0})
	}
	return hex.EncodeToString(sum.Sum(nil))
}

// MetaPath returns the sidecar path for an artifact path.
func MetaPath(path string) string {
	return path + MetaSuffix
}

// ReadMeta loads the sidecar for path.
func ReadMeta(path string) (*Meta, error) {
	data, err := os.ReadFile(MetaPath(path))
	if err != nil {
		return nil, err
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", MetaPath(path), err)
	}
	return &meta, nil
}

// Fresh reports whether the artifact at path exists and was made for cfg.
func Fresh(path string, cfg *config.Config) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	meta, err := ReadMeta(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return meta.Fingerprint == Fingerprint(cfg), nil
}

// ContextOptions returns context options that load the artifact at path.
func ContextOptions(path string) playwright.BrowserNewContextOptions {
	return playwright.BrowserNewContextOptions{
		StorageStatePath: playwright.String(path),
	}
}

// Bootstrap logs in as the primary user in a fresh context and writes the
// storage state to cfg.AuthStatePath.
func Bootstrap(ctx context.Context, browser playwright.Browser, cfg *config.Config) error {
	ctx = obs.WithStep(ctx, "auth_bootstrap")
	log := obs.From(ctx).With("pkg", "authstate")
	path := cfg.AuthStatePath

	bctx, err := browser.NewContext()
	if err != nil {
		return errs.FromPlaywright(errs.Internal, "browser context", err)
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return errs.FromPlaywright(errs.Internal, "page", err)
	}

	base := pages.NewBase(ctx, page, cfg)
	login := pages.NewLoginPage(base)
	home := pages.NewHomePage(base)

	if err := login.Open(); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	if err := login.Login(cfg.Users.Primary.Username, cfg.Users.Primary.Password); err != nil {
		return fmt.Errorf("log in as %s: %w", cfg.Users.Primary.Username, err)
	}
	// The session cookie exists once the greeting renders.
	if err := home.ValidateGreeting(); err != nil {
		return fmt.Errorf("wait for logged-in home page: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create auth state dir: %w", err)
	}
	tmp := path + ".tmp"
	if _, err := bctx.StorageState(tmp); err != nil {
		_ = os.Remove(tmp)
		return errs.FromPlaywright(errs.Internal, "storage state", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("install auth state: %w", err)
	}

	meta := Meta{
		Fingerprint: Fingerprint(cfg),
		BaseURL:     cfg.BaseURL,
		Username:    cfg.Users.Primary.Username,
		CreatedAt:   time.Now().UTC(),
	}
	if err := WriteMeta(path, meta); err != nil {
		return err
	}

	log.Info("auth_state_written", "path", path, "username", meta.Username, "base_url", meta.BaseURL)
	return nil
}

// Ensure bootstraps only when the artifact is missing or stale.
// It reports whether a new artifact was written.
func Ensure(ctx context.Context, browser playwright.Browser, cfg *config.Config) (bool, error) {
	fresh, err := Fresh(cfg.AuthStatePath, cfg)
	if err != nil {
		return false, fmt.Errorf("check auth state: %w", err)
	}
	if fresh {
		obs.From(ctx).Debug("auth_state_fresh", "pkg", "authstate", "path", cfg.AuthStatePath)
		return false, nil
	}
	if err := Bootstrap(ctx, browser, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// WriteMeta atomically writes the sidecar for the artifact at path.
func WriteMeta(path string, meta Meta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode auth state meta: %w", err)
	}
	return writeFileAtomic(MetaPath(path), data)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
