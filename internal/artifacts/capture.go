// Package artifacts stores per-run captures (screenshots, video, traces) and
// publishes them to an S3-compatible bucket.
package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/buggy-e2e/internal/errs"
)

// Capture owns the capture directory of one run: <root>/<run-id>.
type Capture struct {
	RunID string

	dir string

	stepMu sync.Mutex
	step   int
}

// NewCapture creates a capture directory under root with a fresh run id.
func NewCapture(root string) (*Capture, error) {
	return NewCaptureWithRunID(root, uuid.NewString())
}

func validRunID(runID string) error {
	if runID == "" || strings.ContainsAny(runID, `/\`) {
		return errs.New(errs.InvalidArgument, fmt.Sprintf("invalid run id %q", runID))
	}
	return nil
}

// NewCaptureWithRunID creates the capture directory for an existing run id.
func NewCaptureWithRunID(root, runID string) (*Capture, error) {
	if err := validRunID(runID); err != nil {
		return nil, err
	}
	dir := filepath.Join(root, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create capture dir: %w", err)
	}
	return &Capture{RunID: runID, dir: dir}, nil
}

// OpenCapture opens the capture directory of a finished run. Unlike
// NewCaptureWithRunID it never creates anything: a missing run is an error.
func OpenCapture(root, runID string) (*Capture, error) {
	if err := validRunID(runID); err != nil {
		return nil, err
	}
	dir := filepath.Join(root, runID)
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.InvalidArgument, fmt.Sprintf("no captures for run %q under %s", runID, root), err)
	}
	if err != nil {
		return nil, fmt.Errorf("stat capture dir: %w", err)
	}
	if !info.IsDir() {
		return nil, errs.New(errs.InvalidArgument, fmt.Sprintf("%s is not a directory", dir))
	}
	return &Capture{RunID: runID, dir: dir}, nil
}

// Dir returns the run directory.
func (c *Capture) Dir() string {
	return c.dir
}

// Path joins parts under the run directory and creates the parent directories.
func (c *Capture) Path(parts ...string) string {
	out := filepath.Join(append([]string{c.dir}, parts...)...)
	_ = os.MkdirAll(filepath.Dir(out), 0o755)
	return out
}

// ScreenshotName returns the file name of screenshot number step.
func ScreenshotName(step int, name, phase string) string {
	return fmt.Sprintf("%02d-%s-%s.png", step, sanitize(name), sanitize(phase))
}

// Screenshot saves a full-page screenshot as screenshots/NN-name-phase.png.
// Steps are numbered in call order across all tests sharing the capture.
func (c *Capture) Screenshot(page playwright.Page, name, phase string) (string, error) {
	c.stepMu.Lock()
	defer c.stepMu.Unlock()

	c.step++
	path := c.Path("screenshots", ScreenshotName(c.step, name, phase))
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return "", errs.FromPlaywright(errs.Internal, "screenshot "+filepath.Base(path), err)
	}
	return path, nil
}

// Files lists every regular file in the run directory, relative to it, using
// forward slashes.
func (c *Capture) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(c.dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list captures: %w", err)
	}
	return files, nil
}

// Remove deletes the run directory.
func (c *Capture) Remove() error {
	return os.RemoveAll(c.dir)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
