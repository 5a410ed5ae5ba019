package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/kuitang/buggy-e2e/internal/config"
	"github.com/kuitang/buggy-e2e/internal/errs"
	"github.com/kuitang/buggy-e2e/internal/s3client"
)

func testScreenshotName_IsSingleSafeSegment(t *rapid.T) {
	step := rapid.IntRange(1, 99).Draw(t, "step")
	name := rapid.String().Draw(t, "name")
	phase := rapid.SampledFrom([]string{"before", "after", "failure"}).Draw(t, "phase")

	got := ScreenshotName(step, name, phase)
	for _, r := range got {
		if r == '/' || r == '\\' || r == ' ' {
			t.Fatalf("unsafe character %q in %q", r, got)
		}
	}
	if got[:2] != ScreenshotName(step, "x", "y")[:2] {
		t.Fatalf("step prefix mismatch: %q", got)
	}
}

func TestScreenshotName_IsSingleSafeSegment(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testScreenshotName_IsSingleSafeSegment)
}

func TestScreenshotName_Format(t *testing.T) {
	t.Parallel()
	if got := ScreenshotName(3, "TestBrowser_Login/valid credentials", "after"); got != "03-TestBrowser_Login_valid_credentials-after.png" {
		t.Fatalf("ScreenshotName mismatch: got=%q", got)
	}
}

func TestScreenshotName_KeepsParentTestName(t *testing.T) {
	t.Parallel()
	a := ScreenshotName(1, "TestBrowser_ChangePassword/valid inputs", "failure")
	b := ScreenshotName(1, "TestBrowser_Profile_Validations/valid inputs", "failure")
	if a == b {
		t.Fatalf("subtests of different tests share a screenshot name: %q", a)
	}
	if !strings.HasPrefix(a, "01-TestBrowser_ChangePassword_") {
		t.Fatalf("parent test name missing: %q", a)
	}
}

func TestOpenCapture_MissingRunIsAnError(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	_, err := OpenCapture(root, "run-typo")
	if !errs.Is(err, errs.InvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(root, "run-typo")); !os.IsNotExist(statErr) {
		t.Fatalf("OpenCapture must not create the run dir: %v", statErr)
	}

	existing, err := NewCaptureWithRunID(root, "run-1")
	if err != nil {
		t.Fatalf("NewCaptureWithRunID failed: %v", err)
	}
	opened, err := OpenCapture(root, "run-1")
	if err != nil {
		t.Fatalf("OpenCapture failed: %v", err)
	}
	if opened.Dir() != existing.Dir() {
		t.Fatalf("dir mismatch: got=%q want=%q", opened.Dir(), existing.Dir())
	}
}

func TestNewCaptureWithRunID_RejectsPathRunIDs(t *testing.T) {
	t.Parallel()
	for _, id := range []string{"", "a/b", `a\b`} {
		if _, err := NewCaptureWithRunID(t.TempDir(), id); err == nil {
			t.Fatalf("expected error for run id %q", id)
		}
	}
}

func TestCapture_PathAndFiles(t *testing.T) {
	t.Parallel()
	c, err := NewCapture(t.TempDir())
	if err != nil {
		t.Fatalf("NewCapture failed: %v", err)
	}
	if c.RunID == "" {
		t.Fatal("expected generated run id")
	}

	for _, rel := range [][]string{{"screenshots", "01-a-before.png"}, {"trace.zip"}} {
		if err := os.WriteFile(c.Path(rel...), []byte("data"), 0o644); err != nil {
			t.Fatalf("write capture failed: %v", err)
		}
	}

	files, err := c.Files()
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	slices.Sort(files)
	want := []string{"screenshots/01-a-before.png", "trace.zip"}
	if !slices.Equal(files, want) {
		t.Fatalf("Files mismatch: got=%v want=%v", files, want)
	}

	if err := c.Remove(); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(c.Dir()); !os.IsNotExist(err) {
		t.Fatalf("capture dir still present: %v", err)
	}
}

func TestPublisher_PublishAndDeleteRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := s3client.TestClient(t, "e2e-artifacts")
	pub := NewPublisher(store)

	c, err := NewCaptureWithRunID(t.TempDir(), "run-1")
	if err != nil {
		t.Fatalf("NewCaptureWithRunID failed: %v", err)
	}
	if err := os.WriteFile(c.Path("screenshots", "01-login-failure.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.WriteFile(c.Path("video", "page.webm"), []byte("webm"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	keys, err := pub.Publish(ctx, c)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	slices.Sort(keys)
	want := []string{"runs/run-1/screenshots/01-login-failure.png", "runs/run-1/video/page.webm"}
	if !slices.Equal(keys, want) {
		t.Fatalf("published keys mismatch: got=%v want=%v", keys, want)
	}

	data, err := store.Download(ctx, "runs/run-1/screenshots/01-login-failure.png")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if string(data) != "png" {
		t.Fatalf("uploaded content mismatch: %q", data)
	}

	n, err := pub.DeleteRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("DeleteRun count mismatch: got=%d want=2", n)
	}
	left, err := store.List(ctx, RunPrefix("run-1"))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("objects left after DeleteRun: %v", left)
	}
}

func TestNewPublisherFromConfig_DisabledWithoutBucket(t *testing.T) {
	t.Parallel()
	pub, err := NewPublisherFromConfig(context.Background(), config.ArtifactConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pub != nil {
		t.Fatal("expected nil publisher when ARTIFACT_BUCKET is unset")
	}
}

func TestContentType(t *testing.T) {
	t.Parallel()
	if got := contentType("a.png"); got != "image/png" {
		t.Fatalf("png content type mismatch: %q", got)
	}
	if got := contentType("trace.unknownext"); got != "application/octet-stream" {
		t.Fatalf("fallback content type mismatch: %q", got)
	}
}
