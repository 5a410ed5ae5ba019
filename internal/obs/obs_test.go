package obs

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestFrom_IncludesCorrelationFields(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	ctx := WithRun(context.Background(), "run-1")
	ctx = WithTest(ctx, "TestLogin")
	ctx = WithStep(ctx, "fill username")
	From(ctx).Info("page_action")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(lines))
	}
	if got := lines[0]["test"]; got != "TestLogin" {
		t.Fatalf("test field mismatch: got=%v want=%q", got, "TestLogin")
	}
	if got := lines[0]["run_id"]; got != "run-1" {
		t.Fatalf("run_id field mismatch: got=%v", got)
	}
	if got := lines[0]["step"]; got != "fill username" {
		t.Fatalf("step field mismatch: got=%v want=%q", got, "fill username")
	}
}

func TestWithCorrelation_KeepsExistingFields(t *testing.T) {
	t.Parallel()
	ctx := WithCorrelation(context.Background(), Correlation{RequestID: "req-1", Test: "A"})
	ctx = WithCorrelation(ctx, Correlation{Step: "s"})

	corr := CorrelationFrom(ctx)
	if corr.RequestID != "req-1" || corr.Test != "A" || corr.Step != "s" {
		t.Fatalf("unexpected correlation: %+v", corr)
	}
}

func TestRequestContextMiddleware_SetsRequestID(t *testing.T) {
	t.Parallel()
	var seen string
	h := RequestContextMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationFrom(r.Context()).RequestID
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.HasPrefix(seen, "req-") {
		t.Fatalf("generated request id mismatch: %q", seen)
	}
	if rec.Header().Get("X-Request-Id") != seen {
		t.Fatalf("response header mismatch: got=%q want=%q", rec.Header().Get("X-Request-Id"), seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "from-client")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "from-client" {
		t.Fatalf("incoming request id not reused: %q", seen)
	}
}

func TestAccessLogMiddleware_RedactsCookies(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	h := AccessLogMiddleware("buggyapp", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Cookie", "session=abc123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 access line, got %d", len(lines))
	}
	entry := lines[0]
	if entry["msg"] != "http_access" || entry["path"] != "/profile" {
		t.Fatalf("unexpected access entry: %v", entry)
	}
	if status, _ := entry["status"].(float64); int(status) != http.StatusTeapot {
		t.Fatalf("status mismatch: got=%v want=%d", entry["status"], http.StatusTeapot)
	}
	if headers, _ := entry["headers"].(string); strings.Contains(headers, "abc123") {
		t.Fatalf("cookie leaked into access log: %q", headers)
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Parallel()
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := levelFromEnv(in); got != want {
			t.Errorf("levelFromEnv(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestAccessLogMiddleware_DefaultsStatusToOK(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	h := AccessLogMiddleware("buggyapp", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 access line, got %d", len(lines))
	}
	if status, _ := lines[0]["status"].(float64); int(status) != http.StatusOK {
		t.Fatalf("status mismatch: got=%v", lines[0]["status"])
	}
}
