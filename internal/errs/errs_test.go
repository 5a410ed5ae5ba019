package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/playwright-community/playwright-go"
	"pgregory.net/rapid"
)

var allCodes = []Code{
	Timeout,
	Assertion,
	Navigation,
	Interaction,
	InvalidArgument,
	Unauthenticated,
	AlreadyExists,
	RateLimited,
	Internal,
}

func testNew_CodeAndMessageSurvive(t *rapid.T) {
	code := rapid.SampledFrom(allCodes).Draw(t, "code")
	message := rapid.StringMatching(`[a-zA-Z0-9 _:\-]{1,80}`).Draw(t, "message")

	err := New(code, message)
	if got := CodeOf(err); got != code {
		t.Fatalf("CodeOf(New) mismatch: got=%q want=%q", got, code)
	}
	if got := MessageOf(err); got != message {
		t.Fatalf("MessageOf(New) mismatch: got=%q want=%q", got, message)
	}
	if !Is(err, code) {
		t.Fatalf("Is(%q) returned false", code)
	}
}

func TestNew_CodeAndMessageSurvive(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testNew_CodeAndMessageSurvive)
}

func testWrap_SurvivesOuterWrapping(t *rapid.T) {
	code := rapid.SampledFrom(allCodes).Draw(t, "code")
	message := rapid.StringMatching(`[a-zA-Z0-9 _:\-]{1,80}`).Draw(t, "message")
	cause := errors.New(rapid.StringMatching(`[a-zA-Z0-9 _:\-]{1,80}`).Draw(t, "cause"))

	err := Wrap(code, message, cause)
	wrapped := fmt.Errorf("outer: %w", err)

	if got := CodeOf(wrapped); got != code {
		t.Fatalf("CodeOf(wrapped) mismatch: got=%q want=%q", got, code)
	}
	if got := MessageOf(wrapped); got != message {
		t.Fatalf("MessageOf(wrapped) mismatch: got=%q want=%q", got, message)
	}
	if !errors.Is(wrapped, cause) {
		t.Fatal("cause lost through Wrap")
	}
}

func TestWrap_SurvivesOuterWrapping(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testWrap_SurvivesOuterWrapping)
}

func testCodeOf_UntypedIsInternal(t *rapid.T) {
	raw := rapid.StringMatching(`[a-zA-Z0-9 _:\-./]{1,80}`).Draw(t, "raw")
	untyped := errors.New(raw)

	if got := CodeOf(untyped); got != Internal {
		t.Fatalf("CodeOf(untyped) mismatch: got=%q want=%q", got, Internal)
	}
	if got := MessageOf(untyped); got != "internal error" {
		t.Fatalf("MessageOf(untyped) mismatch: got=%q want=%q", got, "internal error")
	}
	if got := CodeOf(nil); got != Internal {
		t.Fatalf("CodeOf(nil) mismatch: got=%q want=%q", got, Internal)
	}
	if got := MessageOf(nil); got != string(Internal) {
		t.Fatalf("MessageOf(nil) mismatch: got=%q want=%q", got, Internal)
	}
}

func TestCodeOf_UntypedIsInternal(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testCodeOf_UntypedIsInternal)
}

func testFromPlaywright_TimeoutsAlwaysMapToTimeout(t *rapid.T) {
	requested := rapid.SampledFrom([]Code{Assertion, Navigation, Interaction, Internal}).Draw(t, "requested")
	element := rapid.StringMatching(`[a-z ]{1,30}`).Draw(t, "element")

	timeout := fmt.Errorf("%w: waiting for locator", playwright.ErrTimeout)
	err := FromPlaywright(requested, element, timeout)
	if got := CodeOf(err); got != Timeout {
		t.Fatalf("timeout code mismatch: got=%q want=%q", got, Timeout)
	}
	if !errors.Is(err, playwright.ErrTimeout) {
		t.Fatal("playwright timeout lost through FromPlaywright")
	}

	other := errors.New("element is detached")
	err = FromPlaywright(requested, element, other)
	if got := CodeOf(err); got != requested {
		t.Fatalf("non-timeout code mismatch: got=%q want=%q", got, requested)
	}
	if !strings.HasPrefix(err.Error(), element+": ") {
		t.Fatalf("element missing from message: got=%q element=%q", err.Error(), element)
	}
}

func TestFromPlaywright_TimeoutsAlwaysMapToTimeout(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testFromPlaywright_TimeoutsAlwaysMapToTimeout)
}

func TestFromPlaywright_NilIsNil(t *testing.T) {
	t.Parallel()
	if err := FromPlaywright(Interaction, "Login button", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func testHTTPStatus_StandInCodes(t *rapid.T) {
	cases := map[Code]int{
		InvalidArgument: http.StatusBadRequest,
		Unauthenticated: http.StatusUnauthorized,
		AlreadyExists:   http.StatusConflict,
		RateLimited:     http.StatusTooManyRequests,
		Internal:        http.StatusInternalServerError,
	}

	code := rapid.SampledFrom(append(allCodes, Code("unknown_code"))).Draw(t, "code")

	want := http.StatusInternalServerError
	if mapped, ok := cases[code]; ok {
		want = mapped
	}
	if got := HTTPStatus(code); got != want {
		t.Fatalf("HTTPStatus mismatch: code=%q got=%d want=%d", code, got, want)
	}
}

func TestHTTPStatus_StandInCodes(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testHTTPStatus_StandInCodes)
}

func TestError_FormatsElementAndFallsBackToCause(t *testing.T) {
	t.Parallel()
	cases := []struct {
		err  *Error
		want string
	}{
		{&Error{Code: Assertion, Element: "Login button", Message: "expected visible"}, "Login button: expected visible"},
		{&Error{Code: Interaction, Element: "Age", Err: errors.New("detached")}, "Age: detached"},
		{&Error{Code: Timeout}, "timeout"},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("Error() = %q, want %q", got, tc.want)
		}
	}
}
