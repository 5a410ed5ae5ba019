package errs

import (
	"errors"
	"net/http"

	"github.com/playwright-community/playwright-go"
)

// Code is an error code shared by the page objects and the stand-in application.
type Code string

const (
	// Browser-side codes.
	Timeout     Code = "timeout"
	Assertion   Code = "assertion"
	Navigation  Code = "navigation"
	Interaction Code = "interaction"

	// Stand-in application codes.
	InvalidArgument Code = "invalid_argument"
	Unauthenticated Code = "unauthenticated"
	AlreadyExists   Code = "already_exists"
	RateLimited     Code = "rate_limited"
	Internal        Code = "internal"
)

// Error is a coded error. Element describes the page element involved, if any.
type Error struct {
	Code    Code
	Message string
	Element string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Element != "" {
		return e.Element + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap is New with a cause reachable through errors.Is and errors.As.
func Wrap(code Code, message string, cause error) error {
	return &Error{Code: code, Message: message, Err: cause}
}

// FromPlaywright wraps an error returned by playwright for the given element.
// Playwright timeouts always become Timeout, whatever code was requested.
// A nil err returns nil.
func FromPlaywright(code Code, element string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		code = Timeout
	}
	return &Error{Code: code, Element: element, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain.
// Nil, untyped and code-less errors are Internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return Internal
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	var coded *Error
	return errors.As(err, &coded) && coded.Code == code
}

// MessageOf returns the message shown to the page.
// Untyped errors collapse to "internal error" so raw causes never reach a response body.
func MessageOf(err error) string {
	if err == nil {
		return string(Internal)
	}
	var coded *Error
	if errors.As(err, &coded) && coded.Message != "" {
		return coded.Message
	}
	return "internal error"
}

// HTTPStatus is the stand-in application's response status for code.
func HTTPStatus(code Code) int {
	switch code {
	case InvalidArgument:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case AlreadyExists:
		return http.StatusConflict
	case RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
