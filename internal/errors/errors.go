// Package errors defines the failure kinds a changelog run can end with.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
)

// Kind is the category of a failure.
type Kind string

const (
	KindResolution    Kind = "RESOLUTION"
	KindGeneration    Kind = "GENERATION"
	KindConfiguration Kind = "CONFIGURATION"
	KindTimeout       Kind = "TIMEOUT"
)

// AppError is a failure with a kind, a message and an optional cause.
// Generation failures also carry the backend status code and raw response body.
type AppError struct {
	Kind       Kind
	Message    string
	Err        error
	StatusCode int
	Body       string
	Suggestion string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithSuggestion returns a copy of e carrying a remediation hint.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	cp := *e
	cp.Suggestion = suggestion
	return &cp
}

// NewResolutionError reports a failed hosting-API call.
func NewResolutionError(msg string, err error) *AppError {
	return &AppError{Kind: KindResolution, Message: msg, Err: err}
}

// NewConfigError reports invalid input detected before any remote call.
func NewConfigError(msg string, err error) *AppError {
	return &AppError{Kind: KindConfiguration, Message: msg, Err: err}
}

// NewGenerationError reports a non-success status from a text-generation backend.
// The message reads "<provider> API error: <status> <body>".
func NewGenerationError(provider string, status int, body string) *AppError {
	return &AppError{
		Kind:       KindGeneration,
		Message:    fmt.Sprintf("%s API error: %d %s", provider, status, body),
		StatusCode: status,
		Body:       body,
	}
}

// NewTimeoutError reports an operation that ran past its deadline.
func NewTimeoutError(msg string, err error) *AppError {
	return &AppError{Kind: KindTimeout, Message: msg, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain, or "".
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsTimeout reports whether err was caused by an expired deadline,
// either from a context or from the transport.
func IsTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// Suggestion returns the remediation hint attached to err, if any.
func Suggestion(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Suggestion
	}
	return ""
}

var (
	ErrTokenMissing = NewConfigError("GITHUB_TOKEN is required", nil).
			WithSuggestion("Add GITHUB_TOKEN to your workflow env or export it in your shell")

	ErrAPIKeyMissing = NewConfigError("api key is required", nil).
				WithSuggestion("Pass --api-key or set INPUT_API_KEY")

	ErrRepositoryMissing = NewConfigError("repository is required (owner/name)", nil).
				WithSuggestion("Pass --repo owner/name or set GITHUB_REPOSITORY")
)
