// Package backend holds the text-generation services a changelog can be written with.
// Every provider implements the same Backend contract and differs only in the SDK it drives.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/naka-gawa/ai-changelog/internal/domain"
	domainErrors "github.com/naka-gawa/ai-changelog/internal/errors"
	"github.com/naka-gawa/ai-changelog/internal/logger"
)

// maxErrorBody caps how much of a failed response is kept for the error message.
const maxErrorBody = 1 << 20

// Backend submits one prompt pair to a text-generation service and returns the
// first generated text chunk. A well-formed response without text yields "".
type Backend interface {
	Submit(ctx context.Context, system, user, model string, credential domain.Secret) (string, error)
	Provider() domain.Provider
}

// Options configures a backend at construction time.
type Options struct {
	// BaseURL overrides the provider endpoint root, e.g. for a proxy or a test server.
	BaseURL string
	// HTTPClient is used for every request. Nil means a client without its own timeout;
	// the caller's context is the only deadline.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) baseURL(fallback string) string {
	if o.BaseURL != "" {
		return o.BaseURL
	}
	return fallback
}

// statusMiddleware sits between an SDK and the transport. It turns every non-2xx
// response into a generation error carrying the status and the raw body, whatever
// the body's shape, so both providers fail with "<Provider> API error: <status> <body>".
func statusMiddleware(provider domain.Provider) func(*http.Request, func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	return func(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
		logger.FromContext(req.Context()).Debug("sending generation request",
			"provider", string(provider), "url", req.URL.String(), "size", req.ContentLength)

		resp, err := next(req)
		if err != nil {
			return resp, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			defer resp.Body.Close()
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return nil, domainErrors.NewGenerationError(provider.DisplayName(), resp.StatusCode, string(raw))
		}
		return resp, nil
	}
}

// translateError maps an SDK failure onto a failure kind. Typed errors from
// statusMiddleware pass through unchanged.
func translateError(provider domain.Provider, err error) error {
	if domainErrors.KindOf(err) != "" {
		return err
	}
	if domainErrors.IsTimeout(err) {
		return domainErrors.NewTimeoutError(fmt.Sprintf("%s request timed out", provider.DisplayName()), err)
	}
	return &domainErrors.AppError{
		Kind:    domainErrors.KindGeneration,
		Message: fmt.Sprintf("%s request failed", provider.DisplayName()),
		Err:     err,
	}
}
