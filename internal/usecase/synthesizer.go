package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/naka-gawa/ai-changelog/internal/backend"
	"github.com/naka-gawa/ai-changelog/internal/domain"
	domainErrors "github.com/naka-gawa/ai-changelog/internal/errors"
)

// ChangelogSynthesizer turns a pull request summary into categorized markdown
// through a text-generation backend. It never looks at the backend's wire format.
type ChangelogSynthesizer struct {
	request domain.GenerationRequest
	backend backend.Backend
	logger  *slog.Logger
}

func NewChangelogSynthesizer(request domain.GenerationRequest, b backend.Backend, logger *slog.Logger) *ChangelogSynthesizer {
	return &ChangelogSynthesizer{
		request: request,
		backend: b,
		logger:  logger,
	}
}

// Synthesize returns the backend's generated text unmodified. An empty string means
// the backend produced no content; it is not an error.
func (s *ChangelogSynthesizer) Synthesize(ctx context.Context, prSummaryText string, categories []string) (string, error) {
	if err := s.validate(categories); err != nil {
		return "", err
	}

	prompts := BuildPrompts(prSummaryText, categories)

	if s.request.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.request.Timeout)
		defer cancel()
	}

	s.logger.Info("Synthesizer: submitting prompt", "request", s.request, "summary_bytes", len(prSummaryText))
	out, err := s.backend.Submit(ctx, prompts.System, prompts.User, s.request.Model, s.request.Credential)
	if err != nil {
		return "", s.classify(err)
	}
	if out == "" {
		s.logger.Warn("Synthesizer: backend returned no content", "provider", string(s.request.Provider))
	}
	return out, nil
}

func (s *ChangelogSynthesizer) validate(categories []string) error {
	if s.request.Credential == "" {
		return domainErrors.ErrAPIKeyMissing
	}
	if strings.TrimSpace(s.request.Model) == "" {
		return domainErrors.NewConfigError("model is required", nil)
	}
	if err := domain.ValidateCategories(categories); err != nil {
		return domainErrors.NewConfigError("malformed category list", err)
	}
	if s.backend.Provider() != s.request.Provider {
		return domainErrors.NewConfigError(
			fmt.Sprintf("backend %q does not match requested provider %q", s.backend.Provider(), s.request.Provider), nil)
	}
	return nil
}

// classify keeps typed failures as they are and maps the rest onto a failure kind.
func (s *ChangelogSynthesizer) classify(err error) error {
	if domainErrors.KindOf(err) != "" {
		return err
	}
	name := s.request.Provider.DisplayName()
	if domainErrors.IsTimeout(err) {
		return domainErrors.NewTimeoutError(fmt.Sprintf("%s request timed out after %s", name, s.request.Timeout), err)
	}
	return &domainErrors.AppError{
		Kind:    domainErrors.KindGeneration,
		Message: fmt.Sprintf("%s request failed", name),
		Err:     err,
	}
}
