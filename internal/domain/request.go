package domain

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Provider identifies a text-generation backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Providers lists every supported backend in a stable order.
func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderAnthropic}
}

// ParseProvider maps user input onto a Provider. Matching ignores case and surrounding space.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Providers() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unsupported provider %q (expected one of: openai, anthropic)", s)
}

// DisplayName is the provider name as it appears in error messages.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderAnthropic:
		return "Anthropic"
	default:
		return string(p)
	}
}

// Secret is an opaque credential. It formats and logs as a redacted placeholder.
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// Reveal returns the raw credential for use on the wire.
func (s Secret) Reveal() string {
	return string(s)
}

// GenerationRequest is the process-wide generation configuration. It is assembled once
// and passed by value; nothing mutates it after validation.
type GenerationRequest struct {
	Provider   Provider
	Model      string
	Credential Secret
	Categories []string
	Timeout    time.Duration
}

// LogValue keeps the credential out of structured logs.
func (r GenerationRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", string(r.Provider)),
		slog.String("model", r.Model),
		slog.String("categories", strings.Join(r.Categories, ", ")),
		slog.Duration("timeout", r.Timeout),
	)
}

// ParseCategories splits a comma-separated list and trims each entry.
// An empty list or a blank entry is rejected.
func ParseCategories(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("category list is empty")
	}
	parts := strings.Split(raw, ",")
	categories := make([]string, 0, len(parts))
	for i, p := range parts {
		c := strings.TrimSpace(p)
		if c == "" {
			return nil, fmt.Errorf("category %d in %q is blank", i+1, raw)
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// ValidateCategories checks an already split category list.
func ValidateCategories(categories []string) error {
	if len(categories) == 0 {
		return fmt.Errorf("category list is empty")
	}
	for i, c := range categories {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("category %d is blank", i+1)
		}
	}
	return nil
}
