package backend

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/naka-gawa/ai-changelog/internal/domain"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicMaxTokens      = 4096
)

// noRequestTimeout replaces the SDK's own non-streaming deadline so the caller's
// context decides when a request expires.
const noRequestTimeout = time.Duration(math.MaxInt64)

// Anthropic talks to a messages endpoint. The system prompt travels as a top-level
// field and the user prompt is the only conversational turn.
type Anthropic struct {
	sdk    anthropic.Client
	client *http.Client
	opts   Options
}

var _ Backend = (*Anthropic)(nil)

func NewAnthropic(opts Options) *Anthropic {
	client := opts.httpClient()
	return &Anthropic{
		sdk: anthropic.NewClient(
			option.WithBaseURL(strings.TrimSuffix(opts.baseURL(anthropicDefaultBaseURL), "/")),
			option.WithHTTPClient(client),
			option.WithMaxRetries(0),
			option.WithRequestTimeout(noRequestTimeout),
			option.WithMiddleware(statusMiddleware(domain.ProviderAnthropic)),
		),
		client: client,
		opts:   opts,
	}
}

func (a *Anthropic) Provider() domain.Provider { return domain.ProviderAnthropic }

func (a *Anthropic) Submit(ctx context.Context, system, user, model string, credential domain.Secret) (string, error) {
	msg, err := a.sdk.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: anthropicMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(user))},
	}, option.WithAPIKey(credential.Reveal()))
	if err != nil {
		return "", translateError(a.Provider(), err)
	}
	a.opts.logger().Debug("anthropic response received", "blocks", len(msg.Content))

	if len(msg.Content) == 0 {
		return "", nil
	}
	return msg.Content[0].Text, nil
}
