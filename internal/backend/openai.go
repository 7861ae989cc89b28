package backend

import (
	"context"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/naka-gawa/ai-changelog/internal/domain"
)

const (
	openAIDefaultBaseURL = "https://api.openai.com"
	openAITemperature    = 0.3
)

// OpenAI talks to a chat-completions endpoint.
type OpenAI struct {
	sdk    openai.Client
	client *http.Client
	opts   Options
}

var _ Backend = (*OpenAI)(nil)

func NewOpenAI(opts Options) *OpenAI {
	client := opts.httpClient()
	return &OpenAI{
		sdk: openai.NewClient(
			option.WithBaseURL(openAIBaseURL(opts.baseURL(openAIDefaultBaseURL))),
			option.WithHTTPClient(client),
			option.WithMaxRetries(0),
			option.WithMiddleware(statusMiddleware(domain.ProviderOpenAI)),
		),
		client: client,
		opts:   opts,
	}
}

// openAIBaseURL accepts an endpoint root with or without the /v1 segment.
func openAIBaseURL(root string) string {
	root = strings.TrimSuffix(root, "/")
	if strings.HasSuffix(root, "/v1") {
		return root
	}
	return root + "/v1"
}

func (o *OpenAI) Provider() domain.Provider { return domain.ProviderOpenAI }

// Submit sends a single-turn, non-streaming chat completion.
func (o *OpenAI) Submit(ctx context.Context, system, user, model string, credential domain.Secret) (string, error) {
	completion, err := o.sdk.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(openAITemperature),
	}, option.WithAPIKey(credential.Reveal()))
	if err != nil {
		return "", translateError(o.Provider(), err)
	}
	o.opts.logger().Debug("openai response received", "choices", len(completion.Choices))

	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}
