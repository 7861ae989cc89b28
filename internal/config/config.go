// Package config assembles the settings of a changelog run from defaults,
// an optional YAML file, environment variables and command-line flags using koanf.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/naka-gawa/ai-changelog/internal/domain"
	domainErrors "github.com/naka-gawa/ai-changelog/internal/errors"
	"github.com/naka-gawa/ai-changelog/internal/gateway"
)

// Keys shared by every source.
const (
	KeyProvider         = "provider"
	KeyModel            = "model"
	KeyAPIKey           = "api_key"
	KeyCategories       = "categories"
	KeyUpdateRelease    = "update_release"
	KeyTimeout          = "timeout"
	KeyAPI              = "api"
	KeyRepository       = "repository"
	KeyGitHubToken      = "github_token"
	KeyGitHubAPIURL     = "github_api_url"
	KeyGitHubGraphQLURL = "github_graphql_url"
	KeyOpenAIBaseURL    = "openai_base_url"
	KeyAnthropicBaseURL = "anthropic_base_url"
)

const (
	DefaultProvider   = "openai"
	DefaultModel      = "gpt-4o-mini"
	DefaultCategories = "Features, Bug Fixes, Improvements, Breaking Changes"
	DefaultTimeout    = "60s"

	actionInputPrefix = "INPUT_"
	envPrefix         = "AI_CHANGELOG_"
)

var defaults = map[string]interface{}{
	KeyProvider:      DefaultProvider,
	KeyModel:         DefaultModel,
	KeyCategories:    DefaultCategories,
	KeyUpdateRelease: false,
	KeyTimeout:       DefaultTimeout,
	KeyAPI:           string(gateway.APIREST),
}

// Unprefixed variables provided by the Actions runner or commonly exported by users.
var wellKnownEnv = map[string]string{
	"GITHUB_TOKEN":       KeyGitHubToken,
	"GITHUB_REPOSITORY":  KeyRepository,
	"GITHUB_API_URL":     KeyGitHubAPIURL,
	"GITHUB_GRAPHQL_URL": KeyGitHubGraphQLURL,
	"OPENAI_BASE_URL":    KeyOpenAIBaseURL,
	"ANTHROPIC_BASE_URL": KeyAnthropicBaseURL,
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigPath is an optional YAML file. Empty skips it.
	ConfigPath string
	// Overrides holds values from explicitly set command-line flags, keyed like the YAML file.
	Overrides map[string]string
}

// Settings is the fully validated configuration of one run.
type Settings struct {
	Request     domain.GenerationRequest
	GitHubToken domain.Secret
	Owner       string
	Repo        string
	API         gateway.API
	Publish     bool

	GitHubAPIURL     string
	GitHubGraphQLURL string
	OpenAIBaseURL    string
	AnthropicBaseURL string
}

// BackendBaseURL returns the base URL override for the configured provider, if any.
func (s *Settings) BackendBaseURL() string {
	switch s.Request.Provider {
	case domain.ProviderAnthropic:
		return s.AnthropicBaseURL
	case domain.ProviderOpenAI:
		return s.OpenAIBaseURL
	default:
		return ""
	}
}

// GatewayConfig describes the repository for the GitHub gateway.
func (s *Settings) GatewayConfig() gateway.Config {
	return gateway.Config{
		Owner:      s.Owner,
		Repo:       s.Repo,
		API:        s.API,
		BaseURL:    s.GitHubAPIURL,
		GraphQLURL: s.GitHubGraphQLURL,
	}
}

// Load merges defaults, the YAML file, environment and flag overrides, in increasing
// order of precedence, and validates the result.
func Load(opts LoadOptions) (*Settings, error) {
	k := koanf.New(".")

	loadDefaults(k)

	if opts.ConfigPath != "" {
		if err := k.Load(file.Provider(opts.ConfigPath), yaml.Parser()); err != nil {
			return nil, domainErrors.NewConfigError(fmt.Sprintf("failed to load config %s", opts.ConfigPath), err)
		}
	}

	if err := loadEnvironment(k); err != nil {
		return nil, err
	}

	for key, value := range opts.Overrides {
		if err := k.Set(key, value); err != nil {
			return nil, domainErrors.NewConfigError(fmt.Sprintf("invalid override for %s", key), err)
		}
	}

	return finalize(k)
}

func loadDefaults(k *koanf.Koanf) {
	for key, value := range defaults {
		k.Set(key, value)
	}
}

// loadEnvironment reads AI_CHANGELOG_* then INPUT_* then the well-known unprefixed variables.
// Empty values are skipped so an unset action input never masks a file or default value.
func loadEnvironment(k *koanf.Koanf) error {
	providers := []*env.Env{
		env.ProviderWithValue(envPrefix, ".", prefixedTransform(envPrefix)),
		env.ProviderWithValue(actionInputPrefix, ".", prefixedTransform(actionInputPrefix)),
		env.ProviderWithValue("", ".", wellKnownTransform),
	}
	for _, p := range providers {
		if err := k.Load(p, nil); err != nil {
			return domainErrors.NewConfigError("failed to load environment config", err)
		}
	}
	return nil
}

// prefixedTransform converts PREFIX_API-KEY to api_key.
func prefixedTransform(prefix string) func(string, string) (string, interface{}) {
	return func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		name := strings.ToLower(strings.TrimPrefix(key, prefix))
		return strings.ReplaceAll(name, "-", "_"), value
	}
}

func wellKnownTransform(key, value string) (string, interface{}) {
	mapped, ok := wellKnownEnv[key]
	if !ok || value == "" {
		return "", nil
	}
	return mapped, value
}

func finalize(k *koanf.Koanf) (*Settings, error) {
	credential := strings.TrimSpace(k.String(KeyAPIKey))
	if credential == "" {
		return nil, domainErrors.ErrAPIKeyMissing
	}
	token := strings.TrimSpace(k.String(KeyGitHubToken))
	if token == "" {
		return nil, domainErrors.ErrTokenMissing
	}
	repository := strings.TrimSpace(k.String(KeyRepository))
	if repository == "" {
		return nil, domainErrors.ErrRepositoryMissing
	}
	owner, repo, err := gateway.SplitRepository(repository)
	if err != nil {
		return nil, domainErrors.NewConfigError("invalid repository", err)
	}

	provider, err := domain.ParseProvider(k.String(KeyProvider))
	if err != nil {
		return nil, domainErrors.NewConfigError("invalid provider", err)
	}
	model := strings.TrimSpace(k.String(KeyModel))
	if model == "" {
		return nil, domainErrors.NewConfigError("model must not be empty", nil)
	}
	categories, err := parseCategories(k.Get(KeyCategories))
	if err != nil {
		return nil, domainErrors.NewConfigError("invalid categories", err)
	}
	timeout, err := parseTimeout(k.String(KeyTimeout))
	if err != nil {
		return nil, domainErrors.NewConfigError("invalid timeout", err)
	}
	api, err := gateway.ParseAPI(k.String(KeyAPI))
	if err != nil {
		return nil, domainErrors.NewConfigError("invalid api", err)
	}
	publish, err := parseBool(k.String(KeyUpdateRelease))
	if err != nil {
		return nil, domainErrors.NewConfigError("invalid update_release", err)
	}

	return &Settings{
		Request: domain.GenerationRequest{
			Provider:   provider,
			Model:      model,
			Credential: domain.Secret(credential),
			Categories: categories,
			Timeout:    timeout,
		},
		GitHubToken:      domain.Secret(token),
		Owner:            owner,
		Repo:             repo,
		API:              api,
		Publish:          publish,
		GitHubAPIURL:     k.String(KeyGitHubAPIURL),
		GitHubGraphQLURL: k.String(KeyGitHubGraphQLURL),
		OpenAIBaseURL:    k.String(KeyOpenAIBaseURL),
		AnthropicBaseURL: k.String(KeyAnthropicBaseURL),
	}, nil
}

// parseCategories accepts a comma-separated string or, from YAML, a list.
func parseCategories(v interface{}) ([]string, error) {
	switch c := v.(type) {
	case string:
		return domain.ParseCategories(c)
	case []interface{}:
		out := make([]string, 0, len(c))
		for _, item := range c {
			out = append(out, strings.TrimSpace(fmt.Sprint(item)))
		}
		if err := domain.ValidateCategories(out); err != nil {
			return nil, err
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("category list is empty")
	default:
		return nil, fmt.Errorf("unsupported categories value %v", v)
	}
}

// parseTimeout accepts a Go duration ("90s", "2m") or a bare number of seconds.
// Zero disables the deadline.
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("timeout must not be negative: %d", secs)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout must not be negative: %s", s)
	}
	return d, nil
}

func parseBool(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
