// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/ai-changelog/internal/domain"
)

// API selects which GitHub API serves the read operations.
type API string

const (
	APIREST    API = "rest"
	APIGraphQL API = "graphql"
)

// ParseAPI validates a user-supplied API name. Empty means REST.
func ParseAPI(s string) (API, error) {
	switch API(strings.ToLower(strings.TrimSpace(s))) {
	case "", APIREST:
		return APIREST, nil
	case APIGraphQL:
		return APIGraphQL, nil
	default:
		return "", fmt.Errorf("unsupported api %q (expected rest or graphql)", s)
	}
}

// Fetcher defines the read operations the release-delta resolver needs.
type Fetcher interface {
	// ListRecentReleases returns up to n releases, newest first.
	ListRecentReleases(ctx context.Context, n int) ([]domain.Release, error)
	// ListClosedPullRequests returns one page of closed pull requests,
	// most recently updated first.
	ListClosedPullRequests(ctx context.Context, perPage int) ([]domain.ClosedPullRequest, error)
}

// ReleaseUpdater replaces the body of an existing release.
type ReleaseUpdater interface {
	UpdateReleaseBody(ctx context.Context, releaseID int64, body string) error
}

// Config describes the repository and endpoints a GitHubGateway talks to.
type Config struct {
	Owner string
	Repo  string
	API   API
	// BaseURL overrides the REST endpoint (GitHub Enterprise). Empty means api.github.com.
	BaseURL string
	// GraphQLURL overrides the GraphQL endpoint. Empty means api.github.com/graphql.
	GraphQLURL string
}

// GitHubGateway is the concrete implementation of Fetcher and ReleaseUpdater.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	owner         string
	repo          string
	api           API
	logger        *slog.Logger
}

// recentReleasesQuery fetches the newest releases of a repository.
type recentReleasesQuery struct {
	Repository struct {
		Releases struct {
			Nodes []struct {
				DatabaseID  int64
				TagName     string
				PublishedAt *githubv4.DateTime
			}
		} `graphql:"releases(first: $count, orderBy: {field: CREATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// closedPullRequestsQuery mirrors the REST "closed, sort=updated, desc" listing.
// GraphQL splits "closed" into CLOSED and MERGED, so both states are requested.
type closedPullRequestsQuery struct {
	Repository struct {
		PullRequests struct {
			Nodes []struct {
				Number   int
				Title    string
				Body     string
				MergedAt *githubv4.DateTime
				Author   struct {
					Login string
				}
				Labels struct {
					Nodes []struct {
						Name string
					}
				} `graphql:"labels(first: 100)"`
			}
		} `graphql:"pullRequests(states: [CLOSED, MERGED], first: $perPage, orderBy: {field: UPDATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, cfg Config, logger *slog.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}

	restClient := github.NewClient(httpClient)
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", cfg.BaseURL, err)
		}
		restClient.BaseURL = baseURL
	}

	graphqlClient := githubv4.NewClient(httpClient)
	if cfg.GraphQLURL != "" {
		graphqlClient = githubv4.NewEnterpriseClient(cfg.GraphQLURL, httpClient)
	}

	return newGateway(restClient, graphqlClient, cfg, logger), nil
}

func newGateway(restClient *github.Client, graphqlClient *githubv4.Client, cfg Config, logger *slog.Logger) *GitHubGateway {
	api := cfg.API
	if api == "" {
		api = APIREST
	}
	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		owner:         cfg.Owner,
		repo:          cfg.Repo,
		api:           api,
		logger:        logger.With("repo", cfg.Owner+"/"+cfg.Repo),
	}
}

// SplitRepository splits "owner/name" into its two parts.
func SplitRepository(fullName string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(fullName), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("repository must look like owner/name, got %q", fullName)
	}
	return owner, repo, nil
}

func (g *GitHubGateway) ListRecentReleases(ctx context.Context, n int) ([]domain.Release, error) {
	g.logger.Debug("fetching recent releases", "api", string(g.api), "count", n)
	if g.api == APIGraphQL {
		return g.listRecentReleasesGraphQL(ctx, n)
	}

	releases, _, err := g.restClient.Repositories.ListReleases(ctx, g.owner, g.repo, &github.ListOptions{PerPage: n})
	if err != nil {
		return nil, fmt.Errorf("failed to list releases with REST API: %w", err)
	}
	out := make([]domain.Release, 0, len(releases))
	for _, r := range releases {
		rel := domain.Release{ID: r.GetID(), TagName: r.GetTagName()}
		if r.PublishedAt != nil {
			t := r.PublishedAt.Time
			rel.PublishedAt = &t
		}
		out = append(out, rel)
	}
	// The API may ignore per_page on some proxies; never hand back more than asked for.
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (g *GitHubGateway) listRecentReleasesGraphQL(ctx context.Context, n int) ([]domain.Release, error) {
	var q recentReleasesQuery
	variables := map[string]interface{}{
		"owner": githubv4.String(g.owner),
		"name":  githubv4.String(g.repo),
		"count": githubv4.Int(n),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for releases: %w", err)
	}
	out := make([]domain.Release, 0, len(q.Repository.Releases.Nodes))
	for _, node := range q.Repository.Releases.Nodes {
		rel := domain.Release{ID: node.DatabaseID, TagName: node.TagName}
		if node.PublishedAt != nil {
			t := node.PublishedAt.Time
			rel.PublishedAt = &t
		}
		out = append(out, rel)
	}
	return out, nil
}

func (g *GitHubGateway) ListClosedPullRequests(ctx context.Context, perPage int) ([]domain.ClosedPullRequest, error) {
	g.logger.Debug("fetching closed pull requests", "api", string(g.api), "per_page", perPage)
	if g.api == APIGraphQL {
		return g.listClosedPullRequestsGraphQL(ctx, perPage)
	}

	opts := &github.PullRequestListOptions{
		State:       "closed",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	pulls, _, err := g.restClient.PullRequests.List(ctx, g.owner, g.repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests with REST API: %w", err)
	}

	out := make([]domain.ClosedPullRequest, 0, len(pulls))
	for _, pr := range pulls {
		cpr := domain.ClosedPullRequest{
			Number: pr.GetNumber(),
			Title:  pr.Title,
			Body:   pr.Body,
			Labels: make([]domain.Label, 0, len(pr.Labels)),
		}
		if pr.User != nil {
			cpr.Author = pr.User.Login
		}
		if pr.MergedAt != nil {
			t := pr.MergedAt.Time
			cpr.MergedAt = &t
		}
		for _, l := range pr.Labels {
			cpr.Labels = append(cpr.Labels, domain.Label{Name: l.Name})
		}
		out = append(out, cpr)
	}
	return out, nil
}

func (g *GitHubGateway) listClosedPullRequestsGraphQL(ctx context.Context, perPage int) ([]domain.ClosedPullRequest, error) {
	var q closedPullRequestsQuery
	variables := map[string]interface{}{
		"owner":   githubv4.String(g.owner),
		"name":    githubv4.String(g.repo),
		"perPage": githubv4.Int(perPage),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for pull requests: %w", err)
	}

	out := make([]domain.ClosedPullRequest, 0, len(q.Repository.PullRequests.Nodes))
	for _, node := range q.Repository.PullRequests.Nodes {
		title := node.Title
		cpr := domain.ClosedPullRequest{
			Number: node.Number,
			Title:  &title,
			Labels: make([]domain.Label, 0, len(node.Labels.Nodes)),
		}
		// GraphQL reports a missing description as "", REST as null.
		if node.Body != "" {
			body := node.Body
			cpr.Body = &body
		}
		if node.Author.Login != "" {
			login := node.Author.Login
			cpr.Author = &login
		}
		if node.MergedAt != nil {
			t := node.MergedAt.Time
			cpr.MergedAt = &t
		}
		for _, l := range node.Labels.Nodes {
			name := l.Name
			cpr.Labels = append(cpr.Labels, domain.Label{Name: &name})
		}
		out = append(out, cpr)
	}
	return out, nil
}

// UpdateReleaseBody replaces the body of release releaseID. Writes always use REST.
func (g *GitHubGateway) UpdateReleaseBody(ctx context.Context, releaseID int64, body string) error {
	g.logger.Debug("updating release body", "release_id", releaseID, "size", len(body))
	_, _, err := g.restClient.Repositories.EditRelease(ctx, g.owner, g.repo, releaseID, &github.RepositoryRelease{
		Body: github.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to update release %d: %w", releaseID, err)
	}
	return nil
}
