package usecase

import (
	"context"
	"log/slog"

	"github.com/naka-gawa/ai-changelog/internal/domain"
	domainErrors "github.com/naka-gawa/ai-changelog/internal/errors"
	"github.com/naka-gawa/ai-changelog/internal/gateway"
)

// NoChangesMessage is the changelog emitted when the window holds no merged pull requests.
const NoChangesMessage = "No changes."

// Resolver is what the orchestrator needs from the release-delta resolver.
type Resolver interface {
	Resolve(ctx context.Context) (domain.ReleaseWindow, []domain.PullRequestRecord, error)
}

// Synthesizer is what the orchestrator needs from the changelog synthesizer.
type Synthesizer interface {
	Synthesize(ctx context.Context, prSummaryText string, categories []string) (string, error)
}

// RunOptions controls the optional publishing step.
type RunOptions struct {
	// Publish writes the changelog into the body of ReleaseID. It is ignored
	// when ReleaseID is zero (no release context).
	Publish   bool
	ReleaseID int64
}

// Result is the outcome of a successful run.
type Result struct {
	Markdown     string
	NoChanges    bool
	Published    bool
	PullRequests []domain.PullRequestRecord
	Stats        domain.WindowStats
}

// Changelog is the use case for generating a changelog.
// It orchestrates resolution, synthesis and publishing, in that order.
type Changelog struct {
	resolver    Resolver
	synthesizer Synthesizer
	updater     gateway.ReleaseUpdater
	categories  []string
	logger      *slog.Logger
}

// NewChangelog creates a new Changelog instance. updater may be nil when publishing
// is never requested.
func NewChangelog(resolver Resolver, synthesizer Synthesizer, updater gateway.ReleaseUpdater, categories []string, logger *slog.Logger) *Changelog {
	return &Changelog{
		resolver:    resolver,
		synthesizer: synthesizer,
		updater:     updater,
		categories:  categories,
		logger:      logger,
	}
}

// Run performs the main business logic. Any failure aborts the run; no partial
// changelog is ever returned.
func (c *Changelog) Run(ctx context.Context, opts RunOptions) (Result, error) {
	c.logger.Info("Usecase: fetching merged PRs since last release...")
	window, records, err := c.resolver.Resolve(ctx)
	if err != nil {
		return Result{}, err
	}

	if len(records) == 0 {
		c.logger.Info("Usecase: no merged PRs found since last release.")
		return Result{Markdown: NoChangesMessage, NoChanges: true, PullRequests: records}, nil
	}

	windowStats := AggregateWindowStats(window, records)
	c.logger.Info("Usecase: generating changelog...",
		"prs", windowStats.Count,
		"authors", len(windowStats.Authors),
		"median_hours_after_cutoff", windowStats.MedianHoursAfterCutoff,
		"p90_hours_after_cutoff", windowStats.P90HoursAfterCutoff,
	)

	markdown, err := c.synthesizer.Synthesize(ctx, SummarizePullRequests(records), c.categories)
	if err != nil {
		return Result{}, err
	}
	c.logger.Info("Usecase: changelog generated successfully.")

	result := Result{
		Markdown:     markdown,
		PullRequests: records,
		Stats:        windowStats,
	}

	if opts.Publish && opts.ReleaseID != 0 {
		if c.updater == nil {
			return Result{}, domainErrors.NewConfigError("publishing requested but no release updater is configured", nil)
		}
		c.logger.Info("Usecase: updating release with changelog...", "release_id", opts.ReleaseID)
		if err := c.updater.UpdateReleaseBody(ctx, opts.ReleaseID, markdown); err != nil {
			return Result{}, domainErrors.NewResolutionError("failed to publish changelog", err)
		}
		result.Published = true
		c.logger.Info("Usecase: release updated.")
	}

	return result, nil
}
