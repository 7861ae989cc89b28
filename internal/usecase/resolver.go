// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/ai-changelog/internal/domain"
	domainErrors "github.com/naka-gawa/ai-changelog/internal/errors"
	"github.com/naka-gawa/ai-changelog/internal/gateway"
)

const (
	// releaseLookback is how many releases are needed to find the previous one.
	releaseLookback = 2
	// pullRequestPageSize bounds the closed pull request listing to a single page.
	pullRequestPageSize = 100
)

// ReleaseDeltaResolver determines which merged pull requests belong to the current release.
//
// Known limitation: only the 100 most recently *updated* closed pull requests are inspected.
// A pull request merged inside the window whose last update is older than that page is
// silently omitted.
type ReleaseDeltaResolver struct {
	fetcher gateway.Fetcher
	logger  *slog.Logger
}

// NewReleaseDeltaResolver creates a new ReleaseDeltaResolver instance.
// The fetcher already carries the repository credential.
func NewReleaseDeltaResolver(fetcher gateway.Fetcher, logger *slog.Logger) *ReleaseDeltaResolver {
	return &ReleaseDeltaResolver{
		fetcher: fetcher,
		logger:  logger,
	}
}

// ResolveMergedPRs returns the merged pull requests of the current release window.
func (r *ReleaseDeltaResolver) ResolveMergedPRs(ctx context.Context) ([]domain.PullRequestRecord, error) {
	_, records, err := r.Resolve(ctx)
	return records, err
}

// Resolve returns the release window together with its merged pull requests.
// Both hosting-API reads are independent and run concurrently; the first failure
// aborts the other and no partial result is returned.
func (r *ReleaseDeltaResolver) Resolve(ctx context.Context) (domain.ReleaseWindow, []domain.PullRequestRecord, error) {
	r.logger.Info("Resolver: fetching releases and closed pull requests...")

	var releases []domain.Release
	var pulls []domain.ClosedPullRequest

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		releases, err = r.fetcher.ListRecentReleases(egCtx, releaseLookback)
		if err != nil {
			return domainErrors.NewResolutionError("failed to list releases", err)
		}
		return nil
	})

	eg.Go(func() error {
		var err error
		pulls, err = r.fetcher.ListClosedPullRequests(egCtx, pullRequestPageSize)
		if err != nil {
			return domainErrors.NewResolutionError("failed to list closed pull requests", err)
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return domain.ReleaseWindow{}, nil, err
	}

	window := domain.WindowFromReleases(releases)
	records := FilterMerged(window, pulls)

	r.logger.Info("Resolver: release window resolved",
		"since", window.Since.Format(time.RFC3339),
		"releases", len(releases),
		"inspected", len(pulls),
		"count", len(records),
	)
	return window, records, nil
}

// FilterMerged keeps the pull requests merged strictly after the window cutoff,
// preserving input order.
func FilterMerged(window domain.ReleaseWindow, pulls []domain.ClosedPullRequest) []domain.PullRequestRecord {
	records := make([]domain.PullRequestRecord, 0, len(pulls))
	for _, pr := range pulls {
		if !window.Contains(pr.MergedAt) {
			continue
		}
		records = append(records, toRecord(pr))
	}
	return records
}

func toRecord(pr domain.ClosedPullRequest) domain.PullRequestRecord {
	rec := domain.PullRequestRecord{
		Number: pr.Number,
		Body:   pr.Body,
		Labels: NormalizeLabels(pr.Labels),
	}
	if pr.Title != nil {
		rec.Title = *pr.Title
	}
	if pr.Author != nil {
		rec.Author = *pr.Author
	}
	if pr.MergedAt != nil {
		rec.MergedAt = pr.MergedAt.UTC().Format(time.RFC3339)
	}
	return rec
}

// NormalizeLabels flattens labels into plain names. A label without a name becomes "".
func NormalizeLabels(labels []domain.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.String()
	}
	return out
}
