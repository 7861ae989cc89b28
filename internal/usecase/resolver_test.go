package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/ai-changelog/internal/domain"
	domainErrors "github.com/naka-gawa/ai-changelog/internal/errors"
	"github.com/naka-gawa/ai-changelog/internal/logger"
)

func TestReleaseDeltaResolver_Resolve(t *testing.T) {
	testCases := []struct {
		name            string
		releases        []domain.Release
		pulls           []domain.ClosedPullRequest
		expectedSince   time.Time
		expectedNumbers []int
	}{
		{
			name:     "previous release bounds the window",
			releases: releasesWithPrevious(t, "2024-01-01T00:00:00Z"),
			pulls: []domain.ClosedPullRequest{
				{Number: 1, Title: str("Too early"), MergedAt: ts(t, "2023-12-31T23:59:59Z")},
				{Number: 2, Title: str("In window"), MergedAt: ts(t, "2024-01-02T00:00:00Z")},
				{Number: 3, Title: str("Closed without merge"), MergedAt: nil},
			},
			expectedSince:   *ts(t, "2024-01-01T00:00:00Z"),
			expectedNumbers: []int{2},
		},
		{
			name:     "merge exactly at the cutoff is excluded",
			releases: releasesWithPrevious(t, "2024-01-01T00:00:00Z"),
			pulls: []domain.ClosedPullRequest{
				{Number: 4, MergedAt: ts(t, "2024-01-01T00:00:00Z")},
				{Number: 5, MergedAt: ts(t, "2024-01-01T00:00:01Z")},
			},
			expectedSince:   *ts(t, "2024-01-01T00:00:00Z"),
			expectedNumbers: []int{5},
		},
		{
			name:     "single release falls back to the epoch",
			releases: []domain.Release{{ID: 1, PublishedAt: ts(t, "2024-01-01T00:00:00Z")}},
			pulls: []domain.ClosedPullRequest{
				{Number: 6, MergedAt: ts(t, "1971-01-01T00:00:00Z")},
				{Number: 7, MergedAt: ts(t, "2024-06-01T00:00:00Z")},
			},
			expectedSince:   time.Unix(0, 0).UTC(),
			expectedNumbers: []int{6, 7},
		},
		{
			name:     "no releases falls back to the epoch",
			releases: []domain.Release{},
			pulls: []domain.ClosedPullRequest{
				{Number: 8, MergedAt: ts(t, "2020-01-01T00:00:00Z")},
			},
			expectedSince:   time.Unix(0, 0).UTC(),
			expectedNumbers: []int{8},
		},
		{
			name: "previous release without publish time falls back to the epoch",
			releases: []domain.Release{
				{ID: 2, PublishedAt: ts(t, "2024-03-01T00:00:00Z")},
				{ID: 1, PublishedAt: nil},
			},
			pulls: []domain.ClosedPullRequest{
				{Number: 9, MergedAt: ts(t, "2001-01-01T00:00:00Z")},
			},
			expectedSince:   time.Unix(0, 0).UTC(),
			expectedNumbers: []int{9},
		},
		{
			name:            "nothing merged yields an empty result",
			releases:        releasesWithPrevious(t, "2024-01-01T00:00:00Z"),
			pulls:           []domain.ClosedPullRequest{{Number: 10}},
			expectedSince:   *ts(t, "2024-01-01T00:00:00Z"),
			expectedNumbers: []int{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("ListRecentReleases", mock.Anything, 2).Return(tc.releases, nil)
			fetcher.On("ListClosedPullRequests", mock.Anything, 100).Return(tc.pulls, nil)

			resolver := NewReleaseDeltaResolver(fetcher, logger.Discard())

			window, records, err := resolver.Resolve(context.Background())

			require.NoError(t, err)
			assert.True(t, tc.expectedSince.Equal(window.Since), "since = %s", window.Since)
			numbers := make([]int, 0, len(records))
			for _, r := range records {
				numbers = append(numbers, r.Number)
			}
			assert.Equal(t, tc.expectedNumbers, numbers)
			fetcher.AssertExpectations(t)
		})
	}
}

func TestReleaseDeltaResolver_MapsRecords(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("ListRecentReleases", mock.Anything, 2).Return([]domain.Release{}, nil)
	fetcher.On("ListClosedPullRequests", mock.Anything, 100).Return([]domain.ClosedPullRequest{
		{
			Number:   42,
			Title:    nil,
			Body:     nil,
			Author:   nil,
			Labels:   []domain.Label{{Name: str("feature")}, {Name: nil}, {Name: str("")}},
			MergedAt: ts(t, "2024-01-02T00:00:00Z"),
		},
		{
			Number:   43,
			Title:    str("Fix login"),
			Body:     str("Fixes #40"),
			Author:   str("alice"),
			MergedAt: ts(t, "2024-01-03T09:30:00+02:00"),
		},
	}, nil)

	records, err := NewReleaseDeltaResolver(fetcher, logger.Discard()).ResolveMergedPRs(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, domain.PullRequestRecord{
		Number:   42,
		Title:    "",
		Body:     nil,
		Labels:   []string{"feature", "", ""},
		Author:   "",
		MergedAt: "2024-01-02T00:00:00Z",
	}, records[0])

	assert.Equal(t, "Fix login", records[1].Title)
	require.NotNil(t, records[1].Body)
	assert.Equal(t, "Fixes #40", *records[1].Body)
	assert.Equal(t, "alice", records[1].Author)
	assert.Equal(t, []string{}, records[1].Labels)
	assert.Equal(t, "2024-01-03T07:30:00Z", records[1].MergedAt)
}

func TestReleaseDeltaResolver_Failures(t *testing.T) {
	testCases := []struct {
		name       string
		releaseErr error
		pullsErr   error
	}{
		{name: "releases fail", releaseErr: errors.New("401 Bad credentials")},
		{name: "pull requests fail", pullsErr: errors.New("connection reset")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			if tc.releaseErr != nil {
				fetcher.On("ListRecentReleases", mock.Anything, 2).Return(nil, tc.releaseErr)
			} else {
				fetcher.On("ListRecentReleases", mock.Anything, 2).Return(releasesWithPrevious(t, "2024-01-01T00:00:00Z"), nil)
			}
			if tc.pullsErr != nil {
				fetcher.On("ListClosedPullRequests", mock.Anything, 100).Return(nil, tc.pullsErr)
			} else {
				fetcher.On("ListClosedPullRequests", mock.Anything, 100).Return([]domain.ClosedPullRequest{
					{Number: 1, MergedAt: ts(t, "2024-01-02T00:00:00Z")},
				}, nil)
			}

			records, err := NewReleaseDeltaResolver(fetcher, logger.Discard()).ResolveMergedPRs(context.Background())

			require.Error(t, err)
			assert.Nil(t, records)
			assert.True(t, domainErrors.IsKind(err, domainErrors.KindResolution))
		})
	}
}

// TestReleaseDeltaResolver_SinglePageBoundary documents a known limitation: only the
// first page of closed pull requests (sorted by last update) is inspected, so a pull
// request merged inside the window but updated less recently than that page is missed.
func TestReleaseDeltaResolver_SinglePageBoundary(t *testing.T) {
	page := make([]domain.ClosedPullRequest, 0, 100)
	for i := 0; i < 100; i++ {
		// Recently updated, but merged before the previous release.
		page = append(page, domain.ClosedPullRequest{Number: 1000 + i, MergedAt: ts(t, "2023-06-01T00:00:00Z")})
	}
	// PR #7 was merged inside the window but sits on the second page; the fetcher is
	// never asked for it.

	fetcher := new(mockFetcher)
	fetcher.On("ListRecentReleases", mock.Anything, 2).Return(releasesWithPrevious(t, "2024-01-01T00:00:00Z"), nil)
	fetcher.On("ListClosedPullRequests", mock.Anything, 100).Return(page, nil).Once()

	records, err := NewReleaseDeltaResolver(fetcher, logger.Discard()).ResolveMergedPRs(context.Background())

	require.NoError(t, err)
	assert.Empty(t, records)
	fetcher.AssertNumberOfCalls(t, "ListClosedPullRequests", 1)
	fetcher.AssertExpectations(t)
}

func TestNormalizeLabels_Idempotent(t *testing.T) {
	inputs := [][]string{
		{},
		{"bug"},
		{"feature", "", "ui"},
		{"dup", "dup"},
	}
	for _, in := range inputs {
		once := NormalizeLabels(plainLabels(in...))
		twice := NormalizeLabels(plainLabels(once...))
		assert.Equal(t, in, once)
		assert.Equal(t, once, twice)
	}
}
