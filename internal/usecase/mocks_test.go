package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/ai-changelog/internal/domain"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) ListRecentReleases(ctx context.Context, n int) ([]domain.Release, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Release), args.Error(1)
}

func (m *mockFetcher) ListClosedPullRequests(ctx context.Context, perPage int) ([]domain.ClosedPullRequest, error) {
	args := m.Called(ctx, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClosedPullRequest), args.Error(1)
}

// mockBackend is a mock implementation of the backend.Backend interface.
type mockBackend struct {
	mock.Mock
	provider domain.Provider
}

func (m *mockBackend) Submit(ctx context.Context, system, user, model string, credential domain.Secret) (string, error) {
	args := m.Called(ctx, system, user, model, credential)
	return args.String(0), args.Error(1)
}

func (m *mockBackend) Provider() domain.Provider {
	if m.provider == "" {
		return domain.ProviderOpenAI
	}
	return m.provider
}

// mockUpdater is a mock implementation of the gateway.ReleaseUpdater interface.
type mockUpdater struct {
	mock.Mock
}

func (m *mockUpdater) UpdateReleaseBody(ctx context.Context, releaseID int64, body string) error {
	args := m.Called(ctx, releaseID, body)
	return args.Error(0)
}

func ts(t *testing.T, s string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return &parsed
}

func str(s string) *string { return &s }

func plainLabels(names ...string) []domain.Label {
	labels := make([]domain.Label, len(names))
	for i := range names {
		labels[i] = domain.Label{Name: &names[i]}
	}
	return labels
}

// releasesWithPrevious returns a newest-first release list whose previous release
// was published at previous.
func releasesWithPrevious(t *testing.T, previous string) []domain.Release {
	return []domain.Release{
		{ID: 2, TagName: "v1.1.0", PublishedAt: ts(t, "2024-03-01T00:00:00Z")},
		{ID: 1, TagName: "v1.0.0", PublishedAt: ts(t, previous)},
	}
}
