package usecase

import (
	"fmt"
	"strings"

	"github.com/naka-gawa/ai-changelog/internal/domain"
)

// SummarizePullRequests renders one line per pull request:
//
//	- PR #12: Add dark mode (by @alice) [feature, ui]
//
// The label suffix is omitted when a pull request has no labels.
func SummarizePullRequests(records []domain.PullRequestRecord) string {
	lines := make([]string, 0, len(records))
	for _, pr := range records {
		line := fmt.Sprintf("- PR #%d: %s (by @%s)", pr.Number, pr.Title, pr.Author)
		if len(pr.Labels) > 0 {
			line += " [" + strings.Join(pr.Labels, ", ") + "]"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
