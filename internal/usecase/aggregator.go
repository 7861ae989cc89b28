package usecase

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/ai-changelog/internal/domain"
)

// AggregateWindowStats summarizes the pull requests of a release window:
// who contributed, how labels are distributed and how merges spread after the cutoff.
func AggregateWindowStats(window domain.ReleaseWindow, records []domain.PullRequestRecord) domain.WindowStats {
	result := domain.WindowStats{
		Count:       len(records),
		Authors:     []string{},
		LabelCounts: make(map[string]int),
	}

	authors := make(map[string]struct{})
	hours := make(stats.Float64Data, 0, len(records))

	for _, pr := range records {
		if pr.Author != "" {
			authors[pr.Author] = struct{}{}
		}
		for _, l := range pr.Labels {
			if l != "" {
				result.LabelCounts[l]++
			}
		}
		mergedAt, err := time.Parse(time.RFC3339, pr.MergedAt)
		if err != nil {
			continue
		}
		hours = append(hours, mergedAt.Sub(window.Since).Hours())
	}

	for a := range authors {
		result.Authors = append(result.Authors, a)
	}
	sort.Strings(result.Authors)

	// Both calls only fail on empty input, in which case the zero value stands.
	if median, err := stats.Median(hours); err == nil {
		result.MedianHoursAfterCutoff = median
	}
	if p90, err := stats.Percentile(hours, 90); err == nil {
		result.P90HoursAfterCutoff = p90
	}
	return result
}
