package domain

import "time"

// Release is the hosting-API view of a published (or draft) release.
type Release struct {
	ID          int64
	TagName     string
	PublishedAt *time.Time
}

// ReleaseWindow is the interval of pull requests that are "new" for the current release.
// Only the lower bound matters: everything merged strictly after Since is in the window.
type ReleaseWindow struct {
	Since time.Time
}

// EpochWindow covers the whole repository history.
func EpochWindow() ReleaseWindow {
	return ReleaseWindow{Since: time.Unix(0, 0).UTC()}
}

// WindowFromReleases derives the window from releases ordered newest first.
// The cutoff is the publish time of the release preceding the most recent one.
func WindowFromReleases(releases []Release) ReleaseWindow {
	if len(releases) < 2 || releases[1].PublishedAt == nil {
		return EpochWindow()
	}
	return ReleaseWindow{Since: releases[1].PublishedAt.UTC()}
}

// Contains reports whether a pull request merged at mergedAt belongs to the window.
// Unmerged pull requests (nil) never do, and a merge exactly at Since is excluded.
func (w ReleaseWindow) Contains(mergedAt *time.Time) bool {
	return mergedAt != nil && mergedAt.After(w.Since)
}
