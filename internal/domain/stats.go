// Package domain contains the core data structures and domain logic for the application.
package domain

// WindowStats holds descriptive numbers about the pull requests of one release window.
// It is logged for operators and never influences the generated changelog.
type WindowStats struct {
	Count                  int            `json:"count"`
	Authors                []string       `json:"authors"`
	LabelCounts            map[string]int `json:"label_counts"`
	MedianHoursAfterCutoff float64        `json:"median_hours_after_cutoff"`
	P90HoursAfterCutoff    float64        `json:"p90_hours_after_cutoff"`
}
