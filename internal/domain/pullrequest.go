package domain

import "time"

// PullRequestRecord is a merged pull request that belongs to the current release window.
// Values are produced once by the resolver and treated as read-only afterwards.
type PullRequestRecord struct {
	Number   int      `json:"number"`
	Title    string   `json:"title"`
	Body     *string  `json:"body"`
	Labels   []string `json:"labels"`
	Author   string   `json:"author"`
	MergedAt string   `json:"merged_at"`
}

// ClosedPullRequest is the raw view of a closed pull request as returned by the hosting API,
// before any window filtering. Optional fields stay nil when the API omits them.
type ClosedPullRequest struct {
	Number   int
	Title    *string
	Body     *string
	Labels   []Label
	Author   *string
	MergedAt *time.Time
}

// Label is a pull request label as the gateways hand it over. A label can reach the
// resolver as a bare name or as an object with a "name" field; go-github decodes the
// object shape and the GraphQL query selects the name, so both arrive here as Name.
// A label without a name keeps Name nil.
type Label struct {
	Name *string
}

// String returns the label name, or "" when the label has none.
func (l Label) String() string {
	if l.Name == nil {
		return ""
	}
	return *l.Name
}
