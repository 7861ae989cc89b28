// Package actions connects the changelog command to the GitHub Actions runner:
// step outputs, the triggering event and workflow error annotations.
package actions

import (
	"fmt"
	"io"
	"os"

	"github.com/sethvargo/go-githubactions"
)

// Runner talks to the Actions runner through its environment files and workflow commands.
type Runner struct {
	action *githubactions.Action
}

// New returns a Runner that writes workflow commands to w.
func New(w io.Writer) *Runner {
	return &Runner{action: githubactions.New(githubactions.WithWriter(w))}
}

// Running reports whether the process runs inside an Actions job.
func (r *Runner) Running() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// SetOutput writes a step output when GITHUB_OUTPUT is set. Outside Actions it does nothing,
// so local runs never see a legacy set-output command on stdout.
func (r *Runner) SetOutput(name, value string) {
	if os.Getenv("GITHUB_OUTPUT") == "" {
		return
	}
	r.action.SetOutput(name, value)
}

// ReleaseID returns the release id of the triggering event, or 0 when the event
// is not a release event or no event payload is available.
func (r *Runner) ReleaseID() (int64, error) {
	ghctx, err := r.action.Context()
	if err != nil {
		return 0, fmt.Errorf("failed to read event payload: %w", err)
	}
	release, ok := ghctx.Event["release"].(map[string]any)
	if !ok {
		return 0, nil
	}
	id, ok := release["id"].(float64)
	if !ok {
		return 0, fmt.Errorf("release event has no numeric id")
	}
	return int64(id), nil
}

// Error emits an error workflow command so the runner annotates the failure.
func (r *Runner) Error(msg string) {
	r.action.Errorf("%s", msg)
}
