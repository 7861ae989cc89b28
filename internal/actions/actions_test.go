package actions

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_SetOutput(t *testing.T) {
	t.Run("writes a multiline output to GITHUB_OUTPUT", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "output")
		require.NoError(t, os.WriteFile(path, []byte("existing=1\n"), 0o644))
		t.Setenv("GITHUB_OUTPUT", path)
		var stdout bytes.Buffer

		New(&stdout).SetOutput("changelog", "## Features\n- Dark mode")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		re := regexp.MustCompile(`(?s)^existing=1\nchangelog<<(\S+)\n## Features\n- Dark mode\n(\S+)\n$`)
		m := re.FindStringSubmatch(string(data))
		require.NotNil(t, m, "unexpected output file:\n%s", data)
		assert.Equal(t, m[1], m[2])
		assert.Empty(t, stdout.String())
	})

	t.Run("does nothing outside Actions", func(t *testing.T) {
		t.Setenv("GITHUB_OUTPUT", "")
		var stdout bytes.Buffer

		New(&stdout).SetOutput("changelog", "x")

		assert.Empty(t, stdout.String())
	})
}

func TestRunner_ReleaseID(t *testing.T) {
	testCases := []struct {
		name     string
		payload  string
		expected int64
		wantErr  bool
	}{
		{name: "release event", payload: `{"action":"published","release":{"id":123456,"tag_name":"v1.2.0"}}`, expected: 123456},
		{name: "push event", payload: `{"ref":"refs/heads/main"}`, expected: 0},
		{name: "release without id", payload: `{"release":{"tag_name":"v1.2.0"}}`, wantErr: true},
		{name: "malformed payload", payload: `{`, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "event.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.payload), 0o644))
			t.Setenv("GITHUB_EVENT_PATH", path)

			id, err := New(io.Discard).ReleaseID()

			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}

	t.Run("no event payload", func(t *testing.T) {
		t.Setenv("GITHUB_EVENT_PATH", "")
		id, err := New(io.Discard).ReleaseID()
		require.NoError(t, err)
		assert.Zero(t, id)
	})
}

func TestRunner_Error(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Error("GENERATION: OpenAI API error: 401 Unauthorized\n100% broken")
	assert.Equal(t, "::error::GENERATION: OpenAI API error: 401 Unauthorized%0A100%25 broken\n", buf.String())
}

func TestRunner_Running(t *testing.T) {
	r := New(io.Discard)
	t.Setenv("GITHUB_ACTIONS", "true")
	assert.True(t, r.Running())
	t.Setenv("GITHUB_ACTIONS", "")
	assert.False(t, r.Running())
}
