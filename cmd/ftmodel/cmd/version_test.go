package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ftmodel/pkg/version"
)

func TestVersionCmd_Outputs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{"default", nil, func(t *testing.T, out string) {
			assert.Contains(t, out, "ftmodel")
			assert.Contains(t, out, version.Version)
			assert.Contains(t, out, "commit")
		}},
		{"short", []string{"--short"}, func(t *testing.T, out string) {
			assert.Equal(t, version.Version, strings.TrimSpace(out))
		}},
		{"json", []string{"--json"}, func(t *testing.T, out string) {
			var info map[string]string
			require.NoError(t, json.Unmarshal([]byte(out), &info))
			assert.Equal(t, version.Version, info["version"])
			assert.Contains(t, info, "go_version")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"version"}, tt.args...)...)

			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"create-index", "search", "serve", "doctor", "config", "version"} {
		found, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}
}

func TestRootCmd_ProfilingFlags(t *testing.T) {
	// Given: a heap profile requested for a cheap command
	dir := t.TempDir()
	heap := dir + "/heap.prof"

	// When: running it
	_, err := run(t, "version", "--short", "--profile-mem", heap)

	// Then: the profile is written on exit
	require.NoError(t, err)
	assert.FileExists(t, heap)
}
