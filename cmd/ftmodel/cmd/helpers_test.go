package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ftmodel/internal/config"
	"github.com/Aman-CERP/ftmodel/pkg/backend"
	"github.com/Aman-CERP/ftmodel/pkg/backend/backendtest"
)

const projectYAML = `
database:
  name: app
models:
  - name: User
    fields:
      - {name: status, type: TAG, index: true}
      - {name: age, type: NUMERIC, index: true}
      - {name: name, type: TEXT, index: true}
  - name: BlogPost
    prefix: blog_post
    fields:
      - {name: title, type: TEXT, index: true}
`

// isolate points user config at a temp dir, clears FTMODEL_* and writes a
// project file. It returns the project file path.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{
		"FTMODEL_REDIS_ADDR", "FTMODEL_REDIS_PASSWORD", "FTMODEL_REDIS_DB",
		"FTMODEL_DB_NAME", "FTMODEL_LOG_LEVEL", "FTMODEL_SERVER_ADDR",
	} {
		t.Setenv(k, "")
	}
	path := filepath.Join(t.TempDir(), ".ftmodel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(projectYAML), 0644))
	return path
}

// fakeBackend swaps the Redis connection for a Recorder.
func fakeBackend(t *testing.T) *backendtest.Recorder {
	t.Helper()
	rec := backendtest.New()
	prev := dialBackend
	dialBackend = func(*config.Config) (backend.Executor, func() error) {
		return rec, func() error { return nil }
	}
	t.Cleanup(func() { dialBackend = prev })
	return rec
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}
