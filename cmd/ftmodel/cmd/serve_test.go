package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_StopsOnCancel(t *testing.T) {
	// Given: a loaded project and a cancelled context
	configFile = isolate(t)
	t.Cleanup(func() { configFile = "" })
	fakeBackend(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})

	// When: serving on an ephemeral port
	err := runServe(ctx, cmd, "127.0.0.1:0", t.TempDir())

	// Then: it starts, then shuts down cleanly
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Listening on http://127.0.0.1:")
}

func TestServe_BadAddress(t *testing.T) {
	configFile = isolate(t)
	t.Cleanup(func() { configFile = "" })
	fakeBackend(t)

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := runServe(context.Background(), cmd, "256.0.0.1:bad", t.TempDir())

	assert.Error(t, err)
}
