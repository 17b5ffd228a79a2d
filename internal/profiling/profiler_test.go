package profiling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ftmodel/internal/errors"
)

func nonEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSession_AllProfiles(t *testing.T) {
	// Given: every profile requested
	dir := t.TempDir()
	targets := Targets{
		CPU:   filepath.Join(dir, "cpu.prof"),
		Heap:  filepath.Join(dir, "heap.prof"),
		Trace: filepath.Join(dir, "trace.out"),
	}
	require.True(t, targets.Enabled())

	// When: running some work between Start and Stop
	s, err := Start(targets)
	require.NoError(t, err)
	sum := 0
	for i := 0; i < 1_000_000; i++ {
		sum += i
	}
	_ = sum
	require.NoError(t, s.Stop())

	// Then: each file has content, and a second Stop is harmless
	nonEmpty(t, targets.CPU)
	nonEmpty(t, targets.Heap)
	nonEmpty(t, targets.Trace)
	assert.NoError(t, s.Stop())
}

func TestSession_Disabled(t *testing.T) {
	assert.False(t, Targets{}.Enabled())

	s, err := Start(Targets{})
	require.NoError(t, err)
	assert.NoError(t, s.Stop())

	var nilSession *Session
	assert.NoError(t, nilSession.Stop())
}

func TestStart_BadPath(t *testing.T) {
	_, err := Start(Targets{CPU: filepath.Join(t.TempDir(), "missing", "cpu.prof")})

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFilePermission, errors.GetCode(err))
}

func TestWriteHeap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.prof")

	require.NoError(t, WriteHeap(path))
	nonEmpty(t, path)
}
