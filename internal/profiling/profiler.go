// Package profiling writes CPU, heap and execution-trace profiles for a CLI run.
package profiling

import (
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/Aman-CERP/ftmodel/internal/errors"
)

// Targets names the output files. Empty paths are skipped.
type Targets struct {
	CPU   string
	Heap  string
	Trace string
}

// Enabled reports whether any profile was requested.
func (t Targets) Enabled() bool {
	return t.CPU != "" || t.Heap != "" || t.Trace != ""
}

// Session is one profiled run. Start it before the work and Stop it after.
type Session struct {
	targets   Targets
	cpuFile   *os.File
	traceFile *os.File
}

// Start begins CPU profiling and tracing as requested by t.
func Start(t Targets) (*Session, error) {
	s := &Session{targets: t}

	if t.CPU != "" {
		f, err := create(t.CPU)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, errors.New(errors.ErrCodeInternal, "start CPU profile", err)
		}
		s.cpuFile = f
	}

	if t.Trace != "" {
		f, err := create(t.Trace)
		if err != nil {
			s.stopCPU()
			return nil, err
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.stopCPU()
			return nil, errors.New(errors.ErrCodeInternal, "start trace", err)
		}
		s.traceFile = f
	}

	return s, nil
}

// Stop flushes the running profiles and writes the heap snapshot.
// It is safe to call more than once.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	s.stopCPU()
	if s.traceFile != nil {
		trace.Stop()
		_ = s.traceFile.Close()
		s.traceFile = nil
	}

	if s.targets.Heap == "" {
		return nil
	}
	path := s.targets.Heap
	s.targets.Heap = ""
	return WriteHeap(path)
}

func (s *Session) stopCPU() {
	if s.cpuFile != nil {
		pprof.StopCPUProfile()
		_ = s.cpuFile.Close()
		s.cpuFile = nil
	}
}

// WriteHeap writes a heap profile to path after a forced GC.
func WriteHeap(path string) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return errors.New(errors.ErrCodeInternal, "write heap profile", err)
	}
	return nil
}

func create(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeFilePermission, "create profile "+path, err).
			WithDetail("path", path)
	}
	return f, nil
}
