package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/ftmodel/internal/lock"
	"github.com/Aman-CERP/ftmodel/pkg/backend"
	"github.com/Aman-CERP/ftmodel/pkg/record"
)

// CheckStatus represents the result of a preflight check.
type CheckStatus int

const (
	// StatusPass indicates the check passed successfully.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical warning.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the status by name in JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult holds the result of a single preflight check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical returns true if this is a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Checker runs doctor checks against one backend.
type Checker struct {
	exec    backend.Executor
	models  []*record.Model
	lockDir string
	verbose bool
	output  io.Writer
}

// Option configures a Checker.
type Option func(*Checker)

// WithModels checks that each model's index exists.
func WithModels(models ...*record.Model) Option {
	return func(c *Checker) {
		c.models = append(c.models, models...)
	}
}

// WithLockDir overrides the directory checked for write access.
func WithLockDir(dir string) Option {
	return func(c *Checker) {
		c.lockDir = dir
	}
}

// WithVerbose prints check details.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// New creates a Checker for exec.
func New(exec backend.Executor, opts ...Option) *Checker {
	c := &Checker{
		exec:    exec,
		lockDir: lock.DefaultDir(),
		output:  os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs every check in order. Index checks are skipped when the
// search module is unavailable.
func (c *Checker) RunAll(ctx context.Context) []CheckResult {
	results := []CheckResult{c.CheckPing(ctx)}
	if results[0].Status == StatusFail {
		return append(results, c.CheckWritePermissions(c.lockDir))
	}

	search, indexes := c.CheckSearchModule(ctx)
	results = append(results, search, c.CheckJSONModule(ctx))
	if search.Status == StatusPass {
		results = append(results, c.CheckIndexes(indexes)...)
	}
	return append(results, c.CheckWritePermissions(c.lockDir))
}

// CheckPing verifies the backend answers.
func (c *Checker) CheckPing(ctx context.Context) CheckResult {
	result := CheckResult{Name: "backend", Required: true}

	reply, err := c.exec.Do(ctx, "PING")
	if err != nil {
		result.Status = StatusFail
		result.Message = "unreachable"
		result.Details = err.Error()
		return result
	}
	if s, _ := backend.AsString(reply); !strings.EqualFold(s, "PONG") {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("unexpected PING reply %v", reply)
		return result
	}
	result.Status = StatusPass
	result.Message = "OK"
	return result
}

// CheckSearchModule verifies RediSearch via FT._LIST and returns the index names.
func (c *Checker) CheckSearchModule(ctx context.Context) (CheckResult, []string) {
	result := CheckResult{Name: "search_module", Required: true}

	reply, err := c.exec.Do(ctx, "FT._LIST")
	if err != nil {
		result.Status = StatusFail
		result.Message = "RediSearch is not available"
		result.Details = err.Error()
		return result, nil
	}

	items, _ := backend.AsSlice(reply)
	names := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := backend.AsString(item); ok {
			names = append(names, s)
		}
	}
	result.Status = StatusPass
	result.Message = fmt.Sprintf("OK (%d indexes)", len(names))
	return result, names
}

// CheckJSONModule verifies RedisJSON by reading a key that should not exist.
func (c *Checker) CheckJSONModule(ctx context.Context) CheckResult {
	result := CheckResult{Name: "json_module", Required: true}

	if _, err := c.exec.Do(ctx, "JSON.GET", "ftmodel:preflight:probe"); err != nil {
		result.Status = StatusFail
		result.Message = "RedisJSON is not available"
		result.Details = err.Error()
		return result
	}
	result.Status = StatusPass
	result.Message = "OK"
	return result
}

// CheckIndexes warns about configured models whose index is missing.
func (c *Checker) CheckIndexes(existing []string) []CheckResult {
	if len(c.models) == 0 {
		return []CheckResult{{
			Name:    "models",
			Status:  StatusWarn,
			Message: "no models configured",
			Details: "Declare models under models: in .ftmodel.yaml",
		}}
	}

	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	results := make([]CheckResult, 0, len(c.models))
	for _, m := range c.models {
		r := CheckResult{Name: "index:" + m.Name()}
		if have[m.IndexName()] {
			r.Status = StatusPass
			r.Message = m.IndexName()
		} else {
			r.Status = StatusWarn
			r.Message = m.IndexName() + " missing"
			r.Details = "Run: ftmodel create-index --class " + m.Name()
		}
		results = append(results, r)
	}
	return results
}

// HasCriticalFailures returns true if any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// SummaryStatus returns a summary status string for the results.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	for _, r := range results {
		if r.IsCritical() {
			return "failed"
		}
		if r.Status == StatusWarn || r.Status == StatusFail {
			hasWarnings = true
		}
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}

// PrintResults prints check results to the configured output.
func (c *Checker) PrintResults(results []CheckResult) {
	_, _ = fmt.Fprintln(c.output, "ftmodel doctor")
	_, _ = fmt.Fprintln(c.output, "==============")
	_, _ = fmt.Fprintln(c.output)

	for _, r := range results {
		_, _ = fmt.Fprintf(c.output, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(c.output, "      %s\n", r.Details)
		}
	}

	_, _ = fmt.Fprintln(c.output)
	_, _ = fmt.Fprintf(c.output, "Status: %s\n", strings.ToUpper(c.SummaryStatus(results)))

	var failures, warnings []string
	for _, r := range results {
		switch {
		case r.IsCritical():
			failures = append(failures, r.Name+": "+r.Message)
		case r.Status != StatusPass:
			warnings = append(warnings, r.Name+": "+r.Message)
		}
	}
	printList(c.output, "error(s)", failures)
	printList(c.output, "warning(s)", warnings)
}

func printList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%d %s:\n", len(items), label)
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "  - %s\n", item)
	}
}

// CheckWritePermissions checks that lock files can be created in dir.
func (c *Checker) CheckWritePermissions(dir string) CheckResult {
	result := CheckResult{Name: "lock_dir", Required: true}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot create %s: %v", dir, err)
		return result
	}
	probe := filepath.Join(dir, ".ftmodel-preflight-test")
	f, err := os.Create(probe)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("permission denied: %v", err)
		return result
	}
	_ = f.Close()
	_ = os.Remove(probe)

	result.Status = StatusPass
	result.Message = "OK"
	result.Details = dir
	return result
}
