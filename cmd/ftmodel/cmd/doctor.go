package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/internal/lock"
	"github.com/Aman-CERP/ftmodel/internal/output"
	"github.com/Aman-CERP/ftmodel/internal/preflight"
)

// doctorTimeout bounds the whole check run.
const doctorTimeout = 15 * time.Second

func newDoctorCmd() *cobra.Command {
	var (
		verbose    bool
		jsonOutput bool
		lockDir    string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the backend and diagnose issues",
		Long: `Run diagnostics to ensure ftmodel can operate correctly.

Checks:
  - Redis is reachable (PING)
  - RediSearch module is loaded (FT._LIST)
  - RedisJSON module is loaded (JSON.GET)
  - Each declared model has its index
  - The lock directory is writable

A missing index is a warning; run 'ftmodel create-index' to build it.`,
		Example: `  ftmodel doctor
  ftmodel doctor --verbose
  ftmodel doctor --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, verbose, jsonOutput, lockDir)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&lockDir, "lock-dir", lock.DefaultDir(), "Directory for per-index lock files")

	return cmd
}

func runDoctor(cmd *cobra.Command, verbose, jsonOutput bool, lockDir string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.shutdown()

	checker := preflight.New(a.exec,
		preflight.WithModels(a.registry.Models()...),
		preflight.WithLockDir(lockDir),
		preflight.WithVerbose(verbose),
		preflight.WithOutput(cmd.OutOrStdout()),
	)
	results := checker.RunAll(ctx)

	if jsonOutput {
		if err := output.New(cmd.OutOrStdout()).JSON(doctorJSON{
			Status: checker.SummaryStatus(results),
			Checks: results,
		}); err != nil {
			return err
		}
	} else {
		checker.PrintResults(results)
	}

	if checker.HasCriticalFailures(results) {
		return errors.New(errors.ErrCodeNetworkUnavailable, "system check failed", nil).
			WithSuggestion("Fix the failed checks above and run 'ftmodel doctor' again")
	}
	return nil
}

// doctorJSON is the --json output.
type doctorJSON struct {
	Status string                  `json:"status"`
	Checks []preflight.CheckResult `json:"checks"`
}
