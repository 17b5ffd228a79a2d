// Package cmd provides the CLI commands for ftmodel.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/internal/logging"
	"github.com/Aman-CERP/ftmodel/internal/profiling"
	"github.com/Aman-CERP/ftmodel/pkg/version"
)

// Global flags
var (
	configFile string
	debugMode  bool
	profiles   profiling.Targets
)

// Per-run state released in PersistentPostRunE.
var (
	loggingCleanup func()
	profileSession *profiling.Session
)

// NewRootCmd creates the root command for the ftmodel CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ftmodel",
		Short: "Typed records over a RediSearch/RedisJSON index",
		Long: `ftmodel stores typed records as RedisJSON documents and queries them
through RediSearch indexes.

Models are declared in .ftmodel.yaml; each model gets its own key prefix,
id counter and search index.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("ftmodel version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: user config + .ftmodel.yaml)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.ftmodel/logs/")
	cmd.PersistentFlags().StringVar(&profiles.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profiles.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profiles.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = startLoggingAndProfiling
	cmd.PersistentPostRunE = stopLoggingAndProfiling

	cmd.AddCommand(newCreateIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func startLoggingAndProfiling(cmd *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg = logging.DebugConfig()
	}
	cfg.Stderr = cmd.ErrOrStderr()

	cleanup, err := logging.SetupDefault(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup
	if debugMode {
		slog.Info("Debug logging enabled",
			slog.String("log_file", cfg.FilePath),
			slog.String("version", version.Version),
			slog.String("command", cmd.CommandPath()))
	}

	if profiles.Enabled() {
		session, err := profiling.Start(profiles)
		if err != nil {
			return err
		}
		profileSession = session
	}
	return nil
}

func stopLoggingAndProfiling(_ *cobra.Command, _ []string) error {
	err := profileSession.Stop()
	profileSession = nil

	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return err
}

// Execute runs the root command and prints any error for the terminal.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		slog.Debug("command failed", errors.LogAttrs(err)...)
		printError(os.Stderr, err, debugMode)
	}
	return err
}

// printError writes err for the terminal. Debug output adds details and the cause.
func printError(w io.Writer, err error, debug bool) {
	if debug {
		fmt.Fprintln(w, errors.FormatForUser(err, true))
		return
	}
	fmt.Fprint(w, errors.FormatForCLI(err))
}
