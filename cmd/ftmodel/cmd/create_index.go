package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/ftmodel/internal/lock"
	"github.com/Aman-CERP/ftmodel/internal/output"
	"github.com/Aman-CERP/ftmodel/pkg/record"
)

func newCreateIndexCmd() *cobra.Command {
	var (
		classes []string
		all     bool
		lockDir string
	)

	cmd := &cobra.Command{
		Use:   "create-index",
		Short: "Drop and recreate model search indexes",
		Long: `Drop the search index of each named model and create it again from the
model's declared fields. Existing documents are re-indexed by the backend.

A missing or unknown --class is reported and nothing is changed.`,
		Example: `  # Recreate one index
  ftmodel create-index --class User

  # Recreate several at once
  ftmodel create-index --class User --class BlogPost

  # Recreate every declared model
  ftmodel create-index --all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateIndex(cmd, classes, all, lockDir)
		},
	}

	cmd.Flags().StringArrayVar(&classes, "class", nil, "Model name (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "Recreate the index of every declared model")
	cmd.Flags().StringVar(&lockDir, "lock-dir", lock.DefaultDir(), "Directory for per-index lock files")

	return cmd
}

func runCreateIndex(cmd *cobra.Command, classes []string, all bool, lockDir string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := output.New(cmd.OutOrStdout())
	if len(classes) == 0 && !all {
		out.Error("No model given")
		out.Hint("Pass --class <Model> or --all")
		return nil
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.shutdown()

	var models []*record.Model
	if all {
		models = a.registry.Models()
	}
	for _, name := range classes {
		m, err := a.registry.Lookup(name)
		if err != nil {
			out.Errorf("Unknown model %q", name)
			out.Hint("Declared models: " + joinNames(a.registry.Names()))
			return nil
		}
		models = append(models, m)
	}
	models = uniqueModels(models)
	if len(models) == 0 {
		out.Warning("No models declared")
		return nil
	}

	return recreateIndexes(ctx, a, models, lockDir, out)
}

// recreateIndexes rebuilds each model's index concurrently, one lock per index.
func recreateIndexes(ctx context.Context, a *app, models []*record.Model, lockDir string, out *output.Writer) error {
	var mu sync.Mutex
	done := make([]bool, len(models))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range models {
		i, m := i, m
		g.Go(func() error {
			fl := lock.ForIndex(lockDir, m.IndexName())
			if err := fl.Lock(gctx); err != nil {
				return err
			}
			defer func() { _ = fl.Unlock() }()

			if err := record.NewRepository(m, a.exec).RecreateIndex(gctx); err != nil {
				return err
			}
			mu.Lock()
			done[i] = true
			mu.Unlock()
			slog.Info("index recreated", slog.String("model", m.Name()), slog.String("index", m.IndexName()))
			return nil
		})
	}
	err := g.Wait()

	for i, m := range models {
		if done[i] {
			out.Successf("Recreated %s (%s)", m.IndexName(), m.Name())
		}
	}
	return err
}

func uniqueModels(models []*record.Model) []*record.Model {
	seen := make(map[*record.Model]bool, len(models))
	out := models[:0]
	for _, m := range models {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
