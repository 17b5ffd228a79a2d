package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/internal/output"
	"github.com/Aman-CERP/ftmodel/pkg/query"
	"github.com/Aman-CERP/ftmodel/pkg/record"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	class  string
	where  []string
	in     []string
	sort   string
	limit  int
	skip   int
	count  bool
	format string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Query records of a model",
		Long: `Query the records of one model through its search index.

Conditions are field<op>value with op one of = > < >= <=. Equality on a TAG
field matches the tag; on TEXT it is a full-text match.`,
		Example: `  ftmodel search --class User --where status=active --sort age:desc
  ftmodel search --class User --where "age>=30" --in status=active,invited --limit 5
  ftmodel search --class User --where status=active --count
  ftmodel search --class User --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.class, "class", "", "Model name")
	cmd.Flags().StringArrayVarP(&opts.where, "where", "w", nil, "Condition field<op>value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.in, "in", nil, "Membership field=a,b,c (repeatable)")
	cmd.Flags().StringVarP(&opts.sort, "sort", "s", "", "Sort field[:asc|desc]")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of records")
	cmd.Flags().IntVar(&opts.skip, "skip", 0, "Number of records to skip")
	cmd.Flags().BoolVar(&opts.count, "count", false, "Print only the number of matches")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, opts searchOptions) error {
	if opts.class == "" {
		return errors.New(errors.ErrCodeInvalidInput, "--class is required", nil).
			WithSuggestion("Run 'ftmodel config show' to list declared models")
	}
	if opts.limit < 0 || opts.skip < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "--limit and --skip must not be negative", nil)
	}
	if opts.format != "text" && opts.format != "json" {
		return errors.Newf(errors.ErrCodeInvalidInput, "unknown format %q", opts.format).
			WithSuggestion("Use --format text or --format json")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.shutdown()

	repo, err := a.repository(opts.class)
	if err != nil {
		return err
	}
	q, err := buildSearchQuery(repo, opts)
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	start := time.Now()

	if opts.count {
		n, err := repo.Count(ctx, q)
		if err != nil {
			return err
		}
		slog.Info("search_count", slog.String("model", opts.class), slog.Int64("total", n))
		if opts.format == "json" {
			return out.JSON(map[string]int64{"total": n})
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
		return err
	}

	records, err := repo.All(ctx, q)
	if err != nil {
		return err
	}
	slog.Info("search_completed",
		slog.String("model", opts.class),
		slog.Int("results", len(records)),
		slog.Duration("duration", time.Since(start)))

	if opts.format == "json" {
		return out.JSON(records)
	}
	if len(records) == 0 {
		out.Warning("No records found")
		return nil
	}
	headers, rows := recordTable(repo.Model(), records)
	out.Table(headers, rows)
	return nil
}

func buildSearchQuery(repo *record.Repository, opts searchOptions) (*query.Query, error) {
	q := repo.Query()
	for _, w := range opts.where {
		p, err := query.ParseCondition(w)
		if err != nil {
			return nil, err
		}
		q.Apply(p)
	}
	for _, in := range opts.in {
		p, err := query.ParseIn(in)
		if err != nil {
			return nil, err
		}
		q.Apply(p)
	}
	if opts.sort != "" {
		spec, err := query.ParseSort(opts.sort)
		if err != nil {
			return nil, err
		}
		q.SortBy(spec.Field, spec.Direction)
	}
	return q.Limit(opts.limit).Skip(opts.skip), nil
}

// recordTable lays records out as primary key, declared fields, then timestamps.
func recordTable(m *record.Model, records []*record.Record) ([]string, [][]string) {
	headers := []string{m.PrimaryKey()}
	for _, f := range m.FieldSchema().Fields() {
		headers = append(headers, f.Name)
	}
	if m.Timestamps() {
		headers = append(headers, record.CreatedAt, record.UpdatedAt)
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(headers))
		for i, h := range headers {
			if v := rec.Get(h); !v.IsNull() {
				row[i] = v.String()
			}
		}
		rows = append(rows, row)
	}
	return headers, rows
}
