//go:build ignore

// Package main fills a model with synthetic records for local testing.
// Usage: go run scripts/seed-records.go -config .ftmodel.yaml -class User -n 1000
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/Aman-CERP/ftmodel/internal/config"
	"github.com/Aman-CERP/ftmodel/pkg/backend"
	"github.com/Aman-CERP/ftmodel/pkg/record"
	"github.com/Aman-CERP/ftmodel/pkg/schema"
)

var (
	configPath = flag.String("config", ".ftmodel.yaml", "Config file declaring the model")
	class      = flag.String("class", "User", "Model to seed")
	count      = flag.Int("n", 1000, "Number of records to create")
	seed       = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var (
	words = []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel"}
	tags  = []string{"active", "invited", "suspended", "archived"}
)

// value returns a random value suited to the field type.
func value(r *rand.Rand, f schema.Field) any {
	switch f.Type {
	case schema.Numeric:
		return r.Intn(100)
	case schema.Tag:
		return tags[r.Intn(len(tags))]
	case schema.Boolean:
		return r.Intn(2) == 1
	default:
		return fmt.Sprintf("%s %s", words[r.Intn(len(words))], words[r.Intn(len(words))])
	}
}

func main() {
	flag.Parse()
	r := rand.New(rand.NewSource(*seed))

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	reg, err := cfg.Registry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building models: %v\n", err)
		os.Exit(1)
	}
	m, err := reg.Lookup(*class)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	exec := backend.NewRedisExecutor(cfg.BackendConfig(), backend.WithRetry(cfg.RetryPolicy()))
	defer func() { _ = exec.Close() }()
	repo := record.NewRepository(m, exec)

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < *count; i++ {
		attrs := make(map[string]any, m.FieldSchema().Len())
		for _, f := range m.FieldSchema().Fields() {
			attrs[f.Name] = value(r, f)
		}
		if _, err := repo.Create(ctx, attrs); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating record %d: %v\n", i+1, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Created %d %s records in %s\n", *count, m.Name(), time.Since(start).Round(time.Millisecond))
}
