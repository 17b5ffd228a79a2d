package schema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/pkg/backend"
)

// IndexEntry is one SCHEMA clause of FT.CREATE.
type IndexEntry struct {
	Path  string
	Alias string
	Type  FieldType
}

// IndexDescriptor is everything needed to (re)create a record type's index.
type IndexDescriptor struct {
	IndexName string
	KeyPrefix string
	Entries   []IndexEntry
}

// IndexName returns "{db}-{prefix}-idx".
func IndexName(dbName, prefix string) string {
	return fmt.Sprintf("%s-%s-idx", dbName, prefix)
}

// KeyPrefix returns "{db}:{prefix}:".
func KeyPrefix(dbName, prefix string) string {
	return fmt.Sprintf("%s:%s:", dbName, prefix)
}

// BuildIndexDescriptor derives the descriptor for s. Only indexed fields
// produce entries, in schema order.
func BuildIndexDescriptor(s Schema, dbName, prefix string) IndexDescriptor {
	desc := IndexDescriptor{
		IndexName: IndexName(dbName, prefix),
		KeyPrefix: KeyPrefix(dbName, prefix),
	}
	for _, f := range s.fields {
		if !f.Indexed {
			continue
		}
		desc.Entries = append(desc.Entries, IndexEntry{
			Path:  "$." + f.Name,
			Alias: f.Name,
			Type:  f.Type,
		})
	}
	return desc
}

// BuildIndexCommand returns the index name and the FT.CREATE arguments for s.
func BuildIndexCommand(s Schema, dbName, prefix string) (string, []string) {
	desc := BuildIndexDescriptor(s, dbName, prefix)
	return desc.IndexName, desc.CreateArgs()
}

// CreateArgs returns the FT.CREATE arguments, without the command name.
func (d IndexDescriptor) CreateArgs() []string {
	args := make([]string, 0, 7+4*len(d.Entries))
	args = append(args, d.IndexName, "ON", "JSON", "PREFIX", "1", d.KeyPrefix, "SCHEMA")
	for _, e := range d.Entries {
		args = append(args, e.Path, "as", e.Alias, string(e.Type))
	}
	return args
}

// Recreate drops the index, ignoring only a missing-index reply, then creates it.
func Recreate(ctx context.Context, exec backend.Executor, desc IndexDescriptor) error {
	_, err := exec.Do(ctx, "FT.DROPINDEX", desc.IndexName)
	switch {
	case err == nil:
		slog.Debug("dropped index", slog.String("index", desc.IndexName))
	case backend.IsUnknownIndex(err):
		slog.Debug("index did not exist", slog.String("index", desc.IndexName))
	default:
		return errors.New(errors.ErrCodeIndexFailed, "drop index "+desc.IndexName, err).
			WithDetail("index", desc.IndexName)
	}

	if _, err := exec.Do(ctx, "FT.CREATE", desc.CreateArgs()...); err != nil {
		return errors.New(errors.ErrCodeIndexFailed, "create index "+desc.IndexName, err).
			WithDetail("index", desc.IndexName)
	}
	slog.Info("index created",
		slog.String("index", desc.IndexName),
		slog.String("prefix", desc.KeyPrefix),
		slog.Int("fields", len(desc.Entries)))
	return nil
}
