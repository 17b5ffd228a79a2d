// Package logging configures slog for ftmodel.
// With --debug, JSON logs go to a size-rotated file under ~/.ftmodel/logs/
// and are mirrored to stderr. Otherwise only warnings reach stderr.
package logging
