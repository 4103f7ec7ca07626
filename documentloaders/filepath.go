package documentloaders

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sevigo/retrievekit/schema"
)

// FilePathLoader lists a single directory and turns every entry into a document.
// The document content is the entry's base name and the "source" metadata holds
// the entry path joined onto the directory.
//
// It does not read file contents and does not recurse. Pair it with a
// retriever client that uploads by "source" path.
type FilePathLoader struct {
	// dir is the directory to list
	dir string

	logger *slog.Logger
}

var _ Loader = (*FilePathLoader)(nil)

// FilePathOption defines functional options for configuring FilePathLoader.
type FilePathOption func(*FilePathLoader)

// WithFilePathLogger sets a custom logger for the FilePathLoader.
// If not provided, slog.Default() will be used.
func WithFilePathLogger(logger *slog.Logger) FilePathOption {
	return func(l *FilePathLoader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewFilePath creates a loader for the entries of dir.
func NewFilePath(dir string, opts ...FilePathOption) *FilePathLoader {
	loader := &FilePathLoader{
		dir:    dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(loader)
	}
	return loader
}

// Load enumerates the directory once, in filesystem order.
//
// Entries that cannot be stat'ed, such as ones that disappeared since
// enumeration or symlink loops, are skipped. A missing or unreadable
// directory is returned as an error wrapping the underlying fs error.
func (l *FilePathLoader) Load(ctx context.Context) ([]schema.Document, error) {
	f, err := os.Open(l.dir)
	if err != nil {
		return nil, fmt.Errorf("open directory %s: %w", l.dir, err)
	}
	defer f.Close()

	// ReadDir on the handle keeps the order the filesystem returns.
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", l.dir, err)
	}

	documents := make([]schema.Document, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		path := filepath.Join(l.dir, name)
		// Any stat failure counts as the entry not existing.
		if _, err := os.Stat(path); err != nil {
			l.logger.DebugContext(ctx, "Entry cannot be resolved, skipping", "path", path, "error", err)
			continue
		}

		documents = append(documents, schema.NewDocument(name, map[string]any{"source": path}))
	}

	l.logger.DebugContext(ctx, "Directory listed", "dir", l.dir, "total_documents", len(documents))
	return documents, nil
}
