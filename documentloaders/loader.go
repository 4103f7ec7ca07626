// Package documentloaders provides interfaces and implementations for loading
// documents from various sources into a format suitable for RAG pipelines.
package documentloaders

import (
	"context"

	"github.com/sevigo/retrievekit/schema"
)

// Loader defines the interface for loading documents from various sources.
// Implementations should handle source-specific logic while returning
// a consistent document format for downstream processing.
type Loader interface {
	// Load retrieves documents from the source and returns them as a slice
	// of schema.Document objects. The context can be used for cancellation
	// and timeout control during the loading process.
	Load(ctx context.Context) ([]schema.Document, error)
}
