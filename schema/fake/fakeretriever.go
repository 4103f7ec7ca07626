package fake

import (
	"context"
	"sync"

	"github.com/sevigo/retrievekit/schema"
)

// Retriever is a mock retriever for testing purposes.
type Retriever struct {
	DocsToReturn []schema.Document
	ErrToReturn  error

	mu      sync.Mutex
	queries []string
}

var _ schema.Retriever = (*Retriever)(nil)

// NewRetriever creates a new fake retriever.
func NewRetriever(docs ...schema.Document) *Retriever {
	return &Retriever{DocsToReturn: docs}
}

// GetRelevantDocuments records the query and returns the pre-configured documents and error.
func (r *Retriever) GetRelevantDocuments(_ context.Context, query string) ([]schema.Document, error) {
	r.mu.Lock()
	r.queries = append(r.queries, query)
	r.mu.Unlock()
	return r.DocsToReturn, r.ErrToReturn
}

// Queries returns every query seen so far, oldest first.
func (r *Retriever) Queries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}
