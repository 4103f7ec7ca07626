package nvretriever

import (
	"github.com/sevigo/retrievekit/schema"
)

// createCollectionRequest is the body sent to the collection endpoint.
type createCollectionRequest struct {
	Name     string `json:"name"`
	Pipeline string `json:"pipeline"`
}

type createCollectionResponse struct {
	Collection *struct {
		ID string `json:"id"`
	} `json:"collection"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Chunks *[]searchChunk `json:"chunks"`
}

// searchChunk uses pointers so that absent fields can be told apart from zero values.
type searchChunk struct {
	Content  *string        `json:"content"`
	Score    *float64       `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

type uploadDocument struct {
	Metadata map[string]any `json:"metadata"`
	Content  string         `json:"content"`
	Format   string         `json:"format"`
}

type uploadResponse struct {
	Documents []struct {
		ID string `json:"id"`
	} `json:"documents"`
}

// SearchResult is the outcome of one search call.
//
// A remote failure (non-200 status or transport error) is reported through
// Failure with no documents, so an empty result is either "no matches" or
// "the service could not answer". OK tells them apart.
type SearchResult struct {
	Documents  []schema.Document
	StatusCode int
	RequestID  string
	Failure    error
}

// OK reports whether the service answered the search.
func (r SearchResult) OK() bool {
	return r.Failure == nil
}

// UploadResult is the outcome of uploading one file.
type UploadResult struct {
	Success    bool
	DocumentID string // set only when Success is true
	Source     string
	Format     string
	StatusCode int
	RequestID  string
	Failure    error
}
