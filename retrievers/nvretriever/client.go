// Package nvretriever is a client for a retriever microservice: a remote
// service that stores documents in named collections and answers similarity
// search queries over them with scored text chunks.
//
// A Client is bound to one collection. The collection id is resolved once by
// New and never re-resolved.
//
// Remote failures (non-200 responses, transport errors) do not surface as Go
// errors from Search and UploadDocument. They come back as a typed result with
// Failure set, and a warning is logged. Errors are reserved for local problems
// such as unreadable files and for responses that break the wire contract.
package nvretriever

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sevigo/retrievekit/schema"
)

// Client talks to one collection of a retriever microservice.
// It holds no mutable state after New and is safe for concurrent use.
type Client struct {
	transport      *transport
	obs            *observer
	endpoint       string
	collectionID   string
	collectionName string
	pipeline       string
}

var _ schema.Retriever = (*Client)(nil)

// New validates its arguments, resolves the collection and returns a client
// bound to it. If resolution fails no client is returned and the error is a
// *ResolutionError.
func New(ctx context.Context, endpointURL, collectionName, pipeline string, opts ...Option) (*Client, error) {
	endpoint := normalizeEndpoint(endpointURL)
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if strings.TrimSpace(collectionName) == "" {
		return nil, ErrMissingCollectionName
	}

	o := parseOptions(opts...)
	obs, err := newObserver(o)
	if err != nil {
		return nil, err
	}
	t := newTransport(o)

	collectionID, err := resolveCollection(ctx, t, obs, endpoint, collectionName, pipeline)
	if err != nil {
		return nil, err
	}

	c := &Client{
		transport:      t,
		obs:            obs.withCollection(collectionName, collectionID),
		endpoint:       endpoint,
		collectionID:   collectionID,
		collectionName: collectionName,
		pipeline:       pipeline,
	}
	c.obs.logger.InfoContext(ctx, "Retriever client initialized", "endpoint", endpoint, "pipeline", pipeline)
	return c, nil
}

// CollectionID returns the id resolved by New.
func (c *Client) CollectionID() string { return c.collectionID }

// CollectionName returns the human-readable collection name.
func (c *Client) CollectionName() string { return c.collectionName }

// Pipeline returns the pipeline the collection was resolved with.
func (c *Client) Pipeline() string { return c.pipeline }

// Endpoint returns the service endpoint without a trailing slash.
func (c *Client) Endpoint() string { return c.endpoint }

func (c *Client) collectionURL(resource string) string {
	return joinURL(c.endpoint, url.PathEscape(c.collectionID), resource)
}

// Search runs a similarity search over the collection.
//
// Each returned chunk becomes a document whose metadata is the chunk's own
// metadata plus a "score" entry. A chunk lacking content, score or metadata
// fails the whole call with ErrMalformedChunk.
func (c *Client) Search(ctx context.Context, query string) (result SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opSearch, start, outcome(result.Failure, err)) }()

	req, requestID, err := c.transport.newRequest(ctx, c.collectionURL("search"), searchRequest{Query: query})
	if err != nil {
		return SearchResult{}, err
	}
	result = SearchResult{Documents: []schema.Document{}, RequestID: requestID}

	resp, err := c.transport.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return SearchResult{}, ctxErr
		}
		result.Failure = fmt.Errorf("http request failed: %w", err)
		c.obs.remoteFailure(ctx, opSearch, requestID, 0, result.Failure)
		return result, nil
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		result.Failure = statusError(resp)
		c.obs.remoteFailure(ctx, opSearch, requestID, resp.StatusCode, result.Failure)
		return result, nil
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return SearchResult{}, fmt.Errorf("%w: decode search response: %w", ErrMalformedResponse, err)
	}
	if body.Chunks == nil {
		return SearchResult{}, fmt.Errorf("%w: search response has no chunks", ErrMalformedResponse)
	}

	docs, err := chunksToDocuments(*body.Chunks)
	if err != nil {
		return SearchResult{}, err
	}
	result.Documents = docs

	c.obs.logger.DebugContext(ctx, "Search completed",
		"results", len(docs), "request_id", requestID, "duration", time.Since(start))
	return result, nil
}

func chunksToDocuments(chunks []searchChunk) ([]schema.Document, error) {
	docs := make([]schema.Document, 0, len(chunks))
	for i, chunk := range chunks {
		switch {
		case chunk.Content == nil:
			return nil, fmt.Errorf("%w: chunk %d has no content", ErrMalformedChunk, i)
		case chunk.Score == nil:
			return nil, fmt.Errorf("%w: chunk %d has no score", ErrMalformedChunk, i)
		case chunk.Metadata == nil:
			return nil, fmt.Errorf("%w: chunk %d has no metadata", ErrMalformedChunk, i)
		}

		metadata := make(map[string]any, len(chunk.Metadata)+1)
		maps.Copy(metadata, chunk.Metadata)
		metadata["score"] = *chunk.Score

		docs = append(docs, schema.NewDocument(*chunk.Content, metadata))
	}
	return docs, nil
}

// GetRelevantDocuments implements schema.Retriever. A remote failure yields
// an empty slice and a nil error; use Search to see why.
func (c *Client) GetRelevantDocuments(ctx context.Context, query string) ([]schema.Document, error) {
	result, err := c.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return result.Documents, nil
}

// UploadDocument reads the file at path and adds it to the collection.
//
// Binary document formats (see documentFormat) are base64 encoded, other
// files are sent as-is and must be valid UTF-8. A file that cannot be read or
// encoded is returned as an error; a rejected upload is returned as a result
// with Success false.
func (c *Client) UploadDocument(ctx context.Context, path string, opts ...UploadOption) (result UploadResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opUpload, start, outcome(result.Failure, err)) }()

	data, err := os.ReadFile(path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("nvretriever: read %s: %w", path, err)
	}

	uo := uploadOptions{metadata: make(map[string]any)}
	for _, opt := range opts {
		opt(&uo)
	}

	format, binary := documentFormat(path)
	content, err := encodeContent(data, binary)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %s", err, path)
	}
	payload := []uploadDocument{{
		Metadata: uo.metadata,
		Content:  content,
		Format:   format,
	}}

	req, requestID, err := c.transport.newRequest(ctx, c.collectionURL("documents"), payload)
	if err != nil {
		return UploadResult{}, err
	}
	result = UploadResult{Source: path, Format: format, RequestID: requestID}

	resp, err := c.transport.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return UploadResult{}, ctxErr
		}
		result.Failure = fmt.Errorf("http request failed: %w", err)
		c.obs.remoteFailure(ctx, opUpload, requestID, 0, result.Failure)
		return result, nil
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		result.Failure = statusError(resp)
		c.obs.remoteFailure(ctx, opUpload, requestID, resp.StatusCode, result.Failure)
		return result, nil
	}

	var body uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return UploadResult{}, fmt.Errorf("%w: decode upload response: %w", ErrMalformedResponse, err)
	}
	if len(body.Documents) == 0 || body.Documents[0].ID == "" {
		return UploadResult{}, fmt.Errorf("%w: upload response has no documents[0].id", ErrMalformedResponse)
	}

	result.Success = true
	result.DocumentID = body.Documents[0].ID
	c.obs.logger.DebugContext(ctx, "Document uploaded",
		"path", path, "format", format, "document_id", result.DocumentID, "request_id", requestID)
	return result, nil
}

// UploadDocumentsDetailed uploads the file named by each document's "source"
// metadata, one at a time, and returns one result per document.
//
// The batch is not transactional. A document without a string source, or a
// file that cannot be read, stops the batch; the results gathered so far are
// returned with the error and nothing already uploaded is rolled back.
func (c *Client) UploadDocumentsDetailed(ctx context.Context, docs []schema.Document) ([]UploadResult, error) {
	results := make([]UploadResult, 0, len(docs))
	for i, doc := range docs {
		source, ok := doc.Source()
		if !ok {
			return results, fmt.Errorf("%w: document %d", ErrMissingSource, i)
		}
		result, err := c.UploadDocument(ctx, source)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// UploadDocuments uploads every document and returns the ids of the ones the
// service accepted, in input order. Rejected uploads are left out.
func (c *Client) UploadDocuments(ctx context.Context, docs []schema.Document) ([]string, error) {
	results, err := c.UploadDocumentsDetailed(ctx, docs)

	ids := make([]string, 0, len(results))
	for _, result := range results {
		if result.Success {
			ids = append(ids, result.DocumentID)
		}
	}

	c.obs.logger.InfoContext(ctx, "Batch upload finished",
		"requested", len(docs), "attempted", len(results), "uploaded", len(ids))
	return ids, err
}

func outcome(failure, err error) string {
	switch {
	case err != nil:
		return "error"
	case failure != nil:
		return "remote_error"
	default:
		return "ok"
	}
}
