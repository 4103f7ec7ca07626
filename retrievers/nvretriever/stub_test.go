package nvretriever_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubService is an in-process retriever microservice. Collection creation is
// idempotent per (name, pipeline), like the real service.
type stubService struct {
	t      *testing.T
	server *httptest.Server

	mu          sync.Mutex
	collections map[string]string
	createCalls int
	createBody  func(w http.ResponseWriter) // overrides the create response when set

	searchStatus int
	searchBody   any
	queries      []string

	uploadStatus map[int]int // upload call index -> status; 200 when absent
	uploads      []uploadCall
	headers      []http.Header
}

type uploadCall struct {
	CollectionID string
	Documents    []map[string]any
}

func newStubService(t *testing.T) *stubService {
	t.Helper()
	s := &stubService{
		t:            t,
		collections:  make(map[string]string),
		searchStatus: http.StatusOK,
		searchBody:   map[string]any{"chunks": []any{}},
		uploadStatus: make(map[int]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/collections", s.handleCreate)
	mux.HandleFunc("POST /v1/collections/{id}/search", s.handleSearch)
	mux.HandleFunc("POST /v1/collections/{id}/documents", s.handleUpload)
	s.server = httptest.NewServer(mux)
	t.Cleanup(s.server.Close)
	return s
}

func (s *stubService) endpoint() string {
	return s.server.URL + "/v1/collections"
}

func (s *stubService) setCreateBody(fn func(w http.ResponseWriter)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createBody = fn
}

func (s *stubService) setSearch(status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchStatus = status
	s.searchBody = body
}

func (s *stubService) failUpload(call, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadStatus[call] = status
}

func (s *stubService) creates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCalls
}

func (s *stubService) collectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections)
}

func (s *stubService) uploadCalls() []uploadCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uploadCall(nil), s.uploads...)
}

func (s *stubService) seenQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func (s *stubService) seenHeaders() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]http.Header(nil), s.headers...)
}

func (s *stubService) record(r *http.Request) {
	s.headers = append(s.headers, r.Header.Clone())
}

func (s *stubService) handleCreate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(r)
	s.createCalls++

	if s.createBody != nil {
		s.createBody(w)
		return
	}

	var req struct {
		Name     string `json:"name"`
		Pipeline string `json:"pipeline"`
	}
	require.NoError(s.t, json.NewDecoder(r.Body).Decode(&req))

	key := req.Name + "\x00" + req.Pipeline
	id, ok := s.collections[key]
	if !ok {
		id = fmt.Sprintf("col-%d", len(s.collections)+1)
		s.collections[key] = id
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"collection": map[string]any{"id": id, "name": req.Name, "pipeline": req.Pipeline},
	})
}

func (s *stubService) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(r)

	var req struct {
		Query string `json:"query"`
	}
	require.NoError(s.t, json.NewDecoder(r.Body).Decode(&req))
	s.queries = append(s.queries, req.Query)

	if s.searchStatus != http.StatusOK {
		http.Error(w, "search backend unavailable", s.searchStatus)
		return
	}
	writeJSON(w, http.StatusOK, s.searchBody)
}

func (s *stubService) handleUpload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(r)

	var docs []map[string]any
	require.NoError(s.t, json.NewDecoder(r.Body).Decode(&docs))

	call := len(s.uploads)
	s.uploads = append(s.uploads, uploadCall{CollectionID: r.PathValue("id"), Documents: docs})

	if status, ok := s.uploadStatus[call]; ok && status != http.StatusOK {
		http.Error(w, "ingest failed", status)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": []map[string]any{{"id": fmt.Sprintf("doc-%d", call)}},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestLogger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	return slog.New(handler), &buf
}
