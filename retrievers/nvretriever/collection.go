package nvretriever

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// ResolveCollection asks the service at endpointURL for the collection with the
// given name and pipeline and returns its id. The service creates the
// collection if it does not exist yet, so calling this twice with the same
// arguments yields the same id.
//
// The id is taken from the body whatever the status code, so a service that
// answers 409 with the existing collection still resolves. There is no retry
// and no caching. Any failure is a *ResolutionError.
func ResolveCollection(ctx context.Context, endpointURL, name, pipeline string, opts ...Option) (string, error) {
	o := parseOptions(opts...)
	obs, err := newObserver(o)
	if err != nil {
		return "", err
	}
	return resolveCollection(ctx, newTransport(o), obs, normalizeEndpoint(endpointURL), name, pipeline)
}

func resolveCollection(ctx context.Context, t *transport, obs *observer, endpoint, name, pipeline string) (id string, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		obs.observe(opResolve, start, status)
	}()

	fail := func(statusCode int, cause error) (string, error) {
		return "", &ResolutionError{
			Endpoint:   endpoint,
			Collection: name,
			Pipeline:   pipeline,
			StatusCode: statusCode,
			Err:        cause,
		}
	}

	req, requestID, err := t.newRequest(ctx, endpoint, createCollectionRequest{Name: name, Pipeline: pipeline})
	if err != nil {
		return fail(0, err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fail(0, fmt.Errorf("http request failed: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("read response body: %w", err))
	}

	var body createCollectionResponse
	decodeErr := json.Unmarshal(raw, &body)
	if decodeErr == nil && body.Collection != nil && body.Collection.ID != "" {
		obs.logger.DebugContext(ctx, "Collection resolved",
			"collection", name, "pipeline", pipeline, "collection_id", body.Collection.ID,
			"status_code", resp.StatusCode, "request_id", requestID)
		return body.Collection.ID, nil
	}

	switch {
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fail(resp.StatusCode, statusErrorFromBody(resp.StatusCode, raw))
	case decodeErr != nil:
		return fail(resp.StatusCode, fmt.Errorf("%w: %w", ErrMalformedResponse, decodeErr))
	default:
		return fail(resp.StatusCode, ErrCollectionIDMissing)
	}
}

func normalizeEndpoint(endpoint string) string {
	return strings.TrimRight(strings.TrimSpace(endpoint), "/")
}
