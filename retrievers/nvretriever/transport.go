package nvretriever

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// maxErrorBody caps how much of a failed response body ends up in an error.
const maxErrorBody = 512

type transport struct {
	httpClient *http.Client
	apiKey     string
	userAgent  string
}

func newTransport(o *options) *transport {
	return &transport{
		httpClient: o.httpClient,
		apiKey:     o.apiKey,
		userAgent:  o.userAgent,
	}
}

// newRequest builds a JSON POST tagged with a fresh request id.
// Errors here are local: bad URL or unmarshalable payload.
func (t *transport) newRequest(ctx context.Context, url string, payload any) (*http.Request, string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", t.userAgent)
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	return req, requestID, nil
}

// statusError describes a non-success response, including the start of its body.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return statusErrorFromBody(resp.StatusCode, body)
}

func statusErrorFromBody(statusCode int, body []byte) error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, statusCode)
	}
	return fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, statusCode, msg)
}

func joinURL(endpoint string, parts ...string) string {
	return strings.Join(append([]string{endpoint}, parts...), "/")
}
