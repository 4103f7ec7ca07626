package nvretriever

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultTimeout = 60 * time.Second

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	apiKey     string
	userAgent  string
	supportURL string
	metricsReg prometheus.Registerer
}

// Option defines a function type for configuring the client.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		timeout:   defaultTimeout,
		logger:    slog.Default(),
		userAgent: "retrievekit-nvretriever",
	}
}

func parseOptions(opts ...Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}
	return o
}

// WithHTTPClient allows providing a custom http.Client.
// The client's own timeout is used; WithTimeout has no effect on it.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithTimeout bounds every round trip to the service. Defaults to 60s.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAPIKey sends the key as a bearer token on every request.
func WithAPIKey(apiKey string) Option {
	return func(o *options) {
		o.apiKey = strings.TrimSpace(apiKey)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithSupportURL sets the documentation link included in failure diagnostics.
func WithSupportURL(url string) Option {
	return func(o *options) {
		o.supportURL = strings.TrimSpace(url)
	}
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.metricsReg = reg
	}
}

// UploadOption configures a single document upload.
type UploadOption func(*uploadOptions)

type uploadOptions struct {
	metadata map[string]any
}

// WithUploadMetadata adds entries to the metadata sent along with the document.
func WithUploadMetadata(metadata map[string]any) UploadOption {
	return func(o *uploadOptions) {
		for k, v := range metadata {
			o.metadata[k] = v
		}
	}
}
