package nvretriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opResolve = "resolve"
	opSearch  = "search"
	opUpload  = "upload"
)

// clientMetrics holds prometheus metrics registered for the client.
type clientMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "retrievekit",
			Subsystem: "nvretriever",
			Name:      "operations_total",
			Help:      "Total retriever service operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "retrievekit",
			Subsystem: "nvretriever",
			Name:      "operation_duration_seconds",
			Help:      "Retriever service operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("nvretriever: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("nvretriever: register metric: %w", err)
	}
	return nil
}

// observer records metrics and emits the diagnostics for remote failures.
type observer struct {
	logger     *slog.Logger
	metrics    *clientMetrics
	supportURL string
}

func newObserver(o *options) (*observer, error) {
	var m *clientMetrics
	if o.metricsReg != nil {
		var err error
		m, err = newClientMetrics(o.metricsReg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{
		logger:     o.logger.With("component", "nvretriever"),
		metrics:    m,
		supportURL: o.supportURL,
	}, nil
}

func (o *observer) withCollection(name, id string) *observer {
	return &observer{
		logger:     o.logger.With("collection", name, "collection_id", id),
		metrics:    o.metrics,
		supportURL: o.supportURL,
	}
}

// observe counts one operation. status is "ok", "remote_error" or "error".
func (o *observer) observe(op string, start time.Time, status string) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.operations.WithLabelValues(op, status).Inc()
	o.metrics.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// remoteFailure is the diagnostic notice for a search or upload the service did not accept.
func (o *observer) remoteFailure(ctx context.Context, op, requestID string, statusCode int, failure error) {
	attrs := []any{
		"operation", op,
		"status_code", statusCode,
		"request_id", requestID,
		"error", failure,
	}
	if o.supportURL != "" {
		attrs = append(attrs, "support", o.supportURL)
	}
	o.logger.WarnContext(ctx,
		"Retriever service request failed; see the retriever microservice documentation for this status code",
		attrs...)
}
