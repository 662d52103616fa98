package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for registry_sdk_calls_total.
const (
	outcomeOK          = "ok"
	outcomeRejected    = "rejected"
	outcomeNotFound    = "not_found"
	outcomeUnreachable = "unreachable"
	outcomeError       = "error"
)

// callMetrics is the SDK's own metric set. Server metrics live in internal/metrics.
type callMetrics struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func newCallMetrics(reg prometheus.Registerer) (*callMetrics, error) {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "registry",
		Subsystem: "sdk",
		Name:      "calls_total",
		Help:      "SDK calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "registry",
		Subsystem: "sdk",
		Name:      "call_duration_seconds",
		Help:      "SDK call latency in seconds, including the engine round trip.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"operation"})

	var err error
	if calls, err = register(reg, calls); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	return &callMetrics{calls: calls, latency: latency}, nil
}

// register adds c to reg. Two clients sharing a registry share the collectors.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var dup prometheus.AlreadyRegisteredError
	if !errors.As(err, &dup) {
		return c, fmt.Errorf("registry: register metric: %w", err)
	}
	existing, ok := dup.ExistingCollector.(C)
	if !ok {
		return c, fmt.Errorf("registry: metric registered with type %T", dup.ExistingCollector)
	}
	return existing, nil
}

// observer records every SDK call. A nil observer, or nil fields, disable that side.
type observer struct {
	logger  *slog.Logger
	metrics *callMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg == nil {
		return o, nil
	}
	m, err := newCallMetrics(reg)
	if err != nil {
		return nil, err
	}
	o.metrics = m
	return o, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)
	outcome := outcomeOf(err)

	if o.metrics != nil {
		o.metrics.calls.WithLabelValues(op, outcome).Inc()
		o.metrics.latency.WithLabelValues(op).Observe(elapsed.Seconds())
	}
	if o.logger == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("op", op),
		slog.String("outcome", outcome),
		slog.Duration("elapsed", elapsed),
	}
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	o.logger.LogAttrs(context.Background(), level, "registry call", attrs...)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrEngineUnreachable):
		return outcomeUnreachable
	case errors.Is(err, ErrCatalogNotFound):
		return outcomeNotFound
	case errors.Is(err, ErrEngineRejected),
		errors.Is(err, ErrInvalidParameter),
		errors.Is(err, ErrInvalidDocument),
		errors.Is(err, ErrPatternMismatch),
		errors.Is(err, ErrNumberFormat),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrMissingCompanionParameter),
		errors.Is(err, ErrPagination),
		errors.Is(err, ErrUnsupportedSort):
		return outcomeRejected
	default:
		return outcomeError
	}
}
