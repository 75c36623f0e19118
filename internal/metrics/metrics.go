// Package metrics records store activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/devhost/internal/apperror"
	"github.com/sakif/devhost/internal/model"
	"github.com/sakif/devhost/internal/store"
)

type Status string

const (
	Success Status = "success"
	Failure Status = "failure"
	// Rejected covers validation and not-found outcomes: the store worked,
	// the request did not.
	Rejected Status = "rejected"
)

type Metrics struct {
	registry          *prometheus.Registry
	operationCounter  *prometheus.CounterVec
	durationHistogram *prometheus.HistogramVec
}

// New creates the collectors on a registry of their own, so every server (and
// every test) starts from zero. Go runtime and process collectors are included.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operationCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devhost_store_operations_total",
				Help: "Total number of snippet store operations",
			},
			[]string{"op", "status"},
		),
		durationHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "devhost_store_operation_duration_seconds",
				Help:    "Latency of snippet store operations, simulated delay included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	m.registry.MustRegister(
		m.operationCounter,
		m.durationHistogram,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Observe(op store.Op, status Status, start time.Time) {
	m.operationCounter.With(prometheus.Labels{"op": string(op), "status": string(status)}).Inc()
	m.durationHistogram.With(prometheus.Labels{"op": string(op)}).Observe(time.Since(start).Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func statusOf(err error) Status {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrNotFound):
		return Rejected
	default:
		return Failure
	}
}

var _ store.Repository = (*Repository)(nil)

// Repository decorates a store.Repository with operation counters and
// latency histograms.
type Repository struct {
	next    store.Repository
	metrics *Metrics
}

func NewRepository(next store.Repository, m *Metrics) *Repository {
	return &Repository{next: next, metrics: m}
}

func (r *Repository) ListAll(ctx context.Context) ([]model.Snippet, error) {
	start := time.Now()
	out, err := r.next.ListAll(ctx)
	r.metrics.Observe(store.OpList, statusOf(err), start)
	return out, err
}

func (r *Repository) GetByID(ctx context.Context, id string) (model.Snippet, error) {
	start := time.Now()
	out, err := r.next.GetByID(ctx, id)
	r.metrics.Observe(store.OpGet, statusOf(err), start)
	return out, err
}

func (r *Repository) Create(ctx context.Context, draft model.Draft) (model.Snippet, error) {
	start := time.Now()
	out, err := r.next.Create(ctx, draft)
	r.metrics.Observe(store.OpCreate, statusOf(err), start)
	return out, err
}

func (r *Repository) DeleteByID(ctx context.Context, id string) error {
	start := time.Now()
	err := r.next.DeleteByID(ctx, id)
	r.metrics.Observe(store.OpDelete, statusOf(err), start)
	return err
}
