package metricsvc

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/store"
)

const namespace = "sunrise"

type Metrics struct {
	Registry      *prometheus.Registry
	HTTPRequests  *prometheus.CounterVec
	StoreOps      *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		StoreOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Data access operations by table, operation and outcome.",
		}, []string{"table", "operation", "outcome"}),
		StoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_seconds",
			Help:      "Data access latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	m.Registry.MustRegister(
		m.HTTPRequests,
		m.StoreOps,
		m.StoreDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// instrumentedStore counts and times every operation of the wrapped store.
type instrumentedStore struct {
	next store.Store
	m    *Metrics
}

var _ store.Store = (*instrumentedStore)(nil)

func InstrumentStore(next store.Store, m *Metrics) store.Store {
	return &instrumentedStore{next: next, m: m}
}

func (s *instrumentedStore) observe(op store.Operation, start time.Time, err error, tables ...string) {
	s.m.StoreDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
	for _, t := range tables {
		s.m.StoreOps.WithLabelValues(t, string(op), outcome(err)).Inc()
	}
}

func (s *instrumentedStore) FetchAll(ctx context.Context, tables []string) (map[string][]schema.Row, error) {
	start := time.Now()
	data, err := s.next.FetchAll(ctx, tables)
	s.observe(store.OpFetch, start, err, tables...)
	return data, err
}

func (s *instrumentedStore) InsertRecord(ctx context.Context, table string, values schema.Row) error {
	start := time.Now()
	err := s.next.InsertRecord(ctx, table, values)
	s.observe(store.OpInsert, start, err, table)
	return err
}

func (s *instrumentedStore) UpdateRecord(ctx context.Context, table string, row schema.Row, pkFields []string) error {
	start := time.Now()
	err := s.next.UpdateRecord(ctx, table, row, pkFields)
	s.observe(store.OpUpdate, start, err, table)
	return err
}

func (s *instrumentedStore) DeleteRecord(ctx context.Context, table string, filter schema.Row) error {
	start := time.Now()
	err := s.next.DeleteRecord(ctx, table, filter)
	s.observe(store.OpDelete, start, err, table)
	return err
}
