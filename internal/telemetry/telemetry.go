package telemetry

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector captures events from the HTTP layer and the project store.
// Calls happen inline with requests so implementations must be cheap.
type Collector interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
	IncStoreWrite(ok bool)
	SetProjectCount(n int)
	IncBackup(ok bool)
}

type noopCollector struct{}

// Noop returns a collector that discards all metrics.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) ObserveRequest(string, string, int, time.Duration) {}
func (noopCollector) IncStoreWrite(bool)                                {}
func (noopCollector) SetProjectCount(int)                               {}
func (noopCollector) IncBackup(bool)                                    {}

// PrometheusCollector exposes the events as Prometheus metrics.
type PrometheusCollector struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	storeWrites  *prometheus.CounterVec
	projectCount prometheus.Gauge
	backups      *prometheus.CounterVec
}

// NewPrometheusCollector registers the metrics with reg, or with the
// default registerer when reg is nil.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	var c PrometheusCollector
	var err error
	if c.requests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lutstudio_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})); err != nil {
		return nil, err
	}
	if c.latency, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lutstudio_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})); err != nil {
		return nil, err
	}
	if c.storeWrites, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lutstudio_store_writes_total",
		Help: "Project list saves to the key/value store by result.",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if c.projectCount, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lutstudio_projects",
		Help: "Number of projects currently held.",
	})); err != nil {
		return nil, err
	}
	if c.backups, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lutstudio_backups_total",
		Help: "Scheduled project snapshots by result.",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	return &c, nil
}

// register reuses an already registered collector of the same name so
// that several collectors can share one registry.
func register[T prometheus.Collector](reg prometheus.Registerer, m T) (T, error) {
	if err := reg.Register(m); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return m, nil
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

func (c *PrometheusCollector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *PrometheusCollector) IncStoreWrite(ok bool) {
	c.storeWrites.WithLabelValues(result(ok)).Inc()
}

func (c *PrometheusCollector) SetProjectCount(n int) {
	c.projectCount.Set(float64(n))
}

func (c *PrometheusCollector) IncBackup(ok bool) {
	c.backups.WithLabelValues(result(ok)).Inc()
}
