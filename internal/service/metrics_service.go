package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/course-planner-api/internal/models"
)

// Plan modes used as metric labels.
const (
	PlanModeDiversified = "diversified"
	PlanModeDirect      = "direct"
)

// PlanObservation captures the outcome of one planner run.
type PlanObservation struct {
	Mode       string
	Duration   time.Duration
	Found      int
	Returned   int
	Capped     bool
	Unknown    int
	Infeasible bool
}

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	searchDuration  *prometheus.HistogramVec
	schedulesFound  *prometheus.HistogramVec
	searchCapped    *prometheus.CounterVec
	unknownCourses  prometheus.Counter
	infeasible      prometheus.Counter
	catalogCourses  prometheus.Gauge
	catalogReloads  *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	planCount            uint64
	planDurationTotal    uint64
	dbQueryCount         uint64
}

// NewMetricsService registers core and planner Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	searchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_search_duration_seconds",
		Help:    "Duration of schedule searches",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
	}, []string{"mode"})

	schedulesFound := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_schedules_found",
		Help:    "Conflict-free schedules enumerated per search",
		Buckets: []float64{0, 1, 10, 50, 100, 150, 500, 1000, 5000},
	}, []string{"mode"})

	searchCapped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_search_capped_total",
		Help: "Searches that stopped at the enumeration cap",
	}, []string{"mode"})

	unknownCourses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planner_unknown_courses_total",
		Help: "Requested course codes missing from the catalog",
	})

	infeasible := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planner_infeasible_total",
		Help: "Requests with a course left without eligible sections",
	})

	catalogCourses := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_courses",
		Help: "Courses in the active catalog snapshot",
	})

	catalogReloads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_reloads_total",
		Help: "Catalog reload attempts by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		dbQueryDuration,
		searchDuration, schedulesFound, searchCapped, unknownCourses, infeasible,
		catalogCourses, catalogReloads,
		goroutines,
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		dbQueryDuration: dbQueryDuration,
		searchDuration:  searchDuration,
		schedulesFound:  schedulesFound,
		searchCapped:    searchCapped,
		unknownCourses:  unknownCourses,
		infeasible:      infeasible,
		catalogCourses:  catalogCourses,
		catalogReloads:  catalogReloads,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObservePlan records one planner run.
func (m *MetricsService) ObservePlan(obs PlanObservation) {
	if m == nil {
		return
	}
	mode := obs.Mode
	if mode == "" {
		mode = PlanModeDiversified
	}
	m.searchDuration.WithLabelValues(mode).Observe(obs.Duration.Seconds())
	m.schedulesFound.WithLabelValues(mode).Observe(float64(obs.Found))
	if obs.Capped {
		m.searchCapped.WithLabelValues(mode).Inc()
	}
	if obs.Unknown > 0 {
		m.unknownCourses.Add(float64(obs.Unknown))
	}
	if obs.Infeasible {
		m.infeasible.Inc()
	}
	atomic.AddUint64(&m.planCount, 1)
	atomic.AddUint64(&m.planDurationTotal, uint64(obs.Duration.Nanoseconds()))
}

// SetCatalogSize publishes the course count of the active snapshot.
func (m *MetricsService) SetCatalogSize(courses int) {
	if m == nil {
		return
	}
	m.catalogCourses.Set(float64(courses))
}

// RecordCatalogReload counts a reload attempt.
func (m *MetricsService) RecordCatalogReload(success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.catalogReloads.WithLabelValues(outcome).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
}

// Snapshot returns aggregated counters for the readiness endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	plans := atomic.LoadUint64(&m.planCount)
	planDuration := atomic.LoadUint64(&m.planDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgPlanMs float64
	if plans > 0 {
		avgPlanMs = float64(planDuration) / float64(plans) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		PlansTotal:               plans,
		AveragePlanDurationMs:    avgPlanMs,
		DBQueryCount:             atomic.LoadUint64(&m.dbQueryCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
