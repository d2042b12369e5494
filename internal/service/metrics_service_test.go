package service

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metricValue(t *testing.T, m *MetricsService, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if !labelsMatch(metric, labels) {
				continue
			}
			switch {
			case metric.GetCounter() != nil:
				return metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				return metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				return float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func labelsMatch(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, pair := range metric.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok {
			if want != pair.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(labels)
}

func TestMetricsServiceObservePlan(t *testing.T) {
	m := NewMetricsService()

	m.ObservePlan(PlanObservation{Mode: PlanModeDiversified, Duration: 3 * time.Millisecond, Found: 5000, Capped: true, Unknown: 2})
	m.ObservePlan(PlanObservation{Mode: PlanModeDirect, Duration: time.Millisecond, Infeasible: true})

	assert.Equal(t, float64(1), metricValue(t, m, "planner_search_capped_total", map[string]string{"mode": PlanModeDiversified}))
	assert.Equal(t, float64(0), metricValue(t, m, "planner_search_capped_total", map[string]string{"mode": PlanModeDirect}))
	assert.Equal(t, float64(2), metricValue(t, m, "planner_unknown_courses_total", nil))
	assert.Equal(t, float64(1), metricValue(t, m, "planner_infeasible_total", nil))
	assert.Equal(t, float64(1), metricValue(t, m, "planner_search_duration_seconds", map[string]string{"mode": PlanModeDirect}))

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.PlansTotal)
	assert.InDelta(t, 2.0, snap.AveragePlanDurationMs, 0.001)
}

func TestMetricsServiceCacheRatio(t *testing.T) {
	m := NewMetricsService()

	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 2.0/3.0, snap.CacheHitRatio, 0.0001)
	assert.InDelta(t, 2.0/3.0, metricValue(t, m, "cache_hit_ratio", nil), 0.0001)
}

func TestMetricsServiceCatalogGauges(t *testing.T) {
	m := NewMetricsService()

	m.SetCatalogSize(42)
	m.RecordCatalogReload(true)
	m.RecordCatalogReload(false)
	m.RecordCatalogReload(false)

	assert.Equal(t, float64(42), metricValue(t, m, "catalog_courses", nil))
	assert.Equal(t, float64(2), metricValue(t, m, "catalog_reloads_total", map[string]string{"outcome": "failure"}))
	assert.Equal(t, float64(1), metricValue(t, m, "catalog_reloads_total", map[string]string{"outcome": "success"}))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService

	assert.NotPanics(t, func() {
		m.ObservePlan(PlanObservation{})
		m.ObserveHTTPRequest("GET", "/courses", 200, time.Millisecond)
		m.SetCatalogSize(1)
		m.RecordCacheOperation(true, 0)
	})
	assert.Equal(t, uint64(0), m.Snapshot().RequestsTotal)
}
