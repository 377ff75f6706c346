package jobmetrics

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsFailure(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	tracker := metrics.Track("dashboard:warmup")
	err := tracker.End(errors.New("boom"))
	require.EqualError(t, err, "boom")

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, family := range families {
		names[family.GetName()] = true
	}
	assert.True(t, names["lns_jobs_total"])
	assert.True(t, names["lns_jobs_failures_total"])
	assert.True(t, names["lns_job_duration_seconds"])
}

// The worker serves its own scrape endpoint; the failure counter the alert
// rules watch must come through a plain promhttp handler on the registry.
func TestJobMetricsScrapeableViaPromhttp(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	_ = metrics.Track("dashboard:warmup").End(errors.New("boom"))
	metrics.AddCacheBump()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `lns_jobs_failures_total{job="dashboard:warmup"} 1`)
	assert.Contains(t, body, `lns_jobs_total{job="dashboard:warmup",status="failure"} 1`)
	assert.Contains(t, body, "lns_dashboard_cache_bumps_total 1")
}
