package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceExposesCollectors(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/teachers", http.StatusOK, 15*time.Millisecond)
	metrics.ObserveSheetCall("read:Enrollment", "ok", 40*time.Millisecond)
	metrics.RecordPullRow("Enrollment", "created")
	metrics.RecordPullRow("Enrollment", "created")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestTotal.WithLabelValues("GET", "/api/v1/teachers", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.sheetPullRows.WithLabelValues("Enrollment", "created")))

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["sheet_request_duration_seconds"])
	assert.True(t, names["goroutines_total"])

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sheet_pull_rows_total")
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var metrics *MetricsService
	metrics.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	metrics.RecordCacheOperation(true, time.Millisecond)
	metrics.ObserveCacheWrite(time.Millisecond)
	metrics.ObserveSheetCall("push", "ok", time.Millisecond)
	metrics.RecordPush("addTeacher", "ok")
	metrics.RecordPullRow("Enrollment", "failed")
	assert.Nil(t, metrics.Registry())

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
