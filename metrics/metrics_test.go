package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordForecast(t *testing.T) {
	m := New("stockiq")

	m.RecordForecast("ok", 20*time.Millisecond, 3, 1)
	m.RecordForecast("no_data", time.Millisecond, 0, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.forecastRuns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.forecastRuns.WithLabelValues("no_data")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.productsForecast))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.productsSkipped))
}

func TestObserveRequestAndUpload(t *testing.T) {
	m := New("stockiq")

	m.ObserveRequest("GET", "/data/get/*", 404)
	m.ObserveRequest("GET", "/data/get/*", 404)
	m.RecordUpload("rejected")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/data/get/*", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("rejected")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200)
		m.RecordUpload("ok")
		m.RecordForecast("ok", time.Second, 1, 0)
	})
}

func TestHandlerExposesInstruments(t *testing.T) {
	m := New("stockiq")
	m.RecordUpload("stored")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `stockiq_uploads_total{outcome="stored"} 1`))
}
