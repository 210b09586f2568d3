package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveRequest("GET", 200, 5*time.Millisecond)
	m.ObserveRequest("GET", 200, time.Millisecond)
	m.ObserveRequest("GET", 500, time.Millisecond)
	m.IncMalformed()
	m.IncBadRequest()
	m.SetKeys(3)
	m.ObserveFlush(time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `mdb_requests_total{method="GET",status="200"} 2`)
	assert.Contains(t, body, `mdb_requests_total{method="GET",status="500"} 1`)
	assert.Contains(t, body, "mdb_malformed_requests_total 1")
	assert.Contains(t, body, "mdb_bad_requests_total 1")
	assert.Contains(t, body, "mdb_fatal_errors_total 0")
	assert.Contains(t, body, "mdb_store_keys 3")
	assert.Contains(t, body, "mdb_store_flush_seconds_count 1")
}

func TestMetrics_Independent(t *testing.T) {
	// Each instance has its own registry, so constructing twice must not panic.
	a, b := New(), New()
	a.IncBadRequest()
	assert.Contains(t, scrape(t, b), "mdb_bad_requests_total 0")

	families, err := a.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
