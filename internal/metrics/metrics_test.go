package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/moviematch/internal/metrics"
)

func TestCounters(t *testing.T) {
	m := metrics.New()

	m.ObserveRPC("UpsertSwipe", "OK", 10*time.Millisecond)
	m.ObserveRPC("UpsertSwipe", "OK", 20*time.Millisecond)
	m.SwipeRecorded("yes")
	m.MatchesCreated(2)
	m.MatchesCreated(0)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.Limited("ListMovies")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RPCs.WithLabelValues("UpsertSwipe", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Swipes.WithLabelValues("yes")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Matches))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("ListMovies")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveRPC("x", "OK", time.Second)
		m.SwipeRecorded("no")
		m.MatchesCreated(1)
		m.CacheLookup(true)
		m.Limited("x")
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := metrics.New()
	m.SwipeRecorded("seen_yes")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `moviematch_swipes_total{kind="seen_yes"} 1`), body)
}
