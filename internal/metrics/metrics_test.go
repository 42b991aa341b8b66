package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/logs/:logID", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/logs/:logID", "418"))
	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/logs/"+id, nil))
		require.Equal(t, http.StatusTeapot, w.Code)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/logs/:logID", "418"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecordPayload(t *testing.T) {
	before := testutil.ToFloat64(payloads.WithLabelValues("ready"))
	RecordPayload("ready", 2450, 3*time.Millisecond)
	RecordPayload("", 0, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(payloads.WithLabelValues("ready"))-before)
	assert.GreaterOrEqual(t, testutil.ToFloat64(payloads.WithLabelValues("unknown")), 1.0)
}

func TestHandlerExposesRegistry(t *testing.T) {
	RecordEntryWrite("upsert")
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "smartcoach_entries_writes_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRuntimeCollectorsRegistered(t *testing.T) {
	families, err := Registry.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
	assert.True(t, names["go_memstats_alloc_bytes"])
}
