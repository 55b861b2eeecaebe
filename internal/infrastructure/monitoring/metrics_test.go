package monitoring

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

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewMetricsIsolated(t *testing.T) {
	// Separate registries must not panic on duplicate registration
	m1 := NewMetrics()
	m2 := NewMetrics()

	m1.RecordFSOperation("stat", "ok", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m1.FSOperations.WithLabelValues("stat", "ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m2.FSOperations.WithLabelValues("stat", "ok")))
}

func TestRecordExecution(t *testing.T) {
	m := NewMetrics()

	m.RecordExecution("stream", 0, 2*time.Second)
	m.RecordExecution("stream", 0, time.Second)
	m.RecordExecution("simple", 1, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Executions.WithLabelValues("stream", "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Executions.WithLabelValues("simple", "1")))
}

func TestWSConnections(t *testing.T) {
	m := NewMetrics()

	m.IncWSConnections()
	m.IncWSConnections()
	m.DecWSConnections()
	m.RecordWSMessage("in", "execute")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSConnections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSMessages.WithLabelValues("in", "execute")))
}

func TestMiddleware(t *testing.T) {
	m := NewMetrics()
	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/items/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/fail", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	for _, path := range []string{"/items/1", "/items/2", "/fail", "/nowhere"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/fail", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	snap := m.Snapshot()
	assert.Equal(t, int64(4), snap.TotalRequests)
	assert.Equal(t, int64(2), snap.TotalErrors)
	assert.GreaterOrEqual(t, snap.AvgLatencyMs, 0.0)
}

func TestHandler(t *testing.T) {
	m := NewMetrics()
	m.RecordFSOperation("readFile", "not_found", time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `dataspray_fs_operations_total{op="readFile",result="not_found"} 1`)
	assert.Contains(t, body, "dataspray_uptime_seconds")
	assert.Contains(t, body, "go_goroutines")
}
