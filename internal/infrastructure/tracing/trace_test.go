package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/datasprayio/dataspray/internal/infrastructure/logging"
	"github.com/datasprayio/dataspray/internal/shared/id"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newObservedTracer() (*Tracer, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return New("test", &logging.Logger{Logger: zap.New(core)}), logs
}

func TestStartSpan(t *testing.T) {
	tracer, _ := newObservedTracer()
	defer tracer.Close()

	span, ctx := tracer.StartSpan(context.Background(), "root")
	assert.True(t, id.IsValid(string(span.TraceID)))
	assert.Empty(t, span.ParentID)
	assert.Equal(t, span.TraceID, GetTraceID(ctx))
	assert.Equal(t, span.SpanID, GetSpanID(ctx))

	child, _ := tracer.StartSpan(ctx, "child")
	assert.Equal(t, span.TraceID, child.TraceID)
	assert.Equal(t, span.SpanID, child.ParentID)
	assert.NotEqual(t, span.SpanID, child.SpanID)
}

func TestExtractTraceContext(t *testing.T) {
	valid := id.NewRequestID().String()

	traceID, spanID := ExtractTraceContext(map[string]string{
		TraceHeader: valid,
		SpanHeader:  "garbage\nwith newline",
	})
	assert.Equal(t, TraceID(valid), traceID)
	assert.Empty(t, spanID)
}

func TestHTTPMiddleware(t *testing.T) {
	tracer, logs := newObservedTracer()

	var seen TraceID
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/ok", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})
	router.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.Status(http.StatusBadRequest)
	})

	incoming := id.NewRequestID().String()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(TraceHeader, incoming)
	router.ServeHTTP(w, req)

	assert.Equal(t, incoming, w.Header().Get(TraceHeader))
	assert.NotEmpty(t, w.Header().Get(SpanHeader))
	assert.Equal(t, TraceID(incoming), seen)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.True(t, id.IsValid(w.Header().Get(TraceHeader)))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	tracer.Close()

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "Request completed", entries[0].Message)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, incoming, entries[0].ContextMap()["trace_id"])
	assert.Equal(t, "/ok", entries[0].ContextMap()["operation"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "Request failed", entries[2].Message)
}

func TestSubmitAfterClose(t *testing.T) {
	tracer, logs := newObservedTracer()
	tracer.Close()
	tracer.Close()

	span, _ := tracer.StartSpan(context.Background(), "late")
	span.Finish()
	tracer.Submit(span)

	assert.Zero(t, logs.Len())
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := &logging.Logger{Logger: zap.New(core)}

	tracer, _ := newObservedTracer()
	defer tracer.Close()
	span, ctx := tracer.StartSpan(context.Background(), "op")

	Logger(ctx, base).Info("hello")
	Logger(context.Background(), base).Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, string(span.TraceID), entries[0].ContextMap()["trace_id"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")
}
