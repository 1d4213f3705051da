package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_SetsTraceAndRegion(t *testing.T) {
	// Каждый запрос получает trace-id и имя обслуживаемого региона
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRequestLogger("plaza").Handler())

	var traceID, region string
	r.GET("/ping", func(c *gin.Context) {
		traceID = c.GetString("trace_id")
		region = c.GetString("region")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, traceID, "trace-id должен быть присвоен запросу")
	assert.Equal(t, "plaza", region, "Имя региона доступно обработчикам ниже по цепочке")
}

func TestPrometheusMiddleware_CountsErrors(t *testing.T) {
	// Ошибки 4xx/5xx учитываются счётчиком с постоянной меткой региона
	gin.SetMode(gin.TestMode)
	pm := NewPrometheusMiddleware("admin_api_test", "plaza")

	r := gin.New()
	r.Use(pm.Handler())
	r.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	got := testutil.ToFloat64(pm.reqErrors.WithLabelValues(http.MethodGet, "/broken", "500"))
	assert.Equal(t, 1.0, got, "Запрос 5xx должен попасть в счётчик ошибок")
}

func TestMetricsHandler_ServesMetrics(t *testing.T) {
	// Выделенный обработчик метрик отвечает только на /metrics
	h := MetricsHandler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String(), "Экспортер должен отдавать текст метрик")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
