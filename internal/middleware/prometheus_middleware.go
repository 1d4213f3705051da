package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/region-host/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMiddleware регистрирует HTTP-метрики административного API.
// Каждая метрика несёт постоянную метку region — один экспортер
// обслуживает ровно один регион, и дашборды агрегируют по ней.
// Использование:
//
//	mw := middleware.NewPrometheusMiddleware("admin_api", info.RegionName)
//	r.Use(mw.Handler())
//
// Метрики:
// * http_request_duration_seconds{region,method,path,status} — histogram
// * http_requests_inflight{region} — gauge
// * http_request_errors_total{region,method,path,status} — counter (4xx/5xx)
type PrometheusMiddleware struct {
	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge
	reqErrors   *prometheus.CounterVec
}

// NewPrometheusMiddleware создаёт middleware региона и регистрирует
// метрики в дефолтном регистре.
func NewPrometheusMiddleware(service, region string) *PrometheusMiddleware {
	regionLabel := prometheus.Labels{"region": region}
	pm := &PrometheusMiddleware{
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   service,
			Name:        "http_request_duration_seconds",
			Help:        "Длительность HTTP-запросов административного API региона.",
			ConstLabels: regionLabel,
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "path", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   service,
			Name:        "http_requests_inflight",
			Help:        "Текущее количество обрабатываемых HTTP-запросов.",
			ConstLabels: regionLabel,
		}),
		reqErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   service,
			Name:        "http_request_errors_total",
			Help:        "Общее число запросов, завершившихся ошибкой (4xx/5xx).",
			ConstLabels: regionLabel,
		}, []string{"method", "path", "status"}),
	}

	prometheus.MustRegister(pm.reqDuration, pm.reqInflight, pm.reqErrors)
	return pm
}

// Handler возвращает gin.HandlerFunc, которую нужно добавить через router.Use().
func (pm *PrometheusMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		pm.reqInflight.Inc()
		c.Next()
		pm.reqInflight.Dec()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path // для не-матченных маршрутов
		}
		method := c.Request.Method

		pm.reqDuration.WithLabelValues(method, path, status).Observe(duration)

		if c.Writer.Status() >= 400 {
			pm.reqErrors.WithLabelValues(method, path, status).Inc()
		}
	}
}

// MetricsHandler возвращает HTTP-обработчик Prometheus метрик хоста
func MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// StartMetricsServer поднимает выделенный листенер Prometheus метрик
// на отдельном от административного API порту.
func StartMetricsServer(port int) *http.Server {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: MetricsHandler(),
	}
	go func() {
		logging.Info("Экспортер метрик слушает %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка сервера метрик: %v", err)
		}
	}()
	return srv
}
