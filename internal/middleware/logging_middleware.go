package middleware

import (
	"time"

	"github.com/annel0/region-host/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// RequestLogger снабжает каждый запрос административного API trace-ID
// и пишет краткие логи с именем обслуживаемого региона. Имя региона
// и trace-id кладутся в контекст gin для обработчиков ниже по цепочке.
type RequestLogger struct {
	region string
	log    *logging.Logger
}

// NewRequestLogger создаёт логгер запросов для региона
func NewRequestLogger(region string) *RequestLogger {
	return &RequestLogger{
		region: region,
		log:    logging.GetAPILogger(),
	}
}

func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// trace-id берём из OpenTelemetry, если спан уже создан
		span := trace.SpanFromContext(c.Request.Context())
		var traceID string
		if span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		} else {
			traceID = uuid.NewString()
		}
		c.Set("trace_id", traceID)
		c.Set("region", rl.region)

		start := time.Now()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		clientIP := c.ClientIP()

		rl.log.Debug("[HTTP] > %s %s region=%s ip=%s trace=%s", method, path, rl.region, clientIP, traceID)

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		rl.log.Info("[HTTP] < %s %s %d %s region=%s trace=%s", method, path, status, latency, rl.region, traceID)
	}
}
