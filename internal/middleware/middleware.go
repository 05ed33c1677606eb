package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	httpRequestsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "osbootd_http_requests_total",
		Help: "Number of HTTP requests by method and status code",
	}, []string{"method", "code"})
	httpBytesOutMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "osbootd_http_response_bytes_total",
		Help: "Total bytes written in HTTP response bodies",
	})
)

// responseWrapper wraps http.ResponseWriter to capture status code and
// body size for logging and metrics.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
	bytesOut   int
}

func (w *responseWrapper) Write(data []byte) (int, error) {
	n, err := w.ResponseWriter.Write(data)
	w.bytesOut += n
	return n, err
}

func (w *responseWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// AccessLog logs every request with structured fields and tags the
// response with a generated request ID.
func AccessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()
			w.Header().Set("X-Request-Id", requestID)

			wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(wrapper, r)

			logger.Info("HTTP request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("status", wrapper.statusCode),
				zap.Int("bytes_out", wrapper.bytesOut),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}

// Metrics records per-request Prometheus counters.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		httpRequestsMetric.WithLabelValues(r.Method, strconv.Itoa(wrapper.statusCode)).Inc()
		httpBytesOutMetric.Add(float64(wrapper.bytesOut))
	})
}

// SecurityHeaders adds response headers appropriate for a file-serving
// service.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}
