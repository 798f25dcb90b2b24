package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"simplemercari/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// =============================================================================
// 1. Logging Middleware (结构化日志)
// =============================================================================

// statusRecorder 包装 ResponseWriter，记录状态码和写出的字节数
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

// Unwrap 让 http.ResponseController 能找到底层的 ResponseWriter
func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// LoggingMiddleware 每个请求一条日志；4xx 记 Warn，5xx 记 Error
func LoggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rw, r)

		if rw.status == 0 {
			rw.status = http.StatusOK
		}
		level := slog.LevelInfo
		switch {
		case rw.status >= 500:
			level = slog.LevelError
		case rw.status >= 400:
			level = slog.LevelWarn
		}

		logger.Log(r.Context(), level, "HTTP Request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rw.status),
			slog.Int64("bytes", rw.bytes),
			slog.Duration("dur", time.Since(start)),
			slog.String("remote", r.RemoteAddr),
		)
	})
}

// =============================================================================
// 2. Recovery Middleware (防弹衣)
// =============================================================================

// RecoveryMiddleware 捕获 handler 里的 panic，返回 500 而不是断开连接
func RecoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}
			// 打印堆栈信息，方便调试
			logger.Error("🔥 PANIC RECOVERED",
				slog.Any("panic", p),
				slog.String("path", r.URL.Path),
				slog.String("stack", string(debug.Stack())),
			)
			writeError(w, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		}()
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// 3. Metrics
// =============================================================================

// instrument 给单个路由挂上 Prometheus 指标，route 作为固定 label
func instrument(route string, h http.HandlerFunc) http.Handler {
	labels := prometheus.Labels{"route": route}
	return promhttp.InstrumentHandlerDuration(
		metrics.HTTPRequestDuration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(
			metrics.HTTPRequestsTotal.MustCurryWith(labels),
			promhttp.InstrumentHandlerInFlight(metrics.HTTPRequestsInFlight, h),
		),
	)
}
