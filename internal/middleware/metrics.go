package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// HTTPMetricsRecorder はHTTPリクエストメトリクスの記録に必要なインターフェース。
// metrics.Collectorの部分集合として定義する。
type HTTPMetricsRecorder interface {
	RecordHTTPRequest(method, path string, statusCode int)
	RecordHTTPDuration(method, path string, duration time.Duration)
}

// NewMetricsMiddleware はリクエストごとのメトリクスを記録するミドルウェアを返す。
// パスラベルにはカーディナリティ爆発を防ぐためchiのルートパターンを使用する。
func NewMetricsMiddleware(recorder HTTPMetricsRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			path := routePattern(r)
			recorder.RecordHTTPRequest(r.Method, path, rec.statusCode)
			recorder.RecordHTTPDuration(r.Method, path, time.Since(start))
		})
	}
}

// routePattern はchiのルートパターン（例: /api/tasks/{id}）を返す。
// ルーティング前のミドルウェアなど取得できない場合は生パスを返す。
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
