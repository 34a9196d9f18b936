package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

// --- モック定義 ---

type mockMetricsRecorder struct {
	requests  []recordedRequest
	durations []recordedDuration
}

type recordedRequest struct {
	method     string
	path       string
	statusCode int
}

type recordedDuration struct {
	method string
	path   string
}

func (m *mockMetricsRecorder) RecordHTTPRequest(method, path string, statusCode int) {
	m.requests = append(m.requests, recordedRequest{method, path, statusCode})
}

func (m *mockMetricsRecorder) RecordHTTPDuration(method, path string, duration time.Duration) {
	m.durations = append(m.durations, recordedDuration{method, path})
}

// --- テスト ---

func TestMetricsMiddleware_RecordsRequestAndDuration(t *testing.T) {
	recorder := &mockMetricsRecorder{}
	mw := NewMetricsMiddleware(recorder)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if len(recorder.requests) != 1 {
		t.Fatalf("expected 1 recorded request, got %d", len(recorder.requests))
	}
	got := recorder.requests[0]
	if got.method != http.MethodPost || got.path != "/api/tasks" || got.statusCode != http.StatusCreated {
		t.Errorf("recorded request = %+v, want POST /api/tasks 201", got)
	}
	if len(recorder.durations) != 1 {
		t.Fatalf("expected 1 recorded duration, got %d", len(recorder.durations))
	}
}

// TestMetricsMiddleware_UsesChiRoutePattern はパスラベルにchiのルートパターンが使われることを検証する。
// IDごとにラベルが分かれるとカーディナリティが爆発するため。
func TestMetricsMiddleware_UsesChiRoutePattern(t *testing.T) {
	recorder := &mockMetricsRecorder{}

	r := chi.NewRouter()
	r.Route("/api/tasks", func(r chi.Router) {
		r.With(NewMetricsMiddleware(recorder)).Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/task-123", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if len(recorder.requests) != 1 {
		t.Fatalf("expected 1 recorded request, got %d", len(recorder.requests))
	}
	if got := recorder.requests[0].path; got != "/api/tasks/{id}" {
		t.Errorf("recorded path = %q, want %q", got, "/api/tasks/{id}")
	}
}
