package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/lifehub/internal/middleware"
	"github.com/hitoshi/lifehub/internal/model"
)

// --- モック定義 ---

type mockTaskService struct {
	listFn   func(ctx context.Context, userID string) ([]*model.Task, error)
	createFn func(ctx context.Context, userID string, input model.TaskInput) (*model.Task, error)
	getFn    func(ctx context.Context, userID, id string) (*model.Task, error)
	updateFn func(ctx context.Context, userID, id string, input model.TaskInput) (*model.Task, error)
	deleteFn func(ctx context.Context, userID, id string) error
}

func (m *mockTaskService) List(ctx context.Context, userID string) ([]*model.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockTaskService) Create(ctx context.Context, userID string, input model.TaskInput) (*model.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, input)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskService) Get(ctx context.Context, userID, id string) (*model.Task, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskService) Update(ctx context.Context, userID, id string, input model.TaskInput) (*model.Task, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, id, input)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskService) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return errors.New("not implemented")
}

// --- ヘルパー ---

func newTaskRouter(service EntityService[model.Task, model.TaskInput]) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/tasks", NewTaskHandler(service).RegisterRoutes)
	return r
}

func authedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))
}

func sampleTask() *model.Task {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &model.Task{
		ID:        "task-1",
		UserID:    "user-1",
		Title:     "牛乳を買う",
		Detail:    "帰り道に",
		Done:      false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// --- テスト ---

func TestEntityHandler_List_ReturnsTasks(t *testing.T) {
	service := &mockTaskService{
		listFn: func(ctx context.Context, userID string) ([]*model.Task, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want %q", userID, "user-1")
			}
			return []*model.Task{sampleTask()}, nil
		},
	}
	router := newTaskRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/tasks", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body) != 1 {
		t.Fatalf("expected 1 task, got %d", len(body))
	}
	if body[0]["title"] != "牛乳を買う" {
		t.Errorf("title = %v, want 牛乳を買う", body[0]["title"])
	}
}

func TestEntityHandler_List_Empty_ReturnsEmptyArray(t *testing.T) {
	service := &mockTaskService{
		listFn: func(ctx context.Context, userID string) ([]*model.Task, error) {
			return nil, nil
		},
	}
	router := newTaskRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/tasks", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	// nullではなく[]であること
	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want %q", got, "[]\n")
	}
}

func TestEntityHandler_List_NoUserID_Returns401(t *testing.T) {
	router := newTaskRouter(&mockTaskService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestEntityHandler_Create_Returns201(t *testing.T) {
	service := &mockTaskService{
		createFn: func(ctx context.Context, userID string, input model.TaskInput) (*model.Task, error) {
			if input.Title == nil || *input.Title != "牛乳を買う" {
				t.Errorf("input.Title = %v, want 牛乳を買う", input.Title)
			}
			return sampleTask(), nil
		},
	}
	router := newTaskRouter(service)

	body := []byte(`{"title":"牛乳を買う","detail":"帰り道に"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/tasks", body))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["id"] != "task-1" {
		t.Errorf("id = %v, want task-1", resp["id"])
	}
}

func TestEntityHandler_Create_InvalidJSON_Returns400(t *testing.T) {
	router := newTaskRouter(&mockTaskService{
		createFn: func(ctx context.Context, userID string, input model.TaskInput) (*model.Task, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/tasks", []byte(`{invalid`)))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestEntityHandler_Create_ValidationError_Returns400WithFields(t *testing.T) {
	service := &mockTaskService{
		createFn: func(ctx context.Context, userID string, input model.TaskInput) (*model.Task, error) {
			return nil, model.NewValidationError(map[string]string{"title": "タイトルは必須です。"})
		},
	}
	router := newTaskRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/tasks", []byte(`{}`)))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp apiErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeValidation {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeValidation)
	}
	if resp.Fields["title"] == "" {
		t.Error("expected field-level message for title")
	}
}

func TestEntityHandler_Get_ReturnsTask(t *testing.T) {
	service := &mockTaskService{
		getFn: func(ctx context.Context, userID, id string) (*model.Task, error) {
			if id != "task-1" {
				t.Errorf("id = %q, want task-1", id)
			}
			return sampleTask(), nil
		},
	}
	router := newTaskRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/tasks/task-1", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestEntityHandler_Get_NotFound_Returns404(t *testing.T) {
	service := &mockTaskService{
		getFn: func(ctx context.Context, userID, id string) (*model.Task, error) {
			return nil, model.NewTaskNotFoundError(id)
		},
	}
	router := newTaskRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/tasks/other-users-task", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	var resp apiErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeTaskNotFound {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeTaskNotFound)
	}
}

func TestEntityHandler_Update_PutAndPatch_BothWork(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		called := false
		service := &mockTaskService{
			updateFn: func(ctx context.Context, userID, id string, input model.TaskInput) (*model.Task, error) {
				called = true
				return sampleTask(), nil
			},
		}
		router := newTaskRouter(service)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(method, "/api/tasks/task-1", []byte(`{"done":true}`)))

		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", method, w.Code, http.StatusOK)
		}
		if !called {
			t.Errorf("%s: service not called", method)
		}
	}
}

func TestEntityHandler_Delete_Returns204(t *testing.T) {
	service := &mockTaskService{
		deleteFn: func(ctx context.Context, userID, id string) error {
			return nil
		},
	}
	router := newTaskRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodDelete, "/api/tasks/task-1", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestEntityHandler_Delete_NotFound_Returns404(t *testing.T) {
	service := &mockTaskService{
		deleteFn: func(ctx context.Context, userID, id string) error {
			return model.NewTaskNotFoundError(id)
		},
	}
	router := newTaskRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodDelete, "/api/tasks/task-1", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestEntityHandler_UnexpectedError_Returns500Generic(t *testing.T) {
	service := &mockTaskService{
		listFn: func(ctx context.Context, userID string) ([]*model.Task, error) {
			return nil, errors.New("pq: connection refused")
		},
	}
	router := newTaskRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/tasks", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	var resp apiErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeInternal {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeInternal)
	}
	// 内部詳細が漏れていないこと
	if resp.Message == "pq: connection refused" {
		t.Error("internal error details leaked to response")
	}
}
