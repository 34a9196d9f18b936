package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/lifehub/internal/middleware"
)

// EntityService はユーザー所有エンティティのCRUDサービスインターフェース。
// タスク・スケジュール・ブックマークの各サービスが実装する。
type EntityService[M any, I any] interface {
	List(ctx context.Context, userID string) ([]*M, error)
	Create(ctx context.Context, userID string, input I) (*M, error)
	Get(ctx context.Context, userID, id string) (*M, error)
	Update(ctx context.Context, userID, id string, input I) (*M, error)
	Delete(ctx context.Context, userID, id string) error
}

// EntityHandler はユーザー所有エンティティの共通CRUDハンドラー。
// 一覧・作成・取得・更新・削除の5操作をエンティティ横断で提供する。
// PUTとPATCHはいずれも部分更新として扱う（nilフィールドは既存値を維持）。
type EntityHandler[M any, I any, R any] struct {
	service    EntityService[M, I]
	toResponse func(*M) R
}

// NewEntityHandler はEntityHandlerを生成する。
// toResponseはドメインモデルからAPIレスポンスへの変換関数。
func NewEntityHandler[M any, I any, R any](service EntityService[M, I], toResponse func(*M) R) *EntityHandler[M, I, R] {
	return &EntityHandler[M, I, R]{
		service:    service,
		toResponse: toResponse,
	}
}

// RegisterRoutes はCRUDルーティングを指定されたルーターに登録する。
func (h *EntityHandler[M, I, R]) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

// List はユーザーのエンティティ一覧を返す。
// GET /
func (h *EntityHandler[M, I, R]) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	entities, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 空一覧はnullではなく[]で返す
	responses := make([]R, 0, len(entities))
	for _, entity := range entities {
		responses = append(responses, h.toResponse(entity))
	}

	writeJSONResponse(w, http.StatusOK, responses)
}

// Create はエンティティを作成する。
// POST /
func (h *EntityHandler[M, I, R]) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var input I
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	entity, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, h.toResponse(entity))
}

// Get はエンティティ詳細を返す。
// GET /{id}
func (h *EntityHandler[M, I, R]) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	entity, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, h.toResponse(entity))
}

// Update はエンティティを部分更新する。
// PUT /{id}, PATCH /{id}
func (h *EntityHandler[M, I, R]) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var input I
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	entity, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, h.toResponse(entity))
}

// Delete はエンティティを削除する。
// DELETE /{id}
func (h *EntityHandler[M, I, R]) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
