package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/lifehub/internal/model"
)

// bookmarkResponse はブックマークのAPIレスポンス。
type bookmarkResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBookmarkHandler はブックマークCRUDのEntityHandlerを生成する。
func NewBookmarkHandler(service EntityService[model.Bookmark, model.BookmarkInput]) *EntityHandler[model.Bookmark, model.BookmarkInput, bookmarkResponse] {
	return NewEntityHandler(service, toBookmarkResponse)
}

// toBookmarkResponse はmodel.BookmarkからAPIレスポンスに変換する。
func toBookmarkResponse(bookmark *model.Bookmark) bookmarkResponse {
	return bookmarkResponse{
		ID:        bookmark.ID,
		Name:      bookmark.Name,
		URL:       bookmark.URL,
		Icon:      bookmark.Icon,
		Color:     bookmark.Color,
		CreatedAt: bookmark.CreatedAt,
		UpdatedAt: bookmark.UpdatedAt,
	}
}

// FaviconResolverInterface はファビコン解決ハンドラーが必要とするサービスインターフェース。
type FaviconResolverInterface interface {
	// ResolveFaviconURL はサイトURLからファビコンURLを解決する。
	ResolveFaviconURL(ctx context.Context, siteURL string) (string, error)
}

// FaviconHandler はブックマーク登録補助のファビコン解決ハンドラー。
type FaviconHandler struct {
	resolver FaviconResolverInterface
}

// NewFaviconHandler はFaviconHandlerを生成する。
func NewFaviconHandler(resolver FaviconResolverInterface) *FaviconHandler {
	return &FaviconHandler{resolver: resolver}
}

// faviconResponse はファビコン解決のAPIレスポンス。
type faviconResponse struct {
	IconURL string `json:"icon_url"`
}

// ResolveFavicon はサイトURLからファビコンURLを解決する。
// GET /api/bookmarks/favicon?url=...
func (h *FaviconHandler) ResolveFavicon(w http.ResponseWriter, r *http.Request) {
	siteURL := r.URL.Query().Get("url")
	if siteURL == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError(map[string]string{"url": "URLは必須です。"}))
		return
	}

	iconURL, err := h.resolver.ResolveFaviconURL(r.Context(), siteURL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, faviconResponse{IconURL: iconURL})
}
