package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hitoshi/lifehub/internal/auth"
	"github.com/hitoshi/lifehub/internal/middleware"
	"github.com/hitoshi/lifehub/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// AuthenticateGoogle はGoogle IDトークンを検証し、ユーザーを作成または更新のうえトークンペアを発行する。
	AuthenticateGoogle(ctx context.Context, idToken string) (*auth.Result, error)
	// RefreshAccessToken はリフレッシュトークンから新しいアクセストークンを発行する。
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	// GetCurrentUser は認証済みユーザーの情報を取得する。
	GetCurrentUser(ctx context.Context, userID string) (*model.User, *model.UserProfile, error)
}

// AuthMetricsRecorder は認証の成否メトリクス記録に必要なインターフェース。
// metrics.Collectorの部分集合として定義する。
type AuthMetricsRecorder interface {
	RecordAuthSuccess()
	RecordAuthFailure(reason string)
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	recorder AuthMetricsRecorder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, recorder AuthMetricsRecorder) *AuthHandler {
	return &AuthHandler{
		service:  service,
		recorder: recorder,
	}
}

// googleAuthRequest はGoogle認証リクエストのボディ。
type googleAuthRequest struct {
	IDToken string `json:"id_token"`
}

// refreshRequest はトークンリフレッシュリクエストのボディ。
type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// tokenPairResponse はGoogle認証成功時のレスポンス。
type tokenPairResponse struct {
	AccessToken  string       `json:"access"`
	RefreshToken string       `json:"refresh"`
	User         userResponse `json:"user"`
}

// accessTokenResponse はトークンリフレッシュ成功時のレスポンス。
type accessTokenResponse struct {
	AccessToken string `json:"access"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID        string           `json:"id"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Profile   *profileResponse `json:"profile,omitempty"`
}

// profileResponse はユーザープロフィールのAPIレスポンス。
type profileResponse struct {
	GoogleUserID string `json:"google_user_id"`
	PictureURL   string `json:"picture_url"`
	Locale       string `json:"locale"`
}

// GoogleAuth はGoogle IDトークンによる認証を処理する。
// POST /api/auth/google
func (h *AuthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	var req googleAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	if req.IDToken == "" {
		h.recorder.RecordAuthFailure("missing_id_token")
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("id_tokenは必須です"))
		return
	}

	result, err := h.service.AuthenticateGoogle(r.Context(), req.IDToken)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeInvalidToken {
			h.recorder.RecordAuthFailure("invalid_token")
		} else {
			h.recorder.RecordAuthFailure("verification_error")
		}
		handleServiceError(w, err)
		return
	}

	h.recorder.RecordAuthSuccess()
	writeJSONResponse(w, http.StatusOK, tokenPairResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         toUserResponse(result.User, result.Profile),
	})
}

// Refresh はリフレッシュトークンから新しいアクセストークンを発行する。
// 無効なリフレッシュトークンには401を返す（認証エンドポイントの400とは異なる）。
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBodyResponse(w)
		return
	}

	access, err := h.service.RefreshAccessToken(r.Context(), req.Refresh)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeInvalidToken {
			writeAPIErrorResponse(w, http.StatusUnauthorized, apiErr)
			return
		}
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, accessTokenResponse{AccessToken: access})
}

// Me は認証済みユーザーの情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	user, profile, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toUserResponse(user, profile))
}

// toUserResponse はユーザーとプロフィールからAPIレスポンスに変換する。
func toUserResponse(user *model.User, profile *model.UserProfile) userResponse {
	resp := userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if profile != nil {
		resp.Profile = &profileResponse{
			GoogleUserID: profile.GoogleUserID,
			PictureURL:   profile.PictureURL,
			Locale:       profile.Locale,
		}
	}
	return resp
}
