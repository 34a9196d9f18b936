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

	"github.com/hitoshi/lifehub/internal/auth"
	"github.com/hitoshi/lifehub/internal/middleware"
	"github.com/hitoshi/lifehub/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	authenticateFn func(ctx context.Context, idToken string) (*auth.Result, error)
	refreshFn      func(ctx context.Context, refreshToken string) (string, error)
	currentUserFn  func(ctx context.Context, userID string) (*model.User, *model.UserProfile, error)
}

func (m *mockAuthService) AuthenticateGoogle(ctx context.Context, idToken string) (*auth.Result, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, idToken)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, refreshToken)
	}
	return "", errors.New("not implemented")
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, userID string) (*model.User, *model.UserProfile, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, userID)
	}
	return nil, nil, errors.New("not implemented")
}

type mockAuthRecorder struct {
	successes int
	failures  []string
}

func (m *mockAuthRecorder) RecordAuthSuccess() {
	m.successes++
}

func (m *mockAuthRecorder) RecordAuthFailure(reason string) {
	m.failures = append(m.failures, reason)
}

// --- ヘルパー ---

func sampleUser() *model.User {
	lastLogin := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &model.User{
		ID:          "user-1",
		Username:    "hanako@example.com",
		Email:       "hanako@example.com",
		FirstName:   "花子",
		LastName:    "山田",
		LastLoginAt: &lastLogin,
	}
}

func sampleProfile() *model.UserProfile {
	return &model.UserProfile{
		ID:           "profile-1",
		UserID:       "user-1",
		GoogleUserID: "google-sub-123",
		PictureURL:   "https://example.com/photo.jpg",
		Locale:       "ja",
	}
}

// --- テスト ---

func TestGoogleAuth_Success_ReturnsTokenPairAndUser(t *testing.T) {
	service := &mockAuthService{
		authenticateFn: func(ctx context.Context, idToken string) (*auth.Result, error) {
			if idToken != "google-id-token" {
				t.Errorf("idToken = %q, want %q", idToken, "google-id-token")
			}
			return &auth.Result{
				AccessToken:  "access-jwt",
				RefreshToken: "refresh-jwt",
				User:         sampleUser(),
				Profile:      sampleProfile(),
			}, nil
		},
	}
	recorder := &mockAuthRecorder{}
	h := NewAuthHandler(service, recorder)

	body := []byte(`{"id_token":"google-id-token"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.GoogleAuth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp tokenPairResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AccessToken != "access-jwt" {
		t.Errorf("access = %q, want %q", resp.AccessToken, "access-jwt")
	}
	if resp.RefreshToken != "refresh-jwt" {
		t.Errorf("refresh = %q, want %q", resp.RefreshToken, "refresh-jwt")
	}
	if resp.User.Email != "hanako@example.com" {
		t.Errorf("user.email = %q, want %q", resp.User.Email, "hanako@example.com")
	}
	if resp.User.Profile == nil || resp.User.Profile.GoogleUserID != "google-sub-123" {
		t.Errorf("user.profile = %+v, want google_user_id google-sub-123", resp.User.Profile)
	}
	if recorder.successes != 1 {
		t.Errorf("auth success count = %d, want 1", recorder.successes)
	}
}

// TestGoogleAuth_Success_WireKeys はレスポンスのJSONキーがaccess・refresh・userであることを検証する。
// クライアントはこのキー名でトークンを読み取るため、キー名自体が契約となる。
func TestGoogleAuth_Success_WireKeys(t *testing.T) {
	service := &mockAuthService{
		authenticateFn: func(ctx context.Context, idToken string) (*auth.Result, error) {
			return &auth.Result{
				AccessToken:  "access-jwt",
				RefreshToken: "refresh-jwt",
				User:         sampleUser(),
				Profile:      sampleProfile(),
			}, nil
		},
	}
	h := NewAuthHandler(service, &mockAuthRecorder{})

	body := []byte(`{"id_token":"google-id-token"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.GoogleAuth(w, req)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, key := range []string{"access", "refresh", "user"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("response missing key %q: %s", key, w.Body.String())
		}
	}
	for _, key := range []string{"access_token", "refresh_token"} {
		if _, ok := raw[key]; ok {
			t.Errorf("response has unexpected key %q", key)
		}
	}
}

func TestGoogleAuth_MissingIDToken_Returns400WithoutServiceCall(t *testing.T) {
	service := &mockAuthService{
		authenticateFn: func(ctx context.Context, idToken string) (*auth.Result, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	recorder := &mockAuthRecorder{}
	h := NewAuthHandler(service, recorder)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()

	h.GoogleAuth(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp apiErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeInvalidRequest)
	}
	if len(recorder.failures) != 1 || recorder.failures[0] != "missing_id_token" {
		t.Errorf("failures = %v, want [missing_id_token]", recorder.failures)
	}
}

func TestGoogleAuth_InvalidToken_Returns400(t *testing.T) {
	service := &mockAuthService{
		authenticateFn: func(ctx context.Context, idToken string) (*auth.Result, error) {
			return nil, model.NewInvalidTokenError("IDトークンが無効です")
		},
	}
	recorder := &mockAuthRecorder{}
	h := NewAuthHandler(service, recorder)

	body := []byte(`{"id_token":"forged-token"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.GoogleAuth(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp apiErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeInvalidToken {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeInvalidToken)
	}
	if len(recorder.failures) != 1 || recorder.failures[0] != "invalid_token" {
		t.Errorf("failures = %v, want [invalid_token]", recorder.failures)
	}
}

func TestGoogleAuth_VerifierTransportError_Returns500(t *testing.T) {
	service := &mockAuthService{
		authenticateFn: func(ctx context.Context, idToken string) (*auth.Result, error) {
			return nil, errors.New("tokeninfo request failed: connection timeout")
		},
	}
	recorder := &mockAuthRecorder{}
	h := NewAuthHandler(service, recorder)

	body := []byte(`{"id_token":"some-token"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.GoogleAuth(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if len(recorder.failures) != 1 || recorder.failures[0] != "verification_error" {
		t.Errorf("failures = %v, want [verification_error]", recorder.failures)
	}
}

func TestRefresh_Success_ReturnsNewAccessToken(t *testing.T) {
	service := &mockAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (string, error) {
			if refreshToken != "refresh-jwt" {
				t.Errorf("refreshToken = %q, want %q", refreshToken, "refresh-jwt")
			}
			return "new-access-jwt", nil
		},
	}
	h := NewAuthHandler(service, &mockAuthRecorder{})

	body := []byte(`{"refresh":"refresh-jwt"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Refresh(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var raw map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	// キー名はaccess（access_tokenではない）
	if raw["access"] != "new-access-jwt" {
		t.Errorf("access = %q, want %q (body: %s)", raw["access"], "new-access-jwt", w.Body.String())
	}
}

func TestRefresh_InvalidToken_Returns401(t *testing.T) {
	service := &mockAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (string, error) {
			return "", model.NewInvalidTokenError("リフレッシュトークンが無効です")
		},
	}
	h := NewAuthHandler(service, &mockAuthRecorder{})

	body := []byte(`{"refresh":"expired-refresh"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Refresh(w, req)

	// 認証エンドポイントの400とは異なり、リフレッシュ失敗は401
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestMe_Success_ReturnsUserWithProfile(t *testing.T) {
	service := &mockAuthService{
		currentUserFn: func(ctx context.Context, userID string) (*model.User, *model.UserProfile, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want %q", userID, "user-1")
			}
			return sampleUser(), sampleProfile(), nil
		},
	}
	h := NewAuthHandler(service, &mockAuthRecorder{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp userResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "user-1" {
		t.Errorf("id = %q, want %q", resp.ID, "user-1")
	}
	if resp.Profile == nil || resp.Profile.Locale != "ja" {
		t.Errorf("profile = %+v, want locale ja", resp.Profile)
	}

	// 公開表現は id, username, email, 姓名, profile のみ
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := raw["last_login_at"]; ok {
		t.Error("last_login_at should not be exposed in the user representation")
	}
}

func TestMe_NoUserID_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockAuthRecorder{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestMe_UserNotFound_Returns404(t *testing.T) {
	service := &mockAuthService{
		currentUserFn: func(ctx context.Context, userID string) (*model.User, *model.UserProfile, error) {
			return nil, nil, model.NewUserNotFoundError()
		},
	}
	h := NewAuthHandler(service, &mockAuthRecorder{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "ghost-user"))
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
