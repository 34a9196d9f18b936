package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// ErrInvalidIDToken はIDトークン自体が拒否されたことを示す。
// 署名不正・期限切れ・audience不一致・形式不正のいずれも本エラーにラップされる。
// 検証エンドポイントへの到達失敗などの一時的な障害はラップされない。
var ErrInvalidIDToken = errors.New("invalid ID token")

// GoogleClaims は検証済みIDトークンから抽出したクレームを表す。
type GoogleClaims struct {
	Sub     string // GoogleユーザーID。メールアドレスが変わっても不変
	Email   string
	Name    string
	Picture string
	Locale  string
}

// TokenVerifier は外部IdPのIDトークン検証のインターフェース。
// 将来的に複数IdP（Google, GitHub等）に対応するための抽象化。
type TokenVerifier interface {
	// Verify はIDトークンを検証し、クレームを返す。
	// トークンが拒否された場合はErrInvalidIDTokenをラップしたエラーを返す。
	Verify(ctx context.Context, idToken string) (*GoogleClaims, error)
}

// GoogleVerifierConfig はGoogle IDトークン検証の設定。
type GoogleVerifierConfig struct {
	ClientID string

	// テスト用にオーバーライド可能なURL
	TokenInfoURL string
}

// GoogleTokenVerifier はGoogleのtokeninfoエンドポイントを使用したIDトークン検証を提供する。
// 署名検証はGoogle側に委譲し、audienceと有効期限はローカルで検証する。
type GoogleTokenVerifier struct {
	config GoogleVerifierConfig
	client *http.Client
}

// NewGoogleTokenVerifier はGoogleTokenVerifierを生成する。
func NewGoogleTokenVerifier(config GoogleVerifierConfig) *GoogleTokenVerifier {
	if config.TokenInfoURL == "" {
		config.TokenInfoURL = defaultTokenInfoURL
	}
	return &GoogleTokenVerifier{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// tokenInfoResponse はGoogleのtokeninfoエンドポイントのレスポンス。
// expは秒単位のUNIX時刻だが文字列として返される。
type tokenInfoResponse struct {
	Aud     string `json:"aud"`
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Locale  string `json:"locale"`
	Exp     string `json:"exp"`
}

// Verify はIDトークンをtokeninfoエンドポイントで検証し、クレームを返す。
func (v *GoogleTokenVerifier) Verify(ctx context.Context, idToken string) (*GoogleClaims, error) {
	// 1. tokeninfoエンドポイントで署名を検証
	info, err := v.fetchTokenInfo(ctx, idToken)
	if err != nil {
		return nil, err
	}

	// 2. audienceの検証: 本アプリケーションのクライアントID宛てであること
	if info.Aud != v.config.ClientID {
		return nil, fmt.Errorf("audience mismatch: %s: %w", info.Aud, ErrInvalidIDToken)
	}

	// 3. 有効期限の検証
	exp, err := strconv.ParseInt(info.Exp, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed exp claim: %w", ErrInvalidIDToken)
	}
	if time.Now().After(time.Unix(exp, 0)) {
		return nil, fmt.Errorf("token expired: %w", ErrInvalidIDToken)
	}

	if info.Sub == "" {
		return nil, fmt.Errorf("empty sub claim: %w", ErrInvalidIDToken)
	}

	// localeクレームは省略されることがあるため既定値はja
	locale := info.Locale
	if locale == "" {
		locale = "ja"
	}

	return &GoogleClaims{
		Sub:     info.Sub,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
		Locale:  locale,
	}, nil
}

// fetchTokenInfo はtokeninfoエンドポイントにIDトークンを送信し、結果をパースする。
// Googleがトークンを拒否した場合（4xx）はErrInvalidIDTokenをラップして返す。
func (v *GoogleTokenVerifier) fetchTokenInfo(ctx context.Context, idToken string) (*tokenInfoResponse, error) {
	endpoint := v.config.TokenInfoURL + "?" + url.Values{"id_token": {idToken}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokeninfo response: %w", err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, fmt.Errorf("tokeninfo rejected token with status %d: %w", resp.StatusCode, ErrInvalidIDToken)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo failed with status %d: %s", resp.StatusCode, string(body))
	}

	var info tokenInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse tokeninfo response: %w", err)
	}

	return &info, nil
}

// compile-time interface check
var _ TokenVerifier = (*GoogleTokenVerifier)(nil)
