package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// トークン種別。typクレームに格納し、アクセストークンでのリフレッシュ等の誤用を防ぐ。
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims はアクセス・リフレッシュトークンに格納するJWTクレーム。
// subに認証済みユーザーID、emailにカスタムクレームとしてメールアドレスを持つ。
type Claims struct {
	Email     string `json:"email,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenServiceConfig はJWT発行・検証の設定。
type TokenServiceConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// TokenService はHMAC-SHA256署名のJWTアクセス・リフレッシュトークンを発行・検証する。
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService はTokenServiceを生成する。
func NewTokenService(config TokenServiceConfig) *TokenService {
	return &TokenService{
		secret:     []byte(config.Secret),
		accessTTL:  config.AccessTokenTTL,
		refreshTTL: config.RefreshTokenTTL,
	}
}

// GeneratePair はユーザーに紐付くアクセス・リフレッシュトークンのペアを発行する。
func (s *TokenService) GeneratePair(userID, email string) (access, refresh string, err error) {
	access, err = s.generate(userID, email, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err = s.generate(userID, email, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return access, refresh, nil
}

// GenerateAccessToken はアクセストークンのみを発行する。リフレッシュフローで使用する。
func (s *TokenService) GenerateAccessToken(userID, email string) (string, error) {
	access, err := s.generate(userID, email, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return access, nil
}

// VerifyAccessToken はアクセストークンを検証し、ユーザーIDを返す。
func (s *TokenService) VerifyAccessToken(tokenString string) (string, error) {
	claims, err := s.verify(tokenString, tokenTypeAccess)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// VerifyRefreshToken はリフレッシュトークンを検証し、ユーザーIDを返す。
func (s *TokenService) VerifyRefreshToken(tokenString string) (string, error) {
	claims, err := s.verify(tokenString, tokenTypeRefresh)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// generate は指定種別のJWTを発行する。
func (s *TokenService) generate(userID, email, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// verify はJWTの署名・有効期限・種別を検証する。
func (s *TokenService) verify(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("unexpected token type: %s", claims.TokenType)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("empty subject claim")
	}

	return claims, nil
}
