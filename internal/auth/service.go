// Package auth はGoogle IDトークン認証とJWTアクセス・リフレッシュトークンの発行を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/lifehub/internal/model"
	"github.com/hitoshi/lifehub/internal/repository"
)

// TokenIssuer はJWT発行のインターフェース。
// TokenServiceの部分集合として定義し、テストでのモック差し替えを可能にする。
type TokenIssuer interface {
	GeneratePair(userID, email string) (access, refresh string, err error)
	GenerateAccessToken(userID, email string) (string, error)
	VerifyRefreshToken(tokenString string) (string, error)
}

// Result は認証成功時のトークンペアとユーザー情報を表す。
type Result struct {
	AccessToken  string
	RefreshToken string
	User         *model.User
	Profile      *model.UserProfile
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	verifier    TokenVerifier
	tokens      TokenIssuer
	userRepo    repository.UserRepository
	profileRepo repository.UserProfileRepository
}

// NewService はServiceを生成する。
func NewService(
	verifier TokenVerifier,
	tokens TokenIssuer,
	userRepo repository.UserRepository,
	profileRepo repository.UserProfileRepository,
) *Service {
	return &Service{
		verifier:    verifier,
		tokens:      tokens,
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

// AuthenticateGoogle はGoogleのIDトークンを検証し、トークンペアを発行する。
// 未登録ユーザーの場合はusersレコードとuser_profilesレコードを自動作成する。
// 登録済みユーザーの場合はemailで既存ユーザーを特定し、
// プロフィールの画像URL・言語設定を最新のクレームで更新する。
// IDトークンが空の場合はDBに一切触れずにエラーを返す。
func (s *Service) AuthenticateGoogle(ctx context.Context, idToken string) (*Result, error) {
	// 1. 入力検証: トークン未指定は即時エラー
	if idToken == "" {
		return nil, model.NewInvalidRequestError("id_tokenは必須です")
	}

	// 2. IDトークンを検証しクレームを取得
	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, ErrInvalidIDToken) {
			slog.Warn("ID token rejected", slog.String("error", err.Error()))
			return nil, model.NewInvalidTokenError("IDトークンが無効です")
		}
		// 検証エンドポイント自体の障害は内部エラーとして扱う
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	// 3. emailは識別に必須
	if claims.Email == "" {
		return nil, model.NewInvalidTokenError("トークンにemailが含まれていません")
	}

	// 4. ユーザーをemailでUPSERT
	user, err := s.upsertUser(ctx, claims)
	if err != nil {
		return nil, err
	}

	// 5. プロフィールをユーザーIDでUPSERT
	profile, err := s.upsertProfile(ctx, user.ID, claims)
	if err != nil {
		return nil, err
	}

	// 6. 最終ログイン日時を記録
	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLoginAt = &now

	// 7. トークンペアを発行
	access, refresh, err := s.tokens.GeneratePair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token pair: %w", err)
	}

	return &Result{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
		Profile:      profile,
	}, nil
}

// RefreshAccessToken はリフレッシュトークンを検証し、新しいアクセストークンを発行する。
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", model.NewInvalidRequestError("refreshは必須です")
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		slog.Warn("refresh token rejected", slog.String("error", err.Error()))
		return "", model.NewInvalidTokenError("リフレッシュトークンが無効です")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return "", model.NewInvalidTokenError("ユーザーが存在しません")
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return access, nil
}

// GetCurrentUser は認証済みユーザーIDからユーザーとプロフィールを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*model.User, *model.UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil, model.NewUserNotFoundError()
	}

	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return user, profile, nil
}

// upsertUser はemailでユーザーを検索し、存在しなければ作成する。
// usernameはemail、姓名は表示名クレームを分割して初期化する。
// 同一identityの初回認証が並行した場合、emailの一意制約で敗者のINSERTが
// 拒否されるため、一意制約違反時は勝者の行を再取得して続行する。
func (s *Service) upsertUser(ctx context.Context, claims *GoogleClaims) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user != nil {
		return user, nil
	}

	firstName, lastName := splitDisplayName(claims.Name)
	now := time.Now()
	newUser := &model.User{
		ID:        uuid.New().String(),
		Username:  claims.Email,
		Email:     claims.Email,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if repository.IsUniqueViolation(err) {
			// 並行した初回認証の敗者側: 勝者が作成した行を再取得する
			existing, findErr := s.userRepo.FindByEmail(ctx, claims.Email)
			if findErr != nil {
				return nil, fmt.Errorf("failed to refetch user after conflict: %w", findErr)
			}
			if existing == nil {
				return nil, model.NewConflictError("ユーザー作成が競合しました")
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user created",
		slog.String("user_id", newUser.ID),
		slog.String("email", newUser.Email),
	)

	return newUser, nil
}

// upsertProfile は所有ユーザーIDでプロフィールを検索し、
// 存在しなければクレームから作成、存在すれば画像URLと言語設定を更新する。
// google_user_idは不変のため既存プロフィールでは上書きしない。
func (s *Service) upsertProfile(ctx context.Context, userID string, claims *GoogleClaims) (*model.UserProfile, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	if profile == nil {
		now := time.Now()
		newProfile := &model.UserProfile{
			ID:           uuid.New().String(),
			UserID:       userID,
			GoogleUserID: claims.Sub,
			PictureURL:   claims.Picture,
			Locale:       claims.Locale,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := s.profileRepo.Create(ctx, newProfile); err != nil {
			if repository.IsUniqueViolation(err) {
				existing, findErr := s.profileRepo.FindByUserID(ctx, userID)
				if findErr != nil {
					return nil, fmt.Errorf("failed to refetch profile after conflict: %w", findErr)
				}
				if existing == nil {
					return nil, model.NewConflictError("プロフィール作成が競合しました")
				}
				profile = existing
			} else {
				return nil, fmt.Errorf("failed to create profile: %w", err)
			}
		} else {
			return newProfile, nil
		}
	}

	// 既存プロフィール: 画像URLと言語設定を最新クレームで更新
	if err := s.profileRepo.UpdatePictureAndLocale(ctx, userID, claims.Picture, claims.Locale); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	profile.PictureURL = claims.Picture
	profile.Locale = claims.Locale

	return profile, nil
}

// splitDisplayName は表示名を姓名に分割する。
// 先頭トークンをfirst name、残りを結合してlast nameとする。
func splitDisplayName(name string) (firstName, lastName string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	if len(fields) == 1 {
		return fields[0], ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// compile-time interface check
var _ TokenIssuer = (*TokenService)(nil)
