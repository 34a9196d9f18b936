package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/lifehub/internal/model"
)

// PostgresProfileRepo はPostgreSQLを使用したユーザープロフィールリポジトリ。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

// FindByUserID は所有ユーザーIDでプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	profile := &model.UserProfile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, google_user_id, picture_url, locale, created_at, updated_at
		 FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(&profile.ID, &profile.UserID, &profile.GoogleUserID, &profile.PictureURL,
		&profile.Locale, &profile.CreatedAt, &profile.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by user ID: %w", err)
	}

	return profile, nil
}

// Create はプロフィールを作成する。
// user_id・google_user_idの一意制約違反はそのまま返し、
// 呼び出し側でIsUniqueViolationにより判別する。
func (r *PostgresProfileRepo) Create(ctx context.Context, profile *model.UserProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_profiles (id, user_id, google_user_id, picture_url, locale, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		profile.ID, profile.UserID, profile.GoogleUserID, profile.PictureURL,
		profile.Locale, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	return nil
}

// UpdatePictureAndLocale はプロフィール画像URLと言語設定を更新する。
// google_user_idは不変のため更新しない。
func (r *PostgresProfileRepo) UpdatePictureAndLocale(ctx context.Context, userID, pictureURL, locale string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE user_profiles SET picture_url = $1, locale = $2, updated_at = $3 WHERE user_id = $4`,
		pictureURL, locale, time.Now(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}

// compile-time interface check
var _ UserProfileRepository = (*PostgresProfileRepo)(nil)
