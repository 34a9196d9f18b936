package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/lifehub/internal/model"
)

// PostgresBookmarkRepo はPostgreSQLを使用したブックマークリポジトリ。
// すべてのクエリに所有ユーザーIDの条件を含める。
type PostgresBookmarkRepo struct {
	db *sql.DB
}

// NewPostgresBookmarkRepo はPostgresBookmarkRepoを生成する。
func NewPostgresBookmarkRepo(db *sql.DB) *PostgresBookmarkRepo {
	return &PostgresBookmarkRepo{db: db}
}

// ListByUserID はユーザーのブックマーク一覧を作成日時降順で返す。
func (r *PostgresBookmarkRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Bookmark, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, url, icon, color, created_at, updated_at
		 FROM bookmarks WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := []*model.Bookmark{}
	for rows.Next() {
		bookmark := &model.Bookmark{}
		if err := rows.Scan(&bookmark.ID, &bookmark.UserID, &bookmark.Name, &bookmark.URL,
			&bookmark.Icon, &bookmark.Color, &bookmark.CreatedAt, &bookmark.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, bookmark)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookmarks: %w", err)
	}

	return bookmarks, nil
}

// FindByIDAndUserID は指定IDかつ指定ユーザー所有のブックマークを取得する。
// 存在しない、または他ユーザー所有の場合はnilを返す。
func (r *PostgresBookmarkRepo) FindByIDAndUserID(ctx context.Context, id, userID string) (*model.Bookmark, error) {
	bookmark := &model.Bookmark{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, url, icon, color, created_at, updated_at
		 FROM bookmarks WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&bookmark.ID, &bookmark.UserID, &bookmark.Name, &bookmark.URL,
		&bookmark.Icon, &bookmark.Color, &bookmark.CreatedAt, &bookmark.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find bookmark: %w", err)
	}

	return bookmark, nil
}

// Create はブックマークを作成する。
func (r *PostgresBookmarkRepo) Create(ctx context.Context, bookmark *model.Bookmark) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bookmarks (id, user_id, name, url, icon, color, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		bookmark.ID, bookmark.UserID, bookmark.Name, bookmark.URL, bookmark.Icon,
		bookmark.Color, bookmark.CreatedAt, bookmark.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bookmark: %w", err)
	}

	return nil
}

// Update はブックマークを更新する。所有ユーザーIDが一致する行のみ更新される。
func (r *PostgresBookmarkRepo) Update(ctx context.Context, bookmark *model.Bookmark) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE bookmarks SET name = $1, url = $2, icon = $3, color = $4, updated_at = $5
		 WHERE id = $6 AND user_id = $7`,
		bookmark.Name, bookmark.URL, bookmark.Icon, bookmark.Color, bookmark.UpdatedAt,
		bookmark.ID, bookmark.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bookmark: %w", err)
	}

	return nil
}

// Delete は指定IDかつ指定ユーザー所有のブックマークを削除する。
// 削除対象が存在しない場合はfalseを返す。
func (r *PostgresBookmarkRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// compile-time interface check
var _ BookmarkRepository = (*PostgresBookmarkRepo)(nil)
