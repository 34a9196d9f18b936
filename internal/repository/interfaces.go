// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/lifehub/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// emailの一意制約違反はIsUniqueViolationで判別できるエラーとして返す。
	Create(ctx context.Context, user *model.User) error

	// UpdateLastLogin は最終ログイン日時を更新する。
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// UserProfileRepository はユーザープロフィールの永続化インターフェース。
type UserProfileRepository interface {
	// FindByUserID は所有ユーザーIDでプロフィールを取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error)

	// Create はプロフィールを作成する。
	// user_id・google_user_idの一意制約違反はIsUniqueViolationで判別できるエラーとして返す。
	Create(ctx context.Context, profile *model.UserProfile) error

	// UpdatePictureAndLocale はプロフィール画像URLと言語設定を更新する。
	// google_user_idは不変のため更新対象に含めない。
	UpdatePictureAndLocale(ctx context.Context, userID, pictureURL, locale string) error
}

// TaskRepository はタスクデータの永続化インターフェース。
// すべての操作は所有ユーザーIDでスコープされる。
type TaskRepository interface {
	// ListByUserID はユーザーのタスク一覧を作成日時降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Task, error)

	// FindByIDAndUserID は指定IDかつ指定ユーザー所有のタスクを取得する。
	// 存在しない、または他ユーザー所有の場合はnilを返す。
	FindByIDAndUserID(ctx context.Context, id, userID string) (*model.Task, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// Update はタスクを更新する。所有ユーザーIDが一致する行のみ更新される。
	Update(ctx context.Context, task *model.Task) error

	// Delete は指定IDかつ指定ユーザー所有のタスクを削除する。
	// 削除対象が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id, userID string) (bool, error)
}

// ScheduleRepository はスケジュールデータの永続化インターフェース。
// すべての操作は所有ユーザーIDでスコープされる。
type ScheduleRepository interface {
	// ListByUserID はユーザーのスケジュール一覧を作成日時降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Schedule, error)

	// FindByIDAndUserID は指定IDかつ指定ユーザー所有のスケジュールを取得する。
	// 存在しない、または他ユーザー所有の場合はnilを返す。
	FindByIDAndUserID(ctx context.Context, id, userID string) (*model.Schedule, error)

	// Create はスケジュールを作成する。
	Create(ctx context.Context, schedule *model.Schedule) error

	// Update はスケジュールを更新する。所有ユーザーIDが一致する行のみ更新される。
	Update(ctx context.Context, schedule *model.Schedule) error

	// Delete は指定IDかつ指定ユーザー所有のスケジュールを削除する。
	// 削除対象が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id, userID string) (bool, error)
}

// BookmarkRepository はブックマークデータの永続化インターフェース。
// すべての操作は所有ユーザーIDでスコープされる。
type BookmarkRepository interface {
	// ListByUserID はユーザーのブックマーク一覧を作成日時降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Bookmark, error)

	// FindByIDAndUserID は指定IDかつ指定ユーザー所有のブックマークを取得する。
	// 存在しない、または他ユーザー所有の場合はnilを返す。
	FindByIDAndUserID(ctx context.Context, id, userID string) (*model.Bookmark, error)

	// Create はブックマークを作成する。
	Create(ctx context.Context, bookmark *model.Bookmark) error

	// Update はブックマークを更新する。所有ユーザーIDが一致する行のみ更新される。
	Update(ctx context.Context, bookmark *model.Bookmark) error

	// Delete は指定IDかつ指定ユーザー所有のブックマークを削除する。
	// 削除対象が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id, userID string) (bool, error)
}
