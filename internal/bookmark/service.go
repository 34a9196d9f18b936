// Package bookmark はブックマーク管理のドメインロジックを提供する。
package bookmark

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hitoshi/lifehub/internal/model"
	"github.com/hitoshi/lifehub/internal/repository"
	"github.com/hitoshi/lifehub/internal/security"
)

// フィールドの最大文字数。
const (
	maxNameLength = 255
	maxURLLength  = 500
)

// Service はブックマークに関するビジネスロジックを提供する。
// すべての操作は認証済みユーザーIDでスコープされる。
type Service struct {
	repo  repository.BookmarkRepository
	guard security.URLGuardService
}

// NewService はServiceを生成する。
func NewService(repo repository.BookmarkRepository, guard security.URLGuardService) *Service {
	return &Service{
		repo:  repo,
		guard: guard,
	}
}

// List はユーザーのブックマーク一覧を作成日時降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Bookmark, error) {
	bookmarks, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	return bookmarks, nil
}

// Create はブックマークを検証のうえ作成する。
// 名前とURLは必須。URLはhttp/httpsの構文的に有効なURLであること。
// 検証失敗時は書き込みを行わずフィールド単位のエラーを返す。
func (s *Service) Create(ctx context.Context, userID string, input model.BookmarkInput) (*model.Bookmark, error) {
	fields := map[string]string{}

	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		fields["name"] = "名前は必須です。"
	} else if utf8.RuneCountInString(*input.Name) > maxNameLength {
		fields["name"] = fmt.Sprintf("名前は%d文字以内で入力してください。", maxNameLength)
	}

	if input.URL == nil || *input.URL == "" {
		fields["url"] = "URLは必須です。"
	} else if utf8.RuneCountInString(*input.URL) > maxURLLength {
		fields["url"] = fmt.Sprintf("URLは%d文字以内で入力してください。", maxURLLength)
	} else if err := s.guard.ValidateWebURL(*input.URL); err != nil {
		fields["url"] = "有効なURL形式（http:// または https:// で始まるURL）を入力してください。"
	}

	if len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	now := time.Now()
	bookmark := &model.Bookmark{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      *input.Name,
		URL:       *input.URL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Icon != nil {
		bookmark.Icon = *input.Icon
	}
	if input.Color != nil {
		bookmark.Color = *input.Color
	}

	if err := s.repo.Create(ctx, bookmark); err != nil {
		return nil, fmt.Errorf("failed to create bookmark: %w", err)
	}

	return bookmark, nil
}

// Get は指定IDのブックマークを返す。
// 存在しない、または他ユーザー所有の場合は存在を漏らさずNotFoundを返す。
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Bookmark, error) {
	bookmark, err := s.repo.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookmark: %w", err)
	}
	if bookmark == nil {
		return nil, model.NewBookmarkNotFoundError(id)
	}
	return bookmark, nil
}

// Update はブックマークを部分更新する。nilフィールドは既存の値を維持する。
func (s *Service) Update(ctx context.Context, userID, id string, input model.BookmarkInput) (*model.Bookmark, error) {
	bookmark, err := s.repo.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookmark: %w", err)
	}
	if bookmark == nil {
		return nil, model.NewBookmarkNotFoundError(id)
	}

	fields := map[string]string{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			fields["name"] = "名前は必須です。"
		} else if utf8.RuneCountInString(*input.Name) > maxNameLength {
			fields["name"] = fmt.Sprintf("名前は%d文字以内で入力してください。", maxNameLength)
		}
	}
	if input.URL != nil {
		if *input.URL == "" {
			fields["url"] = "URLは必須です。"
		} else if utf8.RuneCountInString(*input.URL) > maxURLLength {
			fields["url"] = fmt.Sprintf("URLは%d文字以内で入力してください。", maxURLLength)
		} else if err := s.guard.ValidateWebURL(*input.URL); err != nil {
			fields["url"] = "有効なURL形式（http:// または https:// で始まるURL）を入力してください。"
		}
	}
	if len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	if input.Name != nil {
		bookmark.Name = *input.Name
	}
	if input.URL != nil {
		bookmark.URL = *input.URL
	}
	if input.Icon != nil {
		bookmark.Icon = *input.Icon
	}
	if input.Color != nil {
		bookmark.Color = *input.Color
	}
	bookmark.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, bookmark); err != nil {
		return nil, fmt.Errorf("failed to update bookmark: %w", err)
	}

	return bookmark, nil
}

// Delete は指定IDのブックマークを削除する。
// 削除対象が存在しない場合はNotFoundを返す（再削除も同様）。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	if !deleted {
		return model.NewBookmarkNotFoundError(id)
	}
	return nil
}
