// Package task はタスク管理のドメインロジックを提供する。
package task

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

// maxTitleLength はタイトルの最大文字数。
const maxTitleLength = 255

// Service はタスクに関するビジネスロジックを提供する。
// すべての操作は認証済みユーザーIDでスコープされる。
type Service struct {
	repo      repository.TaskRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceを生成する。
func NewService(repo repository.TaskRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// List はユーザーのタスク一覧を作成日時降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Task, error) {
	tasks, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Create はタスクを検証のうえ作成する。
// タイトルは必須。検証失敗時は書き込みを行わずフィールド単位のエラーを返す。
func (s *Service) Create(ctx context.Context, userID string, input model.TaskInput) (*model.Task, error) {
	fields := map[string]string{}

	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		fields["title"] = "タイトルは必須です。"
	} else if utf8.RuneCountInString(*input.Title) > maxTitleLength {
		fields["title"] = fmt.Sprintf("タイトルは%d文字以内で入力してください。", maxTitleLength)
	}

	if len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	now := time.Now()
	task := &model.Task{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     *input.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Detail != nil {
		task.Detail = s.sanitizer.Sanitize(*input.Detail)
	}
	if input.Done != nil {
		task.Done = *input.Done
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// Get は指定IDのタスクを返す。
// 存在しない、または他ユーザー所有の場合は存在を漏らさずNotFoundを返す。
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Task, error) {
	task, err := s.repo.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError(id)
	}
	return task, nil
}

// Update はタスクを部分更新する。nilフィールドは既存の値を維持する。
func (s *Service) Update(ctx context.Context, userID, id string, input model.TaskInput) (*model.Task, error) {
	task, err := s.repo.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError(id)
	}

	fields := map[string]string{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			fields["title"] = "タイトルは必須です。"
		} else if utf8.RuneCountInString(*input.Title) > maxTitleLength {
			fields["title"] = fmt.Sprintf("タイトルは%d文字以内で入力してください。", maxTitleLength)
		}
	}
	if len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Detail != nil {
		task.Detail = s.sanitizer.Sanitize(*input.Detail)
	}
	if input.Done != nil {
		task.Done = *input.Done
	}
	task.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// Delete は指定IDのタスクを削除する。
// 削除対象が存在しない場合はNotFoundを返す（再削除も同様）。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !deleted {
		return model.NewTaskNotFoundError(id)
	}
	return nil
}
