// Package schedule はスケジュール管理のドメインロジックを提供する。
package schedule

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

// maxTitleLength はタイトル・場所の最大文字数。
const maxTitleLength = 255

// Service はスケジュールに関するビジネスロジックを提供する。
// すべての操作は認証済みユーザーIDでスコープされる。
type Service struct {
	repo      repository.ScheduleRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceを生成する。
func NewService(repo repository.ScheduleRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// List はユーザーのスケジュール一覧を作成日時降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Schedule, error) {
	schedules, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

// Create はスケジュールを検証のうえ作成する。
// タイトルと日時は必須。日時はRFC 3339形式としてパースできること。
// 検証失敗時は書き込みを行わずフィールド単位のエラーを返す。
func (s *Service) Create(ctx context.Context, userID string, input model.ScheduleInput) (*model.Schedule, error) {
	fields := map[string]string{}

	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		fields["title"] = "タイトルは必須です。"
	} else if utf8.RuneCountInString(*input.Title) > maxTitleLength {
		fields["title"] = fmt.Sprintf("タイトルは%d文字以内で入力してください。", maxTitleLength)
	}

	var date time.Time
	if input.Date == nil || *input.Date == "" {
		fields["date"] = "日時は必須です。"
	} else {
		parsed, err := time.Parse(time.RFC3339, *input.Date)
		if err != nil {
			fields["date"] = "日時はRFC 3339形式で入力してください。"
		} else {
			date = parsed
		}
	}

	if input.Location != nil && utf8.RuneCountInString(*input.Location) > maxTitleLength {
		fields["location"] = fmt.Sprintf("場所は%d文字以内で入力してください。", maxTitleLength)
	}

	if len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	now := time.Now()
	schedule := &model.Schedule{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     *input.Title,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Memo != nil {
		schedule.Memo = s.sanitizer.Sanitize(*input.Memo)
	}
	if input.Location != nil {
		schedule.Location = *input.Location
	}

	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	return schedule, nil
}

// Get は指定IDのスケジュールを返す。
// 存在しない、または他ユーザー所有の場合は存在を漏らさずNotFoundを返す。
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Schedule, error) {
	schedule, err := s.repo.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}
	if schedule == nil {
		return nil, model.NewScheduleNotFoundError(id)
	}
	return schedule, nil
}

// Update はスケジュールを部分更新する。nilフィールドは既存の値を維持する。
func (s *Service) Update(ctx context.Context, userID, id string, input model.ScheduleInput) (*model.Schedule, error) {
	schedule, err := s.repo.FindByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}
	if schedule == nil {
		return nil, model.NewScheduleNotFoundError(id)
	}

	fields := map[string]string{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			fields["title"] = "タイトルは必須です。"
		} else if utf8.RuneCountInString(*input.Title) > maxTitleLength {
			fields["title"] = fmt.Sprintf("タイトルは%d文字以内で入力してください。", maxTitleLength)
		}
	}

	var date time.Time
	if input.Date != nil {
		parsed, err := time.Parse(time.RFC3339, *input.Date)
		if err != nil {
			fields["date"] = "日時はRFC 3339形式で入力してください。"
		} else {
			date = parsed
		}
	}

	if input.Location != nil && utf8.RuneCountInString(*input.Location) > maxTitleLength {
		fields["location"] = fmt.Sprintf("場所は%d文字以内で入力してください。", maxTitleLength)
	}

	if len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	if input.Title != nil {
		schedule.Title = *input.Title
	}
	if input.Memo != nil {
		schedule.Memo = s.sanitizer.Sanitize(*input.Memo)
	}
	if input.Location != nil {
		schedule.Location = *input.Location
	}
	if input.Date != nil {
		schedule.Date = date
	}
	schedule.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}

	return schedule, nil
}

// Delete は指定IDのスケジュールを削除する。
// 削除対象が存在しない場合はNotFoundを返す（再削除も同様）。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if !deleted {
		return model.NewScheduleNotFoundError(id)
	}
	return nil
}
