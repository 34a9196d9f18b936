package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/lifehub/internal/model"
)

// PostgresScheduleRepo はPostgreSQLを使用したスケジュールリポジトリ。
// すべてのクエリに所有ユーザーIDの条件を含める。
type PostgresScheduleRepo struct {
	db *sql.DB
}

// NewPostgresScheduleRepo はPostgresScheduleRepoを生成する。
func NewPostgresScheduleRepo(db *sql.DB) *PostgresScheduleRepo {
	return &PostgresScheduleRepo{db: db}
}

// ListByUserID はユーザーのスケジュール一覧を作成日時降順で返す。
func (r *PostgresScheduleRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Schedule, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, memo, location, date, created_at, updated_at
		 FROM schedules WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	schedules := []*model.Schedule{}
	for rows.Next() {
		schedule := &model.Schedule{}
		if err := rows.Scan(&schedule.ID, &schedule.UserID, &schedule.Title, &schedule.Memo,
			&schedule.Location, &schedule.Date, &schedule.CreatedAt, &schedule.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedules: %w", err)
	}

	return schedules, nil
}

// FindByIDAndUserID は指定IDかつ指定ユーザー所有のスケジュールを取得する。
// 存在しない、または他ユーザー所有の場合はnilを返す。
func (r *PostgresScheduleRepo) FindByIDAndUserID(ctx context.Context, id, userID string) (*model.Schedule, error) {
	schedule := &model.Schedule{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, memo, location, date, created_at, updated_at
		 FROM schedules WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&schedule.ID, &schedule.UserID, &schedule.Title, &schedule.Memo,
		&schedule.Location, &schedule.Date, &schedule.CreatedAt, &schedule.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}

	return schedule, nil
}

// Create はスケジュールを作成する。
func (r *PostgresScheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO schedules (id, user_id, title, memo, location, date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schedule.ID, schedule.UserID, schedule.Title, schedule.Memo, schedule.Location,
		schedule.Date, schedule.CreatedAt, schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}

	return nil
}

// Update はスケジュールを更新する。所有ユーザーIDが一致する行のみ更新される。
func (r *PostgresScheduleRepo) Update(ctx context.Context, schedule *model.Schedule) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE schedules SET title = $1, memo = $2, location = $3, date = $4, updated_at = $5
		 WHERE id = $6 AND user_id = $7`,
		schedule.Title, schedule.Memo, schedule.Location, schedule.Date, schedule.UpdatedAt,
		schedule.ID, schedule.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	return nil
}

// Delete は指定IDかつ指定ユーザー所有のスケジュールを削除する。
// 削除対象が存在しない場合はfalseを返す。
func (r *PostgresScheduleRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM schedules WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete schedule: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// compile-time interface check
var _ ScheduleRepository = (*PostgresScheduleRepo)(nil)
