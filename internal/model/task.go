// Package model はドメインモデルを定義する。
package model

import "time"

// Task はユーザー所有のタスクを表す。
type Task struct {
	ID        string
	UserID    string
	Title     string
	Detail    string
	Done      bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskInput はタスクの作成・更新リクエストを表す。
// nilフィールドは部分更新時に既存の値を維持する。
type TaskInput struct {
	Title  *string `json:"title"`
	Detail *string `json:"detail"`
	Done   *bool   `json:"done"`
}
