// Package model はドメインモデルを定義する。
package model

import "time"

// Schedule はユーザー所有のスケジュールを表す。
type Schedule struct {
	ID        string
	UserID    string
	Title     string
	Memo      string
	Location  string
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScheduleInput はスケジュールの作成・更新リクエストを表す。
// DateはRFC 3339形式の文字列で受け取り、サービス層でパース検証する。
// nilフィールドは部分更新時に既存の値を維持する。
type ScheduleInput struct {
	Title    *string `json:"title"`
	Memo     *string `json:"memo"`
	Location *string `json:"location"`
	Date     *string `json:"date"`
}
