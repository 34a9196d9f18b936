// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// 初回のGoogle認証時に作成され、本システムからは削除されない。
type User struct {
	ID          string
	Username    string
	Email       string
	FirstName   string
	LastName    string
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserProfile はGoogle認証情報を含むユーザープロフィールを表す。
// ユーザーと1対1で紐付く。GoogleUserIDは一度設定されたら不変。
type UserProfile struct {
	ID           string
	UserID       string
	GoogleUserID string
	PictureURL   string
	Locale       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
