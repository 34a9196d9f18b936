// Package model はドメインモデルを定義する。
package model

import "time"

// Bookmark はユーザー所有のブックマークを表す。
type Bookmark struct {
	ID        string
	UserID    string
	Name      string
	URL       string
	Icon      string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookmarkInput はブックマークの作成・更新リクエストを表す。
// nilフィールドは部分更新時に既存の値を維持する。
type BookmarkInput struct {
	Name  *string `json:"name"`
	URL   *string `json:"url"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}
