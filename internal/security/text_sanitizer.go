// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はタスクの詳細やスケジュールのメモなど、
// ユーザーが入力する自由記述テキストをサニタイズし、
// 保存データ経由のXSSからユーザーを保護する。
// bluemondayのStrictPolicyを使用し、HTMLタグをすべて除去する。
package security

import "github.com/microcosm-cc/bluemonday"

// TextSanitizerService は自由記述テキストのサニタイズ機能のインターフェースを定義する。
// エンティティの保存前に使用される。
type TextSanitizerService interface {
	// Sanitize はテキストからHTMLタグをすべて除去して返す。
	// プレーンテキストはそのまま通過する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// 自由記述フィールドはHTMLとして表示しないため、
// タグを一切許可しないStrictPolicyを使用する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はテキストからHTMLタグをすべて除去して返す。
func (s *textSanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}

// compile-time interface check
var _ TextSanitizerService = (*textSanitizer)(nil)
