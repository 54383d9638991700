// Package security はアプリケーションのセキュリティ機能を提供する。
//
// CommentSanitizerService はレビューコメントなどユーザー入力のテキストを
// サニタイズし、XSS攻撃からユーザーを保護する。
// bluemondayライブラリの厳格ポリシーで全てのHTMLタグを除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// CommentSanitizerService はユーザー入力テキストのサニタイズ機能のインターフェースを定義する。
// レビューコメントや自己紹介文の保存前に使用される。
type CommentSanitizerService interface {
	// Sanitize は入力テキストから全てのHTMLタグを除去して返す。
	// プレーンテキストとして保存するため、許可されるタグは無い。
	// 前後の空白は除去される。空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// commentSanitizer はCommentSanitizerServiceの実装。
// bluemondayの厳格ポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type commentSanitizer struct {
	policy *bluemonday.Policy
}

// NewCommentSanitizer はCommentSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全てのタグと属性を除去し、テキストのみを残す。
func NewCommentSanitizer() *commentSanitizer {
	return &commentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力テキストから全てのHTMLタグを除去して返す。
func (s *commentSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
