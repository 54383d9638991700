// Package model はドメインモデルを定義する。
package model

import "time"

// Review は完了済みセッションに対するレビューを表す。
// 1セッションにつき最大1件。作成後の更新パスは存在しない。
type Review struct {
	ID        string
	SessionID string
	Rating    int // 1〜5
	Comment   string
	CreatedAt time.Time
}
