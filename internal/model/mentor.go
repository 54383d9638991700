// Package model はドメインモデルを定義する。
package model

import "time"

// SkillRef はメンター一覧に表示するスキル参照を表す。
type SkillRef struct {
	ID   string
	Name string
}

// MentorAggregate はメンターのプロフィールと算出済み統計を結合した読み取り専用ビュー。
// 永続化されず、リクエストごとに再計算される。
type MentorAggregate struct {
	ID            string
	Name          string
	Email         string
	Bio           string
	HourlyRate    *float64
	Skills        []SkillRef
	AverageRating float64 // 小数第2位に丸め。レビュー0件のときは0。
	TotalReviews  int
	TotalSessions int // 完了済みセッション数
}

// RecentReview はメンター詳細に表示する直近レビューを表す。
// レビューした学生の表示名を展開して保持する。
type RecentReview struct {
	ID          string
	SessionID   string
	Rating      int
	Comment     string
	StudentName string
	CreatedAt   time.Time
}

// MentorDetail はメンター詳細ビュー。集約統計に直近レビューを加えたもの。
type MentorDetail struct {
	MentorAggregate
	RecentReviews []RecentReview
}
