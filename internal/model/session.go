// Package model はドメインモデルを定義する。
package model

import "time"

// SessionStatus はメンタリングセッションのライフサイクル状態を表す。
// 遷移は一方向: scheduled → completed → paid。
type SessionStatus string

const (
	// SessionStatusScheduled は予約済みの状態。
	SessionStatusScheduled SessionStatus = "scheduled"
	// SessionStatusCompleted は実施完了の状態。レビュー可能な唯一の状態。
	SessionStatusCompleted SessionStatus = "completed"
	// SessionStatusPaid は支払い完了の状態。
	SessionStatusPaid SessionStatus = "paid"
)

// Session はメンターと学生のメンタリングセッションを表す。
// MentorIDとStudentIDはIDのみの弱参照であり、参照先の存在は保証されない。
type Session struct {
	ID          string
	MentorID    string
	StudentID   string
	Status      SessionStatus
	ScheduledAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
