// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの役割を表す。
type Role string

const (
	// RoleMentor はメンター（指導者）の役割。
	RoleMentor Role = "mentor"
	// RoleStudent は学生（受講者）の役割。
	RoleStudent Role = "student"
)

// Valid は定義済みの役割かどうかを返す。
func (r Role) Valid() bool {
	return r == RoleMentor || r == RoleStudent
}

// User はサービス利用ユーザーを表す。
// 時給（HourlyRate）などメンター固有の属性は含まない。
// メンター固有の属性はMentor型が保持する。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Bio          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Mentor はメンターとして登録されたユーザーを表す。
// Userを埋め込み、メンターのみが持つ時給を追加する。
// 学生が時給を持つという不正な状態を型レベルで排除する。
type Mentor struct {
	User
	HourlyRate *float64
}
