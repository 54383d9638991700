// Package model はドメインモデルを定義する。
package model

import "time"

// Skill はスキルカタログのエントリを表す。
type Skill struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// MentorSkill はメンターとスキルの多対多リンクを表す。
// (MentorID, SkillID) の組は一意。
type MentorSkill struct {
	ID        string
	MentorID  string
	SkillID   string
	CreatedAt time.Time
}
