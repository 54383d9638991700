// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/mentormatch/internal/model"
)

// RateRange はメンター一覧の時給フィルタを表す。
// nilのフィールドは未指定を意味する。境界が指定された場合、
// 時給が未設定のメンターは数値比較に一致せず除外される。
type RateRange struct {
	Min *float64
	Max *float64
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// CreateStudent は学生ユーザーを作成する。
	CreateStudent(ctx context.Context, user *model.User) error

	// CreateMentor はメンターユーザーを作成する。
	CreateMentor(ctx context.Context, mentor *model.Mentor) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレス（大文字小文字を区別しない）でユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindMentorByID は指定IDのメンターを取得する。
	// ユーザーが存在しない場合もroleがmentorでない場合もnilを返し、両者を区別しない。
	FindMentorByID(ctx context.Context, id string) (*model.Mentor, error)

	// ListMentors はroleがmentorのユーザーを作成順で返す。
	// rates指定時は時給でフィルタする。limitが0より大きい場合は件数を制限する。
	ListMentors(ctx context.Context, rates RateRange, limit int) ([]model.Mentor, error)

	// ListMentorsByIDs は指定IDに一致するメンターを作成順で返す。
	// 存在しないIDやroleがmentorでないIDは黙って除外する。
	ListMentorsByIDs(ctx context.Context, ids []string) ([]model.Mentor, error)

	// UpdateProfile はプロフィールを部分更新する。nilのフィールドは変更しない。
	// hourlyRateはroleがmentorの場合のみ有効。
	UpdateProfile(ctx context.Context, id string, name, bio *string, hourlyRate *float64) error
}

// SkillRepository はスキルカタログの永続化インターフェース。
type SkillRepository interface {
	// Create はスキルを作成する。
	Create(ctx context.Context, skill *model.Skill) error

	// List は全スキルを名前順で返す。
	List(ctx context.Context) ([]model.Skill, error)

	// FindByID は指定IDのスキルを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Skill, error)

	// FindByName はスキル名（完全一致）で検索する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Skill, error)
}

// MentorSkillRow はリンクとスキル名を結合した行。
type MentorSkillRow struct {
	MentorID  string
	SkillID   string
	SkillName string
}

// MentorSkillRepository はメンターとスキルのリンクの永続化インターフェース。
type MentorSkillRepository interface {
	// ListByMentorIDs は指定メンター群のリンクをスキル名付きで返す。
	// 順序はリンク作成順（表示順として扱う。アルファベット順にはしない）。
	ListByMentorIDs(ctx context.Context, mentorIDs []string) ([]MentorSkillRow, error)

	// ListMentorIDsBySkill は指定スキルにリンクされたメンターIDをリンク作成順で返す。
	ListMentorIDsBySkill(ctx context.Context, skillID string) ([]string, error)

	// ReplaceForMentor はメンターのリンク集合を指定スキル集合で置き換える。
	// 同一トランザクションで既存リンクを全削除してから挿入する。
	ReplaceForMentor(ctx context.Context, mentorID string, skillIDs []string) error
}

// SessionRepository はセッション台帳の永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// ListCompletedByMentorIDs は指定メンター群の完了済みセッションを一括取得する。
	// N+1クエリを避けるため、メンターごとではなく1クエリで取得する。
	ListCompletedByMentorIDs(ctx context.Context, mentorIDs []string) ([]model.Session, error)

	// ListByMentor は指定メンターのセッションを作成順（新しい順）で返す。
	ListByMentor(ctx context.Context, mentorID string) ([]model.Session, error)

	// ListByStudent は指定学生のセッションを作成順（新しい順）で返す。
	ListByStudent(ctx context.Context, studentID string) ([]model.Session, error)

	// UpdateStatus はセッションの状態を更新する。
	UpdateStatus(ctx context.Context, id string, status model.SessionStatus) error
}

// ReviewWithStudent はレビューとレビューした学生の表示名を結合した行。
// 学生が削除済みの場合、StudentNameは空文字になる。
type ReviewWithStudent struct {
	model.Review
	StudentName string
}

// ReviewDetail はレビューとセッションのメンター・学生情報を結合した行。
// 参照先が削除済みの場合、該当フィールドは空文字になる。
type ReviewDetail struct {
	model.Review
	MentorID     string
	MentorName   string
	MentorEmail  string
	StudentID    string
	StudentName  string
	StudentEmail string
}

// ReviewRepository はレビューデータの永続化インターフェース。
type ReviewRepository interface {
	// Create はレビューを作成する。セッションごとに1件の一意制約に違反した場合はエラーを返す。
	Create(ctx context.Context, review *model.Review) error

	// FindByID は指定IDのレビューを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Review, error)

	// FindBySessionID は指定セッションのレビューを取得する。見つからない場合はnilを返す。
	FindBySessionID(ctx context.Context, sessionID string) (*model.Review, error)

	// ListBySessionIDs は指定セッション群のレビューを一括取得する。
	// 集約計算用。1クエリで取得し、順序は作成順。
	ListBySessionIDs(ctx context.Context, sessionIDs []string) ([]model.Review, error)

	// ListRecentBySessionIDs は指定セッション群のレビューを新しい順に学生名付きで返す。
	// limitが0より大きい場合は件数を制限する。
	ListRecentBySessionIDs(ctx context.Context, sessionIDs []string, limit int) ([]ReviewWithStudent, error)

	// FindDetailByID は指定IDのレビューをセッションのメンター・学生情報付きで取得する。
	// 見つからない場合はnilを返す。
	FindDetailByID(ctx context.Context, id string) (*ReviewDetail, error)
}

// PaymentRepository は支払い台帳の永続化インターフェース。
type PaymentRepository interface {
	// Create は支払いを作成する。
	Create(ctx context.Context, payment *model.Payment) error

	// FindByID は指定IDの支払いを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Payment, error)

	// FindByProviderTxnID は外部取引IDで支払いを検索する。見つからない場合はnilを返す。
	FindByProviderTxnID(ctx context.Context, providerTxnID string) (*model.Payment, error)

	// ListBySessionID は指定セッションの支払いを新しい順で返す。
	ListBySessionID(ctx context.Context, sessionID string) ([]model.Payment, error)

	// UpdateStatus は支払いの状態を更新する。providerTxnIDが空でない場合は併せて更新する。
	UpdateStatus(ctx context.Context, id string, status model.PaymentStatus, providerTxnID string) error
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
