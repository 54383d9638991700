package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/mentormatch/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用したセッション台帳リポジトリ。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Create はセッションを作成する。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, mentor_id, student_id, status, scheduled_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		session.ID, session.MentorID, session.StudentID, session.Status,
		session.ScheduledAt, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session := &model.Session{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, mentor_id, student_id, status, scheduled_at, created_at, updated_at
		 FROM sessions WHERE id = $1`,
		id,
	).Scan(&session.ID, &session.MentorID, &session.StudentID, &session.Status,
		&session.ScheduledAt, &session.CreatedAt, &session.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return session, nil
}

// ListCompletedByMentorIDs は指定メンター群の完了済みセッションを1クエリで一括取得する。
func (r *PostgresSessionRepo) ListCompletedByMentorIDs(ctx context.Context, mentorIDs []string) ([]model.Session, error) {
	if len(mentorIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, mentor_id, student_id, status, scheduled_at, created_at, updated_at
		 FROM sessions
		 WHERE mentor_id = ANY($1) AND status = $2
		 ORDER BY created_at, id`,
		pq.Array(mentorIDs), model.SessionStatusCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// ListByMentor は指定メンターのセッションを新しい順で返す。
func (r *PostgresSessionRepo) ListByMentor(ctx context.Context, mentorID string) ([]model.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, mentor_id, student_id, status, scheduled_at, created_at, updated_at
		 FROM sessions WHERE mentor_id = $1 ORDER BY created_at DESC, id`,
		mentorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions by mentor: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// ListByStudent は指定学生のセッションを新しい順で返す。
func (r *PostgresSessionRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, mentor_id, student_id, status, scheduled_at, created_at, updated_at
		 FROM sessions WHERE student_id = $1 ORDER BY created_at DESC, id`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions by student: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// UpdateStatus はセッションの状態を更新する。
func (r *PostgresSessionRepo) UpdateStatus(ctx context.Context, id string, status model.SessionStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("session not found: %s", id)
	}
	return nil
}

// scanSessions は行セットをSessionスライスに変換する。
func scanSessions(rows *sql.Rows) ([]model.Session, error) {
	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.MentorID, &s.StudentID, &s.Status,
			&s.ScheduledAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}
	return sessions, nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
