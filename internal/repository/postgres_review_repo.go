package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/mentormatch/internal/model"
)

// PostgresReviewRepo はPostgreSQLを使用したレビューリポジトリ。
type PostgresReviewRepo struct {
	db *sql.DB
}

// NewPostgresReviewRepo はPostgresReviewRepoを生成する。
func NewPostgresReviewRepo(db *sql.DB) *PostgresReviewRepo {
	return &PostgresReviewRepo{db: db}
}

// Create はレビューを作成する。
func (r *PostgresReviewRepo) Create(ctx context.Context, review *model.Review) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (id, session_id, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		review.ID, review.SessionID, review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// FindByID は指定IDのレビューを取得する。見つからない場合はnilを返す。
func (r *PostgresReviewRepo) FindByID(ctx context.Context, id string) (*model.Review, error) {
	review := &model.Review{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, rating, comment, created_at FROM reviews WHERE id = $1`,
		id,
	).Scan(&review.ID, &review.SessionID, &review.Rating, &review.Comment, &review.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find review: %w", err)
	}

	return review, nil
}

// FindBySessionID は指定セッションのレビューを取得する。見つからない場合はnilを返す。
func (r *PostgresReviewRepo) FindBySessionID(ctx context.Context, sessionID string) (*model.Review, error) {
	review := &model.Review{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, rating, comment, created_at FROM reviews WHERE session_id = $1`,
		sessionID,
	).Scan(&review.ID, &review.SessionID, &review.Rating, &review.Comment, &review.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find review by session: %w", err)
	}

	return review, nil
}

// ListBySessionIDs は指定セッション群のレビューを1クエリで一括取得する。
func (r *PostgresReviewRepo) ListBySessionIDs(ctx context.Context, sessionIDs []string) ([]model.Review, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, rating, comment, created_at
		 FROM reviews
		 WHERE session_id = ANY($1)
		 ORDER BY created_at, id`,
		pq.Array(sessionIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.SessionID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review rows: %w", err)
	}

	return reviews, nil
}

// ListRecentBySessionIDs は指定セッション群のレビューを新しい順に学生名付きで返す。
// 学生が削除済みの場合、StudentNameは空文字になる。
func (r *PostgresReviewRepo) ListRecentBySessionIDs(ctx context.Context, sessionIDs []string, limit int) ([]ReviewWithStudent, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}

	query := `SELECT r.id, r.session_id, r.rating, r.comment, r.created_at,
	                 COALESCE(u.name, '')
	          FROM reviews r
	          LEFT JOIN sessions s ON s.id = r.session_id
	          LEFT JOIN users u ON u.id = s.student_id
	          WHERE r.session_id = ANY($1)
	          ORDER BY r.created_at DESC, r.id`
	args := []any{pq.Array(sessionIDs)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent reviews: %w", err)
	}
	defer rows.Close()

	var reviews []ReviewWithStudent
	for rows.Next() {
		var rv ReviewWithStudent
		if err := rows.Scan(&rv.ID, &rv.SessionID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.StudentName); err != nil {
			return nil, fmt.Errorf("failed to scan recent review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent review rows: %w", err)
	}

	return reviews, nil
}

// FindDetailByID は指定IDのレビューをメンター・学生情報付きで取得する。
// セッションや参照先ユーザーが削除済みでもレビュー自体は返し、欠けた情報は空文字にする。
func (r *PostgresReviewRepo) FindDetailByID(ctx context.Context, id string) (*ReviewDetail, error) {
	detail := &ReviewDetail{}
	err := r.db.QueryRowContext(ctx,
		`SELECT r.id, r.session_id, r.rating, r.comment, r.created_at,
		        COALESCE(s.mentor_id, ''), COALESCE(m.name, ''), COALESCE(m.email, ''),
		        COALESCE(s.student_id, ''), COALESCE(st.name, ''), COALESCE(st.email, '')
		 FROM reviews r
		 LEFT JOIN sessions s ON s.id = r.session_id
		 LEFT JOIN users m ON m.id = s.mentor_id
		 LEFT JOIN users st ON st.id = s.student_id
		 WHERE r.id = $1`,
		id,
	).Scan(&detail.ID, &detail.SessionID, &detail.Rating, &detail.Comment, &detail.CreatedAt,
		&detail.MentorID, &detail.MentorName, &detail.MentorEmail,
		&detail.StudentID, &detail.StudentName, &detail.StudentEmail)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find review detail: %w", err)
	}

	return detail, nil
}

// compile-time interface check
var _ ReviewRepository = (*PostgresReviewRepo)(nil)
