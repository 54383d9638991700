package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/mentormatch/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// CreateStudent は学生ユーザーを作成する。
func (r *PostgresUserRepo) CreateStudent(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, bio, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Name, user.Email, user.PasswordHash, model.RoleStudent, user.Bio,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert student: %w", err)
	}
	return nil
}

// CreateMentor はメンターユーザーを作成する。
func (r *PostgresUserRepo) CreateMentor(ctx context.Context, mentor *model.Mentor) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, bio, hourly_rate, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		mentor.ID, mentor.Name, mentor.Email, mentor.PasswordHash, model.RoleMentor, mentor.Bio,
		mentor.HourlyRate, mentor.CreatedAt, mentor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert mentor: %w", err)
	}
	return nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, bio, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.Bio,
		&user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByEmail はメールアドレス（大文字小文字を区別しない）でユーザーを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, bio, created_at, updated_at
		 FROM users WHERE LOWER(email) = LOWER($1)`,
		strings.TrimSpace(email),
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.Bio,
		&user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// FindMentorByID は指定IDのメンターを取得する。
// ユーザーが存在しない場合もroleがmentorでない場合もnilを返し、両者を区別しない。
func (r *PostgresUserRepo) FindMentorByID(ctx context.Context, id string) (*model.Mentor, error) {
	mentor := &model.Mentor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, bio, hourly_rate, created_at, updated_at
		 FROM users WHERE id = $1 AND role = $2`,
		id, model.RoleMentor,
	).Scan(&mentor.ID, &mentor.Name, &mentor.Email, &mentor.PasswordHash, &mentor.Role,
		&mentor.Bio, &mentor.HourlyRate, &mentor.CreatedAt, &mentor.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find mentor by ID: %w", err)
	}

	return mentor, nil
}

// ListMentors はroleがmentorのユーザーを作成順で返す。
// 時給フィルタが指定された場合、hourly_rateがNULLの行は数値比較に一致せず除外される。
func (r *PostgresUserRepo) ListMentors(ctx context.Context, rates RateRange, limit int) ([]model.Mentor, error) {
	query := `SELECT id, name, email, password_hash, role, bio, hourly_rate, created_at, updated_at
		 FROM users WHERE role = $1`
	args := []any{model.RoleMentor}

	if rates.Min != nil {
		args = append(args, *rates.Min)
		query += fmt.Sprintf(" AND hourly_rate >= $%d", len(args))
	}
	if rates.Max != nil {
		args = append(args, *rates.Max)
		query += fmt.Sprintf(" AND hourly_rate <= $%d", len(args))
	}

	// 取得順＝作成順。ソート指定のないレスポンスはこの順序をそのまま返す。
	query += " ORDER BY created_at, id"

	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentors: %w", err)
	}
	defer rows.Close()

	return scanMentors(rows)
}

// ListMentorsByIDs は指定IDに一致するメンターを作成順で返す。
// 存在しないIDやroleがmentorでないIDは黙って除外する。
func (r *PostgresUserRepo) ListMentorsByIDs(ctx context.Context, ids []string) ([]model.Mentor, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, password_hash, role, bio, hourly_rate, created_at, updated_at
		 FROM users WHERE role = $1 AND id = ANY($2)
		 ORDER BY created_at, id`,
		model.RoleMentor, pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentors by ids: %w", err)
	}
	defer rows.Close()

	return scanMentors(rows)
}

// UpdateProfile はプロフィールを部分更新する。nilのフィールドは変更しない。
func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, id string, name, bio *string, hourlyRate *float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET name = COALESCE($2, name),
		     bio = COALESCE($3, bio),
		     hourly_rate = COALESCE($4, hourly_rate),
		     updated_at = now()
		 WHERE id = $1`,
		id, name, bio, hourlyRate,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// scanMentors は行セットをMentorスライスに変換する。
func scanMentors(rows *sql.Rows) ([]model.Mentor, error) {
	var mentors []model.Mentor
	for rows.Next() {
		var m model.Mentor
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.PasswordHash, &m.Role, &m.Bio,
			&m.HourlyRate, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mentor row: %w", err)
		}
		mentors = append(mentors, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mentor rows: %w", err)
	}
	return mentors, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
