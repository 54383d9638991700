package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/mentormatch/internal/model"
)

// PostgresSkillRepo はPostgreSQLを使用したスキルカタログリポジトリ。
type PostgresSkillRepo struct {
	db *sql.DB
}

// NewPostgresSkillRepo はPostgresSkillRepoを生成する。
func NewPostgresSkillRepo(db *sql.DB) *PostgresSkillRepo {
	return &PostgresSkillRepo{db: db}
}

// Create はスキルを作成する。
func (r *PostgresSkillRepo) Create(ctx context.Context, skill *model.Skill) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO skills (id, name, created_at) VALUES ($1, $2, $3)`,
		skill.ID, skill.Name, skill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert skill: %w", err)
	}
	return nil
}

// List は全スキルを名前順で返す。
func (r *PostgresSkillRepo) List(ctx context.Context) ([]model.Skill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM skills ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	var skills []model.Skill
	for rows.Next() {
		var s model.Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan skill row: %w", err)
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate skill rows: %w", err)
	}
	return skills, nil
}

// FindByID は指定IDのスキルを取得する。見つからない場合はnilを返す。
func (r *PostgresSkillRepo) FindByID(ctx context.Context, id string) (*model.Skill, error) {
	skill := &model.Skill{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM skills WHERE id = $1`,
		id,
	).Scan(&skill.ID, &skill.Name, &skill.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find skill by ID: %w", err)
	}

	return skill, nil
}

// FindByName はスキル名（完全一致）で検索する。見つからない場合はnilを返す。
func (r *PostgresSkillRepo) FindByName(ctx context.Context, name string) (*model.Skill, error) {
	skill := &model.Skill{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM skills WHERE name = $1`,
		name,
	).Scan(&skill.ID, &skill.Name, &skill.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find skill by name: %w", err)
	}

	return skill, nil
}

// compile-time interface check
var _ SkillRepository = (*PostgresSkillRepo)(nil)

// PostgresMentorSkillRepo はPostgreSQLを使用したメンタースキルリンクリポジトリ。
type PostgresMentorSkillRepo struct {
	db *sql.DB
}

// NewPostgresMentorSkillRepo はPostgresMentorSkillRepoを生成する。
func NewPostgresMentorSkillRepo(db *sql.DB) *PostgresMentorSkillRepo {
	return &PostgresMentorSkillRepo{db: db}
}

// ListByMentorIDs は指定メンター群のリンクをスキル名付きで一括取得する。
// 順序はリンク作成順。スキルが削除済みのリンクは結果から除外される。
func (r *PostgresMentorSkillRepo) ListByMentorIDs(ctx context.Context, mentorIDs []string) ([]MentorSkillRow, error) {
	if len(mentorIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT ms.mentor_id, ms.skill_id, s.name
		 FROM mentor_skills ms
		 JOIN skills s ON s.id = ms.skill_id
		 WHERE ms.mentor_id = ANY($1)
		 ORDER BY ms.created_at, ms.id`,
		pq.Array(mentorIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentor skills: %w", err)
	}
	defer rows.Close()

	var result []MentorSkillRow
	for rows.Next() {
		var row MentorSkillRow
		if err := rows.Scan(&row.MentorID, &row.SkillID, &row.SkillName); err != nil {
			return nil, fmt.Errorf("failed to scan mentor skill row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mentor skill rows: %w", err)
	}
	return result, nil
}

// ListMentorIDsBySkill は指定スキルにリンクされたメンターIDをリンク作成順で返す。
func (r *PostgresMentorSkillRepo) ListMentorIDsBySkill(ctx context.Context, skillID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT mentor_id FROM mentor_skills WHERE skill_id = $1 ORDER BY created_at, id`,
		skillID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentor ids by skill: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan mentor id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mentor id rows: %w", err)
	}
	return ids, nil
}

// ReplaceForMentor はメンターのリンク集合を指定スキル集合で置き換える。
func (r *PostgresMentorSkillRepo) ReplaceForMentor(ctx context.Context, mentorID string, skillIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM mentor_skills WHERE mentor_id = $1`,
		mentorID,
	); err != nil {
		return fmt.Errorf("failed to delete mentor skills: %w", err)
	}

	for _, skillID := range skillIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO mentor_skills (id, mentor_id, skill_id, created_at)
			 VALUES ($1, $2, $3, now())`,
			uuid.NewString(), mentorID, skillID,
		); err != nil {
			return fmt.Errorf("failed to insert mentor skill: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// compile-time interface check
var _ MentorSkillRepository = (*PostgresMentorSkillRepo)(nil)
