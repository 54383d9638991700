// Package skill はスキルカタログのドメインロジックを提供する。
package skill

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/mentormatch/internal/model"
	"github.com/hitoshi/mentormatch/internal/repository"
)

// Service はスキルカタログのサービス層。
type Service struct {
	skillRepo repository.SkillRepository
}

// NewService はServiceを生成する。
func NewService(skillRepo repository.SkillRepository) *Service {
	return &Service{skillRepo: skillRepo}
}

// List は全スキルを名前順で返す。
func (s *Service) List(ctx context.Context) ([]model.Skill, error) {
	skills, err := s.skillRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("スキル一覧の取得に失敗しました: %w", err)
	}
	if skills == nil {
		skills = []model.Skill{}
	}
	return skills, nil
}

// Create はスキルをカタログに追加する。名前の前後空白は除去され、
// 同名のスキルが既に存在する場合は拒否する。
func (s *Service) Create(ctx context.Context, name string) (*model.Skill, error) {
	name = strings.TrimSpace(name)

	existing, err := s.skillRepo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("既存スキルの確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewSkillAlreadyExistsError(name)
	}

	skill := &model.Skill{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.skillRepo.Create(ctx, skill); err != nil {
		return nil, fmt.Errorf("スキルの作成に失敗しました: %w", err)
	}

	slog.Info("skill created",
		slog.String("skill_id", skill.ID),
		slog.String("name", name),
	)

	return skill, nil
}

// GetByID は指定IDのスキルを返す。
func (s *Service) GetByID(ctx context.Context, id string) (*model.Skill, error) {
	skill, err := s.skillRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("スキルの取得に失敗しました: %w", err)
	}
	if skill == nil {
		return nil, model.NewSkillNotFoundError(id)
	}
	return skill, nil
}
