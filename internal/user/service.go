// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/mentormatch/internal/model"
	"github.com/hitoshi/mentormatch/internal/repository"
)

// Profile はログインユーザーのプロフィールビュー。
// メンターの場合は時給とスキルが含まれる。
type Profile struct {
	User       model.User
	HourlyRate *float64
	Skills     []model.SkillRef
}

// UpdateInput はプロフィール部分更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Name       *string
	Bio        *string
	HourlyRate *float64 // roleがmentorの場合のみ有効
	SkillIDs   []string // nilは変更なし、空スライスは全削除
}

// Service はユーザー管理のサービス層。
// プロフィールの取得と更新を提供する。
type Service struct {
	userRepo        repository.UserRepository
	skillRepo       repository.SkillRepository
	mentorSkillRepo repository.MentorSkillRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	skillRepo repository.SkillRepository,
	mentorSkillRepo repository.MentorSkillRepository,
) *Service {
	return &Service{
		userRepo:        userRepo,
		skillRepo:       skillRepo,
		mentorSkillRepo: mentorSkillRepo,
	}
}

// GetProfile はログインユーザーのプロフィールを返す。
// メンターの場合は時給とスキル一覧を展開する。
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError()
	}

	profile := &Profile{User: *u}

	if u.Role == model.RoleMentor {
		mentor, err := s.userRepo.FindMentorByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("メンター情報の取得に失敗しました: %w", err)
		}
		if mentor != nil {
			profile.HourlyRate = mentor.HourlyRate
		}

		links, err := s.mentorSkillRepo.ListByMentorIDs(ctx, []string{userID})
		if err != nil {
			return nil, fmt.Errorf("スキルリンクの取得に失敗しました: %w", err)
		}
		for _, link := range links {
			profile.Skills = append(profile.Skills, model.SkillRef{ID: link.SkillID, Name: link.SkillName})
		}
	}

	return profile, nil
}

// UpdateProfile はログインユーザーのプロフィールを部分更新し、更新後の
// プロフィールを返す。時給とスキルの変更はメンターのみ有効で、学生が
// 指定した場合は黙って無視される。スキル指定時は全スキルIDの存在を
// 先に検証し、1つでも不明なら何も変更しない。
func (s *Service) UpdateProfile(ctx context.Context, userID string, input UpdateInput) (*Profile, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError()
	}

	hourlyRate := input.HourlyRate
	skillIDs := input.SkillIDs
	if u.Role != model.RoleMentor {
		hourlyRate = nil
		skillIDs = nil
	}

	if skillIDs != nil {
		for _, id := range skillIDs {
			skill, err := s.skillRepo.FindByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("スキルの取得に失敗しました: %w", err)
			}
			if skill == nil {
				return nil, model.NewSkillNotFoundError(id)
			}
		}
	}

	if input.Name != nil || input.Bio != nil || hourlyRate != nil {
		if err := s.userRepo.UpdateProfile(ctx, userID, input.Name, input.Bio, hourlyRate); err != nil {
			return nil, fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
		}
	}

	if skillIDs != nil {
		if err := s.mentorSkillRepo.ReplaceForMentor(ctx, userID, skillIDs); err != nil {
			return nil, fmt.Errorf("スキルリンクの更新に失敗しました: %w", err)
		}
	}

	slog.Info("profile updated", slog.String("user_id", userID))

	return s.GetProfile(ctx, userID)
}
