// Package session はメンタリングセッション台帳のドメインロジックを提供する。
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/mentormatch/internal/model"
	"github.com/hitoshi/mentormatch/internal/repository"
)

// Service はセッション台帳のサービス層。
// 予約、完了、一覧取得を提供する。状態遷移は一方向
// （scheduled → completed → paid）で、逆方向の遷移は存在しない。
type Service struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
}

// NewService はServiceを生成する。
func NewService(sessionRepo repository.SessionRepository, userRepo repository.UserRepository) *Service {
	return &Service{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
	}
}

// Book は学生が指定メンターとのセッションを予約する。
// メンターが存在しないかroleがmentorでない場合は未検出エラーを返す。
func (s *Service) Book(ctx context.Context, studentID, mentorID string, scheduledAt time.Time) (*model.Session, error) {
	mentor, err := s.userRepo.FindMentorByID(ctx, mentorID)
	if err != nil {
		return nil, fmt.Errorf("メンターの取得に失敗しました: %w", err)
	}
	if mentor == nil {
		return nil, model.NewMentorNotFoundError()
	}

	now := time.Now()
	session := &model.Session{
		ID:          uuid.New().String(),
		MentorID:    mentorID,
		StudentID:   studentID,
		Status:      model.SessionStatusScheduled,
		ScheduledAt: scheduledAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("セッションの作成に失敗しました: %w", err)
	}

	slog.Info("session booked",
		slog.String("session_id", session.ID),
		slog.String("mentor_id", mentorID),
		slog.String("student_id", studentID),
	)

	return session, nil
}

// Complete はセッションを完了状態に進める。
// 実行できるのはそのセッションのメンターのみで、対象はscheduled状態に限る。
func (s *Service) Complete(ctx context.Context, mentorID, sessionID string) (*model.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}
	if session == nil {
		return nil, model.NewSessionNotFoundError()
	}
	if session.MentorID != mentorID {
		return nil, model.NewNotSessionMentorError()
	}
	if session.Status != model.SessionStatusScheduled {
		return nil, model.NewSessionNotScheduledError()
	}

	if err := s.sessionRepo.UpdateStatus(ctx, sessionID, model.SessionStatusCompleted); err != nil {
		return nil, fmt.Errorf("セッション状態の更新に失敗しました: %w", err)
	}

	slog.Info("session completed", slog.String("session_id", sessionID))

	session.Status = model.SessionStatusCompleted
	return session, nil
}

// GetByID は指定IDのセッションを返す。
func (s *Service) GetByID(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}
	if session == nil {
		return nil, model.NewSessionNotFoundError()
	}
	return session, nil
}

// ListMine はログインユーザーのセッションを役割に応じて新しい順で返す。
// メンターは自分が指導するセッション、学生は自分が受講するセッションが対象。
func (s *Service) ListMine(ctx context.Context, userID string, role model.Role) ([]model.Session, error) {
	var (
		sessions []model.Session
		err      error
	)
	switch role {
	case model.RoleMentor:
		sessions, err = s.sessionRepo.ListByMentor(ctx, userID)
	case model.RoleStudent:
		sessions, err = s.sessionRepo.ListByStudent(ctx, userID)
	default:
		return nil, model.NewInvalidRoleError(string(role))
	}
	if err != nil {
		return nil, fmt.Errorf("セッション一覧の取得に失敗しました: %w", err)
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	return sessions, nil
}
