package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/mentormatch/internal/model"
	"github.com/hitoshi/mentormatch/internal/repository"
)

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       model.Role
	Bio        string
	HourlyRate *float64 // roleがmentorの場合のみ有効
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BcryptCost int
}

// Service はユーザー登録とログインのビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	tokens   *TokenManager
	config   ServiceConfig
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, tokens *TokenManager, config ServiceConfig) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		config:   config,
	}
}

// Register は新規ユーザーを登録し、アクセストークンを発行する。
// メールアドレスは大文字小文字を区別せず一意。重複時はエラーを返す。
// roleがstudentの場合、HourlyRateは無視される。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.User, string, error) {
	if !input.Role.Valid() {
		return nil, "", model.NewInvalidRoleError(string(input.Role))
	}

	email := strings.TrimSpace(input.Email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", model.NewUserAlreadyExistsError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.config.BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         input.Role,
		Bio:          input.Bio,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch input.Role {
	case model.RoleMentor:
		mentor := &model.Mentor{User: user, HourlyRate: input.HourlyRate}
		if err := s.userRepo.CreateMentor(ctx, mentor); err != nil {
			return nil, "", fmt.Errorf("failed to create mentor: %w", err)
		}
	case model.RoleStudent:
		if err := s.userRepo.CreateStudent(ctx, &user); err != nil {
			return nil, "", fmt.Errorf("failed to create student: %w", err)
		}
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return &user, token, nil
}

// Login はメールアドレスとパスワードを検証し、アクセストークンを発行する。
// メール未登録とパスワード不一致は同じエラーを返し、登録状況を漏らさない。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, "", model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))

	return user, token, nil
}
