package auth

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/mentormatch/internal/model"
	"github.com/hitoshi/mentormatch/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	createStudentFn  func(ctx context.Context, user *model.User) error
	createMentorFn   func(ctx context.Context, mentor *model.Mentor) error
	findByEmailFn    func(ctx context.Context, email string) (*model.User, error)
	findByIDFn       func(ctx context.Context, id string) (*model.User, error)
	findMentorByIDFn func(ctx context.Context, id string) (*model.Mentor, error)
}

func (m *mockUserRepo) CreateStudent(ctx context.Context, user *model.User) error {
	if m.createStudentFn != nil {
		return m.createStudentFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) CreateMentor(ctx context.Context, mentor *model.Mentor) error {
	if m.createMentorFn != nil {
		return m.createMentorFn(ctx, mentor)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) FindMentorByID(ctx context.Context, id string) (*model.Mentor, error) {
	if m.findMentorByIDFn != nil {
		return m.findMentorByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) ListMentors(_ context.Context, _ repository.RateRange, _ int) ([]model.Mentor, error) {
	return nil, nil
}

func (m *mockUserRepo) ListMentorsByIDs(_ context.Context, _ []string) ([]model.Mentor, error) {
	return nil, nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, _ string, _, _ *string, _ *float64) error {
	return nil
}

func newTestService(repo repository.UserRepository) *Service {
	tm := NewTokenManager("test-secret", time.Hour)
	return NewService(repo, tm, ServiceConfig{BcryptCost: bcrypt.MinCost})
}

// --- Register ---

// 学生登録が成功しトークンが発行されることを検証
func TestService_Register_Student(t *testing.T) {
	var created *model.User
	repo := &mockUserRepo{
		createStudentFn: func(_ context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := newTestService(repo)

	user, token, err := svc.Register(context.Background(), RegisterInput{
		Name:     "田中花子",
		Email:    "hanako@example.com",
		Password: "password123",
		Role:     model.RoleStudent,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if token == "" {
		t.Error("expected non-empty token")
	}
	if user.Role != model.RoleStudent {
		t.Errorf("user.Role = %q, want %q", user.Role, model.RoleStudent)
	}
	if created == nil {
		t.Fatal("expected CreateStudent to be called")
	}
	if created.PasswordHash == "password123" {
		t.Error("password should be hashed, not stored in plain text")
	}
}

// メンター登録で時給が保持されることを検証
func TestService_Register_MentorWithRate(t *testing.T) {
	var created *model.Mentor
	repo := &mockUserRepo{
		createMentorFn: func(_ context.Context, mentor *model.Mentor) error {
			created = mentor
			return nil
		},
	}
	svc := newTestService(repo)

	rate := 95.0
	user, _, err := svc.Register(context.Background(), RegisterInput{
		Name:       "山田太郎",
		Email:      "taro@example.com",
		Password:   "password123",
		Role:       model.RoleMentor,
		HourlyRate: &rate,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != model.RoleMentor {
		t.Errorf("user.Role = %q, want %q", user.Role, model.RoleMentor)
	}
	if created == nil {
		t.Fatal("expected CreateMentor to be called")
	}
	if created.HourlyRate == nil || *created.HourlyRate != 95.0 {
		t.Errorf("created.HourlyRate = %v, want 95.0", created.HourlyRate)
	}
}

// 不正な役割が拒否されることを検証
func TestService_Register_InvalidRole(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name:     "テスト",
		Email:    "test@example.com",
		Password: "password123",
		Role:     model.Role("admin"),
	})

	apiErr, ok := err.(*model.APIError)
	if !ok {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeInvalidRole {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidRole)
	}
}

// メールアドレス重複が拒否されることを検証
func TestService_Register_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			return &model.User{ID: "existing", Email: "dup@example.com"}, nil
		},
	}
	svc := newTestService(repo)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name:     "テスト",
		Email:    "dup@example.com",
		Password: "password123",
		Role:     model.RoleStudent,
	})

	apiErr, ok := err.(*model.APIError)
	if !ok {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeUserAlreadyExists {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeUserAlreadyExists)
	}
	if apiErr.Message != "User already exists with this email" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

// --- Login ---

// 正しい認証情報でログインできることを検証
func TestService_Login_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	repo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			return &model.User{
				ID:           "user-1",
				Email:        "taro@example.com",
				PasswordHash: string(hash),
				Role:         model.RoleMentor,
			}, nil
		},
	}
	svc := newTestService(repo)

	user, token, err := svc.Login(context.Background(), "taro@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "user-1")
	}
	if token == "" {
		t.Error("expected non-empty token")
	}
}

// 未登録メールとパスワード不一致が同じエラーになることを検証
func TestService_Login_InvalidCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		repo *mockUserRepo
	}{
		{
			name: "unknown email",
			repo: &mockUserRepo{},
		},
		{
			name: "wrong password",
			repo: &mockUserRepo{
				findByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
					return &model.User{ID: "user-1", PasswordHash: string(hash)}, nil
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.repo)
			_, _, err := svc.Login(context.Background(), "taro@example.com", "wrong-password")

			apiErr, ok := err.(*model.APIError)
			if !ok {
				t.Fatalf("expected *model.APIError, got %T", err)
			}
			if apiErr.Code != model.ErrCodeInvalidCredentials {
				t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidCredentials)
			}
			if apiErr.Message != "Invalid email or password" {
				t.Errorf("Message = %q", apiErr.Message)
			}
		})
	}
}
