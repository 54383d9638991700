package session

import (
	"context"
	"testing"
	"time"

	"github.com/hitoshi/mentormatch/internal/model"
	"github.com/hitoshi/mentormatch/internal/repository"
)

// --- モック定義 ---

type mockSessionRepo struct {
	createFn         func(ctx context.Context, session *model.Session) error
	findByIDFn       func(ctx context.Context, id string) (*model.Session, error)
	listByMentorFn   func(ctx context.Context, mentorID string) ([]model.Session, error)
	listByStudentFn  func(ctx context.Context, studentID string) ([]model.Session, error)
	updateStatusFn   func(ctx context.Context, id string, status model.SessionStatus) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) ListCompletedByMentorIDs(_ context.Context, _ []string) ([]model.Session, error) {
	return nil, nil
}

func (m *mockSessionRepo) ListByMentor(ctx context.Context, mentorID string) ([]model.Session, error) {
	if m.listByMentorFn != nil {
		return m.listByMentorFn(ctx, mentorID)
	}
	return nil, nil
}

func (m *mockSessionRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Session, error) {
	if m.listByStudentFn != nil {
		return m.listByStudentFn(ctx, studentID)
	}
	return nil, nil
}

func (m *mockSessionRepo) UpdateStatus(ctx context.Context, id string, status model.SessionStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

type mockUserRepo struct {
	findMentorByIDFn func(ctx context.Context, id string) (*model.Mentor, error)
}

func (m *mockUserRepo) CreateStudent(_ context.Context, _ *model.User) error  { return nil }
func (m *mockUserRepo) CreateMentor(_ context.Context, _ *model.Mentor) error { return nil }
func (m *mockUserRepo) FindByID(_ context.Context, _ string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) FindByEmail(_ context.Context, _ string) (*model.User, error) {
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

func existingMentor(id string) (*model.Mentor, error) {
	return &model.Mentor{User: model.User{ID: id, Role: model.RoleMentor}}, nil
}

func assertAPIError(t *testing.T, err error, wantCode string) {
	t.Helper()
	apiErr, ok := err.(*model.APIError)
	if !ok {
		t.Fatalf("expected *model.APIError, got %T (%v)", err, err)
	}
	if apiErr.Code != wantCode {
		t.Errorf("Code = %q, want %q", apiErr.Code, wantCode)
	}
}

// --- Book ---

// 予約がscheduled状態で作成されることを検証
func TestService_Book_Success(t *testing.T) {
	var created *model.Session
	sessionRepo := &mockSessionRepo{
		createFn: func(_ context.Context, session *model.Session) error {
			created = session
			return nil
		},
	}
	userRepo := &mockUserRepo{
		findMentorByIDFn: func(_ context.Context, id string) (*model.Mentor, error) {
			return existingMentor(id)
		},
	}
	svc := NewService(sessionRepo, userRepo)

	when := time.Now().Add(48 * time.Hour)
	session, err := svc.Book(context.Background(), "student-1", "mentor-1", when)
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if session.Status != model.SessionStatusScheduled {
		t.Errorf("Status = %q, want %q", session.Status, model.SessionStatusScheduled)
	}
	if created == nil || created.MentorID != "mentor-1" || created.StudentID != "student-1" {
		t.Errorf("created = %+v", created)
	}
	if !created.ScheduledAt.Equal(when) {
		t.Errorf("ScheduledAt = %v, want %v", created.ScheduledAt, when)
	}
}

// 存在しないメンターへの予約が拒否されることを検証
func TestService_Book_MentorNotFound(t *testing.T) {
	svc := NewService(&mockSessionRepo{}, &mockUserRepo{})

	_, err := svc.Book(context.Background(), "student-1", "missing", time.Now())
	assertAPIError(t, err, model.ErrCodeMentorNotFound)
}

// --- Complete ---

// メンターがscheduledセッションを完了できることを検証
func TestService_Complete_Success(t *testing.T) {
	var updatedStatus model.SessionStatus
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return &model.Session{
				ID: id, MentorID: "mentor-1", StudentID: "student-1",
				Status: model.SessionStatusScheduled,
			}, nil
		},
		updateStatusFn: func(_ context.Context, _ string, status model.SessionStatus) error {
			updatedStatus = status
			return nil
		},
	}
	svc := NewService(sessionRepo, &mockUserRepo{})

	session, err := svc.Complete(context.Background(), "mentor-1", "s1")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if updatedStatus != model.SessionStatusCompleted {
		t.Errorf("updated status = %q, want completed", updatedStatus)
	}
	if session.Status != model.SessionStatusCompleted {
		t.Errorf("session.Status = %q, want completed", session.Status)
	}
}

// セッションのメンター以外による完了が拒否されることを検証
func TestService_Complete_NotSessionMentor(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, MentorID: "mentor-1", Status: model.SessionStatusScheduled}, nil
		},
	}
	svc := NewService(sessionRepo, &mockUserRepo{})

	_, err := svc.Complete(context.Background(), "someone-else", "s1")
	assertAPIError(t, err, model.ErrCodeNotSessionMentor)
}

// scheduled以外のセッションの完了が拒否されることを検証
func TestService_Complete_NotScheduled(t *testing.T) {
	for _, status := range []model.SessionStatus{model.SessionStatusCompleted, model.SessionStatusPaid} {
		sessionRepo := &mockSessionRepo{
			findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
				return &model.Session{ID: id, MentorID: "mentor-1", Status: status}, nil
			},
		}
		svc := NewService(sessionRepo, &mockUserRepo{})

		_, err := svc.Complete(context.Background(), "mentor-1", "s1")
		assertAPIError(t, err, model.ErrCodeSessionNotScheduled)
	}
}

// 存在しないセッションの完了が拒否されることを検証
func TestService_Complete_NotFound(t *testing.T) {
	svc := NewService(&mockSessionRepo{}, &mockUserRepo{})

	_, err := svc.Complete(context.Background(), "mentor-1", "missing")
	assertAPIError(t, err, model.ErrCodeSessionNotFound)
}

// --- ListMine ---

// 役割に応じて参照先が切り替わることを検証
func TestService_ListMine_ByRole(t *testing.T) {
	mentorCalled := false
	studentCalled := false
	sessionRepo := &mockSessionRepo{
		listByMentorFn: func(_ context.Context, _ string) ([]model.Session, error) {
			mentorCalled = true
			return []model.Session{{ID: "s1"}}, nil
		},
		listByStudentFn: func(_ context.Context, _ string) ([]model.Session, error) {
			studentCalled = true
			return []model.Session{{ID: "s2"}}, nil
		},
	}
	svc := NewService(sessionRepo, &mockUserRepo{})

	got, err := svc.ListMine(context.Background(), "u1", model.RoleMentor)
	if err != nil {
		t.Fatalf("ListMine(mentor) error = %v", err)
	}
	if !mentorCalled || len(got) != 1 || got[0].ID != "s1" {
		t.Errorf("mentor path: got = %v", got)
	}

	got, err = svc.ListMine(context.Background(), "u1", model.RoleStudent)
	if err != nil {
		t.Fatalf("ListMine(student) error = %v", err)
	}
	if !studentCalled || len(got) != 1 || got[0].ID != "s2" {
		t.Errorf("student path: got = %v", got)
	}
}

// 不正な役割が拒否されることを検証
func TestService_ListMine_InvalidRole(t *testing.T) {
	svc := NewService(&mockSessionRepo{}, &mockUserRepo{})

	_, err := svc.ListMine(context.Background(), "u1", model.Role("admin"))
	assertAPIError(t, err, model.ErrCodeInvalidRole)
}

// セッションが無いとき空スライスが返ることを検証
func TestService_ListMine_Empty(t *testing.T) {
	svc := NewService(&mockSessionRepo{}, &mockUserRepo{})

	got, err := svc.ListMine(context.Background(), "u1", model.RoleStudent)
	if err != nil {
		t.Fatalf("ListMine() error = %v", err)
	}
	if got == nil {
		t.Fatal("expected non-nil empty slice")
	}
}
