package payment

import (
	"context"
	"testing"

	"github.com/hitoshi/mentormatch/internal/model"
)

// --- モック定義 ---

type mockPaymentRepo struct {
	createFn              func(ctx context.Context, payment *model.Payment) error
	findByIDFn            func(ctx context.Context, id string) (*model.Payment, error)
	findByProviderTxnIDFn func(ctx context.Context, providerTxnID string) (*model.Payment, error)
	listBySessionIDFn     func(ctx context.Context, sessionID string) ([]model.Payment, error)
	updateStatusFn        func(ctx context.Context, id string, status model.PaymentStatus, providerTxnID string) error
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	if m.createFn != nil {
		return m.createFn(ctx, payment)
	}
	return nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPaymentRepo) FindByProviderTxnID(ctx context.Context, providerTxnID string) (*model.Payment, error) {
	if m.findByProviderTxnIDFn != nil {
		return m.findByProviderTxnIDFn(ctx, providerTxnID)
	}
	return nil, nil
}

func (m *mockPaymentRepo) ListBySessionID(ctx context.Context, sessionID string) ([]model.Payment, error) {
	if m.listBySessionIDFn != nil {
		return m.listBySessionIDFn(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus, providerTxnID string) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status, providerTxnID)
	}
	return nil
}

type mockSessionRepo struct {
	findByIDFn     func(ctx context.Context, id string) (*model.Session, error)
	updateStatusFn func(ctx context.Context, id string, status model.SessionStatus) error
}

func (m *mockSessionRepo) Create(_ context.Context, _ *model.Session) error { return nil }

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) ListCompletedByMentorIDs(_ context.Context, _ []string) ([]model.Session, error) {
	return nil, nil
}

func (m *mockSessionRepo) ListByMentor(_ context.Context, _ string) ([]model.Session, error) {
	return nil, nil
}

func (m *mockSessionRepo) ListByStudent(_ context.Context, _ string) ([]model.Session, error) {
	return nil, nil
}

func (m *mockSessionRepo) UpdateStatus(ctx context.Context, id string, status model.SessionStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

func completedSession(id string) *model.Session {
	return &model.Session{ID: id, MentorID: "m1", StudentID: "st1", Status: model.SessionStatusCompleted}
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

// --- Create ---

// 支払いがinitiated状態で作成されることを検証
func TestService_Create_Success(t *testing.T) {
	var created *model.Payment
	paymentRepo := &mockPaymentRepo{
		createFn: func(_ context.Context, payment *model.Payment) error {
			created = payment
			return nil
		},
	}
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return completedSession(id), nil
		},
	}
	svc := NewService(paymentRepo, sessionRepo)

	payment, err := svc.Create(context.Background(), "s1", 120.0, "txn-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if payment.Status != model.PaymentStatusInitiated {
		t.Errorf("Status = %q, want %q", payment.Status, model.PaymentStatusInitiated)
	}
	if created == nil || created.Amount != 120.0 {
		t.Errorf("created = %+v, want amount 120.0", created)
	}
}

// 存在しないセッションへの支払いが拒否されることを検証
func TestService_Create_SessionNotFound(t *testing.T) {
	svc := NewService(&mockPaymentRepo{}, &mockSessionRepo{})

	_, err := svc.Create(context.Background(), "missing", 50.0, "")
	assertAPIError(t, err, model.ErrCodeSessionNotFound)
}

// 支払い済みセッションへの再支払いが拒否されることを検証
func TestService_Create_SessionAlreadyPaid(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, Status: model.SessionStatusPaid}, nil
		},
	}
	svc := NewService(&mockPaymentRepo{}, sessionRepo)

	_, err := svc.Create(context.Background(), "s1", 50.0, "")
	assertAPIError(t, err, model.ErrCodeSessionAlreadyPaid)
}

// 取引IDの重複が拒否されることを検証
func TestService_Create_DuplicateTxn(t *testing.T) {
	paymentRepo := &mockPaymentRepo{
		findByProviderTxnIDFn: func(_ context.Context, providerTxnID string) (*model.Payment, error) {
			return &model.Payment{ID: "existing", ProviderTxnID: providerTxnID}, nil
		},
	}
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return completedSession(id), nil
		},
	}
	svc := NewService(paymentRepo, sessionRepo)

	_, err := svc.Create(context.Background(), "s1", 50.0, "txn-dup")
	assertAPIError(t, err, model.ErrCodeDuplicateTxn)
}

// 取引ID未指定のとき重複チェックが行われないことを検証
func TestService_Create_NoTxnSkipsDuplicateCheck(t *testing.T) {
	checked := false
	paymentRepo := &mockPaymentRepo{
		findByProviderTxnIDFn: func(_ context.Context, _ string) (*model.Payment, error) {
			checked = true
			return nil, nil
		},
	}
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return completedSession(id), nil
		},
	}
	svc := NewService(paymentRepo, sessionRepo)

	if _, err := svc.Create(context.Background(), "s1", 50.0, ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if checked {
		t.Error("duplicate check should be skipped when providerTxnID is empty")
	}
}

// --- UpdateStatus ---

// successへの更新でセッションがpaidに進むことを検証
func TestService_UpdateStatus_SuccessMarksSessionPaid(t *testing.T) {
	var sessionUpdated string
	var newStatus model.SessionStatus
	paymentRepo := &mockPaymentRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Payment, error) {
			return &model.Payment{ID: id, SessionID: "s1", Status: model.PaymentStatusInitiated}, nil
		},
	}
	sessionRepo := &mockSessionRepo{
		updateStatusFn: func(_ context.Context, id string, status model.SessionStatus) error {
			sessionUpdated = id
			newStatus = status
			return nil
		},
	}
	svc := NewService(paymentRepo, sessionRepo)

	_, err := svc.UpdateStatus(context.Background(), "p1", model.PaymentStatusSuccess, "txn-1")
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if sessionUpdated != "s1" || newStatus != model.SessionStatusPaid {
		t.Errorf("session update = (%q, %q), want (s1, paid)", sessionUpdated, newStatus)
	}
}

// failedへの更新でセッションが変更されないことを検証
func TestService_UpdateStatus_FailedLeavesSession(t *testing.T) {
	sessionTouched := false
	paymentRepo := &mockPaymentRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Payment, error) {
			return &model.Payment{ID: id, SessionID: "s1", Status: model.PaymentStatusInitiated}, nil
		},
	}
	sessionRepo := &mockSessionRepo{
		updateStatusFn: func(_ context.Context, _ string, _ model.SessionStatus) error {
			sessionTouched = true
			return nil
		},
	}
	svc := NewService(paymentRepo, sessionRepo)

	_, err := svc.UpdateStatus(context.Background(), "p1", model.PaymentStatusFailed, "")
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if sessionTouched {
		t.Error("session status should not change on failed payment")
	}
}

// 存在しない支払いの更新が拒否されることを検証
func TestService_UpdateStatus_NotFound(t *testing.T) {
	svc := NewService(&mockPaymentRepo{}, &mockSessionRepo{})

	_, err := svc.UpdateStatus(context.Background(), "missing", model.PaymentStatusSuccess, "")
	assertAPIError(t, err, model.ErrCodePaymentNotFound)
}

// --- GetByID / ListBySession ---

// 存在しない支払いの取得が拒否されることを検証
func TestService_GetByID_NotFound(t *testing.T) {
	svc := NewService(&mockPaymentRepo{}, &mockSessionRepo{})

	_, err := svc.GetByID(context.Background(), "missing")
	assertAPIError(t, err, model.ErrCodePaymentNotFound)
}

// 支払いが無いセッションで空スライスが返ることを検証
func TestService_ListBySession_Empty(t *testing.T) {
	svc := NewService(&mockPaymentRepo{}, &mockSessionRepo{})

	got, err := svc.ListBySession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if got == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(got) != 0 {
		t.Errorf("len(got) = %d, want 0", len(got))
	}
}
