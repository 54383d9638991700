// Package payment は支払い台帳のドメインロジックを提供する。
// 外部決済ゲートウェイとは通信せず、支払い記録の管理のみを行う。
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/mentormatch/internal/model"
	"github.com/hitoshi/mentormatch/internal/repository"
)

// Service は支払い台帳のサービス層。
type Service struct {
	paymentRepo repository.PaymentRepository
	sessionRepo repository.SessionRepository
}

// NewService はServiceを生成する。
func NewService(paymentRepo repository.PaymentRepository, sessionRepo repository.SessionRepository) *Service {
	return &Service{
		paymentRepo: paymentRepo,
		sessionRepo: sessionRepo,
	}
}

// Create は支払い記録をinitiated状態で作成する。
// 対象セッションが存在しないか支払い済みの場合は拒否する。
// providerTxnIDが指定された場合、同じ取引IDの既存支払いがあれば拒否する。
func (s *Service) Create(ctx context.Context, sessionID string, amount float64, providerTxnID string) (*model.Payment, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}
	if session == nil {
		return nil, model.NewSessionNotFoundError()
	}
	if session.Status == model.SessionStatusPaid {
		return nil, model.NewSessionAlreadyPaidError()
	}

	if providerTxnID != "" {
		existing, err := s.paymentRepo.FindByProviderTxnID(ctx, providerTxnID)
		if err != nil {
			return nil, fmt.Errorf("既存支払いの確認に失敗しました: %w", err)
		}
		if existing != nil {
			return nil, model.NewDuplicateTxnError()
		}
	}

	now := time.Now()
	payment := &model.Payment{
		ID:            uuid.New().String(),
		SessionID:     sessionID,
		Amount:        amount,
		ProviderTxnID: providerTxnID,
		Status:        model.PaymentStatusInitiated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("支払いの作成に失敗しました: %w", err)
	}

	slog.Info("payment created",
		slog.String("payment_id", payment.ID),
		slog.String("session_id", sessionID),
		slog.Float64("amount", amount),
	)

	return payment, nil
}

// GetByID は指定IDの支払いを返す。
func (s *Service) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("支払いの取得に失敗しました: %w", err)
	}
	if payment == nil {
		return nil, model.NewPaymentNotFoundError()
	}
	return payment, nil
}

// UpdateStatus は支払いの状態を更新する。statusがsuccessになった場合、
// 対応するセッションをpaidに進める。providerTxnIDが空でない場合は併せて記録する。
func (s *Service) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus, providerTxnID string) (*model.Payment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid payment status: %s", status)
	}

	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("支払いの取得に失敗しました: %w", err)
	}
	if payment == nil {
		return nil, model.NewPaymentNotFoundError()
	}

	if err := s.paymentRepo.UpdateStatus(ctx, id, status, providerTxnID); err != nil {
		return nil, fmt.Errorf("支払い状態の更新に失敗しました: %w", err)
	}

	if status == model.PaymentStatusSuccess {
		if err := s.sessionRepo.UpdateStatus(ctx, payment.SessionID, model.SessionStatusPaid); err != nil {
			return nil, fmt.Errorf("セッション状態の更新に失敗しました: %w", err)
		}
		slog.Info("session marked as paid",
			slog.String("session_id", payment.SessionID),
			slog.String("payment_id", id),
		)
	}

	updated, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("更新済み支払いの取得に失敗しました: %w", err)
	}

	return updated, nil
}

// ListBySession は指定セッションの支払いを新しい順で返す。
func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]model.Payment, error) {
	payments, err := s.paymentRepo.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("支払い一覧の取得に失敗しました: %w", err)
	}
	if payments == nil {
		payments = []model.Payment{}
	}
	return payments, nil
}
