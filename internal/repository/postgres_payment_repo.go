package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/mentormatch/internal/model"
)

// PostgresPaymentRepo はPostgreSQLを使用した支払い台帳リポジトリ。
type PostgresPaymentRepo struct {
	db *sql.DB
}

// NewPostgresPaymentRepo はPostgresPaymentRepoを生成する。
func NewPostgresPaymentRepo(db *sql.DB) *PostgresPaymentRepo {
	return &PostgresPaymentRepo{db: db}
}

// Create は支払いを作成する。
func (r *PostgresPaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (id, session_id, amount, provider_txn_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		payment.ID, payment.SessionID, payment.Amount,
		nullIfEmpty(payment.ProviderTxnID), payment.Status,
		payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// FindByID は指定IDの支払いを取得する。見つからない場合はnilを返す。
func (r *PostgresPaymentRepo) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByProviderTxnID は外部取引IDで支払いを検索する。見つからない場合はnilを返す。
func (r *PostgresPaymentRepo) FindByProviderTxnID(ctx context.Context, providerTxnID string) (*model.Payment, error) {
	return r.findOne(ctx, `WHERE provider_txn_id = $1`, providerTxnID)
}

func (r *PostgresPaymentRepo) findOne(ctx context.Context, where string, arg any) (*model.Payment, error) {
	payment := &model.Payment{}
	var txnID sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, amount, provider_txn_id, status, created_at, updated_at
		 FROM payments `+where,
		arg,
	).Scan(&payment.ID, &payment.SessionID, &payment.Amount, &txnID,
		&payment.Status, &payment.CreatedAt, &payment.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	payment.ProviderTxnID = txnID.String
	return payment, nil
}

// ListBySessionID は指定セッションの支払いを新しい順で返す。
func (r *PostgresPaymentRepo) ListBySessionID(ctx context.Context, sessionID string) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, amount, provider_txn_id, status, created_at, updated_at
		 FROM payments WHERE session_id = $1 ORDER BY created_at DESC, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		var p model.Payment
		var txnID sql.NullString
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Amount, &txnID,
			&p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		p.ProviderTxnID = txnID.String
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment rows: %w", err)
	}

	return payments, nil
}

// UpdateStatus は支払いの状態を更新する。providerTxnIDが空でない場合は併せて更新する。
func (r *PostgresPaymentRepo) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus, providerTxnID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payments
		 SET status = $2, provider_txn_id = COALESCE($3, provider_txn_id), updated_at = now()
		 WHERE id = $1`,
		id, status, nullIfEmpty(providerTxnID),
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("payment not found: %s", id)
	}
	return nil
}

// nullIfEmpty は空文字をNULLとして扱うための変換。
// provider_txn_idの部分一意インデックスはNULLを対象外とする。
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// compile-time interface check
var _ PaymentRepository = (*PostgresPaymentRepo)(nil)
