// Package model はドメインモデルを定義する。
package model

import "time"

// PaymentStatus は支払いの状態を表す。
type PaymentStatus string

const (
	// PaymentStatusInitiated は支払い開始の状態。
	PaymentStatusInitiated PaymentStatus = "initiated"
	// PaymentStatusSuccess は支払い成功の状態。対応するセッションをpaidに進める。
	PaymentStatusSuccess PaymentStatus = "success"
	// PaymentStatusFailed は支払い失敗の状態。
	PaymentStatusFailed PaymentStatus = "failed"
)

// Valid は定義済みの支払い状態かどうかを返す。
func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusInitiated || s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// Payment はセッションに対する支払い記録を表す。
// 外部決済ゲートウェイとの通信は行わず、台帳としてのみ機能する。
type Payment struct {
	ID            string
	SessionID     string
	Amount        float64
	ProviderTxnID string // 外部決済プロバイダの取引ID。空の場合もある。
	Status        PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
