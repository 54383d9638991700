package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/mentormatch/internal/model"
)

// PaymentServiceInterface は支払い台帳サービスのインターフェース。
type PaymentServiceInterface interface {
	Create(ctx context.Context, sessionID string, amount float64, providerTxnID string) (*model.Payment, error)
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	UpdateStatus(ctx context.Context, id string, status model.PaymentStatus, providerTxnID string) (*model.Payment, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.Payment, error)
}

// PaymentHandler は支払いAPIのハンドラ。
type PaymentHandler struct {
	service PaymentServiceInterface
	config  Config
}

// NewPaymentHandler はPaymentHandlerを生成する。
func NewPaymentHandler(service PaymentServiceInterface, config Config) *PaymentHandler {
	return &PaymentHandler{service: service, config: config}
}

type createPaymentRequest struct {
	SessionID     string  `json:"sessionId"`
	Amount        float64 `json:"amount"`
	ProviderTxnID string  `json:"providerTxnId"`
}

type updatePaymentStatusRequest struct {
	Status        string `json:"status"`
	ProviderTxnID string `json:"providerTxnId"`
}

type paymentResponse struct {
	ID            string  `json:"id"`
	SessionID     string  `json:"sessionId"`
	Amount        float64 `json:"amount"`
	ProviderTxnID string  `json:"providerTxnId,omitempty"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"createdAt"`
}

type getPaymentResponse struct {
	Success bool            `json:"success"`
	Payment paymentResponse `json:"payment"`
}

type listPaymentsResponse struct {
	Success  bool              `json:"success"`
	Count    int               `json:"count"`
	Payments []paymentResponse `json:"payments"`
}

// CreatePayment はPOST /api/paymentsを処理する。
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "Invalid request body")
		return
	}
	if req.SessionID == "" {
		writeInvalidRequest(w, "sessionId is required")
		return
	}
	if req.Amount <= 0 {
		writeInvalidRequest(w, "amount must be a positive number")
		return
	}

	payment, err := h.service.Create(r.Context(), req.SessionID, req.Amount, req.ProviderTxnID)
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeJSON(w, http.StatusCreated, getPaymentResponse{
		Success: true,
		Payment: toPaymentResponse(payment),
	})
}

// GetPayment はGET /api/payments/{id}を処理する。
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeJSON(w, http.StatusOK, getPaymentResponse{
		Success: true,
		Payment: toPaymentResponse(payment),
	})
}

// UpdatePaymentStatus はPATCH /api/payments/{id}/statusを処理する。
// statusがsuccessに遷移したとき、対応するセッションをpaidに進める。
func (h *PaymentHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req updatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "Invalid request body")
		return
	}
	status := model.PaymentStatus(req.Status)
	if !status.Valid() {
		writeInvalidRequest(w, "status must be one of initiated, success, failed")
		return
	}

	payment, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status, req.ProviderTxnID)
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeJSON(w, http.StatusOK, getPaymentResponse{
		Success: true,
		Payment: toPaymentResponse(payment),
	})
}

// ListPaymentsBySession はGET /api/payments/session/{id}を処理する。
func (h *PaymentHandler) ListPaymentsBySession(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListBySession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	results := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		results = append(results, toPaymentResponse(&p))
	}
	writeJSON(w, http.StatusOK, listPaymentsResponse{
		Success:  true,
		Count:    len(results),
		Payments: results,
	})
}

func toPaymentResponse(payment *model.Payment) paymentResponse {
	return paymentResponse{
		ID:            payment.ID,
		SessionID:     payment.SessionID,
		Amount:        payment.Amount,
		ProviderTxnID: payment.ProviderTxnID,
		Status:        string(payment.Status),
		CreatedAt:     payment.CreatedAt.UTC().Format(time.RFC3339),
	}
}
