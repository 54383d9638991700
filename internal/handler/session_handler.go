package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/mentormatch/internal/middleware"
	"github.com/hitoshi/mentormatch/internal/model"
)

// SessionServiceInterface はセッション台帳サービスのインターフェース。
type SessionServiceInterface interface {
	Book(ctx context.Context, studentID, mentorID string, scheduledAt time.Time) (*model.Session, error)
	Complete(ctx context.Context, mentorID, sessionID string) (*model.Session, error)
	GetByID(ctx context.Context, id string) (*model.Session, error)
	ListMine(ctx context.Context, userID string, role model.Role) ([]model.Session, error)
}

// SessionHandler はセッションAPIのハンドラ。
type SessionHandler struct {
	service SessionServiceInterface
	config  Config
}

// NewSessionHandler はSessionHandlerを生成する。
func NewSessionHandler(service SessionServiceInterface, config Config) *SessionHandler {
	return &SessionHandler{service: service, config: config}
}

type bookSessionRequest struct {
	MentorID    string    `json:"mentorId"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

type sessionResponse struct {
	ID          string `json:"id"`
	MentorID    string `json:"mentorId"`
	StudentID   string `json:"studentId"`
	Status      string `json:"status"`
	ScheduledAt string `json:"scheduledAt"`
	CreatedAt   string `json:"createdAt"`
}

type getSessionResponse struct {
	Success bool            `json:"success"`
	Session sessionResponse `json:"session"`
}

type listSessionsResponse struct {
	Success  bool              `json:"success"`
	Count    int               `json:"count"`
	Sessions []sessionResponse `json:"sessions"`
}

// BookSession はPOST /api/sessionsを処理する。
// 認証済みユーザーを学生としてメンターとのセッションを予約する。
func (h *SessionHandler) BookSession(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req bookSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "Invalid request body")
		return
	}
	if req.MentorID == "" {
		writeInvalidRequest(w, "mentorId is required")
		return
	}
	if req.ScheduledAt.IsZero() {
		writeInvalidRequest(w, "scheduledAt is required")
		return
	}

	session, err := h.service.Book(r.Context(), userID, req.MentorID, req.ScheduledAt)
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeJSON(w, http.StatusCreated, getSessionResponse{
		Success: true,
		Session: toSessionResponse(session),
	})
}

// CompleteSession はPOST /api/sessions/{id}/completeを処理する。
// セッションの担当メンター本人のみが完了にできる。
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	session, err := h.service.Complete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeJSON(w, http.StatusOK, getSessionResponse{
		Success: true,
		Session: toSessionResponse(session),
	})
}

// GetSession はGET /api/sessions/{id}を処理する。
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeJSON(w, http.StatusOK, getSessionResponse{
		Success: true,
		Session: toSessionResponse(session),
	})
}

// ListSessions はGET /api/sessionsを処理する。
// メンターは担当セッション、学生は予約したセッションを返す。
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}
	role, err := middleware.RoleFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	sessions, err := h.service.ListMine(r.Context(), userID, role)
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	results := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		results = append(results, toSessionResponse(&s))
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{
		Success:  true,
		Count:    len(results),
		Sessions: results,
	})
}

func toSessionResponse(session *model.Session) sessionResponse {
	return sessionResponse{
		ID:          session.ID,
		MentorID:    session.MentorID,
		StudentID:   session.StudentID,
		Status:      string(session.Status),
		ScheduledAt: session.ScheduledAt.UTC().Format(time.RFC3339),
		CreatedAt:   session.CreatedAt.UTC().Format(time.RFC3339),
	}
}
