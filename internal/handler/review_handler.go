package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/mentormatch/internal/middleware"
	"github.com/hitoshi/mentormatch/internal/repository"
	"github.com/hitoshi/mentormatch/internal/review"
)

// ReviewServiceInterface はレビューサービスのインターフェース。
type ReviewServiceInterface interface {
	Create(ctx context.Context, studentID, sessionID string, rating int, comment string) (*repository.ReviewDetail, error)
	ListByMentor(ctx context.Context, mentorID string) (*review.MentorReviews, error)
	GetByID(ctx context.Context, id string) (*repository.ReviewDetail, error)
}

// ReviewHandler はレビューAPIのハンドラ。
type ReviewHandler struct {
	service ReviewServiceInterface
	config  Config
}

// NewReviewHandler はReviewHandlerを生成する。
func NewReviewHandler(service ReviewServiceInterface, config Config) *ReviewHandler {
	return &ReviewHandler{service: service, config: config}
}

type createReviewRequest struct {
	SessionID string `json:"sessionId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type reviewPartyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type reviewDetailResponse struct {
	ID        string              `json:"id"`
	SessionID string              `json:"sessionId"`
	Rating    int                 `json:"rating"`
	Comment   string              `json:"comment"`
	Mentor    reviewPartyResponse `json:"mentor"`
	Student   reviewPartyResponse `json:"student"`
	CreatedAt string              `json:"createdAt"`
}

type getReviewResponse struct {
	Success bool                 `json:"success"`
	Review  reviewDetailResponse `json:"review"`
}

type reviewListItemResponse struct {
	ID          string `json:"id"`
	SessionID   string `json:"sessionId"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
	StudentName string `json:"studentName"`
	CreatedAt   string `json:"createdAt"`
}

type listReviewsResponse struct {
	Success       bool                     `json:"success"`
	Count         int                      `json:"count"`
	AverageRating float64                  `json:"averageRating"`
	Reviews       []reviewListItemResponse `json:"reviews"`
}

// CreateReview はPOST /api/reviewsを処理する。
// 認証済みユーザーが自身の完了済みセッションに対してレビューを投稿する。
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "Invalid request body")
		return
	}
	if req.SessionID == "" {
		writeInvalidRequest(w, "sessionId is required")
		return
	}

	detail, err := h.service.Create(r.Context(), userID, req.SessionID, req.Rating, req.Comment)
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeJSON(w, http.StatusCreated, getReviewResponse{
		Success: true,
		Review:  toReviewDetailResponse(detail),
	})
}

// ListReviews はGET /api/reviews?mentor=<id>を処理する。
// メンターの完了済みセッションに紐づく全レビューを新しい順で返す。
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	mentorID := r.URL.Query().Get("mentor")
	if mentorID == "" {
		writeInvalidRequest(w, "mentor query parameter is required")
		return
	}

	result, err := h.service.ListByMentor(r.Context(), mentorID)
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	results := make([]reviewListItemResponse, 0, len(result.Reviews))
	for _, rv := range result.Reviews {
		results = append(results, reviewListItemResponse{
			ID:          rv.ID,
			SessionID:   rv.SessionID,
			Rating:      rv.Rating,
			Comment:     rv.Comment,
			StudentName: rv.StudentName,
			CreatedAt:   rv.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, listReviewsResponse{
		Success:       true,
		Count:         len(results),
		AverageRating: result.AverageRating,
		Reviews:       results,
	})
}

// GetReview はGET /api/reviews/{id}を処理する。
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeJSON(w, http.StatusOK, getReviewResponse{
		Success: true,
		Review:  toReviewDetailResponse(detail),
	})
}

func toReviewDetailResponse(detail *repository.ReviewDetail) reviewDetailResponse {
	return reviewDetailResponse{
		ID:        detail.ID,
		SessionID: detail.SessionID,
		Rating:    detail.Rating,
		Comment:   detail.Comment,
		Mentor:    reviewPartyResponse{ID: detail.MentorID, Name: detail.MentorName},
		Student:   reviewPartyResponse{ID: detail.StudentID, Name: detail.StudentName},
		CreatedAt: detail.CreatedAt.UTC().Format(time.RFC3339),
	}
}
