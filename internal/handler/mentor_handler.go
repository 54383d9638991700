package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/mentormatch/internal/mentor"
	"github.com/hitoshi/mentormatch/internal/model"
)

// MentorServiceInterface はメンター集約サービスのインターフェース。
type MentorServiceInterface interface {
	ListMentors(ctx context.Context, params mentor.ListParams) ([]model.MentorAggregate, error)
	GetMentor(ctx context.Context, id string) (*model.MentorDetail, error)
	ListBySkill(ctx context.Context, skillID string) ([]model.MentorAggregate, error)
	Carousel(ctx context.Context) ([]model.MentorAggregate, error)
}

// MentorHandler はメンター一覧・詳細APIのハンドラ。
type MentorHandler struct {
	service MentorServiceInterface
	config  Config
}

// NewMentorHandler はMentorHandlerを生成する。
func NewMentorHandler(service MentorServiceInterface, config Config) *MentorHandler {
	return &MentorHandler{service: service, config: config}
}

// --- レスポンス型 ---

type skillRefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type mentorResponse struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	Bio           string             `json:"bio"`
	HourlyRate    *float64           `json:"hourlyRate"`
	Skills        []skillRefResponse `json:"skills"`
	AverageRating float64            `json:"averageRating"`
	TotalReviews  int                `json:"totalReviews"`
	TotalSessions int                `json:"totalSessions"`
}

type listMentorsResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Mentors []mentorResponse `json:"mentors"`
}

type recentReviewResponse struct {
	ID          string `json:"id"`
	SessionID   string `json:"sessionId"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
	StudentName string `json:"studentName"`
	CreatedAt   string `json:"createdAt"`
}

type mentorDetailResponse struct {
	mentorResponse
	RecentReviews []recentReviewResponse `json:"recentReviews"`
}

type getMentorResponse struct {
	Success bool                 `json:"success"`
	Mentor  mentorDetailResponse `json:"mentor"`
}

// ListMentors はGET /api/mentorsを処理する。
// skill・minRate・maxRateでの絞り込みとsortByでの並べ替えをサポートする。
func (h *MentorHandler) ListMentors(w http.ResponseWriter, r *http.Request) {
	params := mentor.ListParams{
		SkillID: r.URL.Query().Get("skill"),
		SortBy:  mentor.SortBy(r.URL.Query().Get("sortBy")),
	}

	minRate, err := parseRateParam(r.URL.Query().Get("minRate"))
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}
	maxRate, err := parseRateParam(r.URL.Query().Get("maxRate"))
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}
	params.Rates.Min = minRate
	params.Rates.Max = maxRate

	mentors, err := h.service.ListMentors(r.Context(), params)
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeMentorList(w, mentors)
}

// GetMentor はGET /api/mentors/{id}を処理する。
func (h *MentorHandler) GetMentor(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetMentor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	resp := mentorDetailResponse{
		mentorResponse: toMentorResponse(detail.MentorAggregate),
		RecentReviews:  make([]recentReviewResponse, 0, len(detail.RecentReviews)),
	}
	for _, review := range detail.RecentReviews {
		resp.RecentReviews = append(resp.RecentReviews, recentReviewResponse{
			ID:          review.ID,
			SessionID:   review.SessionID,
			Rating:      review.Rating,
			Comment:     review.Comment,
			StudentName: review.StudentName,
			CreatedAt:   review.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, getMentorResponse{Success: true, Mentor: resp})
}

// ListBySkill はGET /api/mentors/skill/{skillId}を処理する。
func (h *MentorHandler) ListBySkill(w http.ResponseWriter, r *http.Request) {
	mentors, err := h.service.ListBySkill(r.Context(), chi.URLParam(r, "skillId"))
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeMentorList(w, mentors)
}

// Carousel はGET /api/mentors/carouselを処理する。
func (h *MentorHandler) Carousel(w http.ResponseWriter, r *http.Request) {
	mentors, err := h.service.Carousel(r.Context())
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeMentorList(w, mentors)
}

// --- ヘルパー関数 ---

// parseRateParam は料金フィルタのクエリパラメータを解釈する。
// 空文字はnil（フィルタなし）。数値でない文字列とNaN/Infは拒否する。
func parseRateParam(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, model.NewInvalidRateFilterError(value)
	}
	return &f, nil
}

func toMentorResponse(agg model.MentorAggregate) mentorResponse {
	skills := make([]skillRefResponse, 0, len(agg.Skills))
	for _, s := range agg.Skills {
		skills = append(skills, skillRefResponse{ID: s.ID, Name: s.Name})
	}
	return mentorResponse{
		ID:            agg.ID,
		Name:          agg.Name,
		Email:         agg.Email,
		Bio:           agg.Bio,
		HourlyRate:    agg.HourlyRate,
		Skills:        skills,
		AverageRating: agg.AverageRating,
		TotalReviews:  agg.TotalReviews,
		TotalSessions: agg.TotalSessions,
	}
}

func writeMentorList(w http.ResponseWriter, mentors []model.MentorAggregate) {
	results := make([]mentorResponse, 0, len(mentors))
	for _, m := range mentors {
		results = append(results, toMentorResponse(m))
	}
	writeJSON(w, http.StatusOK, listMentorsResponse{
		Success: true,
		Count:   len(results),
		Mentors: results,
	})
}
