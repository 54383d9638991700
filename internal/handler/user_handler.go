package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/mentormatch/internal/middleware"
	"github.com/hitoshi/mentormatch/internal/user"
)

// UserServiceInterface はプロフィール管理サービスのインターフェース。
type UserServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*user.Profile, error)
	UpdateProfile(ctx context.Context, userID string, input user.UpdateInput) (*user.Profile, error)
}

// UserHandler はプロフィールAPIのハンドラ。
type UserHandler struct {
	service UserServiceInterface
	config  Config
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, config Config) *UserHandler {
	return &UserHandler{service: service, config: config}
}

type updateProfileRequest struct {
	Name       *string  `json:"name"`
	Bio        *string  `json:"bio"`
	HourlyRate *float64 `json:"hourlyRate"`
}

type replaceSkillsRequest struct {
	SkillIDs []string `json:"skillIds"`
}

type profileResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Role       string             `json:"role"`
	Bio        string             `json:"bio"`
	HourlyRate *float64           `json:"hourlyRate"`
	Skills     []skillRefResponse `json:"skills"`
}

type getProfileResponse struct {
	Success bool            `json:"success"`
	User    profileResponse `json:"user"`
}

// GetMe はGET /api/users/meを処理する。
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeJSON(w, http.StatusOK, getProfileResponse{Success: true, User: toProfileResponse(profile)})
}

// UpdateMe はPATCH /api/users/meを処理する。
// 指定されたフィールドのみ更新する。hourlyRateはメンターのみ反映される。
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "Invalid request body")
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, user.UpdateInput{
		Name:       req.Name,
		Bio:        req.Bio,
		HourlyRate: req.HourlyRate,
	})
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeJSON(w, http.StatusOK, getProfileResponse{Success: true, User: toProfileResponse(profile)})
}

// ReplaceSkills はPUT /api/users/me/skillsを処理する。
// メンターのスキルリンク集合を指定された集合に置き換える。
func (h *UserHandler) ReplaceSkills(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req replaceSkillsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "Invalid request body")
		return
	}
	if req.SkillIDs == nil {
		req.SkillIDs = []string{}
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, user.UpdateInput{
		SkillIDs: req.SkillIDs,
	})
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeJSON(w, http.StatusOK, getProfileResponse{Success: true, User: toProfileResponse(profile)})
}

func toProfileResponse(profile *user.Profile) profileResponse {
	skills := make([]skillRefResponse, 0, len(profile.Skills))
	for _, s := range profile.Skills {
		skills = append(skills, skillRefResponse{ID: s.ID, Name: s.Name})
	}
	return profileResponse{
		ID:         profile.User.ID,
		Name:       profile.User.Name,
		Email:      profile.User.Email,
		Role:       string(profile.User.Role),
		Bio:        profile.User.Bio,
		HourlyRate: profile.HourlyRate,
		Skills:     skills,
	}
}
