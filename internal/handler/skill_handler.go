package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/mentormatch/internal/model"
)

// SkillServiceInterface はスキルカタログサービスのインターフェース。
type SkillServiceInterface interface {
	List(ctx context.Context) ([]model.Skill, error)
	Create(ctx context.Context, name string) (*model.Skill, error)
}

// SkillHandler はスキルカタログAPIのハンドラ。
type SkillHandler struct {
	service SkillServiceInterface
	config  Config
}

// NewSkillHandler はSkillHandlerを生成する。
func NewSkillHandler(service SkillServiceInterface, config Config) *SkillHandler {
	return &SkillHandler{service: service, config: config}
}

type createSkillRequest struct {
	Name string `json:"name"`
}

type skillResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type listSkillsResponse struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Skills  []skillResponse `json:"skills"`
}

type createSkillResponse struct {
	Success bool          `json:"success"`
	Skill   skillResponse `json:"skill"`
}

// ListSkills はGET /api/skillsを処理する。
func (h *SkillHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	results := make([]skillResponse, 0, len(skills))
	for _, s := range skills {
		results = append(results, toSkillResponse(&s))
	}
	writeJSON(w, http.StatusOK, listSkillsResponse{
		Success: true,
		Count:   len(results),
		Skills:  results,
	})
}

// CreateSkill はPOST /api/skillsを処理する。
func (h *SkillHandler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	var req createSkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeInvalidRequest(w, "name is required")
		return
	}

	skill, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeJSON(w, http.StatusCreated, createSkillResponse{
		Success: true,
		Skill:   toSkillResponse(skill),
	})
}

func toSkillResponse(skill *model.Skill) skillResponse {
	return skillResponse{
		ID:        skill.ID,
		Name:      skill.Name,
		CreatedAt: skill.CreatedAt.UTC().Format(time.RFC3339),
	}
}
