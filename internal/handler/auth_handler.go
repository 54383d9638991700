package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/mentormatch/internal/auth"
	"github.com/hitoshi/mentormatch/internal/model"
)

// AuthServiceInterface は認証サービスのインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, input auth.RegisterInput) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
}

// AuthHandler は登録・ログインAPIのハンドラ。
type AuthHandler struct {
	service AuthServiceInterface
	config  Config
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config Config) *AuthHandler {
	return &AuthHandler{service: service, config: config}
}

type registerRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Role       string   `json:"role"`
	Bio        string   `json:"bio"`
	HourlyRate *float64 `json:"hourlyRate"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Bio   string `json:"bio"`
}

type authResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

// Register はPOST /api/auth/registerを処理する。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeInvalidRequest(w, "name, email and password are required")
		return
	}

	user, token, err := h.service.Register(r.Context(), auth.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       model.Role(req.Role),
		Bio:        req.Bio,
		HourlyRate: req.HourlyRate,
	})
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Success: true,
		Token:   token,
		User:    toUserResponse(user),
	})
}

// Login はPOST /api/auth/loginを処理する。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeInvalidRequest(w, "email and password are required")
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err, h.config.ExposeInternalErrors)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Success: true,
		Token:   token,
		User:    toUserResponse(user),
	})
}

// Logout はPOST /api/auth/logoutを処理する。
// トークンはステートレスなのでサーバー側で破棄する状態はない。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out",
	})
}

func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
		Bio:   user.Bio,
	}
}
