// Package handler はHTTP APIのハンドラとルーティングを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/mentormatch/internal/model"
)

// Config はハンドラ共通の設定。
type Config struct {
	// ExposeInternalErrors がtrueのとき、予期しないエラーの詳細メッセージを
	// レスポンスに含める。本番環境ではfalseにする。
	ExposeInternalErrors bool
}

// apiErrorResponse は統一エラーレスポンスのフォーマット。
type apiErrorResponse struct {
	Success  bool   `json:"success"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action,omitempty"`
}

// writeJSON はレスポンスボディをJSONで書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Success:  false,
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// APIError以外のエラーは500として扱い、詳細はexposeInternalがtrueのときのみ露出する。
func handleServiceError(w http.ResponseWriter, err error, exposeInternal bool) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))

	message := "Internal server error"
	if exposeInternal {
		message = err.Error()
	}
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  message,
		Category: "system",
		Action:   "Try again later.",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeMentorNotFound,
		model.ErrCodeUserNotFound,
		model.ErrCodeSessionNotFound,
		model.ErrCodeReviewNotFound,
		model.ErrCodePaymentNotFound,
		model.ErrCodeSkillNotFound:
		return http.StatusNotFound
	case model.ErrCodeSessionAlreadyReviewed,
		model.ErrCodeDuplicateTxn,
		model.ErrCodeSessionAlreadyPaid,
		model.ErrCodeSkillAlreadyExists:
		return http.StatusConflict
	case model.ErrCodeNotSessionStudent, model.ErrCodeNotSessionMentor:
		return http.StatusForbidden
	case model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeUserAlreadyExists,
		model.ErrCodeInvalidRole,
		model.ErrCodeInvalidRateFilter,
		model.ErrCodeInvalidRating,
		model.ErrCodeSessionNotCompleted,
		model.ErrCodeSessionNotScheduled:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeUnauthorized は認証情報が取得できないときの401レスポンスを書き込む。
func writeUnauthorized(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusUnauthorized, &model.APIError{
		Code:     "UNAUTHORIZED",
		Message:  "Authentication required",
		Category: "auth",
		Action:   "Log in and retry with a valid token.",
	})
}

// writeInvalidRequest はリクエストボディが解釈できないときの400レスポンスを書き込む。
func writeInvalidRequest(w http.ResponseWriter, message string) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  message,
		Category: "validation",
		Action:   "Check the request body and try again.",
	})
}
