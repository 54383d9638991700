package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/mentormatch/internal/mentor"
	"github.com/hitoshi/mentormatch/internal/middleware"
	"github.com/hitoshi/mentormatch/internal/model"
)

// --- モック定義 ---

// mockMentorService はMentorServiceInterfaceのモック実装。
type mockMentorService struct {
	listMentorsFn func(ctx context.Context, params mentor.ListParams) ([]model.MentorAggregate, error)
	getMentorFn   func(ctx context.Context, id string) (*model.MentorDetail, error)
	listBySkillFn func(ctx context.Context, skillID string) ([]model.MentorAggregate, error)
	carouselFn    func(ctx context.Context) ([]model.MentorAggregate, error)
}

func (m *mockMentorService) ListMentors(ctx context.Context, params mentor.ListParams) ([]model.MentorAggregate, error) {
	if m.listMentorsFn != nil {
		return m.listMentorsFn(ctx, params)
	}
	return []model.MentorAggregate{}, nil
}

func (m *mockMentorService) GetMentor(ctx context.Context, id string) (*model.MentorDetail, error) {
	if m.getMentorFn != nil {
		return m.getMentorFn(ctx, id)
	}
	return nil, model.NewMentorNotFoundError()
}

func (m *mockMentorService) ListBySkill(ctx context.Context, skillID string) ([]model.MentorAggregate, error) {
	if m.listBySkillFn != nil {
		return m.listBySkillFn(ctx, skillID)
	}
	return []model.MentorAggregate{}, nil
}

func (m *mockMentorService) Carousel(ctx context.Context) ([]model.MentorAggregate, error) {
	if m.carouselFn != nil {
		return m.carouselFn(ctx)
	}
	return []model.MentorAggregate{}, nil
}

// --- テストヘルパー ---

// withUser はテスト用にリクエストコンテキストに認証済みユーザーを注入するヘルパー。
func withUser(r *http.Request, userID string, role model.Role) *http.Request {
	ctx := middleware.ContextWithUser(r.Context(), userID, role)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// decodeBody はレスポンスボディを汎用マップにパースするヘルパー。
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return result
}

func floatPtr(v float64) *float64 { return &v }

// --- GET /api/mentors テスト ---

func TestMentorHandler_ListMentors_Success(t *testing.T) {
	svc := &mockMentorService{
		listMentorsFn: func(ctx context.Context, params mentor.ListParams) ([]model.MentorAggregate, error) {
			if params.SkillID != "skill-1" {
				t.Errorf("SkillID = %q, want %q", params.SkillID, "skill-1")
			}
			if params.Rates.Min == nil || *params.Rates.Min != 10 {
				t.Errorf("Rates.Min = %v, want 10", params.Rates.Min)
			}
			if params.Rates.Max == nil || *params.Rates.Max != 20 {
				t.Errorf("Rates.Max = %v, want 20", params.Rates.Max)
			}
			if params.SortBy != mentor.SortByPriceLow {
				t.Errorf("SortBy = %q, want %q", params.SortBy, mentor.SortByPriceLow)
			}
			return []model.MentorAggregate{
				{
					ID:            "mentor-1",
					Name:          "Alice",
					HourlyRate:    floatPtr(15),
					Skills:        []model.SkillRef{{ID: "skill-1", Name: "Go"}},
					AverageRating: 4.33,
					TotalReviews:  3,
					TotalSessions: 5,
				},
			}, nil
		},
	}
	h := NewMentorHandler(svc, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/mentors?skill=skill-1&minRate=10&maxRate=20&sortBy=price-low", nil)
	w := httptest.NewRecorder()
	h.ListMentors(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := decodeBody(t, w)
	if body["success"] != true {
		t.Error("success should be true")
	}
	if body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}
	mentors := body["mentors"].([]any)
	first := mentors[0].(map[string]any)
	if first["averageRating"] != 4.33 {
		t.Errorf("averageRating = %v, want 4.33", first["averageRating"])
	}
	if first["hourlyRate"] != float64(15) {
		t.Errorf("hourlyRate = %v, want 15", first["hourlyRate"])
	}
}

func TestMentorHandler_ListMentors_EmptyResult(t *testing.T) {
	h := NewMentorHandler(&mockMentorService{}, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/mentors", nil)
	w := httptest.NewRecorder()
	h.ListMentors(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := decodeBody(t, w)
	if body["count"] != float64(0) {
		t.Errorf("count = %v, want 0", body["count"])
	}
	if mentors, ok := body["mentors"].([]any); !ok || mentors == nil {
		t.Error("mentors should be an empty array, not null")
	}
}

func TestMentorHandler_ListMentors_InvalidRateFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric minRate", "minRate=abc"},
		{"NaN maxRate", "maxRate=NaN"},
		{"Inf minRate", "minRate=Inf"},
		{"negative infinity", "maxRate=-Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockMentorService{
				listMentorsFn: func(ctx context.Context, params mentor.ListParams) ([]model.MentorAggregate, error) {
					called = true
					return nil, nil
				},
			}
			h := NewMentorHandler(svc, Config{})

			req := httptest.NewRequest(http.MethodGet, "/api/mentors?"+tt.query, nil)
			w := httptest.NewRecorder()
			h.ListMentors(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if called {
				t.Error("service should not be called for invalid rate filter")
			}

			body := decodeBody(t, w)
			if body["code"] != model.ErrCodeInvalidRateFilter {
				t.Errorf("code = %v, want %v", body["code"], model.ErrCodeInvalidRateFilter)
			}
		})
	}
}

// --- GET /api/mentors/{id} テスト ---

func TestMentorHandler_GetMentor_Success(t *testing.T) {
	svc := &mockMentorService{
		getMentorFn: func(ctx context.Context, id string) (*model.MentorDetail, error) {
			if id != "mentor-1" {
				t.Errorf("id = %q, want %q", id, "mentor-1")
			}
			return &model.MentorDetail{
				MentorAggregate: model.MentorAggregate{
					ID:            "mentor-1",
					Name:          "Alice",
					AverageRating: 4,
					TotalReviews:  2,
					TotalSessions: 2,
				},
				RecentReviews: []model.RecentReview{
					{ID: "review-1", Rating: 5, Comment: "great", StudentName: "Bob"},
				},
			}, nil
		},
	}
	h := NewMentorHandler(svc, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/mentors/mentor-1", nil)
	req = withChiURLParam(req, "id", "mentor-1")
	w := httptest.NewRecorder()
	h.GetMentor(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := decodeBody(t, w)
	detail := body["mentor"].(map[string]any)
	if detail["averageRating"] != float64(4) {
		t.Errorf("averageRating = %v, want 4", detail["averageRating"])
	}
	reviews := detail["recentReviews"].([]any)
	if len(reviews) != 1 {
		t.Fatalf("recentReviews length = %d, want 1", len(reviews))
	}
	if reviews[0].(map[string]any)["studentName"] != "Bob" {
		t.Error("recent review should carry the student name")
	}
}

func TestMentorHandler_GetMentor_NotFound(t *testing.T) {
	h := NewMentorHandler(&mockMentorService{}, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/mentors/none", nil)
	req = withChiURLParam(req, "id", "none")
	w := httptest.NewRecorder()
	h.GetMentor(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	body := decodeBody(t, w)
	if body["success"] != false {
		t.Error("success should be false")
	}
	if body["message"] != "Mentor not found" {
		t.Errorf("message = %v, want %q", body["message"], "Mentor not found")
	}
}

// --- GET /api/mentors/skill/{skillId} テスト ---

func TestMentorHandler_ListBySkill_Success(t *testing.T) {
	svc := &mockMentorService{
		listBySkillFn: func(ctx context.Context, skillID string) ([]model.MentorAggregate, error) {
			if skillID != "skill-9" {
				t.Errorf("skillID = %q, want %q", skillID, "skill-9")
			}
			return []model.MentorAggregate{{ID: "mentor-1"}, {ID: "mentor-2"}}, nil
		},
	}
	h := NewMentorHandler(svc, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/mentors/skill/skill-9", nil)
	req = withChiURLParam(req, "skillId", "skill-9")
	w := httptest.NewRecorder()
	h.ListBySkill(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if body := decodeBody(t, w); body["count"] != float64(2) {
		t.Errorf("count = %v, want 2", body["count"])
	}
}

// --- GET /api/mentors/carousel テスト ---

func TestMentorHandler_Carousel_Success(t *testing.T) {
	svc := &mockMentorService{
		carouselFn: func(ctx context.Context) ([]model.MentorAggregate, error) {
			return []model.MentorAggregate{
				{ID: "mentor-1", AverageRating: 4.5},
				{ID: "mentor-2", AverageRating: 3},
			}, nil
		},
	}
	h := NewMentorHandler(svc, Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/mentors/carousel", nil)
	w := httptest.NewRecorder()
	h.Carousel(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := decodeBody(t, w)
	mentors := body["mentors"].([]any)
	if len(mentors) != 2 {
		t.Fatalf("mentors length = %d, want 2", len(mentors))
	}
	if mentors[0].(map[string]any)["id"] != "mentor-1" {
		t.Error("carousel order should be preserved")
	}
}

// --- 内部エラーの露出制御テスト ---

func TestMentorHandler_InternalError_HiddenInProduction(t *testing.T) {
	svc := &mockMentorService{
		listMentorsFn: func(ctx context.Context, params mentor.ListParams) ([]model.MentorAggregate, error) {
			return nil, context.DeadlineExceeded
		},
	}

	t.Run("hidden", func(t *testing.T) {
		h := NewMentorHandler(svc, Config{ExposeInternalErrors: false})
		req := httptest.NewRequest(http.MethodGet, "/api/mentors", nil)
		w := httptest.NewRecorder()
		h.ListMentors(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
		if body := decodeBody(t, w); body["message"] != "Internal server error" {
			t.Errorf("message = %v, want generic message", body["message"])
		}
	})

	t.Run("exposed", func(t *testing.T) {
		h := NewMentorHandler(svc, Config{ExposeInternalErrors: true})
		req := httptest.NewRequest(http.MethodGet, "/api/mentors", nil)
		w := httptest.NewRecorder()
		h.ListMentors(w, req)

		if body := decodeBody(t, w); body["message"] != context.DeadlineExceeded.Error() {
			t.Errorf("message = %v, want underlying error text", body["message"])
		}
	})
}
