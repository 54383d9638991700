// Package review はレビューの作成と閲覧のドメインロジックを提供する。
package review

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/mentormatch/internal/model"
	"github.com/hitoshi/mentormatch/internal/repository"
	"github.com/hitoshi/mentormatch/internal/security"
)

// MentorReviews はメンターの全レビューと平均評価を結合した読み取りビュー。
type MentorReviews struct {
	Reviews       []repository.ReviewWithStudent
	AverageRating float64
}

// Service はレビューのサービス層。
// 作成時の検証チェーンと、メンター単位の閲覧ロジックを提供する。
type Service struct {
	reviewRepo  repository.ReviewRepository
	sessionRepo repository.SessionRepository
	sanitizer   security.CommentSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	reviewRepo repository.ReviewRepository,
	sessionRepo repository.SessionRepository,
	sanitizer security.CommentSanitizerService,
) *Service {
	return &Service{
		reviewRepo:  reviewRepo,
		sessionRepo: sessionRepo,
		sanitizer:   sanitizer,
	}
}

// Create はレビューを作成する。検証は次の順序で行い、最初に失敗した条件の
// エラーを返す: セッション存在→完了済み→投稿者がそのセッションの学生→
// 未レビュー。レビューは1セッションに1件で、再提出は既存を変更せず拒否される。
func (s *Service) Create(ctx context.Context, studentID, sessionID string, rating int, comment string) (*repository.ReviewDetail, error) {
	if rating < 1 || rating > 5 {
		return nil, model.NewInvalidRatingError(rating)
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}
	if session == nil {
		return nil, model.NewSessionNotFoundError()
	}
	if session.Status != model.SessionStatusCompleted {
		return nil, model.NewSessionNotCompletedError()
	}
	if session.StudentID != studentID {
		return nil, model.NewNotSessionStudentError()
	}

	existing, err := s.reviewRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("既存レビューの確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewSessionAlreadyReviewedError()
	}

	review := &model.Review{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Rating:    rating,
		Comment:   s.sanitizer.Sanitize(comment),
		CreatedAt: time.Now(),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("レビューの作成に失敗しました: %w", err)
	}

	slog.Info("review created",
		slog.String("review_id", review.ID),
		slog.String("session_id", sessionID),
		slog.Int("rating", rating),
	)

	detail, err := s.reviewRepo.FindDetailByID(ctx, review.ID)
	if err != nil {
		return nil, fmt.Errorf("作成済みレビューの取得に失敗しました: %w", err)
	}

	return detail, nil
}

// ListByMentor は指定メンターの完了済みセッションに付いた全レビューを
// 新しい順に返す。平均評価は取得したレビュー全件から算出し、
// 0件のときは0になる。メンターが存在しない場合も空の結果を返す。
func (s *Service) ListByMentor(ctx context.Context, mentorID string) (*MentorReviews, error) {
	sessions, err := s.sessionRepo.ListCompletedByMentorIDs(ctx, []string{mentorID})
	if err != nil {
		return nil, fmt.Errorf("完了済みセッションの取得に失敗しました: %w", err)
	}

	result := &MentorReviews{Reviews: []repository.ReviewWithStudent{}}
	if len(sessions) == 0 {
		return result, nil
	}

	sessionIDs := make([]string, len(sessions))
	for i, sess := range sessions {
		sessionIDs[i] = sess.ID
	}

	reviews, err := s.reviewRepo.ListRecentBySessionIDs(ctx, sessionIDs, 0)
	if err != nil {
		return nil, fmt.Errorf("レビューの取得に失敗しました: %w", err)
	}
	if len(reviews) == 0 {
		return result, nil
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	result.Reviews = reviews
	result.AverageRating = math.Round(float64(sum)/float64(len(reviews))*100) / 100

	return result, nil
}

// GetByID は指定IDのレビューをセッションのメンター・学生情報付きで返す。
func (s *Service) GetByID(ctx context.Context, id string) (*repository.ReviewDetail, error) {
	detail, err := s.reviewRepo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("レビューの取得に失敗しました: %w", err)
	}
	if detail == nil {
		return nil, model.NewReviewNotFoundError()
	}
	return detail, nil
}
