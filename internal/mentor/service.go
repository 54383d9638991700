// Package mentor はメンター一覧・詳細の読み取り集約ロジックを提供する。
package mentor

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/hitoshi/mentormatch/internal/model"
	"github.com/hitoshi/mentormatch/internal/repository"
)

// SortBy はメンター一覧のソート順を表す。
type SortBy string

const (
	// SortByRating は平均評価の降順。
	SortByRating SortBy = "rating"
	// SortByPriceLow は時給の昇順。時給未設定は0として扱う。
	SortByPriceLow SortBy = "price-low"
	// SortByPriceHigh は時給の降順。時給未設定は0として扱う。
	SortByPriceHigh SortBy = "price-high"
)

// ListParams はメンター一覧のフィルタとソート条件。
type ListParams struct {
	SkillID string
	Rates   repository.RateRange
	SortBy  SortBy
}

// carouselLimit はカルーセルに表示するメンター数の上限。
const carouselLimit = 10

// recentReviewLimit はメンター詳細に表示する直近レビュー数の上限。
const recentReviewLimit = 10

// Service はメンターの読み取り集約サービス。
// 統計はキャッシュせず、リクエストごとに永続データから再計算する。
type Service struct {
	userRepo        repository.UserRepository
	mentorSkillRepo repository.MentorSkillRepository
	sessionRepo     repository.SessionRepository
	reviewRepo      repository.ReviewRepository
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	mentorSkillRepo repository.MentorSkillRepository,
	sessionRepo repository.SessionRepository,
	reviewRepo repository.ReviewRepository,
) *Service {
	return &Service{
		userRepo:        userRepo,
		mentorSkillRepo: mentorSkillRepo,
		sessionRepo:     sessionRepo,
		reviewRepo:      reviewRepo,
	}
}

// ListMentors はフィルタ条件に一致するメンターを統計付きで返す。
// スキルフィルタは候補の取得順を保ったまま積集合を取る。
// ソートは安定ソートで、同値のメンターは元の取得順を維持する。
func (s *Service) ListMentors(ctx context.Context, params ListParams) ([]model.MentorAggregate, error) {
	candidates, err := s.userRepo.ListMentors(ctx, params.Rates, 0)
	if err != nil {
		return nil, fmt.Errorf("メンター一覧の取得に失敗しました: %w", err)
	}

	if params.SkillID != "" {
		linked, err := s.mentorSkillRepo.ListMentorIDsBySkill(ctx, params.SkillID)
		if err != nil {
			return nil, fmt.Errorf("スキルリンクの取得に失敗しました: %w", err)
		}
		linkedSet := make(map[string]bool, len(linked))
		for _, id := range linked {
			linkedSet[id] = true
		}
		filtered := candidates[:0]
		for _, m := range candidates {
			if linkedSet[m.ID] {
				filtered = append(filtered, m)
			}
		}
		candidates = filtered
	}

	aggregates, _, err := s.decorate(ctx, candidates)
	if err != nil {
		return nil, err
	}

	sortAggregates(aggregates, params.SortBy)

	return aggregates, nil
}

// GetMentor は指定IDのメンター詳細を統計と直近レビュー付きで返す。
// ユーザーが存在しない場合もroleがmentorでない場合も同じ未検出エラーを返す。
func (s *Service) GetMentor(ctx context.Context, id string) (*model.MentorDetail, error) {
	m, err := s.userRepo.FindMentorByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("メンターの取得に失敗しました: %w", err)
	}
	if m == nil {
		return nil, model.NewMentorNotFoundError()
	}

	aggregates, sessionIDsByMentor, err := s.decorate(ctx, []model.Mentor{*m})
	if err != nil {
		return nil, err
	}

	detail := &model.MentorDetail{MentorAggregate: aggregates[0]}

	sessionIDs := sessionIDsByMentor[id]
	if len(sessionIDs) > 0 {
		recent, err := s.reviewRepo.ListRecentBySessionIDs(ctx, sessionIDs, recentReviewLimit)
		if err != nil {
			return nil, fmt.Errorf("直近レビューの取得に失敗しました: %w", err)
		}
		for _, r := range recent {
			detail.RecentReviews = append(detail.RecentReviews, model.RecentReview{
				ID:          r.ID,
				SessionID:   r.SessionID,
				Rating:      r.Rating,
				Comment:     r.Comment,
				StudentName: r.StudentName,
				CreatedAt:   r.CreatedAt,
			})
		}
	}

	return detail, nil
}

// ListBySkill は指定スキルにリンクされたメンターを統計付きで返す。
// 順序はリンク作成順。リンクが無い場合は空を返す。
func (s *Service) ListBySkill(ctx context.Context, skillID string) ([]model.MentorAggregate, error) {
	linked, err := s.mentorSkillRepo.ListMentorIDsBySkill(ctx, skillID)
	if err != nil {
		return nil, fmt.Errorf("スキルリンクの取得に失敗しました: %w", err)
	}
	if len(linked) == 0 {
		return []model.MentorAggregate{}, nil
	}

	mentors, err := s.userRepo.ListMentorsByIDs(ctx, linked)
	if err != nil {
		return nil, fmt.Errorf("メンターの取得に失敗しました: %w", err)
	}

	// リンク作成順に並べ直す。削除済みや役割違いのIDは黙って落ちる。
	byID := make(map[string]model.Mentor, len(mentors))
	for _, m := range mentors {
		byID[m.ID] = m
	}
	ordered := make([]model.Mentor, 0, len(mentors))
	for _, id := range linked {
		if m, ok := byID[id]; ok {
			ordered = append(ordered, m)
		}
	}

	aggregates, _, err := s.decorate(ctx, ordered)
	if err != nil {
		return nil, err
	}

	return aggregates, nil
}

// Carousel はトップページ表示用のメンターを返す。
// 作成順の先頭10名を取得してから平均評価の降順に並べる。
func (s *Service) Carousel(ctx context.Context) ([]model.MentorAggregate, error) {
	mentors, err := s.userRepo.ListMentors(ctx, repository.RateRange{}, carouselLimit)
	if err != nil {
		return nil, fmt.Errorf("メンター一覧の取得に失敗しました: %w", err)
	}

	aggregates, _, err := s.decorate(ctx, mentors)
	if err != nil {
		return nil, err
	}

	sortAggregates(aggregates, SortByRating)

	return aggregates, nil
}

// decorate はメンター群にスキルと統計を付与した集約ビューを構築する。
// メンター数に依存しない固定回数のクエリで必要なデータを一括取得し、
// メモリ上でグループ化する。戻り値の第二要素はメンターIDごとの
// 完了済みセッションID一覧（直近レビュー取得用）。
func (s *Service) decorate(ctx context.Context, mentors []model.Mentor) ([]model.MentorAggregate, map[string][]string, error) {
	aggregates := make([]model.MentorAggregate, len(mentors))
	sessionIDsByMentor := make(map[string][]string)
	if len(mentors) == 0 {
		return aggregates, sessionIDsByMentor, nil
	}

	mentorIDs := make([]string, len(mentors))
	for i, m := range mentors {
		mentorIDs[i] = m.ID
	}

	links, err := s.mentorSkillRepo.ListByMentorIDs(ctx, mentorIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("スキルリンクの取得に失敗しました: %w", err)
	}
	skillsByMentor := make(map[string][]model.SkillRef)
	for _, link := range links {
		skillsByMentor[link.MentorID] = append(skillsByMentor[link.MentorID], model.SkillRef{
			ID:   link.SkillID,
			Name: link.SkillName,
		})
	}

	sessions, err := s.sessionRepo.ListCompletedByMentorIDs(ctx, mentorIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("完了済みセッションの取得に失敗しました: %w", err)
	}
	mentorBySession := make(map[string]string, len(sessions))
	allSessionIDs := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		mentorBySession[sess.ID] = sess.MentorID
		sessionIDsByMentor[sess.MentorID] = append(sessionIDsByMentor[sess.MentorID], sess.ID)
		allSessionIDs = append(allSessionIDs, sess.ID)
	}

	type ratingAcc struct {
		sum   int
		count int
	}
	ratings := make(map[string]*ratingAcc)
	if len(allSessionIDs) > 0 {
		reviews, err := s.reviewRepo.ListBySessionIDs(ctx, allSessionIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("レビューの取得に失敗しました: %w", err)
		}
		for _, r := range reviews {
			mentorID, ok := mentorBySession[r.SessionID]
			if !ok {
				continue
			}
			acc := ratings[mentorID]
			if acc == nil {
				acc = &ratingAcc{}
				ratings[mentorID] = acc
			}
			acc.sum += r.Rating
			acc.count++
		}
	}

	for i, m := range mentors {
		agg := model.MentorAggregate{
			ID:            m.ID,
			Name:          m.Name,
			Email:         m.Email,
			Bio:           m.Bio,
			HourlyRate:    m.HourlyRate,
			Skills:        skillsByMentor[m.ID],
			TotalSessions: len(sessionIDsByMentor[m.ID]),
		}
		if acc := ratings[m.ID]; acc != nil && acc.count > 0 {
			agg.AverageRating = roundRating(float64(acc.sum) / float64(acc.count))
			agg.TotalReviews = acc.count
		}
		aggregates[i] = agg
	}

	return aggregates, sessionIDsByMentor, nil
}

// sortAggregates は指定のソート順で集約ビューを並べ替える。
// 安定ソートを使い、同値の要素は元の取得順を維持する。
// 未知のソート指定は並べ替えを行わない。
func sortAggregates(aggregates []model.MentorAggregate, sortBy SortBy) {
	switch sortBy {
	case SortByRating:
		sort.SliceStable(aggregates, func(i, j int) bool {
			return aggregates[i].AverageRating > aggregates[j].AverageRating
		})
	case SortByPriceLow:
		sort.SliceStable(aggregates, func(i, j int) bool {
			return rateOrZero(aggregates[i].HourlyRate) < rateOrZero(aggregates[j].HourlyRate)
		})
	case SortByPriceHigh:
		sort.SliceStable(aggregates, func(i, j int) bool {
			return rateOrZero(aggregates[i].HourlyRate) > rateOrZero(aggregates[j].HourlyRate)
		})
	}
}

func rateOrZero(rate *float64) float64 {
	if rate == nil {
		return 0
	}
	return *rate
}

// roundRating は平均評価を小数第2位に丸める。
func roundRating(v float64) float64 {
	return math.Round(v*100) / 100
}
