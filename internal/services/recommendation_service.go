package services

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/Sign-up-admin/safe-room-sub007/internal/crud"
	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
)

const (
	baseCoachRating    = 4.5
	maxCoachRating     = 5.0
	sweetSpotMinPrice  = 400.0
	sweetSpotMaxPrice  = 600.0
	referencePrice     = 500.0
	ratingTieTolerance = 0.05
	goalTieTolerance   = 0.1
	coachFetchLimit    = 500
)

// Keywords looked for in a coach bio; each one found becomes a tag.
var bioTagKeywords = []string{"增肌", "燃脂", "康复", "青少年", "体态"}

type CoachLister interface {
	Coaches(ctx context.Context, query crud.ListQuery) ([]models.Coach, error)
}

type RecommendationService struct {
	coachRepo CoachLister
}

func NewRecommendationService(coachRepo CoachLister) *RecommendationService {
	return &RecommendationService{coachRepo: coachRepo}
}

func (s *RecommendationService) Recommend(
	ctx context.Context,
	opts models.RecommendOptions,
	limit int,
) ([]models.RecommendedCoach, error) {
	coaches, err := s.coachRepo.Coaches(ctx, crud.ListQuery{Page: 1, Limit: coachFetchLimit})
	if err != nil {
		return nil, err
	}

	recommended := RecommendCoaches(coaches, opts)
	if limit > 0 && len(recommended) > limit {
		recommended = recommended[:limit]
	}
	return recommended, nil
}

// RecommendCoaches filters, rates and orders coaches. It never fails; records
// with missing fields are scored with defaults.
func RecommendCoaches(coaches []models.Coach, opts models.RecommendOptions) []models.RecommendedCoach {
	history := make(map[int64]struct{}, len(opts.History))
	for _, id := range opts.History {
		history[id] = struct{}{}
	}
	keyword := strings.ToLower(strings.TrimSpace(opts.Keyword))
	skill := strings.TrimSpace(opts.Skill)

	recommended := make([]models.RecommendedCoach, 0, len(coaches))
	for _, coach := range coaches {
		if coach.Price <= 0 {
			coach.Price = models.DefaultCoachPrice
		}
		tags := CoachTags(coach)

		if keyword != "" &&
			!strings.Contains(strings.ToLower(coach.Name), keyword) &&
			!strings.Contains(strings.ToLower(coach.Bio), keyword) {
			continue
		}
		if skill != "" && !containsFold(tags, skill) {
			continue
		}
		if opts.MaxPrice > 0 && coach.Price > opts.MaxPrice {
			continue
		}

		_, inHistory := history[coach.ID]
		matched := intersect(opts.Goals, tags)
		goalMatch := 0.0
		if goals := nonEmpty(opts.Goals); len(goals) > 0 {
			goalMatch = float64(len(matched)) / float64(len(goals))
		}

		item := models.RecommendedCoach{
			Coach:           coach,
			Tags:            tags,
			GoalMatch:       goalMatch,
			InHistory:       inHistory,
			MatchedGoalTags: matched,
		}
		item.Rating = calculateCoachRating(coach, opts, tags, inHistory, goalMatch)
		item.Reason = buildRecommendReason(item)
		recommended = append(recommended, item)
	}

	sort.SliceStable(recommended, func(i, j int) bool {
		return lessRecommended(recommended[i], recommended[j])
	})

	return recommended
}

func calculateCoachRating(
	coach models.Coach,
	opts models.RecommendOptions,
	tags []string,
	inHistory bool,
	goalMatch float64,
) float64 {
	id := coach.ID
	if id < 0 {
		id = -id
	}

	rating := baseCoachRating + float64(id%10)*0.01
	if coach.Price >= sweetSpotMinPrice && coach.Price <= sweetSpotMaxPrice {
		rating += 0.1
	}
	if inHistory {
		rating += 0.3
	}
	rating += 0.2 * goalMatch
	if len(intersect(opts.Preferences, tags)) > 0 {
		rating += 0.15
	}
	if withinBudget(coach.Price, opts.BudgetMin, opts.BudgetMax) {
		rating += 0.1
	}
	rating += float64(id%5) * 0.02

	return clamp(round2(rating), 0, maxCoachRating)
}

func lessRecommended(a, b models.RecommendedCoach) bool {
	if a.InHistory != b.InHistory {
		return a.InHistory
	}
	if math.Abs(a.Rating-b.Rating) > ratingTieTolerance {
		return a.Rating > b.Rating
	}
	if math.Abs(a.GoalMatch-b.GoalMatch) > goalTieTolerance {
		return a.GoalMatch > b.GoalMatch
	}
	return math.Abs(a.Price-referencePrice) < math.Abs(b.Price-referencePrice)
}

func buildRecommendReason(item models.RecommendedCoach) string {
	parts := make([]string, 0, 4)
	if item.InHistory {
		parts = append(parts, "您曾预约过该教练")
	}
	if len(item.MatchedGoalTags) > 0 {
		parts = append(parts, "擅长"+strings.Join(item.MatchedGoalTags, "、"))
	}
	switch {
	case item.Rating >= 4.8:
		parts = append(parts, "评分优秀")
	case item.Rating >= 4.6:
		parts = append(parts, "口碑良好")
	}
	if item.Price <= referencePrice {
		parts = append(parts, "价格实惠")
	}

	if len(parts) == 0 {
		return "综合推荐"
	}
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, "，")
}

// ExtractTags returns the bio keywords present in text, in keyword order.
func ExtractTags(text string) []string {
	tags := make([]string, 0, len(bioTagKeywords))
	for _, keyword := range bioTagKeywords {
		if strings.Contains(text, keyword) {
			tags = append(tags, keyword)
		}
	}
	return tags
}

// CoachTags merges explicit specialties with tags extracted from the bio.
func CoachTags(coach models.Coach) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0, len(coach.Specialties)+len(bioTagKeywords))
	for _, tag := range append(append([]string{}, coach.Specialties...), ExtractTags(coach.Bio)...) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

func withinBudget(price, minBudget, maxBudget float64) bool {
	if minBudget <= 0 && maxBudget <= 0 {
		return false
	}
	if price < minBudget {
		return false
	}
	return maxBudget <= 0 || price <= maxBudget
}

func intersect(values, tags []string) []string {
	matched := make([]string, 0)
	seen := make(map[string]struct{})
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		if containsFold(tags, value) {
			seen[value] = struct{}{}
			matched = append(matched, value)
		}
	}
	return matched
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{})
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), target) {
			return true
		}
	}
	return false
}

func clamp(value, lower, upper float64) float64 {
	return math.Max(lower, math.Min(upper, value))
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
