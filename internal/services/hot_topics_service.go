package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Sign-up-admin/safe-room-sub007/internal/crud"
	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
)

const (
	postFetchLimit       = 500
	hotTopicLimit        = 10
	personalizedLimit    = 5
	interestBonus        = 0.3
	minPostHeat          = 0.1
	heatDecayBase        = 0.8
	hotTopicThreshold    = 50
	risingTopicThreshold = 20
)

type TopicWindow string

const (
	Window24h TopicWindow = "24h"
	Window7d  TopicWindow = "7d"
	Window30d TopicWindow = "30d"
	WindowAll TopicWindow = "all"
)

func ParseTopicWindow(raw string) (TopicWindow, error) {
	switch TopicWindow(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return Window7d, nil
	case Window24h:
		return Window24h, nil
	case Window7d:
		return Window7d, nil
	case Window30d:
		return Window30d, nil
	case WindowAll:
		return WindowAll, nil
	default:
		return "", ErrInvalidInput
	}
}

func (w TopicWindow) Duration() time.Duration {
	switch w {
	case Window24h:
		return 24 * time.Hour
	case Window7d:
		return 7 * 24 * time.Hour
	case Window30d:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

type PostLister interface {
	Posts(ctx context.Context, query crud.ListQuery) ([]models.Post, error)
}

type HotTopicService struct {
	postRepo PostLister
	now      func() time.Time
}

func NewHotTopicService(postRepo PostLister) *HotTopicService {
	return &HotTopicService{postRepo: postRepo, now: time.Now}
}

func (s *HotTopicService) Rank(ctx context.Context, window TopicWindow, interests []string) (*models.HotTopicRanking, error) {
	posts, err := s.postRepo.Posts(ctx, crud.ListQuery{
		Page:  1,
		Limit: postFetchLimit,
		Sort:  "addtime",
		Order: "desc",
	})
	if err != nil {
		return nil, err
	}
	ranking := RankHotTopics(posts, window, interests, s.now())
	return &ranking, nil
}

// RankHotTopics aggregates post heat per tag. Posts without a creation time
// are only counted in the "all" window and are not decayed.
func RankHotTopics(posts []models.Post, window TopicWindow, interests []string, now time.Time) models.HotTopicRanking {
	interests = nonEmpty(interests)
	inWindow := filterByWindow(posts, window, now)

	ranking := models.HotTopicRanking{
		Window: string(window),
		Topics: aggregateTopics(inWindow, interests, now, hotTopicLimit),
	}

	if len(interests) > 0 {
		var matching []models.Post
		for _, post := range inWindow {
			if len(intersect(interests, post.Tags)) > 0 {
				matching = append(matching, post)
			}
		}
		ranking.Personalized = aggregateTopics(matching, interests, now, personalizedLimit)
	}
	return ranking
}

func PostHeat(post models.Post, interests []string, now time.Time) float64 {
	raw := float64(post.ReplyCount)*2.0 + float64(post.LikeCount)*1.5 + float64(post.ViewCount)*0.5

	hours := 0.0
	if !post.CreatedAt.IsZero() {
		hours = math.Max(0, now.Sub(post.CreatedAt).Hours())
	}
	heat := raw * math.Pow(heatDecayBase, math.Log10(hours+1))
	heat += interestBonus * float64(len(intersect(interests, post.Tags)))

	return math.Max(minPostHeat, heat)
}

// ClassifyTrend labels a topic by absolute heat only; there is no history to
// compare against.
func ClassifyTrend(heat float64) models.TopicTrend {
	switch {
	case heat > hotTopicThreshold:
		return models.TrendHot
	case heat > risingTopicThreshold:
		return models.TrendUp
	default:
		return models.TrendNew
	}
}

func filterByWindow(posts []models.Post, window TopicWindow, now time.Time) []models.Post {
	span := window.Duration()
	if span == 0 {
		return posts
	}
	cutoff := now.Add(-span)
	filtered := make([]models.Post, 0, len(posts))
	for _, post := range posts {
		if post.CreatedAt.IsZero() || post.CreatedAt.Before(cutoff) {
			continue
		}
		filtered = append(filtered, post)
	}
	return filtered
}

func aggregateTopics(posts []models.Post, interests []string, now time.Time, limit int) []models.HotTopic {
	byTag := make(map[string]*models.HotTopic)
	for _, post := range posts {
		heat := PostHeat(post, interests, now)
		for _, tag := range nonEmpty(post.Tags) {
			topic, ok := byTag[tag]
			if !ok {
				topic = &models.HotTopic{Tag: tag}
				byTag[tag] = topic
			}
			topic.Heat += heat
			topic.PostCount++
		}
	}

	topics := make([]models.HotTopic, 0, len(byTag))
	for _, topic := range byTag {
		topic.Heat = round2(topic.Heat)
		topic.Trend = ClassifyTrend(topic.Heat)
		topics = append(topics, *topic)
	}

	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Heat != topics[j].Heat {
			return topics[i].Heat > topics[j].Heat
		}
		if topics[i].PostCount != topics[j].PostCount {
			return topics[i].PostCount > topics[j].PostCount
		}
		return topics[i].Tag < topics[j].Tag
	})

	if len(topics) > limit {
		topics = topics[:limit]
	}
	return topics
}
