package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Sign-up-admin/safe-room-sub007/internal/crud"
	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
)

var topicsNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type stubPostLister struct {
	posts     []models.Post
	err       error
	lastQuery crud.ListQuery
}

func (s *stubPostLister) Posts(_ context.Context, query crud.ListQuery) ([]models.Post, error) {
	s.lastQuery = query
	return s.posts, s.err
}

func samplePosts() []models.Post {
	return []models.Post{
		{ID: 1, Tags: []string{"增肌", "饮食"}, ReplyCount: 10, LikeCount: 10, ViewCount: 100, CreatedAt: topicsNow},
		{ID: 2, Tags: []string{"增肌"}, ReplyCount: 2, CreatedAt: topicsNow.Add(-9 * time.Hour)},
		{ID: 3, Tags: []string{"瑜伽"}, LikeCount: 10, CreatedAt: topicsNow},
		{ID: 4, Tags: []string{"跑步"}, ReplyCount: 20, CreatedAt: topicsNow.Add(-10 * 24 * time.Hour)},
		{ID: 5, Tags: []string{"无日期"}, ReplyCount: 5},
	}
}

func TestPostHeatDecaysWithAge(t *testing.T) {
	post := models.Post{ReplyCount: 10, LikeCount: 10, ViewCount: 100, CreatedAt: topicsNow}
	fresh := PostHeat(post, nil, topicsNow)
	stale := PostHeat(post, nil, topicsNow.Add(100*time.Hour))

	if fresh != 85 {
		t.Fatalf("expected undecayed heat 85, got %.4f", fresh)
	}
	if fresh <= stale {
		t.Fatalf("expected fresh heat %.2f above stale %.2f", fresh, stale)
	}
}

func TestPostHeatFloorAndInterestBonus(t *testing.T) {
	if got := PostHeat(models.Post{CreatedAt: topicsNow}, nil, topicsNow); got != minPostHeat {
		t.Fatalf("expected floor %.1f, got %.2f", minPostHeat, got)
	}
	post := models.Post{Tags: []string{"瑜伽", "拉伸"}, LikeCount: 10, CreatedAt: topicsNow}
	if got := round2(PostHeat(post, []string{"瑜伽", "拉伸", "跑步"}, topicsNow)); got != 15.6 {
		t.Fatalf("expected 15.6 with two interest matches, got %.2f", got)
	}
}

func TestRankHotTopicsSevenDayWindow(t *testing.T) {
	ranking := RankHotTopics(samplePosts(), Window7d, nil, topicsNow)

	if ranking.Window != "7d" || ranking.Personalized != nil {
		t.Fatalf("unexpected ranking header %+v", ranking)
	}
	want := []models.HotTopic{
		{Tag: "增肌", Heat: 88.2, PostCount: 2, Trend: models.TrendHot},
		{Tag: "饮食", Heat: 85, PostCount: 1, Trend: models.TrendHot},
		{Tag: "瑜伽", Heat: 15, PostCount: 1, Trend: models.TrendNew},
	}
	if len(ranking.Topics) != len(want) {
		t.Fatalf("expected %d topics, got %+v", len(want), ranking.Topics)
	}
	for i := range want {
		if ranking.Topics[i] != want[i] {
			t.Fatalf("topic %d: expected %+v, got %+v", i, want[i], ranking.Topics[i])
		}
	}
}

func TestRankHotTopicsWindows(t *testing.T) {
	tests := []struct {
		window TopicWindow
		want   int
	}{
		{window: Window24h, want: 3},
		{window: Window30d, want: 4},
		{window: WindowAll, want: 5},
	}
	for _, tt := range tests {
		t.Run(string(tt.window), func(t *testing.T) {
			ranking := RankHotTopics(samplePosts(), tt.window, nil, topicsNow)
			if len(ranking.Topics) != tt.want {
				t.Fatalf("expected %d topics, got %+v", tt.want, ranking.Topics)
			}
		})
	}
}

func TestRankHotTopicsPersonalized(t *testing.T) {
	ranking := RankHotTopics(samplePosts(), Window7d, []string{"瑜伽"}, topicsNow)

	if len(ranking.Personalized) != 1 {
		t.Fatalf("expected one personalized topic, got %+v", ranking.Personalized)
	}
	if got := ranking.Personalized[0]; got.Tag != "瑜伽" || got.Heat != 15.3 {
		t.Fatalf("unexpected personalized topic %+v", got)
	}
}

func TestRankHotTopicsLimits(t *testing.T) {
	var posts []models.Post
	for i := 0; i < 12; i++ {
		posts = append(posts, models.Post{
			ID:         int64(i),
			Tags:       []string{fmt.Sprintf("tag-%02d", i), "共同"},
			ReplyCount: i,
			CreatedAt:  topicsNow,
		})
	}

	ranking := RankHotTopics(posts, WindowAll, []string{"共同"}, topicsNow)
	if len(ranking.Topics) != hotTopicLimit {
		t.Fatalf("expected %d topics, got %d", hotTopicLimit, len(ranking.Topics))
	}
	if ranking.Topics[0].Tag != "共同" || ranking.Topics[0].PostCount != 12 {
		t.Fatalf("expected shared tag first, got %+v", ranking.Topics[0])
	}
	if len(ranking.Personalized) != personalizedLimit {
		t.Fatalf("expected %d personalized topics, got %d", personalizedLimit, len(ranking.Personalized))
	}
	for i := 1; i < len(ranking.Topics); i++ {
		if ranking.Topics[i-1].Heat < ranking.Topics[i].Heat {
			t.Fatalf("topics not sorted by heat: %+v", ranking.Topics)
		}
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		heat float64
		want models.TopicTrend
	}{
		{heat: 50.01, want: models.TrendHot},
		{heat: 50, want: models.TrendUp},
		{heat: 20.5, want: models.TrendUp},
		{heat: 20, want: models.TrendNew},
	}
	for _, tt := range tests {
		if got := ClassifyTrend(tt.heat); got != tt.want {
			t.Fatalf("heat %.2f: expected %s, got %s", tt.heat, tt.want, got)
		}
	}
}

func TestParseTopicWindow(t *testing.T) {
	if w, err := ParseTopicWindow(""); err != nil || w != Window7d {
		t.Fatalf("expected default 7d, got %q %v", w, err)
	}
	if w, err := ParseTopicWindow(" ALL "); err != nil || w != WindowAll {
		t.Fatalf("expected all, got %q %v", w, err)
	}
	if _, err := ParseTopicWindow("1y"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestHotTopicServiceRank(t *testing.T) {
	lister := &stubPostLister{posts: samplePosts()}
	service := NewHotTopicService(lister)
	service.now = func() time.Time { return topicsNow }

	ranking, err := service.Rank(context.Background(), Window24h, nil)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if lister.lastQuery.Limit != postFetchLimit || lister.lastQuery.Sort != "addtime" {
		t.Fatalf("unexpected query %+v", lister.lastQuery)
	}
	if len(ranking.Topics) == 0 || ranking.Topics[0].Tag != "增肌" {
		t.Fatalf("unexpected ranking %+v", ranking.Topics)
	}

	lister.err = errors.New("forum down")
	if _, err := service.Rank(context.Background(), Window24h, nil); err == nil {
		t.Fatal("expected fetch error")
	}
}
