package models

import "time"

type Post struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Tags       []string  `json:"tags"`
	ReplyCount int       `json:"reply_count"`
	LikeCount  int       `json:"like_count"`
	ViewCount  int       `json:"view_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type TopicTrend string

const (
	TrendHot TopicTrend = "hot"
	TrendUp  TopicTrend = "up"
	TrendNew TopicTrend = "new"
)

type HotTopic struct {
	Tag       string     `json:"tag"`
	Heat      float64    `json:"heat"`
	PostCount int        `json:"post_count"`
	Trend     TopicTrend `json:"trend"`
}

type HotTopicRanking struct {
	Window       string     `json:"window"`
	Topics       []HotTopic `json:"topics"`
	Personalized []HotTopic `json:"personalized,omitempty"`
}
