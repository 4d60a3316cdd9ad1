package models

// DefaultCoachPrice is used when a coach record carries no usable price.
const DefaultCoachPrice = 499.0

type Coach struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Bio         string   `json:"bio"`
	Price       float64  `json:"price"`
	Specialties []string `json:"specialties,omitempty"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
}

type RecommendOptions struct {
	Keyword     string
	Skill       string
	MaxPrice    float64
	History     []int64
	Goals       []string
	Preferences []string
	BudgetMin   float64
	BudgetMax   float64
}

type RecommendedCoach struct {
	Coach
	Tags            []string `json:"tags"`
	Rating          float64  `json:"rating"`
	GoalMatch       float64  `json:"goal_match"`
	InHistory       bool     `json:"in_history"`
	Reason          string   `json:"reason"`
	MatchedGoalTags []string `json:"matched_goal_tags,omitempty"`
}
