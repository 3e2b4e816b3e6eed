package model

import "time"

// Rating is a post-trade review of the user who supplied the reviewer's
// received item.
type Rating struct {
	ID         int64      `json:"id"`
	TradeID    int64      `json:"trade_id"`
	ReviewerID int64      `json:"reviewer_id"`
	RevieweeID int64      `json:"reviewee_id"`
	Stars      int        `json:"rating"`
	Comment    string     `json:"comment,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	ReviewerName string `json:"reviewer_name,omitempty"`
}

// Rating bounds.
const (
	MinStars         = 1
	MaxStars         = 5
	MaxCommentLength = 500
)

// RatingStats aggregates the ratings a user has received.
type RatingStats struct {
	UserID       int64       `json:"user_id"`
	Average      float64     `json:"average_rating"`
	Total        int         `json:"total_ratings"`
	Distribution map[int]int `json:"rating_distribution"`
}
