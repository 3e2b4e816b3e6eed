package model

import (
	"fmt"
	"time"
)

// User represents a trader. Identity comes from the login layer; the market
// only owns the reputation fields.
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	LoyaltyPoints int       `json:"loyalty_points"`
	Badge         Badge     `json:"badge"`
	CreatedAt     time.Time `json:"created_at"`
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks password requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Badge is a reputation tier derived from loyalty points.
type Badge string

// Badges, lowest tier first.
const (
	BadgeBronze  Badge = "BRONZE"
	BadgeSilver  Badge = "SILVER"
	BadgeGold    Badge = "GOLD"
	BadgeDiamond Badge = "DIAMOND"
	BadgeRuby    Badge = "RUBY"
)

// BadgeTier describes one reputation tier.
type BadgeTier struct {
	Badge     Badge  `json:"badge"`
	MinPoints int    `json:"min_points"`
	Label     string `json:"label"`
	Color     string `json:"color"`
}

// BadgeTiers is ordered by ascending MinPoints.
var BadgeTiers = []BadgeTier{
	{Badge: BadgeBronze, MinPoints: 0, Label: "Bronze Trader", Color: "amber-600"},
	{Badge: BadgeSilver, MinPoints: 100, Label: "Silver Trader", Color: "gray-400"},
	{Badge: BadgeGold, MinPoints: 250, Label: "Gold Trader", Color: "yellow-500"},
	{Badge: BadgeDiamond, MinPoints: 500, Label: "Diamond Trader", Color: "blue-400"},
	{Badge: BadgeRuby, MinPoints: 1000, Label: "Ruby Trader", Color: "red-500"},
}

// BadgeForPoints returns the highest badge whose threshold points reaches.
func BadgeForPoints(points int) Badge {
	badge := BadgeBronze
	for _, tier := range BadgeTiers {
		if points >= tier.MinPoints {
			badge = tier.Badge
		}
	}
	return badge
}

// Tier returns the table entry for b. Unknown badges fall back to bronze.
func (b Badge) Tier() BadgeTier {
	for _, tier := range BadgeTiers {
		if tier.Badge == b {
			return tier
		}
	}
	return BadgeTiers[0]
}

// Rank returns b's position in BadgeTiers, or -1 if unknown.
func (b Badge) Rank() int {
	for i, tier := range BadgeTiers {
		if tier.Badge == b {
			return i
		}
	}
	return -1
}

// DefaultPointsPerStar is the loyalty credit for each star received.
const DefaultPointsPerStar = 5

// PointsForStars returns the loyalty points credited for a rating.
func PointsForStars(stars, perStar int) int {
	return stars * perStar
}

// UserCounts summarizes a user's activity.
type UserCounts struct {
	Items   int `json:"items"`
	Trades  int `json:"trades"`
	Reviews int `json:"reviews"`
}

// TradeStats is a user's trading dashboard.
type TradeStats struct {
	TotalTrades     int `json:"total_trades"`
	CompletedTrades int `json:"completed_trades"`
	PendingRequests int `json:"pending_requests"`
	ActiveDeals     int `json:"active_deals"`
}
