package market

import (
	"context"

	"github.com/erazemk/zamenjava/internal/apperr"
	"github.com/erazemk/zamenjava/internal/model"
	"github.com/erazemk/zamenjava/internal/store"
)

// Profile is a user's public reputation.
type Profile struct {
	ID            int64            `json:"id"`
	Username      string           `json:"username"`
	LoyaltyPoints int              `json:"loyalty_points"`
	Badge         model.BadgeTier  `json:"badge"`
	NextBadge     *model.BadgeTier `json:"next_badge,omitempty"`
	PointsToNext  int              `json:"points_to_next,omitempty"`
	Counts        model.UserCounts `json:"counts"`
}

// Profile returns userID's reputation and progress toward the next badge.
func (m *Market) Profile(ctx context.Context, userID int64) (*Profile, error) {
	u, err := m.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		ID:            u.ID,
		Username:      u.Username,
		LoyaltyPoints: u.LoyaltyPoints,
		Badge:         u.Badge.Tier(),
	}
	p.Counts, err = store.CountUserActivity(ctx, m.db, u.ID)
	if err != nil {
		return nil, err
	}
	if rank := u.Badge.Rank(); rank >= 0 && rank+1 < len(model.BadgeTiers) {
		next := model.BadgeTiers[rank+1]
		p.NextBadge = &next
		p.PointsToNext = next.MinPoints - u.LoyaltyPoints
	}
	return p, nil
}

// Leaderboard sizes.
const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
)

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	Rank          int             `json:"rank"`
	ID            int64           `json:"id"`
	Username      string          `json:"username"`
	LoyaltyPoints int             `json:"loyalty_points"`
	Badge         model.BadgeTier `json:"badge"`
}

// Leaderboard ranks users by loyalty points, highest first. A zero limit
// means DefaultLeaderboardSize.
func (m *Market) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	switch {
	case limit == 0:
		limit = DefaultLeaderboardSize
	case limit < 0 || limit > MaxLeaderboardSize:
		return nil, apperr.Invalid("limit must be between 1 and %d", MaxLeaderboardSize)
	}

	users, err := store.ListUsersByPoints(ctx, m.db, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			Rank:          i + 1,
			ID:            u.ID,
			Username:      u.Username,
			LoyaltyPoints: u.LoyaltyPoints,
			Badge:         u.Badge.Tier(),
		}
	}
	return entries, nil
}

// TradeStats summarizes userID's trades and the requests waiting on them.
func (m *Market) TradeStats(ctx context.Context, userID int64) (*model.TradeStats, error) {
	if _, err := m.getUser(ctx, userID); err != nil {
		return nil, err
	}
	stats, err := store.GetTradeStats(ctx, m.db, userID)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (m *Market) getUser(ctx context.Context, id int64) (*model.User, error) {
	u, err := store.GetUser(ctx, m.db, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrUserNotFound
	}
	return u, nil
}
