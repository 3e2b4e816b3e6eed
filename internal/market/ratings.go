package market

import (
	"context"
	"database/sql"
	"strings"
	"unicode/utf8"

	"github.com/erazemk/zamenjava/internal/apperr"
	"github.com/erazemk/zamenjava/internal/model"
	"github.com/erazemk/zamenjava/internal/notify"
	"github.com/erazemk/zamenjava/internal/store"
	"github.com/shopspring/decimal"
)

// RatingInput is the input to SubmitRating. RevieweeID is optional; when set
// it must match the reviewee derived from the trade.
type RatingInput struct {
	TradeID    int64  `json:"trade_id"`
	ReviewerID int64  `json:"-"`
	RevieweeID int64  `json:"reviewee_id"`
	Stars      int    `json:"rating"`
	Comment    string `json:"comment"`
}

// Reviewee returns the user a participant rates after a trade: the one who
// supplied the item the reviewer received. The requester received the
// requested item from its owner; the owner received the offered item from the
// requester.
func Reviewee(t *model.Trade, reviewerID int64) (int64, error) {
	switch reviewerID {
	case t.RequesterID:
		return t.OwnerID, nil
	case t.OwnerID:
		return t.RequesterID, nil
	default:
		return 0, apperr.ErrNotParticipant
	}
}

// SubmitRating records a participant's rating of a COMPLETED trade and
// credits the reviewee stars*pointsPerStar loyalty points in the same
// transaction. Each participant may rate a trade once.
func (m *Market) SubmitRating(ctx context.Context, in RatingInput) (*model.Rating, error) {
	comment, err := validateRating(in.Stars, in.Comment)
	if err != nil {
		return nil, err
	}

	points := model.PointsForStars(in.Stars, m.pointsPerStar)
	var (
		id          int64
		revieweeID  int64
		total       int
		badge       model.Badge
		badgeBefore model.Badge
	)
	err = m.inTx(ctx, func(tx *sql.Tx) error {
		t, err := store.GetTrade(ctx, tx, in.TradeID)
		if err != nil {
			return err
		}
		if t == nil {
			return apperr.ErrTradeNotFound
		}
		revieweeID, err = Reviewee(t, in.ReviewerID)
		if err != nil {
			return err
		}
		if t.Status != model.TradeStatusCompleted {
			return apperr.ErrTradeNotCompleted
		}
		if in.RevieweeID == in.ReviewerID || revieweeID == in.ReviewerID {
			return apperr.ErrSelfRating
		}
		if in.RevieweeID != 0 && in.RevieweeID != revieweeID {
			return apperr.ErrWrongReviewee
		}

		rated, err := store.HasRated(ctx, tx, t.ID, in.ReviewerID)
		if err != nil {
			return err
		}
		if rated {
			return apperr.ErrAlreadyRated
		}

		id, err = store.CreateRating(ctx, tx, &model.Rating{
			TradeID:    t.ID,
			ReviewerID: in.ReviewerID,
			RevieweeID: revieweeID,
			Stars:      in.Stars,
			Comment:    comment,
			CreatedAt:  m.clock(),
		})
		if err != nil {
			return err
		}

		reviewee, err := store.GetUser(ctx, tx, revieweeID)
		if err != nil {
			return err
		}
		if reviewee == nil {
			return apperr.ErrUserNotFound
		}
		badgeBefore = reviewee.Badge

		total, badge, err = store.CreditLoyaltyPoints(ctx, tx, revieweeID, points)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("rating submitted", "rating", id, "trade", in.TradeID,
		"reviewer", in.ReviewerID, "reviewee", revieweeID, "stars", in.Stars, "points", points)
	m.metrics.Rating(in.Stars, points)

	e := notify.NewEvent(notify.PointsCredited, revieweeID, m.clock())
	e.TradeID = in.TradeID
	e.Points, e.TotalPoints = points, total
	e.Badge, e.BadgeChanged = string(badge), badge != badgeBefore
	m.emit(ctx, e)

	return m.getRating(ctx, id)
}

// UpdateRating changes the stars and comment of the reviewer's own rating.
// Loyalty points already credited are not adjusted.
func (m *Market) UpdateRating(ctx context.Context, reviewerID, ratingID int64, stars int, comment string) (*model.Rating, error) {
	comment, err := validateRating(stars, comment)
	if err != nil {
		return nil, err
	}

	err = m.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := liveRatingByReviewer(ctx, tx, reviewerID, ratingID); err != nil {
			return err
		}
		return store.UpdateRating(ctx, tx, ratingID, stars, comment, m.clock())
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("rating updated", "rating", ratingID, "reviewer", reviewerID)
	return m.getRating(ctx, ratingID)
}

// DeleteRating hides the reviewer's own rating. The reviewer cannot rate the
// same trade again and credited points stay.
func (m *Market) DeleteRating(ctx context.Context, reviewerID, ratingID int64) error {
	err := m.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := liveRatingByReviewer(ctx, tx, reviewerID, ratingID); err != nil {
			return err
		}
		return store.DeleteRating(ctx, tx, ratingID, m.clock())
	})
	if err != nil {
		return err
	}

	m.logger.Info("rating deleted", "rating", ratingID, "reviewer", reviewerID)
	return nil
}

// UserRatings lists the live ratings userID has received, newest first.
func (m *Market) UserRatings(ctx context.Context, userID int64) ([]model.Rating, error) {
	if _, err := m.getUser(ctx, userID); err != nil {
		return nil, err
	}
	return store.ListRatingsForUser(ctx, m.db, userID)
}

// RatingStats aggregates the live ratings userID has received. The average
// is rounded to two decimals and the distribution has an entry for every
// star value.
func (m *Market) RatingStats(ctx context.Context, userID int64) (*model.RatingStats, error) {
	if _, err := m.getUser(ctx, userID); err != nil {
		return nil, err
	}

	counts, err := store.RatingDistribution(ctx, m.db, userID)
	if err != nil {
		return nil, err
	}

	stats := &model.RatingStats{UserID: userID, Distribution: make(map[int]int, model.MaxStars)}
	sum := decimal.Zero
	for stars := model.MinStars; stars <= model.MaxStars; stars++ {
		n := counts[stars]
		stats.Distribution[stars] = n
		stats.Total += n
		sum = sum.Add(decimal.NewFromInt(int64(stars * n)))
	}
	if stats.Total > 0 {
		stats.Average = sum.Div(decimal.NewFromInt(int64(stats.Total))).Round(2).InexactFloat64()
	}
	return stats, nil
}

func liveRatingByReviewer(ctx context.Context, tx *sql.Tx, reviewerID, ratingID int64) (*model.Rating, error) {
	r, err := store.GetRating(ctx, tx, ratingID)
	if err != nil {
		return nil, err
	}
	if r == nil || r.DeletedAt != nil {
		return nil, apperr.ErrRatingNotFound
	}
	if r.ReviewerID != reviewerID {
		return nil, apperr.ErrNotReviewer
	}
	return r, nil
}

func validateRating(stars int, comment string) (string, error) {
	if stars < model.MinStars || stars > model.MaxStars {
		return "", apperr.ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > model.MaxCommentLength {
		return "", apperr.ErrCommentTooLong
	}
	return comment, nil
}

func (m *Market) getRating(ctx context.Context, id int64) (*model.Rating, error) {
	r, err := store.GetRating(ctx, m.db, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.ErrRatingNotFound
	}
	return r, nil
}
