package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/zamenjava/internal/apperr"
	"github.com/erazemk/zamenjava/internal/model"
)

const ratingSelect = `SELECT r.id, r.trade_id, r.reviewer_id, r.reviewee_id, r.rating, r.comment,
	       r.created_at, r.updated_at, r.deleted_at, u.username
	FROM ratings r
	JOIN users u ON u.id = r.reviewer_id`

// CreateRating inserts a rating. A second rating for the same trade by the
// same reviewer fails with apperr.ErrAlreadyRated, even if the first one was
// deleted.
func CreateRating(ctx context.Context, q Querier, r *model.Rating) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO ratings (trade_id, reviewer_id, reviewee_id, rating, comment, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.TradeID, r.ReviewerID, r.RevieweeID, r.Stars, r.Comment, r.CreatedAt, r.CreatedAt,
	)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("creating rating: %w", apperr.ErrAlreadyRated)
	}
	if err != nil {
		return 0, fmt.Errorf("creating rating: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting rating id: %w", err)
	}
	return id, nil
}

// GetRating returns a rating by ID, including soft-deleted ones.
func GetRating(ctx context.Context, q Querier, id int64) (*model.Rating, error) {
	r, err := scanRating(q.QueryRowContext(ctx, ratingSelect+` WHERE r.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting rating: %w", err)
	}
	return r, nil
}

// HasRated reports whether reviewerID already rated tradeID.
func HasRated(ctx context.Context, q Querier, tradeID, reviewerID int64) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ratings WHERE trade_id = ? AND reviewer_id = ?`,
		tradeID, reviewerID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking rating: %w", err)
	}
	return n > 0, nil
}

// UpdateRating changes the stars and comment of a live rating.
func UpdateRating(ctx context.Context, q Querier, id int64, stars int, comment string, now time.Time) error {
	result, err := q.ExecContext(ctx,
		`UPDATE ratings SET rating = ?, comment = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		stars, comment, now, id,
	)
	if err != nil {
		return fmt.Errorf("updating rating: %w", err)
	}
	return expectOne(result, "updating rating")
}

// DeleteRating soft-deletes a rating.
func DeleteRating(ctx context.Context, q Querier, id int64, now time.Time) error {
	result, err := q.ExecContext(ctx,
		`UPDATE ratings SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, id,
	)
	if err != nil {
		return fmt.Errorf("deleting rating: %w", err)
	}
	return expectOne(result, "deleting rating")
}

// ListRatingsForUser returns live ratings received by revieweeID, newest first.
func ListRatingsForUser(ctx context.Context, q Querier, revieweeID int64) ([]model.Rating, error) {
	rows, err := q.QueryContext(ctx,
		ratingSelect+` WHERE r.reviewee_id = ? AND r.deleted_at IS NULL
		 ORDER BY r.created_at DESC, r.id DESC`,
		revieweeID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing ratings: %w", err)
	}
	defer rows.Close()

	var ratings []model.Rating
	for rows.Next() {
		r, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning rating: %w", err)
		}
		ratings = append(ratings, *r)
	}
	return ratings, rows.Err()
}

// RatingDistribution counts live ratings received by revieweeID per star value.
func RatingDistribution(ctx context.Context, q Querier, revieweeID int64) (map[int]int, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT rating, COUNT(*) FROM ratings
		 WHERE reviewee_id = ? AND deleted_at IS NULL
		 GROUP BY rating`,
		revieweeID,
	)
	if err != nil {
		return nil, fmt.Errorf("counting ratings: %w", err)
	}
	defer rows.Close()

	dist := make(map[int]int)
	for rows.Next() {
		var stars, n int
		if err := rows.Scan(&stars, &n); err != nil {
			return nil, fmt.Errorf("scanning rating count: %w", err)
		}
		dist[stars] = n
	}
	return dist, rows.Err()
}

func scanRating(row rowScanner) (*model.Rating, error) {
	r := &model.Rating{}
	var deletedAt sql.NullTime
	err := row.Scan(&r.ID, &r.TradeID, &r.ReviewerID, &r.RevieweeID, &r.Stars, &r.Comment,
		&r.CreatedAt, &r.UpdatedAt, &deletedAt, &r.ReviewerName)
	if err != nil {
		return nil, err
	}
	r.DeletedAt = nullTime(deletedAt)
	return r, nil
}
