package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/zamenjava/internal/apperr"
	"github.com/erazemk/zamenjava/internal/model"
)

const userColumns = `id, username, password_hash, loyalty_points, badge, created_at`

// CreateUser creates a new user with no loyalty points.
func CreateUser(ctx context.Context, q Querier, username, passwordHash string, now time.Time) (*model.User, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, loyalty_points, badge, created_at)
		 VALUES (?, ?, 0, ?, ?)`,
		username, passwordHash, string(model.BadgeForPoints(0)), now,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating user: %w", apperr.ErrUsernameTaken)
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, q, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, q Querier, id int64) (*model.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByUsername returns a user by username.
func GetUserByUsername(ctx context.Context, q Querier, username string) (*model.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return u, nil
}

// CreditLoyaltyPoints adds points to a user's total and stores the badge for
// the new total. It returns the new total and badge.
func CreditLoyaltyPoints(ctx context.Context, q Querier, userID int64, points int) (int, model.Badge, error) {
	if points < 0 {
		return 0, "", fmt.Errorf("crediting loyalty points: negative credit %d", points)
	}

	result, err := q.ExecContext(ctx,
		`UPDATE users SET loyalty_points = loyalty_points + ? WHERE id = ?`,
		points, userID,
	)
	if err != nil {
		return 0, "", fmt.Errorf("crediting loyalty points: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, "", fmt.Errorf("crediting loyalty points: %w", err)
	}
	if n == 0 {
		return 0, "", fmt.Errorf("crediting loyalty points: %w", apperr.ErrUserNotFound)
	}

	var total int
	err = q.QueryRowContext(ctx, `SELECT loyalty_points FROM users WHERE id = ?`, userID).Scan(&total)
	if err != nil {
		return 0, "", fmt.Errorf("reading loyalty points: %w", err)
	}

	badge := model.BadgeForPoints(total)
	if _, err := q.ExecContext(ctx, `UPDATE users SET badge = ? WHERE id = ?`, string(badge), userID); err != nil {
		return 0, "", fmt.Errorf("updating badge: %w", err)
	}
	return total, badge, nil
}

// ListUsersByPoints returns up to limit users with the most loyalty points.
// Ties go to the older account.
func ListUsersByPoints(ctx context.Context, q Querier, limit int) ([]model.User, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY loyalty_points DESC, id ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users by points: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// CountUserActivity counts userID's listed (not removed) items, completed
// trades and live ratings received.
func CountUserActivity(ctx context.Context, q Querier, userID int64) (model.UserCounts, error) {
	var c model.UserCounts
	err := q.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM items WHERE owner_id = ? AND status <> ?),
		   (SELECT COUNT(*) FROM trades WHERE (requester_id = ? OR owner_id = ?) AND status = ?),
		   (SELECT COUNT(*) FROM ratings WHERE reviewee_id = ? AND deleted_at IS NULL)`,
		userID, model.ItemStatusRemoved,
		userID, userID, model.TradeStatusCompleted,
		userID,
	).Scan(&c.Items, &c.Trades, &c.Reviews)
	if err != nil {
		return model.UserCounts{}, fmt.Errorf("counting user activity: %w", err)
	}
	return c, nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, q Querier, id int64, passwordHash string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return expectOne(result, "updating user password")
}

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.LoyaltyPoints, &u.Badge, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
