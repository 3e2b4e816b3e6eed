package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/zamenjava/internal/model"
)

const tradeColumns = `id, trade_request_id, requested_item_id, offered_item_id, requester_id,
	owner_id, status, completed_at, created_at`

// CreateTrade inserts the trade materialized from an accepted request.
func CreateTrade(ctx context.Context, q Querier, t *model.Trade) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO trades (trade_request_id, requested_item_id, offered_item_id,
		                     requester_id, owner_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.TradeRequestID, t.RequestedItemID, t.OfferedItemID,
		t.RequesterID, t.OwnerID, model.TradeStatusPending, t.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("creating trade: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting trade id: %w", err)
	}
	return id, nil
}

// GetTrade returns a trade by ID.
func GetTrade(ctx context.Context, q Querier, id int64) (*model.Trade, error) {
	t, err := scanTrade(q.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting trade: %w", err)
	}
	return t, nil
}

// GetTradeByRequest returns the trade created from a request.
func GetTradeByRequest(ctx context.Context, q Querier, requestID int64) (*model.Trade, error) {
	t, err := scanTrade(q.QueryRowContext(ctx,
		`SELECT `+tradeColumns+` FROM trades WHERE trade_request_id = ?`, requestID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting trade by request: %w", err)
	}
	return t, nil
}

// SetTradeStatus moves a trade out of status from. completedAt is stored as given.
func SetTradeStatus(ctx context.Context, q Querier, id int64, from, to string, completedAt *time.Time) error {
	result, err := q.ExecContext(ctx,
		`UPDATE trades SET status = ?, completed_at = ? WHERE id = ? AND status = ?`,
		to, completedAt, id, from,
	)
	if err != nil {
		return fmt.Errorf("setting trade status: %w", err)
	}
	return expectOne(result, "setting trade status")
}

// ListTrades returns trades where userID is a participant, optionally
// filtered by status, newest first.
func ListTrades(ctx context.Context, q Querier, userID int64, status string) ([]model.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE (requester_id = ? OR owner_id = ?)`
	args := []any{userID, userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing trades: %w", err)
	}
	defer rows.Close()

	var trades []model.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning trade: %w", err)
		}
		trades = append(trades, *t)
	}
	return trades, rows.Err()
}

// CountTradesForRequest returns how many trades reference a request.
func CountTradesForRequest(ctx context.Context, q Querier, requestID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trades WHERE trade_request_id = ?`, requestID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting trades: %w", err)
	}
	return n, nil
}

// GetTradeStats counts userID's trades by status and the pending requests
// waiting on their items.
func GetTradeStats(ctx context.Context, q Querier, userID int64) (model.TradeStats, error) {
	var s model.TradeStats
	err := q.QueryRowContext(ctx,
		`SELECT
		   COUNT(*),
		   COALESCE(SUM(status = ?), 0),
		   COALESCE(SUM(status = ?), 0),
		   (SELECT COUNT(*) FROM trade_requests r
		      JOIN items i ON i.id = r.requested_item_id
		     WHERE i.owner_id = ? AND r.status = ?)
		 FROM trades WHERE requester_id = ? OR owner_id = ?`,
		model.TradeStatusCompleted, model.TradeStatusPending,
		userID, model.RequestStatusPending,
		userID, userID,
	).Scan(&s.TotalTrades, &s.CompletedTrades, &s.ActiveDeals, &s.PendingRequests)
	if err != nil {
		return model.TradeStats{}, fmt.Errorf("counting trade stats: %w", err)
	}
	return s, nil
}

func scanTrade(row rowScanner) (*model.Trade, error) {
	t := &model.Trade{}
	var completedAt sql.NullTime
	err := row.Scan(&t.ID, &t.TradeRequestID, &t.RequestedItemID, &t.OfferedItemID,
		&t.RequesterID, &t.OwnerID, &t.Status, &completedAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.CompletedAt = nullTime(completedAt)
	return t, nil
}
