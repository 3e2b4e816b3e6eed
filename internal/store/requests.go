package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/zamenjava/internal/apperr"
	"github.com/erazemk/zamenjava/internal/model"
)

const requestSelect = `SELECT r.id, r.requested_item_id, r.offered_item_id, r.requester_id, r.status,
	       r.requested_at, r.responded_at, ri.title, oi.title, ri.owner_id
	FROM trade_requests r
	JOIN items ri ON ri.id = r.requested_item_id
	JOIN items oi ON oi.id = r.offered_item_id`

// CreateRequest inserts a PENDING trade request. A concurrent duplicate of the
// same pending pair fails with apperr.ErrDuplicateRequest.
func CreateRequest(ctx context.Context, q Querier, r *model.TradeRequest) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO trade_requests (requested_item_id, offered_item_id, requester_id, status, requested_at)
		 VALUES (?, ?, ?, ?, ?)`,
		r.RequestedItemID, r.OfferedItemID, r.RequesterID, model.RequestStatusPending, r.RequestedAt,
	)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("creating trade request: %w", apperr.ErrDuplicateRequest)
	}
	if err != nil {
		return 0, fmt.Errorf("creating trade request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting trade request id: %w", err)
	}
	return id, nil
}

// GetRequest returns a trade request by ID.
func GetRequest(ctx context.Context, q Querier, id int64) (*model.TradeRequest, error) {
	r, err := scanRequest(q.QueryRowContext(ctx, requestSelect+` WHERE r.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting trade request: %w", err)
	}
	return r, nil
}

// PendingRequestExists reports whether requesterID already has a pending
// request for the same pair of items.
func PendingRequestExists(ctx context.Context, q Querier, requesterID, requestedItemID, offeredItemID int64) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trade_requests
		 WHERE requester_id = ? AND requested_item_id = ? AND offered_item_id = ? AND status = ?`,
		requesterID, requestedItemID, offeredItemID, model.RequestStatusPending,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking pending requests: %w", err)
	}
	return n > 0, nil
}

// SetRequestStatus moves a request out of status from and stamps responded_at.
func SetRequestStatus(ctx context.Context, q Querier, id int64, from, to string, now time.Time) error {
	result, err := q.ExecContext(ctx,
		`UPDATE trade_requests SET status = ?, responded_at = ? WHERE id = ? AND status = ?`,
		to, now, id, from,
	)
	if err != nil {
		return fmt.Errorf("setting trade request status: %w", err)
	}
	return expectOne(result, "setting trade request status")
}

// PendingRequestsForItems returns pending requests that reference any of the
// given items, either as the requested or the offered item.
func PendingRequestsForItems(ctx context.Context, q Querier, itemIDs ...int64) ([]model.TradeRequest, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	in := placeholders(len(itemIDs))
	args := append([]any{model.RequestStatusPending}, int64Args(itemIDs)...)
	args = append(args, int64Args(itemIDs)...)
	return queryRequests(ctx, q,
		requestSelect+` WHERE r.status = ?
		   AND (r.requested_item_id IN (`+in+`) OR r.offered_item_id IN (`+in+`))
		 ORDER BY r.id`,
		args...,
	)
}

// ListReceivedRequests returns requests targeting items owned by userID,
// optionally filtered by status, newest first.
func ListReceivedRequests(ctx context.Context, q Querier, userID int64, status string) ([]model.TradeRequest, error) {
	query := requestSelect + ` WHERE ri.owner_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND r.status = ?`
		args = append(args, status)
	}
	return queryRequests(ctx, q, query+` ORDER BY r.requested_at DESC, r.id DESC`, args...)
}

// ListSentRequests returns requests made by userID, optionally filtered by
// status, newest first.
func ListSentRequests(ctx context.Context, q Querier, userID int64, status string) ([]model.TradeRequest, error) {
	query := requestSelect + ` WHERE r.requester_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND r.status = ?`
		args = append(args, status)
	}
	return queryRequests(ctx, q, query+` ORDER BY r.requested_at DESC, r.id DESC`, args...)
}

func queryRequests(ctx context.Context, q Querier, query string, args ...any) ([]model.TradeRequest, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing trade requests: %w", err)
	}
	defer rows.Close()

	var requests []model.TradeRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning trade request: %w", err)
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

func scanRequest(row rowScanner) (*model.TradeRequest, error) {
	r := &model.TradeRequest{}
	var respondedAt sql.NullTime
	err := row.Scan(&r.ID, &r.RequestedItemID, &r.OfferedItemID, &r.RequesterID, &r.Status,
		&r.RequestedAt, &respondedAt, &r.RequestedItemTitle, &r.OfferedItemTitle, &r.RecipientID)
	if err != nil {
		return nil, err
	}
	r.RespondedAt = nullTime(respondedAt)
	return r, nil
}
