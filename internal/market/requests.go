package market

import (
	"context"
	"database/sql"

	"github.com/erazemk/zamenjava/internal/apperr"
	"github.com/erazemk/zamenjava/internal/metrics"
	"github.com/erazemk/zamenjava/internal/model"
	"github.com/erazemk/zamenjava/internal/notify"
	"github.com/erazemk/zamenjava/internal/store"
)

// CreateRequest proposes trading the requester's offered item for the
// requested item. Items stay AVAILABLE, so an item can collect several
// competing pending requests.
func (m *Market) CreateRequest(ctx context.Context, requesterID, requestedItemID, offeredItemID int64) (*model.TradeRequest, error) {
	if requestedItemID == offeredItemID {
		return nil, apperr.Invalid("requested and offered item must differ")
	}

	unlock := m.locks.lock(requestedItemID, offeredItemID)
	defer unlock()

	var id, recipientID int64
	err := m.inTx(ctx, func(tx *sql.Tx) error {
		requested, err := store.GetItem(ctx, tx, requestedItemID)
		if err != nil {
			return err
		}
		if requested == nil {
			return apperr.ErrItemNotFound
		}
		offered, err := store.GetItem(ctx, tx, offeredItemID)
		if err != nil {
			return err
		}
		if offered == nil {
			return apperr.ErrItemNotFound
		}

		if requested.OwnerID == requesterID {
			return apperr.ErrSelfTrade
		}
		if offered.OwnerID != requesterID {
			return apperr.ErrNotOwner
		}
		if requested.Status != model.ItemStatusAvailable {
			return itemUnavailable(requested)
		}
		if offered.Status != model.ItemStatusAvailable {
			return itemUnavailable(offered)
		}

		dup, err := store.PendingRequestExists(ctx, tx, requesterID, requestedItemID, offeredItemID)
		if err != nil {
			return err
		}
		if dup {
			return apperr.ErrDuplicateRequest
		}

		id, err = store.CreateRequest(ctx, tx, &model.TradeRequest{
			RequestedItemID: requestedItemID,
			OfferedItemID:   offeredItemID,
			RequesterID:     requesterID,
			RequestedAt:     m.clock(),
		})
		recipientID = requested.OwnerID
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("trade request created", "request", id, "requester", requesterID,
		"requested_item", requestedItemID, "offered_item", offeredItemID)
	m.metrics.TradeRequest(metrics.OutcomeCreated)
	e := notify.NewEvent(notify.RequestReceived, recipientID, m.clock())
	e.RequestID = id
	m.emit(ctx, e)

	return m.getRequest(ctx, id)
}

// AcceptRequest accepts a pending request on behalf of the requested item's
// owner. Both items must still be AVAILABLE. The request becomes ACCEPTED, a
// PENDING trade is created, both items become RESERVED and every other
// pending request that references either item is rejected.
func (m *Market) AcceptRequest(ctx context.Context, recipientID, requestID int64) (*model.Trade, error) {
	r, err := m.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	unlock := m.locks.lock(r.RequestedItemID, r.OfferedItemID)
	defer unlock()

	var tradeID int64
	var competitors []model.TradeRequest
	err = m.inTx(ctx, func(tx *sql.Tx) error {
		cur, err := store.GetRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperr.ErrRequestNotFound
		}
		if cur.RecipientID != recipientID {
			return apperr.ErrNotRecipient
		}
		if cur.Status != model.RequestStatusPending {
			return apperr.ErrRequestNotPending
		}

		requested, err := store.GetItem(ctx, tx, cur.RequestedItemID)
		if err != nil {
			return err
		}
		offered, err := store.GetItem(ctx, tx, cur.OfferedItemID)
		if err != nil {
			return err
		}
		for _, item := range []*model.Item{requested, offered} {
			if item == nil {
				return apperr.ErrItemNotFound
			}
			if item.Status != model.ItemStatusAvailable {
				return itemUnavailable(item)
			}
		}

		now := m.clock()
		if err := store.SetRequestStatus(ctx, tx, cur.ID, model.RequestStatusPending, model.RequestStatusAccepted, now); err != nil {
			return err
		}

		tradeID, err = m.materialize(ctx, tx, cur, requested, offered)
		if err != nil {
			return err
		}

		competitors, err = store.PendingRequestsForItems(ctx, tx, cur.RequestedItemID, cur.OfferedItemID)
		if err != nil {
			return err
		}
		for _, c := range competitors {
			if err := store.SetRequestStatus(ctx, tx, c.ID, model.RequestStatusPending, model.RequestStatusRejected, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("trade request accepted", "request", requestID, "trade", tradeID,
		"recipient", recipientID, "auto_rejected", len(competitors))
	m.metrics.TradeRequest(metrics.OutcomeAccepted)
	m.metrics.Trade(model.TradeStatusPending)

	now := m.clock()
	accepted := notify.NewEvent(notify.RequestAccepted, r.RequesterID, now)
	accepted.RequestID, accepted.TradeID = requestID, tradeID
	m.emit(ctx, accepted)
	for _, c := range competitors {
		e := notify.NewEvent(notify.RequestRejected, c.RequesterID, now)
		e.RequestID = c.ID
		m.emit(ctx, e)
		m.metrics.TradeRequest(metrics.OutcomeAutoRejected)
	}

	return m.getTrade(ctx, tradeID)
}

// RejectRequest declines a pending request on behalf of the requested item's
// owner. Item statuses are untouched.
func (m *Market) RejectRequest(ctx context.Context, recipientID, requestID int64) (*model.TradeRequest, error) {
	var requesterID int64
	err := m.inTx(ctx, func(tx *sql.Tx) error {
		r, err := store.GetRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if r == nil {
			return apperr.ErrRequestNotFound
		}
		if r.RecipientID != recipientID {
			return apperr.ErrNotRecipient
		}
		if r.Status != model.RequestStatusPending {
			return apperr.ErrRequestNotPending
		}
		requesterID = r.RequesterID
		return store.SetRequestStatus(ctx, tx, r.ID, model.RequestStatusPending, model.RequestStatusRejected, m.clock())
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("trade request rejected", "request", requestID, "recipient", recipientID)
	m.metrics.TradeRequest(metrics.OutcomeRejected)
	e := notify.NewEvent(notify.RequestRejected, requesterID, m.clock())
	e.RequestID = requestID
	m.emit(ctx, e)

	return m.getRequest(ctx, requestID)
}

// CancelRequest withdraws a pending request on behalf of its requester.
func (m *Market) CancelRequest(ctx context.Context, requesterID, requestID int64) (*model.TradeRequest, error) {
	err := m.inTx(ctx, func(tx *sql.Tx) error {
		r, err := store.GetRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if r == nil {
			return apperr.ErrRequestNotFound
		}
		if r.RequesterID != requesterID {
			return apperr.ErrNotRequester
		}
		if r.Status != model.RequestStatusPending {
			return apperr.ErrRequestNotPending
		}
		return store.SetRequestStatus(ctx, tx, r.ID, model.RequestStatusPending, model.RequestStatusCancelled, m.clock())
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("trade request cancelled", "request", requestID, "requester", requesterID)
	m.metrics.TradeRequest(metrics.OutcomeCancelled)
	return m.getRequest(ctx, requestID)
}

// GetRequest returns a request visible to actorID, who must be its requester
// or the owner of the requested item.
func (m *Market) GetRequest(ctx context.Context, actorID, requestID int64) (*model.TradeRequest, error) {
	r, err := m.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r.RequesterID != actorID && r.RecipientID != actorID {
		return nil, apperr.ErrNotParticipant
	}
	return r, nil
}

// ReceivedRequests lists requests targeting userID's items.
func (m *Market) ReceivedRequests(ctx context.Context, userID int64, status string) ([]model.TradeRequest, error) {
	if err := validRequestStatus(status); err != nil {
		return nil, err
	}
	return store.ListReceivedRequests(ctx, m.db, userID, status)
}

// SentRequests lists requests made by userID.
func (m *Market) SentRequests(ctx context.Context, userID int64, status string) ([]model.TradeRequest, error) {
	if err := validRequestStatus(status); err != nil {
		return nil, err
	}
	return store.ListSentRequests(ctx, m.db, userID, status)
}

func (m *Market) getRequest(ctx context.Context, id int64) (*model.TradeRequest, error) {
	r, err := store.GetRequest(ctx, m.db, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.ErrRequestNotFound
	}
	return r, nil
}

func validRequestStatus(status string) error {
	switch status {
	case "", model.RequestStatusPending, model.RequestStatusAccepted,
		model.RequestStatusRejected, model.RequestStatusCancelled:
		return nil
	}
	return apperr.Invalid("unknown request status %q", status)
}
