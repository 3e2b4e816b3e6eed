package market

import (
	"context"
	"database/sql"

	"github.com/erazemk/zamenjava/internal/apperr"
	"github.com/erazemk/zamenjava/internal/model"
	"github.com/erazemk/zamenjava/internal/notify"
	"github.com/erazemk/zamenjava/internal/store"
)

// materialize creates the PENDING trade for an accepted request and reserves
// both items.
func (m *Market) materialize(ctx context.Context, tx *sql.Tx, r *model.TradeRequest, requested, offered *model.Item) (int64, error) {
	id, err := store.CreateTrade(ctx, tx, &model.Trade{
		TradeRequestID:  r.ID,
		RequestedItemID: requested.ID,
		OfferedItemID:   offered.ID,
		RequesterID:     r.RequesterID,
		OwnerID:         requested.OwnerID,
		CreatedAt:       m.clock(),
	})
	if err != nil {
		return 0, err
	}

	for _, item := range []*model.Item{requested, offered} {
		if err := m.transitionItem(ctx, tx, item, model.ItemStatusReserved); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// CompleteTrade marks a PENDING trade COMPLETED on behalf of either
// participant and moves both items to SWAPPED. Completing an already
// completed trade fails with apperr.ErrAlreadyCompleted and changes nothing.
func (m *Market) CompleteTrade(ctx context.Context, actorID, tradeID int64) (*model.Trade, error) {
	t, err := m.getTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	unlock := m.locks.lock(t.ItemIDs()...)
	defer unlock()

	err = m.inTx(ctx, func(tx *sql.Tx) error {
		cur, err := m.pendingTradeForActor(ctx, tx, actorID, tradeID)
		if err != nil {
			return err
		}

		now := m.clock()
		if err := store.SetTradeStatus(ctx, tx, cur.ID, model.TradeStatusPending, model.TradeStatusCompleted, &now); err != nil {
			return err
		}
		return m.transitionTradeItems(ctx, tx, cur, model.ItemStatusSwapped)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("trade completed", "trade", tradeID, "actor", actorID)
	m.metrics.Trade(model.TradeStatusCompleted)
	now := m.clock()
	for _, userID := range []int64{t.RequesterID, t.OwnerID} {
		e := notify.NewEvent(notify.TradeCompleted, userID, now)
		e.TradeID = tradeID
		m.emit(ctx, e)
	}

	return m.getTrade(ctx, tradeID)
}

// CancelTrade marks a PENDING trade CANCELLED on behalf of either
// participant and returns both items to AVAILABLE. The other participant is
// notified.
func (m *Market) CancelTrade(ctx context.Context, actorID, tradeID int64) (*model.Trade, error) {
	t, err := m.getTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	unlock := m.locks.lock(t.ItemIDs()...)
	defer unlock()

	err = m.inTx(ctx, func(tx *sql.Tx) error {
		cur, err := m.pendingTradeForActor(ctx, tx, actorID, tradeID)
		if err != nil {
			return err
		}
		if err := store.SetTradeStatus(ctx, tx, cur.ID, model.TradeStatusPending, model.TradeStatusCancelled, nil); err != nil {
			return err
		}
		return m.transitionTradeItems(ctx, tx, cur, model.ItemStatusAvailable)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("trade cancelled", "trade", tradeID, "actor", actorID)
	m.metrics.Trade(model.TradeStatusCancelled)
	counterpart := t.OwnerID
	if actorID == t.OwnerID {
		counterpart = t.RequesterID
	}
	e := notify.NewEvent(notify.TradeCancelled, counterpart, m.clock())
	e.TradeID = tradeID
	m.emit(ctx, e)

	return m.getTrade(ctx, tradeID)
}

// GetTrade returns a trade visible to one of its participants.
func (m *Market) GetTrade(ctx context.Context, actorID, tradeID int64) (*model.Trade, error) {
	t, err := m.getTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if !t.IsParticipant(actorID) {
		return nil, apperr.ErrNotParticipant
	}
	return t, nil
}

// ListTrades lists trades userID takes part in, optionally by status.
func (m *Market) ListTrades(ctx context.Context, userID int64, status string) ([]model.Trade, error) {
	if status != "" && !model.ValidTradeStatus(status) {
		return nil, apperr.Invalid("unknown trade status %q", status)
	}
	return store.ListTrades(ctx, m.db, userID, status)
}

func (m *Market) pendingTradeForActor(ctx context.Context, tx *sql.Tx, actorID, tradeID int64) (*model.Trade, error) {
	t, err := store.GetTrade(ctx, tx, tradeID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.ErrTradeNotFound
	}
	if !t.IsParticipant(actorID) {
		return nil, apperr.ErrNotParticipant
	}
	switch t.Status {
	case model.TradeStatusPending:
		return t, nil
	case model.TradeStatusCompleted:
		return nil, apperr.ErrAlreadyCompleted
	default:
		return nil, apperr.WithMessage(apperr.ErrTradeNotPending, "trade is %s", t.Status)
	}
}

func (m *Market) transitionTradeItems(ctx context.Context, tx *sql.Tx, t *model.Trade, to string) error {
	for _, id := range t.ItemIDs() {
		item, err := store.GetItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return apperr.ErrItemNotFound
		}
		if err := m.transitionItem(ctx, tx, item, to); err != nil {
			return err
		}
	}
	return nil
}

func (m *Market) getTrade(ctx context.Context, id int64) (*model.Trade, error) {
	t, err := store.GetTrade(ctx, m.db, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.ErrTradeNotFound
	}
	return t, nil
}
