package market

import (
	"context"
	"database/sql"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/erazemk/zamenjava/internal/apperr"
	"github.com/erazemk/zamenjava/internal/geo"
	"github.com/erazemk/zamenjava/internal/metrics"
	"github.com/erazemk/zamenjava/internal/model"
	"github.com/erazemk/zamenjava/internal/notify"
	"github.com/erazemk/zamenjava/internal/store"
)

// MaxImages bounds the image references stored per item.
const MaxImages = 10

// NewItem is the input to PostItem.
type NewItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Images      []string `json:"images"`
}

// ItemUpdate changes the fields that are set. Images replaces the whole list
// when non-nil. ClearLocation removes stored coordinates.
type ItemUpdate struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Condition     *string  `json:"condition"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	ClearLocation bool     `json:"clear_location"`
	Images        []string `json:"images"`
}

// ItemQuery filters ListItems. Zero values match everything.
type ItemQuery struct {
	OwnerID   int64
	Status    string
	Category  string
	Condition string
}

// PostItem lists a new AVAILABLE item owned by ownerID.
func (m *Market) PostItem(ctx context.Context, ownerID int64, in NewItem) (*model.Item, error) {
	now := m.clock()
	item := &model.Item{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Condition:   in.Condition,
		Status:      model.ItemStatusAvailable,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Images:      in.Images,
		PostedAt:    now,
		UpdatedAt:   now,
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	var id int64
	err := m.inTx(ctx, func(tx *sql.Tx) error {
		owner, err := store.GetUser(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		if owner == nil {
			return apperr.ErrUserNotFound
		}
		id, err = store.CreateItem(ctx, tx, item)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("item posted", "item", id, "owner", ownerID)
	return m.GetItem(ctx, id)
}

// GetItem returns an item by id.
func (m *Market) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, m.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.ErrItemNotFound
	}
	return item, nil
}

// ListItems returns items matching q, newest first.
func (m *Market) ListItems(ctx context.Context, q ItemQuery) ([]model.Item, error) {
	if q.Status != "" && !model.ValidItemStatus(q.Status) {
		return nil, apperr.Invalid("unknown item status %q", q.Status)
	}
	if q.Condition != "" && !model.ValidCondition(q.Condition) {
		return nil, apperr.Invalid("unknown item condition %q", q.Condition)
	}
	return store.ListItems(ctx, m.db, store.ItemFilter{
		OwnerID:   q.OwnerID,
		Status:    q.Status,
		Category:  q.Category,
		Condition: q.Condition,
	})
}

// NearbyItems returns AVAILABLE items with a location, nearest to origin
// first. A positive radiusKm limits the search; items owned by excludeOwner
// are left out.
func (m *Market) NearbyItems(ctx context.Context, origin geo.Point, radiusKm float64, excludeOwner int64) ([]geo.Ranked[model.Item], error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(radiusKm) || radiusKm < 0 {
		return nil, apperr.Invalid("radius must be a non-negative number")
	}

	items, err := store.ListItems(ctx, m.db, store.ItemFilter{
		Status:       model.ItemStatusAvailable,
		WithLocation: true,
	})
	if err != nil {
		return nil, err
	}

	candidates := items[:0]
	for _, item := range items {
		if excludeOwner != 0 && item.OwnerID == excludeOwner {
			continue
		}
		candidates = append(candidates, item)
	}

	return geo.Rank(origin, candidates, radiusKm, func(item model.Item) (geo.Point, bool) {
		if !item.HasLocation() {
			return geo.Point{}, false
		}
		return geo.Point{Lat: *item.Latitude, Lon: *item.Longitude}, true
	})
}

// UpdateItem edits an AVAILABLE item's metadata. Only the owner may edit.
func (m *Market) UpdateItem(ctx context.Context, ownerID, id int64, in ItemUpdate) (*model.Item, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	err := m.inTx(ctx, func(tx *sql.Tx) error {
		item, err := store.GetItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return apperr.ErrItemNotFound
		}
		if item.OwnerID != ownerID {
			return apperr.ErrNotOwner
		}
		if item.Status != model.ItemStatusAvailable {
			return apperr.WithMessage(apperr.ErrItemUnavailable, "item is %s and can no longer be edited", item.Status)
		}

		applyUpdate(item, in)
		item.UpdatedAt = m.clock()
		if err := validateItem(item); err != nil {
			return err
		}
		return store.UpdateItem(ctx, tx, item)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("item updated", "item", id, "owner", ownerID)
	return m.GetItem(ctx, id)
}

// RemoveItem withdraws an AVAILABLE item. Pending requests for it are
// rejected and pending requests offering it are cancelled.
func (m *Market) RemoveItem(ctx context.Context, ownerID, id int64) (*model.Item, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	var rejected []model.TradeRequest
	var cancelled int
	err := m.inTx(ctx, func(tx *sql.Tx) error {
		item, err := store.GetItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return apperr.ErrItemNotFound
		}
		if item.OwnerID != ownerID {
			return apperr.ErrNotOwner
		}
		if err := m.transitionItem(ctx, tx, item, model.ItemStatusRemoved); err != nil {
			return err
		}

		pending, err := store.PendingRequestsForItems(ctx, tx, id)
		if err != nil {
			return err
		}
		now := m.clock()
		for _, r := range pending {
			to := model.RequestStatusCancelled
			if r.RequestedItemID == id {
				to = model.RequestStatusRejected
			}
			if err := store.SetRequestStatus(ctx, tx, r.ID, model.RequestStatusPending, to, now); err != nil {
				return err
			}
			if to == model.RequestStatusRejected {
				rejected = append(rejected, r)
			} else {
				cancelled++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("item removed", "item", id, "owner", ownerID,
		"rejected_requests", len(rejected), "cancelled_requests", cancelled)
	now := m.clock()
	for _, r := range rejected {
		e := notify.NewEvent(notify.RequestRejected, r.RequesterID, now)
		e.RequestID = r.ID
		m.emit(ctx, e)
		m.metrics.TradeRequest(metrics.OutcomeAutoRejected)
	}
	for range cancelled {
		m.metrics.TradeRequest(metrics.OutcomeCancelled)
	}
	return m.GetItem(ctx, id)
}

// SetItemStatus moves an item to status to, enforcing the item transition
// table. It does not check ownership.
func (m *Market) SetItemStatus(ctx context.Context, id int64, to string) (*model.Item, error) {
	if !model.ValidItemStatus(to) {
		return nil, apperr.Invalid("unknown item status %q", to)
	}

	unlock := m.locks.lock(id)
	defer unlock()

	err := m.inTx(ctx, func(tx *sql.Tx) error {
		item, err := store.GetItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return apperr.ErrItemNotFound
		}
		return m.transitionItem(ctx, tx, item, to)
	})
	if err != nil {
		return nil, err
	}
	return m.GetItem(ctx, id)
}

// transitionItem writes an item status change checked against the
// transition table. item.Status is updated on success.
func (m *Market) transitionItem(ctx context.Context, tx *sql.Tx, item *model.Item, to string) error {
	if !model.CanTransitionItem(item.Status, to) {
		return apperr.WithMessage(apperr.ErrInvalidTransition,
			"item %d cannot move from %s to %s", item.ID, item.Status, to)
	}
	if err := store.SetItemStatus(ctx, tx, item.ID, item.Status, to, m.clock()); err != nil {
		return err
	}
	item.Status = to
	return nil
}

func applyUpdate(item *model.Item, in ItemUpdate) {
	if in.Title != nil {
		item.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		item.Category = strings.TrimSpace(*in.Category)
	}
	if in.Condition != nil {
		item.Condition = *in.Condition
	}
	if in.ClearLocation {
		item.Latitude, item.Longitude = nil, nil
	}
	if in.Latitude != nil || in.Longitude != nil {
		item.Latitude, item.Longitude = in.Latitude, in.Longitude
	}
	if in.Images != nil {
		item.Images = in.Images
	}
}

func validateItem(item *model.Item) error {
	if item.Title == "" {
		return apperr.Invalid("title must not be empty")
	}
	if utf8.RuneCountInString(item.Title) > model.MaxTitleLength {
		return apperr.Invalid("title must be at most %d characters", model.MaxTitleLength)
	}
	if !model.ValidCondition(item.Condition) {
		return apperr.Invalid("unknown item condition %q", item.Condition)
	}
	if (item.Latitude == nil) != (item.Longitude == nil) {
		return apperr.Invalid("latitude and longitude must be given together")
	}
	if item.HasLocation() {
		if err := geo.ValidateCoordinates(*item.Latitude, *item.Longitude); err != nil {
			return err
		}
	}
	if len(item.Images) > MaxImages {
		return apperr.Invalid("at most %d images per item", MaxImages)
	}
	for _, url := range item.Images {
		if strings.TrimSpace(url) == "" {
			return apperr.Invalid("image reference must not be empty")
		}
	}
	return nil
}

func itemUnavailable(item *model.Item) error {
	return apperr.WithMessage(apperr.ErrItemUnavailable, "item %d is %s", item.ID, item.Status)
}
