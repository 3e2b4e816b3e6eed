// Package market implements the trade lifecycle and reputation engine: item
// availability, trade request negotiation, trade completion and the ratings
// that credit loyalty points.
//
// Every state change runs in one database transaction. Operations that move
// item statuses first take an in-process lock per item id, acquired in
// ascending id order, and every status write is conditional on the status
// read inside the transaction. Notifications are sent after commit.
package market

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/zamenjava/internal/metrics"
	"github.com/erazemk/zamenjava/internal/model"
	"github.com/erazemk/zamenjava/internal/notify"
)

// Market is safe for concurrent use.
type Market struct {
	db            *sql.DB
	locks         *itemLocks
	notifier      notify.Notifier
	metrics       *metrics.Metrics
	logger        *slog.Logger
	now           func() time.Time
	pointsPerStar int
}

// Option configures a Market.
type Option func(*Market)

// WithNotifier sets the receiver of post-commit events.
func WithNotifier(n notify.Notifier) Option {
	return func(m *Market) { m.notifier = n }
}

// WithMetrics enables activity counters.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Market) { m.metrics = mt }
}

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(m *Market) { m.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Market) { m.now = now }
}

// WithPointsPerStar sets the loyalty credit per star received.
func WithPointsPerStar(n int) Option {
	return func(m *Market) {
		if n > 0 {
			m.pointsPerStar = n
		}
	}
}

// New returns a Market over a migrated database.
func New(db *sql.DB, opts ...Option) *Market {
	m := &Market{
		db:            db,
		locks:         newItemLocks(),
		notifier:      notify.Nop{},
		logger:        slog.Default(),
		now:           time.Now,
		pointsPerStar: model.DefaultPointsPerStar,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Market) clock() time.Time {
	return m.now().UTC()
}

// inTx runs fn in a transaction and commits if it returns nil. fn must only
// use tx: an in-memory database has a single connection.
func (m *Market) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (m *Market) emit(ctx context.Context, events ...notify.Event) {
	for _, e := range events {
		if err := m.notifier.Notify(ctx, e); err != nil {
			m.logger.Warn("notification failed", "type", e.Type, "user", e.UserID, "error", err)
		}
	}
}
