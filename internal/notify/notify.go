// Package notify carries market events to outside collaborators such as
// e-mail or push delivery. The market only emits events after the state
// change that caused them has been committed.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	PointsCredited  = "points.credited"
	TradeCompleted  = "trade.completed"
	TradeCancelled  = "trade.cancelled"
	RequestReceived = "request.received"
	RequestAccepted = "request.accepted"
	RequestRejected = "request.rejected"
)

// Event is addressed to a single user.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     int64     `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`

	TradeID   int64 `json:"trade_id,omitempty"`
	RequestID int64 `json:"request_id,omitempty"`

	// Set on points.credited.
	Points       int    `json:"points,omitempty"`
	TotalPoints  int    `json:"total_points,omitempty"`
	Badge        string `json:"badge,omitempty"`
	BadgeChanged bool   `json:"badge_changed,omitempty"`
}

// NewEvent returns an event with a fresh ID.
func NewEvent(typ string, userID int64, at time.Time) Event {
	return Event{ID: uuid.NewString(), Type: typ, UserID: userID, OccurredAt: at}
}

// Notifier delivers events. The market calls Notify synchronously after
// commit and only logs delivery failures.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// LogNotifier writes every event as a structured log line.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs the event at INFO.
func (n LogNotifier) Notify(ctx context.Context, e Event) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{"id", e.ID, "user", e.UserID}
	if e.TradeID != 0 {
		attrs = append(attrs, "trade", e.TradeID)
	}
	if e.RequestID != 0 {
		attrs = append(attrs, "request", e.RequestID)
	}
	if e.Type == PointsCredited {
		attrs = append(attrs, "points", e.Points, "total", e.TotalPoints, "badge", e.Badge)
	}
	logger.InfoContext(ctx, "notify "+e.Type, attrs...)
	return nil
}

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify records e.
func (r *Recorder) Notify(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of all recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded events of one type.
func (r *Recorder) OfType(typ string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Multi fans an event out to several notifiers. Every notifier is called;
// the first error is returned.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e Event) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
