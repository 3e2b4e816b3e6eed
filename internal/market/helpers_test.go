package market

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/erazemk/zamenjava/internal/apperr"
	"github.com/erazemk/zamenjava/internal/db"
	"github.com/erazemk/zamenjava/internal/metrics"
	"github.com/erazemk/zamenjava/internal/model"
	"github.com/erazemk/zamenjava/internal/notify"
	"github.com/erazemk/zamenjava/internal/store"
)

// testClock ticks one second per reading.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	db      *sql.DB
	market  *Market
	events  *notify.Recorder
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	rec := &notify.Recorder{}
	mt := metrics.New()
	return &fixture{
		t:       t,
		ctx:     context.Background(),
		db:      database,
		market:  newTestMarket(database, rec, mt),
		events:  rec,
		metrics: mt,
	}
}

func newTestMarket(database *sql.DB, rec *notify.Recorder, mt *metrics.Metrics) *Market {
	clock := &testClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	return New(database,
		WithNotifier(rec),
		WithMetrics(mt),
		WithClock(clock.Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (f *fixture) user(name string) *model.User {
	f.t.Helper()
	u, err := store.CreateUser(f.ctx, f.db, name, "hash", time.Now())
	if err != nil {
		f.t.Fatalf("creating user %s: %v", name, err)
	}
	return u
}

func (f *fixture) item(owner *model.User, title string) *model.Item {
	f.t.Helper()
	item, err := f.market.PostItem(f.ctx, owner.ID, NewItem{
		Title:     title,
		Category:  "misc",
		Condition: model.ConditionGood,
	})
	if err != nil {
		f.t.Fatalf("posting item %s: %v", title, err)
	}
	return item
}

func (f *fixture) itemAt(owner *model.User, title string, lat, lon float64) *model.Item {
	f.t.Helper()
	item, err := f.market.PostItem(f.ctx, owner.ID, NewItem{
		Title:     title,
		Condition: model.ConditionNew,
		Latitude:  &lat,
		Longitude: &lon,
	})
	if err != nil {
		f.t.Fatalf("posting item %s: %v", title, err)
	}
	return item
}

func (f *fixture) request(requester *model.User, requested, offered *model.Item) *model.TradeRequest {
	f.t.Helper()
	r, err := f.market.CreateRequest(f.ctx, requester.ID, requested.ID, offered.ID)
	if err != nil {
		f.t.Fatalf("creating request: %v", err)
	}
	return r
}

func (f *fixture) accept(owner *model.User, r *model.TradeRequest) *model.Trade {
	f.t.Helper()
	trade, err := f.market.AcceptRequest(f.ctx, owner.ID, r.ID)
	if err != nil {
		f.t.Fatalf("accepting request %d: %v", r.ID, err)
	}
	return trade
}

func (f *fixture) complete(actor *model.User, trade *model.Trade) *model.Trade {
	f.t.Helper()
	done, err := f.market.CompleteTrade(f.ctx, actor.ID, trade.ID)
	if err != nil {
		f.t.Fatalf("completing trade %d: %v", trade.ID, err)
	}
	return done
}

// completedTrade sets up owner and requester with one item each and a
// completed trade between them.
func (f *fixture) completedTrade() (*model.Trade, *model.User, *model.User) {
	f.t.Helper()
	owner := f.user("owner")
	requester := f.user("requester")
	wanted := f.item(owner, "Record player")
	offered := f.item(requester, "Camera")
	trade := f.accept(owner, f.request(requester, wanted, offered))
	return f.complete(owner, trade), owner, requester
}

func (f *fixture) itemStatus(id int64) string {
	f.t.Helper()
	item, err := f.market.GetItem(f.ctx, id)
	if err != nil {
		f.t.Fatalf("getting item %d: %v", id, err)
	}
	return item.Status
}

func (f *fixture) requestStatus(id int64) string {
	f.t.Helper()
	r, err := store.GetRequest(f.ctx, f.db, id)
	if err != nil || r == nil {
		f.t.Fatalf("getting request %d: %v", id, err)
	}
	return r.Status
}

func (f *fixture) points(u *model.User) int {
	f.t.Helper()
	got, err := store.GetUser(f.ctx, f.db, u.ID)
	if err != nil || got == nil {
		f.t.Fatalf("getting user %d: %v", u.ID, err)
	}
	return got.LoyaltyPoints
}

func expectErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}
}

func expectKind(t *testing.T, err error, want apperr.Kind) {
	t.Helper()
	if got := apperr.KindOf(err); got != want {
		t.Errorf("expected %s error, got %s (%v)", want, got, err)
	}
}
