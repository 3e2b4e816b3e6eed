package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/zamenjava/internal/apperr"
	"github.com/erazemk/zamenjava/internal/db"
	"github.com/erazemk/zamenjava/internal/model"
)

func TestCreateTradeOncePerRequest(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, database, "alice")
	bob := seedUser(t, database, "bob")
	book := seedItem(t, database, alice.ID, "Book")
	lamp := seedItem(t, database, bob.ID, "Lamp")
	r := seedRequest(t, database, bob.ID, book.ID, lamp.ID)

	trade := &model.Trade{
		TradeRequestID:  r.ID,
		RequestedItemID: book.ID,
		OfferedItemID:   lamp.ID,
		RequesterID:     bob.ID,
		OwnerID:         alice.ID,
		CreatedAt:       testNow,
	}
	id, err := CreateTrade(ctx, database, trade)
	if err != nil {
		t.Fatalf("CreateTrade: %v", err)
	}
	if _, err := CreateTrade(ctx, database, trade); err == nil {
		t.Error("expected second trade for the same request to fail")
	}

	got, _ := GetTradeByRequest(ctx, database, r.ID)
	if got == nil || got.ID != id {
		t.Fatalf("expected trade %d for request, got %+v", id, got)
	}
	if got.Status != model.TradeStatusPending {
		t.Errorf("expected PENDING, got %q", got.Status)
	}
	n, _ := CountTradesForRequest(ctx, database, r.ID)
	if n != 1 {
		t.Errorf("expected exactly one trade, got %d", n)
	}
}

func TestSetTradeStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	trade, _, _ := seedCompletedTrade(t, database, "")
	if trade.Status != model.TradeStatusCompleted {
		t.Fatalf("expected COMPLETED, got %q", trade.Status)
	}
	if trade.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}

	err := SetTradeStatus(ctx, database, trade.ID, model.TradeStatusPending, model.TradeStatusCancelled, nil)
	if !errors.Is(err, apperr.ErrStateChanged) {
		t.Errorf("expected ErrStateChanged, got %v", err)
	}
}

func TestListTrades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	trade, owner, requester := seedCompletedTrade(t, database, "")
	outsider := seedUser(t, database, "outsider")

	for _, id := range []int64{owner.ID, requester.ID} {
		trades, err := ListTrades(ctx, database, id, "")
		if err != nil {
			t.Fatalf("ListTrades: %v", err)
		}
		if len(trades) != 1 || trades[0].ID != trade.ID {
			t.Errorf("expected participant %d to see trade %d, got %+v", id, trade.ID, trades)
		}
	}

	trades, _ := ListTrades(ctx, database, outsider.ID, "")
	if len(trades) != 0 {
		t.Errorf("expected outsider to see no trades, got %d", len(trades))
	}

	pending, _ := ListTrades(ctx, database, owner.ID, model.TradeStatusPending)
	if len(pending) != 0 {
		t.Errorf("expected no pending trades, got %d", len(pending))
	}
}

func TestGetTradeStats(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	done, owner, requester := seedCompletedTrade(t, database, "")
	if err := SetRequestStatus(ctx, database, done.TradeRequestID, model.RequestStatusPending, model.RequestStatusAccepted, testNow); err != nil {
		t.Fatalf("SetRequestStatus: %v", err)
	}

	// A second trade still in progress.
	bike := seedItem(t, database, owner.ID, "Bike")
	tent := seedItem(t, database, requester.ID, "Tent")
	r := seedRequest(t, database, requester.ID, bike.ID, tent.ID)
	if err := SetRequestStatus(ctx, database, r.ID, model.RequestStatusPending, model.RequestStatusAccepted, testNow); err != nil {
		t.Fatalf("SetRequestStatus: %v", err)
	}
	if _, err := CreateTrade(ctx, database, &model.Trade{
		TradeRequestID:  r.ID,
		RequestedItemID: bike.ID,
		OfferedItemID:   tent.ID,
		RequesterID:     requester.ID,
		OwnerID:         owner.ID,
		CreatedAt:       testNow,
	}); err != nil {
		t.Fatalf("CreateTrade: %v", err)
	}

	// One request waiting on the owner.
	kettle := seedItem(t, database, requester.ID, "Kettle")
	seedRequest(t, database, requester.ID, bike.ID, kettle.ID)

	stranger := seedUser(t, database, "stranger")

	tests := []struct {
		name   string
		userID int64
		want   model.TradeStats
	}{
		{"owner", owner.ID, model.TradeStats{TotalTrades: 2, CompletedTrades: 1, PendingRequests: 1, ActiveDeals: 1}},
		{"requester", requester.ID, model.TradeStats{TotalTrades: 2, CompletedTrades: 1, PendingRequests: 0, ActiveDeals: 1}},
		{"stranger", stranger.ID, model.TradeStats{}},
	}

	for _, tt := range tests {
		got, err := GetTradeStats(ctx, database, tt.userID)
		if err != nil {
			t.Fatalf("GetTradeStats(%s): %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.name, tt.want, got)
		}
	}
}
