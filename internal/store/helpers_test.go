package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/erazemk/zamenjava/internal/model"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, q Querier, username string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), q, username, "hash", testNow)
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func seedItem(t *testing.T, q Querier, ownerID int64, title string) *model.Item {
	t.Helper()
	ctx := context.Background()
	id, err := CreateItem(ctx, q, &model.Item{
		OwnerID:   ownerID,
		Title:     title,
		Category:  "books",
		Condition: model.ConditionGood,
		Status:    model.ItemStatusAvailable,
		PostedAt:  testNow,
		UpdatedAt: testNow,
	})
	if err != nil {
		t.Fatalf("CreateItem(%s): %v", title, err)
	}
	item, err := GetItem(ctx, q, id)
	if err != nil || item == nil {
		t.Fatalf("GetItem(%d): %v", id, err)
	}
	return item
}

func seedRequest(t *testing.T, q Querier, requesterID, requestedID, offeredID int64) *model.TradeRequest {
	t.Helper()
	ctx := context.Background()
	id, err := CreateRequest(ctx, q, &model.TradeRequest{
		RequestedItemID: requestedID,
		OfferedItemID:   offeredID,
		RequesterID:     requesterID,
		RequestedAt:     testNow,
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	r, err := GetRequest(ctx, q, id)
	if err != nil || r == nil {
		t.Fatalf("GetRequest(%d): %v", id, err)
	}
	return r
}

// seedCompletedTrade builds two users, two items, an accepted request and a
// completed trade between them.
func seedCompletedTrade(t *testing.T, database *sql.DB, suffix string) (*model.Trade, *model.User, *model.User) {
	t.Helper()
	ctx := context.Background()

	owner := seedUser(t, database, fmt.Sprintf("owner%s", suffix))
	requester := seedUser(t, database, fmt.Sprintf("requester%s", suffix))
	wanted := seedItem(t, database, owner.ID, "Wanted")
	offered := seedItem(t, database, requester.ID, "Offered")
	r := seedRequest(t, database, requester.ID, wanted.ID, offered.ID)

	id, err := CreateTrade(ctx, database, &model.Trade{
		TradeRequestID:  r.ID,
		RequestedItemID: wanted.ID,
		OfferedItemID:   offered.ID,
		RequesterID:     requester.ID,
		OwnerID:         owner.ID,
		CreatedAt:       testNow,
	})
	if err != nil {
		t.Fatalf("CreateTrade: %v", err)
	}
	completed := testNow.Add(time.Hour)
	if err := SetTradeStatus(ctx, database, id, model.TradeStatusPending, model.TradeStatusCompleted, &completed); err != nil {
		t.Fatalf("SetTradeStatus: %v", err)
	}
	trade, err := GetTrade(ctx, database, id)
	if err != nil || trade == nil {
		t.Fatalf("GetTrade(%d): %v", id, err)
	}
	return trade, owner, requester
}
