package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/zamenjava/internal/apperr"
	"github.com/erazemk/zamenjava/internal/db"
	"github.com/erazemk/zamenjava/internal/model"
)

func TestCreateRatingUniquePerReviewer(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	trade, owner, requester := seedCompletedTrade(t, database, "")

	rating := &model.Rating{
		TradeID:    trade.ID,
		ReviewerID: requester.ID,
		RevieweeID: owner.ID,
		Stars:      5,
		Comment:    "Smooth swap",
		CreatedAt:  testNow,
	}
	id, err := CreateRating(ctx, database, rating)
	if err != nil {
		t.Fatalf("CreateRating: %v", err)
	}

	_, err = CreateRating(ctx, database, rating)
	if !errors.Is(err, apperr.ErrAlreadyRated) {
		t.Errorf("expected ErrAlreadyRated, got %v", err)
	}

	got, _ := GetRating(ctx, database, id)
	if got.ReviewerName != requester.Username {
		t.Errorf("expected reviewer name %q, got %q", requester.Username, got.ReviewerName)
	}

	// The other participant still has their own slot.
	if _, err := CreateRating(ctx, database, &model.Rating{
		TradeID: trade.ID, ReviewerID: owner.ID, RevieweeID: requester.ID, Stars: 4, CreatedAt: testNow,
	}); err != nil {
		t.Errorf("expected owner rating to succeed, got %v", err)
	}
}

func TestRatingCheckConstraints(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	trade, owner, requester := seedCompletedTrade(t, database, "")

	_, err := CreateRating(ctx, database, &model.Rating{
		TradeID: trade.ID, ReviewerID: requester.ID, RevieweeID: owner.ID, Stars: 6, CreatedAt: testNow,
	})
	if err == nil {
		t.Error("expected check violation for 6 stars")
	}

	_, err = CreateRating(ctx, database, &model.Rating{
		TradeID: trade.ID, ReviewerID: owner.ID, RevieweeID: owner.ID, Stars: 3, CreatedAt: testNow,
	})
	if err == nil {
		t.Error("expected check violation for self rating")
	}
}

func TestUpdateAndDeleteRating(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	trade, owner, requester := seedCompletedTrade(t, database, "")

	id, _ := CreateRating(ctx, database, &model.Rating{
		TradeID: trade.ID, ReviewerID: requester.ID, RevieweeID: owner.ID, Stars: 3, CreatedAt: testNow,
	})

	later := testNow.Add(time.Hour)
	if err := UpdateRating(ctx, database, id, 4, "Better than expected", later); err != nil {
		t.Fatalf("UpdateRating: %v", err)
	}
	got, _ := GetRating(ctx, database, id)
	if got.Stars != 4 || got.Comment != "Better than expected" {
		t.Errorf("unexpected rating after update: %+v", got)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Errorf("expected updated_at %v, got %v", later, got.UpdatedAt)
	}

	if err := DeleteRating(ctx, database, id, later); err != nil {
		t.Fatalf("DeleteRating: %v", err)
	}
	if err := DeleteRating(ctx, database, id, later); !errors.Is(err, apperr.ErrStateChanged) {
		t.Errorf("expected ErrStateChanged on second delete, got %v", err)
	}
	if err := UpdateRating(ctx, database, id, 5, "", later); !errors.Is(err, apperr.ErrStateChanged) {
		t.Errorf("expected ErrStateChanged updating deleted rating, got %v", err)
	}

	got, _ = GetRating(ctx, database, id)
	if got.DeletedAt == nil {
		t.Error("expected deleted_at to be set")
	}

	rated, _ := HasRated(ctx, database, trade.ID, requester.ID)
	if !rated {
		t.Error("expected deleted rating to keep the reviewer slot taken")
	}

	list, _ := ListRatingsForUser(ctx, database, owner.ID)
	if len(list) != 0 {
		t.Errorf("expected deleted rating to be hidden, got %d", len(list))
	}
}

func TestRatingDistribution(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	trade1, owner, requester := seedCompletedTrade(t, database, "1")
	CreateRating(ctx, database, &model.Rating{
		TradeID: trade1.ID, ReviewerID: requester.ID, RevieweeID: owner.ID, Stars: 5, CreatedAt: testNow,
	})
	CreateRating(ctx, database, &model.Rating{
		TradeID: trade1.ID, ReviewerID: owner.ID, RevieweeID: requester.ID, Stars: 2, CreatedAt: testNow,
	})

	dist, err := RatingDistribution(ctx, database, owner.ID)
	if err != nil {
		t.Fatalf("RatingDistribution: %v", err)
	}
	if dist[5] != 1 || len(dist) != 1 {
		t.Errorf("unexpected distribution for owner: %v", dist)
	}

	dist, _ = RatingDistribution(ctx, database, requester.ID)
	if dist[2] != 1 {
		t.Errorf("unexpected distribution for requester: %v", dist)
	}
}
