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

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, database, "alice")

	lat, lon := 46.05, 14.51
	id, err := CreateItem(ctx, database, &model.Item{
		OwnerID:     owner.ID,
		Title:       "Bicycle",
		Description: "City bike",
		Category:    "sports",
		Condition:   model.ConditionFair,
		Status:      model.ItemStatusAvailable,
		Latitude:    &lat,
		Longitude:   &lon,
		Images:      []string{"https://img.example/1.jpg", "https://img.example/2.jpg"},
		PostedAt:    testNow,
		UpdatedAt:   testNow,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	item, err := GetItem(ctx, database, id)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item.Title != "Bicycle" {
		t.Errorf("expected title 'Bicycle', got %q", item.Title)
	}
	if item.Status != model.ItemStatusAvailable {
		t.Errorf("expected status AVAILABLE, got %q", item.Status)
	}
	if !item.HasLocation() || *item.Latitude != lat || *item.Longitude != lon {
		t.Errorf("expected location %v,%v, got %v,%v", lat, lon, item.Latitude, item.Longitude)
	}
	if len(item.Images) != 2 || item.Images[0] != "https://img.example/1.jpg" {
		t.Errorf("unexpected images: %v", item.Images)
	}
	if !item.PostedAt.Equal(testNow) {
		t.Errorf("expected posted_at %v, got %v", testNow, item.PostedAt)
	}
}

func TestGetItemNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	item, err := GetItem(context.Background(), database, 42)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item != nil {
		t.Errorf("expected nil for missing item, got %+v", item)
	}
}

func TestItemWithoutLocation(t *testing.T) {
	database := db.NewTestDB(t)
	owner := seedUser(t, database, "alice")

	item := seedItem(t, database, owner.ID, "Lamp")
	if item.HasLocation() {
		t.Error("expected item without location")
	}
}

func TestListItemsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, database, "alice")
	bob := seedUser(t, database, "bob")

	seedItem(t, database, alice.ID, "Book")
	lamp := seedItem(t, database, alice.ID, "Lamp")
	seedItem(t, database, bob.ID, "Chair")

	if err := SetItemStatus(ctx, database, lamp.ID, model.ItemStatusAvailable, model.ItemStatusRemoved, testNow); err != nil {
		t.Fatalf("SetItemStatus: %v", err)
	}

	all, _ := ListItems(ctx, database, ItemFilter{})
	if len(all) != 3 {
		t.Errorf("expected 3 items, got %d", len(all))
	}

	aliceItems, _ := ListItems(ctx, database, ItemFilter{OwnerID: alice.ID})
	if len(aliceItems) != 2 {
		t.Errorf("expected 2 items for alice, got %d", len(aliceItems))
	}

	available, _ := ListItems(ctx, database, ItemFilter{Status: model.ItemStatusAvailable})
	if len(available) != 2 {
		t.Errorf("expected 2 available items, got %d", len(available))
	}

	located, _ := ListItems(ctx, database, ItemFilter{WithLocation: true})
	if len(located) != 0 {
		t.Errorf("expected no located items, got %d", len(located))
	}
}

func TestSetItemStatusConditional(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, database, "alice")
	item := seedItem(t, database, owner.ID, "Guitar")

	if err := SetItemStatus(ctx, database, item.ID, model.ItemStatusAvailable, model.ItemStatusReserved, testNow); err != nil {
		t.Fatalf("first SetItemStatus: %v", err)
	}

	err := SetItemStatus(ctx, database, item.ID, model.ItemStatusAvailable, model.ItemStatusReserved, testNow)
	if !errors.Is(err, apperr.ErrStateChanged) {
		t.Errorf("expected ErrStateChanged, got %v", err)
	}
}

func TestUpdateItemOnlyWhileAvailable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, database, "alice")
	item := seedItem(t, database, owner.ID, "Desk")

	item.Title = "Oak desk"
	item.Images = []string{"https://img.example/desk.jpg"}
	item.UpdatedAt = testNow.Add(time.Minute)
	if err := UpdateItem(ctx, database, item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Title != "Oak desk" {
		t.Errorf("expected updated title, got %q", got.Title)
	}
	if len(got.Images) != 1 {
		t.Errorf("expected 1 image, got %v", got.Images)
	}

	SetItemStatus(ctx, database, item.ID, model.ItemStatusAvailable, model.ItemStatusReserved, testNow)
	item.Title = "Too late"
	if err := UpdateItem(ctx, database, item); !errors.Is(err, apperr.ErrStateChanged) {
		t.Errorf("expected ErrStateChanged for reserved item, got %v", err)
	}
}
