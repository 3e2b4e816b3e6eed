package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/zamenjava/internal/model"
)

const itemColumns = `id, owner_id, title, description, category, condition, status,
	latitude, longitude, posted_at, updated_at`

// ItemFilter narrows ListItems. Zero values match everything.
type ItemFilter struct {
	OwnerID      int64
	Status       string
	Category     string
	Condition    string
	WithLocation bool
}

// CreateItem inserts an item together with its image references and returns its id.
func CreateItem(ctx context.Context, q Querier, item *model.Item) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO items (owner_id, title, description, category, condition, status,
		                    latitude, longitude, posted_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.OwnerID, item.Title, item.Description, item.Category, item.Condition, item.Status,
		item.Latitude, item.Longitude, item.PostedAt, item.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting item id: %w", err)
	}

	if err := replaceImages(ctx, q, id, item.Images); err != nil {
		return 0, err
	}
	return id, nil
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, q Querier, id int64) (*model.Item, error) {
	row := q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}

	images, err := loadImages(ctx, q, []int64{id})
	if err != nil {
		return nil, err
	}
	item.Images = images[id]
	return item, nil
}

// ListItems returns items matching f, newest first.
func ListItems(ctx context.Context, q Querier, f ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1 = 1`
	var args []any
	if f.OwnerID != 0 {
		query += ` AND owner_id = ?`
		args = append(args, f.OwnerID)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Condition != "" {
		query += ` AND condition = ?`
		args = append(args, f.Condition)
	}
	if f.WithLocation {
		query += ` AND latitude IS NOT NULL AND longitude IS NOT NULL`
	}
	query += ` ORDER BY posted_at DESC, id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	var ids []int64
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
		ids = append(ids, item.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	rows.Close()

	images, err := loadImages(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Images = images[items[i].ID]
	}
	return items, nil
}

// UpdateItem rewrites an item's descriptive fields while it is still AVAILABLE.
func UpdateItem(ctx context.Context, q Querier, item *model.Item) error {
	result, err := q.ExecContext(ctx,
		`UPDATE items SET title = ?, description = ?, category = ?, condition = ?,
		                  latitude = ?, longitude = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		item.Title, item.Description, item.Category, item.Condition,
		item.Latitude, item.Longitude, item.UpdatedAt,
		item.ID, model.ItemStatusAvailable,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	if err := expectOne(result, "updating item"); err != nil {
		return err
	}
	return replaceImages(ctx, q, item.ID, item.Images)
}

// SetItemStatus moves an item from one status to another. It fails with
// apperr.ErrStateChanged when the item is no longer in status from.
func SetItemStatus(ctx context.Context, q Querier, id int64, from, to string, now time.Time) error {
	result, err := q.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, now, id, from,
	)
	if err != nil {
		return fmt.Errorf("setting item status: %w", err)
	}
	return expectOne(result, "setting item status")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var lat, lon sql.NullFloat64
	err := row.Scan(&item.ID, &item.OwnerID, &item.Title, &item.Description, &item.Category,
		&item.Condition, &item.Status, &lat, &lon, &item.PostedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lat.Valid && lon.Valid {
		item.Latitude = &lat.Float64
		item.Longitude = &lon.Float64
	}
	return item, nil
}

func replaceImages(ctx context.Context, q Querier, itemID int64, urls []string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM item_images WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("clearing item images: %w", err)
	}
	for i, url := range urls {
		_, err := q.ExecContext(ctx,
			`INSERT INTO item_images (item_id, position, url) VALUES (?, ?, ?)`,
			itemID, i, url,
		)
		if err != nil {
			return fmt.Errorf("storing item image: %w", err)
		}
	}
	return nil
}

func loadImages(ctx context.Context, q Querier, itemIDs []int64) (map[int64][]string, error) {
	images := make(map[int64][]string)
	if len(itemIDs) == 0 {
		return images, nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT item_id, url FROM item_images
		 WHERE item_id IN (`+placeholders(len(itemIDs))+`)
		 ORDER BY item_id, position`,
		int64Args(itemIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("loading item images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var url string
		if err := rows.Scan(&id, &url); err != nil {
			return nil, fmt.Errorf("scanning item image: %w", err)
		}
		images[id] = append(images[id], url)
	}
	return images, rows.Err()
}
