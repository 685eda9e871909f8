package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Item is one reviewable catalog entry. Content lives elsewhere; the engine
// only needs identity, topic membership, and intrinsic difficulty.
type Item struct {
	ID         string  `db:"id"`
	Topic      string  `db:"topic"`
	Type       string  `db:"type"`
	Difficulty float64 `db:"difficulty"`
}

// ItemRepo manages the item catalog.
type ItemRepo struct {
	db *sqlx.DB
}

// Upsert inserts or replaces a catalog entry.
func (r *ItemRepo) Upsert(ctx context.Context, item Item) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO items (id, topic, type, difficulty)
		VALUES (:id, :topic, :type, :difficulty)
		ON CONFLICT(id) DO UPDATE SET
			topic = excluded.topic,
			type = excluded.type,
			difficulty = excluded.difficulty`, item)
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", item.ID, err)
	}
	return nil
}

// Get returns one item or ErrNotFound.
func (r *ItemRepo) Get(ctx context.Context, id string) (Item, error) {
	var item Item
	err := r.db.GetContext(ctx, &item, `SELECT * FROM items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Item{}, fmt.Errorf("get item %s: %w", id, err)
	}
	return item, nil
}

// List returns the full catalog ordered by ID.
func (r *ItemRepo) List(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := r.db.SelectContext(ctx, &items, `SELECT * FROM items ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// ListByTopic returns the catalog entries for one topic ordered by ID.
func (r *ItemRepo) ListByTopic(ctx context.Context, topic string) ([]Item, error) {
	var items []Item
	err := r.db.SelectContext(ctx, &items,
		`SELECT * FROM items WHERE topic = ? ORDER BY id`, topic)
	if err != nil {
		return nil, fmt.Errorf("list items for topic %s: %w", topic, err)
	}
	return items, nil
}

// Delete removes a catalog entry. Deleting a missing item is a no-op.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return nil
}
