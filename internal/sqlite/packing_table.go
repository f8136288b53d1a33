// This file implements the packing table accessor. A data directory holds a
// single packing list; each item is one row with an explicit position.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

var _ types.Table = (*packingTable)(nil)

type packingTable struct {
	backend *Backend
}

// Get retrieves one item by ID.
func (pt *packingTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	pt.backend.mu.RLock()
	defer pt.backend.mu.RUnlock()
	if !pt.backend.attached {
		return nil, types.ErrCupboardDetached
	}

	items, err := queryItems(pt.backend.db,
		"SELECT item_id, name, packed FROM packing_items WHERE item_id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, types.ErrNotFound
	}
	return items[0], nil
}

// Set stores a *types.Item or a whole *types.PackingList.
//
// An item is upserted under its own ItemID; a new item goes to the end of
// the list and an existing one keeps its place. A packing list replaces every
// stored item in list order; id must be empty and the returned ID is empty.
func (pt *packingTable) Set(id string, data any) (string, error) {
	switch v := data.(type) {
	case *types.Item:
		if v == nil {
			return "", types.ErrInvalidData
		}
		return pt.setItem(id, v)
	case *types.PackingList:
		if v == nil {
			return "", types.ErrInvalidData
		}
		if id != "" {
			return "", types.ErrInvalidID
		}
		return "", pt.replaceAll(v.Items())
	default:
		return "", types.ErrInvalidData
	}
}

func (pt *packingTable) setItem(id string, it *types.Item) (string, error) {
	if id == "" {
		id = it.ItemID
	}
	if id == "" || id != it.ItemID {
		return "", types.ErrInvalidID
	}
	if strings.TrimSpace(it.Name) == "" {
		return "", fmt.Errorf("%w: %w", types.ErrInvalidData, types.ErrEmptyItemName)
	}

	pt.backend.mu.Lock()
	defer pt.backend.mu.Unlock()
	if !pt.backend.attached {
		return "", types.ErrCupboardDetached
	}

	_, err := pt.backend.db.Exec(`
		INSERT INTO packing_items (item_id, name, packed, position)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM packing_items))
		ON CONFLICT(item_id) DO UPDATE SET
			name = excluded.name,
			packed = excluded.packed`,
		id, it.Name, it.Packed)
	if err != nil {
		return "", fmt.Errorf("upserting packing item: %w", err)
	}
	if err := pt.backend.persist("packing_items"); err != nil {
		return "", err
	}
	return id, nil
}

func (pt *packingTable) replaceAll(items []types.Item) error {
	for _, it := range items {
		if it.ItemID == "" {
			return types.ErrInvalidID
		}
	}

	pt.backend.mu.Lock()
	defer pt.backend.mu.Unlock()
	if !pt.backend.attached {
		return types.ErrCupboardDetached
	}

	tx, err := pt.backend.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM packing_items"); err != nil {
		return fmt.Errorf("clearing packing items: %w", err)
	}
	for pos, it := range items {
		if _, err := tx.Exec(
			"INSERT INTO packing_items (item_id, name, packed, position) VALUES (?, ?, ?, ?)",
			it.ItemID, it.Name, it.Packed, pos); err != nil {
			return fmt.Errorf("inserting packing item %s: %w", it.ItemID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing packing list: %w", err)
	}
	return pt.backend.persist("packing_items")
}

// Delete removes one item.
func (pt *packingTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	pt.backend.mu.Lock()
	defer pt.backend.mu.Unlock()
	if !pt.backend.attached {
		return types.ErrCupboardDetached
	}

	res, err := pt.backend.db.Exec("DELETE FROM packing_items WHERE item_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting packing item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting packing item: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return pt.backend.persist("packing_items")
}

// Fetch returns items in list order. Supported filter keys: packed (bool),
// limit.
func (pt *packingTable) Fetch(filter types.Filter) ([]any, error) {
	packed, hasPacked, err := filterBool(filter, "packed")
	if err != nil {
		return nil, err
	}
	limit, err := filterLimit(filter)
	if err != nil {
		return nil, err
	}

	query := "SELECT item_id, name, packed FROM packing_items"
	var args []any
	if hasPacked {
		query += " WHERE packed = ?"
		args = append(args, packed)
	}
	query += " ORDER BY position"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	pt.backend.mu.RLock()
	defer pt.backend.mu.RUnlock()
	if !pt.backend.attached {
		return nil, types.ErrCupboardDetached
	}

	items, err := queryItems(pt.backend.db, query, args...)
	if err != nil {
		return nil, err
	}
	results := make([]any, 0, len(items))
	for _, it := range items {
		results = append(results, it)
	}
	return results, nil
}

func queryItems(db *sql.DB, query string, args ...any) ([]*types.Item, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying packing items: %w", err)
	}
	defer rows.Close()

	var items []*types.Item
	for rows.Next() {
		it := &types.Item{}
		if err := rows.Scan(&it.ItemID, &it.Name, &it.Packed); err != nil {
			return nil, fmt.Errorf("scanning packing item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating packing items: %w", err)
	}
	return items, nil
}

// filterBool extracts a boolean filter value. ok is false when the key is
// absent; err is ErrInvalidFilter when the value is not a bool.
func filterBool(filter types.Filter, key string) (value, ok bool, err error) {
	v, present := filter[key]
	if !present {
		return false, false, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, false, types.ErrInvalidFilter
	}
	return b, true, nil
}
