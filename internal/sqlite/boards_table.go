// This file implements the boards table accessor. A board's statuses live
// in board_statuses with an explicit position so their order survives a
// JSONL round trip.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

var _ types.Table = (*boardsTable)(nil)

type boardsTable struct {
	backend *Backend
}

// Get retrieves a board by ID with its statuses in order.
func (bt *boardsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	bt.backend.mu.RLock()
	defer bt.backend.mu.RUnlock()
	if !bt.backend.attached {
		return nil, types.ErrCupboardDetached
	}

	boards, err := bt.queryBoards("SELECT board_id, name, created_at FROM boards WHERE board_id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(boards) == 0 {
		return nil, types.ErrNotFound
	}
	return boards[0], nil
}

// Set upserts the board and rewrites its statuses. When id is empty the
// board's own BoardID is used; a mismatched id is rejected.
func (bt *boardsTable) Set(id string, data any) (string, error) {
	b, ok := data.(*types.KanbanBoard)
	if !ok || b == nil {
		return "", types.ErrInvalidData
	}
	if id == "" {
		id = b.BoardID
	}
	if id == "" || id != b.BoardID {
		return "", types.ErrInvalidID
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	bt.backend.mu.Lock()
	defer bt.backend.mu.Unlock()
	if !bt.backend.attached {
		return "", types.ErrCupboardDetached
	}

	tx, err := bt.backend.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO boards (board_id, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(board_id) DO UPDATE SET
			name = excluded.name`,
		id, b.Name, b.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("upserting board: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM board_statuses WHERE board_id = ?", id); err != nil {
		return "", fmt.Errorf("clearing board statuses: %w", err)
	}
	for pos, label := range b.Statuses() {
		if _, err := tx.Exec(
			"INSERT INTO board_statuses (board_id, label, position) VALUES (?, ?, ?)",
			id, label, pos); err != nil {
			return "", fmt.Errorf("inserting board status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing board: %w", err)
	}
	if err := bt.backend.persist("boards", "board_statuses"); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a board and its statuses.
func (bt *boardsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	bt.backend.mu.Lock()
	defer bt.backend.mu.Unlock()
	if !bt.backend.attached {
		return types.ErrCupboardDetached
	}

	var exists int
	err := bt.backend.db.QueryRow("SELECT 1 FROM boards WHERE board_id = ?", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return types.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking board: %w", err)
	}

	tx, err := bt.backend.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM board_statuses WHERE board_id = ?", id); err != nil {
		return fmt.Errorf("deleting board statuses: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM boards WHERE board_id = ?", id); err != nil {
		return fmt.Errorf("deleting board: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing board deletion: %w", err)
	}
	return bt.backend.persist("boards", "board_statuses")
}

// Fetch returns boards ordered by BoardID (creation order). Supported filter
// keys: name (exact match), limit.
func (bt *boardsTable) Fetch(filter types.Filter) ([]any, error) {
	name, hasName, err := filterString(filter, "name")
	if err != nil {
		return nil, err
	}
	limit, err := filterLimit(filter)
	if err != nil {
		return nil, err
	}

	query := "SELECT board_id, name, created_at FROM boards"
	var args []any
	if hasName {
		query += " WHERE name = ?"
		args = append(args, name)
	}
	query += " ORDER BY board_id"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	bt.backend.mu.RLock()
	defer bt.backend.mu.RUnlock()
	if !bt.backend.attached {
		return nil, types.ErrCupboardDetached
	}

	boards, err := bt.queryBoards(query, args...)
	if err != nil {
		return nil, err
	}
	results := make([]any, 0, len(boards))
	for _, b := range boards {
		results = append(results, b)
	}
	return results, nil
}

// boardRow holds a boards row between the two hydration queries.
type boardRow struct {
	id, name, createdAt string
}

// queryBoards runs a boards query and hydrates each row with its statuses.
// The caller must hold the backend lock.
func (bt *boardsTable) queryBoards(query string, args ...any) ([]*types.KanbanBoard, error) {
	rows, err := bt.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying boards: %w", err)
	}
	var found []boardRow
	for rows.Next() {
		var r boardRow
		if err := rows.Scan(&r.id, &r.name, &r.createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning board: %w", err)
		}
		found = append(found, r)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterating boards: %w", err)
	}

	boards := make([]*types.KanbanBoard, 0, len(found))
	for _, r := range found {
		created, err := time.Parse(time.RFC3339Nano, r.createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing board created_at: %w", err)
		}
		statuses, err := bt.loadStatuses(r.id)
		if err != nil {
			return nil, err
		}
		b, err := types.RestoreKanbanBoard(r.id, r.name, created, statuses)
		if err != nil {
			return nil, fmt.Errorf("hydrating board %s: %w", r.id, err)
		}
		boards = append(boards, b)
	}
	return boards, nil
}

func (bt *boardsTable) loadStatuses(boardID string) ([]string, error) {
	rows, err := bt.backend.db.Query(
		"SELECT label FROM board_statuses WHERE board_id = ? ORDER BY position", boardID)
	if err != nil {
		return nil, fmt.Errorf("querying board statuses: %w", err)
	}
	defer rows.Close()

	statuses := []string{}
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scanning board status: %w", err)
		}
		statuses = append(statuses, label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating board statuses: %w", err)
	}
	return statuses, nil
}
