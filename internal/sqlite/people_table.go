// This file implements the people table accessor. Friendships are stored as
// one canonical row per pair and re-linked into a full graph on every read,
// so every returned *types.Person satisfies the symmetric friend invariant.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

var _ types.Table = (*peopleTable)(nil)

type peopleTable struct {
	backend *Backend
}

// Get retrieves a person by ID with friends hydrated.
func (pt *peopleTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	pt.backend.mu.RLock()
	defer pt.backend.mu.RUnlock()
	if !pt.backend.attached {
		return nil, types.ErrCupboardDetached
	}

	graph, _, err := loadPeopleGraph(pt.backend.db)
	if err != nil {
		return nil, err
	}
	p, ok := graph[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return p, nil
}

// Set upserts the person and every current friend, then replaces the stored
// friendships of that person with its in-memory friend set. When id is
// empty the person's own PersonID is used; a mismatched id is rejected.
func (pt *peopleTable) Set(id string, data any) (string, error) {
	p, ok := data.(*types.Person)
	if !ok || p == nil {
		return "", types.ErrInvalidData
	}
	if id == "" {
		id = p.PersonID
	}
	if id == "" || id != p.PersonID {
		return "", types.ErrInvalidID
	}
	if strings.TrimSpace(p.FirstName) == "" {
		return "", fmt.Errorf("%w: %w", types.ErrInvalidData, types.ErrEmptyFullName)
	}

	pt.backend.mu.Lock()
	defer pt.backend.mu.Unlock()
	if !pt.backend.attached {
		return "", types.ErrCupboardDetached
	}

	tx, err := pt.backend.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertPerson(tx, p); err != nil {
		return "", err
	}
	friends := p.Friends()
	for _, f := range friends {
		if err := upsertPerson(tx, f); err != nil {
			return "", err
		}
	}

	if _, err := tx.Exec(
		"DELETE FROM friendships WHERE person_id = ? OR friend_id = ?", id, id); err != nil {
		return "", fmt.Errorf("clearing friendships: %w", err)
	}
	for _, f := range friends {
		lo, hi := orderedPair(id, f.PersonID)
		if _, err := tx.Exec(
			"INSERT INTO friendships (person_id, friend_id) VALUES (?, ?)", lo, hi); err != nil {
			return "", fmt.Errorf("inserting friendship: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing person: %w", err)
	}
	if err := pt.backend.persist("people", "friendships"); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a person and every friendship that involves them.
func (pt *peopleTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	pt.backend.mu.Lock()
	defer pt.backend.mu.Unlock()
	if !pt.backend.attached {
		return types.ErrCupboardDetached
	}

	var exists int
	err := pt.backend.db.QueryRow("SELECT 1 FROM people WHERE person_id = ?", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return types.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking person: %w", err)
	}

	tx, err := pt.backend.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM friendships WHERE person_id = ? OR friend_id = ?", id, id); err != nil {
		return fmt.Errorf("deleting friendships: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM people WHERE person_id = ?", id); err != nil {
		return fmt.Errorf("deleting person: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing person deletion: %w", err)
	}
	return pt.backend.persist("people", "friendships")
}

// Fetch returns people ordered by PersonID (creation order), all drawn from
// one hydrated graph. Supported filter keys: first_name, last_name
// (case-insensitive exact match), friend_of (a PersonID), limit.
func (pt *peopleTable) Fetch(filter types.Filter) ([]any, error) {
	first, hasFirst, err := filterString(filter, "first_name")
	if err != nil {
		return nil, err
	}
	last, hasLast, err := filterString(filter, "last_name")
	if err != nil {
		return nil, err
	}
	friendOf, hasFriendOf, err := filterString(filter, "friend_of")
	if err != nil {
		return nil, err
	}
	limit, err := filterLimit(filter)
	if err != nil {
		return nil, err
	}

	pt.backend.mu.RLock()
	defer pt.backend.mu.RUnlock()
	if !pt.backend.attached {
		return nil, types.ErrCupboardDetached
	}

	graph, ordered, err := loadPeopleGraph(pt.backend.db)
	if err != nil {
		return nil, err
	}

	results := []any{}
	for _, p := range ordered {
		if hasFirst && !strings.EqualFold(p.FirstName, first) {
			continue
		}
		if hasLast && !strings.EqualFold(p.LastName, last) {
			continue
		}
		if hasFriendOf {
			anchor, ok := graph[friendOf]
			if !ok || !anchor.HasFriend(p) {
				continue
			}
		}
		results = append(results, p)
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results, nil
}

// loadPeopleGraph hydrates every person and re-links stored friendships.
// Returns the people keyed by ID and in PersonID order.
func loadPeopleGraph(db *sql.DB) (map[string]*types.Person, []*types.Person, error) {
	rows, err := db.Query(
		"SELECT person_id, first_name, middle_name, last_name FROM people ORDER BY person_id")
	if err != nil {
		return nil, nil, fmt.Errorf("querying people: %w", err)
	}
	defer rows.Close()

	graph := make(map[string]*types.Person)
	var ordered []*types.Person
	for rows.Next() {
		var id, first, middle, last string
		if err := rows.Scan(&id, &first, &middle, &last); err != nil {
			return nil, nil, fmt.Errorf("scanning person: %w", err)
		}
		p, err := types.RestorePerson(id, first, middle, last)
		if err != nil {
			return nil, nil, fmt.Errorf("hydrating person %s: %w", id, err)
		}
		graph[id] = p
		ordered = append(ordered, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating people: %w", err)
	}

	links, err := db.Query("SELECT person_id, friend_id FROM friendships")
	if err != nil {
		return nil, nil, fmt.Errorf("querying friendships: %w", err)
	}
	defer links.Close()
	for links.Next() {
		var a, b string
		if err := links.Scan(&a, &b); err != nil {
			return nil, nil, fmt.Errorf("scanning friendship: %w", err)
		}
		pa, okA := graph[a]
		pb, okB := graph[b]
		if okA && okB {
			pa.AddFriend(pb)
		}
	}
	if err := links.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating friendships: %w", err)
	}
	return graph, ordered, nil
}

func upsertPerson(tx *sql.Tx, p *types.Person) error {
	_, err := tx.Exec(`
		INSERT INTO people (person_id, first_name, middle_name, last_name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(person_id) DO UPDATE SET
			first_name = excluded.first_name,
			middle_name = excluded.middle_name,
			last_name = excluded.last_name`,
		p.PersonID, p.FirstName, p.MiddleName, p.LastName)
	if err != nil {
		return fmt.Errorf("upserting person %s: %w", p.PersonID, err)
	}
	return nil
}

// orderedPair returns a and b with the smaller ID first.
func orderedPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}
