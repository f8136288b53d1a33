// This file implements JSONL loading for startup.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// jsonlTableMapping maps JSONL filenames to their SQLite tables, column
// lists, the ORDER BY used when writing them back, and the check each
// record must pass before it is inserted.
var jsonlTableMapping = []struct {
	file    string
	table   string
	orderBy string
	columns []string
	check   func(rec map[string]any) error
}{
	{peopleJSONL, "people", "person_id", []string{"person_id", "first_name", "middle_name", "last_name"}, checkPerson},
	{friendshipsJSONL, "friendships", "person_id, friend_id", []string{"person_id", "friend_id"}, checkFriendship},
	{boardsJSONL, "boards", "board_id", []string{"board_id", "name", "created_at"}, checkBoard},
	{boardStatusesJSONL, "board_statuses", "board_id, position", []string{"board_id", "label", "position"}, checkBoardStatus},
	{packingItemsJSONL, "packing_items", "position", []string{"item_id", "name", "packed", "position"}, checkPackingItem},
}

// loadAllJSONL reads each JSONL file from dataDir and inserts records into the
// corresponding SQLite tables. Loading is transactional: all succeed or the
// database remains empty. Malformed lines and records that violate
// constraints are skipped. Unknown fields are ignored.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, mapping := range jsonlTableMapping {
		records, err := readJSONL(filepath.Join(dataDir, mapping.file))
		if err != nil {
			return fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		if len(records) == 0 {
			continue
		}
		loaded, err := insertRecords(tx, mapping.table, mapping.columns, mapping.check, records)
		if err != nil {
			return fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
		slog.Debug("loaded JSONL", "file", mapping.file, "records", loaded, "skipped", len(records)-loaded)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts parsed JSONL records into a SQLite table and returns
// how many were inserted. Only columns listed in the mapping are extracted.
// Records rejected by check are skipped.
func insertRecords(tx *sql.Tx, table string, columns []string, check func(map[string]any) error, records []json.RawMessage) (int, error) {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}
		if check != nil {
			if err := check(obj); err != nil {
				slog.Warn("skipping JSONL record", "table", table, "error", err)
				continue
			}
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			args[i] = obj[col]
		}

		if _, err := stmt.Exec(args...); err != nil {
			slog.Warn("skipping JSONL record", "table", table, "error", err)
			continue
		}
		inserted++
	}
	return inserted, nil
}

var errBadRecord = errors.New("invalid record")

// stringField returns rec[key] when it holds a string. A missing key yields
// def; any other type is rejected.
func stringField(rec map[string]any, key, def string) (string, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, not a string", errBadRecord, key, v)
	}
	return s, nil
}

// requiredField is stringField for keys that must be present and not blank.
func requiredField(rec map[string]any, key string) (string, error) {
	s, err := stringField(rec, key, "")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: %s is blank", errBadRecord, key)
	}
	return s, nil
}

// checkPerson accepts rows that hydrate into a Person. Missing optional
// name parts default to the empty string.
func checkPerson(rec map[string]any) error {
	id, err := stringField(rec, "person_id", "")
	if err != nil {
		return err
	}
	first, err := stringField(rec, "first_name", "")
	if err != nil {
		return err
	}
	middle, err := stringField(rec, "middle_name", "")
	if err != nil {
		return err
	}
	last, err := stringField(rec, "last_name", "")
	if err != nil {
		return err
	}
	if _, err := types.RestorePerson(id, first, middle, last); err != nil {
		return fmt.Errorf("%w: person %q: %w", errBadRecord, id, err)
	}
	rec["middle_name"] = middle
	rec["last_name"] = last
	return nil
}

// checkFriendship accepts a pair of distinct IDs and stores them in
// ascending order.
func checkFriendship(rec map[string]any) error {
	a, err := requiredField(rec, "person_id")
	if err != nil {
		return err
	}
	b, err := requiredField(rec, "friend_id")
	if err != nil {
		return err
	}
	if a == b {
		return fmt.Errorf("%w: self friendship %q", errBadRecord, a)
	}
	if a > b {
		rec["person_id"], rec["friend_id"] = b, a
	}
	return nil
}

// checkBoard accepts rows with an ID and an RFC 3339 created_at.
func checkBoard(rec map[string]any) error {
	id, err := requiredField(rec, "board_id")
	if err != nil {
		return err
	}
	name, err := stringField(rec, "name", "")
	if err != nil {
		return err
	}
	created, err := requiredField(rec, "created_at")
	if err != nil {
		return err
	}
	if _, err := time.Parse(time.RFC3339Nano, created); err != nil {
		return fmt.Errorf("%w: board %q created_at: %w", errBadRecord, id, err)
	}
	rec["name"] = name
	return nil
}

// checkBoardStatus accepts rows with a board ID, a label, and a numeric
// position.
func checkBoardStatus(rec map[string]any) error {
	if _, err := requiredField(rec, "board_id"); err != nil {
		return err
	}
	if _, err := requiredField(rec, "label"); err != nil {
		return err
	}
	if _, ok := rec["position"].(float64); !ok {
		return fmt.Errorf("%w: position is %T, not a number", errBadRecord, rec["position"])
	}
	return nil
}

// checkPackingItem accepts rows with an ID, a name, and a numeric position.
// packed may be a JSON boolean or the 0/1 integer SQLite writes back.
func checkPackingItem(rec map[string]any) error {
	if _, err := requiredField(rec, "item_id"); err != nil {
		return err
	}
	if _, err := requiredField(rec, "name"); err != nil {
		return err
	}
	switch v := rec["packed"].(type) {
	case nil:
		rec["packed"] = 0
	case bool:
		if v {
			rec["packed"] = 1
		} else {
			rec["packed"] = 0
		}
	case float64:
		if v != 0 && v != 1 {
			return fmt.Errorf("%w: packed is %v", errBadRecord, v)
		}
	default:
		return fmt.Errorf("%w: packed is %T, not a boolean", errBadRecord, v)
	}
	if _, ok := rec["position"].(float64); !ok {
		return fmt.Errorf("%w: position is %T, not a number", errBadRecord, rec["position"])
	}
	return nil
}
