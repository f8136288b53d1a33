// Package sqlite implements the SQLite storage backend for corkboard.
// JSONL files in the data directory are the source of truth; SQLite is the
// query engine, rebuilt from JSONL on every Attach.
package sqlite

// Schema DDL for all tables.
const (
	createPeople = `CREATE TABLE people (
    person_id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL,
    middle_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT ''
);`

	// Each friendship is stored once, with person_id < friend_id.
	createFriendships = `CREATE TABLE friendships (
    person_id TEXT NOT NULL,
    friend_id TEXT NOT NULL,
    PRIMARY KEY (person_id, friend_id),
    CHECK (person_id < friend_id)
);`

	createBoards = `CREATE TABLE boards (
    board_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createBoardStatuses = `CREATE TABLE board_statuses (
    board_id TEXT NOT NULL,
    label TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (board_id, label)
);`

	createPackingItems = `CREATE TABLE packing_items (
    item_id TEXT PRIMARY KEY,
    name TEXT NOT NULL CHECK (trim(name) <> ''),
    packed INTEGER NOT NULL DEFAULT 0 CHECK (packed IN (0, 1)),
    position INTEGER NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxPeopleFirstName      = `CREATE INDEX idx_people_first_name ON people(first_name COLLATE NOCASE);`
	idxPeopleLastName       = `CREATE INDEX idx_people_last_name ON people(last_name COLLATE NOCASE);`
	idxFriendshipsFriend    = `CREATE INDEX idx_friendships_friend ON friendships(friend_id);`
	idxBoardsName           = `CREATE INDEX idx_boards_name ON boards(name);`
	idxBoardStatusesOrdered = `CREATE INDEX idx_board_statuses_position ON board_statuses(board_id, position);`
	idxPackingItemsPosition = `CREATE INDEX idx_packing_items_position ON packing_items(position);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createPeople,
	createFriendships,
	createBoards,
	createBoardStatuses,
	createPackingItems,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxPeopleFirstName,
	idxPeopleLastName,
	idxFriendshipsFriend,
	idxBoardsName,
	idxBoardStatusesOrdered,
	idxPackingItemsPosition,
}
