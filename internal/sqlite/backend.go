package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// dbFileName is the SQLite cache file inside the data directory. It is
// deleted and rebuilt from JSONL on every Attach.
const dbFileName = "corkboard.db"

var _ types.Cupboard = (*Backend)(nil)

// Backend implements the Cupboard interface using SQLite as the query engine
// and JSONL files as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	tables   map[string]types.Table
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		tables: make(map[string]types.Table),
	}
}

// GetTable returns a Table for the specified table name.
// Returns ErrCupboardDetached if the backend is not attached and
// ErrTableNotFound if the table name is not recognized.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrCupboardDetached
	}

	table, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return table, nil
}

// Attach validates config, creates DataDir if needed, rebuilds the SQLite
// cache, and loads every JSONL file into it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	if config.DataDir == "" {
		config.DataDir = "."
	}
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if err := initJSONLFiles(config.DataDir); err != nil {
		return err
	}

	dbPath := filepath.Join(config.DataDir, dbFileName)
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	// A single connection serializes writers and keeps the cache coherent.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return err
	}
	if err := loadAllJSONL(db, config.DataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.attached = true
	b.tables[types.PeopleTable] = &peopleTable{backend: b}
	b.tables[types.BoardsTable] = &boardsTable{backend: b}
	b.tables[types.PackingTable] = &packingTable{backend: b}

	slog.Debug("cupboard attached", "backend", config.Backend, "data_dir", config.DataDir)
	return nil
}

// Detach closes the SQLite connection. After Detach, GetTable and every
// previously obtained table return ErrCupboardDetached. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.attached = false
	b.tables = make(map[string]types.Table)
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		if err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
	}

	slog.Debug("cupboard detached", "data_dir", b.config.DataDir)
	return nil
}

// DataDir returns the directory holding the JSONL files. Empty when detached.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return ""
	}
	return b.config.DataDir
}

// persist rewrites the JSONL files backing the given SQLite tables.
// The caller must hold b.mu.
func (b *Backend) persist(tables ...string) error {
	for _, m := range jsonlTableMapping {
		for _, t := range tables {
			if m.table != t {
				continue
			}
			if err := persistTableJSONL(b.db, b.config.DataDir, m.table, m.orderBy, m.file); err != nil {
				return err
			}
		}
	}
	return nil
}

// createSchema executes the table and index DDL.
func createSchema(db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

// toInt converts filter values decoded from JSON or passed from Go code.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// filterString extracts a string filter value. ok is false when the key is
// absent; err is ErrInvalidFilter when the value is not a string.
func filterString(filter types.Filter, key string) (value string, ok bool, err error) {
	v, present := filter[key]
	if !present {
		return "", false, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", false, types.ErrInvalidFilter
	}
	return s, true, nil
}

// filterLimit extracts the optional "limit" filter. Zero means no limit.
func filterLimit(filter types.Filter) (int, error) {
	v, ok := filter["limit"]
	if !ok {
		return 0, nil
	}
	n, ok := toInt(v)
	if !ok || n < 0 {
		return 0, types.ErrInvalidFilter
	}
	return n, nil
}
