// Package sqlite provides the public API for the SQLite Cupboard backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/corkboard/internal/sqlite"
	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: dataDir,
//	})
//	defer backend.Detach()
//	people, _ := backend.GetTable(types.PeopleTable)
func NewBackend() types.Cupboard {
	return sqlite.NewBackend()
}
