// Package types defines the corkboard domain entities (Person, KanbanBoard,
// Counter, PackingList), the Cupboard and Table storage interfaces,
// and the standard error values shared by every layer.
//
// Entities are plain in-memory values. Nothing in this package performs I/O;
// persistence is the job of a Cupboard backend such as internal/sqlite.
package types
