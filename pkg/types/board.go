package types

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// Default board statuses, in board order.
const (
	StatusBacklog    = "Backlog"
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

// DefaultStatuses seeds every new KanbanBoard.
var DefaultStatuses = []string{
	StatusBacklog,
	StatusToDo,
	StatusInProgress,
	StatusDone,
}

// KanbanBoard is a named board with an ordered list of unique status labels.
type KanbanBoard struct {
	BoardID   string    // UUID v7, generated on creation.
	Name      string    // Display name; may be empty.
	CreatedAt time.Time // Timestamp of creation.

	statuses []string
}

// NewKanbanBoard creates a board seeded with DefaultStatuses.
func NewKanbanBoard(name string) *KanbanBoard {
	return &KanbanBoard{
		BoardID:   newID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		statuses:  slices.Clone(DefaultStatuses),
	}
}

// RestoreKanbanBoard rebuilds a board from stored values. Blank and
// duplicate labels are dropped, keeping first occurrences in order.
// Returns ErrInvalidID if id is empty.
func RestoreKanbanBoard(id, name string, createdAt time.Time, statuses []string) (*KanbanBoard, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	b := &KanbanBoard{
		BoardID:   id,
		Name:      name,
		CreatedAt: createdAt,
		statuses:  make([]string, 0, len(statuses)),
	}
	for _, s := range statuses {
		b.AddStatus(s)
	}
	return b, nil
}

// Statuses returns a copy of the board's status labels in order.
func (b *KanbanBoard) Statuses() []string {
	return slices.Clone(b.statuses)
}

// HasStatus reports whether label is one of the board's statuses.
func (b *KanbanBoard) HasStatus(label string) bool {
	return slices.Contains(b.statuses, label)
}

// AddStatus appends label to the board. Duplicate and blank labels are
// ignored.
func (b *KanbanBoard) AddStatus(label string) {
	if strings.TrimSpace(label) == "" || b.HasStatus(label) {
		return
	}
	b.statuses = append(b.statuses, label)
}

// RemoveStatus removes label from the board. No-op when absent.
func (b *KanbanBoard) RemoveStatus(label string) {
	i := slices.Index(b.statuses, label)
	if i < 0 {
		return
	}
	b.statuses = slices.Delete(b.statuses, i, i+1)
}

// RemoveStatusAsync removes label before it returns, exactly like
// RemoveStatus, and delivers the number of remaining statuses on the
// returned channel. The channel yields one value and is then closed.
//
// Only the result is deferred: a caller that inspects Statuses right after
// the call already sees label gone, whether or not it has received.
func (b *KanbanBoard) RemoveStatusAsync(label string) <-chan int {
	b.RemoveStatus(label)
	remaining := len(b.statuses)

	result := make(chan int, 1)
	go func() {
		defer close(result)
		result <- remaining
	}()
	return result
}

// boardJSON is the wire form of a KanbanBoard.
type boardJSON struct {
	BoardID   string    `json:"board_id" yaml:"board_id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Statuses  []string  `json:"statuses" yaml:"statuses"`
}

func (b *KanbanBoard) view() boardJSON {
	return boardJSON{
		BoardID:   b.BoardID,
		Name:      b.Name,
		CreatedAt: b.CreatedAt,
		Statuses:  b.Statuses(),
	}
}

// MarshalJSON encodes the board including its statuses.
func (b *KanbanBoard) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.view())
}

// UnmarshalJSON decodes a board, applying the same label rules as
// RestoreKanbanBoard.
func (b *KanbanBoard) UnmarshalJSON(data []byte) error {
	var v boardJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	restored, err := RestoreKanbanBoard(v.BoardID, v.Name, v.CreatedAt, v.Statuses)
	if err != nil {
		return err
	}
	*b = *restored
	return nil
}

// MarshalYAML encodes the board including its statuses.
func (b *KanbanBoard) MarshalYAML() (any, error) {
	return b.view(), nil
}
