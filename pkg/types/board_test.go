package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKanbanBoardDefaults(t *testing.T) {
	board := NewKanbanBoard("Things to Do")

	assert.Equal(t, "Things to Do", board.Name)
	assert.NotEmpty(t, board.BoardID)
	assert.Contains(t, board.Statuses(), "Backlog")
	assert.NotContains(t, board.Statuses(), "Bogus")
	assert.Equal(t, DefaultStatuses, board.Statuses())
}

func TestNewKanbanBoardDoesNotShareDefaults(t *testing.T) {
	a := NewKanbanBoard("a")
	b := NewKanbanBoard("b")

	a.RemoveStatus(StatusBacklog)

	assert.True(t, b.HasStatus(StatusBacklog))
	assert.Contains(t, DefaultStatuses, StatusBacklog)
}

func TestKanbanBoardStatusesIsCopy(t *testing.T) {
	board := NewKanbanBoard("copy")
	got := board.Statuses()
	got[0] = "Bogus"

	assert.False(t, board.HasStatus("Bogus"))
}

func TestKanbanBoardAddStatus(t *testing.T) {
	tests := []struct {
		name string
		adds []string
		want []string
	}{
		{
			name: "new status appended",
			adds: []string{"new status"},
			want: withDefaults("new status"),
		},
		{
			name: "duplicate added once",
			adds: []string{"new status", "new status"},
			want: withDefaults("new status"),
		},
		{
			name: "existing default ignored",
			adds: []string{StatusBacklog},
			want: DefaultStatuses,
		},
		{
			name: "blank label ignored",
			adds: []string{"", "  "},
			want: DefaultStatuses,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := NewKanbanBoard("Things to Do")
			for _, s := range tt.adds {
				board.AddStatus(s)
			}
			assert.Equal(t, tt.want, board.Statuses())
		})
	}
}

func TestKanbanBoardRemoveStatus(t *testing.T) {
	board := NewKanbanBoard("Things to Do")

	board.RemoveStatus(StatusBacklog)
	assert.NotContains(t, board.Statuses(), StatusBacklog)
	assert.Len(t, board.Statuses(), len(DefaultStatuses)-1)

	board.RemoveStatus("Things  to Do")
	assert.Len(t, board.Statuses(), len(DefaultStatuses)-1, "removing an absent label is a no-op")
}

func TestKanbanBoardScenario(t *testing.T) {
	board := NewKanbanBoard("Things to Do")
	assert.Contains(t, board.Statuses(), "Backlog")

	board.AddStatus("Ready")
	statuses := board.Statuses()
	assert.Equal(t, "Ready", statuses[len(statuses)-1])

	board.RemoveStatus("Ready")
	assert.NotContains(t, board.Statuses(), "Ready")
}

func TestKanbanBoardRemoveStatusAsync(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  int
	}{
		{
			name:  "absent label leaves every default",
			label: "Things  to Do",
			want:  4,
		},
		{
			name:  "present label removed",
			label: StatusDone,
			want:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := NewKanbanBoard("Things to Do")

			result := board.RemoveStatusAsync(tt.label)

			// The removal is visible before the result is received.
			assert.NotContains(t, board.Statuses(), tt.label)

			select {
			case n, ok := <-result:
				require.True(t, ok)
				assert.Equal(t, tt.want, n)
			case <-time.After(time.Second):
				t.Fatal("RemoveStatusAsync did not deliver a result")
			}

			_, ok := <-result
			assert.False(t, ok, "result channel should be closed after one value")
		})
	}
}

func TestKanbanBoardRemoveStatusAsyncCountIsSnapshot(t *testing.T) {
	board := NewKanbanBoard("snapshot")

	result := board.RemoveStatusAsync(StatusBacklog)
	board.AddStatus("Later")

	assert.Equal(t, len(DefaultStatuses)-1, <-result)
}

func TestRestoreKanbanBoard(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	board, err := RestoreKanbanBoard("board-1", "Restored", created, []string{"A", "", "B", "A"})
	require.NoError(t, err)

	assert.Equal(t, "board-1", board.BoardID)
	assert.Equal(t, created, board.CreatedAt)
	assert.Equal(t, []string{"A", "B"}, board.Statuses())

	_, err = RestoreKanbanBoard("", "x", created, nil)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestKanbanBoardJSONRoundTrip(t *testing.T) {
	board := NewKanbanBoard("Things to Do")
	board.AddStatus("Ready")

	data, err := json.Marshal(board)
	require.NoError(t, err)

	var decoded KanbanBoard
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, board.BoardID, decoded.BoardID)
	assert.Equal(t, board.Name, decoded.Name)
	assert.True(t, board.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, board.Statuses(), decoded.Statuses())
}

func withDefaults(extra ...string) []string {
	out := append([]string{}, DefaultStatuses...)
	return append(out, extra...)
}
