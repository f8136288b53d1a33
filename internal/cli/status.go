package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Manage the statuses of a board",
	}
	cmd.AddCommand(newStatusAddCmd(a))
	cmd.AddCommand(newStatusRemoveCmd(a))
	return cmd
}

// updateBoard loads a board, applies change, and stores the result.
func (a *app) updateBoard(id string, change func(*types.KanbanBoard) error) (*types.KanbanBoard, error) {
	var b *types.KanbanBoard
	err := a.withTable(types.BoardsTable, func(t types.Table) error {
		var err error
		if b, err = loadBoard(t, id); err != nil {
			return err
		}
		if err := change(b); err != nil {
			return err
		}
		_, err = t.Set("", b)
		return err
	})
	return b, err
}

func newStatusAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <board-id> <label...>",
		Short: "Append a status to a board",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := strings.Join(args[1:], " ")
			b, err := a.updateBoard(args[0], func(b *types.KanbanBoard) error {
				b.AddStatus(label)
				return nil
			})
			if err != nil {
				return err
			}
			return a.render(cmd, b, func(w io.Writer) { printBoard(w, b) })
		},
	}
}

// statusRemoval is the structured output of status remove.
type statusRemoval struct {
	BoardID   string   `json:"board_id" yaml:"board_id"`
	Label     string   `json:"label" yaml:"label"`
	Remaining int      `json:"remaining" yaml:"remaining"`
	Statuses  []string `json:"statuses" yaml:"statuses"`
}

func newStatusRemoveCmd(a *app) *cobra.Command {
	var async bool
	cmd := &cobra.Command{
		Use:   "remove <board-id> <label...>",
		Short: "Remove a status from a board",
		Long: "Remove a status from a board. With --async the removal goes through\n" +
			"RemoveStatusAsync and the remaining status count is read from its channel.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := strings.Join(args[1:], " ")
			var remaining int
			b, err := a.updateBoard(args[0], func(b *types.KanbanBoard) error {
				if !b.HasStatus(label) {
					return fmt.Errorf("status %q on board %s: %w", label, b.BoardID, types.ErrNotFound)
				}
				if async {
					remaining = <-b.RemoveStatusAsync(label)
					return nil
				}
				b.RemoveStatus(label)
				remaining = len(b.Statuses())
				return nil
			})
			if err != nil {
				return err
			}
			out := statusRemoval{BoardID: b.BoardID, Label: label, Remaining: remaining, Statuses: b.Statuses()}
			return a.render(cmd, out, func(w io.Writer) {
				fmt.Fprintf(w, "Removed %q; %d statuses remain\n", label, remaining)
			})
		},
	}
	cmd.Flags().BoolVar(&async, "async", false, "remove asynchronously and report the remaining count")
	return cmd
}
