package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func newPackingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packing",
		Short: "Manage the packing list",
		Long: "Manage the packing list kept in the data directory. Items are listed\n" +
			"in the order they were added and are either packed or unpacked.",
	}
	cmd.AddCommand(newPackingAddCmd(a))
	cmd.AddCommand(newPackingListCmd(a))
	cmd.AddCommand(newPackingToggleCmd(a))
	cmd.AddCommand(newPackingRemoveCmd(a))
	cmd.AddCommand(newPackingClearCmd(a))
	cmd.AddCommand(newPackingUnpackAllCmd(a))
	return cmd
}

// loadPackingList rebuilds the stored list from the packing table.
func loadPackingList(t types.Table) (*types.PackingList, error) {
	rows, err := t.Fetch(nil)
	if err != nil {
		return nil, err
	}
	items := make([]types.Item, 0, len(rows))
	for _, r := range rows {
		if it, ok := r.(*types.Item); ok {
			items = append(items, *it)
		}
	}
	return types.RestorePackingList(items)
}

// readPacking returns the stored packing list.
func (a *app) readPacking() (*types.PackingList, error) {
	var l *types.PackingList
	err := a.withTable(types.PackingTable, func(t types.Table) error {
		var err error
		l, err = loadPackingList(t)
		return err
	})
	return l, err
}

// updatePacking loads the packing list, applies change, and stores the
// result. Nothing is written when change fails.
func (a *app) updatePacking(change func(*types.PackingList) error) (*types.PackingList, error) {
	var l *types.PackingList
	err := a.withTable(types.PackingTable, func(t types.Table) error {
		var err error
		if l, err = loadPackingList(t); err != nil {
			return err
		}
		if err := change(l); err != nil {
			return err
		}
		_, err = t.Set("", l)
		return err
	})
	return l, err
}

func findItem(l *types.PackingList, id string) (types.Item, bool) {
	for _, it := range l.Items() {
		if it.ItemID == id {
			return it, true
		}
	}
	return types.Item{}, false
}

func newPackingAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <item name...>",
		Short: "Add an unpacked item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var added *types.Item
			_, err := a.updatePacking(func(l *types.PackingList) error {
				var err error
				added, err = l.AddItem(strings.Join(args, " "))
				return err
			})
			if err != nil {
				return err
			}
			return a.render(cmd, added, func(w io.Writer) {
				fmt.Fprintf(w, "Added %s (%s)\n", added.Name, added.ItemID)
			})
		},
	}
}

func newPackingListCmd(a *app) *cobra.Command {
	var packed, unpacked bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List packing items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.readPacking()
			if err != nil {
				return err
			}
			items := l.Items()
			switch {
			case packed:
				items = l.Packed()
			case unpacked:
				items = l.Unpacked()
			}
			return a.render(cmd, items, func(w io.Writer) { printItems(w, items, l) })
		},
	}
	cmd.Flags().BoolVar(&packed, "packed", false, "only packed items")
	cmd.Flags().BoolVar(&unpacked, "unpacked", false, "only unpacked items")
	cmd.MarkFlagsMutuallyExclusive("packed", "unpacked")
	return cmd
}

func newPackingToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <item-id>",
		Short: "Flip an item between packed and unpacked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.updatePacking(func(l *types.PackingList) error {
				return l.TogglePacked(args[0])
			})
			if err != nil {
				return fmt.Errorf("item %s: %w", args[0], err)
			}
			it, _ := findItem(l, args[0])
			return a.render(cmd, it, func(w io.Writer) {
				state := "Unpacked"
				if it.Packed {
					state = "Packed"
				}
				fmt.Fprintf(w, "%s %s\n", state, it.Name)
			})
		},
	}
}

func newPackingRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.updatePacking(func(l *types.PackingList) error {
				return l.RemoveItem(args[0])
			})
			if err != nil {
				return fmt.Errorf("item %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

func newPackingClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.updatePacking(func(l *types.PackingList) error {
				l.RemoveAll()
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Packing list cleared.")
			return nil
		},
	}
}

func newPackingUnpackAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unpack-all",
		Short: "Mark every item unpacked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.updatePacking(func(l *types.PackingList) error {
				l.MarkAllUnpacked()
				return nil
			})
			if err != nil {
				return err
			}
			items := l.Items()
			return a.render(cmd, items, func(w io.Writer) { printItems(w, items, l) })
		},
	}
}

// printItems lists items with a check mark for packed ones, followed by a
// tally over the whole list.
func printItems(w io.Writer, items []types.Item, l *types.PackingList) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items found.")
	}
	for _, it := range items {
		mark := " "
		if it.Packed {
			mark = "x"
		}
		fmt.Fprintf(w, "[%s] %s  %s\n", mark, it.ItemID, it.Name)
	}
	packed := types.NewCounter(0)
	all := l.Items()
	for _, it := range all {
		if it.Packed {
			packed.Increment()
		}
	}
	fmt.Fprintf(w, "%d of %d packed\n", packed.Count(), len(all))
}
