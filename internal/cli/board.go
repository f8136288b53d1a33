package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/internal/trello"
	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func newBoardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Manage Kanban boards",
	}
	cmd.AddCommand(newBoardCreateCmd(a))
	cmd.AddCommand(newBoardShowCmd(a))
	cmd.AddCommand(newBoardListCmd(a))
	cmd.AddCommand(newBoardDeleteCmd(a))
	cmd.AddCommand(newBoardImportTrelloCmd(a))
	return cmd
}

func newBoardCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name...>",
		Short: "Create a board with the default statuses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := types.NewKanbanBoard(strings.Join(args, " "))
			err := a.withTable(types.BoardsTable, func(t types.Table) error {
				_, err := t.Set("", b)
				return err
			})
			if err != nil {
				return err
			}
			return a.render(cmd, b, func(w io.Writer) {
				fmt.Fprintf(w, "Created board %s (%s)\n", b.Name, b.BoardID)
			})
		},
	}
}

// loadBoard fetches a board by ID from t.
func loadBoard(t types.Table, id string) (*types.KanbanBoard, error) {
	got, err := t.Get(id)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", id, err)
	}
	return got.(*types.KanbanBoard), nil
}

func newBoardShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <board-id>",
		Short: "Show a board and its statuses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var b *types.KanbanBoard
			err := a.withTable(types.BoardsTable, func(t types.Table) error {
				var err error
				b, err = loadBoard(t, args[0])
				return err
			})
			if err != nil {
				return err
			}
			return a.render(cmd, b, func(w io.Writer) {
				fmt.Fprintf(w, "ID:       %s\n", b.BoardID)
				fmt.Fprintf(w, "Name:     %s\n", b.Name)
				fmt.Fprintf(w, "Created:  %s\n", b.CreatedAt.Local().Format("2006-01-02 15:04"))
				fmt.Fprintln(w, "Statuses:")
				for i, s := range b.Statuses() {
					fmt.Fprintf(w, "  %d. %s\n", i+1, s)
				}
			})
		},
	}
}

func newBoardListCmd(a *app) *cobra.Command {
	var name string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := types.Filter{}
			if cmd.Flags().Changed("name") {
				filter["name"] = name
			}
			if limit > 0 {
				filter["limit"] = limit
			}
			var boards []*types.KanbanBoard
			err := a.withTable(types.BoardsTable, func(t types.Table) error {
				rows, err := t.Fetch(filter)
				if err != nil {
					return err
				}
				boards = asBoards(rows)
				return nil
			})
			if err != nil {
				return err
			}
			return a.render(cmd, boards, func(w io.Writer) { printBoards(w, boards) })
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "filter by exact board name")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (0 = no limit)")
	return cmd
}

func newBoardDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <board-id>",
		Short: "Delete a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.withTable(types.BoardsTable, func(t types.Table) error {
				return t.Delete(args[0])
			})
			if err != nil {
				return fmt.Errorf("board %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newBoardImportTrelloCmd(a *app) *cobra.Command {
	var withMembers bool
	cmd := &cobra.Command{
		Use:   "import-trello <trello-board-id>",
		Short: "Import a Trello board",
		Long: "Import a Trello board. Open lists become statuses in board order.\n" +
			"With --members, board members are added as people.\n" +
			"Credentials come from trello.api_key and trello.token in config.yaml\n" +
			"or CORKBOARD_TRELLO_API_KEY and CORKBOARD_TRELLO_TOKEN.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.newTrelloSource(a.cfg.GetString(cfgKeyTrelloAPIKey), a.cfg.GetString(cfgKeyTrelloToken))
			if err != nil {
				return usageError(err)
			}
			res, err := trello.Import(src, args[0], withMembers)
			if err != nil {
				return classify(err)
			}

			backend, err := a.attach()
			if err != nil {
				return err
			}
			defer backend.Detach()
			if err := storeImport(backend, res); err != nil {
				return classify(err)
			}

			return a.render(cmd, res.Board, func(w io.Writer) {
				fmt.Fprintf(w, "Imported board %s (%s) with %d statuses and %d people\n",
					res.Board.Name, res.Board.BoardID, len(res.Board.Statuses()), len(res.People))
			})
		},
	}
	cmd.Flags().BoolVar(&withMembers, "members", false, "also import board members as people")
	return cmd
}

// storeImport writes the imported board and people.
func storeImport(c types.Cupboard, res *trello.Result) error {
	boards, err := c.GetTable(types.BoardsTable)
	if err != nil {
		return err
	}
	if _, err := boards.Set("", res.Board); err != nil {
		return err
	}
	if len(res.People) == 0 {
		return nil
	}
	people, err := c.GetTable(types.PeopleTable)
	if err != nil {
		return err
	}
	for _, p := range res.People {
		if _, err := people.Set("", p); err != nil {
			return err
		}
	}
	return nil
}
