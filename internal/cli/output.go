// Output helpers shared by corkboard commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// render writes v as JSON or YAML when the matching global flag is set and
// otherwise calls text to print the human-readable form.
func (a *app) render(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	switch {
	case a.flags.jsonMode:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return systemError(fmt.Errorf("encode json: %w", err))
		}
	case a.flags.yamlMode:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return systemError(fmt.Errorf("encode yaml: %w", err))
		}
		if err := enc.Close(); err != nil {
			return systemError(fmt.Errorf("encode yaml: %w", err))
		}
	default:
		text(w)
	}
	return nil
}

func printPerson(w io.Writer, p *types.Person) {
	fmt.Fprintf(w, "%s  %s  (%d friends)\n", p.PersonID, p.FullName(), len(p.FriendIDs()))
}

func printPeople(w io.Writer, people []*types.Person) {
	if len(people) == 0 {
		fmt.Fprintln(w, "No people found.")
		return
	}
	for _, p := range people {
		printPerson(w, p)
	}
}

func printBoard(w io.Writer, b *types.KanbanBoard) {
	fmt.Fprintf(w, "%s  %s  [%s]\n", b.BoardID, b.Name, strings.Join(b.Statuses(), " | "))
}

func printBoards(w io.Writer, boards []*types.KanbanBoard) {
	if len(boards) == 0 {
		fmt.Fprintln(w, "No boards found.")
		return
	}
	for _, b := range boards {
		printBoard(w, b)
	}
}

// asPeople narrows Fetch results from the people table.
func asPeople(rows []any) []*types.Person {
	people := make([]*types.Person, 0, len(rows))
	for _, r := range rows {
		if p, ok := r.(*types.Person); ok {
			people = append(people, p)
		}
	}
	return people
}

// asBoards narrows Fetch results from the boards table.
func asBoards(rows []any) []*types.KanbanBoard {
	boards := make([]*types.KanbanBoard, 0, len(rows))
	for _, r := range rows {
		if b, ok := r.(*types.KanbanBoard); ok {
			boards = append(boards, b)
		}
	}
	return boards
}
