package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

func newPersonCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Manage people",
	}
	cmd.AddCommand(newPersonAddCmd(a))
	cmd.AddCommand(newPersonShowCmd(a))
	cmd.AddCommand(newPersonListCmd(a))
	cmd.AddCommand(newPersonDeleteCmd(a))
	return cmd
}

func newPersonAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <full name...>",
		Short: "Add a person from a full name",
		Long: "Add a person. The full name is split on whitespace: first, middle, and\n" +
			"last name. Any tokens after the third are kept in the last name.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := types.CreatePerson(strings.Join(args, " "))
			if err != nil {
				return err
			}
			err = a.withTable(types.PeopleTable, func(t types.Table) error {
				_, err := t.Set("", p)
				return err
			})
			if err != nil {
				return err
			}
			return a.render(cmd, p, func(w io.Writer) {
				fmt.Fprintf(w, "Added %s (%s)\n", p.FullName(), p.PersonID)
			})
		},
	}
}

func newPersonShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <person-id>",
		Short: "Show a person and their friends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p *types.Person
			err := a.withTable(types.PeopleTable, func(t types.Table) error {
				got, err := t.Get(args[0])
				if err != nil {
					return err
				}
				p = got.(*types.Person)
				return nil
			})
			if err != nil {
				return fmt.Errorf("person %s: %w", args[0], err)
			}
			return a.render(cmd, p, func(w io.Writer) {
				fmt.Fprintf(w, "ID:      %s\n", p.PersonID)
				fmt.Fprintf(w, "Name:    %s\n", p.FullName())
				fmt.Fprintf(w, "First:   %s\n", p.FirstName)
				fmt.Fprintf(w, "Middle:  %s\n", p.MiddleName)
				fmt.Fprintf(w, "Last:    %s\n", p.LastName)
				fmt.Fprintln(w, "Friends:")
				for _, f := range p.Friends() {
					fmt.Fprintf(w, "  %s  %s\n", f.PersonID, f.FullName())
				}
			})
		},
	}
}

func newPersonListCmd(a *app) *cobra.Command {
	var first, last, friendOf string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List people",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := types.Filter{}
			if cmd.Flags().Changed("first") {
				filter["first_name"] = first
			}
			if cmd.Flags().Changed("last") {
				filter["last_name"] = last
			}
			if cmd.Flags().Changed("friend-of") {
				filter["friend_of"] = friendOf
			}
			if limit > 0 {
				filter["limit"] = limit
			}

			var people []*types.Person
			err := a.withTable(types.PeopleTable, func(t types.Table) error {
				rows, err := t.Fetch(filter)
				if err != nil {
					return err
				}
				people = asPeople(rows)
				return nil
			})
			if err != nil {
				return err
			}
			return a.render(cmd, people, func(w io.Writer) { printPeople(w, people) })
		},
	}
	cmd.Flags().StringVar(&first, "first", "", "filter by first name (case-insensitive)")
	cmd.Flags().StringVar(&last, "last", "", "filter by last name (case-insensitive)")
	cmd.Flags().StringVar(&friendOf, "friend-of", "", "only friends of this person ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (0 = no limit)")
	return cmd
}

func newPersonDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <person-id>",
		Short: "Delete a person and all of their friendships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.withTable(types.PeopleTable, func(t types.Table) error {
				return t.Delete(args[0])
			})
			if err != nil {
				return fmt.Errorf("person %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
