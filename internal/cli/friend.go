package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

var errSelfFriend = errors.New("a person cannot be their own friend")

func newFriendCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friend",
		Short: "Manage friendships between people",
	}
	cmd.AddCommand(newFriendAddCmd(a))
	cmd.AddCommand(newFriendRemoveCmd(a))
	cmd.AddCommand(newFriendListCmd(a))
	return cmd
}

// loadPair returns the two people from one hydrated graph so that linking
// them keeps every other friendship intact.
func loadPair(t types.Table, id1, id2 string) (*types.Person, *types.Person, error) {
	if id1 == id2 {
		return nil, nil, usageError(errSelfFriend)
	}
	rows, err := t.Fetch(nil)
	if err != nil {
		return nil, nil, err
	}
	var p1, p2 *types.Person
	for _, p := range asPeople(rows) {
		switch p.PersonID {
		case id1:
			p1 = p
		case id2:
			p2 = p
		}
	}
	if p1 == nil {
		return nil, nil, fmt.Errorf("person %s: %w", id1, types.ErrNotFound)
	}
	if p2 == nil {
		return nil, nil, fmt.Errorf("person %s: %w", id2, types.ErrNotFound)
	}
	return p1, p2, nil
}

// changeFriendship applies change to the pair and stores the first person,
// which rewrites the friendship rows for both.
func (a *app) changeFriendship(cmd *cobra.Command, id1, id2, verb string, change func(p1, p2 *types.Person)) error {
	var p1, p2 *types.Person
	err := a.withTable(types.PeopleTable, func(t types.Table) error {
		var err error
		p1, p2, err = loadPair(t, id1, id2)
		if err != nil {
			return err
		}
		change(p1, p2)
		_, err = t.Set("", p1)
		return err
	})
	if err != nil {
		return err
	}
	return a.render(cmd, p1, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s and %s\n", verb, p1.FullName(), p2.FullName())
	})
}

func newFriendAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <person-id> <person-id>",
		Short: "Make two people mutual friends",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.changeFriendship(cmd, args[0], args[1], "Befriended", func(p1, p2 *types.Person) {
				p1.AddFriend(p2)
			})
		},
	}
}

func newFriendRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <person-id> <person-id>",
		Short: "End the friendship between two people",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.changeFriendship(cmd, args[0], args[1], "Unfriended", func(p1, p2 *types.Person) {
				p1.RemoveFriend(p2)
			})
		},
	}
}

func newFriendListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <person-id>",
		Short: "List a person's friends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var friends []*types.Person
			err := a.withTable(types.PeopleTable, func(t types.Table) error {
				got, err := t.Get(args[0])
				if err != nil {
					return fmt.Errorf("person %s: %w", args[0], err)
				}
				friends = got.(*types.Person).Friends()
				return nil
			})
			if err != nil {
				return err
			}
			return a.render(cmd, friends, func(w io.Writer) { printPeople(w, friends) })
		},
	}
}
