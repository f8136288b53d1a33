// Package trello imports Trello boards as corkboard Kanban boards. Open
// lists become statuses in board order and, on request, board members
// become people.
package trello

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/adlio/trello"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// ErrMissingCredentials is returned by NewClient when the API key or token
// is empty.
var ErrMissingCredentials = errors.New("trello api key and token are required")

// Board is the part of a Trello board that corkboard imports.
type Board struct {
	Name    string
	Lists   []string // Open list names, in board order.
	Members []string // Member full names.
}

// Source fetches Trello boards by ID.
type Source interface {
	FetchBoard(boardID string) (*Board, error)
}

// Client is a Source backed by the Trello REST API.
type Client struct {
	api *trello.Client
}

// NewClient builds a Client from Trello API credentials.
func NewClient(apiKey, token string) (*Client, error) {
	if apiKey == "" || token == "" {
		return nil, ErrMissingCredentials
	}
	return &Client{api: trello.NewClient(apiKey, token)}, nil
}

// FetchBoard loads the board, its open lists, and its members.
func (c *Client) FetchBoard(boardID string) (*Board, error) {
	b, err := c.api.GetBoard(boardID, trello.Defaults())
	if err != nil {
		return nil, fmt.Errorf("failed to get board: %w", err)
	}
	lists, err := b.GetLists(trello.Defaults())
	if err != nil {
		return nil, fmt.Errorf("failed to get lists: %w", err)
	}
	members, err := b.GetMembers(trello.Defaults())
	if err != nil {
		return nil, fmt.Errorf("failed to get board members: %w", err)
	}

	result := &Board{Name: b.Name}
	for _, l := range lists {
		if l.Closed {
			continue
		}
		result.Lists = append(result.Lists, l.Name)
	}
	for _, m := range members {
		name := m.FullName
		if strings.TrimSpace(name) == "" {
			name = m.Username
		}
		result.Members = append(result.Members, name)
	}
	return result, nil
}

// Result holds the entities built from one imported board.
type Result struct {
	Board  *types.KanbanBoard
	People []*types.Person
}

// Import fetches boardID from src and converts it. The board's statuses are
// the Trello list names; a board with no open lists keeps the default
// statuses. Members are converted to people only when withMembers is set,
// and members whose name is blank are skipped.
func Import(src Source, boardID string, withMembers bool) (*Result, error) {
	if strings.TrimSpace(boardID) == "" {
		return nil, types.ErrInvalidID
	}
	tb, err := src.FetchBoard(boardID)
	if err != nil {
		return nil, fmt.Errorf("fetching trello board %s: %w", boardID, err)
	}

	// Defaults stay unless at least one list has a usable name.
	board := types.NewKanbanBoard(tb.Name)
	labels := slices.DeleteFunc(slices.Clone(tb.Lists), func(name string) bool {
		return strings.TrimSpace(name) == ""
	})
	if len(labels) > 0 {
		for _, s := range board.Statuses() {
			board.RemoveStatus(s)
		}
		for _, name := range labels {
			board.AddStatus(name)
		}
	}

	res := &Result{Board: board}
	if !withMembers {
		return res, nil
	}
	for _, name := range tb.Members {
		p, err := types.NewPerson(name)
		if err != nil {
			slog.Warn("skipping trello member", "board", boardID, "error", err)
			continue
		}
		res.People = append(res.People, p)
	}
	slog.Debug("imported trello board", "board", boardID, "statuses", len(board.Statuses()), "people", len(res.People))
	return res, nil
}
