package types

import (
	"encoding/json"
	"sort"
	"strings"
)

// Person is a named individual with a symmetric set of friends.
// The friend set is keyed by PersonID and is only reachable through
// AddFriend and RemoveFriend, so the mutual relation cannot be broken by
// direct mutation.
type Person struct {
	PersonID   string // UUID v7, generated on creation.
	FirstName  string // Required, non-empty.
	MiddleName string // Empty when absent.
	LastName   string // Empty when absent.

	friends map[string]*Person
}

// NewPerson parses fullName into name components. Tokens are split on runs
// of whitespace: one token sets FirstName, two set FirstName and LastName,
// three set all three. With more than three tokens the second token is the
// middle name and the remaining tokens, joined by single spaces, form the
// last name ("Martin Luther King Jr" has LastName "King Jr").
//
// Returns ErrEmptyFullName when fullName is empty or whitespace-only.
func NewPerson(fullName string) (*Person, error) {
	tokens := strings.Fields(fullName)
	if len(tokens) == 0 {
		return nil, ErrEmptyFullName
	}

	p := &Person{
		PersonID:  newID(),
		FirstName: tokens[0],
		friends:   make(map[string]*Person),
	}
	switch len(tokens) {
	case 1:
	case 2:
		p.LastName = tokens[1]
	default:
		p.MiddleName = tokens[1]
		p.LastName = strings.Join(tokens[2:], " ")
	}
	return p, nil
}

// CreatePerson is a factory for NewPerson.
func CreatePerson(fullName string) (*Person, error) {
	return NewPerson(fullName)
}

// RestorePerson rebuilds a person from stored name components. The friend
// set starts empty; storage backends re-link friendships with AddFriend.
// Returns ErrInvalidID if id is empty and ErrEmptyFullName if first is blank.
func RestorePerson(id, first, middle, last string) (*Person, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	if strings.TrimSpace(first) == "" {
		return nil, ErrEmptyFullName
	}
	return &Person{
		PersonID:   id,
		FirstName:  first,
		MiddleName: middle,
		LastName:   last,
		friends:    make(map[string]*Person),
	}, nil
}

// FullName joins the present name components with single spaces.
func (p *Person) FullName() string {
	parts := []string{p.FirstName}
	if p.MiddleName != "" {
		parts = append(parts, p.MiddleName)
	}
	if p.LastName != "" {
		parts = append(parts, p.LastName)
	}
	return strings.Join(parts, " ")
}

// AddFriend makes p and other mutual friends. Idempotent. Adding nil or p
// itself is a no-op.
func (p *Person) AddFriend(other *Person) {
	if other == nil || other == p || other.PersonID == p.PersonID {
		return
	}
	p.link(other)
	other.link(p)
}

// RemoveFriend ends the friendship in both directions. No-op when p and
// other are not friends.
func (p *Person) RemoveFriend(other *Person) {
	if other == nil {
		return
	}
	delete(p.friends, other.PersonID)
	delete(other.friends, p.PersonID)
}

// HasFriend reports whether other is in p's friend set.
func (p *Person) HasFriend(other *Person) bool {
	if other == nil {
		return false
	}
	_, ok := p.friends[other.PersonID]
	return ok
}

// Friends returns a snapshot of p's friends ordered by PersonID.
// Returns an empty slice (not nil) when p has no friends.
func (p *Person) Friends() []*Person {
	result := make([]*Person, 0, len(p.friends))
	for _, f := range p.friends {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PersonID < result[j].PersonID
	})
	return result
}

// FriendIDs returns the PersonIDs of p's friends in sorted order.
func (p *Person) FriendIDs() []string {
	ids := make([]string, 0, len(p.friends))
	for id := range p.friends {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *Person) link(other *Person) {
	if p.friends == nil {
		p.friends = make(map[string]*Person)
	}
	p.friends[other.PersonID] = other
}

// personJSON is the wire form of a Person. Friends are referenced by ID.
type personJSON struct {
	PersonID   string   `json:"person_id" yaml:"person_id"`
	FirstName  string   `json:"first_name" yaml:"first_name"`
	MiddleName string   `json:"middle_name,omitempty" yaml:"middle_name,omitempty"`
	LastName   string   `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	FriendIDs  []string `json:"friend_ids" yaml:"friend_ids"`
}

func (p *Person) view() personJSON {
	return personJSON{
		PersonID:   p.PersonID,
		FirstName:  p.FirstName,
		MiddleName: p.MiddleName,
		LastName:   p.LastName,
		FriendIDs:  p.FriendIDs(),
	}
}

// MarshalJSON encodes the person with friends listed by ID.
func (p *Person) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.view())
}

// MarshalYAML encodes the person with friends listed by ID.
func (p *Person) MarshalYAML() (any, error) {
	return p.view(), nil
}

// UnmarshalJSON decodes a person through RestorePerson. friend_ids are
// ignored: friends are pointers to other persons, so the caller re-links
// them with AddFriend once every person is decoded.
func (p *Person) UnmarshalJSON(data []byte) error {
	var v personJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	restored, err := RestorePerson(v.PersonID, v.FirstName, v.MiddleName, v.LastName)
	if err != nil {
		return err
	}
	*p = *restored
	return nil
}
