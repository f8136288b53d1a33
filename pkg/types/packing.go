package types

import (
	"slices"
	"strings"
)

// Item is one entry on a PackingList.
type Item struct {
	ItemID string `json:"item_id" yaml:"item_id"`
	Name   string `json:"name" yaml:"name"`
	Packed bool   `json:"packed" yaml:"packed"`
}

// PackingList is an ordered list of items, each packed or unpacked.
type PackingList struct {
	items []*Item
}

// NewPackingList returns an empty list.
func NewPackingList() *PackingList {
	return &PackingList{}
}

// RestorePackingList rebuilds a list from stored items, keeping their order
// and packed flags. Returns ErrInvalidID for a blank or repeated ItemID and
// ErrEmptyItemName for a blank name.
func RestorePackingList(items []Item) (*PackingList, error) {
	l := &PackingList{items: make([]*Item, 0, len(items))}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ItemID == "" || seen[it.ItemID] {
			return nil, ErrInvalidID
		}
		if strings.TrimSpace(it.Name) == "" {
			return nil, ErrEmptyItemName
		}
		seen[it.ItemID] = true
		l.items = append(l.items, &Item{ItemID: it.ItemID, Name: it.Name, Packed: it.Packed})
	}
	return l, nil
}

// AddItem appends an unpacked item named name. Surrounding whitespace is
// trimmed. Returns ErrEmptyItemName if nothing remains.
func (l *PackingList) AddItem(name string) (*Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyItemName
	}
	item := &Item{ItemID: newID(), Name: name}
	l.items = append(l.items, item)
	return item, nil
}

// TogglePacked flips the packed flag of the item with the given ID.
// Returns ErrNotFound if no such item exists.
func (l *PackingList) TogglePacked(id string) error {
	i := l.index(id)
	if i < 0 {
		return ErrNotFound
	}
	l.items[i].Packed = !l.items[i].Packed
	return nil
}

// RemoveItem deletes the item with the given ID.
// Returns ErrNotFound if no such item exists.
func (l *PackingList) RemoveItem(id string) error {
	i := l.index(id)
	if i < 0 {
		return ErrNotFound
	}
	l.items = slices.Delete(l.items, i, i+1)
	return nil
}

// RemoveAll empties the list.
func (l *PackingList) RemoveAll() {
	l.items = nil
}

// MarkAllUnpacked clears the packed flag on every item.
func (l *PackingList) MarkAllUnpacked() {
	for _, it := range l.items {
		it.Packed = false
	}
}

// Items returns copies of all items in insertion order.
func (l *PackingList) Items() []Item {
	return l.filter(func(*Item) bool { return true })
}

// Packed returns copies of the packed items.
func (l *PackingList) Packed() []Item {
	return l.filter(func(it *Item) bool { return it.Packed })
}

// Unpacked returns copies of the unpacked items.
func (l *PackingList) Unpacked() []Item {
	return l.filter(func(it *Item) bool { return !it.Packed })
}

func (l *PackingList) filter(keep func(*Item) bool) []Item {
	result := []Item{}
	for _, it := range l.items {
		if keep(it) {
			result = append(result, *it)
		}
	}
	return result
}

func (l *PackingList) index(id string) int {
	return slices.IndexFunc(l.items, func(it *Item) bool { return it.ItemID == id })
}
