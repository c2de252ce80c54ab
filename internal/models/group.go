package models

import "fmt"

// EquivalenceKey is the derived value used to group duplicate items
type EquivalenceKey string

// DuplicateGroup is a set of two or more items of one category sharing a key
type DuplicateGroup struct {
	Key      EquivalenceKey `json:"key" yaml:"key"`
	Category Category       `json:"category" yaml:"category"`
	Items    []Item         `json:"items" yaml:"items"`
}

// Validate checks the group invariants: size >= 2 and a single category
func (g DuplicateGroup) Validate() error {
	if len(g.Items) < 2 {
		return fmt.Errorf("group %q has %d items, need at least 2", g.Key, len(g.Items))
	}
	for _, item := range g.Items {
		if item.Category != g.Category {
			return fmt.Errorf("group %q mixes %s with %s", g.Key, g.Category, item.Category)
		}
	}
	return nil
}

// Redundant returns every item except the first, the usual deletion candidates
func (g DuplicateGroup) Redundant() []Item {
	if len(g.Items) < 2 {
		return nil
	}
	out := make([]Item, len(g.Items)-1)
	copy(out, g.Items[1:])
	return out
}

// TotalSize sums the sizes of the group's items
func (g DuplicateGroup) TotalSize() int64 {
	var total int64
	for _, item := range g.Items {
		total += item.Size()
	}
	return total
}

// CountItems returns the number of items across groups
func CountItems(groups []DuplicateGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Items)
	}
	return n
}
