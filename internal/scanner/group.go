package scanner

import (
	"github.com/fenilsonani/dupsweep/internal/keys"
	"github.com/fenilsonani/dupsweep/internal/models"
)

// grouper partitions items by equivalence key, remembering the order in
// which keys were first seen so results are reproducible across scans
type grouper struct {
	category models.Category
	strategy keys.Strategy
	index    map[models.EquivalenceKey]int
	buckets  []bucket
	excluded int
}

type bucket struct {
	key   models.EquivalenceKey
	items []models.Item
}

func newGrouper(category models.Category, strategy keys.Strategy) *grouper {
	return &grouper{
		category: category,
		strategy: strategy,
		index:    make(map[models.EquivalenceKey]int),
	}
}

// Add files an item under its key. Items the strategy cannot key are skipped.
func (g *grouper) Add(item models.Item) {
	key, ok := g.strategy.Key(item)
	if !ok {
		g.excluded++
		return
	}

	if i, exists := g.index[key]; exists {
		g.buckets[i].items = append(g.buckets[i].items, item)
		return
	}

	g.index[key] = len(g.buckets)
	g.buckets = append(g.buckets, bucket{key: key, items: []models.Item{item}})
}

// Groups returns every bucket with at least two items, labelled for display
func (g *grouper) Groups() []models.DuplicateGroup {
	var groups []models.DuplicateGroup
	label := g.category.DuplicateLabel()

	for _, b := range g.buckets {
		if len(b.items) < 2 {
			continue // Not a duplicate
		}

		items := make([]models.Item, len(b.items))
		for i, item := range b.items {
			items[i] = item.WithDetailLabel(label)
		}

		groups = append(groups, models.DuplicateGroup{
			Key:      b.key,
			Category: g.category,
			Items:    items,
		})
	}

	return groups
}

// GroupItems partitions items of one category into duplicate groups
func GroupItems(category models.Category, strategy keys.Strategy, items []models.Item) []models.DuplicateGroup {
	g := newGrouper(category, strategy)
	for _, item := range items {
		if item.Category != category {
			continue
		}
		g.Add(item)
	}
	return g.Groups()
}
