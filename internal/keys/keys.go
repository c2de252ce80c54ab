// Package keys derives equivalence keys from item attributes. Every
// strategy is a pure function of the item: equal attributes always give
// equal keys, and malformed items are reported as excluded instead of
// producing an error.
package keys

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/fenilsonani/dupsweep/internal/models"
)

// Strategy computes an equivalence key. ok is false when the item lacks the
// fields the strategy needs and must be left out of grouping.
type Strategy interface {
	Key(item models.Item) (key models.EquivalenceKey, ok bool)
}

// StrategyFunc adapts a plain function to Strategy
type StrategyFunc func(item models.Item) (models.EquivalenceKey, bool)

// Key implements Strategy
func (f StrategyFunc) Key(item models.Item) (models.EquivalenceKey, bool) {
	return f(item)
}

// Media keys photos and videos by pixel dimensions plus capture time rounded
// to the second. This is a heuristic: different assets with identical
// metadata collide, and re-encoded copies with new timestamps do not.
func Media() Strategy {
	return StrategyFunc(func(item models.Item) (models.EquivalenceKey, bool) {
		m := item.Media
		if m == nil || m.PixelWidth <= 0 || m.PixelHeight <= 0 || m.CreatedAt.IsZero() {
			return "", false
		}
		ts := m.CreatedAt.Round(time.Second).UTC().Unix()
		return models.EquivalenceKey(fmt.Sprintf("%dx%d@%d", m.PixelWidth, m.PixelHeight, ts)), true
	})
}

// Contact keys address-book records by normalized name, email and phone
func Contact() Strategy {
	return StrategyFunc(func(item models.Item) (models.EquivalenceKey, bool) {
		c := item.Contact
		if c == nil {
			return "", false
		}
		given := normalize(c.GivenName)
		family := normalize(c.FamilyName)
		email := normalize(c.PrimaryEmail)
		phone := normalizePhone(c.PrimaryPhone)
		if given == "" && family == "" && email == "" && phone == "" {
			return "", false
		}
		name := strings.TrimSpace(given + " " + family)
		return models.EquivalenceKey(name + "|" + email + "|" + phone), true
	})
}

// CalendarEvent keys events by normalized title and exact start time
func CalendarEvent() Strategy {
	return StrategyFunc(func(item models.Item) (models.EquivalenceKey, bool) {
		e := item.Event
		if e == nil || e.Start.IsZero() {
			return "", false
		}
		return models.EquivalenceKey(normalize(e.Title) + "|" + e.Start.UTC().Format(time.RFC3339Nano)), true
	})
}

// Default returns the standard strategy for a category
func Default(category models.Category) Strategy {
	switch category {
	case models.CategoryPhoto, models.CategoryVideo:
		return Media()
	case models.CategoryContact:
		return Contact()
	case models.CategoryCalendarEvent:
		return CalendarEvent()
	default:
		return StrategyFunc(func(models.Item) (models.EquivalenceKey, bool) { return "", false })
	}
}

// normalize lowercases and collapses runs of whitespace to single spaces
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// normalizePhone keeps digits and a leading plus sign
func normalizePhone(s string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(s) {
		if unicode.IsDigit(r) || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
