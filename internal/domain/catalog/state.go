package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

// State is an immutable snapshot of the store. Slices are shared between
// snapshots and must not be modified by readers.
type State struct {
	Products []Item
	Services []Item
	// Blogs is sorted by descending creation time.
	Blogs []Item
	// All is Products followed by Services.
	All []Item
	// ProductCategories and ServiceCategories are the blog categories.
	ProductCategories []Category
	ServiceCategories []Category

	// Loading is set while a refresh that started from an empty All is in flight.
	Loading bool
	// Hydrated reports that the store is open for reads.
	Hydrated bool
	// UpdatedAt is the time of the last successful refresh.
	UpdatedAt time.Time

	byKey map[string]Item
}

// NewState builds a snapshot from normalized collections.
func NewState(products, services, blogs []Item, now time.Time) State {
	all := make([]Item, 0, len(products)+len(services))
	all = append(all, products...)
	all = append(all, services...)

	byKey := make(map[string]Item, len(all)+len(blogs))
	for _, it := range all {
		byKey[it.Key] = it
	}
	for _, it := range blogs {
		byKey[it.Key] = it
	}

	return State{
		Products:  products,
		Services:  services,
		Blogs:     blogs,
		All:       all,
		UpdatedAt: now,
		byKey:     byKey,
	}
}

// Empty reports whether no catalog content has been loaded.
func (s State) Empty() bool {
	return len(s.All) == 0
}

// Lookup returns the item with the given identity key.
func (s State) Lookup(key string) (Item, bool) {
	it, ok := s.byKey[key]
	return it, ok
}

// Product returns the product with the given source id.
func (s State) Product(id string) (Item, bool) {
	return s.Lookup(productKeyPrefix + id)
}

// Service returns the service with the given source id.
func (s State) Service(id string) (Item, bool) {
	return s.Lookup(serviceKeyPrefix + id)
}

// Filter returns the items of All visible for a search query and tab.
//
// A query that is not blank matches Title and Kind case-insensitively over
// all items and overrides the tab. Otherwise a tab other than TabAll keeps
// only the items of its kind. The result is always a fresh slice.
func (s State) Filter(query string, tab Tab) []Item {
	if strings.TrimSpace(query) != "" {
		q := strings.ToLower(query)
		return lo.Filter(s.All, func(it Item, _ int) bool {
			return strings.Contains(strings.ToLower(it.Title), q) ||
				strings.Contains(strings.ToLower(string(it.Kind)), q)
		})
	}
	if kind, ok := tab.Kind(); ok {
		return lo.Filter(s.All, func(it Item, _ int) bool {
			return it.Kind == kind
		})
	}
	return slices.Clone(s.All)
}
