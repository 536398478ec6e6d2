// Package catalog provides the read-only view of purchasable items the
// billing engine validates drafts against. The engine never fetches the
// catalog itself; callers supply a point-in-time Snapshot.
package catalog

import (
	"context"

	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
)

// Item is a purchasable catalog item as seen by the engine.
type Item struct {
	ID           id.ID       `db:"id" json:"id"`
	Code         string      `db:"code" json:"code"`
	Name         string      `db:"name" json:"name"`
	UnitPrice    types.Money `db:"unit_price" json:"unitPrice"`
	AvailableQty int         `db:"available_qty" json:"availableQty"`
}

// Snapshot is a point-in-time view of the catalog with lookup by item ID.
// It may be stale relative to concurrent sessions' commits; that staleness
// is an accepted limitation, not resolved by locking.
type Snapshot struct {
	items []Item
	byID  map[id.ID]int
}

// NewSnapshot builds a Snapshot from a list of items.
func NewSnapshot(items []Item) *Snapshot {
	byID := make(map[id.ID]int, len(items))
	for i, item := range items {
		byID[item.ID] = i
	}
	return &Snapshot{items: items, byID: byID}
}

// Item looks up an item by ID.
func (s *Snapshot) Item(itemID id.ID) (Item, bool) {
	idx, ok := s.byID[itemID]
	if !ok {
		return Item{}, false
	}
	return s.items[idx], true
}

// AvailableQty returns the current available quantity for an item.
// Unknown items report zero availability.
func (s *Snapshot) AvailableQty(itemID id.ID) int {
	if item, ok := s.Item(itemID); ok {
		return item.AvailableQty
	}
	return 0
}

// Items returns all items in the snapshot.
func (s *Snapshot) Items() []Item {
	return s.items
}

// Len returns the number of items in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.items)
}

// Provider supplies catalog snapshots on demand.
type Provider interface {
	FetchCatalog(ctx context.Context) (*Snapshot, error)
}

// Settings are the shop-level billing settings.
type Settings struct {
	// DiscountPercentage is the fixed discount applied to every invoice.
	DiscountPercentage types.Money `db:"discount_percentage" json:"discountPercentage"`

	// DiscountRule is an optional CEL expression overriding the fixed
	// percentage. Empty means no rule.
	DiscountRule string `db:"discount_rule" json:"discountRule,omitempty"`

	// Currency is the ISO code used for display only.
	Currency string `db:"currency" json:"currency"`
}

// SettingsProvider supplies shop settings on demand.
type SettingsProvider interface {
	FetchSettings(ctx context.Context) (Settings, error)
}
