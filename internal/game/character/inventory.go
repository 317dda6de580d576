package character

import (
	"sort"
	"strings"

	"github.com/tavernkeep/tavernkeep/internal/game/gameerr"
)

// ensureItems initializes the item map on first use.
func (inv *Inventory) ensureItems() {
	if inv.Items == nil {
		inv.Items = make(map[string]Item)
	}
}

// ItemNames returns the inventory's item names sorted for stable output.
func (inv *Inventory) ItemNames() []string {
	names := make([]string, 0, len(inv.Items))
	for name := range inv.Items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindItem looks up an item by case-insensitive name match.
//
// Postcondition: Returns the canonical item name and value, or ok=false.
func (inv *Inventory) FindItem(name string) (string, Item, bool) {
	if item, ok := inv.Items[name]; ok {
		return name, item, true
	}
	for key, item := range inv.Items {
		if strings.EqualFold(key, name) {
			return key, item, true
		}
	}
	return "", Item{}, false
}

// AddItem adds a new item to the inventory.
//
// Postcondition: Fails with AlreadyExists on a duplicate name, InvalidArgument
// when a weapon lacks a damage formula or the named container is absent.
func (inv *Inventory) AddItem(name string, item Item) error {
	if item.Weapon && item.Damage == "" {
		return gameerr.New(gameerr.KindInvalidArgument, "Weapon items must have damage specified.")
	}
	inv.ensureItems()
	if _, ok := inv.Items[name]; ok {
		return gameerr.New(gameerr.KindAlreadyExists, "Item %q already exists.", name)
	}
	if item.Container != "" {
		if _, ok := inv.Items[item.Container]; !ok {
			return gameerr.New(gameerr.KindInvalidArgument, "Container %q not found.", item.Container).
				WithHints(inv.ItemNames()...)
		}
	}
	inv.Items[name] = item
	return nil
}

// RemoveItem deletes an item and clears container references that pointed at it.
//
// Postcondition: Returns the names of items whose container reference was
// cleared, or InvalidArgument when the item is absent.
func (inv *Inventory) RemoveItem(name string) ([]string, error) {
	if _, ok := inv.Items[name]; !ok {
		return nil, gameerr.New(gameerr.KindInvalidArgument, "Item %q not found.", name).
			WithHints(inv.ItemNames()...)
	}
	delete(inv.Items, name)

	var orphaned []string
	for key, item := range inv.Items {
		if item.Container == name {
			item.Container = ""
			inv.Items[key] = item
			orphaned = append(orphaned, key)
		}
	}
	sort.Strings(orphaned)
	return orphaned, nil
}

// ItemUpdate carries the optional fields of an item update; nil means unchanged.
type ItemUpdate struct {
	Description *string
	Weapon      *bool
	Damage      *string
	Container   *string
}

// UpdateItem applies the non-nil fields of upd to the named item.
//
// Postcondition: Returns the list of updated field names, or InvalidArgument
// when the item is absent or the result is a weapon without damage.
func (inv *Inventory) UpdateItem(name string, upd ItemUpdate) ([]string, error) {
	item, ok := inv.Items[name]
	if !ok {
		return nil, gameerr.New(gameerr.KindInvalidArgument, "Item %q not found.", name).
			WithHints(inv.ItemNames()...)
	}

	var updated []string
	if upd.Description != nil {
		item.Description = *upd.Description
		updated = append(updated, "description")
	}
	if upd.Weapon != nil {
		item.Weapon = *upd.Weapon
		updated = append(updated, "weapon status")
	}
	if upd.Damage != nil {
		item.Damage = *upd.Damage
		updated = append(updated, "damage")
	}
	if upd.Container != nil {
		item.Container = *upd.Container
		updated = append(updated, "container")
	}
	if item.Weapon && item.Damage == "" {
		return nil, gameerr.New(gameerr.KindInvalidArgument, "Weapon items must have damage specified.")
	}
	inv.Items[name] = item
	return updated, nil
}

// AddMoney increases the balance.
//
// Precondition: amount >= 0.
func (inv *Inventory) AddMoney(amount int) {
	inv.Money += amount
}

// RemoveMoney decreases the balance, failing rather than going negative.
//
// Postcondition: On InsufficientFunds the balance is unchanged.
func (inv *Inventory) RemoveMoney(amount int) error {
	if inv.Money < amount {
		return gameerr.New(gameerr.KindInsufficientFunds,
			"Only %d gold available but %d gold needed.", inv.Money, amount)
	}
	inv.Money -= amount
	return nil
}
