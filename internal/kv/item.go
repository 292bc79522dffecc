package kv

import "strings"

// Item is the content of a player's item box.
type Item int

// Items up to and including ItemBlank are sentinels; everything after is a
// real item a player can hold.
const (
	ItemNone Item = iota
	ItemUnknown
	ItemBlank
	ItemBanana
	ItemBananaBunch
	ItemBlueShell
	ItemBoo
	ItemFakeBox
	ItemGreenShell
	ItemGreenShell3
	ItemLightning
	ItemMushroom
	ItemMushroom2
	ItemMushroom3
	ItemRedShell
	ItemRedShell3
	ItemStar
	ItemSuperMushroom
)

var itemNames = []string{
	ItemNone:          "none",
	ItemUnknown:       "unknown",
	ItemBlank:         "blank",
	ItemBanana:        "banana",
	ItemBananaBunch:   "bananabunch",
	ItemBlueShell:     "blueshell",
	ItemBoo:           "boo",
	ItemFakeBox:       "fakebox",
	ItemGreenShell:    "greenshell",
	ItemGreenShell3:   "greenshell3",
	ItemLightning:     "lightning",
	ItemMushroom:      "mushroom",
	ItemMushroom2:     "mushroom2",
	ItemMushroom3:     "mushroom3",
	ItemRedShell:      "redshell",
	ItemRedShell3:     "redshell3",
	ItemStar:          "star",
	ItemSuperMushroom: "supermushroom",
}

var itemsByName = func() map[string]Item {
	m := make(map[string]Item, len(itemNames)+1)
	for i, name := range itemNames {
		m[name] = Item(i)
	}
	// The spinning box frame is its own mask.
	m["box"] = ItemUnknown
	return m
}()

// ParseItem maps an item mask subject to an Item. Names that are not in the
// table map to ItemUnknown: the mask matched, so something is in the box.
func ParseItem(name string) Item {
	if it, ok := itemsByName[strings.ToLower(name)]; ok {
		return it
	}
	return ItemUnknown
}

func (i Item) String() string {
	if i < 0 || int(i) >= len(itemNames) {
		return "unknown"
	}
	return itemNames[i]
}

// Real reports whether i is an actual item rather than a sentinel.
func (i Item) Real() bool {
	return i > ItemBlank
}

// ItemState is the per-player item acquisition state.
type ItemState int

const (
	ItemStateNone ItemState = iota
	ItemStateSlotMachine
	ItemStateWaitItem
	ItemStateHaveItem
	ItemStateWaitUse
)

func (s ItemState) String() string {
	switch s {
	case ItemStateNone:
		return "none"
	case ItemStateSlotMachine:
		return "slotmachine"
	case ItemStateWaitItem:
		return "waititem"
	case ItemStateHaveItem:
		return "haveitem"
	case ItemStateWaitUse:
		return "waituse"
	default:
		return "invalid"
	}
}

// NextItemState advances the item state machine by one frame given the item
// detected in that frame. unexpected is set when the box vanished while the
// slot machine was still running, which usually means a missed frame.
func NextItemState(prev ItemState, detected Item) (next ItemState, unexpected bool) {
	switch prev {
	case ItemStateNone:
		if detected != ItemNone && detected != ItemBlank {
			return ItemStateSlotMachine, false
		}
	case ItemStateSlotMachine:
		switch detected {
		case ItemNone:
			return ItemStateNone, true
		case ItemBlank:
			return ItemStateWaitItem, false
		}
	case ItemStateWaitItem:
		if detected == ItemNone {
			return ItemStateNone, true
		}
		if detected.Real() {
			return ItemStateHaveItem, false
		}
	case ItemStateHaveItem:
		return ItemStateWaitUse, false
	case ItemStateWaitUse:
		if detected == ItemNone {
			return ItemStateNone, false
		}
	}
	return prev, false
}
