package kv

import "testing"

func TestItemStateSequence(t *testing.T) {
	detected := []Item{ItemNone, ParseItem("box"), ItemBlank, ItemMushroom, ItemMushroom, ItemNone}
	want := []ItemState{ItemStateNone, ItemStateSlotMachine, ItemStateWaitItem, ItemStateHaveItem, ItemStateWaitUse, ItemStateNone}

	state := ItemStateNone
	for i, item := range detected {
		var unexpected bool
		state, unexpected = NextItemState(state, item)
		if unexpected {
			t.Fatalf("frame %d: unexpected transition", i)
		}
		if state != want[i] {
			t.Fatalf("frame %d: state = %s, want %s", i, state, want[i])
		}
	}
}

func TestNextItemState(t *testing.T) {
	tests := []struct {
		prev           ItemState
		item           Item
		want           ItemState
		wantUnexpected bool
	}{
		{ItemStateNone, ItemNone, ItemStateNone, false},
		{ItemStateNone, ItemBlank, ItemStateNone, false},
		{ItemStateNone, ItemStar, ItemStateSlotMachine, false},
		{ItemStateSlotMachine, ItemNone, ItemStateNone, true},
		{ItemStateSlotMachine, ItemUnknown, ItemStateSlotMachine, false},
		{ItemStateSlotMachine, ItemBanana, ItemStateSlotMachine, false},
		{ItemStateWaitItem, ItemNone, ItemStateNone, true},
		{ItemStateWaitItem, ItemBlank, ItemStateWaitItem, false},
		{ItemStateWaitItem, ItemUnknown, ItemStateWaitItem, false},
		{ItemStateWaitItem, ItemRedShell3, ItemStateHaveItem, false},
		{ItemStateHaveItem, ItemNone, ItemStateWaitUse, false},
		{ItemStateWaitUse, ItemBoo, ItemStateWaitUse, false},
		{ItemStateWaitUse, ItemNone, ItemStateNone, false},
	}
	for _, tt := range tests {
		got, unexpected := NextItemState(tt.prev, tt.item)
		if got != tt.want || unexpected != tt.wantUnexpected {
			t.Fatalf("NextItemState(%s, %s) = %s, %v; want %s, %v",
				tt.prev, tt.item, got, unexpected, tt.want, tt.wantUnexpected)
		}
	}
}

func TestParseItem(t *testing.T) {
	tests := map[string]Item{
		"box":           ItemUnknown,
		"blank":         ItemBlank,
		"Mushroom3":     ItemMushroom3,
		"supermushroom": ItemSuperMushroom,
		"cheese":        ItemUnknown,
	}
	for name, want := range tests {
		if got := ParseItem(name); got != want {
			t.Fatalf("ParseItem(%q) = %s, want %s", name, got, want)
		}
	}
	if ItemBlank.Real() || ItemUnknown.Real() || !ItemBanana.Real() {
		t.Fatal("sentinel classification wrong")
	}
}
