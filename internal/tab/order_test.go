package tab

import (
	"errors"
	"reflect"
	"testing"
)

func intPtr(v int) *int { return &v }

func selection(itemID int, variantID *int) Selection {
	var sel Selection
	sel.Item.ID = itemID
	sel.Item.VariantID = variantID
	return sel
}

func TestNormalizeFullSelection(t *testing.T) {
	sel := selection(10, intPtr(3))
	sel.Substitutions = []SubstitutionChoice{
		{GroupID: 1, ItemID: 21},
		{GroupID: 2, ItemID: 22},
	}
	sel.Addons = []AddonQuantity{
		{ItemID: 30, Quantity: 2},
		{ItemID: 31, Quantity: 1},
	}

	lines, err := Normalize(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []OrderLine{
		{ID: 21, Quantity: 1, Variants: []VariantQuantity{}},
		{ID: 22, Quantity: 1, Variants: []VariantQuantity{}},
		{ID: 30, Quantity: 2, Variants: []VariantQuantity{}},
		{ID: 31, Quantity: 1, Variants: []VariantQuantity{}},
		{ID: 10, Quantity: 1, Variants: []VariantQuantity{{ID: 3, Quantity: 1}}},
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("got %+v, want %+v", lines, want)
	}
}

func TestNormalizeSumsDuplicateItems(t *testing.T) {
	// Base item also chosen in a substitution group and as an addon.
	sel := selection(10, nil)
	sel.Substitutions = []SubstitutionChoice{{GroupID: 1, ItemID: 10}}
	sel.Addons = []AddonQuantity{{ItemID: 10, Quantity: 3}}

	lines, err := Normalize(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one merged line, got %d", len(lines))
	}
	if lines[0].ID != 10 || lines[0].Quantity != 5 {
		t.Errorf("got %+v, want item 10 quantity 5", lines[0])
	}
}

func TestNormalizeVariantOnlyOnBaseLine(t *testing.T) {
	sel := selection(10, intPtr(7))
	sel.Addons = []AddonQuantity{{ItemID: 10, Quantity: 2}}

	lines, err := Normalize(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if lines[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", lines[0].Quantity)
	}
	// The variant rides on the merged line but counts a single unit.
	want := []VariantQuantity{{ID: 7, Quantity: 1}}
	if !reflect.DeepEqual(lines[0].Variants, want) {
		t.Errorf("variants = %+v, want %+v", lines[0].Variants, want)
	}
}

func TestNormalizeDropsZeroQuantityAddons(t *testing.T) {
	sel := selection(10, nil)
	sel.Addons = []AddonQuantity{{ItemID: 30, Quantity: 0}}

	lines, err := Normalize(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, l := range lines {
		if l.ID == 30 {
			t.Errorf("zero-quantity addon should be dropped, got %+v", l)
		}
	}
	if len(lines) != 1 || lines[0].ID != 10 {
		t.Errorf("expected only the base item, got %+v", lines)
	}
}

func TestNormalizeRejectsNegativeAddonQuantity(t *testing.T) {
	sel := selection(10, nil)
	sel.Addons = []AddonQuantity{{ItemID: 30, Quantity: -1}}

	if _, err := Normalize(sel); !errors.Is(err, ErrNegativeQuantity) {
		t.Errorf("expected ErrNegativeQuantity, got %v", err)
	}
}

func TestNormalizeFirstSeenOrderIsStable(t *testing.T) {
	sel := selection(10, nil)
	sel.Substitutions = []SubstitutionChoice{
		{GroupID: 1, ItemID: 40},
		{GroupID: 2, ItemID: 41},
		{GroupID: 3, ItemID: 40},
	}

	lines, err := Normalize(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gotIDs := []int{}
	for _, l := range lines {
		gotIDs = append(gotIDs, l.ID)
	}
	wantIDs := []int{40, 41, 10}
	if !reflect.DeepEqual(gotIDs, wantIDs) {
		t.Errorf("order = %v, want %v", gotIDs, wantIDs)
	}
	if lines[0].Quantity != 2 {
		t.Errorf("repeated substitution should sum, got %d", lines[0].Quantity)
	}
}
