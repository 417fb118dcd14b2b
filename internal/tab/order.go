package tab

import (
	"errors"
	"fmt"
)

// Selection is a checkout choice for a single catalog item: the base
// item with an optional variant, one chosen item per substitution
// group, and addon quantities.
type Selection struct {
	Item struct {
		ID        int  `json:"id" binding:"required,min=1"`
		VariantID *int `json:"variant_id"`
	} `json:"item" binding:"required"`
	Substitutions []SubstitutionChoice `json:"substitutions"`
	Addons        []AddonQuantity      `json:"addons"`
}

type SubstitutionChoice struct {
	GroupID int `json:"id" binding:"required,min=1"`
	ItemID  int `json:"item_id" binding:"required,min=1"`
}

type AddonQuantity struct {
	ItemID   int `json:"id" binding:"required,min=1"`
	Quantity int `json:"quantity"`
}

// VariantQuantity is a variant count nested under an order line.
type VariantQuantity struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

// OrderLine is the submission-ready aggregate for one catalog item.
type OrderLine struct {
	ID       int               `json:"id"`
	Quantity int               `json:"quantity"`
	Variants []VariantQuantity `json:"variants"`
}

var ErrNegativeQuantity = errors.New("addon quantity cannot be negative")

// Normalize folds a selection into flat order lines keyed by catalog
// item id. Each substitution choice contributes one unit of its chosen
// item, addons contribute their quantity, and the base item contributes
// one unit and is the only line that carries a variant. Contributions
// to the same item sum; lines that net to zero are dropped. Output
// order is first-seen order, so results are deterministic.
func Normalize(sel Selection) ([]OrderLine, error) {
	type total struct {
		quantity int
		variants []VariantQuantity
	}

	totals := make(map[int]*total)
	order := make([]int, 0, len(sel.Substitutions)+len(sel.Addons)+1)

	add := func(id, quantity int) *total {
		t, ok := totals[id]
		if !ok {
			t = &total{variants: []VariantQuantity{}}
			totals[id] = t
			order = append(order, id)
		}
		t.quantity += quantity
		return t
	}

	for _, sub := range sel.Substitutions {
		add(sub.ItemID, 1)
	}

	for _, addon := range sel.Addons {
		if addon.Quantity < 0 {
			return nil, fmt.Errorf("%w: item %d", ErrNegativeQuantity, addon.ItemID)
		}
		add(addon.ItemID, addon.Quantity)
	}

	base := add(sel.Item.ID, 1)
	if sel.Item.VariantID != nil {
		base.variants = []VariantQuantity{{ID: *sel.Item.VariantID, Quantity: 1}}
	}

	lines := make([]OrderLine, 0, len(order))
	for _, id := range order {
		t := totals[id]
		if t.quantity == 0 {
			continue
		}
		lines = append(lines, OrderLine{ID: id, Quantity: t.quantity, Variants: t.variants})
	}
	return lines, nil
}
