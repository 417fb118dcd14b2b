package tab

import (
	"context"
	"errors"
	"sync"
	"time"
)

// InMemoryRepository is used by tests.
type InMemoryRepository struct {
	mu         sync.Mutex
	nextTabID  int
	nextBillID int
	tabs       map[int]*Tab
	bills      map[int][]*Bill // keyed by tab id
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		nextTabID:  1,
		nextBillID: 1,
		tabs:       make(map[int]*Tab),
		bills:      make(map[int][]*Bill),
	}
}

func (r *InMemoryRepository) CreateTab(ctx context.Context, t *Tab) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = r.nextTabID
	r.nextTabID++
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt

	stored := *t
	r.tabs[t.ID] = &stored
	r.bills[t.ID] = []*Bill{}
	return nil
}

func (r *InMemoryRepository) GetTab(ctx context.Context, shopID, tabID int) (*Detail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tabs[tabID]
	if !ok || t.ShopID != shopID {
		return nil, errors.New("tab not found")
	}

	d := Detail{Tab: *t, Bills: []Bill{}}
	for _, b := range r.bills[tabID] {
		d.Bills = append(d.Bills, copyBill(b))
		if !b.IsPaid && len(b.Items) > 0 {
			d.IsPendingBalance = true
		}
	}
	return &d, nil
}

func (r *InMemoryRepository) ListTabs(ctx context.Context, shopID int) ([]Tab, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tabs := []Tab{}
	for _, t := range r.tabs {
		if t.ShopID != shopID {
			continue
		}
		out := *t
		for _, b := range r.bills[t.ID] {
			if !b.IsPaid && len(b.Items) > 0 {
				out.IsPendingBalance = true
			}
		}
		tabs = append(tabs, out)
	}
	return tabs, nil
}

func (r *InMemoryRepository) UpdateTab(ctx context.Context, t *Tab) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tabs[t.ID]
	if !ok || stored.ShopID != t.ShopID {
		return errors.New("tab not found")
	}
	t.UpdatedAt = time.Now()
	*stored = *t
	return nil
}

func (r *InMemoryRepository) OpenBill(ctx context.Context, tabID int, startDate, endDate string) (*Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tabs[tabID]; !ok {
		return nil, errors.New("tab not found")
	}
	for _, b := range r.bills[tabID] {
		if b.StartDate == startDate {
			out := copyBill(b)
			return &out, nil
		}
	}

	b := &Bill{
		ID:        r.nextBillID,
		TabID:     tabID,
		StartDate: startDate,
		EndDate:   endDate,
		Items:     []BillLine{},
	}
	r.nextBillID++
	r.bills[tabID] = append(r.bills[tabID], b)

	out := copyBill(b)
	return &out, nil
}

func (r *InMemoryRepository) GetBill(ctx context.Context, tabID, billID int) (*Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.findBill(tabID, billID)
	if b == nil {
		return nil, errors.New("bill not found")
	}
	out := copyBill(b)
	return &out, nil
}

func (r *InMemoryRepository) ApplyLines(ctx context.Context, billID int, lines []OrderLine, sign int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var bill *Bill
	for tabID := range r.bills {
		if b := r.findBill(tabID, billID); b != nil {
			bill = b
			break
		}
	}
	if bill == nil {
		return errors.New("bill not found")
	}

	for _, line := range lines {
		idx := -1
		for i := range bill.Items {
			if bill.Items[i].ItemID == line.ID {
				idx = i
				break
			}
		}
		if idx == -1 {
			bill.Items = append(bill.Items, BillLine{ItemID: line.ID, Variants: []BillVariant{}})
			idx = len(bill.Items) - 1
		}
		bill.Items[idx].Quantity = max(0, bill.Items[idx].Quantity+sign*line.Quantity)

		for _, v := range line.Variants {
			vIdx := -1
			for i := range bill.Items[idx].Variants {
				if bill.Items[idx].Variants[i].VariantID == v.ID {
					vIdx = i
					break
				}
			}
			if vIdx == -1 {
				bill.Items[idx].Variants = append(bill.Items[idx].Variants, BillVariant{VariantID: v.ID})
				vIdx = len(bill.Items[idx].Variants) - 1
			}
			bill.Items[idx].Variants[vIdx].Quantity = max(0, bill.Items[idx].Variants[vIdx].Quantity+sign*v.Quantity)
		}
	}

	// Drop zeroed lines.
	kept := bill.Items[:0]
	for _, l := range bill.Items {
		if l.Quantity == 0 {
			continue
		}
		variants := l.Variants[:0]
		for _, v := range l.Variants {
			if v.Quantity > 0 {
				variants = append(variants, v)
			}
		}
		l.Variants = variants
		kept = append(kept, l)
	}
	bill.Items = kept
	return nil
}

func (r *InMemoryRepository) CloseBill(ctx context.Context, tabID, billID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.findBill(tabID, billID)
	if b == nil {
		return errors.New("bill not found")
	}
	b.IsPaid = true
	return nil
}

func (r *InMemoryRepository) findBill(tabID, billID int) *Bill {
	for _, b := range r.bills[tabID] {
		if b.ID == billID {
			return b
		}
	}
	return nil
}

func copyBill(b *Bill) Bill {
	out := *b
	out.Items = make([]BillLine, len(b.Items))
	for i, l := range b.Items {
		out.Items[i] = l
		out.Items[i].Variants = append([]BillVariant{}, l.Variants...)
	}
	return out
}
