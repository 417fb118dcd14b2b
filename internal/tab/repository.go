package tab

import "context"

// Repository defines all database operations for tabs and bills
type Repository interface {
	CreateTab(ctx context.Context, t *Tab) error
	GetTab(ctx context.Context, shopID, tabID int) (*Detail, error)
	ListTabs(ctx context.Context, shopID int) ([]Tab, error)

	// UpdateTab persists the editable fields, status, pending updates
	// and location links of an existing tab.
	UpdateTab(ctx context.Context, t *Tab) error

	// OpenBill finds or lazily creates the bill covering the given
	// window. The returned bill carries its paid flag.
	OpenBill(ctx context.Context, tabID int, startDate, endDate string) (*Bill, error)

	GetBill(ctx context.Context, tabID, billID int) (*Bill, error)

	// ApplyLines merges normalized order lines into a bill. sign is +1
	// to add and -1 to remove; quantities floor at zero and zeroed
	// lines are dropped.
	ApplyLines(ctx context.Context, billID int, lines []OrderLine, sign int) error

	CloseBill(ctx context.Context, tabID, billID int) error
}
