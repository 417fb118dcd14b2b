package tab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/willtrojniak/TabApp/internal/authz"
	"github.com/willtrojniak/TabApp/internal/event"
	"github.com/willtrojniak/TabApp/internal/export"
	"github.com/willtrojniak/TabApp/internal/shop"
)

var (
	ErrTabNotConfirmed  = errors.New("tab is not confirmed")
	ErrTabClosed        = errors.New("tab is closed")
	ErrTabInactive      = errors.New("tab is not active right now")
	ErrBillClosed       = errors.New("bill has already been closed out")
	ErrOverLimit        = errors.New("order exceeds the tab's per-order dollar limit")
	ErrUnknownItem      = errors.New("order references an unknown item")
	ErrNoPendingChanges = errors.New("tab has no pending changes to approve")
)

// Shops is the slice of the shop service the tab service depends on.
type Shops interface {
	Authorize(ctx context.Context, shopID int, userID string, want authz.Role) error
	PaymentMethods(ctx context.Context, shopID int) ([]string, error)
	ShopName(ctx context.Context, shopID int) (string, error)
}

// Catalog resolves item and variant prices; implemented by the catalog
// service.
type Catalog interface {
	ItemPrices(ctx context.Context, shopID int, itemIDs []int) (map[int]float64, error)
	VariantPrice(ctx context.Context, shopID, itemID, variantID int) (float64, error)
}

// Storage persists exported bill statements.
type Storage interface {
	UploadBytes(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type Service struct {
	repo    Repository
	shops   Shops
	catalog Catalog
	events  event.Publisher
	storage Storage
	now     func() time.Time
}

func NewService(repo Repository, shops Shops, catalog Catalog, events event.Publisher, storage Storage) *Service {
	return &Service{
		repo:    repo,
		shops:   shops,
		catalog: catalog,
		events:  events,
		storage: storage,
		now:     time.Now,
	}
}

// --------------------------------------------------
// Tabs
// --------------------------------------------------
func (s *Service) CreateTab(ctx context.Context, shopID int, userID string, data TabCreate) (*Tab, error) {
	methods, err := s.shops.PaymentMethods(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if err := data.validate(methods); err != nil {
		return nil, err
	}

	t := &Tab{ShopID: shopID, OwnerID: userID, Status: StatusPending}
	t.apply(data.update())
	t.Locations = locationRefs(data.LocationIDs)

	// Managers' own tabs skip the review queue.
	if s.shops.Authorize(ctx, shopID, userID, authz.RoleManageTabs) == nil {
		t.Status = StatusConfirmed
	}

	if err := s.repo.CreateTab(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func locationRefs(ids []int) []Location {
	refs := make([]Location, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, Location{ID: id})
	}
	return refs
}

func (s *Service) ListTabs(ctx context.Context, shopID int, userID string) ([]Tab, error) {
	if err := s.shops.Authorize(ctx, shopID, userID, authz.RoleReadTabs); err != nil {
		return nil, err
	}
	return s.repo.ListTabs(ctx, shopID)
}

// GetTab is open to the tab's owner and to anyone with the read-tabs role.
func (s *Service) GetTab(ctx context.Context, shopID, tabID int, userID string) (*Detail, error) {
	d, err := s.repo.GetTab(ctx, shopID, tabID)
	if err != nil {
		return nil, err
	}
	if d.OwnerID != userID {
		if err := s.shops.Authorize(ctx, shopID, userID, authz.RoleReadTabs); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// UpdateTab applies edits immediately for tab managers and for owners of
// still-pending tabs. An owner editing a confirmed tab has the changes
// parked until a manager approves them.
func (s *Service) UpdateTab(ctx context.Context, shopID, tabID int, userID string, data TabCreate) (*Detail, error) {
	d, err := s.repo.GetTab(ctx, shopID, tabID)
	if err != nil {
		return nil, err
	}

	isManager := s.shops.Authorize(ctx, shopID, userID, authz.RoleManageTabs) == nil
	if !isManager && d.OwnerID != userID {
		return nil, shop.ErrForbidden
	}
	if d.Status == StatusClosed {
		return nil, ErrTabClosed
	}

	methods, err := s.shops.PaymentMethods(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if err := data.validate(methods); err != nil {
		return nil, err
	}

	update := data.update()
	if isManager || d.Status == StatusPending {
		d.Tab.apply(update)
		d.Locations = locationRefs(update.LocationIDs)
		d.PendingUpdates = nil
	} else {
		d.PendingUpdates = &update
	}

	if err := s.repo.UpdateTab(ctx, &d.Tab); err != nil {
		return nil, err
	}
	return d, nil
}

// Approve confirms a pending tab, or applies an owner's parked edits on
// a confirmed one.
func (s *Service) Approve(ctx context.Context, shopID, tabID int, userID string) (*Detail, error) {
	if err := s.shops.Authorize(ctx, shopID, userID, authz.RoleManageTabs); err != nil {
		return nil, err
	}

	d, err := s.repo.GetTab(ctx, shopID, tabID)
	if err != nil {
		return nil, err
	}

	switch {
	case d.Status == StatusPending:
		d.Status = StatusConfirmed
	case d.PendingUpdates != nil:
		d.Tab.apply(*d.PendingUpdates)
		d.Locations = locationRefs(d.PendingUpdates.LocationIDs)
		d.PendingUpdates = nil
	default:
		return nil, ErrNoPendingChanges
	}

	if err := s.repo.UpdateTab(ctx, &d.Tab); err != nil {
		return nil, err
	}

	s.publish(event.TabTopic, event.TabEvent{
		EventType:  event.EventTabApproved,
		ShopID:     shopID,
		TabID:      tabID,
		Status:     string(d.Status),
		OccurredAt: s.now(),
	})
	return d, nil
}

func (s *Service) Close(ctx context.Context, shopID, tabID int, userID string) (*Detail, error) {
	if err := s.shops.Authorize(ctx, shopID, userID, authz.RoleManageTabs); err != nil {
		return nil, err
	}

	d, err := s.repo.GetTab(ctx, shopID, tabID)
	if err != nil {
		return nil, err
	}
	if d.Status == StatusClosed {
		return d, nil
	}

	d.Status = StatusClosed
	d.PendingUpdates = nil
	if err := s.repo.UpdateTab(ctx, &d.Tab); err != nil {
		return nil, err
	}

	s.publish(event.TabTopic, event.TabEvent{
		EventType:  event.EventTabClosed,
		ShopID:     shopID,
		TabID:      tabID,
		Status:     string(d.Status),
		OccurredAt: s.now(),
	})
	return d, nil
}

// --------------------------------------------------
// Orders
// --------------------------------------------------

// billWindow returns the billing period containing now: consecutive
// interval-long windows counted from the tab's start date, end dates
// inclusive.
func billWindow(startDate string, intervalDays int, now time.Time) (string, string) {
	start, err := time.ParseInLocation(time.DateOnly, startDate, time.UTC)
	if err != nil {
		return startDate, startDate
	}

	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	idx := 0
	if day.After(start) {
		idx = int(day.Sub(start).Hours()/24) / intervalDays
	}

	windowStart := start.AddDate(0, 0, idx*intervalDays)
	windowEnd := windowStart.AddDate(0, 0, intervalDays-1)
	return windowStart.Format(time.DateOnly), windowEnd.Format(time.DateOnly)
}

// AddOrder normalizes a checkout selection, prices it against the
// catalog, and merges it into the bill covering the current billing
// period. Orders are only accepted while the tab is confirmed and its
// schedule window is active.
func (s *Service) AddOrder(ctx context.Context, shopID, tabID int, userID string, sel Selection) error {
	if err := s.shops.Authorize(ctx, shopID, userID, authz.RoleManageOrders); err != nil {
		return err
	}

	d, err := s.repo.GetTab(ctx, shopID, tabID)
	if err != nil {
		return err
	}
	if d.Status == StatusClosed {
		return ErrTabClosed
	}
	if d.Status != StatusConfirmed {
		return ErrTabNotConfirmed
	}
	if !d.Window.ActiveAt(s.now()) {
		return ErrTabInactive
	}

	lines, err := Normalize(sel)
	if err != nil {
		return err
	}

	price, err := s.priceOrder(ctx, shopID, sel, lines)
	if err != nil {
		return err
	}
	if d.DollarLimitPerOrder > 0 && price > d.DollarLimitPerOrder {
		return fmt.Errorf("%w: $%.2f over $%.2f", ErrOverLimit, price, d.DollarLimitPerOrder)
	}

	bill, err := s.openCurrentBill(ctx, d)
	if err != nil {
		return err
	}

	if err := s.repo.ApplyLines(ctx, bill.ID, lines, 1); err != nil {
		return err
	}

	s.publishOrder(event.EventOrderAdded, shopID, tabID, bill.ID, lines)
	return nil
}

// RemoveOrder reverses a previously added order against the current
// bill. Quantities floor at zero, so a stray removal cannot drive a
// bill negative.
func (s *Service) RemoveOrder(ctx context.Context, shopID, tabID int, userID string, sel Selection) error {
	if err := s.shops.Authorize(ctx, shopID, userID, authz.RoleManageOrders); err != nil {
		return err
	}

	d, err := s.repo.GetTab(ctx, shopID, tabID)
	if err != nil {
		return err
	}
	if d.Status == StatusClosed {
		return ErrTabClosed
	}

	lines, err := Normalize(sel)
	if err != nil {
		return err
	}

	bill, err := s.openCurrentBill(ctx, d)
	if err != nil {
		return err
	}

	if err := s.repo.ApplyLines(ctx, bill.ID, lines, -1); err != nil {
		return err
	}

	s.publishOrder(event.EventOrderRemoved, shopID, tabID, bill.ID, lines)
	return nil
}

func (s *Service) openCurrentBill(ctx context.Context, d *Detail) (*Bill, error) {
	startDate, endDate := billWindow(d.Window.StartDate, d.BillingIntervalDays, s.now())
	bill, err := s.repo.OpenBill(ctx, d.ID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if bill.IsPaid {
		return nil, ErrBillClosed
	}
	return bill, nil
}

// priceOrder totals the normalized lines at base item prices; a chosen
// variant adds its price on top of the base line, the same way bill
// statements total. Unknown ids reject the whole order.
func (s *Service) priceOrder(ctx context.Context, shopID int, sel Selection, lines []OrderLine) (float64, error) {
	ids := make([]int, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ID)
	}

	prices, err := s.catalog.ItemPrices(ctx, shopID, ids)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, l := range lines {
		price, ok := prices[l.ID]
		if !ok {
			return 0, fmt.Errorf("%w: item %d", ErrUnknownItem, l.ID)
		}
		total += price * float64(l.Quantity)
	}

	if sel.Item.VariantID != nil {
		variantPrice, err := s.catalog.VariantPrice(ctx, shopID, sel.Item.ID, *sel.Item.VariantID)
		if err != nil {
			return 0, fmt.Errorf("%w: variant %d", ErrUnknownItem, *sel.Item.VariantID)
		}
		total += variantPrice
	}

	return total, nil
}

// --------------------------------------------------
// Bills
// --------------------------------------------------
func (s *Service) CloseBill(ctx context.Context, shopID, tabID, billID int, userID string) error {
	if err := s.shops.Authorize(ctx, shopID, userID, authz.RoleManageTabs); err != nil {
		return err
	}
	if _, err := s.repo.GetTab(ctx, shopID, tabID); err != nil {
		return err
	}
	if err := s.repo.CloseBill(ctx, tabID, billID); err != nil {
		return err
	}

	s.publish(event.OrderTopic, event.BillEvent{
		EventType:  event.EventBillClosed,
		ShopID:     shopID,
		TabID:      tabID,
		BillID:     billID,
		OccurredAt: s.now(),
	})
	return nil
}

// ExportBill renders the bill as an XLSX statement, uploads it and
// returns the public URL.
func (s *Service) ExportBill(ctx context.Context, shopID, tabID, billID int, userID string) (string, error) {
	d, err := s.GetTab(ctx, shopID, tabID, userID)
	if err != nil {
		return "", err
	}

	bill, err := s.repo.GetBill(ctx, tabID, billID)
	if err != nil {
		return "", err
	}

	shopName, err := s.shops.ShopName(ctx, shopID)
	if err != nil {
		return "", err
	}

	statement := &export.Statement{
		ShopName:     shopName,
		TabName:      d.DisplayName,
		Organization: d.Organization,
		StartDate:    bill.StartDate,
		EndDate:      bill.EndDate,
		Paid:         bill.IsPaid,
	}
	for _, line := range bill.Items {
		statement.Lines = append(statement.Lines, export.Line{
			Name:      line.Name,
			UnitPrice: line.BasePrice,
			Quantity:  line.Quantity,
		})
		for _, v := range line.Variants {
			statement.Lines = append(statement.Lines, export.Line{
				Name:      line.Name + " / " + v.Name,
				UnitPrice: v.Price,
				Quantity:  v.Quantity,
			})
		}
	}

	workbook, err := export.BuildWorkbook(statement)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("bills/%d/%d.xlsx", tabID, billID)
	return s.storage.UploadBytes(ctx, key, workbook,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

// --------------------------------------------------
// Events
// --------------------------------------------------
func (s *Service) publish(topic string, payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.events.Publish(context.Background(), topic, msg); err != nil {
		log.Printf("failed to publish %s event: %v", topic, err)
	}
}

func (s *Service) publishOrder(eventType string, shopID, tabID, billID int, lines []OrderLine) {
	evLines := make([]event.OrderLine, 0, len(lines))
	for _, l := range lines {
		evLines = append(evLines, event.OrderLine{ItemID: l.ID, Quantity: l.Quantity})
	}
	s.publish(event.OrderTopic, event.OrderEvent{
		EventType:  eventType,
		ShopID:     shopID,
		TabID:      tabID,
		BillID:     billID,
		Lines:      evLines,
		OccurredAt: s.now(),
	})
}
