package tab

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/willtrojniak/TabApp/internal/authz"
	"github.com/willtrojniak/TabApp/internal/shop"
)

type fakeShops struct {
	roles   map[string]authz.Role
	methods []string
	name    string
}

func (f *fakeShops) Authorize(ctx context.Context, shopID int, userID string, want authz.Role) error {
	if !authz.HasRoles(f.roles[userID], want) {
		return shop.ErrForbidden
	}
	return nil
}

func (f *fakeShops) PaymentMethods(ctx context.Context, shopID int) ([]string, error) {
	return f.methods, nil
}

func (f *fakeShops) ShopName(ctx context.Context, shopID int) (string, error) {
	return f.name, nil
}

type fakeCatalog struct {
	prices        map[int]float64
	variantPrices map[int]float64
}

func (f *fakeCatalog) ItemPrices(ctx context.Context, shopID int, itemIDs []int) (map[int]float64, error) {
	out := make(map[int]float64)
	for _, id := range itemIDs {
		if p, ok := f.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeCatalog) VariantPrice(ctx context.Context, shopID, itemID, variantID int) (float64, error) {
	p, ok := f.variantPrices[variantID]
	if !ok {
		return 0, errors.New("variant not found")
	}
	return p, nil
}

type capturePublisher struct {
	topics []string
}

func (p *capturePublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	p.topics = append(p.topics, topic)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

type fakeStorage struct {
	keys []string
}

func (f *fakeStorage) UploadBytes(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	f.keys = append(f.keys, key)
	return "https://files.example.com/" + key, nil
}

// 2024-01-10 is a Wednesday inside the validCreate window.
var testNow = time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

func newTestService() (*Service, *InMemoryRepository, *capturePublisher, *fakeStorage) {
	repo := NewInMemoryRepository()
	shops := &fakeShops{
		roles: map[string]authz.Role{
			"manager": authz.RoleOwner,
			"barista": authz.RoleManageOrders,
		},
		methods: []string{shop.PaymentMethodChartstring, shop.PaymentMethodInPerson},
		name:    "Corner Cafe",
	}
	catalog := &fakeCatalog{
		prices:        map[int]float64{10: 4.50, 21: 0, 30: 0.75},
		variantPrices: map[int]float64{3: 5.25},
	}
	events := &capturePublisher{}
	storage := &fakeStorage{}

	svc := NewService(repo, shops, catalog, events, storage)
	svc.now = func() time.Time { return testNow }
	return svc, repo, events, storage
}

const shopID = 1

func TestCreateTabStatusDependsOnRole(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	owned, err := svc.CreateTab(ctx, shopID, "customer", validCreate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owned.Status != StatusPending {
		t.Errorf("customer tab status = %s, want pending", owned.Status)
	}

	managed, err := svc.CreateTab(ctx, shopID, "manager", validCreate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if managed.Status != StatusConfirmed {
		t.Errorf("manager tab status = %s, want confirmed", managed.Status)
	}
}

func TestCreateTabValidates(t *testing.T) {
	svc, _, _, _ := newTestService()

	data := validCreate()
	data.PaymentMethod = "credit card"
	if _, err := svc.CreateTab(context.Background(), shopID, "customer", data); !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Errorf("expected ErrInvalidPaymentMethod, got %v", err)
	}
}

func TestGetTabAccess(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateTab(ctx, shopID, "customer", validCreate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.GetTab(ctx, shopID, created.ID, "customer"); err != nil {
		t.Errorf("owner should read own tab, got %v", err)
	}
	if _, err := svc.GetTab(ctx, shopID, created.ID, "barista"); err != nil {
		t.Errorf("read-tabs role should read any tab, got %v", err)
	}
	if _, err := svc.GetTab(ctx, shopID, created.ID, "stranger"); !errors.Is(err, shop.ErrForbidden) {
		t.Errorf("expected forbidden for stranger, got %v", err)
	}
}

func TestUpdateTabParksOwnerEditsOnConfirmed(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateTab(ctx, shopID, "customer", validCreate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Owner edits on a pending tab apply directly.
	edit := validCreate()
	edit.DisplayName = "Renamed Before Review"
	d, err := svc.UpdateTab(ctx, shopID, created.ID, "customer", edit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.DisplayName != edit.DisplayName || d.PendingUpdates != nil {
		t.Errorf("pending-tab edit should apply directly, got %+v", d.Tab)
	}

	if _, err := svc.Approve(ctx, shopID, created.ID, "manager"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Owner edits on a confirmed tab are parked.
	edit.DisplayName = "Renamed After Review"
	d, err = svc.UpdateTab(ctx, shopID, created.ID, "customer", edit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.DisplayName != "Renamed Before Review" {
		t.Errorf("confirmed-tab edit must not apply directly, got %q", d.DisplayName)
	}
	if d.PendingUpdates == nil || d.PendingUpdates.DisplayName != "Renamed After Review" {
		t.Errorf("expected parked update, got %+v", d.PendingUpdates)
	}

	// Approval applies the parked edit.
	d, err = svc.Approve(ctx, shopID, created.ID, "manager")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.DisplayName != "Renamed After Review" || d.PendingUpdates != nil {
		t.Errorf("approval should apply parked edits, got %+v", d.Tab)
	}
}

func TestUpdateTabManagerEditsApplyDirectly(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateTab(ctx, shopID, "customer", validCreate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Approve(ctx, shopID, created.ID, "manager"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	edit := validCreate()
	edit.DollarLimitPerOrder = 25
	d, err := svc.UpdateTab(ctx, shopID, created.ID, "manager", edit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.DollarLimitPerOrder != 25 || d.PendingUpdates != nil {
		t.Errorf("manager edit should apply directly, got %+v", d.Tab)
	}
}

func TestUpdateTabForbiddenForStranger(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateTab(ctx, shopID, "customer", validCreate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.UpdateTab(ctx, shopID, created.ID, "stranger", validCreate()); !errors.Is(err, shop.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}

	// Unauthorized callers get forbidden, not validation detail.
	bad := validCreate()
	bad.PaymentMethod = "credit card"
	if _, err := svc.UpdateTab(ctx, shopID, created.ID, "stranger", bad); !errors.Is(err, shop.ErrForbidden) {
		t.Errorf("expected forbidden before validation, got %v", err)
	}
}

func TestApproveWithoutChanges(t *testing.T) {
	svc, _, events, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateTab(ctx, shopID, "manager", validCreate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Approve(ctx, shopID, created.ID, "manager"); !errors.Is(err, ErrNoPendingChanges) {
		t.Errorf("expected ErrNoPendingChanges, got %v", err)
	}
	if len(events.topics) != 0 {
		t.Errorf("no event should fire on a no-op approve, got %v", events.topics)
	}
}

func TestBillWindow(t *testing.T) {
	cases := []struct {
		name      string
		now       time.Time
		wantStart string
		wantEnd   string
	}{
		{"first day", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), "2024-01-01", "2024-01-07"},
		{"mid first window", time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC), "2024-01-01", "2024-01-07"},
		{"second window", time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), "2024-01-08", "2024-01-14"},
		{"later window", time.Date(2024, 1, 25, 12, 0, 0, 0, time.UTC), "2024-01-22", "2024-01-28"},
		{"before start clamps to first", time.Date(2023, 12, 25, 12, 0, 0, 0, time.UTC), "2024-01-01", "2024-01-07"},
	}
	for _, tc := range cases {
		start, end := billWindow("2024-01-01", 7, tc.now)
		if start != tc.wantStart || end != tc.wantEnd {
			t.Errorf("%s: got [%s, %s], want [%s, %s]", tc.name, start, end, tc.wantStart, tc.wantEnd)
		}
	}
}

func confirmedTab(t *testing.T, svc *Service) *Tab {
	t.Helper()
	created, err := svc.CreateTab(context.Background(), shopID, "manager", validCreate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return created
}

func TestAddOrderMergesIntoCurrentBill(t *testing.T) {
	svc, repo, events, _ := newTestService()
	ctx := context.Background()
	created := confirmedTab(t, svc)

	sel := selection(10, intPtr(3))
	sel.Addons = []AddonQuantity{{ItemID: 30, Quantity: 2}}

	if err := svc.AddOrder(ctx, shopID, created.ID, "barista", sel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.AddOrder(ctx, shopID, created.ID, "barista", sel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d, err := repo.GetTab(ctx, shopID, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.Bills) != 1 {
		t.Fatalf("expected one bill, got %d", len(d.Bills))
	}

	bill := d.Bills[0]
	// testNow falls in the second weekly window of the tab.
	if bill.StartDate != "2024-01-08" || bill.EndDate != "2024-01-14" {
		t.Errorf("bill window = [%s, %s], want [2024-01-08, 2024-01-14]", bill.StartDate, bill.EndDate)
	}

	quantities := map[int]int{}
	for _, l := range bill.Items {
		quantities[l.ItemID] = l.Quantity
	}
	if quantities[30] != 4 || quantities[10] != 2 {
		t.Errorf("unexpected bill quantities: %v", quantities)
	}
	if !d.IsPendingBalance {
		t.Error("tab with an open billed order should report a pending balance")
	}
	if len(events.topics) != 2 {
		t.Errorf("expected two order events, got %v", events.topics)
	}
}

func TestAddOrderRequiresConfirmedActiveTab(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	pending, err := svc.CreateTab(ctx, shopID, "customer", validCreate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.AddOrder(ctx, shopID, pending.ID, "barista", selection(10, nil)); !errors.Is(err, ErrTabNotConfirmed) {
		t.Errorf("expected ErrTabNotConfirmed, got %v", err)
	}

	confirmed := confirmedTab(t, svc)

	// Outside the daily window.
	svc.now = func() time.Time { return time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC) }
	if err := svc.AddOrder(ctx, shopID, confirmed.ID, "barista", selection(10, nil)); !errors.Is(err, ErrTabInactive) {
		t.Errorf("expected ErrTabInactive, got %v", err)
	}

	svc.now = func() time.Time { return testNow }
	if _, err := svc.Close(ctx, shopID, confirmed.ID, "manager"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.AddOrder(ctx, shopID, confirmed.ID, "barista", selection(10, nil)); !errors.Is(err, ErrTabClosed) {
		t.Errorf("expected ErrTabClosed, got %v", err)
	}
}

func TestAddOrderRequiresManageOrdersRole(t *testing.T) {
	svc, _, _, _ := newTestService()
	created := confirmedTab(t, svc)

	err := svc.AddOrder(context.Background(), shopID, created.ID, "customer", selection(10, nil))
	if !errors.Is(err, shop.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestAddOrderEnforcesDollarLimit(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	created := confirmedTab(t, svc)

	// Limit is $15; 4 units of a $4.50 item is $18.
	sel := selection(10, nil)
	sel.Addons = []AddonQuantity{{ItemID: 10, Quantity: 3}}
	if err := svc.AddOrder(ctx, shopID, created.ID, "barista", sel); !errors.Is(err, ErrOverLimit) {
		t.Errorf("expected ErrOverLimit, got %v", err)
	}

	// A variant adds its price on top of the base line, matching how
	// bill statements total: $4.50 + $5.25 stays under the limit.
	sel = selection(10, intPtr(3))
	if err := svc.AddOrder(ctx, shopID, created.ID, "barista", sel); err != nil {
		t.Errorf("variant-priced order within limit should pass, got %v", err)
	}

	// Three base units ($13.50) plus the $5.25 variant is $18.75.
	// Replacing the base price instead of adding would let this
	// through at $14.25.
	sel = selection(10, intPtr(3))
	sel.Addons = []AddonQuantity{{ItemID: 10, Quantity: 2}}
	if err := svc.AddOrder(ctx, shopID, created.ID, "barista", sel); !errors.Is(err, ErrOverLimit) {
		t.Errorf("expected ErrOverLimit for additive variant pricing, got %v", err)
	}
}

func TestAddOrderRejectsUnknownItems(t *testing.T) {
	svc, _, _, _ := newTestService()
	created := confirmedTab(t, svc)

	if err := svc.AddOrder(context.Background(), shopID, created.ID, "barista", selection(999, nil)); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("expected ErrUnknownItem, got %v", err)
	}

	sel := selection(10, intPtr(999))
	if err := svc.AddOrder(context.Background(), shopID, created.ID, "barista", sel); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("expected ErrUnknownItem for bad variant, got %v", err)
	}
}

func TestRemoveOrderFloorsAtZero(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	created := confirmedTab(t, svc)

	sel := selection(10, nil)
	if err := svc.AddOrder(ctx, shopID, created.ID, "barista", sel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RemoveOrder(ctx, shopID, created.ID, "barista", sel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RemoveOrder(ctx, shopID, created.ID, "barista", sel); err != nil {
		t.Fatalf("over-removal should floor, got %v", err)
	}

	d, err := repo.GetTab(ctx, shopID, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.Bills[0].Items) != 0 {
		t.Errorf("fully removed lines should be dropped, got %+v", d.Bills[0].Items)
	}
	if d.IsPendingBalance {
		t.Error("empty bill must not report a pending balance")
	}
}

func TestClosedBillRejectsOrders(t *testing.T) {
	svc, repo, events, _ := newTestService()
	ctx := context.Background()
	created := confirmedTab(t, svc)

	if err := svc.AddOrder(ctx, shopID, created.ID, "barista", selection(10, nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, err := repo.GetTab(ctx, shopID, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	billID := d.Bills[0].ID

	if err := svc.CloseBill(ctx, shopID, created.ID, billID, "customer"); !errors.Is(err, shop.ErrForbidden) {
		t.Errorf("closing a bill requires manage-tabs, got %v", err)
	}
	if err := svc.CloseBill(ctx, shopID, created.ID, billID, "manager"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.AddOrder(ctx, shopID, created.ID, "barista", selection(10, nil)); !errors.Is(err, ErrBillClosed) {
		t.Errorf("expected ErrBillClosed, got %v", err)
	}

	d, err = repo.GetTab(ctx, shopID, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.IsPendingBalance {
		t.Error("paid bill must not count toward a pending balance")
	}
	if len(events.topics) != 2 {
		t.Errorf("expected order + bill events, got %v", events.topics)
	}
}

func TestExportBill(t *testing.T) {
	svc, repo, _, storage := newTestService()
	ctx := context.Background()
	created := confirmedTab(t, svc)

	if err := svc.AddOrder(ctx, shopID, created.ID, "barista", selection(10, nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, err := repo.GetTab(ctx, shopID, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	billID := d.Bills[0].ID

	url, err := svc.ExportBill(ctx, shopID, created.ID, billID, "manager")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(url, "https://files.example.com/bills/") {
		t.Errorf("unexpected export url %q", url)
	}
	if len(storage.keys) != 1 {
		t.Errorf("expected one upload, got %v", storage.keys)
	}

	if _, err := svc.ExportBill(ctx, shopID, created.ID, billID, "stranger"); !errors.Is(err, shop.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}
