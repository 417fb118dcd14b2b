package tab

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const tabColumns = `
	id, shop_id, owner_id, display_name, organization,
	payment_method, payment_details, billing_interval_days,
	start_date::text, end_date::text, daily_start_time, daily_end_time,
	active_days_of_wk, dollar_limit_per_order,
	verification_method, verification_list, status, pending_updates,
	created_at, updated_at
`

func scanTab(row pgx.Row, t *Tab) error {
	return row.Scan(
		&t.ID,
		&t.ShopID,
		&t.OwnerID,
		&t.DisplayName,
		&t.Organization,
		&t.PaymentMethod,
		&t.PaymentDetails,
		&t.BillingIntervalDays,
		&t.Window.StartDate,
		&t.Window.EndDate,
		&t.Window.DailyStartTime,
		&t.Window.DailyEndTime,
		&t.Window.ActiveDaysOfWk,
		&t.DollarLimitPerOrder,
		&t.VerificationMethod,
		&t.VerificationList,
		&t.Status,
		&t.PendingUpdates,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}

// --------------------------------------------------
// Tabs
// --------------------------------------------------
func (r *PostgresRepository) CreateTab(ctx context.Context, t *Tab) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO tabs (
			shop_id, owner_id, display_name, organization,
			payment_method, payment_details, billing_interval_days,
			start_date, end_date, daily_start_time, daily_end_time,
			active_days_of_wk, dollar_limit_per_order,
			verification_method, verification_list, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(
		ctx,
		query,
		t.ShopID,
		t.OwnerID,
		t.DisplayName,
		t.Organization,
		t.PaymentMethod,
		t.PaymentDetails,
		t.BillingIntervalDays,
		t.Window.StartDate,
		t.Window.EndDate,
		t.Window.DailyStartTime,
		t.Window.DailyEndTime,
		t.Window.ActiveDaysOfWk,
		t.DollarLimitPerOrder,
		t.VerificationMethod,
		t.VerificationList,
		t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return err
	}

	if err := setTabLocations(ctx, tx, t.ID, t.ShopID, locationIDs(t.Locations)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	t.Locations, err = r.tabLocations(ctx, t.ID)
	return err
}

func locationIDs(locations []Location) []int {
	ids := make([]int, 0, len(locations))
	for _, l := range locations {
		ids = append(ids, l.ID)
	}
	return ids
}

func setTabLocations(ctx context.Context, tx pgx.Tx, tabID, shopID int, locationIDs []int) error {
	if _, err := tx.Exec(ctx, `DELETE FROM tab_locations WHERE tab_id = $1`, tabID); err != nil {
		return err
	}
	for _, locationID := range locationIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO tab_locations (tab_id, location_id)
			SELECT $1, id FROM locations WHERE id = $2 AND shop_id = $3
			ON CONFLICT DO NOTHING
		`, tabID, locationID, shopID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) tabLocations(ctx context.Context, tabID int) ([]Location, error) {
	rows, err := r.db.Query(ctx, `
		SELECT l.id, l.name
		FROM locations l
		JOIN tab_locations tl ON tl.location_id = l.id
		WHERE tl.tab_id = $1
		ORDER BY l.id
	`, tabID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := []Location{}
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (r *PostgresRepository) pendingBalance(ctx context.Context, tabID int) (bool, error) {
	var pending bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM bills b
			JOIN bill_items bi ON bi.bill_id = b.id
			WHERE b.tab_id = $1 AND NOT b.is_paid AND bi.quantity > 0
		)
	`, tabID).Scan(&pending)
	return pending, err
}

func (r *PostgresRepository) GetTab(ctx context.Context, shopID, tabID int) (*Detail, error) {
	var d Detail
	row := r.db.QueryRow(ctx, `
		SELECT `+tabColumns+`
		FROM tabs
		WHERE shop_id = $1 AND id = $2
	`, shopID, tabID)
	if err := scanTab(row, &d.Tab); err != nil {
		return nil, err
	}

	var err error
	if d.Locations, err = r.tabLocations(ctx, tabID); err != nil {
		return nil, err
	}
	if d.IsPendingBalance, err = r.pendingBalance(ctx, tabID); err != nil {
		return nil, err
	}
	if d.Bills, err = r.listBills(ctx, tabID); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PostgresRepository) ListTabs(ctx context.Context, shopID int) ([]Tab, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+tabColumns+`
		FROM tabs
		WHERE shop_id = $1
		ORDER BY id
	`, shopID)
	if err != nil {
		return nil, err
	}

	tabs := []Tab{}
	for rows.Next() {
		var t Tab
		if err := scanTab(rows, &t); err != nil {
			rows.Close()
			return nil, err
		}
		tabs = append(tabs, t)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range tabs {
		if tabs[i].Locations, err = r.tabLocations(ctx, tabs[i].ID); err != nil {
			return nil, err
		}
		if tabs[i].IsPendingBalance, err = r.pendingBalance(ctx, tabs[i].ID); err != nil {
			return nil, err
		}
	}
	return tabs, nil
}

func (r *PostgresRepository) UpdateTab(ctx context.Context, t *Tab) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE tabs SET
			display_name = $3, organization = $4,
			payment_method = $5, payment_details = $6,
			billing_interval_days = $7,
			start_date = $8, end_date = $9,
			daily_start_time = $10, daily_end_time = $11,
			active_days_of_wk = $12, dollar_limit_per_order = $13,
			verification_method = $14, verification_list = $15,
			status = $16, pending_updates = $17,
			updated_at = CURRENT_TIMESTAMP
		WHERE shop_id = $1 AND id = $2
	`

	tag, err := tx.Exec(
		ctx,
		query,
		t.ShopID,
		t.ID,
		t.DisplayName,
		t.Organization,
		t.PaymentMethod,
		t.PaymentDetails,
		t.BillingIntervalDays,
		t.Window.StartDate,
		t.Window.EndDate,
		t.Window.DailyStartTime,
		t.Window.DailyEndTime,
		t.Window.ActiveDaysOfWk,
		t.DollarLimitPerOrder,
		t.VerificationMethod,
		t.VerificationList,
		t.Status,
		t.PendingUpdates,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if err := setTabLocations(ctx, tx, t.ID, t.ShopID, locationIDs(t.Locations)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// --------------------------------------------------
// Bills
// --------------------------------------------------
func (r *PostgresRepository) OpenBill(ctx context.Context, tabID int, startDate, endDate string) (*Bill, error) {
	var b Bill
	err := r.db.QueryRow(ctx, `
		INSERT INTO bills (tab_id, start_date, end_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (tab_id, start_date) DO UPDATE SET end_date = bills.end_date
		RETURNING id, tab_id, start_date::text, end_date::text, is_paid
	`, tabID, startDate, endDate).Scan(&b.ID, &b.TabID, &b.StartDate, &b.EndDate, &b.IsPaid)
	if err != nil {
		return nil, err
	}
	b.Items = []BillLine{}
	return &b, nil
}

func (r *PostgresRepository) listBills(ctx context.Context, tabID int) ([]Bill, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, tab_id, start_date::text, end_date::text, is_paid
		FROM bills
		WHERE tab_id = $1
		ORDER BY start_date
	`, tabID)
	if err != nil {
		return nil, err
	}

	bills := []Bill{}
	for rows.Next() {
		var b Bill
		if err := rows.Scan(&b.ID, &b.TabID, &b.StartDate, &b.EndDate, &b.IsPaid); err != nil {
			rows.Close()
			return nil, err
		}
		bills = append(bills, b)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range bills {
		if err := r.fillBillLines(ctx, &bills[i]); err != nil {
			return nil, err
		}
	}
	return bills, nil
}

func (r *PostgresRepository) fillBillLines(ctx context.Context, b *Bill) error {
	rows, err := r.db.Query(ctx, `
		SELECT bi.item_id, i.name, i.base_price, bi.quantity
		FROM bill_items bi
		JOIN items i ON i.id = bi.item_id
		WHERE bi.bill_id = $1 AND bi.quantity > 0
		ORDER BY i.name, bi.item_id
	`, b.ID)
	if err != nil {
		return err
	}

	b.Items = []BillLine{}
	lineIdx := make(map[int]int)
	for rows.Next() {
		var l BillLine
		if err := rows.Scan(&l.ItemID, &l.Name, &l.BasePrice, &l.Quantity); err != nil {
			rows.Close()
			return err
		}
		l.Variants = []BillVariant{}
		lineIdx[l.ItemID] = len(b.Items)
		b.Items = append(b.Items, l)
	}
	rows.Close()
	if rows.Err() != nil {
		return rows.Err()
	}

	rows, err = r.db.Query(ctx, `
		SELECT bv.item_id, bv.variant_id, v.name, v.price, bv.quantity
		FROM bill_item_variants bv
		JOIN item_variants v ON v.id = bv.variant_id
		WHERE bv.bill_id = $1 AND bv.quantity > 0
		ORDER BY v.name, bv.variant_id
	`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var itemID int
		var bv BillVariant
		if err := rows.Scan(&itemID, &bv.VariantID, &bv.Name, &bv.Price, &bv.Quantity); err != nil {
			return err
		}
		if idx, ok := lineIdx[itemID]; ok {
			b.Items[idx].Variants = append(b.Items[idx].Variants, bv)
		}
	}
	return rows.Err()
}

func (r *PostgresRepository) GetBill(ctx context.Context, tabID, billID int) (*Bill, error) {
	var b Bill
	err := r.db.QueryRow(ctx, `
		SELECT id, tab_id, start_date::text, end_date::text, is_paid
		FROM bills
		WHERE tab_id = $1 AND id = $2
	`, tabID, billID).Scan(&b.ID, &b.TabID, &b.StartDate, &b.EndDate, &b.IsPaid)
	if err != nil {
		return nil, err
	}
	if err := r.fillBillLines(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PostgresRepository) ApplyLines(ctx context.Context, billID int, lines []OrderLine, sign int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, line := range lines {
		delta := sign * line.Quantity
		_, err := tx.Exec(ctx, `
			INSERT INTO bill_items (bill_id, item_id, quantity)
			VALUES ($1, $2, GREATEST(0, $3))
			ON CONFLICT (bill_id, item_id) DO UPDATE
			SET quantity = GREATEST(0, bill_items.quantity + $3)
		`, billID, line.ID, delta)
		if err != nil {
			return err
		}

		for _, v := range line.Variants {
			vDelta := sign * v.Quantity
			_, err := tx.Exec(ctx, `
				INSERT INTO bill_item_variants (bill_id, item_id, variant_id, quantity)
				VALUES ($1, $2, $3, GREATEST(0, $4))
				ON CONFLICT (bill_id, item_id, variant_id) DO UPDATE
				SET quantity = GREATEST(0, bill_item_variants.quantity + $4)
			`, billID, line.ID, v.ID, vDelta)
			if err != nil {
				return err
			}
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM bill_item_variants WHERE bill_id = $1 AND quantity = 0`, billID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM bill_items WHERE bill_id = $1 AND quantity = 0`, billID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) CloseBill(ctx context.Context, tabID, billID int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bills SET is_paid = TRUE
		WHERE tab_id = $1 AND id = $2
	`, tabID, billID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
