package tab

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusClosed    Status = "closed"
)

const (
	VerificationSpecify = "specify"
	VerificationVoucher = "voucher"
	VerificationEmail   = "email"
)

// Window is a tab's scheduling configuration: an inclusive date range,
// a daily HH:MM time range and a day-of-week bitmask (Sunday = bit 0,
// 0 = every day).
type Window struct {
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	DailyStartTime string `json:"daily_start_time"`
	DailyEndTime   string `json:"daily_end_time"`
	ActiveDaysOfWk int    `json:"active_days_of_wk"`
}

// TabUpdate holds the editable fields of a tab. Edits by the tab owner
// on a confirmed tab are parked here (pending_updates) until approved.
type TabUpdate struct {
	DisplayName         string  `json:"display_name"`
	Organization        string  `json:"organization"`
	PaymentMethod       string  `json:"payment_method"`
	PaymentDetails      string  `json:"payment_details"`
	BillingIntervalDays int     `json:"billing_interval_days"`
	Window              Window  `json:"window"`
	DollarLimitPerOrder float64 `json:"dollar_limit_per_order"`
	VerificationMethod  string  `json:"verification_method"`
	VerificationList    []string `json:"verification_list"`
	LocationIDs         []int   `json:"location_ids"`
}

type Location struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Tab struct {
	ID                  int        `json:"id"`
	ShopID              int        `json:"shop_id"`
	OwnerID             string     `json:"owner_id"`
	DisplayName         string     `json:"display_name"`
	Organization        string     `json:"organization"`
	PaymentMethod       string     `json:"payment_method"`
	PaymentDetails      string     `json:"payment_details"`
	BillingIntervalDays int        `json:"billing_interval_days"`
	Window              Window     `json:"window"`
	DollarLimitPerOrder float64    `json:"dollar_limit_per_order"`
	VerificationMethod  string     `json:"verification_method"`
	VerificationList    []string   `json:"verification_list"`
	Status              Status     `json:"status"`
	Locations           []Location `json:"locations"`
	PendingUpdates      *TabUpdate `json:"pending_updates"`
	IsPendingBalance    bool       `json:"is_pending_balance"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Detail is the single-tab payload, overview plus bills.
type Detail struct {
	Tab
	Bills []Bill `json:"bills"`
}

type BillVariant struct {
	VariantID int     `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type BillLine struct {
	ItemID    int           `json:"id"`
	Name      string        `json:"name"`
	BasePrice float64       `json:"base_price"`
	Quantity  int           `json:"quantity"`
	Variants  []BillVariant `json:"variants"`
}

type Bill struct {
	ID        int        `json:"id"`
	TabID     int        `json:"tab_id"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	IsPaid    bool       `json:"is_paid"`
	Items     []BillLine `json:"items"`
}

// TabCreate is the create/update request payload.
type TabCreate struct {
	DisplayName         string   `json:"display_name" binding:"required,min=2,max=64"`
	Organization        string   `json:"organization" binding:"required,min=2,max=64"`
	PaymentMethod       string   `json:"payment_method" binding:"required"`
	PaymentDetails      string   `json:"payment_details"`
	BillingIntervalDays int      `json:"billing_interval_days" binding:"required,min=1,max=365"`
	StartDate           string   `json:"start_date" binding:"required"`
	EndDate             string   `json:"end_date" binding:"required"`
	DailyStartTime      string   `json:"daily_start_time" binding:"required"`
	DailyEndTime        string   `json:"daily_end_time" binding:"required"`
	ActiveDaysOfWk      int      `json:"active_days_of_wk" binding:"required,min=1,max=127"`
	DollarLimitPerOrder float64  `json:"dollar_limit_per_order" binding:"min=0"`
	VerificationMethod  string   `json:"verification_method" binding:"required"`
	VerificationList    []string `json:"verification_list"`
	LocationIDs         []int    `json:"location_ids"`
}

func (d TabCreate) update() TabUpdate {
	return TabUpdate{
		DisplayName:         d.DisplayName,
		Organization:        d.Organization,
		PaymentMethod:       d.PaymentMethod,
		PaymentDetails:      d.PaymentDetails,
		BillingIntervalDays: d.BillingIntervalDays,
		Window: Window{
			StartDate:      d.StartDate,
			EndDate:        d.EndDate,
			DailyStartTime: d.DailyStartTime,
			DailyEndTime:   d.DailyEndTime,
			ActiveDaysOfWk: d.ActiveDaysOfWk,
		},
		DollarLimitPerOrder: d.DollarLimitPerOrder,
		VerificationMethod:  d.VerificationMethod,
		VerificationList:    d.VerificationList,
		LocationIDs:         d.LocationIDs,
	}
}

// apply copies an update onto the tab.
func (t *Tab) apply(u TabUpdate) {
	t.DisplayName = u.DisplayName
	t.Organization = u.Organization
	t.PaymentMethod = u.PaymentMethod
	t.PaymentDetails = u.PaymentDetails
	t.BillingIntervalDays = u.BillingIntervalDays
	t.Window = u.Window
	t.DollarLimitPerOrder = u.DollarLimitPerOrder
	t.VerificationMethod = u.VerificationMethod
	t.VerificationList = u.VerificationList
}
