package event

import "time"

const (
	// TabTopic carries tab lifecycle events.
	TabTopic = "tabs.lifecycle"
	// OrderTopic carries order and billing events.
	OrderTopic = "tabs.orders"

	EventTabApproved  = "tab.approved"
	EventTabClosed    = "tab.closed"
	EventOrderAdded   = "tab.order.added"
	EventOrderRemoved = "tab.order.removed"
	EventBillClosed   = "tab.bill.closed"
)

// TabEvent captures a tab status change.
type TabEvent struct {
	EventType  string    `json:"event_type"`
	ShopID     int       `json:"shop_id"`
	TabID      int       `json:"tab_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OrderLine is the minimal line shape carried on order events.
type OrderLine struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

// OrderEvent captures an order applied to or removed from a bill.
type OrderEvent struct {
	EventType  string      `json:"event_type"`
	ShopID     int         `json:"shop_id"`
	TabID      int         `json:"tab_id"`
	BillID     int         `json:"bill_id"`
	Lines      []OrderLine `json:"lines"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// BillEvent captures a bill being closed out.
type BillEvent struct {
	EventType  string    `json:"event_type"`
	ShopID     int       `json:"shop_id"`
	TabID      int       `json:"tab_id"`
	BillID     int       `json:"bill_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
