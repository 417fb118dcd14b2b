package shop

import (
	"time"

	"github.com/willtrojniak/TabApp/internal/authz"
)

const (
	PaymentMethodChartstring = "chartstring"
	PaymentMethodInPerson    = "in person"
)

type Shop struct {
	ID             int       `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Name           string    `json:"name"`
	PaymentMethods []string  `json:"payment_methods"`
	CreatedAt      time.Time `json:"created_at"`
}

type Location struct {
	ID     int    `json:"id"`
	ShopID int    `json:"shop_id"`
	Name   string `json:"name"`
}

// Detail is the single-shop payload, overview plus locations.
type Detail struct {
	Shop
	Locations []Location `json:"locations"`
}

// Member is a staff membership row joined with the account.
type Member struct {
	UserID        string     `json:"user_id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	PreferredName string     `json:"preferred_name,omitempty"`
	Roles         authz.Role `json:"roles"`
	Confirmed     bool       `json:"confirmed"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type ShopCreate struct {
	Name           string   `json:"name" binding:"required,min=1,max=64"`
	PaymentMethods []string `json:"payment_methods" binding:"required"`
}

type LocationCreate struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
}

type InviteCreate struct {
	Email string     `json:"email" binding:"required,email"`
	Roles authz.Role `json:"roles"`
}
