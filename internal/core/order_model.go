package core

import "github.com/shopspring/decimal"

// Order statuses written by the storefront.
const (
	OrderStatusPending   = "pending"   // cash on delivery, placed unpaid
	OrderStatusCompleted = "completed" // paid online
)

// Shipping statuses shared by orders and confirmed payments.
const (
	ShippingPending = "pending"
	ShippingShipped = "shipped"
)

// PaymentStatusConfirmed is the fixed status of every ConfirmedPayment.
const PaymentStatusConfirmed = "confirmed_for_shipping"

// OrderItem is one line of an order snapshot.
type OrderItem struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	ImageURL string          `json:"imageUrl,omitempty"`
	Subtotal decimal.Decimal `json:"subtotal,omitzero"`
}

// Key groups items of the same product: the product id, or the name for items without one.
func (i OrderItem) Key() string {
	if i.ID != "" {
		return i.ID
	}
	return i.Name
}

// GeoPoint is a customer location picked on the storefront map.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Order is written by the storefront. The admin side only mutates the confirmation
// and shipping fields.
//
//	awaiting (status completed|pending, adminConfirmed=false)
//	  → confirmed (adminConfirmed=true, shippingStatus=pending)
//	  → shipped (shippingStatus=shipped)
type Order struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"orderId"`
	Currency         Currency        `json:"currency"`
	Items            []OrderItem     `json:"items"`
	TotalItems       int             `json:"totalItems"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	Status           string          `json:"status"`
	AdminConfirmed   bool            `json:"adminConfirmed"`
	AdminConfirmedAt Timestamp       `json:"adminConfirmedAt,omitzero"`
	AdminConfirmedBy string          `json:"adminConfirmedBy,omitempty"`
	ShippingStatus   string          `json:"shippingStatus,omitempty"`
	PaymentID        string          `json:"paymentId,omitempty"`
	TXID             string          `json:"txid,omitempty"`
	CustomerName     string          `json:"customerName,omitempty"`
	CustomerEmail    string          `json:"customerEmail,omitempty"`
	CustomerPhone    string          `json:"customerPhone,omitempty"`
	Address          string          `json:"address,omitempty"`
	Governorate      string          `json:"governorate,omitempty"`
	City             string          `json:"city,omitempty"`
	Location         *GeoPoint       `json:"location,omitempty"`
	ShippingCost     decimal.Decimal `json:"shippingCost,omitzero"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        Timestamp       `json:"createdAt"`
}

func (o *Order) SetID(id string) { o.ID = id }

// Awaiting reports whether the order still needs admin confirmation.
func (o Order) Awaiting() bool {
	return confirmableStatus(o.Status) && !o.AdminConfirmed
}

func confirmableStatus(status string) bool {
	return status == OrderStatusCompleted || status == OrderStatusPending
}

// CustomerInfo is the delivery block copied onto cash-on-delivery confirmations.
type CustomerInfo struct {
	Name         string          `json:"name"`
	Email        string          `json:"email,omitempty"`
	Phone        string          `json:"phone"`
	Address      string          `json:"address"`
	Governorate  string          `json:"governorate,omitempty"`
	City         string          `json:"city,omitempty"`
	Location     *GeoPoint       `json:"location,omitempty"`
	ShippingCost decimal.Decimal `json:"shippingCost,omitzero"`
	Notes        string          `json:"notes,omitempty"`
}

// ConfirmedPayment is the denormalized, append-only record of an admin confirmation.
// There is at most one per order, keyed by OriginalOrderID.
type ConfirmedPayment struct {
	ID                string          `json:"id"`
	OriginalOrderID   string          `json:"originalOrderId"`
	OrderID           string          `json:"orderId"`
	Currency          Currency        `json:"currency"`
	Items             []OrderItem     `json:"items"`
	TotalItems        int             `json:"totalItems"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
	OriginalCreatedAt Timestamp       `json:"originalCreatedAt"`
	ConfirmedBy       string          `json:"confirmedBy"`
	ConfirmedByEmail  string          `json:"confirmedByEmail"`
	ConfirmedAt       Timestamp       `json:"confirmedAt"`
	Status            string          `json:"status"`
	ShippingStatus    string          `json:"shippingStatus"`
	ShippedAt         Timestamp       `json:"shippedAt,omitzero"`
	ShippedBy         string          `json:"shippedBy,omitempty"`
	PaymentID         string          `json:"paymentId,omitempty"`
	TXID              string          `json:"txid,omitempty"`
	CustomerInfo      *CustomerInfo   `json:"customerInfo,omitempty"`
}

func (p *ConfirmedPayment) SetID(id string) { p.ID = id }

// OrderFilter selects orders for the admin order list.
type OrderFilter string

const (
	OrderFilterAll       OrderFilter = "all"
	OrderFilterAwaiting  OrderFilter = "awaiting"
	OrderFilterConfirmed OrderFilter = "confirmed"
)

// ParseOrderFilter accepts "", all, awaiting and confirmed.
func ParseOrderFilter(s string) (OrderFilter, error) {
	switch f := OrderFilter(s); f {
	case "":
		return OrderFilterAll, nil
	case OrderFilterAll, OrderFilterAwaiting, OrderFilterConfirmed:
		return f, nil
	default:
		return "", Validationf("parse order filter", "unknown order filter %q", s)
	}
}

func (f OrderFilter) match(o Order) bool {
	switch f {
	case OrderFilterAwaiting:
		return o.Awaiting()
	case OrderFilterConfirmed:
		return o.AdminConfirmed
	default:
		return true
	}
}
