package app

import (
	"github.com/shopspring/decimal"

	"store-admin/internal/core"
)

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Currency core.Currency `json:"currency"`
	Filter   string        `json:"filter"`
	Orders   []core.Order  `json:"orders"`
}

// OrderResult is returned by GetOrder.
type OrderResult struct {
	Order *core.Order `json:"order"`
}

// ConfirmResult is returned by ConfirmOrder.
type ConfirmResult struct {
	Payment          *core.ConfirmedPayment `json:"payment"`
	AlreadyConfirmed bool                   `json:"alreadyConfirmed"`
}

// PaymentListResult is returned by ListPayments.
type PaymentListResult struct {
	Currency core.Currency           `json:"currency"`
	Payments []core.ConfirmedPayment `json:"payments"`
}

// PaymentResult is returned by ShipPayment.
type PaymentResult struct {
	Payment *core.ConfirmedPayment `json:"payment"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Currency core.Currency  `json:"currency"`
	Products []core.Product `json:"products"`
}

// ProductResult is returned by single-product operations.
type ProductResult struct {
	Product *core.Product `json:"product"`
}

// StatisticsResult is returned by GetStatistics.
type StatisticsResult struct {
	Currency core.Currency       `json:"currency"`
	Range    core.DateRange      `json:"range"`
	View     core.StatisticsView `json:"statistics"`
}

// CouponListResult is returned by coupon listing, generation and export.
type CouponListResult struct {
	Coupons []core.Coupon `json:"coupons"`
}

// CouponResult is returned by single-coupon operations.
type CouponResult struct {
	Coupon *core.Coupon `json:"coupon"`
}

// ShippingCostsResult is returned by ShippingCosts. Costs is keyed by governorate id.
type ShippingCostsResult struct {
	Costs        map[string]decimal.Decimal     `json:"costs"`
	Governorates []core.GovernorateShippingCost `json:"governorates"`
}

// ShippingCostResult is returned by UpdateShippingCost.
type ShippingCostResult struct {
	Cost *core.GovernorateShippingCost `json:"cost"`
}
