package app

import (
	"context"

	"github.com/shopspring/decimal"

	"store-admin/internal/core"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// Currency arguments are store codes ("PI", "egp"); unknown codes are validation errors.
// Implementations contain no display logic of any kind.
type ApplicationService interface {
	// ── Orders ───────────────────────────────────────────────────────────────

	// ListOrders returns the orders of a store, newest first. filter is all, awaiting or confirmed.
	ListOrders(ctx context.Context, currency, filter string) (*OrderListResult, error)

	// GetOrder returns a single order by document id.
	GetOrder(ctx context.Context, currency, id string) (*OrderResult, error)

	// ConfirmOrder confirms an order for shipping. Repeating the call for a confirmed order
	// returns the existing payment with AlreadyConfirmed set.
	ConfirmOrder(ctx context.Context, currency, id string, actor core.Actor) (*ConfirmResult, error)

	// ListPayments returns the confirmed payments of a store, newest first.
	ListPayments(ctx context.Context, currency string) (*PaymentListResult, error)

	// ShipPayment marks a confirmed payment and its source order as shipped.
	ShipPayment(ctx context.Context, currency, id string, actor core.Actor) (*PaymentResult, error)

	// ── Catalog ──────────────────────────────────────────────────────────────

	ListProducts(ctx context.Context, currency string) (*ProductListResult, error)
	GetProduct(ctx context.Context, currency, id string) (*ProductResult, error)
	CreateProduct(ctx context.Context, currency string, in core.ProductInput) (*ProductResult, error)
	UpdateProduct(ctx context.Context, currency, id string, in core.ProductUpdate) (*ProductResult, error)
	DeleteProduct(ctx context.Context, currency, id string) error

	// AdjustStock adds delta (negative to remove) to a product's stock.
	AdjustStock(ctx context.Context, currency, id string, delta int) (*ProductResult, error)

	// SyncProduct copies a product into another currency store at the given rate.
	SyncProduct(ctx context.Context, req SyncProductRequest) (*core.SyncResult, error)

	// ── Statistics ───────────────────────────────────────────────────────────

	// GetStatistics aggregates the dashboard view of a store over a date range.
	GetStatistics(ctx context.Context, currency, dateRange string) (*StatisticsResult, error)

	// ── Coupons ──────────────────────────────────────────────────────────────

	ListCoupons(ctx context.Context) (*CouponListResult, error)
	GenerateCoupons(ctx context.Context, req GenerateCouponsRequest) (*CouponListResult, error)
	EditCoupon(ctx context.Context, id string, in core.EditCouponInput) (*CouponResult, error)
	ToggleCoupon(ctx context.Context, id string) (*CouponResult, error)
	DeleteCoupon(ctx context.Context, id string) error

	// ExportCoupons returns the printable coupons: active, unexpired and unused.
	ExportCoupons(ctx context.Context) (*CouponListResult, error)

	// RedeemCoupon consumes one use of a coupon by code.
	RedeemCoupon(ctx context.Context, code string) (*CouponResult, error)

	// ── Shipping ─────────────────────────────────────────────────────────────

	// ShippingCosts returns the cost of every governorate, seeding defaults on first use.
	ShippingCosts(ctx context.Context) (*ShippingCostsResult, error)
	UpdateShippingCost(ctx context.Context, governorateID string, cost decimal.Decimal) (*ShippingCostResult, error)
	MinimumOrderAmount(ctx context.Context) (decimal.Decimal, error)
	SetMinimumOrderAmount(ctx context.Context, amount decimal.Decimal) error
}
