package app

import (
	"github.com/shopspring/decimal"

	"store-admin/internal/core"
)

// SyncProductRequest is the input for copying a product between currency stores.
type SyncProductRequest struct {
	Source    string
	Target    string
	ProductID string
	Rate      decimal.Decimal
}

// GenerateCouponsRequest is the input for issuing a batch of identical coupons.
type GenerateCouponsRequest struct {
	Amount       decimal.Decimal
	Currency     string
	DurationDays int
	Quantity     int
	Issuer       core.Actor
}
