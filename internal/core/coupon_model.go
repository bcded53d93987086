package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon is a discount code. Expiry is computed from ExpiresAt at read time and never stored.
type Coupon struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   Currency        `json:"currency"`
	Duration   int             `json:"duration"` // days
	CreatedAt  Timestamp       `json:"createdAt"`
	ExpiresAt  Timestamp       `json:"expiresAt"`
	IsActive   bool            `json:"isActive"`
	UsedCount  int             `json:"usedCount"`
	MaxUses    int             `json:"maxUses"`
	CreatedBy  string          `json:"createdBy"`
	UpdatedAt  Timestamp       `json:"updatedAt,omitzero"`
	LastUsedAt Timestamp       `json:"lastUsedAt,omitzero"`
}

func (c *Coupon) SetID(id string) { c.ID = id }

// IsExpired reports whether now is past the coupon's expiry.
func IsExpired(c Coupon, now time.Time) bool {
	return now.After(c.ExpiresAt.Time)
}

// IsRedeemable reports whether the coupon is active, unexpired and has uses left.
func IsRedeemable(c Coupon, now time.Time) bool {
	return c.IsActive && !IsExpired(c, now) && c.UsedCount < c.maxUses()
}

// ExportSelection returns the coupons eligible for printing: active, unexpired and never used.
func ExportSelection(coupons []Coupon, now time.Time) []Coupon {
	out := make([]Coupon, 0, len(coupons))
	for _, c := range coupons {
		if c.IsActive && !IsExpired(c, now) && c.UsedCount == 0 {
			out = append(out, c)
		}
	}
	return out
}

// maxUses treats a missing maxUses field on older documents as single use.
func (c Coupon) maxUses() int {
	if c.MaxUses <= 0 {
		return 1
	}
	return c.MaxUses
}

// GenerateCouponsInput is a request to issue Quantity identical coupons.
type GenerateCouponsInput struct {
	Amount       decimal.Decimal `json:"amount"`
	Currency     Currency        `json:"currency"`
	DurationDays int             `json:"durationDays"`
	Quantity     int             `json:"quantity"`
	Issuer       Actor           `json:"-"`
}

// EditCouponInput is a partial coupon edit.
type EditCouponInput struct {
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	DurationDays *int             `json:"durationDays,omitempty"`
}
