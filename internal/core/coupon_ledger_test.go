package core_test

import (
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"store-admin/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var couponCode = regexp.MustCompile(`^CPN-[0-9A-Z]+-[0-9A-Z]{4}$`)

func generateInput(qty, days int) core.GenerateCouponsInput {
	return core.GenerateCouponsInput{
		Amount:       decimal.NewFromInt(25),
		Currency:     core.CurrencyEGP,
		DurationDays: days,
		Quantity:     qty,
		Issuer:       admin,
	}
}

func TestCouponLedger_Generate(t *testing.T) {
	ds, clock := newTestStore(t)
	ledger := core.NewCouponLedger(ds, core.CouponLedgerOptions{Now: clock.Now})

	coupons, err := ledger.Generate(context.Background(), generateInput(3, 7))
	require.NoError(t, err)
	require.Len(t, coupons, 3)

	seen := map[string]bool{}
	for _, c := range coupons {
		assert.Regexp(t, couponCode, c.Code)
		assert.False(t, seen[c.Code], "duplicate code %s", c.Code)
		seen[c.Code] = true

		assert.True(t, c.IsActive)
		assert.Equal(t, 0, c.UsedCount)
		assert.Equal(t, 1, c.MaxUses)
		assert.Equal(t, 7, c.Duration)
		assert.Equal(t, "admin-1", c.CreatedBy)
		assert.True(t, testNow.Add(7*24*time.Hour).Equal(c.ExpiresAt.Time))

		stored := load[core.Coupon](t, ds, "coupons", c.ID)
		assert.Equal(t, c.Code, stored.Code)
		assert.True(t, c.ExpiresAt.Equal(stored.ExpiresAt.Time))
	}
	assert.Equal(t, 3, ds.Count("coupons"))
}

func TestCouponLedger_GenerateValidation(t *testing.T) {
	ds, clock := newTestStore(t)
	ledger := core.NewCouponLedger(ds, core.CouponLedgerOptions{Now: clock.Now})

	tests := []struct {
		name   string
		modify func(*core.GenerateCouponsInput)
	}{
		{"zero amount", func(in *core.GenerateCouponsInput) { in.Amount = decimal.Zero }},
		{"negative amount", func(in *core.GenerateCouponsInput) { in.Amount = decimal.NewFromInt(-5) }},
		{"zero duration", func(in *core.GenerateCouponsInput) { in.DurationDays = 0 }},
		{"zero quantity", func(in *core.GenerateCouponsInput) { in.Quantity = 0 }},
		{"quantity over 100", func(in *core.GenerateCouponsInput) { in.Quantity = 101 }},
		{"unknown currency", func(in *core.GenerateCouponsInput) { in.Currency = "BTC" }},
		{"no issuer", func(in *core.GenerateCouponsInput) { in.Issuer = core.Actor{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := generateInput(1, 1)
			tt.modify(&in)
			_, err := ledger.Generate(context.Background(), in)
			assert.True(t, core.IsValidation(err), "got %v", err)
		})
	}

	_, err := ledger.Generate(context.Background(), generateInput(100, 1))
	require.NoError(t, err, "100 is the largest batch")
	assert.Equal(t, 100, ds.Count("coupons"))
}

func TestCouponLedger_GenerateRetriesCollidingCodes(t *testing.T) {
	ds, clock := newTestStore(t)
	stamp := strings.ToUpper(strconv.FormatInt(testNow.UnixMilli(), 36))
	seed(t, ds, "coupons", "existing", map[string]any{"code": "CPN-" + stamp + "-0000"})

	// Byte 0 maps to '0', byte 1 to '1', byte 2 to '2'.
	random := bytes.NewReader([]byte{0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2})
	ledger := core.NewCouponLedger(ds, core.CouponLedgerOptions{Now: clock.Now, Rand: random})

	coupons, err := ledger.Generate(context.Background(), generateInput(2, 1))
	require.NoError(t, err)
	require.Len(t, coupons, 2)
	assert.Equal(t, "CPN-"+stamp+"-1111", coupons[0].Code, "store collision retried")
	assert.Equal(t, "CPN-"+stamp+"-2222", coupons[1].Code, "in-batch collision retried")
}

func TestCouponLedger_GenerateGivesUpAfterRepeatedCollisions(t *testing.T) {
	ds, clock := newTestStore(t)
	ledger := core.NewCouponLedger(ds, core.CouponLedgerOptions{Now: clock.Now, Rand: bytes.NewReader(make([]byte, 64))})

	_, err := ledger.Generate(context.Background(), generateInput(2, 1))
	assert.True(t, core.IsPrecondition(err), "got %v", err)
	assert.Equal(t, 0, ds.Count("coupons"), "nothing is written when a batch fails")
}

func TestCouponLedger_CustomPrefix(t *testing.T) {
	ds, clock := newTestStore(t)
	ledger := core.NewCouponLedger(ds, core.CouponLedgerOptions{Now: clock.Now, Prefix: "eid", Collection: "promo"})

	coupons, err := ledger.Generate(context.Background(), generateInput(1, 1))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(coupons[0].Code, "EID-"))
	assert.Equal(t, 1, ds.Count("promo"))
}

func TestCoupon_ExpiryBoundary(t *testing.T) {
	ds, clock := newTestStore(t)
	ledger := core.NewCouponLedger(ds, core.CouponLedgerOptions{Now: clock.Now})
	coupons, err := ledger.Generate(context.Background(), generateInput(1, 1))
	require.NoError(t, err)
	c := coupons[0]

	assert.True(t, core.IsRedeemable(c, testNow))
	assert.True(t, core.IsRedeemable(c, testNow.Add(24*time.Hour)), "expiry instant itself is still valid")
	assert.False(t, core.IsRedeemable(c, testNow.Add(24*time.Hour+time.Second)))
	assert.True(t, core.IsExpired(c, testNow.Add(24*time.Hour+time.Second)))

	c.IsActive = false
	assert.True(t, core.IsExpired(c, testNow.Add(24*time.Hour+time.Second)), "expiry does not depend on isActive")
	assert.False(t, core.IsRedeemable(c, testNow))
}

func TestExportSelection(t *testing.T) {
	future := core.At(testNow.Add(time.Hour))
	past := core.At(testNow.Add(-time.Hour))
	coupons := []core.Coupon{
		{Code: "OK", IsActive: true, ExpiresAt: future},
		{Code: "USED", IsActive: true, ExpiresAt: future, UsedCount: 1, MaxUses: 3},
		{Code: "OFF", IsActive: false, ExpiresAt: future},
		{Code: "OLD", IsActive: true, ExpiresAt: past},
	}
	got := core.ExportSelection(coupons, testNow)
	require.Len(t, got, 1)
	assert.Equal(t, "OK", got[0].Code)
}

func TestCouponLedger_Edit(t *testing.T) {
	ds, clock := newTestStore(t)
	ctx := context.Background()
	ledger := core.NewCouponLedger(ds, core.CouponLedgerOptions{Now: clock.Now})
	coupons, err := ledger.Generate(ctx, generateInput(1, 10))
	require.NoError(t, err)
	id := coupons[0].ID

	clock.Advance(5 * 24 * time.Hour)
	amount := decimal.NewFromInt(40)
	same := 10
	edited, err := ledger.Edit(ctx, id, core.EditCouponInput{Amount: &amount, DurationDays: &same})
	require.NoError(t, err)
	assert.True(t, amount.Equal(edited.Amount))
	assert.True(t, testNow.Add(10*24*time.Hour).Equal(edited.ExpiresAt.Time), "unchanged duration keeps the expiry")

	three := 3
	edited, err = ledger.Edit(ctx, id, core.EditCouponInput{DurationDays: &three})
	require.NoError(t, err)
	assert.Equal(t, 3, edited.Duration)
	assert.True(t, testNow.Add(8*24*time.Hour).Equal(edited.ExpiresAt.Time), "new duration counts from the edit")

	stored := load[core.Coupon](t, ds, "coupons", id)
	assert.True(t, edited.ExpiresAt.Equal(stored.ExpiresAt.Time))
	assert.True(t, amount.Equal(stored.Amount))

	zero := decimal.Zero
	_, err = ledger.Edit(ctx, id, core.EditCouponInput{Amount: &zero})
	assert.True(t, core.IsValidation(err))
	_, err = ledger.Edit(ctx, id, core.EditCouponInput{})
	assert.True(t, core.IsValidation(err))
	_, err = ledger.Edit(ctx, "missing", core.EditCouponInput{Amount: &amount})
	assert.True(t, core.IsNotFound(err))
}

func TestCouponLedger_ToggleDeleteList(t *testing.T) {
	ds, clock := newTestStore(t)
	ctx := context.Background()
	ledger := core.NewCouponLedger(ds, core.CouponLedgerOptions{Now: clock.Now})

	first, err := ledger.Generate(ctx, generateInput(1, 1))
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := ledger.Generate(ctx, generateInput(1, 1))
	require.NoError(t, err)

	toggled, err := ledger.ToggleActive(ctx, first[0].ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)
	assert.True(t, first[0].ExpiresAt.Equal(toggled.ExpiresAt.Time))
	assert.Equal(t, 0, toggled.UsedCount)

	toggled, err = ledger.ToggleActive(ctx, first[0].ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)

	list, err := ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second[0].ID, list[0].ID, "newest first")

	require.NoError(t, ledger.Delete(ctx, first[0].ID))
	require.NoError(t, ledger.Delete(ctx, first[0].ID), "deleting twice is not an error")
	assert.Equal(t, 1, ds.Count("coupons"))
}

func TestCouponLedger_Redeem(t *testing.T) {
	ds, clock := newTestStore(t)
	ctx := context.Background()
	ledger := core.NewCouponLedger(ds, core.CouponLedgerOptions{Now: clock.Now})
	coupons, err := ledger.Generate(ctx, generateInput(3, 1))
	require.NoError(t, err)

	redeemed, err := ledger.Redeem(ctx, strings.ToLower(coupons[0].Code))
	require.NoError(t, err)
	assert.Equal(t, 1, redeemed.UsedCount)
	assert.True(t, testNow.Equal(redeemed.LastUsedAt.Time))
	assert.Equal(t, 1, load[core.Coupon](t, ds, "coupons", coupons[0].ID).UsedCount)

	_, err = ledger.Redeem(ctx, coupons[0].Code)
	assert.True(t, core.IsPrecondition(err), "single use")

	_, err = ledger.ToggleActive(ctx, coupons[1].ID)
	require.NoError(t, err)
	_, err = ledger.Redeem(ctx, coupons[1].Code)
	assert.True(t, core.IsPrecondition(err), "inactive")

	clock.Advance(24*time.Hour + time.Second)
	_, err = ledger.Redeem(ctx, coupons[2].Code)
	assert.True(t, core.IsPrecondition(err), "expired")

	_, err = ledger.Redeem(ctx, "CPN-NOPE-0000")
	assert.True(t, core.IsNotFound(err))
	_, err = ledger.Redeem(ctx, " ")
	assert.True(t, core.IsValidation(err))
}
