package core

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"store-admin/internal/store"
)

const (
	maxCouponBatch     = 100
	maxCodeAttempts    = 5
	couponRandomLength = 4
	couponAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// DefaultCouponPrefix starts every generated code unless configured otherwise.
	DefaultCouponPrefix = "CPN"
)

// CouponLedger issues and maintains discount coupons.
type CouponLedger interface {
	Generate(ctx context.Context, in GenerateCouponsInput) ([]Coupon, error)
	Edit(ctx context.Context, id string, in EditCouponInput) (*Coupon, error)
	ToggleActive(ctx context.Context, id string) (*Coupon, error)
	Delete(ctx context.Context, id string) error
	// List returns every coupon, newest first.
	List(ctx context.Context) ([]Coupon, error)
	// Redeem consumes one use of the coupon with the given code.
	Redeem(ctx context.Context, code string) (*Coupon, error)
}

// CouponLedgerOptions configures a CouponLedger. Zero values select the defaults.
type CouponLedgerOptions struct {
	Collection string
	Prefix     string
	Now        Clock
	// Rand feeds the random part of generated codes; crypto/rand when nil.
	Rand io.Reader
}

type couponLedger struct {
	store      store.DocumentStore
	collection string
	prefix     string
	now        Clock
	rand       io.Reader
}

func NewCouponLedger(ds store.DocumentStore, opts CouponLedgerOptions) CouponLedger {
	l := &couponLedger{
		store:      ds,
		collection: opts.Collection,
		prefix:     strings.ToUpper(strings.TrimSpace(opts.Prefix)),
		now:        opts.Now.orSystem(),
		rand:       opts.Rand,
	}
	if l.collection == "" {
		l.collection = DefaultSharedCollections().Coupons
	}
	if l.prefix == "" {
		l.prefix = DefaultCouponPrefix
	}
	if l.rand == nil {
		l.rand = rand.Reader
	}
	return l
}

func (l *couponLedger) Generate(ctx context.Context, in GenerateCouponsInput) ([]Coupon, error) {
	const op = "generate coupons"
	if !in.Amount.IsPositive() {
		return nil, Validationf(op, "amount must be greater than zero")
	}
	if in.DurationDays <= 0 {
		return nil, Validationf(op, "duration must be at least one day")
	}
	if in.Quantity < 1 || in.Quantity > maxCouponBatch {
		return nil, Validationf(op, "quantity must be between 1 and %d, got %d", maxCouponBatch, in.Quantity)
	}
	if _, err := ParseCurrency(string(in.Currency)); err != nil {
		return nil, err
	}
	if err := in.Issuer.validate(op); err != nil {
		return nil, err
	}

	now := toMillis(l.now())
	expires := now.Add(time.Duration(in.DurationDays) * 24 * time.Hour)
	taken := make(map[string]bool, in.Quantity)

	coupons := make([]Coupon, 0, in.Quantity)
	ops := make([]store.WriteOp, 0, in.Quantity)
	for i := 0; i < in.Quantity; i++ {
		code, err := l.uniqueCode(ctx, now, taken)
		if err != nil {
			return nil, err
		}
		c := Coupon{
			ID:        uuid.NewString(),
			Code:      code,
			Amount:    in.Amount,
			Currency:  in.Currency,
			Duration:  in.DurationDays,
			CreatedAt: At(now),
			ExpiresAt: At(expires),
			IsActive:  true,
			MaxUses:   1,
			CreatedBy: in.Issuer.UID,
		}
		coupons = append(coupons, c)
		ops = append(ops, store.WriteOp{Kind: store.OpInsert, Collection: l.collection, ID: c.ID, Data: c})
	}

	if err := l.store.BatchWrite(ctx, ops); err != nil {
		return nil, storeErr(op, err)
	}
	return coupons, nil
}

// uniqueCode draws codes until one is unused in both the store and the current batch.
func (l *couponLedger) uniqueCode(ctx context.Context, now time.Time, taken map[string]bool) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := l.newCode(now)
		if err != nil {
			return "", &Error{Kind: KindStore, Op: "generate coupon code", Err: err}
		}
		if taken[code] {
			continue
		}
		docs, err := l.store.QueryByEquality(ctx, l.collection, "code", code)
		if err != nil {
			return "", storeErr("generate coupon code", err)
		}
		if len(docs) > 0 {
			continue
		}
		taken[code] = true
		return code, nil
	}
	return "", Preconditionf("generate coupon code", "no unique code after %d attempts", maxCodeAttempts)
}

// newCode returns PREFIX-base36(unix millis)-XXXX.
func (l *couponLedger) newCode(now time.Time) (string, error) {
	buf := make([]byte, couponRandomLength)
	if _, err := io.ReadFull(l.rand, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = couponAlphabet[int(b)%len(couponAlphabet)]
	}
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return l.prefix + "-" + stamp + "-" + string(buf), nil
}

func (l *couponLedger) Edit(ctx context.Context, id string, in EditCouponInput) (*Coupon, error) {
	const op = "edit coupon"
	if in.Amount == nil && in.DurationDays == nil {
		return nil, Validationf(op, "nothing to change")
	}
	if in.Amount != nil && !in.Amount.IsPositive() {
		return nil, Validationf(op, "amount must be greater than zero")
	}
	if in.DurationDays != nil && *in.DurationDays <= 0 {
		return nil, Validationf(op, "duration must be at least one day")
	}

	var result *Coupon
	err := l.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		c, err := l.lockCoupon(ctx, tx, op, id)
		if err != nil {
			return err
		}
		now := toMillis(l.now())
		fields := map[string]any{"updatedAt": At(now)}
		if in.Amount != nil {
			c.Amount = *in.Amount
			fields["amount"] = c.Amount
		}
		// Extending a coupon measures the new duration from the edit, not from creation.
		if in.DurationDays != nil && *in.DurationDays != c.Duration {
			c.Duration = *in.DurationDays
			c.ExpiresAt = At(now.Add(time.Duration(c.Duration) * 24 * time.Hour))
			fields["duration"] = c.Duration
			fields["expiresAt"] = c.ExpiresAt
		}
		c.UpdatedAt = At(now)
		if err := tx.Update(ctx, l.collection, c.ID, fields); err != nil {
			return storeErr(op, err)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (l *couponLedger) ToggleActive(ctx context.Context, id string) (*Coupon, error) {
	const op = "toggle coupon"
	var result *Coupon
	err := l.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		c, err := l.lockCoupon(ctx, tx, op, id)
		if err != nil {
			return err
		}
		c.IsActive = !c.IsActive
		c.UpdatedAt = At(toMillis(l.now()))
		if err := tx.Update(ctx, l.collection, c.ID, map[string]any{
			"isActive":  c.IsActive,
			"updatedAt": c.UpdatedAt,
		}); err != nil {
			return storeErr(op, err)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (l *couponLedger) Delete(ctx context.Context, id string) error {
	if id == "" {
		return Validationf("delete coupon", "coupon id is required")
	}
	return storeErr("delete coupon", l.store.Delete(ctx, l.collection, id))
}

func (l *couponLedger) List(ctx context.Context) ([]Coupon, error) {
	docs, err := l.store.QueryOrdered(ctx, l.collection, "createdAt", store.Desc)
	if err != nil {
		return nil, storeErr("list coupons", err)
	}
	coupons, err := decodeAll[Coupon](docs)
	if err != nil {
		return nil, storeErr("list coupons", err)
	}
	return coupons, nil
}

func (l *couponLedger) Redeem(ctx context.Context, code string) (*Coupon, error) {
	const op = "redeem coupon"
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, Validationf(op, "coupon code is required")
	}

	var result *Coupon
	err := l.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		docs, err := tx.QueryByEquality(ctx, l.collection, "code", code)
		if err != nil {
			return storeErr(op, err)
		}
		if len(docs) == 0 {
			return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf("no coupon with code %s", code)}
		}
		c, err := l.lockCoupon(ctx, tx, op, docs[0].ID)
		if err != nil {
			return err
		}

		now := toMillis(l.now())
		switch {
		case !c.IsActive:
			return Preconditionf(op, "coupon %s is inactive", code)
		case IsExpired(*c, now):
			return Preconditionf(op, "coupon %s expired at %s", code, c.ExpiresAt)
		case !IsRedeemable(*c, now):
			return Preconditionf(op, "coupon %s has no uses left", code)
		}

		c.UsedCount++
		c.LastUsedAt = At(now)
		if err := tx.Update(ctx, l.collection, c.ID, map[string]any{
			"usedCount":  c.UsedCount,
			"lastUsedAt": c.LastUsedAt,
		}); err != nil {
			return storeErr(op, err)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (l *couponLedger) lockCoupon(ctx context.Context, tx store.Tx, op, id string) (*Coupon, error) {
	if id == "" {
		return nil, Validationf(op, "coupon id is required")
	}
	doc, err := tx.GetForUpdate(ctx, l.collection, id)
	if err != nil {
		return nil, storeErr(op, err)
	}
	c, err := decodeOne[Coupon](doc)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return c, nil
}
