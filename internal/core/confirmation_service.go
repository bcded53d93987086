package core

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"store-admin/internal/store"
)

// ConfirmationService moves orders through admin confirmation and shipping.
type ConfirmationService interface {
	// Confirm verifies an awaiting order and records its ConfirmedPayment. The order is
	// re-read under a row lock; the passed snapshot only identifies it. images resolves
	// missing item images by product id and may be nil.
	// An order that is already confirmed fails with ErrAlreadyConfirmed; use
	// errors.As with *AlreadyConfirmedError to reach the existing payment.
	Confirm(ctx context.Context, cfg StoreConfig, order Order, actor Actor, images map[string]string) (*ConfirmedPayment, error)
	// MarkShipped moves a confirmed payment from shipping pending to shipped and mirrors
	// the shipping status onto its order.
	MarkShipped(ctx context.Context, cfg StoreConfig, paymentID string, actor Actor) (*ConfirmedPayment, error)
}

type confirmationService struct {
	store store.DocumentStore
	now   Clock
}

func NewConfirmationService(ds store.DocumentStore, now Clock) ConfirmationService {
	return &confirmationService{store: ds, now: now.orSystem()}
}

func (s *confirmationService) Confirm(ctx context.Context, cfg StoreConfig, order Order, actor Actor, images map[string]string) (*ConfirmedPayment, error) {
	const op = "confirm order"
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := actor.validate(op); err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, Validationf(op, "order id is required")
	}

	var result *ConfirmedPayment
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		doc, err := tx.GetForUpdate(ctx, cfg.Orders, order.ID)
		if err != nil {
			return storeErr(op, err)
		}
		current, err := decodeOne[Order](doc)
		if err != nil {
			return storeErr(op, err)
		}

		// A payment may already exist when an earlier confirmation stopped between its writes.
		existing, err := findPaymentForOrder(ctx, tx, cfg, current.ID)
		if err != nil {
			return err
		}
		if current.AdminConfirmed {
			return alreadyConfirmed(current.ID, existing)
		}
		if !confirmableStatus(current.Status) {
			return Preconditionf(op, "order %s has status %q, want %q or %q",
				current.ID, current.Status, OrderStatusCompleted, OrderStatusPending)
		}

		now := toMillis(s.now())
		if existing != nil {
			result = existing
		} else {
			payment := buildConfirmedPayment(cfg, *current, actor, images, At(now))
			id, err := tx.Insert(ctx, cfg.ConfirmedPayments, payment)
			if err != nil {
				return storeErr(op, err)
			}
			payment.ID = id
			result = &payment
		}

		err = tx.Update(ctx, cfg.Orders, current.ID, map[string]any{
			"adminConfirmed":   true,
			"adminConfirmedAt": At(now),
			"adminConfirmedBy": actor.UID,
			"shippingStatus":   ShippingPending,
		})
		return storeErr(op, err)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// buildConfirmedPayment copies the order into a ConfirmedPayment. Item images fall back to
// the product image index; a missing image stays empty.
func buildConfirmedPayment(cfg StoreConfig, o Order, actor Actor, images map[string]string, now Timestamp) ConfirmedPayment {
	items := make([]OrderItem, len(o.Items))
	totalItems := 0
	for i, it := range o.Items {
		if it.ImageURL == "" && it.ID != "" {
			it.ImageURL = images[it.ID]
		}
		it.Subtotal = it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		items[i] = it
		totalItems += it.Quantity
	}
	if o.TotalItems > 0 {
		totalItems = o.TotalItems
	}

	currency := o.Currency
	if currency == "" {
		currency = cfg.Currency
	}

	p := ConfirmedPayment{
		OriginalOrderID:   o.ID,
		OrderID:           o.OrderID,
		Currency:          currency,
		Items:             items,
		TotalItems:        totalItems,
		TotalPrice:        o.TotalPrice,
		OriginalCreatedAt: o.CreatedAt,
		ConfirmedBy:       actor.UID,
		ConfirmedByEmail:  actor.Email,
		ConfirmedAt:       now,
		Status:            PaymentStatusConfirmed,
		ShippingStatus:    ShippingPending,
	}

	switch cfg.PaymentMode {
	case PayInAdvance:
		p.PaymentID = o.PaymentID
		p.TXID = o.TXID
	case CashOnDelivery:
		p.CustomerInfo = &CustomerInfo{
			Name:         o.CustomerName,
			Email:        o.CustomerEmail,
			Phone:        o.CustomerPhone,
			Address:      o.Address,
			Governorate:  o.Governorate,
			City:         o.City,
			Location:     o.Location,
			ShippingCost: o.ShippingCost,
			Notes:        o.Notes,
		}
	}
	return p
}

func findPaymentForOrder(ctx context.Context, r store.Reader, cfg StoreConfig, orderID string) (*ConfirmedPayment, error) {
	docs, err := r.QueryByEquality(ctx, cfg.ConfirmedPayments, "originalOrderId", orderID)
	if err != nil {
		return nil, storeErr("find confirmed payment", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	p, err := decodeOne[ConfirmedPayment](&docs[0])
	if err != nil {
		return nil, storeErr("find confirmed payment", err)
	}
	return p, nil
}

func (s *confirmationService) MarkShipped(ctx context.Context, cfg StoreConfig, paymentID string, actor Actor) (*ConfirmedPayment, error) {
	const op = "mark shipped"
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := actor.validate(op); err != nil {
		return nil, err
	}
	if paymentID == "" {
		return nil, Validationf(op, "payment id is required")
	}

	var result *ConfirmedPayment
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		doc, err := tx.GetForUpdate(ctx, cfg.ConfirmedPayments, paymentID)
		if err != nil {
			return storeErr(op, err)
		}
		p, err := decodeOne[ConfirmedPayment](doc)
		if err != nil {
			return storeErr(op, err)
		}
		if p.ShippingStatus == ShippingShipped {
			return Preconditionf(op, "payment %s is already shipped", p.ID)
		}

		now := At(toMillis(s.now()))
		err = tx.Update(ctx, cfg.ConfirmedPayments, p.ID, map[string]any{
			"shippingStatus": ShippingShipped,
			"shippedAt":      now,
			"shippedBy":      actor.UID,
		})
		if err != nil {
			return storeErr(op, err)
		}

		if p.OriginalOrderID != "" {
			err = tx.Update(ctx, cfg.Orders, p.OriginalOrderID, map[string]any{"shippingStatus": ShippingShipped})
			// The storefront may have purged the order; the payment is authoritative.
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return storeErr(op, err)
			}
		}

		p.ShippingStatus = ShippingShipped
		p.ShippedAt = now
		p.ShippedBy = actor.UID
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
