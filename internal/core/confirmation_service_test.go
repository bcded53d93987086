package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"store-admin/internal/core"
	"store-admin/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAwaitingOrder(t *testing.T, ds store.DocumentStore, cfg core.StoreConfig, id, status string) {
	t.Helper()
	seed(t, ds, cfg.Orders, id, map[string]any{
		"orderId":  "ORD-" + id,
		"currency": string(cfg.Currency),
		"items": []map[string]any{
			{"id": "p1", "name": "Mango Box", "price": 12.5, "quantity": 2},
			{"id": "p2", "name": "Berry Box", "price": 5, "quantity": 1, "imageUrl": "https://img/berry.png"},
		},
		"totalItems":     3,
		"totalPrice":     30,
		"status":         status,
		"adminConfirmed": false,
		"paymentId":      "pay_123",
		"txid":           "tx_abc",
		"customerName":   "Mona",
		"customerPhone":  "+20100000000",
		"address":        "12 Nile St",
		"governorate":    "giza",
		"city":           "Dokki",
		"location":       map[string]any{"lat": 30.03, "lng": 31.21},
		"shippingCost":   50,
		"createdAt":      map[string]any{"seconds": testNow.Add(-48 * time.Hour).Unix(), "nanoseconds": 0},
	})
}

func TestConfirm_PayInAdvanceStore(t *testing.T) {
	ds, clock := newTestStore(t)
	ctx := context.Background()
	seedAwaitingOrder(t, ds, piStore, "o1", core.OrderStatusCompleted)

	svc := core.NewConfirmationService(ds, clock.Now)
	images := map[string]string{"p1": "https://img/mango.png"}

	p, err := svc.Confirm(ctx, piStore, core.Order{ID: "o1"}, admin, images)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "o1", p.OriginalOrderID)
	assert.Equal(t, "ORD-o1", p.OrderID)
	assert.Equal(t, core.CurrencyPI, p.Currency)
	assert.Equal(t, core.PaymentStatusConfirmed, p.Status)
	assert.Equal(t, core.ShippingPending, p.ShippingStatus)
	assert.Equal(t, "admin-1", p.ConfirmedBy)
	assert.Equal(t, "admin@example.com", p.ConfirmedByEmail)
	assert.True(t, testNow.Equal(p.ConfirmedAt.Time))
	assert.True(t, testNow.Add(-48*time.Hour).Equal(p.OriginalCreatedAt.Time))
	assert.Equal(t, 3, p.TotalItems)
	assert.True(t, decimal.NewFromInt(30).Equal(p.TotalPrice))
	assert.Equal(t, "pay_123", p.PaymentID)
	assert.Equal(t, "tx_abc", p.TXID)
	assert.Nil(t, p.CustomerInfo, "pay-in-advance stores carry no delivery block")

	require.Len(t, p.Items, 2)
	assert.Equal(t, "https://img/mango.png", p.Items[0].ImageURL, "missing image resolved from the product index")
	assert.Equal(t, "https://img/berry.png", p.Items[1].ImageURL, "item image wins over the index")
	assert.True(t, decimal.NewFromInt(25).Equal(p.Items[0].Subtotal))

	stored := load[core.ConfirmedPayment](t, ds, piStore.ConfirmedPayments, p.ID)
	assert.Equal(t, p.OriginalOrderID, stored.OriginalOrderID)
	assert.True(t, p.ConfirmedAt.Equal(stored.ConfirmedAt.Time))

	order := load[core.Order](t, ds, piStore.Orders, "o1")
	assert.True(t, order.AdminConfirmed)
	assert.Equal(t, "admin-1", order.AdminConfirmedBy)
	assert.Equal(t, core.ShippingPending, order.ShippingStatus)
	assert.True(t, testNow.Equal(order.AdminConfirmedAt.Time))
}

func TestConfirm_CashOnDeliveryStore(t *testing.T) {
	ds, clock := newTestStore(t)
	ctx := context.Background()
	seedAwaitingOrder(t, ds, egpStore, "o1", core.OrderStatusPending)

	svc := core.NewConfirmationService(ds, clock.Now)
	p, err := svc.Confirm(ctx, egpStore, core.Order{ID: "o1"}, admin, nil)
	require.NoError(t, err)

	assert.Empty(t, p.PaymentID)
	assert.Empty(t, p.TXID)
	require.NotNil(t, p.CustomerInfo)
	assert.Equal(t, "Mona", p.CustomerInfo.Name)
	assert.Equal(t, "+20100000000", p.CustomerInfo.Phone)
	assert.Equal(t, "12 Nile St", p.CustomerInfo.Address)
	assert.Equal(t, "giza", p.CustomerInfo.Governorate)
	require.NotNil(t, p.CustomerInfo.Location)
	assert.InDelta(t, 30.03, p.CustomerInfo.Location.Lat, 1e-9)
	assert.True(t, decimal.NewFromInt(50).Equal(p.CustomerInfo.ShippingCost))
	assert.Empty(t, p.Items[0].ImageURL, "unresolvable image degrades to empty")

	assert.Equal(t, 1, ds.Count(egpStore.ConfirmedPayments))
	assert.Equal(t, 0, ds.Count(piStore.ConfirmedPayments), "stores are isolated by collection")
}

func TestConfirm_TwiceYieldsOnePayment(t *testing.T) {
	ds, clock := newTestStore(t)
	ctx := context.Background()
	seedAwaitingOrder(t, ds, usdStore, "o1", core.OrderStatusCompleted)
	svc := core.NewConfirmationService(ds, clock.Now)

	first, err := svc.Confirm(ctx, usdStore, core.Order{ID: "o1"}, admin, nil)
	require.NoError(t, err)

	clock.Advance(time.Minute)
	second, err := svc.Confirm(ctx, usdStore, core.Order{ID: "o1"}, admin, nil)
	require.Error(t, err)
	assert.Nil(t, second)
	assert.True(t, errors.Is(err, core.ErrAlreadyConfirmed))
	assert.True(t, core.IsPrecondition(err))

	var already *core.AlreadyConfirmedError
	require.True(t, errors.As(err, &already))
	require.NotNil(t, already.Existing, "caller can treat the repeat as success")
	assert.Equal(t, first.ID, already.Existing.ID)

	assert.Equal(t, 1, ds.Count(usdStore.ConfirmedPayments))
}

func TestConfirm_StaleSnapshotIsIgnored(t *testing.T) {
	ds, clock := newTestStore(t)
	ctx := context.Background()
	seedAwaitingOrder(t, ds, piStore, "o1", core.OrderStatusCompleted)
	svc := core.NewConfirmationService(ds, clock.Now)

	_, err := svc.Confirm(ctx, piStore, core.Order{ID: "o1"}, admin, nil)
	require.NoError(t, err)

	// A second admin still holding the unconfirmed snapshot.
	stale := core.Order{ID: "o1", Status: core.OrderStatusCompleted, AdminConfirmed: false}
	_, err = svc.Confirm(ctx, piStore, stale, core.Actor{UID: "admin-2"}, nil)
	assert.True(t, errors.Is(err, core.ErrAlreadyConfirmed))
	assert.Equal(t, 1, ds.Count(piStore.ConfirmedPayments))
}

func TestConfirm_CompletesEarlierPartialConfirmation(t *testing.T) {
	ds, clock := newTestStore(t)
	ctx := context.Background()
	seedAwaitingOrder(t, ds, piStore, "o1", core.OrderStatusCompleted)
	// Payment written, order update lost.
	seed(t, ds, piStore.ConfirmedPayments, "cp-old", map[string]any{
		"originalOrderId": "o1",
		"orderId":         "ORD-o1",
		"totalPrice":      30,
		"status":          core.PaymentStatusConfirmed,
		"shippingStatus":  core.ShippingPending,
		"confirmedAt":     "2026-03-09T10:00:00.000Z",
	})

	svc := core.NewConfirmationService(ds, clock.Now)
	p, err := svc.Confirm(ctx, piStore, core.Order{ID: "o1"}, admin, nil)
	require.NoError(t, err)
	assert.Equal(t, "cp-old", p.ID)
	assert.Equal(t, 1, ds.Count(piStore.ConfirmedPayments))
	assert.True(t, load[core.Order](t, ds, piStore.Orders, "o1").AdminConfirmed)
}

func TestConfirm_RollsBackWhenOrderUpdateFails(t *testing.T) {
	mem, clock := newTestStore(t)
	ctx := context.Background()
	seedAwaitingOrder(t, mem, piStore, "o1", core.OrderStatusCompleted)

	ds := &failingStore{MemoryStore: mem, failUpdates: piStore.Orders}
	svc := core.NewConfirmationService(ds, clock.Now)

	_, err := svc.Confirm(ctx, piStore, core.Order{ID: "o1"}, admin, nil)
	require.Error(t, err)
	assert.True(t, core.IsStore(err))
	assert.Equal(t, 0, mem.Count(piStore.ConfirmedPayments), "payment insert rolled back with the failed order update")
	assert.False(t, load[core.Order](t, mem, piStore.Orders, "o1").AdminConfirmed)

	// Retry once the store recovers.
	p, err := core.NewConfirmationService(mem, clock.Now).Confirm(ctx, piStore, core.Order{ID: "o1"}, admin, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 1, mem.Count(piStore.ConfirmedPayments))
}

func TestConfirm_Rejections(t *testing.T) {
	ds, clock := newTestStore(t)
	ctx := context.Background()
	seed(t, ds, piStore.Orders, "cancelled", map[string]any{"status": "cancelled", "adminConfirmed": false})
	seedAwaitingOrder(t, ds, piStore, "o1", core.OrderStatusCompleted)
	svc := core.NewConfirmationService(ds, clock.Now)

	tests := []struct {
		name  string
		cfg   core.StoreConfig
		order core.Order
		actor core.Actor
		check func(error) bool
	}{
		{"missing actor", piStore, core.Order{ID: "o1"}, core.Actor{}, core.IsValidation},
		{"missing order id", piStore, core.Order{}, admin, core.IsValidation},
		{"unknown order", piStore, core.Order{ID: "nope"}, admin, core.IsNotFound},
		{"wrong status", piStore, core.Order{ID: "cancelled"}, admin, core.IsPrecondition},
		{"order lives in another store", egpStore, core.Order{ID: "o1"}, admin, core.IsNotFound},
		{"invalid store config", core.StoreConfig{Currency: core.CurrencyPI}, core.Order{ID: "o1"}, admin, core.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Confirm(ctx, tt.cfg, tt.order, tt.actor, nil)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
		})
	}
	assert.Equal(t, 0, ds.Count(piStore.ConfirmedPayments))
}

func TestMarkShipped(t *testing.T) {
	ds, clock := newTestStore(t)
	ctx := context.Background()
	seedAwaitingOrder(t, ds, egpStore, "o1", core.OrderStatusPending)
	svc := core.NewConfirmationService(ds, clock.Now)

	p, err := svc.Confirm(ctx, egpStore, core.Order{ID: "o1"}, admin, nil)
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	shipped, err := svc.MarkShipped(ctx, egpStore, p.ID, core.Actor{UID: "courier-desk"})
	require.NoError(t, err)
	assert.Equal(t, core.ShippingShipped, shipped.ShippingStatus)
	assert.Equal(t, "courier-desk", shipped.ShippedBy)
	assert.True(t, testNow.Add(24*time.Hour).Equal(shipped.ShippedAt.Time))

	assert.Equal(t, core.ShippingShipped, load[core.ConfirmedPayment](t, ds, egpStore.ConfirmedPayments, p.ID).ShippingStatus)
	assert.Equal(t, core.ShippingShipped, load[core.Order](t, ds, egpStore.Orders, "o1").ShippingStatus)

	_, err = svc.MarkShipped(ctx, egpStore, p.ID, admin)
	assert.True(t, core.IsPrecondition(err))

	_, err = svc.MarkShipped(ctx, egpStore, "missing", admin)
	assert.True(t, core.IsNotFound(err))
}
