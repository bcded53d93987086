package core_test

import (
	"context"
	"testing"
	"time"

	"store-admin/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestCatalogService_CreateListUpdateDelete(t *testing.T) {
	ds, clock := newTestStore(t)
	ctx := context.Background()
	svc := core.NewCatalogService(ds, clock.Now)

	older, err := svc.CreateProduct(ctx, egpStore, core.ProductInput{
		Name: " Mango Box ", Price: decimal.NewFromInt(120), PiecesPerBox: 6, Flavors: []string{"mango"}, Stock: intPtr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "Mango Box", older.Name)
	assert.Equal(t, core.CurrencyEGP, older.Currency)

	clock.Advance(time.Minute)
	newer, err := svc.CreateProduct(ctx, egpStore, core.ProductInput{Name: "Berry Box", Price: decimal.NewFromInt(90)})
	require.NoError(t, err)
	assert.NotNil(t, newer.Flavors)

	list, err := svc.ListProducts(ctx, egpStore)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID, "newest first")

	clock.Advance(time.Minute)
	name := "Mango Crate"
	price := decimal.NewFromInt(130)
	updated, err := svc.UpdateProduct(ctx, egpStore, older.ID, core.ProductUpdate{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Mango Crate", updated.Name)
	assert.Equal(t, 4, updated.StockOrZero(), "untouched fields survive")

	got, err := svc.GetProduct(ctx, egpStore, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mango Crate", got.Name)
	assert.True(t, price.Equal(got.Price))
	assert.True(t, testNow.Add(2*time.Minute).Equal(got.UpdatedAt.Time))

	require.NoError(t, svc.DeleteProduct(ctx, egpStore, older.ID))
	_, err = svc.GetProduct(ctx, egpStore, older.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestCatalogService_Validation(t *testing.T) {
	ds, clock := newTestStore(t)
	ctx := context.Background()
	svc := core.NewCatalogService(ds, clock.Now)

	bad := []core.ProductInput{
		{Name: "", Price: decimal.NewFromInt(1)},
		{Name: "Box", Price: decimal.Zero},
		{Name: "Box", Price: decimal.NewFromInt(1), PiecesPerBox: -1},
		{Name: "Box", Price: decimal.NewFromInt(1), Stock: intPtr(-3)},
	}
	for _, in := range bad {
		_, err := svc.CreateProduct(ctx, piStore, in)
		assert.True(t, core.IsValidation(err), "input %+v: got %v", in, err)
	}
	assert.Equal(t, 0, ds.Count(piStore.Products))

	p, err := svc.CreateProduct(ctx, piStore, core.ProductInput{Name: "Box", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	negative := decimal.NewFromInt(-1)
	_, err = svc.UpdateProduct(ctx, piStore, p.ID, core.ProductUpdate{Price: &negative})
	assert.True(t, core.IsValidation(err))
	_, err = svc.UpdateProduct(ctx, piStore, p.ID, core.ProductUpdate{})
	assert.True(t, core.IsValidation(err))
}

func TestCatalogService_AdjustStock(t *testing.T) {
	ds, clock := newTestStore(t)
	ctx := context.Background()
	svc := core.NewCatalogService(ds, clock.Now)
	p, err := svc.CreateProduct(ctx, usdStore, core.ProductInput{Name: "Box", Price: decimal.NewFromInt(3)})
	require.NoError(t, err)

	p, err = svc.AdjustStock(ctx, usdStore, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, p.StockOrZero())

	p, err = svc.AdjustStock(ctx, usdStore, p.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, p.StockOrZero())

	_, err = svc.AdjustStock(ctx, usdStore, p.ID, -1)
	assert.True(t, core.IsPrecondition(err))
	assert.Equal(t, 0, load[core.Product](t, ds, usdStore.Products, p.ID).StockOrZero())

	_, err = svc.AdjustStock(ctx, usdStore, "missing", 1)
	assert.True(t, core.IsNotFound(err))
}

func TestImageIndex(t *testing.T) {
	idx := core.ImageIndex([]core.Product{
		{ID: "a", ImageURL: "https://img/a.png"},
		{ID: "b"},
		{ImageURL: "https://img/orphan.png"},
	})
	assert.Equal(t, map[string]string{"a": "https://img/a.png"}, idx)
}
