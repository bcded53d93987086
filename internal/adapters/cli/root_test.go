package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"store-admin/internal/adapters/cli"
	"store-admin/internal/app"
	"store-admin/internal/core"
	"store-admin/internal/store"
)

var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func memoryDeps(ds store.DocumentStore) cli.Deps {
	svc := app.NewAppService(ds, app.Settings{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	}, zap.NewNop())
	return cli.Deps{
		Service: func(context.Context) (app.ApplicationService, func(), error) {
			return svc, func() {}, nil
		},
		JWTSecret: "test-secret",
	}
}

func run(t *testing.T, deps cli.Deps, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCommand(deps)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedShipping(t *testing.T) {
	ds := store.NewMemoryStore()
	out, err := run(t, memoryDeps(ds), "seed-shipping")
	require.NoError(t, err)
	assert.Contains(t, out, "SHIPPING COSTS (27 governorates)")
	assert.Contains(t, out, "cairo")
	assert.Equal(t, len(core.Governorates()), ds.Count(core.DefaultSharedCollections().ShippingCosts))
}

func TestCouponsGenerateAndExport(t *testing.T) {
	deps := memoryDeps(store.NewMemoryStoreWithClock(func() time.Time { return testNow }))

	out, err := run(t, deps, "coupons", "generate", "--amount", "25", "--currency", "usd", "--days", "7", "--quantity", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "GENERATED COUPONS (3)")
	assert.Equal(t, 3, strings.Count(out, core.DefaultCouponPrefix+"-"))

	out, err = run(t, deps, "coupons", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "PRINTABLE COUPONS (3)")
	assert.Contains(t, out, "25.00")

	_, err = run(t, deps, "coupons", "generate", "--amount", "ten")
	assert.Error(t, err)

	_, err = run(t, deps, "coupons", "generate")
	assert.Error(t, err, "--amount is required")
}

func TestStatsAndSync(t *testing.T) {
	ds := store.NewMemoryStoreWithClock(func() time.Time { return testNow })
	deps := memoryDeps(ds)
	svc, _, err := deps.Service(context.Background())
	require.NoError(t, err)

	p, err := svc.CreateProduct(context.Background(), "PI", core.ProductInput{
		Name: "Mango Box", Price: decimal.NewFromInt(2), Flavors: []string{"mango"},
	})
	require.NoError(t, err)

	out, err := run(t, deps, "sync", "--from", "PI", "--to", "USD", "--rate", "1.5", "--product", p.Product.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "created "), out)
	assert.Contains(t, out, "at 3.00 (synced)")

	out, err = run(t, deps, "sync", "--from", "PI", "--to", "USD", "--rate", "1.5", "--product", p.Product.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "updated "), out)

	out, err = run(t, deps, "stats", "--store", "usd")
	require.NoError(t, err)
	assert.Contains(t, out, "USD store, range all")
	assert.Contains(t, out, "mango")

	out, err = run(t, deps, "stats", "--store", "usd", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"totalProducts": 1`)

	_, err = run(t, deps, "stats", "--range", "forever")
	assert.True(t, core.IsValidation(err))
}

func TestMigrate(t *testing.T) {
	_, err := run(t, memoryDeps(store.NewMemoryStore()), "migrate")
	assert.Error(t, err)

	deps := memoryDeps(store.NewMemoryStore())
	deps.Migrate = func() (uint, error) { return 2, nil }
	out, err := run(t, deps, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "schema at version 2\n", out)
}

func TestToken(t *testing.T) {
	out, err := run(t, memoryDeps(store.NewMemoryStore()), "token", "--uid", "admin-1", "--email", "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(strings.TrimSpace(out), ".")), "a compact JWT has three segments")

	deps := memoryDeps(store.NewMemoryStore())
	deps.JWTSecret = ""
	_, err = run(t, deps, "token", "--uid", "admin-1")
	assert.Error(t, err)
}
