package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"store-admin/internal/config"
	"store-admin/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, config.DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, core.DefaultCouponPrefix, cfg.Coupons.Prefix)
	assert.Equal(t, core.DefaultSharedCollections(), cfg.SharedCollections())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Cairo", loc.String())

	stores, err := cfg.StoreConfigs()
	require.NoError(t, err)
	assert.Equal(t, core.DefaultStoreConfigs(), stores)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	yaml := `
server:
  addr: ":9000"
store:
  driver: postgres
db:
  url: postgres://file/db
stores:
  egp:
    orders: legacy_orders_egp
coupons:
  prefix: EID
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("STOREADMIN_SERVER_ADDR", ":9100")
	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Server.Addr, "env wins over file")
	assert.Equal(t, "postgres://env/db", cfg.DB.URL)
	assert.Equal(t, config.DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "EID", cfg.Coupons.Prefix)

	stores, err := cfg.StoreConfigs()
	require.NoError(t, err)
	assert.Equal(t, "legacy_orders_egp", stores[core.CurrencyEGP].Orders)
	assert.Equal(t, "products_egp", stores[core.CurrencyEGP].Products, "unset fields keep defaults")
	assert.Equal(t, core.CashOnDelivery, stores[core.CurrencyEGP].PaymentMode)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"unknown driver", config.Config{Store: config.StoreDriverConfig{Driver: "redis"}}},
		{"postgres without url", config.Config{Store: config.StoreDriverConfig{Driver: config.DriverPostgres}}},
		{"bad timezone", config.Config{Store: config.StoreDriverConfig{Driver: config.DriverMemory}, Timezone: "Mars/Olympus"}},
		{"unknown store", config.Config{
			Store:  config.StoreDriverConfig{Driver: config.DriverMemory},
			Stores: map[string]config.StoreEntry{"btc": {Orders: "orders_btc"}},
		}},
		{"bad payment mode", config.Config{
			Store:  config.StoreDriverConfig{Driver: config.DriverMemory},
			Stores: map[string]config.StoreEntry{"usd": {PaymentMode: "barter"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the previous one when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
