package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-admin/internal/app"
	"store-admin/internal/config"
	"store-admin/internal/core"
)

func TestNewSettings(t *testing.T) {
	cfg := &config.Config{
		Timezone: "Africa/Cairo",
		Coupons:  config.CouponsConfig{Prefix: "EID"},
		Stores: map[string]config.StoreEntry{
			"egp": {Orders: "orders_cairo"},
		},
		Collections: config.CollectionsConfig{
			Coupons:       "coupons",
			ShippingCosts: "governorateShippingCosts",
			Settings:      "settings",
		},
	}

	s, err := app.NewSettings(cfg)
	require.NoError(t, err)
	assert.Equal(t, "Africa/Cairo", s.Location.String())
	assert.Equal(t, "EID", s.CouponPrefix)
	assert.Equal(t, "orders_cairo", s.Stores[core.CurrencyEGP].Orders)
	assert.Equal(t, "products_egp", s.Stores[core.CurrencyEGP].Products)
	assert.Equal(t, "orders", s.Stores[core.CurrencyPI].Orders)
	assert.Len(t, s.Regions, len(core.Governorates()))

	cfg.Timezone = "Mars/Olympus"
	_, err = app.NewSettings(cfg)
	assert.Error(t, err)
}
