package app

import (
	"store-admin/internal/config"
	"store-admin/internal/core"
)

// NewSettings derives the application settings from the loaded configuration.
func NewSettings(cfg *config.Config) (Settings, error) {
	stores, err := cfg.StoreConfigs()
	if err != nil {
		return Settings{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Stores:       stores,
		Shared:       cfg.SharedCollections(),
		Location:     loc,
		CouponPrefix: cfg.Coupons.Prefix,
		Regions:      core.Governorates(),
	}, nil
}
