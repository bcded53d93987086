package core

import (
	"fmt"
	"strings"
)

// Currency identifies one of the independently namespaced currency stores.
type Currency string

const (
	CurrencyPI  Currency = "PI"
	CurrencyEGP Currency = "EGP"
	CurrencyUSD Currency = "USD"
)

// ParseCurrency normalizes a currency code ("egp", " Pi ") and rejects unknown codes.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case CurrencyPI, CurrencyEGP, CurrencyUSD:
		return c, nil
	default:
		return "", Validationf("parse currency", "unknown currency %q (want PI, EGP or USD)", s)
	}
}

// PaymentMode decides which currency-specific fields a confirmation copies.
type PaymentMode string

const (
	// PayInAdvance stores confirm orders already paid online; status "completed".
	PayInAdvance PaymentMode = "advance"
	// CashOnDelivery stores confirm orders placed unpaid; status "pending".
	CashOnDelivery PaymentMode = "cod"
)

// StoreConfig names the collections of one currency store. It is built from configuration
// and passed to every service call; no service reads collection names from anywhere else.
type StoreConfig struct {
	Currency          Currency
	PaymentMode       PaymentMode
	Products          string
	Orders            string
	ConfirmedPayments string
}

// Validate checks that every collection is named and the payment mode is known.
func (c StoreConfig) Validate() error {
	if c.Currency == "" {
		return Validationf("store config", "currency is required")
	}
	if c.Products == "" || c.Orders == "" || c.ConfirmedPayments == "" {
		return Validationf("store config", "store %s: products, orders and confirmedPayments collections are required", c.Currency)
	}
	switch c.PaymentMode {
	case PayInAdvance, CashOnDelivery:
	default:
		return Validationf("store config", "store %s: unknown payment mode %q", c.Currency, c.PaymentMode)
	}
	return nil
}

// DefaultStoreConfigs returns the stock collection layout. PI keeps the legacy
// un-suffixed collection names.
func DefaultStoreConfigs() map[Currency]StoreConfig {
	return map[Currency]StoreConfig{
		CurrencyPI: {
			Currency:          CurrencyPI,
			PaymentMode:       PayInAdvance,
			Products:          "products",
			Orders:            "orders",
			ConfirmedPayments: "confirmedPayments",
		},
		CurrencyEGP: suffixed(CurrencyEGP, CashOnDelivery),
		CurrencyUSD: suffixed(CurrencyUSD, PayInAdvance),
	}
}

func suffixed(c Currency, mode PaymentMode) StoreConfig {
	s := strings.ToLower(string(c))
	return StoreConfig{
		Currency:          c,
		PaymentMode:       mode,
		Products:          fmt.Sprintf("products_%s", s),
		Orders:            fmt.Sprintf("orders_%s", s),
		ConfirmedPayments: fmt.Sprintf("confirmedPayments_%s", s),
	}
}

// SharedCollections names the collections that are not scoped to a currency store.
type SharedCollections struct {
	Coupons       string
	ShippingCosts string
	Settings      string
}

// DefaultSharedCollections returns the stock names of the shared collections.
func DefaultSharedCollections() SharedCollections {
	return SharedCollections{
		Coupons:       "coupons",
		ShippingCosts: "governorateShippingCosts",
		Settings:      "settings",
	}
}
