package core

import "github.com/shopspring/decimal"

// GovernorateShippingCost is the stored shipping cost of one governorate.
// The document id is the governorate id.
type GovernorateShippingCost struct {
	GovernorateID string          `json:"governorateId"`
	Cost          decimal.Decimal `json:"cost"`
	Name          string          `json:"name"`
	NameAr        string          `json:"nameAr"`
	UpdatedAt     Timestamp       `json:"updatedAt"`
}

func (g *GovernorateShippingCost) SetID(id string) { g.GovernorateID = id }

// ShippingSettings is the single settings document holding the minimum order amount.
type ShippingSettings struct {
	MinimumOrderAmount decimal.Decimal `json:"minimumOrderAmount"`
	UpdatedAt          Timestamp       `json:"updatedAt,omitzero"`
}
