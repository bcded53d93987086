package core

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"store-admin/internal/store"
)

// shippingSettingsID is the settings document holding the minimum order amount.
const shippingSettingsID = "shipping"

// ShippingRegistry holds per-governorate shipping costs and the minimum order amount.
type ShippingRegistry interface {
	// LoadOrSeed returns the cost of every stored governorate, first inserting a default
	// document for each region in regions that has none. Stored costs are never reset.
	// Rows come back in regions order, followed by any stored governorate not in regions.
	LoadOrSeed(ctx context.Context, regions []Governorate) (map[string]decimal.Decimal, []GovernorateShippingCost, error)
	// UpdateCost sets the cost of a seeded governorate.
	UpdateCost(ctx context.Context, governorateID string, cost decimal.Decimal) (*GovernorateShippingCost, error)
	MinimumOrderAmount(ctx context.Context) (decimal.Decimal, error)
	SetMinimumOrderAmount(ctx context.Context, amount decimal.Decimal) error
}

type shippingRegistry struct {
	store    store.DocumentStore
	costs    string
	settings string
}

func NewShippingRegistry(ds store.DocumentStore, cols SharedCollections) ShippingRegistry {
	def := DefaultSharedCollections()
	if cols.ShippingCosts == "" {
		cols.ShippingCosts = def.ShippingCosts
	}
	if cols.Settings == "" {
		cols.Settings = def.Settings
	}
	return &shippingRegistry{store: ds, costs: cols.ShippingCosts, settings: cols.Settings}
}

func (r *shippingRegistry) LoadOrSeed(ctx context.Context, regions []Governorate) (map[string]decimal.Decimal, []GovernorateShippingCost, error) {
	const op = "load shipping costs"

	docs, err := r.store.List(ctx, r.costs)
	if err != nil {
		return nil, nil, storeErr(op, err)
	}
	stored, err := decodeAll[GovernorateShippingCost](docs)
	if err != nil {
		return nil, nil, storeErr(op, err)
	}
	byID := make(map[string]GovernorateShippingCost, len(stored))
	for _, g := range stored {
		byID[g.GovernorateID] = g
	}

	var ops []store.WriteOp
	var seeded []string
	for _, region := range regions {
		if _, ok := byID[region.ID]; ok {
			continue
		}
		ops = append(ops, store.WriteOp{
			Kind:       store.OpInsert,
			Collection: r.costs,
			ID:         region.ID,
			Data: map[string]any{
				"governorateId": region.ID,
				"cost":          region.DefaultCost,
				"name":          region.Name,
				"nameAr":        region.NameAr,
				"updatedAt":     store.ServerTimestamp,
			},
		})
		seeded = append(seeded, region.ID)
	}
	if len(ops) > 0 {
		if err := r.store.BatchWrite(ctx, ops); err != nil {
			return nil, nil, storeErr(op, err)
		}
		for _, id := range seeded {
			doc, err := r.store.Get(ctx, r.costs, id)
			if err != nil {
				return nil, nil, storeErr(op, err)
			}
			g, err := decodeOne[GovernorateShippingCost](doc)
			if err != nil {
				return nil, nil, storeErr(op, err)
			}
			byID[id] = *g
		}
	}

	costs := make(map[string]decimal.Decimal, len(byID))
	rows := make([]GovernorateShippingCost, 0, len(byID))
	listed := make(map[string]bool, len(regions))
	for _, region := range regions {
		g, ok := byID[region.ID]
		if !ok || listed[region.ID] {
			continue
		}
		listed[region.ID] = true
		rows = append(rows, g)
	}
	for _, g := range stored {
		if !listed[g.GovernorateID] {
			rows = append(rows, g)
		}
	}
	for _, g := range rows {
		costs[g.GovernorateID] = g.Cost
	}
	return costs, rows, nil
}

func (r *shippingRegistry) UpdateCost(ctx context.Context, governorateID string, cost decimal.Decimal) (*GovernorateShippingCost, error) {
	const op = "update shipping cost"
	if governorateID == "" {
		return nil, Validationf(op, "governorate id is required")
	}
	if cost.IsNegative() {
		return nil, Validationf(op, "cost must not be negative, got %s", cost)
	}
	err := r.store.Update(ctx, r.costs, governorateID, map[string]any{
		"cost":      cost,
		"updatedAt": store.ServerTimestamp,
	})
	if err != nil {
		return nil, storeErr(op, err)
	}
	doc, err := r.store.Get(ctx, r.costs, governorateID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	g, err := decodeOne[GovernorateShippingCost](doc)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return g, nil
}

// MinimumOrderAmount returns zero when no minimum was ever set.
func (r *shippingRegistry) MinimumOrderAmount(ctx context.Context) (decimal.Decimal, error) {
	doc, err := r.store.Get(ctx, r.settings, shippingSettingsID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, storeErr("get minimum order amount", err)
	}
	s, err := decodeOne[ShippingSettings](doc)
	if err != nil {
		return decimal.Zero, storeErr("get minimum order amount", err)
	}
	return s.MinimumOrderAmount, nil
}

func (r *shippingRegistry) SetMinimumOrderAmount(ctx context.Context, amount decimal.Decimal) error {
	const op = "set minimum order amount"
	if amount.IsNegative() {
		return Validationf(op, "minimum order amount must not be negative, got %s", amount)
	}
	err := r.store.Set(ctx, r.settings, shippingSettingsID, map[string]any{
		"minimumOrderAmount": amount,
		"updatedAt":          store.ServerTimestamp,
	})
	return storeErr(op, err)
}
