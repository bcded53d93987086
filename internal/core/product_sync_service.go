package core

import (
	"context"

	"github.com/shopspring/decimal"

	"store-admin/internal/store"
)

// SyncStatus is the tri-state outcome shown next to a sync action.
type SyncStatus string

const (
	SyncSyncing SyncStatus = "syncing"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

// SyncResult reports where a product landed in the target store.
type SyncResult struct {
	Status   SyncStatus      `json:"status"`
	TargetID string          `json:"targetId,omitempty"`
	Created  bool            `json:"created"`
	Price    decimal.Decimal `json:"price"`
}

// ProductSyncService replicates products from one currency store into another.
type ProductSyncService interface {
	// Sync copies product into target with its price converted at rate (rounded to 2 places).
	// The target document is found by originalId+syncedFrom, then by name among unkeyed
	// legacy documents; a match is overwritten, otherwise a new document is inserted.
	// Failures return Status=SyncError; nothing is retried.
	Sync(ctx context.Context, product Product, source, target StoreConfig, rate decimal.Decimal) (SyncResult, error)
}

type productSyncService struct {
	store store.DocumentStore
	now   Clock
}

func NewProductSyncService(ds store.DocumentStore, now Clock) ProductSyncService {
	return &productSyncService{store: ds, now: now.orSystem()}
}

// ConvertPrice converts price at rate, rounded half away from zero to 2 places.
func ConvertPrice(price, rate decimal.Decimal) decimal.Decimal {
	return price.Mul(rate).Round(2)
}

func (s *productSyncService) Sync(ctx context.Context, product Product, source, target StoreConfig, rate decimal.Decimal) (SyncResult, error) {
	const op = "sync product"
	failed := SyncResult{Status: SyncError}

	if err := source.Validate(); err != nil {
		return failed, err
	}
	if err := target.Validate(); err != nil {
		return failed, err
	}
	if source.Currency == target.Currency {
		return failed, Validationf(op, "source and target store are both %s", source.Currency)
	}
	if !rate.IsPositive() {
		return failed, Validationf(op, "exchange rate must be greater than zero, got %s", rate)
	}
	if product.ID == "" {
		return failed, Validationf(op, "product id is required")
	}
	if product.Name == "" {
		return failed, Validationf(op, "product name is required")
	}

	price := ConvertPrice(product.Price, rate)
	result := SyncResult{Status: SyncSyncing, Price: price}

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		existing, err := findSyncTarget(ctx, tx, product, source, target)
		if err != nil {
			return err
		}

		now := At(toMillis(s.now()))
		if existing != nil {
			err := tx.Update(ctx, target.Products, existing.ID, map[string]any{
				"name":         product.Name,
				"price":        price,
				"piecesPerBox": product.PiecesPerBox,
				"flavors":      nonNilStrings(product.Flavors),
				"description":  product.Description,
				"imageUrl":     product.ImageURL,
				"currency":     target.Currency,
				"syncedFrom":   source.Currency,
				"syncedAt":     now,
				"originalId":   product.ID,
				"updatedAt":    now,
			})
			if err != nil {
				return storeErr(op, err)
			}
			result.TargetID = existing.ID
			return nil
		}

		copied := product
		copied.ID = ""
		copied.Price = price
		copied.Flavors = nonNilStrings(product.Flavors)
		copied.Currency = target.Currency
		copied.SyncedFrom = source.Currency
		copied.SyncedAt = now
		copied.OriginalID = product.ID
		copied.CreatedAt = now
		copied.UpdatedAt = now

		id, err := tx.Insert(ctx, target.Products, copied)
		if err != nil {
			return storeErr(op, err)
		}
		result.TargetID = id
		result.Created = true
		return nil
	})
	if err != nil {
		return failed, err
	}
	result.Status = SyncSynced
	return result, nil
}

// findSyncTarget returns the target-store copy of product, or nil when none exists.
func findSyncTarget(ctx context.Context, r store.Reader, product Product, source, target StoreConfig) (*Product, error) {
	const op = "find sync target"

	docs, err := r.QueryByEquality(ctx, target.Products, "originalId", product.ID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	keyed, err := decodeAll[Product](docs)
	if err != nil {
		return nil, storeErr(op, err)
	}
	for i := range keyed {
		if keyed[i].SyncedFrom == source.Currency {
			return &keyed[i], nil
		}
	}

	// Copies made before the stable key existed only match by name.
	docs, err = r.QueryByEquality(ctx, target.Products, "name", product.Name)
	if err != nil {
		return nil, storeErr(op, err)
	}
	named, err := decodeAll[Product](docs)
	if err != nil {
		return nil, storeErr(op, err)
	}
	for i := range named {
		if named[i].OriginalID == "" {
			return &named[i], nil
		}
	}
	return nil, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
