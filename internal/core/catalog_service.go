package core

import (
	"context"
	"sort"
	"strings"

	"store-admin/internal/store"
)

// CatalogService manages the products of a currency store.
type CatalogService interface {
	// ListProducts returns the store's products, newest first.
	ListProducts(ctx context.Context, cfg StoreConfig) ([]Product, error)
	GetProduct(ctx context.Context, cfg StoreConfig, id string) (*Product, error)
	CreateProduct(ctx context.Context, cfg StoreConfig, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, cfg StoreConfig, id string, in ProductUpdate) (*Product, error)
	DeleteProduct(ctx context.Context, cfg StoreConfig, id string) error
	// AdjustStock adds delta (possibly negative) to the stock level. Stock never goes below zero.
	AdjustStock(ctx context.Context, cfg StoreConfig, id string, delta int) (*Product, error)
}

type catalogService struct {
	store store.DocumentStore
	now   Clock
}

func NewCatalogService(ds store.DocumentStore, now Clock) CatalogService {
	return &catalogService{store: ds, now: now.orSystem()}
}

func (s *catalogService) ListProducts(ctx context.Context, cfg StoreConfig) ([]Product, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	docs, err := s.store.QueryOrdered(ctx, cfg.Products, "createdAt", store.Desc)
	if err != nil {
		return nil, storeErr("list products", err)
	}
	products, err := decodeAll[Product](docs)
	if err != nil {
		return nil, storeErr("list products", err)
	}
	// Storefront documents mix timestamp encodings, so order on the parsed instant.
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt.Time)
	})
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, cfg StoreConfig, id string) (*Product, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, Validationf("get product", "product id is required")
	}
	return getProduct(ctx, s.store, cfg, id)
}

func getProduct(ctx context.Context, r store.Reader, cfg StoreConfig, id string) (*Product, error) {
	doc, err := r.Get(ctx, cfg.Products, id)
	if err != nil {
		return nil, storeErr("get product", err)
	}
	p, err := decodeOne[Product](doc)
	if err != nil {
		return nil, storeErr("get product", err)
	}
	return p, nil
}

func validateProduct(op string, name string, p ProductInput) error {
	if strings.TrimSpace(name) == "" {
		return Validationf(op, "product name is required")
	}
	if !p.Price.IsPositive() {
		return Validationf(op, "price must be greater than zero")
	}
	if p.PiecesPerBox < 0 {
		return Validationf(op, "pieces per box must not be negative")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return Validationf(op, "stock must not be negative")
	}
	return nil
}

func (s *catalogService) CreateProduct(ctx context.Context, cfg StoreConfig, in ProductInput) (*Product, error) {
	const op = "create product"
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateProduct(op, in.Name, in); err != nil {
		return nil, err
	}

	now := At(toMillis(s.now()))
	p := Product{
		Name:         strings.TrimSpace(in.Name),
		Price:        in.Price,
		PiecesPerBox: in.PiecesPerBox,
		Flavors:      nonNilStrings(in.Flavors),
		Description:  in.Description,
		ImageURL:     in.ImageURL,
		Currency:     cfg.Currency,
		Stock:        in.Stock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := s.store.Insert(ctx, cfg.Products, p)
	if err != nil {
		return nil, storeErr(op, err)
	}
	p.ID = id
	return &p, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, cfg StoreConfig, id string, in ProductUpdate) (*Product, error) {
	const op = "update product"
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, Validationf(op, "product id is required")
	}

	var result *Product
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		doc, err := tx.GetForUpdate(ctx, cfg.Products, id)
		if err != nil {
			return storeErr(op, err)
		}
		p, err := decodeOne[Product](doc)
		if err != nil {
			return storeErr(op, err)
		}

		fields := map[string]any{}
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
			fields["name"] = p.Name
		}
		if in.Price != nil {
			p.Price = *in.Price
			fields["price"] = p.Price
		}
		if in.PiecesPerBox != nil {
			p.PiecesPerBox = *in.PiecesPerBox
			fields["piecesPerBox"] = p.PiecesPerBox
		}
		if in.Flavors != nil {
			p.Flavors = in.Flavors
			fields["flavors"] = p.Flavors
		}
		if in.Description != nil {
			p.Description = *in.Description
			fields["description"] = p.Description
		}
		if in.ImageURL != nil {
			p.ImageURL = *in.ImageURL
			fields["imageUrl"] = p.ImageURL
		}
		if in.Stock != nil {
			p.Stock = in.Stock
			fields["stock"] = *p.Stock
		}
		if len(fields) == 0 {
			return Validationf(op, "nothing to change")
		}

		check := ProductInput{Price: p.Price, PiecesPerBox: p.PiecesPerBox, Stock: p.Stock}
		if err := validateProduct(op, p.Name, check); err != nil {
			return err
		}

		p.UpdatedAt = At(toMillis(s.now()))
		fields["updatedAt"] = p.UpdatedAt
		if err := tx.Update(ctx, cfg.Products, id, fields); err != nil {
			return storeErr(op, err)
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, cfg StoreConfig, id string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if id == "" {
		return Validationf("delete product", "product id is required")
	}
	return storeErr("delete product", s.store.Delete(ctx, cfg.Products, id))
}

func (s *catalogService) AdjustStock(ctx context.Context, cfg StoreConfig, id string, delta int) (*Product, error) {
	const op = "adjust stock"
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, Validationf(op, "product id is required")
	}
	if delta == 0 {
		return nil, Validationf(op, "delta must not be zero")
	}

	var result *Product
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		doc, err := tx.GetForUpdate(ctx, cfg.Products, id)
		if err != nil {
			return storeErr(op, err)
		}
		p, err := decodeOne[Product](doc)
		if err != nil {
			return storeErr(op, err)
		}
		next := p.StockOrZero() + delta
		if next < 0 {
			return Preconditionf(op, "product %s has %d in stock, cannot remove %d", id, p.StockOrZero(), -delta)
		}
		p.Stock = &next
		p.UpdatedAt = At(toMillis(s.now()))
		if err := tx.Update(ctx, cfg.Products, id, map[string]any{
			"stock":     next,
			"updatedAt": p.UpdatedAt,
		}); err != nil {
			return storeErr(op, err)
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
