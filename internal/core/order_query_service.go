package core

import (
	"context"
	"sort"

	"store-admin/internal/store"
)

// OrderQueryService reads the orders and confirmed payments of a currency store.
type OrderQueryService interface {
	// ListOrders returns orders matching filter, newest first.
	ListOrders(ctx context.Context, cfg StoreConfig, filter OrderFilter) ([]Order, error)
	GetOrder(ctx context.Context, cfg StoreConfig, id string) (*Order, error)
	// ListConfirmedPayments returns confirmed payments, most recently confirmed first.
	ListConfirmedPayments(ctx context.Context, cfg StoreConfig) ([]ConfirmedPayment, error)
	GetConfirmedPayment(ctx context.Context, cfg StoreConfig, id string) (*ConfirmedPayment, error)
}

type orderQueryService struct {
	store store.Reader
}

func NewOrderQueryService(r store.Reader) OrderQueryService {
	return &orderQueryService{store: r}
}

func (s *orderQueryService) ListOrders(ctx context.Context, cfg StoreConfig, filter OrderFilter) ([]Order, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	docs, err := s.store.QueryOrdered(ctx, cfg.Orders, "createdAt", store.Desc)
	if err != nil {
		return nil, storeErr("list orders", err)
	}
	all, err := decodeAll[Order](docs)
	if err != nil {
		return nil, storeErr("list orders", err)
	}
	orders := make([]Order, 0, len(all))
	for _, o := range all {
		if filter.match(o) {
			orders = append(orders, o)
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt.Time)
	})
	return orders, nil
}

func (s *orderQueryService) GetOrder(ctx context.Context, cfg StoreConfig, id string) (*Order, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, Validationf("get order", "order id is required")
	}
	doc, err := s.store.Get(ctx, cfg.Orders, id)
	if err != nil {
		return nil, storeErr("get order", err)
	}
	o, err := decodeOne[Order](doc)
	if err != nil {
		return nil, storeErr("get order", err)
	}
	return o, nil
}

func (s *orderQueryService) ListConfirmedPayments(ctx context.Context, cfg StoreConfig) ([]ConfirmedPayment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	docs, err := s.store.QueryOrdered(ctx, cfg.ConfirmedPayments, "confirmedAt", store.Desc)
	if err != nil {
		return nil, storeErr("list confirmed payments", err)
	}
	payments, err := decodeAll[ConfirmedPayment](docs)
	if err != nil {
		return nil, storeErr("list confirmed payments", err)
	}
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].ConfirmedAt.After(payments[j].ConfirmedAt.Time)
	})
	return payments, nil
}

func (s *orderQueryService) GetConfirmedPayment(ctx context.Context, cfg StoreConfig, id string) (*ConfirmedPayment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, Validationf("get confirmed payment", "payment id is required")
	}
	doc, err := s.store.Get(ctx, cfg.ConfirmedPayments, id)
	if err != nil {
		return nil, storeErr("get confirmed payment", err)
	}
	p, err := decodeOne[ConfirmedPayment](doc)
	if err != nil {
		return nil, storeErr("get confirmed payment", err)
	}
	return p, nil
}
