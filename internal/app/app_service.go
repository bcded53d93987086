package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"store-admin/internal/core"
	"store-admin/internal/store"
)

// Settings carries the configuration the application layer needs.
type Settings struct {
	Stores       map[core.Currency]core.StoreConfig
	Shared       core.SharedCollections
	Location     *time.Location
	CouponPrefix string
	Regions      []core.Governorate
	Now          core.Clock
}

type appService struct {
	stores   map[core.Currency]core.StoreConfig
	loc      *time.Location
	regions  []core.Governorate
	now      core.Clock
	log      *zap.Logger
	confirm  core.ConfirmationService
	sync     core.ProductSyncService
	catalog  core.CatalogService
	queries  core.OrderQueryService
	coupons  core.CouponLedger
	shipping core.ShippingRegistry
}

// NewAppService wires the core services over ds and returns an ApplicationService.
// Zero Settings fields select the stock layout, the local zone, the system clock and the
// built-in governorate list.
func NewAppService(ds store.DocumentStore, cfg Settings, log *zap.Logger) ApplicationService {
	if cfg.Stores == nil {
		cfg.Stores = core.DefaultStoreConfigs()
	}
	if cfg.Shared == (core.SharedCollections{}) {
		cfg.Shared = core.DefaultSharedCollections()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Regions == nil {
		cfg.Regions = core.Governorates()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &appService{
		stores:   cfg.Stores,
		loc:      cfg.Location,
		regions:  cfg.Regions,
		now:      cfg.Now,
		log:      log,
		confirm:  core.NewConfirmationService(ds, cfg.Now),
		sync:     core.NewProductSyncService(ds, cfg.Now),
		catalog:  core.NewCatalogService(ds, cfg.Now),
		queries:  core.NewOrderQueryService(ds),
		coupons: core.NewCouponLedger(ds, core.CouponLedgerOptions{
			Collection: cfg.Shared.Coupons,
			Prefix:     cfg.CouponPrefix,
			Now:        cfg.Now,
		}),
		shipping: core.NewShippingRegistry(ds, cfg.Shared),
	}
}

// storeFor resolves a currency code to its configured store.
func (s *appService) storeFor(currency string) (core.StoreConfig, error) {
	c, err := core.ParseCurrency(currency)
	if err != nil {
		return core.StoreConfig{}, err
	}
	cfg, ok := s.stores[c]
	if !ok {
		return core.StoreConfig{}, core.Validationf("resolve store", "store %s is not configured", c)
	}
	return cfg, nil
}

// imageIndex loads the product image index of a store. Failures are logged and yield an
// empty index so the caller can carry on.
func (s *appService) imageIndex(ctx context.Context, cfg core.StoreConfig) map[string]string {
	products, err := s.catalog.ListProducts(ctx, cfg)
	if err != nil {
		s.log.Warn("product image index unavailable",
			zap.String("currency", string(cfg.Currency)),
			zap.Error(err))
		return map[string]string{}
	}
	return core.ImageIndex(products)
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *appService) ListOrders(ctx context.Context, currency, filter string) (*OrderListResult, error) {
	cfg, err := s.storeFor(currency)
	if err != nil {
		return nil, err
	}
	f, err := core.ParseOrderFilter(filter)
	if err != nil {
		return nil, err
	}
	orders, err := s.queries.ListOrders(ctx, cfg, f)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Currency: cfg.Currency, Filter: string(f), Orders: orders}, nil
}

func (s *appService) GetOrder(ctx context.Context, currency, id string) (*OrderResult, error) {
	cfg, err := s.storeFor(currency)
	if err != nil {
		return nil, err
	}
	o, err := s.queries.GetOrder(ctx, cfg, id)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: o}, nil
}

func (s *appService) ConfirmOrder(ctx context.Context, currency, id string, actor core.Actor) (*ConfirmResult, error) {
	cfg, err := s.storeFor(currency)
	if err != nil {
		return nil, err
	}
	o, err := s.queries.GetOrder(ctx, cfg, id)
	if err != nil {
		return nil, err
	}

	payment, err := s.confirm.Confirm(ctx, cfg, *o, actor, s.imageIndex(ctx, cfg))
	if err != nil {
		var already *core.AlreadyConfirmedError
		if errors.As(err, &already) && already.Existing != nil {
			s.log.Info("order already confirmed",
				zap.String("currency", string(cfg.Currency)),
				zap.String("order_id", id),
				zap.String("payment_id", already.Existing.ID))
			return &ConfirmResult{Payment: already.Existing, AlreadyConfirmed: true}, nil
		}
		return nil, err
	}
	s.log.Info("order confirmed",
		zap.String("currency", string(cfg.Currency)),
		zap.String("order_id", id),
		zap.String("payment_id", payment.ID),
		zap.String("by", actor.UID))
	return &ConfirmResult{Payment: payment}, nil
}

func (s *appService) ListPayments(ctx context.Context, currency string) (*PaymentListResult, error) {
	cfg, err := s.storeFor(currency)
	if err != nil {
		return nil, err
	}
	payments, err := s.queries.ListConfirmedPayments(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &PaymentListResult{Currency: cfg.Currency, Payments: payments}, nil
}

func (s *appService) ShipPayment(ctx context.Context, currency, id string, actor core.Actor) (*PaymentResult, error) {
	cfg, err := s.storeFor(currency)
	if err != nil {
		return nil, err
	}
	p, err := s.confirm.MarkShipped(ctx, cfg, id, actor)
	if err != nil {
		return nil, err
	}
	return &PaymentResult{Payment: p}, nil
}

// ── Catalog ──────────────────────────────────────────────────────────────────

func (s *appService) ListProducts(ctx context.Context, currency string) (*ProductListResult, error) {
	cfg, err := s.storeFor(currency)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.ListProducts(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Currency: cfg.Currency, Products: products}, nil
}

func (s *appService) GetProduct(ctx context.Context, currency, id string) (*ProductResult, error) {
	cfg, err := s.storeFor(currency)
	if err != nil {
		return nil, err
	}
	p, err := s.catalog.GetProduct(ctx, cfg, id)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) CreateProduct(ctx context.Context, currency string, in core.ProductInput) (*ProductResult, error) {
	cfg, err := s.storeFor(currency)
	if err != nil {
		return nil, err
	}
	p, err := s.catalog.CreateProduct(ctx, cfg, in)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) UpdateProduct(ctx context.Context, currency, id string, in core.ProductUpdate) (*ProductResult, error) {
	cfg, err := s.storeFor(currency)
	if err != nil {
		return nil, err
	}
	p, err := s.catalog.UpdateProduct(ctx, cfg, id, in)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) DeleteProduct(ctx context.Context, currency, id string) error {
	cfg, err := s.storeFor(currency)
	if err != nil {
		return err
	}
	return s.catalog.DeleteProduct(ctx, cfg, id)
}

func (s *appService) AdjustStock(ctx context.Context, currency, id string, delta int) (*ProductResult, error) {
	cfg, err := s.storeFor(currency)
	if err != nil {
		return nil, err
	}
	p, err := s.catalog.AdjustStock(ctx, cfg, id, delta)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) SyncProduct(ctx context.Context, req SyncProductRequest) (*core.SyncResult, error) {
	source, err := s.storeFor(req.Source)
	if err != nil {
		return nil, err
	}
	target, err := s.storeFor(req.Target)
	if err != nil {
		return nil, err
	}
	product, err := s.catalog.GetProduct(ctx, source, req.ProductID)
	if err != nil {
		return nil, err
	}

	result, err := s.sync.Sync(ctx, *product, source, target, req.Rate)
	if err != nil {
		s.log.Warn("product sync failed",
			zap.String("product_id", req.ProductID),
			zap.String("from", string(source.Currency)),
			zap.String("to", string(target.Currency)),
			zap.Error(err))
		return &result, err
	}
	s.log.Info("product synced",
		zap.String("product_id", req.ProductID),
		zap.String("target_id", result.TargetID),
		zap.Bool("created", result.Created),
		zap.String("price", result.Price.String()))
	return &result, nil
}

// ── Statistics ───────────────────────────────────────────────────────────────

func (s *appService) GetStatistics(ctx context.Context, currency, dateRange string) (*StatisticsResult, error) {
	cfg, err := s.storeFor(currency)
	if err != nil {
		return nil, err
	}
	r, err := core.ParseDateRange(dateRange)
	if err != nil {
		return nil, err
	}

	orders, err := s.queries.ListOrders(ctx, cfg, core.OrderFilterAll)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	payments, err := s.queries.ListConfirmedPayments(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmed payments: %w", err)
	}
	products, err := s.catalog.ListProducts(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	view := core.Aggregate(orders, payments, products, r, core.AggregateOptions{
		Now:      s.now(),
		Location: s.loc,
		Images:   core.ImageIndex(products),
	})
	return &StatisticsResult{Currency: cfg.Currency, Range: r, View: view}, nil
}

// ── Coupons ──────────────────────────────────────────────────────────────────

func (s *appService) ListCoupons(ctx context.Context) (*CouponListResult, error) {
	coupons, err := s.coupons.List(ctx)
	if err != nil {
		return nil, err
	}
	return &CouponListResult{Coupons: coupons}, nil
}

func (s *appService) GenerateCoupons(ctx context.Context, req GenerateCouponsRequest) (*CouponListResult, error) {
	currency, err := core.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	coupons, err := s.coupons.Generate(ctx, core.GenerateCouponsInput{
		Amount:       req.Amount,
		Currency:     currency,
		DurationDays: req.DurationDays,
		Quantity:     req.Quantity,
		Issuer:       req.Issuer,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("coupons generated",
		zap.Int("quantity", len(coupons)),
		zap.String("amount", req.Amount.String()),
		zap.String("currency", string(currency)),
		zap.String("by", req.Issuer.UID))
	return &CouponListResult{Coupons: coupons}, nil
}

func (s *appService) EditCoupon(ctx context.Context, id string, in core.EditCouponInput) (*CouponResult, error) {
	c, err := s.coupons.Edit(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return &CouponResult{Coupon: c}, nil
}

func (s *appService) ToggleCoupon(ctx context.Context, id string) (*CouponResult, error) {
	c, err := s.coupons.ToggleActive(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CouponResult{Coupon: c}, nil
}

func (s *appService) DeleteCoupon(ctx context.Context, id string) error {
	return s.coupons.Delete(ctx, id)
}

func (s *appService) ExportCoupons(ctx context.Context) (*CouponListResult, error) {
	coupons, err := s.coupons.List(ctx)
	if err != nil {
		return nil, err
	}
	return &CouponListResult{Coupons: core.ExportSelection(coupons, s.now())}, nil
}

func (s *appService) RedeemCoupon(ctx context.Context, code string) (*CouponResult, error) {
	c, err := s.coupons.Redeem(ctx, code)
	if err != nil {
		return nil, err
	}
	return &CouponResult{Coupon: c}, nil
}

// ── Shipping ─────────────────────────────────────────────────────────────────

func (s *appService) ShippingCosts(ctx context.Context) (*ShippingCostsResult, error) {
	costs, rows, err := s.shipping.LoadOrSeed(ctx, s.regions)
	if err != nil {
		return nil, err
	}
	return &ShippingCostsResult{Costs: costs, Governorates: rows}, nil
}

func (s *appService) UpdateShippingCost(ctx context.Context, governorateID string, cost decimal.Decimal) (*ShippingCostResult, error) {
	g, err := s.shipping.UpdateCost(ctx, governorateID, cost)
	if err != nil {
		return nil, err
	}
	return &ShippingCostResult{Cost: g}, nil
}

func (s *appService) MinimumOrderAmount(ctx context.Context) (decimal.Decimal, error) {
	return s.shipping.MinimumOrderAmount(ctx)
}

func (s *appService) SetMinimumOrderAmount(ctx context.Context, amount decimal.Decimal) error {
	return s.shipping.SetMinimumOrderAmount(ctx, amount)
}
