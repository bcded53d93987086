package core

import (
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateRange selects the time window of the statistics view.
type DateRange string

const (
	RangeAll   DateRange = "all"
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
	RangeYear  DateRange = "year"
)

// ParseDateRange accepts "" (all) and the five range names.
func ParseDateRange(s string) (DateRange, error) {
	switch r := DateRange(s); r {
	case "":
		return RangeAll, nil
	case RangeAll, RangeToday, RangeWeek, RangeMonth, RangeYear:
		return r, nil
	default:
		return "", Validationf("parse date range", "unknown range %q (want all, today, week, month or year)", s)
	}
}

const (
	topProductsLimit = 5
	dailyRevenueDays = 30
	// DayLayout keys the daily revenue series.
	DayLayout = "2006-01-02"
)

// StatisticsView is the derived dashboard model. It is never persisted.
type StatisticsView struct {
	TotalRevenue         decimal.Decimal            `json:"totalRevenue"`
	TotalOrders          int                        `json:"totalOrders"`
	TotalConfirmedOrders int                        `json:"totalConfirmedOrders"`
	AverageOrderValue    decimal.Decimal            `json:"averageOrderValue"`
	TotalProducts        int                        `json:"totalProducts"`
	TotalStock           int                        `json:"totalStock"`
	AveragePrice         decimal.Decimal            `json:"averagePrice"`
	TopProducts          []TopProduct               `json:"topProducts"`
	FlavorStats          map[string]FlavorStat      `json:"flavorStats"`
	OrderStatusBreakdown OrderStatusBreakdown       `json:"orderStatusBreakdown"`
	DailyRevenue         map[string]decimal.Decimal `json:"dailyRevenue"`
	ConversionRate       decimal.Decimal            `json:"conversionRate"`
}

type TopProduct struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
	ImageURL string          `json:"imageUrl"`
}

type FlavorStat struct {
	Count    int      `json:"count"`
	Products []string `json:"products"`
}

type OrderStatusBreakdown struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Total     int `json:"total"`
}

// AggregateOptions pins the clock and zone the date ranges are anchored to.
// Images resolves top-product images by product id.
type AggregateOptions struct {
	Now      time.Time
	Location *time.Location
	Images   map[string]string
}

func (o AggregateOptions) anchor() (time.Time, *time.Location) {
	loc := o.Location
	if loc == nil {
		loc = time.Local
	}
	now := o.Now
	if now.IsZero() {
		now = time.Now()
	}
	return now, loc
}

// Midnight returns the start of now's calendar day in loc.
func Midnight(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// RangeStart returns the inclusive lower bound of r. ok is false for RangeAll.
func RangeStart(r DateRange, now time.Time, loc *time.Location) (start time.Time, ok bool) {
	midnight := Midnight(now, loc)
	switch r {
	case RangeToday:
		return midnight, true
	case RangeWeek:
		return midnight.AddDate(0, 0, -7), true
	case RangeMonth:
		return midnight.AddDate(0, -1, 0), true
	case RangeYear:
		return midnight.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// FilterByDate keeps the items whose time is at or after the start of r.
// Items without a time only survive RangeAll.
func FilterByDate[T any](items []T, timeOf func(T) time.Time, r DateRange, now time.Time, loc *time.Location) []T {
	start, ok := RangeStart(r, now, loc)
	if !ok {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		t := timeOf(it)
		if t.IsZero() || t.Before(start) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func orderCreatedAt(o Order) time.Time                { return o.CreatedAt.Time }
func paymentConfirmedAt(p ConfirmedPayment) time.Time { return p.ConfirmedAt.Time }

// Aggregate computes the statistics view. Orders are filtered by createdAt and payments by
// confirmedAt; product figures are always global.
func Aggregate(orders []Order, payments []ConfirmedPayment, products []Product, r DateRange, opts AggregateOptions) StatisticsView {
	now, loc := opts.anchor()
	orders = FilterByDate(orders, orderCreatedAt, r, now, loc)
	payments = FilterByDate(payments, paymentConfirmedAt, r, now, loc)

	v := StatisticsView{
		TotalOrders:          len(orders),
		TotalConfirmedOrders: len(payments),
		TotalProducts:        len(products),
	}

	for _, p := range payments {
		v.TotalRevenue = v.TotalRevenue.Add(p.TotalPrice)
	}
	v.AverageOrderValue = safeDiv(v.TotalRevenue, len(payments))

	priceSum := decimal.Zero
	for _, p := range products {
		v.TotalStock += p.StockOrZero()
		priceSum = priceSum.Add(p.Price)
	}
	v.AveragePrice = safeDiv(priceSum, len(products))

	v.TopProducts = topProducts(payments, opts.Images)
	v.FlavorStats = flavorStats(products)

	for _, o := range orders {
		if o.Status == OrderStatusCompleted && !o.AdminConfirmed {
			v.OrderStatusBreakdown.Pending++
		}
	}
	v.OrderStatusBreakdown.Confirmed = len(payments)
	v.OrderStatusBreakdown.Total = len(orders)

	v.DailyRevenue = dailyRevenue(payments, now, loc)

	if len(orders) > 0 {
		v.ConversionRate = decimal.NewFromInt(int64(len(payments))).
			Div(decimal.NewFromInt(int64(len(orders)))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return v
}

func safeDiv(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n))).Round(2)
}

// topProducts ranks payment line items by revenue. Ties keep first-seen order.
func topProducts(payments []ConfirmedPayment, images map[string]string) []TopProduct {
	var order []string
	byKey := make(map[string]*TopProduct)
	for _, p := range payments {
		for _, it := range p.Items {
			key := it.Key()
			tp, ok := byKey[key]
			if !ok {
				tp = &TopProduct{Name: it.Name}
				byKey[key] = tp
				order = append(order, key)
			}
			tp.Quantity += it.Quantity
			tp.Revenue = tp.Revenue.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			if tp.ImageURL == "" {
				tp.ImageURL = it.ImageURL
			}
			if tp.ImageURL == "" && it.ID != "" {
				tp.ImageURL = images[it.ID]
			}
		}
	}

	out := make([]TopProduct, len(order))
	for i, k := range order {
		out[i] = *byKey[k]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revenue.GreaterThan(out[j].Revenue)
	})
	if len(out) > topProductsLimit {
		out = out[:topProductsLimit]
	}
	return out
}

func flavorStats(products []Product) map[string]FlavorStat {
	stats := make(map[string]FlavorStat)
	for _, p := range products {
		for _, f := range p.Flavors {
			s := stats[f]
			s.Count++
			if !slices.Contains(s.Products, p.Name) {
				s.Products = append(s.Products, p.Name)
			}
			stats[f] = s
		}
	}
	return stats
}

// dailyRevenue buckets payments into the 30 local days ending today, whatever the range.
func dailyRevenue(payments []ConfirmedPayment, now time.Time, loc *time.Location) map[string]decimal.Decimal {
	today := Midnight(now, loc)
	series := make(map[string]decimal.Decimal, dailyRevenueDays)
	for i := 0; i < dailyRevenueDays; i++ {
		series[today.AddDate(0, 0, -i).Format(DayLayout)] = decimal.Zero
	}
	for _, p := range payments {
		if p.ConfirmedAt.IsZero() {
			continue
		}
		day := p.ConfirmedAt.In(loc).Format(DayLayout)
		if sum, ok := series[day]; ok {
			series[day] = sum.Add(p.TotalPrice)
		}
	}
	return series
}
