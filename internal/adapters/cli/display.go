package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"store-admin/internal/app"
	"store-admin/internal/core"
)

func printStatistics(w io.Writer, result *app.StatisticsResult) {
	v := result.View
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  STATISTICS  %s store, range %s\n", result.Currency, result.Range)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  %-28s %s\n", "Total revenue", v.TotalRevenue.StringFixed(2))
	fmt.Fprintf(w, "  %-28s %d\n", "Orders", v.TotalOrders)
	fmt.Fprintf(w, "  %-28s %d\n", "Confirmed orders", v.TotalConfirmedOrders)
	fmt.Fprintf(w, "  %-28s %d\n", "Awaiting confirmation", v.OrderStatusBreakdown.Pending)
	fmt.Fprintf(w, "  %-28s %s\n", "Average order value", v.AverageOrderValue.StringFixed(2))
	fmt.Fprintf(w, "  %-28s %s%%\n", "Conversion rate", v.ConversionRate.StringFixed(2))
	fmt.Fprintf(w, "  %-28s %d (%d in stock)\n", "Products", v.TotalProducts, v.TotalStock)
	fmt.Fprintf(w, "  %-28s %s\n", "Average price", v.AveragePrice.StringFixed(2))

	if len(v.TopProducts) > 0 {
		fmt.Fprintln(w, strings.Repeat("-", 62))
		fmt.Fprintf(w, "  %-34s %8s %15s\n", "TOP PRODUCT", "QTY", "REVENUE")
		for _, p := range v.TopProducts {
			fmt.Fprintf(w, "  %-34s %8d %15s\n", p.Name, p.Quantity, p.Revenue.StringFixed(2))
		}
	}

	if len(v.FlavorStats) > 0 {
		fmt.Fprintln(w, strings.Repeat("-", 62))
		flavors := make([]string, 0, len(v.FlavorStats))
		for f := range v.FlavorStats {
			flavors = append(flavors, f)
		}
		sort.Strings(flavors)
		fmt.Fprintf(w, "  %-34s %8s\n", "FLAVOR", "PRODUCTS")
		for _, f := range flavors {
			fmt.Fprintf(w, "  %-34s %8d\n", f, v.FlavorStats[f].Count)
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", 62))
}

func printCoupons(w io.Writer, title string, coupons []core.Coupon) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintf(w, "  %s (%d)\n", title, len(coupons))
	fmt.Fprintln(w, strings.Repeat("=", 72))
	if len(coupons) == 0 {
		fmt.Fprintln(w, "  No coupons found.")
		fmt.Fprintln(w, strings.Repeat("=", 72))
		return
	}
	fmt.Fprintf(w, "  %-28s %12s %-4s  %s\n", "CODE", "AMOUNT", "CUR", "EXPIRES")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, c := range coupons {
		fmt.Fprintf(w, "  %-28s %12s %-4s  %s\n", c.Code, c.Amount.StringFixed(2), c.Currency, c.ExpiresAt)
	}
	fmt.Fprintln(w, strings.Repeat("=", 72))
}

func printShippingCosts(w io.Writer, result *app.ShippingCostsResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  SHIPPING COSTS (%d governorates)\n", len(result.Governorates))
	fmt.Fprintln(w, strings.Repeat("=", 62))
	for _, g := range result.Governorates {
		fmt.Fprintf(w, "  %-20s %-24s %12s\n", g.GovernorateID, g.Name, g.Cost.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("=", 62))
}
