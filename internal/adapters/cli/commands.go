package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"store-admin/internal/adapters/web"
	"store-admin/internal/app"
	"store-admin/internal/core"
)

func newMigrateCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if deps.Migrate == nil {
				return errors.New("migrations need store.driver=postgres")
			}
			version, err := deps.Migrate()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func newSeedShippingCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-shipping",
		Short: "Write default shipping costs for governorates that have none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), deps, func(svc app.ApplicationService) error {
				result, err := svc.ShippingCosts(cmd.Context())
				if err != nil {
					return err
				}
				printShippingCosts(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
}

func newStatsCommand(deps Deps) *cobra.Command {
	var (
		storeCode string
		dateRange string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard statistics of a currency store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), deps, func(svc app.ApplicationService) error {
				result, err := svc.GetStatistics(cmd.Context(), storeCode, dateRange)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(result)
				}
				printStatistics(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&storeCode, "store", string(core.CurrencyPI), "Currency store (PI, EGP or USD)")
	cmd.Flags().StringVar(&dateRange, "range", string(core.RangeAll), "Date range: all, today, week, month or year")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw statistics as JSON")
	return cmd
}

func newCouponsCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coupons",
		Short: "Generate and export discount coupons",
	}
	cmd.AddCommand(newCouponsGenerateCommand(deps), newCouponsExportCommand(deps))
	return cmd
}

func newCouponsGenerateCommand(deps Deps) *cobra.Command {
	var (
		amount   string
		currency string
		days     int
		quantity int
		issuer   string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Issue a batch of identical coupons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			return withService(cmd.Context(), deps, func(svc app.ApplicationService) error {
				result, err := svc.GenerateCoupons(cmd.Context(), app.GenerateCouponsRequest{
					Amount:       value,
					Currency:     currency,
					DurationDays: days,
					Quantity:     quantity,
					Issuer:       core.Actor{UID: issuer},
				})
				if err != nil {
					return err
				}
				printCoupons(cmd.OutOrStdout(), "GENERATED COUPONS", result.Coupons)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "Discount amount")
	cmd.Flags().StringVar(&currency, "currency", string(core.CurrencyEGP), "Coupon currency")
	cmd.Flags().IntVar(&days, "days", 30, "Validity in days")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "Number of coupons (1-100)")
	cmd.Flags().StringVar(&issuer, "issuer", "adminctl", "Recorded as createdBy")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newCouponsExportCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the active, unexpired and unused coupons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), deps, func(svc app.ApplicationService) error {
				result, err := svc.ExportCoupons(cmd.Context())
				if err != nil {
					return err
				}
				printCoupons(cmd.OutOrStdout(), "PRINTABLE COUPONS", result.Coupons)
				return nil
			})
		},
	}
}

func newSyncCommand(deps Deps) *cobra.Command {
	var (
		from    string
		to      string
		rate    string
		product string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy a product into another currency store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := decimal.NewFromString(rate)
			if err != nil {
				return fmt.Errorf("invalid --rate %q: %w", rate, err)
			}
			return withService(cmd.Context(), deps, func(svc app.ApplicationService) error {
				result, err := svc.SyncProduct(cmd.Context(), app.SyncProductRequest{
					Source:    from,
					Target:    to,
					ProductID: product,
					Rate:      r,
				})
				if err != nil {
					return err
				}
				verb := "updated"
				if result.Created {
					verb = "created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s in %s at %s (%s)\n",
					verb, result.TargetID, to, result.Price.StringFixed(2), result.Status)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source currency store")
	cmd.Flags().StringVar(&to, "to", "", "Target currency store")
	cmd.Flags().StringVar(&rate, "rate", "", "Exchange rate applied to the price")
	cmd.Flags().StringVar(&product, "product", "", "Source product id")
	for _, name := range []string{"from", "to", "rate", "product"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newTokenCommand(deps Deps) *cobra.Command {
	var (
		uid   string
		email string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development admin token with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			signed, err := web.SignToken(deps.JWTSecret, core.Actor{UID: uid, Email: email}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&uid, "uid", "", "Admin uid (token subject)")
	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}
