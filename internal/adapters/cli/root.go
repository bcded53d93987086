package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"store-admin/internal/app"
)

// Deps are the collaborators the commands need. cmd/adminctl wires the real ones;
// tests pass an in-memory service.
type Deps struct {
	// Service opens the application service. The returned close function releases it.
	Service func(ctx context.Context) (app.ApplicationService, func(), error)
	// Migrate applies the schema migrations and returns the resulting version.
	Migrate func() (uint, error)
	// JWTSecret signs development tokens.
	JWTSecret string
}

// NewRootCommand builds the adminctl command tree.
func NewRootCommand(deps Deps) *cobra.Command {
	root := &cobra.Command{
		Use:   "adminctl",
		Short: "Store admin maintenance commands",
		Long: `adminctl runs the store admin operations that do not need the web console:
schema migrations, shipping cost seeding, statistics, coupon batches and
cross-store product sync.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newMigrateCommand(deps),
		newSeedShippingCommand(deps),
		newStatsCommand(deps),
		newCouponsCommand(deps),
		newSyncCommand(deps),
		newTokenCommand(deps),
	)
	return root
}

// withService opens the service for the duration of fn.
func withService(ctx context.Context, deps Deps, fn func(app.ApplicationService) error) error {
	if deps.Service == nil {
		return errors.New("no store configured")
	}
	svc, closeFn, err := deps.Service(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(svc)
}
