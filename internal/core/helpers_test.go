package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"store-admin/internal/core"
	"store-admin/internal/store"

	"github.com/stretchr/testify/require"
)

// testNow is the pinned clock of every service test: Tuesday 10 March 2026, 15:00 UTC.
var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*store.MemoryStore, *testClock) {
	t.Helper()
	clock := &testClock{t: testNow}
	return store.NewMemoryStoreWithClock(clock.Now), clock
}

var (
	piStore  = core.DefaultStoreConfigs()[core.CurrencyPI]
	egpStore = core.DefaultStoreConfigs()[core.CurrencyEGP]
	usdStore = core.DefaultStoreConfigs()[core.CurrencyUSD]
	admin    = core.Actor{UID: "admin-1", Email: "admin@example.com"}
)

// seed writes a raw document the way the storefront would.
func seed(t *testing.T, ds store.DocumentStore, collection, id string, fields map[string]any) {
	t.Helper()
	require.NoError(t, ds.Set(context.Background(), collection, id, fields))
}

func load[T any](t *testing.T, ds store.Reader, collection, id string) T {
	t.Helper()
	doc, err := ds.Get(context.Background(), collection, id)
	require.NoError(t, err)
	var v T
	require.NoError(t, doc.Decode(&v))
	return v
}

// failingStore fails every transactional Update on one collection.
type failingStore struct {
	*store.MemoryStore
	failUpdates string
}

func (f *failingStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return f.MemoryStore.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return fn(ctx, &failingTx{Tx: tx, failUpdates: f.failUpdates})
	})
}

type failingTx struct {
	store.Tx
	failUpdates string
}

func (t *failingTx) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if collection == t.failUpdates {
		return errors.New("connection reset by peer")
	}
	return t.Tx.Update(ctx, collection, id, fields)
}
