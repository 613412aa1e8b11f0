package pricestore

import (
	"context"
	"testing"
	"time"

	"olxwatch/lib/pricestore/db"
	"olxwatch/lib/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts Options) (Store, context.Context) {
	res, cleanup := testutil.SetupStore(t, testutil.StoreParams{
		Name:     "lib/pricestore",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	return NewStore(res.DB, opts), ctx
}

func mustCreate(t *testing.T, ctx context.Context, store Store, id string) {
	err := store.CreateProduct(ctx, Product{
		ID:          id,
		Title:       "Mountain bike",
		Description: "barely used",
		Url:         "https://www.olx.ro/d/oferta/bike-" + id + ".html",
		Active:      true,
	}, false)
	require.NoError(t, err)
}

func TestRecordPriceCollapsesEqualRuns(t *testing.T) {
	store, ctx := setup(t, Options{})

	id := testutil.RandomListingID(t)
	mustCreate(t, ctx, store, id)

	now := time.Now()
	prices := []int64{100, 90, 90, 80, 80, 80}
	for i, price := range prices {
		_, err := store.RecordPrice(ctx, id, price, "RON", now.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	history, err := store.PriceHistory(ctx, id)
	require.NoError(t, err)

	got := make([]int64, len(history))
	for i, entry := range history {
		got[i] = entry.Price
	}
	if diff := cmp.Diff([]int64{100, 90, 80}, got); diff != "" {
		t.Fatalf("unexpected history (-want +got):\n%s", diff)
	}

	// the first observation of each run wins
	require.Equal(t, now.UTC().Format(TimestampLayout), history[0].Time.Format(TimestampLayout))
	require.Equal(t, now.Add(time.Second).UTC().Format(TimestampLayout), history[1].Time.Format(TimestampLayout))
	require.Equal(t, now.Add(3*time.Second).UTC().Format(TimestampLayout), history[2].Time.Format(TimestampLayout))
}

func TestCreateProductDuplicate(t *testing.T) {
	store, ctx := setup(t, Options{})

	id := testutil.RandomListingID(t)
	mustCreate(t, ctx, store, id)
	// lax re-create is an idempotent no-op
	mustCreate(t, ctx, store, id)

	products, err := store.AllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)

	err = store.CreateProduct(ctx, Product{ID: id, Title: "Mountain bike", Active: true}, true)
	require.ErrorIs(t, err, ErrDuplicateProduct)

	products, err = store.AllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
}

func TestPriceHistoryEmpty(t *testing.T) {
	store, ctx := setup(t, Options{})

	id := testutil.RandomListingID(t)
	mustCreate(t, ctx, store, id)

	history, err := store.PriceHistory(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 0)

	// same for a product that was never created
	history, err = store.PriceHistory(ctx, "unknown-product")
	require.NoError(t, err)
	require.Len(t, history, 0)
}

func TestAllProductsEmptyStore(t *testing.T) {
	store, ctx := setup(t, Options{})

	_, err := store.AllProducts(ctx)
	require.ErrorIs(t, err, ErrEmptyStore)

	mustCreate(t, ctx, store, "1755")
	products, err := store.AllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "1755", products[0].ID)
}

func TestRecordPriceUnknownProduct(t *testing.T) {
	store, ctx := setup(t, Options{})

	_, err := store.RecordPrice(ctx, "unknown-product", 100, "RON", time.Now())
	require.ErrorIs(t, err, ErrUnknownProduct)
}

func TestMarkInactive(t *testing.T) {
	store, ctx := setup(t, Options{})

	id := testutil.RandomListingID(t)
	mustCreate(t, ctx, store, id)

	err := store.MarkInactive(ctx, id)
	require.NoError(t, err)

	products, err := store.AllProducts(ctx)
	require.NoError(t, err)
	require.False(t, products[0].Active)

	// unknown ids only warn
	err = store.MarkInactive(ctx, "unknown-product")
	require.NoError(t, err)
}

func TestRecordPriceCurrencyChange(t *testing.T) {
	store, ctx := setup(t, Options{})

	id := testutil.RandomListingID(t)
	mustCreate(t, ctx, store, id)

	now := time.Now()
	_, err := store.RecordPrice(ctx, id, 100, "RON", now)
	require.NoError(t, err)
	res, err := store.RecordPrice(ctx, id, 100, "EUR", now.Add(time.Second))
	require.NoError(t, err)
	require.False(t, res.Inserted)

	tracking, ctx := setup(t, Options{TrackCurrencyChanges: true})
	mustCreate(t, ctx, tracking, id)

	_, err = tracking.RecordPrice(ctx, id, 100, "RON", now)
	require.NoError(t, err)
	res, err = tracking.RecordPrice(ctx, id, 100, "EUR", now.Add(time.Second))
	require.NoError(t, err)
	require.True(t, res.Inserted)
}
