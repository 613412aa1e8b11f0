package tracker

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"olxwatch/lib/notify"
	"olxwatch/lib/pricestore"
	"olxwatch/lib/pricestore/db"
	"olxwatch/lib/scrapers/olx"
	"olxwatch/lib/testutil"

	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	listings map[string]olx.Listing
	errs     map[string]error
	calls    int
}

func (f *fakeFetcher) FetchListing(ctx context.Context, url string) (olx.Listing, error) {
	f.calls++
	if err, ok := f.errs[url]; ok {
		return olx.Listing{}, err
	}
	listing, ok := f.listings[url]
	if !ok {
		return olx.Listing{}, fmt.Errorf("no fake listing for %s", url)
	}
	return listing, nil
}

func fakeListing(id, url string, price int64) olx.Listing {
	listing := olx.Listing{
		ID:          id,
		Title:       "Listing " + id,
		Description: "description",
		URL:         url,
		IsActive:    true,
	}
	listing.Price.RegularPrice.Value = price
	listing.Price.RegularPrice.CurrencyCode = "RON"
	return listing
}

func setupService(t *testing.T) (Service, *fakeFetcher, pricestore.Store, *bytes.Buffer, context.Context) {
	res, cleanup := testutil.SetupStore(t, testutil.StoreParams{
		Name:     "services/tracker",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	store := pricestore.NewStore(res.DB, pricestore.Options{})
	fetcher := &fakeFetcher{
		listings: map[string]olx.Listing{},
		errs:     map[string]error{},
	}
	out := &bytes.Buffer{}
	service := NewService(Options{
		Store:    store,
		Fetcher:  fetcher,
		Mailer:   notify.NewMailer(notify.Config{}),
		GraphDir: t.TempDir(),
		Out:      out,
	})
	return service, fetcher, store, out, ctx
}

func TestAddThenUpdateDedup(t *testing.T) {
	service, fetcher, store, _, ctx := setupService(t)

	url := "https://www.olx.ro/d/oferta/bike-7.html"
	fetcher.listings[url] = fakeListing("7", url, 100)

	err := service.Add(ctx, url)
	require.NoError(t, err)

	// same price again, nothing new is stored
	err = service.Update(ctx, url)
	require.NoError(t, err)

	history, err := store.PriceHistory(ctx, "7")
	require.NoError(t, err)
	require.Len(t, history, 1)

	fetcher.listings[url] = fakeListing("7", url, 90)
	err = service.Update(ctx, url)
	require.NoError(t, err)

	history, err = store.PriceHistory(ctx, "7")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, int64(100), history[0].Price)
	require.Equal(t, int64(90), history[1].Price)
}

func TestAddRemovedListing(t *testing.T) {
	service, fetcher, store, _, ctx := setupService(t)

	url := "https://www.olx.ro/d/oferta/gone-1.html"
	fetcher.errs[url] = olx.ErrListingRemoved

	err := service.Add(ctx, url)
	require.ErrorIs(t, err, olx.ErrListingRemoved)

	// a removed listing on the single-URL path never touches the store
	_, err = store.AllProducts(ctx)
	require.ErrorIs(t, err, pricestore.ErrEmptyStore)
}

func TestUpdateAllResilience(t *testing.T) {
	service, fetcher, store, _, ctx := setupService(t)

	okUrl := "https://www.olx.ro/d/oferta/bike-1.html"
	goneUrl := "https://www.olx.ro/d/oferta/gone-2.html"
	brokenUrl := "https://www.olx.ro/d/oferta/broken-3.html"

	fetcher.listings[okUrl] = fakeListing("1", okUrl, 100)
	fetcher.listings[goneUrl] = fakeListing("2", goneUrl, 200)
	fetcher.listings[brokenUrl] = fakeListing("3", brokenUrl, 300)
	require.NoError(t, service.Add(ctx, okUrl))
	require.NoError(t, service.Add(ctx, goneUrl))
	require.NoError(t, service.Add(ctx, brokenUrl))

	// one listing disappears, another stops parsing; the sweep never
	// aborts for either (deliberate contrast with the single-URL path)
	fetcher.listings[okUrl] = fakeListing("1", okUrl, 80)
	fetcher.errs[goneUrl] = olx.ErrListingRemoved
	fetcher.errs[brokenUrl] = fmt.Errorf("%w: markers absent", olx.ErrMalformedPage)

	err := service.UpdateAll(ctx)
	require.NoError(t, err)

	history, err := store.PriceHistory(ctx, "1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, int64(80), history[1].Price)

	products, err := store.AllProducts(ctx)
	require.NoError(t, err)
	for _, p := range products {
		if p.ID == "2" {
			require.False(t, p.Active, "removed listing should be marked inactive")
		}
	}

	// inactive products are skipped on the next sweep
	calls := fetcher.calls
	err = service.UpdateAll(ctx)
	require.NoError(t, err)
	require.Equal(t, calls+2, fetcher.calls)
}

func TestUpdateAllEmptyStore(t *testing.T) {
	service, _, _, _, ctx := setupService(t)

	err := service.UpdateAll(ctx)
	require.ErrorIs(t, err, pricestore.ErrEmptyStore)
}

func TestHistoryOutput(t *testing.T) {
	service, fetcher, _, out, ctx := setupService(t)

	url := "https://www.olx.ro/d/oferta/bike-9.html"
	fetcher.listings[url] = fakeListing("9", url, 100)

	err := service.History(ctx, url)
	require.NoError(t, err)
	require.Contains(t, out.String(), "No prior data for product ID '9'.")

	out.Reset()
	require.NoError(t, err)
	require.NoError(t, service.Add(ctx, url))
	fetcher.listings[url] = fakeListing("9", url, 90)
	require.NoError(t, service.Update(ctx, url))

	err = service.History(ctx, url)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Prices are ordered from oldest to newest:", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "100 RON - "))
	require.True(t, strings.HasPrefix(lines[2], "90 RON - "))
}

func TestGraph(t *testing.T) {
	service, fetcher, _, _, ctx := setupService(t)

	url := "https://www.olx.ro/d/oferta/bike-11.html"
	fetcher.listings[url] = fakeListing("11", url, 100)

	err := service.Graph(ctx, url)
	require.ErrorIs(t, err, ErrNoHistory)

	require.NoError(t, service.Add(ctx, url))
	fetcher.listings[url] = fakeListing("11", url, 90)
	require.NoError(t, service.Update(ctx, url))

	err = service.Graph(ctx, url)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(service.graphDir, "11.png"))
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestSearch(t *testing.T) {
	service, fetcher, _, _, ctx := setupService(t)

	bikeUrl := "https://www.olx.ro/d/oferta/bike-20.html"
	sofaUrl := "https://www.olx.ro/d/oferta/sofa-21.html"
	bike := fakeListing("20", bikeUrl, 100)
	bike.Title = "Mountain bike Trek"
	sofa := fakeListing("21", sofaUrl, 400)
	sofa.Title = "Leather sofa"
	fetcher.listings[bikeUrl] = bike
	fetcher.listings[sofaUrl] = sofa
	require.NoError(t, service.Add(ctx, bikeUrl))
	require.NoError(t, service.Add(ctx, sofaUrl))

	matches, err := service.Search(ctx, "mountain bike")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "20", matches[0].Product.ID)
}
