package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"olxwatch/lib/chartutil"
	"olxwatch/lib/notify"
	"olxwatch/lib/pricestore"
	"olxwatch/lib/scrapers/olx"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/tracker")

// ErrNoHistory is returned by Graph when a product has no observations
// yet. Unlike the textual report, a chart cannot be rendered from
// nothing.
var ErrNoHistory = errors.New("no available price information")

// Fetcher fetches and extracts a listing from its page. olx.Client is
// the production implementation; tests inject fakes.
type Fetcher interface {
	FetchListing(ctx context.Context, url string) (olx.Listing, error)
}

type Options struct {
	Store   pricestore.Store
	Fetcher Fetcher
	Mailer  notify.Mailer
	// GraphDir is where chart PNGs are written, "graphs" when empty.
	GraphDir string
	// Out receives report output that must always reach the user
	// regardless of verbosity. os.Stdout when nil.
	Out io.Writer
}

type Service struct {
	store    pricestore.Store
	fetch    Fetcher
	mailer   notify.Mailer
	graphDir string
	out      io.Writer
}

func NewService(opts Options) Service {
	if opts.GraphDir == "" {
		opts.GraphDir = "graphs"
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return Service{
		store:    opts.Store,
		fetch:    opts.Fetcher,
		mailer:   opts.Mailer,
		graphDir: opts.GraphDir,
		out:      opts.Out,
	}
}

func productFromListing(listing olx.Listing) pricestore.Product {
	return pricestore.Product{
		ID:          listing.ID,
		Title:       listing.Title,
		Description: listing.Description,
		Url:         listing.URL,
		Active:      listing.IsActive,
	}
}

// Add fetches the listing and stores both the product and its current
// price. Re-adding a known listing is a no-op for the product row but
// still records the price.
func (s Service) Add(ctx context.Context, url string) error {
	ctx, span := tracer.Start(ctx, "Add")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	listing, err := s.fetch.FetchListing(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	err = s.store.CreateProduct(ctx, productFromListing(listing), false)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	_, err = s.store.RecordPrice(
		ctx,
		listing.ID,
		listing.Price.RegularPrice.Value,
		listing.Price.RegularPrice.CurrencyCode,
		time.Now(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Update fetches the listing and records its current price for an
// already tracked product.
func (s Service) Update(ctx context.Context, url string) error {
	ctx, span := tracer.Start(ctx, "Update")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	listing, err := s.fetch.FetchListing(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	_, err = s.store.RecordPrice(
		ctx,
		listing.ID,
		listing.Price.RegularPrice.Value,
		listing.Price.RegularPrice.CurrencyCode,
		time.Now(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// UpdateAll sweeps every tracked product. Unlike the single-URL paths,
// a removed or unparseable listing never aborts the sweep: removed
// listings are marked inactive and skipped from then on, malformed
// pages are logged and skipped. Only an empty store is an error.
func (s Service) UpdateAll(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "UpdateAll")
	defer span.End()

	products, err := s.store.AllProducts(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	for _, product := range products {
		if !product.Active {
			slog.DebugContext(ctx, "skipping inactive product", "id", product.ID)
			continue
		}

		listing, err := s.fetch.FetchListing(ctx, product.Url)
		if errors.Is(err, olx.ErrListingRemoved) {
			slog.InfoContext(ctx, "listing removed, marking product inactive", "id", product.ID)
			err = s.store.MarkInactive(ctx, product.ID)
			if err != nil {
				slog.ErrorContext(ctx, "failed to mark product inactive", "id", product.ID, "err", err)
			}
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to fetch listing, skipping", "id", product.ID, "url", product.Url, "err", err)
			continue
		}

		price := listing.Price.RegularPrice.Value
		currency := listing.Price.RegularPrice.CurrencyCode
		res, err := s.store.RecordPrice(ctx, product.ID, price, currency, time.Now())
		if err != nil {
			slog.ErrorContext(ctx, "failed to record price, skipping", "id", product.ID, "err", err)
			continue
		}

		if res.Inserted && res.Previous != nil && s.mailer.Enabled() {
			err = s.mailer.PriceChanged(product.Title, product.Url, res.Previous.Price, price, currency)
			if err != nil {
				slog.ErrorContext(ctx, "failed to send price change notice", "id", product.ID, "err", err)
			}
		}
	}
	return nil
}

// History prints the price series for the listing at url, oldest
// first. The output goes to the report sink, never the logger: it must
// show regardless of verbosity.
func (s Service) History(ctx context.Context, url string) error {
	ctx, span := tracer.Start(ctx, "History")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	listing, err := s.fetch.FetchListing(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	entries, err := s.store.PriceHistory(ctx, listing.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(s.out, "No prior data for product ID '%s'.\n", listing.ID)
		return nil
	}

	fmt.Fprintln(s.out, "Prices are ordered from oldest to newest:")
	for _, entry := range entries {
		fmt.Fprintf(s.out, "%d %s - %s\n", entry.Price, entry.Currency, entry.Time.Format(time.RFC3339))
	}
	return nil
}

// Graph renders the price series for the listing at url as a PNG named
// after the product id inside the graphs directory.
func (s Service) Graph(ctx context.Context, url string) error {
	ctx, span := tracer.Start(ctx, "Graph")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	listing, err := s.fetch.FetchListing(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	entries, err := s.store.PriceHistory(ctx, listing.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if len(entries) == 0 {
		err = fmt.Errorf("%w for product id %s", ErrNoHistory, listing.ID)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	title := fmt.Sprintf(
		"Product history for %s (prices in %s)",
		listing.Title, entries[0].Currency,
	)
	outPath := filepath.Join(s.graphDir, listing.ID+".png")
	err = chartutil.RenderPriceHistory(title, entries, outPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	slog.InfoContext(ctx, "graph written", "path", outPath)
	return nil
}

// List returns every tracked product.
func (s Service) List(ctx context.Context) ([]pricestore.Product, error) {
	return s.store.AllProducts(ctx)
}

type SearchMatch struct {
	Product    pricestore.Product
	Similarity float64
}

// Search ranks tracked products against the query by title similarity,
// best first.
func (s Service) Search(ctx context.Context, query string) ([]SearchMatch, error) {
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	products, err := s.store.AllProducts(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	matches := make([]SearchMatch, len(products))
	for i, product := range products {
		matches[i] = SearchMatch{
			Product: product,
			Similarity: matchr.JaroWinkler(
				strings.ToLower(query),
				strings.ToLower(product.Title),
				false,
			),
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches, nil
}
