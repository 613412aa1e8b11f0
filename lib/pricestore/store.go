package pricestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"olxwatch/lib/pricestore/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

var tracer = otel.Tracer("lib/pricestore")

var (
	// ErrDuplicateProduct is returned by a strict create when the
	// product id already exists.
	ErrDuplicateProduct = errors.New("product already exists")
	// ErrUnknownProduct is returned when recording a price for an id
	// without a product row.
	ErrUnknownProduct = errors.New("product does not exist")
	// ErrEmptyStore is returned by AllProducts when the store holds no
	// products at all. Sweeping an empty store is operator error, not
	// an empty result.
	ErrEmptyStore = errors.New("no products in the store")
)

// TimestampLayout is RFC 3339 UTC with a fixed fractional width so the
// TEXT column sorts chronologically.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

type Options struct {
	// TrackCurrencyChanges makes a currency change insert a new
	// observation even when the price is unchanged.
	TrackCurrencyChanges bool
}

type Store struct {
	db   *sql.DB
	qry  *db.Queries
	opts Options
}

func NewStore(database *sql.DB, opts Options) Store {
	return Store{
		db:   database,
		qry:  db.New(database),
		opts: opts,
	}
}

type Product struct {
	ID          string
	Title       string
	Description string
	Url         string
	Active      bool
}

// CreateProduct inserts a product row. An existing row with the same
// id is a warning and a no-op, unless strict is set in which case it
// is ErrDuplicateProduct. Title, description and url are never updated
// after the first insert.
func (s Store) CreateProduct(ctx context.Context, product Product, strict bool) error {
	ctx, span := tracer.Start(ctx, "CreateProduct")
	defer span.End()
	span.SetAttributes(attribute.String("id", product.ID))

	_, err := s.qry.GetProduct(ctx, product.ID)
	if err == nil {
		if strict {
			err = fmt.Errorf("%w: %s", ErrDuplicateProduct, product.ID)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		slog.WarnContext(ctx, "product already exists", "id", product.ID, "title", product.Title)
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	err = s.qry.CreateProduct(ctx, db.CreateProductParams{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Url:         product.Url,
		Active:      product.Active,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

type PriceEntry struct {
	Price    int64
	Currency string
	Time     time.Time
}

type RecordResult struct {
	// Inserted reports whether a new observation was written.
	Inserted bool
	// Previous is the most recent observation before this call, nil
	// when this was the first one.
	Previous *PriceEntry
}

// RecordPrice appends an observation at `now` unless the price equals
// the most recent observation's price, so the stored series contains
// only price changes. A currency change alone inserts a row only when
// Options.TrackCurrencyChanges is enabled.
func (s Store) RecordPrice(ctx context.Context, productID string, price int64, currency string, now time.Time) (RecordResult, error) {
	ctx, span := tracer.Start(ctx, "RecordPrice")
	defer span.End()
	span.SetAttributes(
		attribute.String("id", productID),
		attribute.Int64("price", price),
		attribute.String("currency", currency),
	)

	_, err := s.qry.GetProduct(ctx, productID)
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return RecordResult{}, err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return RecordResult{}, err
	}

	var previous *PriceEntry
	latest, err := s.qry.GetLatestPriceEntry(ctx, productID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return RecordResult{}, err
	}
	if err == nil {
		entry, err := entryFromRow(latest)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return RecordResult{}, err
		}
		previous = &entry

		changed := latest.Price != price ||
			(s.opts.TrackCurrencyChanges && latest.Currency != currency)
		if !changed {
			slog.DebugContext(ctx, "price not changed", "id", productID)
			return RecordResult{Previous: previous}, nil
		}
	}

	err = s.qry.CreatePriceEntry(ctx, db.CreatePriceEntryParams{
		ProductID: productID,
		Price:     price,
		Currency:  currency,
		Timestamp: now.UTC().Format(TimestampLayout),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return RecordResult{}, err
	}

	slog.InfoContext(ctx, "added new price entry", "id", productID, "price", price, "currency", currency)
	return RecordResult{Inserted: true, Previous: previous}, nil
}

// MarkInactive flips the active flag off, meaning the listing was sold
// or removed. There is no transition back. An unknown id is only a
// warning.
func (s Store) MarkInactive(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "MarkInactive")
	defer span.End()
	span.SetAttributes(attribute.String("id", id))

	affected, err := s.qry.SetProductInactive(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if affected == 0 {
		slog.WarnContext(ctx, "could not mark item as sold because it does not exist", "id", id)
	}
	return nil
}

// PriceHistory returns all observations for a product, oldest first.
// A product with no observations yields an empty slice.
func (s Store) PriceHistory(ctx context.Context, id string) ([]PriceEntry, error) {
	ctx, span := tracer.Start(ctx, "PriceHistory")
	defer span.End()
	span.SetAttributes(attribute.String("id", id))

	rows, err := s.qry.GetPriceHistory(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	entries := make([]PriceEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := entryFromRow(row)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// AllProducts returns every product row, active or not.
func (s Store) AllProducts(ctx context.Context) ([]Product, error) {
	ctx, span := tracer.Start(ctx, "AllProducts")
	defer span.End()

	rows, err := s.qry.GetAllProducts(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(rows) == 0 {
		span.SetStatus(codes.Error, ErrEmptyStore.Error())
		return nil, ErrEmptyStore
	}

	products := make([]Product, len(rows))
	for i, row := range rows {
		products[i] = Product{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			Url:         row.Url,
			Active:      row.Active,
		}
	}
	return products, nil
}

func entryFromRow(row db.PriceHistory) (PriceEntry, error) {
	at, err := time.Parse(TimestampLayout, row.Timestamp)
	if err != nil {
		return PriceEntry{}, fmt.Errorf("parse stored timestamp %q: %w", row.Timestamp, err)
	}
	return PriceEntry{
		Price:    row.Price,
		Currency: row.Currency,
		Time:     at,
	}, nil
}
