package olx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"olxwatch/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/olx")

var (
	// ErrListingRemoved means the page reports the ad as sold or taken
	// down. This is an expected outcome, not a scraping failure.
	ErrListingRemoved = errors.New("listing is no longer available")
	// ErrMalformedPage means the embedded ad payload could not be
	// located or decoded, which usually indicates the page layout
	// changed upstream.
	ErrMalformedPage = errors.New("malformed listing page")
)

// The ad payload is a JSON object embedded as an escaped string
// literal inside the olx-init-config script tag. The start marker
// anchors the beginning of the ad object, the end marker is the start
// of the unrelated fragments payload that follows it. Delimiter-based
// extraction like this is brittle on purpose: parsing the whole config
// blob would be far more work for one field of interest.
const (
	initConfigSelector = `script#olx-init-config`
	adStartMarker      = `"{\"ad\":{\"ad\":`
	fragmentsMarker    = `,\"fragments`
	removedMarker      = `Acest anunț nu mai este disponibil`
)

type ListingPrice struct {
	RegularPrice struct {
		Value        int64  `json:"value"`
		CurrencyCode string `json:"currencyCode"`
	} `json:"regularPrice"`
}

type Listing struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	URL         string       `json:"url"`
	IsActive    bool         `json:"isActive"`
	Price       ListingPrice `json:"price"`
}

// locatePayload cuts the escaped ad object out of the script contents.
func locatePayload(script string) (span string, ok bool) {
	start := strings.Index(script, adStartMarker)
	if start < 0 {
		return "", false
	}
	rest := script[start+len(adStartMarker):]
	end := strings.Index(rest, fragmentsMarker)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// Extract turns raw listing page text into a Listing. The removal
// marker is checked before any parsing, so a removed listing is
// reported as such even when a well-formed payload is still present
// somewhere in the page.
func Extract(ctx context.Context, pageText string) (Listing, error) {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()

	if strings.Contains(pageText, removedMarker) {
		span.AddEvent("removal marker present")
		return Listing{}, ErrListingRemoved
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageText))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse page html")
		return Listing{}, fmt.Errorf("%w: %s", ErrMalformedPage, err)
	}

	sel := doc.Find(initConfigSelector)
	if len(sel.Nodes) == 0 {
		span.SetStatus(codes.Error, "init config script tag not found")
		return Listing{}, fmt.Errorf("%w: script tag %q not found", ErrMalformedPage, initConfigSelector)
	}
	script := htmlutil.GetText(sel.Nodes[0])

	payload, ok := locatePayload(script)
	if !ok {
		span.SetStatus(codes.Error, "ad payload markers not found")
		return Listing{}, fmt.Errorf("%w: ad payload markers absent from init config", ErrMalformedPage)
	}

	payload = strings.ReplaceAll(payload, `\"`, `"`)

	var listing Listing
	err = json.Unmarshal([]byte(payload), &listing)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal ad payload")
		return Listing{}, fmt.Errorf("%w: decode ad payload: %s", ErrMalformedPage, err)
	}

	return listing, nil
}
