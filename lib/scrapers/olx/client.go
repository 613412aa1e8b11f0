package olx

import (
	"context"
	"time"

	"olxwatch/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

type Client struct {
	http *resty.Client
}

type ClientOptions struct {
	// Timeout for a single page fetch, 30s when zero.
	Timeout time.Duration
}

func NewClient(opts ClientOptions) Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(timeout)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	telemetry.InstrumentResty(client, "scrapers/olx/http")

	return Client{http: client}
}

// FetchListing fetches the page at url and extracts the listing from
// it. Extraction outcomes surface as ErrListingRemoved and
// ErrMalformedPage; anything else is a transport fault.
func (c Client) FetchListing(ctx context.Context, url string) (Listing, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return Listing{}, err
	}
	return Extract(ctx, res.String())
}
