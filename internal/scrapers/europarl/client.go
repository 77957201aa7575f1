// client.go contains the transport for the europarl open data api and the
// document site, it knows nothing about what the payloads mean.

package europarl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/assert"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/chrono"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/components/telemetry"
	"github.com/ABCurado/eu-parliment-votes-sdk/internal/votes"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_fetch    = "client.fetch"
	report_client_get_json = "client.get-json"
)

const jsonLdMime = "application/ld+json"

// ErrInvalidParameter is returned when a query parameter has no value.
var ErrInvalidParameter = errors.New("invalid parameter")

type Options struct {
	ApiUrl  string
	SiteUrl string
	Timeout time.Duration
	// RequestsPerSecond <= 0 disables rate limiting.
	RequestsPerSecond float64
	// CloudflareBypass mimics a browser TLS handshake and headers.
	CloudflareBypass bool
}

// Client talks to the europarl open data api and the document site, it
// implements votes.DocumentFetcher, votes.ListingFetcher and votes.RosterProvider.
type Client struct {
	http    *resty.Client
	apiUrl  string
	siteUrl string
	tel     telemetry.API
	time    chrono.TimeAPI
}

func NewClient(opts Options, tel telemetry.API, clock chrono.TimeAPI) (*Client, error) {
	assert.NotNil(tel)
	assert.NotNil(clock)

	tel = telemetry.NewScopedAPI("europarl_client", tel)

	if opts.ApiUrl == "" {
		opts.ApiUrl = votes.DefaultApiUrl
	}
	if opts.SiteUrl == "" {
		opts.SiteUrl = votes.DefaultSiteUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	_, err := url.Parse(opts.ApiUrl)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("user-agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		// max burst >= rps just means that no requests will be dropped
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)

	return &Client{
		http:    httpClient,
		apiUrl:  strings.TrimSuffix(opts.ApiUrl, "/"),
		siteUrl: strings.TrimSuffix(opts.SiteUrl, "/"),
		tel:     tel,
		time:    clock,
	}, nil
}

// Fetch implements votes.DocumentFetcher.
func (c *Client) Fetch(ctx context.Context, endpoint string) (int, []byte, error) {
	c.tel.ReportDebug(report_client_fetch, endpoint)

	res, err := c.http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, fmt.Errorf("fetch: %w", err), endpoint)
		return 0, nil, err
	}
	return res.StatusCode(), res.Body(), nil
}

// FetchJSON implements votes.ListingFetcher.
func (c *Client) FetchJSON(ctx context.Context, endpoint string) (int, []byte, error) {
	c.tel.ReportDebug(report_client_get_json, endpoint)

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("accept", jsonLdMime).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_get_json, fmt.Errorf("fetch: %w", err), endpoint)
		return 0, nil, err
	}
	return res.StatusCode(), res.Body(), nil
}

// GetJSON requests an api path (or absolute url) with the given query params
// and decodes the JSON response into out. Every param must have a value.
func (c *Client) GetJSON(ctx context.Context, path string, params map[string]string, out any) error {
	query := url.Values{}
	for key, value := range params {
		if value == "" {
			return fmt.Errorf("%w: %s", ErrInvalidParameter, key)
		}
		query.Set(key, value)
	}

	endpoint := c.resolve(path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	status, body, err := c.FetchJSON(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", votes.ErrFetchFailure, endpoint, err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w for url: %s", &votes.FetchError{Status: status, Url: endpoint}, endpoint)
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		preview := body
		if len(preview) > 100 {
			preview = preview[:100]
		}
		c.tel.ReportBroken(report_client_get_json, fmt.Errorf("unmarshal json: %w", err), endpoint)
		return fmt.Errorf("%w: tried to query %s but got an invalid JSON: %s", votes.ErrMalformedResponse, endpoint, preview)
	}
	return nil
}

// resolve turns an api path into a full url, absolute urls are kept and
// relative data identifiers ("org/5153") resolve against the data host.
func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return c.apiUrl + path
	}
	parsed, err := url.Parse(c.apiUrl)
	if err != nil {
		return c.apiUrl + "/" + path
	}
	return fmt.Sprintf("%s://%s/%s", parsed.Scheme, parsed.Host, path)
}

// DocumentUrl is the English HTML rendering of a document on the document site.
func (c *Client) DocumentUrl(id string) string {
	return fmt.Sprintf("%s/%s_EN.html", c.siteUrl, id)
}
