// Package content is the client for the storefront content origin: the
// catalog collections aggregated by the catalog store and the secondary
// endpoints behind detail pages.
package content

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/xenking/orbit-storefront/internal/domain/catalog"
)

// DefaultBaseURL is the production content origin.
const DefaultBaseURL = "https://orbitmediasolutions.com/"

const defaultMaxBodyBytes = 8 << 20

var _ catalog.Source = (*Client)(nil)

// Config holds the content client settings.
type Config struct {
	// BaseURL is the content origin. Defaults to DefaultBaseURL.
	BaseURL string
	// HTTPClient performs the requests. Defaults to a client without timeout.
	HTTPClient *http.Client
	// MaxBodyBytes caps response bodies. Defaults to 8 MiB.
	MaxBodyBytes int64
}

// Client reads JSON documents from the content origin.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	maxBody int64
}

// New creates a content client.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, errors.Errorf("invalid base url %q", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	return &Client{
		baseURL: u,
		http:    httpClient,
		maxBody: maxBody,
	}, nil
}

// BaseURL returns the content origin.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// get fetches endpoint (relative to the origin) and returns the body once it
// is known to be a 2xx JSON document.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Err: err}
	}
	target := c.baseURL.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: errors.Wrap(err, "read body")}
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, &FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: ErrNotFound}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        errors.Errorf("unexpected status: %s", strings.TrimSpace(string(body))),
		}
	}
	if !gjson.ValidBytes(body) {
		return nil, &FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: errors.New("invalid json")}
	}
	return body, nil
}

// getSuccess is get for endpoints wrapped in a {success, data} envelope.
func (c *Client) getSuccess(ctx context.Context, endpoint string) ([]byte, error) {
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if !gjson.GetBytes(body, "success").Bool() {
		return nil, &FetchError{Endpoint: endpoint, StatusCode: http.StatusOK, Err: ErrUnsuccessful}
	}
	return body, nil
}

func malformed(endpoint string, err error) error {
	return &FetchError{Endpoint: endpoint, StatusCode: http.StatusOK, Err: err}
}

// Products returns every product.
func (c *Client) Products(ctx context.Context) ([]catalog.ProductRecord, error) {
	const endpoint = "api/all-products"
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	recs, err := records(body, "products")
	if err != nil {
		return nil, malformed(endpoint, err)
	}
	return lo.Map(recs, func(f catalog.Fields, _ int) catalog.ProductRecord {
		return catalog.ProductFromFields(f)
	}), nil
}

// Services returns every service. Both the paginated {services: {data}}
// shape and a bare {data} are accepted.
func (c *Client) Services(ctx context.Context) ([]catalog.ServiceRecord, error) {
	const endpoint = "api/all-services"
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	recs, err := records(body, "services.data", "data")
	if err != nil {
		return nil, malformed(endpoint, err)
	}
	return lo.Map(recs, func(f catalog.Fields, _ int) catalog.ServiceRecord {
		return catalog.ServiceFromFields(f)
	}), nil
}

// Blogs returns the blog page: every post in upstream order and the product
// and service categories listed with them.
func (c *Client) Blogs(ctx context.Context) (catalog.BlogListing, error) {
	const endpoint = "api/blog/page"
	body, err := c.getSuccess(ctx, endpoint)
	if err != nil {
		return catalog.BlogListing{}, err
	}
	blogs, err := records(body, "data.blogs")
	if err != nil {
		return catalog.BlogListing{}, malformed(endpoint, err)
	}
	products, err := records(body, "data.itemProducts")
	if err != nil {
		return catalog.BlogListing{}, malformed(endpoint, err)
	}
	services, err := records(body, "data.itemService")
	if err != nil {
		return catalog.BlogListing{}, malformed(endpoint, err)
	}
	return catalog.BlogListing{
		Blogs:             lo.Map(blogs, func(f catalog.Fields, _ int) catalog.BlogRecord { return catalog.BlogFromFields(f) }),
		ProductCategories: lo.Map(products, func(f catalog.Fields, _ int) catalog.Category { return catalog.CategoryFromFields(f) }),
		ServiceCategories: lo.Map(services, func(f catalog.Fields, _ int) catalog.Category { return catalog.CategoryFromFields(f) }),
	}, nil
}

// Contact returns the contact settings (address, phone, email).
func (c *Client) Contact(ctx context.Context) (catalog.Fields, error) {
	const endpoint = "api/contact"
	body, err := c.getSuccess(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	setting, err := object(body, "data.setting")
	if err != nil {
		return nil, malformed(endpoint, err)
	}
	return setting, nil
}

// FAQs returns every FAQ. A response without status=true carries no FAQs.
func (c *Client) FAQs(ctx context.Context) ([]catalog.FAQ, error) {
	const endpoint = "api/faq/index"
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if !gjson.GetBytes(body, "status").Bool() {
		return nil, nil
	}
	recs, err := records(body, "data")
	if err != nil {
		return nil, malformed(endpoint, err)
	}
	return lo.Map(recs, func(f catalog.Fields, _ int) catalog.FAQ {
		return catalog.FAQFromFields(f)
	}), nil
}
