package content

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"github.com/tidwall/gjson"

	"github.com/xenking/orbit-storefront/internal/domain/catalog"
)

// ErrEmptySlug is returned by the detail methods for a blank slug.
var ErrEmptySlug = errors.New("slug is required")

// Detail is a product, service or blog detail page.
type Detail struct {
	// Record is the entity itself.
	Record catalog.Fields
	// Data is the whole data object, including page sections around Record.
	Data catalog.Fields
	// Related lists related posts. Blogs only.
	Related []catalog.Fields
}

// ProductDetail returns the product page for slug.
func (c *Client) ProductDetail(ctx context.Context, slug string) (*Detail, error) {
	d, _, err := c.detail(ctx, "api/product/", slug, "data.product")
	return d, err
}

// ServiceDetail returns the service page for slug.
func (c *Client) ServiceDetail(ctx context.Context, slug string) (*Detail, error) {
	d, _, err := c.detail(ctx, "api/services/", slug, "data.service")
	return d, err
}

// BlogDetail returns the blog post for slug with its related posts. Older
// responses put the post directly in data.
func (c *Client) BlogDetail(ctx context.Context, slug string) (*Detail, error) {
	d, body, err := c.detail(ctx, "api/blog/", slug, "data.blog", "data")
	if err != nil {
		return nil, err
	}
	related, err := records(body, "data.related_blogs")
	if err != nil {
		return nil, malformed("api/blog/"+slug, err)
	}
	d.Related = related
	return d, nil
}

func (c *Client) detail(ctx context.Context, prefix, slug string, recordPaths ...string) (*Detail, []byte, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil, ErrEmptySlug
	}
	endpoint := prefix + url.PathEscape(slug)
	body, err := c.getSuccess(ctx, endpoint)
	if err != nil {
		return nil, nil, err
	}

	data, err := object(body, "data")
	if err != nil {
		return nil, nil, malformed(endpoint, err)
	}
	d := &Detail{Data: data, Record: catalog.Fields{}}
	for _, path := range recordPaths {
		if !gjson.GetBytes(body, path).IsObject() {
			continue
		}
		if d.Record, err = object(body, path); err != nil {
			return nil, nil, malformed(endpoint, err)
		}
		break
	}
	return d, body, nil
}
