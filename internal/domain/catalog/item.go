// Package catalog holds the aggregated catalog store: normalized products,
// services and blog posts fetched from the content origin, and the derived
// views read by the storefront.
package catalog

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Kind discriminates the catalog item variants.
type Kind string

const (
	KindProduct Kind = "Product"
	KindService Kind = "Service"
	KindBlog    Kind = "Blog"
)

// Identity key prefixes. Source ids are only unique within their own
// collection, the prefixes keep merged keys disjoint.
const (
	productKeyPrefix = "prod-"
	serviceKeyPrefix = "serv-"
	blogKeyPrefix    = "blog-"
)

// Tab selects which kinds a filtered view is restricted to.
type Tab string

const (
	TabAll      Tab = "All"
	TabProducts Tab = "Products"
	TabServices Tab = "Services"
)

// ErrUnknownTab is returned by ParseTab for values other than All, Products
// and Services.
var ErrUnknownTab = errors.New("unknown tab")

// ParseTab parses a tab name case-insensitively. An empty string selects TabAll.
func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return TabAll, nil
	case "products":
		return TabProducts, nil
	case "services":
		return TabServices, nil
	default:
		return "", errors.Wrapf(ErrUnknownTab, "%q", s)
	}
}

// Kind returns the item kind the tab restricts to. It returns false for TabAll.
func (t Tab) Kind() (Kind, bool) {
	switch t {
	case TabProducts:
		return KindProduct, true
	case TabServices:
		return KindService, true
	default:
		return "", false
	}
}

// Fields holds every upstream field of a record as raw JSON, keyed by the
// upstream field name.
type Fields map[string]jx.Raw

// String returns the field as a string. Numbers are returned in their JSON
// form; missing, null and non-scalar values yield "".
func (f Fields) String(key string) string {
	raw, ok := f[key]
	if !ok || len(raw) == 0 {
		return ""
	}
	d := jx.DecodeBytes(raw)
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return ""
		}
		return s
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return ""
		}
		return n.String()
	case jx.Bool:
		b, err := d.Bool()
		if err != nil {
			return ""
		}
		if b {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Record is the part shared by every upstream record.
type Record struct {
	ID     string
	Slug   string
	Fields Fields
}

func recordFromFields(f Fields) Record {
	if f == nil {
		f = Fields{}
	}
	return Record{
		ID:     f.String("id"),
		Slug:   f.String("slug"),
		Fields: f,
	}
}

// ProductRecord is a product as served by the content origin.
type ProductRecord struct {
	Record
	BannerTitle  string
	ProductImage string
}

// ProductFromFields builds a ProductRecord, defaulting missing fields.
func ProductFromFields(f Fields) ProductRecord {
	return ProductRecord{
		Record:       recordFromFields(f),
		BannerTitle:  f.String("banner_title"),
		ProductImage: f.String("product_image"),
	}
}

// ServiceRecord is a service as served by the content origin.
type ServiceRecord struct {
	Record
	BannerTitle  string
	ServiceImage string
}

// ServiceFromFields builds a ServiceRecord, defaulting missing fields.
func ServiceFromFields(f Fields) ServiceRecord {
	return ServiceRecord{
		Record:       recordFromFields(f),
		BannerTitle:  f.String("banner_title"),
		ServiceImage: f.String("service_image"),
	}
}

// BlogRecord is a blog post as served by the content origin.
type BlogRecord struct {
	Record
	BlogTitle         string
	BannerImage       string
	BannerDescription string
	BlogFeatures      string
	// CreatedAt is zero when created_at is missing or unparseable.
	CreatedAt time.Time
}

// BlogFromFields builds a BlogRecord, defaulting missing fields.
func BlogFromFields(f Fields) BlogRecord {
	return BlogRecord{
		Record:            recordFromFields(f),
		BlogTitle:         f.String("blog_title"),
		BannerImage:       f.String("banner_image"),
		BannerDescription: f.String("banner_description"),
		BlogFeatures:      f.String("blog_features"),
		CreatedAt:         parseTimestamp(f.String("created_at")),
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Item is a normalized catalog entry. Exactly one of Product, Service and
// Blog is set, matching Kind.
type Item struct {
	Kind Kind
	// Key is unique across the aggregated collection.
	Key string
	// Title is matched by text search and shown on cards.
	Title string
	// Image is a path relative to the image origin.
	Image string

	// Blog only.
	Description string
	HTMLContent string

	Product *ProductRecord
	Service *ServiceRecord
	Blog    *BlogRecord
}

// Record returns the shared part of the source record.
func (it Item) Record() Record {
	switch {
	case it.Product != nil:
		return it.Product.Record
	case it.Service != nil:
		return it.Service.Record
	case it.Blog != nil:
		return it.Blog.Record
	default:
		return Record{}
	}
}

// ID returns the source id.
func (it Item) ID() string { return it.Record().ID }

// Slug returns the source slug used by the detail endpoints.
func (it Item) Slug() string { return it.Record().Slug }

// Fields returns the untouched upstream fields.
func (it Item) Fields() Fields { return it.Record().Fields }
