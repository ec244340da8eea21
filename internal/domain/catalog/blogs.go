package catalog

import (
	"bytes"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Category is a product or service listed next to the blog posts. Posts are
// matched to it by its keyword.
type Category struct {
	ID     string
	Title  string
	Fields Fields
}

// CategoryFromFields builds a Category from a product or service record.
func CategoryFromFields(f Fields) Category {
	if f == nil {
		f = Fields{}
	}
	return Category{
		ID:     f.String("id"),
		Title:  f.String("banner_title"),
		Fields: f,
	}
}

// Keyword returns the first word of the title.
func (c Category) Keyword() string {
	word, _, _ := strings.Cut(strings.TrimSpace(c.Title), " ")
	return word
}

// BlogListing is the blog page: the posts and the categories shown with them.
type BlogListing struct {
	Blogs             []BlogRecord
	ProductCategories []Category
	ServiceCategories []Category
}

// Set reports whether key is present with a non-null value.
func (f Fields) Set(key string) bool {
	raw := bytes.TrimSpace(f[key])
	return len(raw) > 0 && string(raw) != "null"
}

// FilterBlogs returns the blog items visible for a tab, a category keyword and
// a search query. All three apply together:
//   - TabProducts keeps posts with a product_id, TabServices posts with a
//     service_id;
//   - a category keeps posts whose banner_title or blog_title contains it;
//   - a query that is not blank does the same with the query.
//
// Matching is case-insensitive. The result is always a fresh slice.
func FilterBlogs(blogs []Item, query string, tab Tab, category string) []Item {
	out := slices.Clone(blogs)

	switch tab {
	case TabProducts:
		out = lo.Filter(out, func(it Item, _ int) bool { return blogHas(it, "product_id") })
	case TabServices:
		out = lo.Filter(out, func(it Item, _ int) bool { return blogHas(it, "service_id") })
	}
	if word := strings.TrimSpace(category); word != "" {
		out = lo.Filter(out, func(it Item, _ int) bool { return blogMatches(it, word) })
	}
	if strings.TrimSpace(query) != "" {
		out = lo.Filter(out, func(it Item, _ int) bool { return blogMatches(it, query) })
	}
	return out
}

func blogHas(it Item, key string) bool {
	return it.Blog != nil && it.Blog.Fields.Set(key)
}

func blogMatches(it Item, term string) bool {
	if it.Blog == nil {
		return false
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(it.Blog.Fields.String("banner_title")), term) ||
		strings.Contains(strings.ToLower(it.Blog.BlogTitle), term)
}
