package catalog

import (
	"testing"

	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
)

func testBlogs() []Item {
	erp := fields("id", "1", "blog_title", "Choosing an ERP", "banner_title", "Cloud ERP guide")
	erp["product_id"] = jx.Raw(`3`)
	erp["service_id"] = jx.Raw(`null`)

	web := fields("id", "2", "blog_title", "Web trends", "banner_title", "Design in 2024")
	web["service_id"] = jx.Raw(`7`)
	web["product_id"] = jx.Raw(`null`)

	news := fields("id", "3", "blog_title", "Company news", "banner_title", "Cloud team grows")

	return NormalizeBlogs([]BlogRecord{BlogFromFields(erp), BlogFromFields(web), BlogFromFields(news)})
}

func TestFilterBlogs(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		tab      Tab
		category string
		want     []string
	}{
		{name: "all", tab: TabAll, want: []string{"blog-1", "blog-2", "blog-3"}},
		{name: "products tab", tab: TabProducts, want: []string{"blog-1"}},
		{name: "services tab", tab: TabServices, want: []string{"blog-2"}},
		{name: "category matches banner title", tab: TabAll, category: "cloud", want: []string{"blog-1", "blog-3"}},
		{name: "category matches blog title", tab: TabAll, category: "Web", want: []string{"blog-2"}},
		{name: "category within tab", tab: TabProducts, category: "Cloud", want: []string{"blog-1"}},
		{name: "query over both titles", tab: TabAll, query: "NEWS", want: []string{"blog-3"}},
		{name: "query and tab", tab: TabServices, query: "erp", want: []string{}},
		{name: "blank query ignored", tab: TabAll, query: "   ", want: []string{"blog-1", "blog-2", "blog-3"}},
		{name: "all three", tab: TabProducts, category: "cloud", query: "choosing", want: []string{"blog-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterBlogs(testBlogs(), tt.query, tt.tab, tt.category)
			keys := make([]string, 0, len(got))
			for _, it := range got {
				keys = append(keys, it.Key)
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestFilterBlogs_DoesNotAlias(t *testing.T) {
	blogs := testBlogs()
	got := FilterBlogs(blogs, "", TabAll, "")
	got[0] = Item{}
	assert.Equal(t, "blog-1", blogs[0].Key)
}

func TestFields_Set(t *testing.T) {
	f := Fields{"a": jx.Raw(`1`), "b": jx.Raw(`null`), "c": jx.Raw(` null `), "d": jx.Raw(`""`)}
	assert.True(t, f.Set("a"))
	assert.False(t, f.Set("b"))
	assert.False(t, f.Set("c"))
	assert.True(t, f.Set("d"))
	assert.False(t, f.Set("missing"))
}

func TestCategory_Keyword(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{title: "Cloud ERP", want: "Cloud"},
		{title: "  Web Design", want: "Web"},
		{title: "Single", want: "Single"},
		{title: "", want: ""},
	}
	for _, tt := range tests {
		c := CategoryFromFields(fields("banner_title", tt.title))
		assert.Equal(t, tt.want, c.Keyword(), tt.title)
	}
}
