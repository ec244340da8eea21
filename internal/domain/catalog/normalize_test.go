package catalog

import (
	"testing"

	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(kv ...string) Fields {
	f := make(Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		var e jx.Encoder
		e.Str(kv[i+1])
		f[kv[i]] = jx.Raw(e.Bytes())
	}
	return f
}

func TestFields_String(t *testing.T) {
	f := Fields{
		"str":  jx.Raw(`"hello"`),
		"num":  jx.Raw(`42`),
		"bool": jx.Raw(`true`),
		"null": jx.Raw(`null`),
		"obj":  jx.Raw(`{"a":1}`),
	}

	assert.Equal(t, "hello", f.String("str"))
	assert.Equal(t, "42", f.String("num"))
	assert.Equal(t, "true", f.String("bool"))
	assert.Equal(t, "", f.String("null"))
	assert.Equal(t, "", f.String("obj"))
	assert.Equal(t, "", f.String("missing"))
}

func TestNormalizeProducts(t *testing.T) {
	rec := ProductFromFields(Fields{
		"id":            jx.Raw(`7`),
		"slug":          jx.Raw(`"erp-suite"`),
		"banner_title":  jx.Raw(`"ERP Suite"`),
		"product_image": jx.Raw(`"uploads/erp.png"`),
		"price":         jx.Raw(`"99"`),
	})

	items := NormalizeProducts([]ProductRecord{rec})
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, KindProduct, it.Kind)
	assert.Equal(t, "prod-7", it.Key)
	assert.Equal(t, "ERP Suite", it.Title)
	assert.Equal(t, "uploads/erp.png", it.Image)
	assert.Equal(t, "7", it.ID())
	assert.Equal(t, "erp-suite", it.Slug())
	require.NotNil(t, it.Product)
	assert.Nil(t, it.Service)
	assert.Nil(t, it.Blog)

	// Upstream fields are kept as they came.
	assert.Equal(t, jx.Raw(`"99"`), it.Fields()["price"])
}

func TestNormalizeServices(t *testing.T) {
	rec := ServiceFromFields(Fields{
		"id":            jx.Raw(`"3"`),
		"banner_title":  jx.Raw(`"App Development"`),
		"service_image": jx.Raw(`"uploads/app.png"`),
	})

	items := NormalizeServices([]ServiceRecord{rec})
	require.Len(t, items, 1)
	assert.Equal(t, KindService, items[0].Kind)
	assert.Equal(t, "serv-3", items[0].Key)
	assert.Equal(t, "App Development", items[0].Title)
	assert.Equal(t, "uploads/app.png", items[0].Image)
	require.NotNil(t, items[0].Service)
}

func TestNormalizeBlogs_Mapping(t *testing.T) {
	rec := BlogFromFields(fields(
		"id", "11",
		"blog_title", "Why POS",
		"banner_image", "uploads/pos.jpg",
		"banner_description", "Short intro",
		"blog_features", "<p>Body</p>",
		"created_at", "2024-01-01T10:00:00.000000Z",
	))

	items := NormalizeBlogs([]BlogRecord{rec})
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, KindBlog, it.Kind)
	assert.Equal(t, "blog-11", it.Key)
	assert.Equal(t, "Why POS", it.Title)
	assert.Equal(t, "uploads/pos.jpg", it.Image)
	assert.Equal(t, "Short intro", it.Description)
	assert.Equal(t, "<p>Body</p>", it.HTMLContent)
	require.NotNil(t, it.Blog)
	assert.Equal(t, 2024, it.Blog.CreatedAt.Year())
}

func TestNormalizeBlogs_SortedNewestFirst(t *testing.T) {
	records := []BlogRecord{
		BlogFromFields(fields("id", "1", "created_at", "2024-01-01")),
		BlogFromFields(fields("id", "2", "created_at", "2024-03-01")),
		BlogFromFields(fields("id", "3", "created_at", "2024-02-01")),
	}

	items := NormalizeBlogs(records)

	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.Key
	}
	assert.Equal(t, []string{"blog-2", "blog-3", "blog-1"}, keys)
}

func TestNormalizeBlogs_UnparseableLast(t *testing.T) {
	records := []BlogRecord{
		BlogFromFields(fields("id", "1", "created_at", "yesterday")),
		BlogFromFields(fields("id", "2", "created_at", "2023-05-01 08:30:00")),
		BlogFromFields(fields("id", "3")),
		BlogFromFields(fields("id", "4", "created_at", "2024-05-01 08:30:00")),
	}

	items := NormalizeBlogs(records)

	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.Key
	}
	assert.Equal(t, []string{"blog-4", "blog-2", "blog-1", "blog-3"}, keys)
}

func TestParseTab(t *testing.T) {
	tests := []struct {
		in      string
		want    Tab
		wantErr bool
	}{
		{in: "", want: TabAll},
		{in: "All", want: TabAll},
		{in: "products", want: TabProducts},
		{in: "Services", want: TabServices},
		{in: "Blogs", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTab(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownTab)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
