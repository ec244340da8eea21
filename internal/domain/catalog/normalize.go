package catalog

import (
	"sort"

	"github.com/samber/lo"
)

// NormalizeProducts maps product records to items, keeping upstream order.
func NormalizeProducts(records []ProductRecord) []Item {
	return lo.Map(records, func(r ProductRecord, _ int) Item {
		return Item{
			Kind:    KindProduct,
			Key:     productKeyPrefix + r.ID,
			Title:   r.BannerTitle,
			Image:   r.ProductImage,
			Product: &r,
		}
	})
}

// NormalizeServices maps service records to items, keeping upstream order.
func NormalizeServices(records []ServiceRecord) []Item {
	return lo.Map(records, func(r ServiceRecord, _ int) Item {
		return Item{
			Kind:    KindService,
			Key:     serviceKeyPrefix + r.ID,
			Title:   r.BannerTitle,
			Image:   r.ServiceImage,
			Service: &r,
		}
	})
}

// NormalizeBlogs maps blog records to items sorted newest first. Posts
// without a parseable created_at go last, in upstream order.
func NormalizeBlogs(records []BlogRecord) []Item {
	items := lo.Map(records, func(r BlogRecord, _ int) Item {
		return Item{
			Kind:        KindBlog,
			Key:         blogKeyPrefix + r.ID,
			Title:       r.BlogTitle,
			Image:       r.BannerImage,
			Description: r.BannerDescription,
			HTMLContent: r.BlogFeatures,
			Blog:        &r,
		}
	})
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Blog.CreatedAt, items[j].Blog.CreatedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
	return items
}
