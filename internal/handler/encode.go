package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-faster/jx"

	"github.com/xenking/orbit-storefront/internal/content"
	"github.com/xenking/orbit-storefront/internal/domain/cart"
	"github.com/xenking/orbit-storefront/internal/domain/catalog"
)

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})
	writeJSON(w, status, &e)
}

func encodeTime(e *jx.Encoder, t time.Time) {
	if t.IsZero() {
		e.Null()
		return
	}
	e.Str(t.UTC().Format(time.RFC3339))
}

// encodeFields writes upstream fields untouched, keys sorted.
func encodeFields(e *jx.Encoder, f catalog.Fields) {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e.ObjStart()
	for _, k := range keys {
		e.FieldStart(k)
		if len(f[k]) == 0 {
			e.Null()
			continue
		}
		e.Raw(f[k])
	}
	e.ObjEnd()
}

func encodeFieldsList(e *jx.Encoder, list []catalog.Fields) {
	e.ArrStart()
	for _, f := range list {
		encodeFields(e, f)
	}
	e.ArrEnd()
}

func (h *Handler) encodeItem(e *jx.Encoder, it catalog.Item) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("kind", func(e *jx.Encoder) { e.Str(string(it.Kind)) })
		e.Field("key", func(e *jx.Encoder) { e.Str(it.Key) })
		e.Field("id", func(e *jx.Encoder) { e.Str(it.ID()) })
		e.Field("slug", func(e *jx.Encoder) { e.Str(it.Slug()) })
		e.Field("title", func(e *jx.Encoder) { e.Str(it.Title) })
		e.Field("image", func(e *jx.Encoder) { e.Str(it.Image) })
		e.Field("imageUrl", func(e *jx.Encoder) { e.Str(content.ImageURL(h.imageBaseURL, it.Image)) })
		if it.Blog != nil {
			e.Field("description", func(e *jx.Encoder) { e.Str(it.Description) })
			e.Field("htmlContent", func(e *jx.Encoder) { e.Str(it.HTMLContent) })
			e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, it.Blog.CreatedAt) })
		}
		e.Field("fields", func(e *jx.Encoder) { encodeFields(e, it.Fields()) })
	})
}

func (h *Handler) encodeItems(e *jx.Encoder, items []catalog.Item) {
	e.ArrStart()
	for _, it := range items {
		h.encodeItem(e, it)
	}
	e.ArrEnd()
}

func encodeCategories(e *jx.Encoder, cats []catalog.Category) {
	e.ArrStart()
	for _, c := range cats {
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Str(c.ID) })
			e.Field("title", func(e *jx.Encoder) { e.Str(c.Title) })
			e.Field("keyword", func(e *jx.Encoder) { e.Str(c.Keyword()) })
		})
	}
	e.ArrEnd()
}

func encodeFAQs(e *jx.Encoder, faqs []catalog.FAQ) {
	e.ArrStart()
	for _, f := range faqs {
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Str(f.ID) })
			e.Field("title", func(e *jx.Encoder) { e.Str(f.Title) })
			e.Field("description", func(e *jx.Encoder) { e.Str(f.Description) })
		})
	}
	e.ArrEnd()
}

func encodeLine(e *jx.Encoder, l *cart.Line) {
	if l == nil {
		e.Null()
		return
	}
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(l.ID) })
		e.Field("productId", func(e *jx.Encoder) { e.Str(l.ProductID) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
		e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, l.CreatedAt) })
		e.Field("updatedAt", func(e *jx.Encoder) { encodeTime(e, l.UpdatedAt) })
	})
}
