package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/orbit-storefront/internal/domain/catalog"
)

// GetCatalog returns the catalog filtered by the q and tab query parameters,
// along with the store flags.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	tab, err := catalog.ParseTab(r.URL.Query().Get("tab"))
	if err != nil {
		fail(w, r, err)
		return
	}

	snap := h.catalog.Snapshot()
	items := snap.Filter(r.URL.Query().Get("q"), tab)

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) { h.encodeItems(e, items) })
		e.Field("count", func(e *jx.Encoder) { e.Int(len(items)) })
		h.encodeFlags(e, snap)
	})
	writeJSON(w, http.StatusOK, &e)
}

// ListBlogs returns the blog posts, newest first, filtered by the q, tab and
// category query parameters, with the category lists.
func (h *Handler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tab, err := catalog.ParseTab(q.Get("tab"))
	if err != nil {
		fail(w, r, err)
		return
	}

	snap := h.catalog.Snapshot()
	items := catalog.FilterBlogs(snap.Blogs, q.Get("q"), tab, q.Get("category"))

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) { h.encodeItems(e, items) })
		e.Field("count", func(e *jx.Encoder) { e.Int(len(items)) })
		e.Field("productCategories", func(e *jx.Encoder) { encodeCategories(e, snap.ProductCategories) })
		e.Field("serviceCategories", func(e *jx.Encoder) { encodeCategories(e, snap.ServiceCategories) })
		h.encodeFlags(e, snap)
	})
	writeJSON(w, http.StatusOK, &e)
}

// RefreshCatalog refetches the catalog. On failure the previous catalog
// keeps being served.
func (h *Handler) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Refresh(r.Context()); err != nil {
		fail(w, r, err)
		return
	}

	snap := h.catalog.Snapshot()
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("products", func(e *jx.Encoder) { e.Int(len(snap.Products)) })
		e.Field("services", func(e *jx.Encoder) { e.Int(len(snap.Services)) })
		e.Field("blogs", func(e *jx.Encoder) { e.Int(len(snap.Blogs)) })
		h.encodeFlags(e, snap)
	})
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) encodeFlags(e *jx.Encoder, snap catalog.State) {
	e.Field("loading", func(e *jx.Encoder) { e.Bool(snap.Loading) })
	e.Field("hydrated", func(e *jx.Encoder) { e.Bool(snap.Hydrated) })
	e.Field("updatedAt", func(e *jx.Encoder) { encodeTime(e, snap.UpdatedAt) })
}
