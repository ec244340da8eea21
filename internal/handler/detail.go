package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/orbit-storefront/internal/content"
	"github.com/xenking/orbit-storefront/internal/domain/catalog"
)

type detailFunc func(ctx context.Context, slug string) (*content.Detail, error)

// GetProduct returns a product page with its FAQs.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	h.serveDetail(w, r, catalog.KindProduct, h.content.ProductDetail)
}

// GetService returns a service page with its FAQs.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	h.serveDetail(w, r, catalog.KindService, h.content.ServiceDetail)
}

// serveDetail fetches the page and the FAQ list concurrently. A failed FAQ
// fetch only leaves the FAQ list empty.
func (h *Handler) serveDetail(w http.ResponseWriter, r *http.Request, kind catalog.Kind, fetch detailFunc) {
	ctx := r.Context()
	slug := r.PathValue("slug")

	var (
		g      errgroup.Group
		detail *content.Detail
		faqs   []catalog.FAQ
	)
	g.Go(func() error {
		d, err := fetch(ctx, slug)
		if err != nil {
			return err
		}
		detail = d
		return nil
	})
	g.Go(func() error {
		list, err := h.content.FAQs(ctx)
		if err != nil {
			zctx.From(ctx).Warn("Fetch FAQs", zap.Error(err))
			return nil
		}
		faqs = list
		return nil
	})
	if err := g.Wait(); err != nil {
		fail(w, r, err)
		return
	}

	matched := catalog.FAQsFor(faqs, kind, detail.Record.String("id"))

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("kind", func(e *jx.Encoder) { e.Str(string(kind)) })
		e.Field("record", func(e *jx.Encoder) { encodeFields(e, detail.Record) })
		e.Field("data", func(e *jx.Encoder) { encodeFields(e, detail.Data) })
		e.Field("faqs", func(e *jx.Encoder) { encodeFAQs(e, matched) })
	})
	writeJSON(w, http.StatusOK, &e)
}

// GetBlog returns a blog post with its related posts.
func (h *Handler) GetBlog(w http.ResponseWriter, r *http.Request) {
	detail, err := h.content.BlogDetail(r.Context(), r.PathValue("slug"))
	if err != nil {
		fail(w, r, err)
		return
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("kind", func(e *jx.Encoder) { e.Str(string(catalog.KindBlog)) })
		e.Field("record", func(e *jx.Encoder) { encodeFields(e, detail.Record) })
		e.Field("related", func(e *jx.Encoder) { encodeFieldsList(e, detail.Related) })
	})
	writeJSON(w, http.StatusOK, &e)
}

// GetContact returns the contact settings.
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	setting, err := h.content.Contact(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("setting", func(e *jx.Encoder) { encodeFields(e, setting) })
	})
	writeJSON(w, http.StatusOK, &e)
}
