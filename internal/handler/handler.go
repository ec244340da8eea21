// Package handler serves the storefront gateway API over net/http.
package handler

import (
	"context"
	"net/http"

	"github.com/xenking/orbit-storefront/internal/content"
	"github.com/xenking/orbit-storefront/internal/domain/cart"
	"github.com/xenking/orbit-storefront/internal/domain/catalog"
	"github.com/xenking/orbit-storefront/pkg/httpmiddleware"
)

// Catalog is the aggregated catalog store.
type Catalog interface {
	Snapshot() catalog.State
	Refresh(ctx context.Context) error
}

// Content serves the secondary pages straight from the content origin.
type Content interface {
	ProductDetail(ctx context.Context, slug string) (*content.Detail, error)
	ServiceDetail(ctx context.Context, slug string) (*content.Detail, error)
	BlogDetail(ctx context.Context, slug string) (*content.Detail, error)
	FAQs(ctx context.Context) ([]catalog.FAQ, error)
	Contact(ctx context.Context) (catalog.Fields, error)
}

// Cart is the cart service.
type Cart interface {
	List(ctx context.Context, email string) ([]cart.Entry, error)
	Add(ctx context.Context, email, productID string) (*cart.Result, error)
	Remove(ctx context.Context, email, productID string) (*cart.Result, error)
}

var (
	_ Catalog = (*catalog.Store)(nil)
	_ Content = (*content.Client)(nil)
	_ Cart    = (*cart.Service)(nil)
)

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// ImageBaseURL is joined with relative image paths to form imageUrl.
	// When empty, imageUrl equals the stored path.
	ImageBaseURL string
}

// Handler implements the gateway routes.
type Handler struct {
	catalog      Catalog
	content      Content
	cart         Cart
	imageBaseURL string
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(cfg HandlerConfig, cat Catalog, cnt Content, crt Cart) *Handler {
	return &Handler{
		catalog:      cat,
		content:      cnt,
		cart:         crt,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Register mounts the API routes on mux. Routes that change shared state
// are wrapped with protect.
func (h *Handler) Register(mux *http.ServeMux, protect httpmiddleware.Middleware) {
	mux.HandleFunc("GET /api/catalog", h.GetCatalog)
	mux.Handle("POST /api/catalog/refresh", protect(http.HandlerFunc(h.RefreshCatalog)))
	mux.HandleFunc("GET /api/blogs", h.ListBlogs)
	mux.HandleFunc("GET /api/blogs/{slug}", h.GetBlog)
	mux.HandleFunc("GET /api/products/{slug}", h.GetProduct)
	mux.HandleFunc("GET /api/services/{slug}", h.GetService)
	mux.HandleFunc("GET /api/contact", h.GetContact)
	mux.HandleFunc("GET /api/cart", h.ListCart)
	mux.HandleFunc("POST /api/cart", h.AddToCart)
	mux.HandleFunc("DELETE /api/cart", h.RemoveFromCart)
}
