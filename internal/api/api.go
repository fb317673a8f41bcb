// Package api exposes the catalog over HTTP: public read endpoints serving
// the in-memory snapshot and the filter engine, and admin endpoints mutating
// the catalog through the state store.
package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/parvej/showcase/internal/auth"
	"github.com/parvej/showcase/internal/domain/catalog"
)

// PriceBoundser reports the lowest and highest product price known to the
// backing store. Implemented by the Postgres document store; nil when the
// store cannot compute bounds server-side.
type PriceBoundser interface {
	PriceBounds(ctx context.Context) (min, max decimal.Decimal, err error)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// Bounds serves GET /api/products/bounds. When nil the bounds are
	// computed from the current snapshot instead.
	Bounds PriceBoundser
	// OnMutate runs after every successful admin write.
	OnMutate func()
}

// Handler serves the catalog API. All reads go through the store snapshot;
// all writes go through the store's write-through operations.
type Handler struct {
	store    *catalog.Store
	sessions *auth.Service
	bounds   PriceBoundser
	onMutate func()
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(cfg Config, store *catalog.Store, sessions *auth.Service) *Handler {
	return &Handler{
		store:    store,
		sessions: sessions,
		bounds:   cfg.Bounds,
		onMutate: cfg.OnMutate,
	}
}

// Routes returns the API route table. Admin routes are wrapped with the
// session gate; everything else is public.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/catalog", h.getCatalog)
	mux.HandleFunc("GET /api/collections", h.listCollections)
	mux.HandleFunc("GET /api/collections/{id}/products", h.listCollectionProducts)
	mux.HandleFunc("GET /api/shops", h.listShops)
	mux.HandleFunc("GET /api/tags", h.listTags)
	mux.HandleFunc("GET /api/products/search", h.searchProducts)
	mux.HandleFunc("GET /api/products/bounds", h.priceBounds)

	mux.HandleFunc("POST /api/login", h.login)
	mux.HandleFunc("POST /api/logout", h.logout)
	mux.HandleFunc("GET /api/session", h.currentSession)

	mux.Handle("POST /api/collections", h.admin(h.createCollection))
	mux.Handle("PUT /api/collections/{id}", h.admin(h.updateCollection))
	mux.Handle("DELETE /api/collections/{id}", h.admin(h.deleteCollection))
	mux.Handle("POST /api/collections/{id}/products", h.admin(h.createProduct))
	mux.Handle("PUT /api/collections/{id}/products/{productID}", h.admin(h.updateProduct))
	mux.Handle("DELETE /api/collections/{id}/products/{productID}", h.admin(h.deleteProduct))
	mux.Handle("POST /api/shops", h.admin(h.createShop))

	return mux
}

func (h *Handler) mutated() {
	if h.onMutate != nil {
		h.onMutate()
	}
}
