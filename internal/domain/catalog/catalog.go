// Package catalog holds the catalog entities and the state store that keeps
// an in-process snapshot synchronized with the remote document store.
package catalog

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Remote collection names used by the document store.
const (
	CollectionsRemote = "collections"
	ProductsRemote    = "products"
	ShopsRemote       = "shops"
)

// Sentinel errors for catalog operations.
var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrShopExists         = errors.New("shop name already exists")
	ErrNegativePrice      = errors.New("price must be non-negative")
)

// CascadeDeleteError reports a collection delete that failed partway through
// removing the collection's products. Already-deleted products are not
// restored; the local snapshot is left at its pre-operation state.
type CascadeDeleteError struct {
	CollectionID    string
	FailedProductID string
	Deleted         int
	Err             error
}

func (e *CascadeDeleteError) Error() string {
	return fmt.Sprintf("cascade delete of collection %s stopped at product %s after %d deletions: %v",
		e.CollectionID, e.FailedProductID, e.Deleted, e.Err)
}

func (e *CascadeDeleteError) Unwrap() error { return e.Err }

// Collection is a named grouping of products with an optional cover image
// and a pin flag for featured display.
type Collection struct {
	ID      string
	Title   string
	Details string
	Cover   string
	Pinned  bool
}

// Product is a catalog item belonging to exactly one collection. Tags and
// Images keep insertion order; the first image is the primary display image.
type Product struct {
	ID           string
	CollectionID string
	Title        string
	Price        decimal.Decimal
	Details      string
	Link         string
	Tags         []string
	Images       []string
	ShopName     string
}

// Shop is a named vendor attribution attachable to products.
type Shop struct {
	ID   string
	Name string
}

// State is the normalized in-memory view of the catalog. Collections with no
// products still have an (empty) entry in ProductsByCollection.
type State struct {
	Collections          []Collection
	ProductsByCollection map[string][]Product
	Shops                []Shop
}

// AllProducts returns every product across every collection, collection by
// collection in State.Collections order, preserving per-collection order.
func (s State) AllProducts() []Product {
	var out []Product
	for _, c := range s.Collections {
		out = append(out, s.ProductsByCollection[c.ID]...)
	}
	return out
}
