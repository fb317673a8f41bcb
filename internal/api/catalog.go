package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/parvej/showcase/internal/domain/catalog"
	"github.com/parvej/showcase/internal/domain/filter"
	"github.com/parvej/showcase/internal/remotestore"
)

func encodeCollection(e *jx.Encoder, c catalog.Collection) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(c.ID)
	e.FieldStart("title")
	e.Str(c.Title)
	e.FieldStart("details")
	e.Str(c.Details)
	e.FieldStart("cover")
	e.Str(c.Cover)
	e.FieldStart("pinned")
	e.Bool(c.Pinned)
	e.ObjEnd()
}

func encodeProduct(e *jx.Encoder, p catalog.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("collectionId")
	e.Str(p.CollectionID)
	e.FieldStart("title")
	e.Str(p.Title)
	e.FieldStart("price")
	e.Float64(p.Price.InexactFloat64())
	e.FieldStart("details")
	e.Str(p.Details)
	e.FieldStart("link")
	e.Str(p.Link)
	e.FieldStart("tags")
	encodeStringArr(e, p.Tags)
	e.FieldStart("images")
	encodeStringArr(e, p.Images)
	e.FieldStart("shopName")
	e.Str(p.ShopName)
	e.ObjEnd()
}

func encodeShop(e *jx.Encoder, s catalog.Shop) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(s.ID)
	e.FieldStart("name")
	e.Str(s.Name)
	e.ObjEnd()
}

func encodeStringArr(e *jx.Encoder, values []string) {
	e.ArrStart()
	for _, v := range values {
		e.Str(v)
	}
	e.ArrEnd()
}

func encodeProducts(e *jx.Encoder, products []catalog.Product) {
	e.ArrStart()
	for _, p := range products {
		encodeProduct(e, p)
	}
	e.ArrEnd()
}

func encodeCollections(e *jx.Encoder, collections []catalog.Collection) {
	e.ArrStart()
	for _, c := range collections {
		encodeCollection(e, c)
	}
	e.ArrEnd()
}

// getCatalog serves the full snapshot: pinned collections first, then the
// rest, products grouped per collection, and every shop.
func (h *Handler) getCatalog(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	pinned, others := filter.SplitPinned(st.Collections)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("pinned")
		encodeCollections(e, pinned)
		e.FieldStart("collections")
		encodeCollections(e, others)
		e.FieldStart("products")
		e.ObjStart()
		for _, c := range st.Collections {
			e.FieldStart(c.ID)
			encodeProducts(e, st.ProductsByCollection[c.ID])
		}
		e.ObjEnd()
		e.FieldStart("shops")
		e.ArrStart()
		for _, s := range st.Shops {
			encodeShop(e, s)
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

func (h *Handler) listCollections(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCollections(e, st.Collections)
	})
}

func (h *Handler) listCollectionProducts(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	id := r.PathValue("id")

	products, ok := st.ProductsByCollection[id]
	if !ok {
		writeError(w, r, catalog.ErrCollectionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProducts(e, products)
	})
}

func (h *Handler) listShops(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, s := range st.Shops {
			encodeShop(e, s)
		}
		e.ArrEnd()
	})
}

func (h *Handler) listTags(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeStringArr(e, filter.AllTags(st.ProductsByCollection))
	})
}

// searchProducts applies the query-param criteria to all products in
// collection order. The "active" flag tells the client whether the filtered
// view replaces the grouped one.
func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	st := h.store.Snapshot()
	visible := filter.Visible(st.AllProducts(), criteria)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("active")
		e.Bool(criteria.Active())
		e.FieldStart("products")
		encodeProducts(e, visible)
		e.ObjEnd()
	})
}

func criteriaFromQuery(r *http.Request) (filter.Criteria, error) {
	q := r.URL.Query()
	c := filter.Default()

	c.SearchText = q.Get("query")
	for _, tag := range q["tag"] {
		c.SelectedTags[tag] = struct{}{}
	}
	for _, shop := range q["shop"] {
		c.SelectedShopNames[shop] = struct{}{}
	}

	if raw := q.Get("priceMin"); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			return c, badRequest("invalid priceMin")
		}
		c.PriceMin = min
	}
	if raw := q.Get("priceMax"); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			return c, badRequest("invalid priceMax")
		}
		c.PriceMax = max
	}
	return c, nil
}

// priceBounds serves the slider bounds: the store-computed NUMERIC min/max
// when available, otherwise a scan over the current snapshot.
func (h *Handler) priceBounds(w http.ResponseWriter, r *http.Request) {
	min, max := filter.DefaultPriceMin, filter.DefaultPriceMax

	if h.bounds != nil {
		lo, hi, err := h.bounds.PriceBounds(r.Context())
		switch {
		case err == nil:
			min, max = lo, hi
		case errors.Is(err, remotestore.ErrNotFound):
			// empty store, keep the defaults
		default:
			writeError(w, r, err)
			return
		}
	} else if products := h.store.Snapshot().AllProducts(); len(products) > 0 {
		min, max = products[0].Price, products[0].Price
		for _, p := range products[1:] {
			if p.Price.LessThan(min) {
				min = p.Price
			}
			if p.Price.GreaterThan(max) {
				max = p.Price
			}
		}
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("min")
		e.Float64(min.InexactFloat64())
		e.FieldStart("max")
		e.Float64(max.InexactFloat64())
		e.ObjEnd()
	})
}
