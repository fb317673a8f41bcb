package api

import (
	"io"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/parvej/showcase/internal/domain/catalog"
)

const maxBodySize = 1 << 20

func decodeBody(r *http.Request, field func(d *jx.Decoder, key string) error) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return badRequest("read body")
	}
	d := jx.DecodeBytes(body)
	if err := d.Obj(field); err != nil {
		return badRequest("malformed JSON body")
	}
	return nil
}

func decodeStringArr(d *jx.Decoder) ([]string, error) {
	var out []string
	err := d.Arr(func(d *jx.Decoder) error {
		s, err := d.Str()
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

func decodeCollection(r *http.Request) (catalog.Collection, error) {
	var c catalog.Collection
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "title":
			c.Title, err = d.Str()
		case "details":
			c.Details, err = d.Str()
		case "cover":
			c.Cover, err = d.Str()
		case "pinned":
			c.Pinned, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return catalog.Collection{}, err
	}
	if c.Title == "" {
		return catalog.Collection{}, badRequest("title is required")
	}
	return c, nil
}

func decodeProduct(r *http.Request) (catalog.Product, error) {
	var p catalog.Product
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "title":
			p.Title, err = d.Str()
		case "price":
			var f float64
			if f, err = d.Float64(); err == nil {
				p.Price = decimal.NewFromFloat(f)
			}
		case "details":
			p.Details, err = d.Str()
		case "link":
			p.Link, err = d.Str()
		case "tags":
			p.Tags, err = decodeStringArr(d)
		case "images":
			p.Images, err = decodeStringArr(d)
		case "shopName":
			p.ShopName, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return catalog.Product{}, err
	}
	if p.Title == "" {
		return catalog.Product{}, badRequest("title is required")
	}
	return p, nil
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var email, password string
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "email":
			email, err = d.Str()
		case "password":
			password, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.sessions.Login(email, password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("token")
		e.Str(token)
		e.ObjEnd()
	})
}

func (h *Handler) createCollection(w http.ResponseWriter, r *http.Request) {
	draft, err := decodeCollection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.store.CreateCollection(r.Context(), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.mutated()
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeCollection(e, created)
	})
}

func (h *Handler) updateCollection(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCollection(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c.ID = r.PathValue("id")

	updated, err := h.store.UpdateCollection(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.mutated()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCollection(e, updated)
	})
}

func (h *Handler) deleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCollection(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	h.mutated()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	draft, err := decodeProduct(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.store.CreateProduct(r.Context(), r.PathValue("id"), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.mutated()
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeProduct(e, created)
	})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	p, err := decodeProduct(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p.CollectionID = r.PathValue("id")
	p.ID = r.PathValue("productID")

	updated, err := h.store.UpdateProduct(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.mutated()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, updated)
	})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteProduct(r.Context(), r.PathValue("id"), r.PathValue("productID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.mutated()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createShop(w http.ResponseWriter, r *http.Request) {
	var name string
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		if key == "name" {
			name, err = d.Str()
			return err
		}
		return d.Skip()
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if name == "" {
		writeError(w, r, badRequest("name is required"))
		return
	}

	shop, err := h.store.CreateShop(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.mutated()
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeShop(e, shop)
	})
}
