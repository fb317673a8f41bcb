//go:build integration

package integration

import (
	"net/http"
	"testing"
)

// TestCatalogLifecycle drives the full admin flow end to end: collection,
// products, shop, search, cascade delete.
func TestCatalogLifecycle(t *testing.T) {
	// Create a pinned collection.
	resp := doAdmin(t, http.MethodPost, "/api/collections", map[string]any{
		"title":  "Sneakers",
		"pinned": true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create collection: expected 201, got %d", resp.StatusCode)
	}
	coll := decodeJSON[collectionResponse](t, resp)
	resp.Body.Close()
	if coll.ID == "" || !coll.Pinned {
		t.Fatalf("unexpected collection: %+v", coll)
	}

	// Create two products inside it.
	var productIDs []string
	for _, p := range []map[string]any{
		{"title": "Red Shoe", "price": 120.0, "tags": []string{"red", "shoe"}, "shopName": "Nile Imports"},
		{"title": "Blue Shoe", "price": 45.5, "tags": []string{"blue", "shoe"}},
	} {
		resp = doAdmin(t, http.MethodPost, "/api/collections/"+coll.ID+"/products", p)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create product: expected 201, got %d", resp.StatusCode)
		}
		created := decodeJSON[productResponse](t, resp)
		resp.Body.Close()
		productIDs = append(productIDs, created.ID)
	}

	// Register the shop.
	resp = doAdmin(t, http.MethodPost, "/api/shops", map[string]any{"name": "Nile Imports"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create shop: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Duplicate shop name (case-insensitive) is rejected.
	resp = doAdmin(t, http.MethodPost, "/api/shops", map[string]any{"name": "NILE IMPORTS"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate shop: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Snapshot reflects the writes immediately (write-through).
	resp = doGet(t, "/api/catalog")
	snapshot := decodeJSON[catalogResponse](t, resp)
	resp.Body.Close()
	if len(snapshot.Pinned) != 1 || snapshot.Pinned[0].ID != coll.ID {
		t.Fatalf("expected pinned collection %s, got %+v", coll.ID, snapshot.Pinned)
	}
	if got := len(snapshot.Products[coll.ID]); got != 2 {
		t.Fatalf("expected 2 products in collection, got %d", got)
	}

	// Search filters by text, case-insensitively.
	resp = doGet(t, "/api/products/search?query=red")
	search := decodeJSON[searchResponse](t, resp)
	resp.Body.Close()
	if !search.Active {
		t.Error("expected active filter view")
	}
	if len(search.Products) != 1 || search.Products[0].Title != "Red Shoe" {
		t.Fatalf("search: expected Red Shoe, got %+v", search.Products)
	}

	// Price range is inclusive of its endpoints.
	resp = doGet(t, "/api/products/search?priceMin=45.5&priceMax=45.5")
	search = decodeJSON[searchResponse](t, resp)
	resp.Body.Close()
	if len(search.Products) != 1 || search.Products[0].Title != "Blue Shoe" {
		t.Fatalf("price search: expected Blue Shoe, got %+v", search.Products)
	}

	// Tags are aggregated and sorted.
	resp = doGet(t, "/api/tags")
	tags := decodeJSON[[]string](t, resp)
	resp.Body.Close()
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %v", tags)
	}

	// Bounds come from the NUMERIC aggregate.
	resp = doGet(t, "/api/products/bounds")
	bounds := decodeJSON[struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	}](t, resp)
	resp.Body.Close()
	if bounds.Min != 45.5 || bounds.Max != 120.0 {
		t.Fatalf("bounds: got %+v", bounds)
	}

	// Update adopts the store-confirmed record.
	resp = doAdmin(t, http.MethodPut, "/api/collections/"+coll.ID+"/products/"+productIDs[0], map[string]any{
		"title": "Red Shoe v2",
		"price": 130.0,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update product: expected 200, got %d", resp.StatusCode)
	}
	updated := decodeJSON[productResponse](t, resp)
	resp.Body.Close()
	if updated.Title != "Red Shoe v2" || updated.Price != 130.0 {
		t.Fatalf("update product: got %+v", updated)
	}

	// Deleting the collection removes its products first, then the group.
	resp = doAdmin(t, http.MethodDelete, "/api/collections/"+coll.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete collection: expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doGet(t, "/api/collections/" + coll.ID + "/products")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after cascade delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doGet(t, "/api/products/search?query=shoe")
	search = decodeJSON[searchResponse](t, resp)
	resp.Body.Close()
	if len(search.Products) != 0 {
		t.Fatalf("expected no products after cascade delete, got %+v", search.Products)
	}
}

func TestAdminEndpointsRequireSession(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/collections", nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusUnauthorized {
		t.Errorf("error body code: got %d", body.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	if _, err := login(adminEmail, "wrong"); err == nil {
		t.Fatal("expected login failure")
	}
}
