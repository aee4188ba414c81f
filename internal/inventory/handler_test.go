package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(cat *memoryCatalog, connectErr error) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	connector := ConnectorFunc(func(ctx context.Context) (Catalog, error) {
		if connectErr != nil {
			return nil, connectErr
		}
		return cat, nil
	})
	h := NewHandler(logger, NewService(logger), connector)

	r := chi.NewRouter()
	r.Use(SupportedMethods)
	r.NotFound(h.NotFound)
	h.MountRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, reader))

	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decoded), rr.Body.String())
	return rr, decoded
}

func TestHandlerListInventoryPagination(t *testing.T) {
	cat := newMemoryCatalog()
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
		cat.addProduct(name, 1)
	}
	rr, body := do(t, newTestRouter(cat, nil), http.MethodGet, "/?limit=5&offset=0", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["found"])
	assert.Len(t, body["data"], 5)
	assert.Equal(t, "Found 5 product(s)", body["message"])

	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(12), pagination["total_count"])
	assert.Equal(t, float64(5), pagination["limit"])
	assert.Equal(t, float64(0), pagination["offset"])
	assert.Equal(t, true, pagination["has_more"])

	filters := body["filters_applied"].(map[string]any)
	assert.Equal(t, "GET", filters["search_method"])
	assert.Nil(t, filters["category_id"])

	first := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "A", first["name"])
	assert.Contains(t, first, "price")
	assert.Contains(t, first, "cost_price")
	assert.Equal(t, []any{}, first["tags"])
}

func TestHandlerSearchWithoutMatches(t *testing.T) {
	cat := newMemoryCatalog()
	cat.addProduct("Flour", 2)

	rr, body := do(t, newTestRouter(cat, nil), http.MethodPost, "/search", `{"product_name":"caviar"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, body["found"])
	assert.Equal(t, []any{}, body["data"])
	assert.Equal(t, "No products found matching: caviar", body["message"])
	assert.Equal(t, "POST", body["filters_applied"].(map[string]any)["search_method"])
}

func TestHandlerListInventoryRejectsBadLimit(t *testing.T) {
	rr, body := do(t, newTestRouter(newMemoryCatalog(), nil), http.MethodGet, "/?limit=abc", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "limit must be a number", body["error"])
}

func TestHandlerPostSearchRequiresBody(t *testing.T) {
	rr, body := do(t, newTestRouter(newMemoryCatalog(), nil), http.MethodPost, "/", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Request body is required for POST search", body["error"])
}

func TestHandlerMethodAndPathErrors(t *testing.T) {
	h := newTestRouter(newMemoryCatalog(), nil)
	cases := []struct {
		method, target string
		status         int
		msg            string
	}{
		{http.MethodGet, "/search", http.StatusMethodNotAllowed, "Search endpoint only supports POST method"},
		{http.MethodDelete, "/tags", http.StatusMethodNotAllowed, "Method Not Allowed for tags"},
		{http.MethodPut, "/tags/anything", http.StatusMethodNotAllowed, "Method Not Allowed for tags"},
		{http.MethodGet, "/products", http.StatusMethodNotAllowed, "Method Not Allowed for products"},
		{http.MethodPut, "/", http.StatusMethodNotAllowed, "Method Not Allowed for inventory listing"},
		{http.MethodPatch, "/tags", http.StatusMethodNotAllowed, "Method Not Allowed"},
		{http.MethodGet, "/warehouses", http.StatusNotFound, "Endpoint not found"},
		{http.MethodDelete, "/warehouses/1", http.StatusNotFound, "Endpoint not found"},
	}
	for _, tc := range cases {
		rr, body := do(t, h, tc.method, tc.target, "")
		assert.Equal(t, tc.status, rr.Code, tc.method+" "+tc.target)
		assert.Equal(t, tc.msg, body["error"], tc.method+" "+tc.target)
	}
}

func TestHandlerDeeperPathKeepsFirstSegment(t *testing.T) {
	cat := newMemoryCatalog()
	cat.addTag("Premium", 1)

	rr, body := do(t, newTestRouter(cat, nil), http.MethodGet, "/tags/whatever", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, body["data"], 1)
}

func TestHandlerCreateTagTwice(t *testing.T) {
	cat := newMemoryCatalog()
	h := newTestRouter(cat, nil)

	rr, body := do(t, h, http.MethodPost, "/tags", `{"name":"Premium"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Tag created successfully", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "Premium", data["name"])
	assert.Equal(t, float64(0), data["color"])

	rr, body = do(t, h, http.MethodPost, "/tags", `{"name":"Premium"}`)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, `Tag "Premium" already exists`, body["error"])
	assert.Len(t, cat.tags, 1)
}

func TestHandlerPostTagsDispatchesByBody(t *testing.T) {
	cat := newMemoryCatalog()
	cat.addTag("Premium", 1)
	cat.addTag("Budget", 2)
	h := newTestRouter(cat, nil)

	rr, body := do(t, h, http.MethodPost, "/tags", `{"tag_name":"prem","name":"ignored"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, "prem", body["filters_applied"].(map[string]any)["search_term"])
	assert.Zero(t, cat.count("tag.create"))

	rr, body = do(t, h, http.MethodPost, "/tags", `{"color":3}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, msgInvalidTagBody, body["error"])

	rr, body = do(t, h, http.MethodPost, "/tags", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Request body is required for POST requests", body["error"])

	rr, body = do(t, h, http.MethodPost, "/tags", "{oops")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid JSON in request body", body["error"])
}

func TestHandlerCreateProduct(t *testing.T) {
	cat := newMemoryCatalog()
	tag := cat.addTag("Fresh", 3)
	h := newTestRouter(cat, nil)

	rr, body := do(t, h, http.MethodPost, "/products", `{"name":"Widget","price":10,"tag_ids":[`+itoa(tag)+`]}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Product created successfully", body["message"])

	data := body["data"].(map[string]any)
	assert.Equal(t, float64(10), data["sale_price"])
	assert.Equal(t, true, data["can_be_sold"])
	assert.Equal(t, false, data["can_be_purchased"])
	assert.Equal(t, []any{map[string]any{"id": float64(tag), "name": "Fresh", "color": float64(3)}}, data["tags"])
}

func TestHandlerCreateProductFallsBackToCost(t *testing.T) {
	for _, raw := range []string{
		`{"name":"Widget","price":null,"cost":5}`,
		`{"name":"Widget","price":"","cost":5}`,
	} {
		rr, body := do(t, newTestRouter(newMemoryCatalog(), nil), http.MethodPost, "/products", raw)
		require.Equal(t, http.StatusCreated, rr.Code, raw)
		data := body["data"].(map[string]any)
		assert.Equal(t, float64(5), data["sale_price"], raw)
	}
}

func TestHandlerPostProductsInvalidShape(t *testing.T) {
	rr, body := do(t, newTestRouter(newMemoryCatalog(), nil), http.MethodPost, "/products", `{"name":"Widget"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, msgInvalidProductBody, body["error"])
}

func TestHandlerUpdateProductAmbiguous(t *testing.T) {
	cat := newMemoryCatalog()
	cat.addProduct("Gadget", 5)
	cat.addProduct("Gadget", 7)

	rr, body := do(t, newTestRouter(cat, nil), http.MethodPut, "/products", `{"product_name":"Gadget","price":9}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Len(t, body["matches"], 2)
	assert.Equal(t, "Please use the exact product name", body["suggestion"])
	assert.Zero(t, cat.count("product.write"))
}

func TestHandlerUpdateProductViaPost(t *testing.T) {
	cat := newMemoryCatalog()
	cat.addProduct("Tea", 2)

	rr, body := do(t, newTestRouter(cat, nil), http.MethodPost, "/products", `{"product_name":"Tea","price":3}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Product price updated successfully", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(2), data["previous_price"])
	assert.Equal(t, float64(3), data["new_price"])
	assert.Equal(t, false, data["cost_price_updated"])
}

func TestHandlerUpdateProductNotFound(t *testing.T) {
	rr, body := do(t, newTestRouter(newMemoryCatalog(), nil), http.MethodPut, "/products", `{"product_name":"Nope","price":1}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Product not found: Nope", body["error"])
	assert.NotEmpty(t, body["suggestion"])
}

func TestHandlerERPAuthenticationFailure(t *testing.T) {
	h := newTestRouter(newMemoryCatalog(), errors.New("odoo: authentication failed"))

	rr, body := do(t, h, http.MethodGet, "/tags", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Could not authenticate with ERP", body["error"])
}

func TestHandlerClassifiesBeforeConnecting(t *testing.T) {
	h := newTestRouter(newMemoryCatalog(), errors.New("unreachable"))

	rr, body := do(t, h, http.MethodPost, "/products", `{"sku":"x"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, msgInvalidProductBody, body["error"])
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
