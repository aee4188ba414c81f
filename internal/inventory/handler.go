package inventory

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odoo-inventory-gateway/internal/platform/httpx"
	"github.com/odyssey-erp/odoo-inventory-gateway/internal/shared"
)

const (
	msgInvalidTagBody     = `Invalid request body. For search: use "tag_name" or "search". For create: use "name"`
	msgInvalidProductBody = `Invalid request body. For create: use "name" and "price" (or legacy "cost"). For update: use "product_name" and "price"`
	msgERPAuthFailed      = "Could not authenticate with ERP"
)

// supportedMethods are the verbs the gateway routes at all.
var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// Handler wires HTTP endpoints for the inventory gateway.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	connector Connector
}

// NewHandler constructs the inventory handler.
func NewHandler(logger *slog.Logger, service *Service, connector Connector) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, connector: connector}
}

type methods map[string]http.HandlerFunc

// MountRoutes registers the gateway routes. A deeper path keeps the
// meaning of its first segment, so /tags/x behaves like /tags.
func (h *Handler) MountRoutes(r chi.Router) {
	root := h.dispatch(methods{
		http.MethodGet:  h.listInventory,
		http.MethodPost: h.listInventory,
	}, "Method Not Allowed for inventory listing")
	search := h.dispatch(methods{
		http.MethodPost: h.listInventory,
	}, "Search endpoint only supports POST method")
	tags := h.dispatch(methods{
		http.MethodGet:  h.listTags,
		http.MethodPost: h.postTags,
	}, "Method Not Allowed for tags")
	products := h.dispatch(methods{
		http.MethodPost: h.postProducts,
		http.MethodPut:  h.putProducts,
	}, "Method Not Allowed for products")

	r.HandleFunc("/", root)
	r.HandleFunc("/search", search)
	r.HandleFunc("/search/*", search)
	r.HandleFunc("/tags", tags)
	r.HandleFunc("/tags/*", tags)
	r.HandleFunc("/products", products)
	r.HandleFunc("/products/*", products)
}

// NotFound answers paths outside the route table.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	httpx.RespondError(w, httpx.NotFound("Endpoint not found", ""))
}

// SupportedMethods rejects verbs the gateway never routes before any path
// matching happens.
func SupportedMethods(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !supportedMethods[r.Method] {
			httpx.RespondError(w, httpx.MethodNotAllowed("Method Not Allowed"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) dispatch(allowed methods, notAllowed string) http.HandlerFunc {
	verbs := make([]string, 0, len(allowed))
	for m := range allowed {
		verbs = append(verbs, m)
	}
	sort.Strings(verbs)
	allow := strings.Join(append(verbs, http.MethodOptions), ", ")

	return func(w http.ResponseWriter, r *http.Request) {
		if fn, ok := allowed[r.Method]; ok {
			fn(w, r)
			return
		}
		w.Header().Set("Allow", allow)
		httpx.RespondError(w, httpx.MethodNotAllowed(notAllowed))
	}
}

func (h *Handler) connect(w http.ResponseWriter, r *http.Request) (Catalog, bool) {
	cat, err := h.connector.Connect(r.Context())
	if err != nil {
		httpx.LogAndRespond(h.logger, w, r, httpx.Upstream(msgERPAuthFailed, err))
		return nil, false
	}
	return cat, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpx.LogAndRespond(h.logger, w, r, err)
}

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	var body httpx.Body
	if r.Method == http.MethodPost {
		var err error
		if body, err = httpx.ReadBodyOr(r, "Request body is required for POST search"); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	cat, ok := h.connect(w, r)
	if !ok {
		return
	}
	params, err := NormalizeInventoryQuery(r, body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.service.ListInventory(r.Context(), cat, params)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	found := len(page.Products) > 0
	pagination := shared.NewPagination(page.Total, params.Limit, params.Offset)
	httpx.Success(w, http.StatusOK, httpx.Envelope{
		Found:      &found,
		Data:       page.Products,
		Pagination: &pagination,
		FiltersApplied: InventoryFilters{
			SearchTerm:   params.Search,
			CategoryID:   params.CategoryID,
			SearchMethod: params.Method,
		},
		Message: inventoryMessage(len(page.Products), params.Search),
	})
}

func inventoryMessage(n int, search string) string {
	switch {
	case n > 0:
		return fmt.Sprintf("Found %d product(s)", n)
	case search != "":
		return "No products found matching: " + search
	default:
		return "No products found"
	}
}

func (h *Handler) listTags(w http.ResponseWriter, r *http.Request) {
	h.respondTags(w, r, nil)
}

func (h *Handler) respondTags(w http.ResponseWriter, r *http.Request, body httpx.Body) {
	cat, ok := h.connect(w, r)
	if !ok {
		return
	}
	params, err := NormalizeTagQuery(r, body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.service.ListTags(r.Context(), cat, params)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pagination := shared.NewPagination(page.Total, params.Limit, params.Offset)
	httpx.Success(w, http.StatusOK, httpx.Envelope{
		Data:       page.Tags,
		Pagination: &pagination,
		FiltersApplied: TagFilters{
			SearchTerm:   params.Search,
			SearchMethod: params.Method,
		},
	})
}

func (h *Handler) postTags(w http.ResponseWriter, r *http.Request) {
	body, err := httpx.ReadBodyOr(r, "Request body is required for POST requests")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	switch ClassifyTagBody(body) {
	case TagSearch:
		h.respondTags(w, r, body)
	case TagCreate:
		h.createTag(w, r, body)
	default:
		h.fail(w, r, httpx.Validation(msgInvalidTagBody))
	}
}

func (h *Handler) createTag(w http.ResponseWriter, r *http.Request, body httpx.Body) {
	cat, ok := h.connect(w, r)
	if !ok {
		return
	}
	in, err := ParseCreateTag(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tag, err := h.service.CreateTag(r.Context(), cat, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Success(w, http.StatusCreated, httpx.Envelope{
		Data:    tag,
		Message: "Tag created successfully",
	})
}

func (h *Handler) postProducts(w http.ResponseWriter, r *http.Request) {
	body, err := httpx.ReadBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	switch ClassifyProductBody(body) {
	case ProductUpdate:
		h.updateProduct(w, r, body)
	case ProductCreate:
		h.createProduct(w, r, body)
	default:
		h.fail(w, r, httpx.Validation(msgInvalidProductBody))
	}
}

func (h *Handler) putProducts(w http.ResponseWriter, r *http.Request) {
	body, err := httpx.ReadBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.updateProduct(w, r, body)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request, body httpx.Body) {
	cat, ok := h.connect(w, r)
	if !ok {
		return
	}
	in, err := ParseCreateProduct(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	product, err := h.service.CreateProduct(r.Context(), cat, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Success(w, http.StatusCreated, httpx.Envelope{
		Data:    product,
		Message: "Product created successfully",
	})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request, body httpx.Body) {
	cat, ok := h.connect(w, r)
	if !ok {
		return
	}
	in, err := ParseUpdatePrice(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	change, err := h.service.UpdateProductPrice(r.Context(), cat, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, httpx.Envelope{
		Data:    change,
		Message: "Product price updated successfully",
	})
}
