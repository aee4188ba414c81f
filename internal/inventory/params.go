package inventory

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odoo-inventory-gateway/internal/platform/httpx"
)

var validate = validator.New()

var maxInt = decimal.NewFromInt(math.MaxInt32)

// ListParams is the canonical parameter set of a listing request, whether
// it came from the query string or from a JSON body.
type ListParams struct {
	Limit      int `validate:"gte=1"`
	Offset     int `validate:"gte=0"`
	Search     string
	CategoryID *int64
	// Method is the HTTP method the parameters were read from.
	Method string
}

var rangeMessages = map[string]string{
	"Limit":  "limit must be at least 1",
	"Offset": "offset must not be negative",
}

type lookup func(key string) (any, bool)

func queryLookup(q url.Values) lookup {
	return func(key string) (any, bool) {
		if !q.Has(key) {
			return nil, false
		}
		return q.Get(key), true
	}
}

func bodyLookup(b httpx.Body) lookup {
	return func(key string) (any, bool) {
		v, ok := b[key]
		return v, ok
	}
}

// NormalizeInventoryQuery reads inventory listing parameters. GET requests
// use search, category_id, limit and offset from the query string; POST
// requests read product_name (falling back to search) and the same paging
// keys from the body.
func NormalizeInventoryQuery(r *http.Request, body httpx.Body) (ListParams, error) {
	if r.Method == http.MethodPost {
		return normalizeList(r.Method, bodyLookup(body), []string{"product_name", "search"}, true)
	}
	return normalizeList(r.Method, queryLookup(r.URL.Query()), []string{"search"}, true)
}

// NormalizeTagQuery reads tag listing parameters. POST requests read
// tag_name, falling back to search.
func NormalizeTagQuery(r *http.Request, body httpx.Body) (ListParams, error) {
	if r.Method == http.MethodPost {
		return normalizeList(r.Method, bodyLookup(body), []string{"tag_name", "search"}, false)
	}
	return normalizeList(r.Method, queryLookup(r.URL.Query()), []string{"search"}, false)
}

func normalizeList(method string, get lookup, searchKeys []string, withCategory bool) (ListParams, error) {
	p := ListParams{Method: method}

	limit, err := intParam(get, "limit", DefaultLimit)
	if err != nil {
		return ListParams{}, err
	}
	offset, err := intParam(get, "offset", DefaultOffset)
	if err != nil {
		return ListParams{}, err
	}
	p.Limit, p.Offset = int(limit), int(offset)

	if p.Search, err = searchParam(get, searchKeys); err != nil {
		return ListParams{}, err
	}
	if withCategory {
		if p.CategoryID, err = categoryParam(get); err != nil {
			return ListParams{}, err
		}
	}

	if err := validate.Struct(p); err != nil {
		return ListParams{}, rangeError(err)
	}
	return p, nil
}

func rangeError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := rangeMessages[verrs[0].Field()]; ok {
			return httpx.Validation(msg)
		}
	}
	return httpx.Validation("Invalid request parameters")
}

func intParam(get lookup, key string, def int64) (int64, error) {
	v, ok := get(key)
	if !ok || isBlank(v) {
		return def, nil
	}
	n, ok := toInt(v)
	if !ok {
		return 0, httpx.Validation(key + " must be a number")
	}
	return n, nil
}

func searchParam(get lookup, keys []string) (string, error) {
	for _, key := range keys {
		v, ok := get(key)
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return "", httpx.Validation(key + " must be a string")
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, nil
		}
	}
	return "", nil
}

// categoryParam treats an empty or zero category as no filter.
func categoryParam(get lookup) (*int64, error) {
	v, ok := get("category_id")
	if !ok || isBlank(v) {
		return nil, nil
	}
	id, ok := toInt(v)
	if !ok {
		return nil, httpx.Validation("category_id must be a number")
	}
	if id == 0 {
		return nil, nil
	}
	return &id, nil
}

// ParseCreateTag validates a tag creation body.
func ParseCreateTag(b httpx.Body) (CreateTagInput, error) {
	if !b.Has("name") {
		return CreateTagInput{}, httpx.Validation("Tag name is required")
	}
	name, ok := b["name"].(string)
	if !ok {
		return CreateTagInput{}, httpx.Validation("Tag name must be a string")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return CreateTagInput{}, httpx.Validation("Tag name cannot be empty")
	}

	in := CreateTagInput{Name: name}
	if v := b["color"]; !isBlank(v) {
		color, ok := toInt(v)
		if !ok {
			return CreateTagInput{}, httpx.Validation("color must be a number")
		}
		in.Color = color
	}
	return in, nil
}

// ParseCreateProduct validates a product creation body. The sale price is
// read from price, or from the legacy cost field when price is null or blank.
func ParseCreateProduct(b httpx.Body) (CreateProductInput, error) {
	if !b.Has("name") {
		return CreateProductInput{}, httpx.Validation("name is required")
	}
	if !b.Has("price") && !b.Has("cost") {
		return CreateProductInput{}, httpx.Validation(`price is required (or use legacy "cost" field)`)
	}
	name, ok := b["name"].(string)
	if !ok {
		return CreateProductInput{}, httpx.Validation("Product name must be a string")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return CreateProductInput{}, httpx.Validation("Product name cannot be empty")
	}

	priceKey := "price"
	if isBlank(b[priceKey]) && b.Has("cost") {
		priceKey = "cost"
	}
	price, err := amount(b[priceKey], "Price")
	if err != nil {
		return CreateProductInput{}, err
	}
	in := CreateProductInput{Name: name, Price: price}

	if b.Has("cost_price") {
		cost, err := amount(b["cost_price"], "Cost price")
		if err != nil {
			return CreateProductInput{}, err
		}
		in.CostPrice = &cost
	}

	if in.TagIDs, err = tagIDs(b["tag_ids"]); err != nil {
		return CreateProductInput{}, err
	}
	return in, nil
}

// ParseUpdatePrice validates a price update body.
func ParseUpdatePrice(b httpx.Body) (UpdatePriceInput, error) {
	if !b.Has("product_name") {
		return UpdatePriceInput{}, httpx.Validation("product_name is required")
	}
	if !b.Has("price") {
		return UpdatePriceInput{}, httpx.Validation("price is required")
	}
	name, ok := b["product_name"].(string)
	if !ok {
		return UpdatePriceInput{}, httpx.Validation("product_name must be a string")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return UpdatePriceInput{}, httpx.Validation("Product name cannot be empty")
	}
	price, err := amount(b["price"], "Price")
	if err != nil {
		return UpdatePriceInput{}, err
	}

	in := UpdatePriceInput{ProductName: name, Price: price}
	if v := b["update_cost_price"]; v != nil {
		flag, ok := v.(bool)
		if !ok {
			return UpdatePriceInput{}, httpx.Validation("update_cost_price must be a boolean")
		}
		in.UpdateCostPrice = flag
	}
	return in, nil
}

// amount parses a non-negative money value. label starts the error message.
func amount(v any, label string) (float64, error) {
	d, ok := toDecimal(v)
	if !ok {
		return 0, httpx.Validation(label + " must be a valid number")
	}
	f := d.InexactFloat64()
	if err := validate.Var(f, "gte=0"); err != nil {
		return 0, httpx.Validation(label + " must be a positive number")
	}
	return f, nil
}

// tagIDs accepts an array of integer ids. Falsy values mean no tags.
// Repeated ids are collapsed.
func tagIDs(v any) ([]int64, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		if isFalsy(v) {
			return nil, nil
		}
		return nil, httpx.Validation("tag_ids must be an array of tag IDs")
	}
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, ok := toInt(item)
		if !ok || id <= 0 {
			return nil, httpx.Validation("tag_ids must be an array of tag IDs")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	default:
		return decimal.Decimal{}, false
	}
}

func toInt(v any) (int64, bool) {
	d, ok := toDecimal(v)
	if !ok || !d.IsInteger() || d.Abs().GreaterThan(maxInt) {
		return 0, false
	}
	return d.IntPart(), true
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func isFalsy(v any) bool {
	switch x := v.(type) {
	case bool:
		return !x
	case string:
		return x == ""
	case json.Number:
		d, ok := toDecimal(x)
		return ok && d.IsZero()
	}
	return false
}
