package inventory

import "github.com/odyssey-erp/odoo-inventory-gateway/internal/platform/httpx"

// TagIntent is what a POST /tags body asks for.
type TagIntent int

const (
	TagInvalid TagIntent = iota
	TagSearch
	TagCreate
)

func (i TagIntent) String() string {
	switch i {
	case TagSearch:
		return "search"
	case TagCreate:
		return "create"
	default:
		return "invalid"
	}
}

// ProductIntent is what a POST /products body asks for.
type ProductIntent int

const (
	ProductInvalid ProductIntent = iota
	ProductUpdate
	ProductCreate
)

func (i ProductIntent) String() string {
	switch i {
	case ProductUpdate:
		return "update"
	case ProductCreate:
		return "create"
	default:
		return "invalid"
	}
}

type tagRule struct {
	intent TagIntent
	match  func(httpx.Body) bool
}

type productRule struct {
	intent ProductIntent
	match  func(httpx.Body) bool
}

// tagRules are tried in order and the first match wins. Search keys beat
// name, so {"name": ..., "search": ...} is a search.
//
//	1. tag_name or search present -> search
//	2. name present               -> create
//	otherwise                     -> invalid
var tagRules = []tagRule{
	{TagSearch, func(b httpx.Body) bool { return b.Has("tag_name") || b.Has("search") }},
	{TagCreate, func(b httpx.Body) bool { return b.Has("name") }},
}

// productRules are tried in order and the first match wins.
//
//	1. product_name and price present -> update
//	2. name and (cost or price)       -> create
//	otherwise                         -> invalid
var productRules = []productRule{
	{ProductUpdate, func(b httpx.Body) bool { return b.Has("product_name") && b.Has("price") }},
	{ProductCreate, func(b httpx.Body) bool { return b.Has("name") && (b.Has("cost") || b.Has("price")) }},
}

// ClassifyTagBody picks the handler for a POST /tags body.
func ClassifyTagBody(b httpx.Body) TagIntent {
	for _, rule := range tagRules {
		if rule.match(b) {
			return rule.intent
		}
	}
	return TagInvalid
}

// ClassifyProductBody picks the handler for a POST /products body.
func ClassifyProductBody(b httpx.Body) ProductIntent {
	for _, rule := range productRules {
		if rule.match(b) {
			return rule.intent
		}
	}
	return ProductInvalid
}
