package odoo

import (
	"fmt"
	"math"
)

// Remote models.
const (
	ModelProduct = "product.product"
	ModelTag     = "product.tag"
)

// Product fields.
const (
	FieldID            = "id"
	FieldName          = "name"
	FieldType          = "type"
	FieldDefaultCode   = "default_code"
	FieldCategoryID    = "categ_id"
	FieldListPrice     = "list_price"
	FieldStandardPrice = "standard_price"
	FieldCurrencyID    = "currency_id"
	FieldTagIDs        = "product_tag_ids"
	FieldSaleOK        = "sale_ok"
	FieldPurchaseOK    = "purchase_ok"
	FieldColor         = "color"
)

// TypeStockable is the product type every gateway product has.
const TypeStockable = "product"

// Reference is a many2one value.
type Reference struct {
	ID   int64
	Name string
}

// ProductRecord is a read projection of product.product.
type ProductRecord struct {
	ID            int64
	Name          string
	ListPrice     float64
	StandardPrice float64
	Currency      *Reference
	TagIDs        []int64
	SaleOK        bool
	PurchaseOK    bool
}

// TagRecord is a read projection of product.tag.
type TagRecord struct {
	ID    int64
	Name  string
	Color int64
}

// ProductValues are the fields sent on product creation.
type ProductValues struct {
	Name          string
	ListPrice     float64
	StandardPrice *float64
	TagIDs        []int64
}

func (v ProductValues) wire() map[string]any {
	vals := map[string]any{
		FieldName:       v.Name,
		FieldListPrice:  v.ListPrice,
		FieldType:       TypeStockable,
		FieldSaleOK:     true,
		FieldPurchaseOK: false,
	}
	if v.StandardPrice != nil {
		vals[FieldStandardPrice] = *v.StandardPrice
	}
	if len(v.TagIDs) > 0 {
		vals[FieldTagIDs] = []any{replaceCommand(v.TagIDs)}
	}
	return vals
}

// replaceCommand is the x2many (6, 0, ids) command: replace the whole set.
func replaceCommand(ids []int64) []any {
	wireIDs := make([]any, len(ids))
	for i, id := range ids {
		wireIDs[i] = id
	}
	return []any{6, 0, wireIDs}
}

// PriceValues are the fields sent on a price update.
type PriceValues struct {
	ListPrice     float64
	StandardPrice *float64
}

func (v PriceValues) wire() map[string]any {
	vals := map[string]any{FieldListPrice: v.ListPrice}
	if v.StandardPrice != nil {
		vals[FieldStandardPrice] = *v.StandardPrice
	}
	return vals
}

// TagValues are the fields sent on tag creation.
type TagValues struct {
	Name  string
	Color int64
}

func decodeProduct(raw map[string]any) ProductRecord {
	p := ProductRecord{}
	p.ID, _ = asInt64(raw[FieldID])
	p.Name, _ = raw[FieldName].(string)
	p.ListPrice, _ = asFloat(raw[FieldListPrice])
	p.StandardPrice, _ = asFloat(raw[FieldStandardPrice])
	p.Currency = asReference(raw[FieldCurrencyID])
	p.TagIDs = asIDs(raw[FieldTagIDs])
	p.SaleOK, _ = raw[FieldSaleOK].(bool)
	p.PurchaseOK, _ = raw[FieldPurchaseOK].(bool)
	return p
}

func decodeTag(raw map[string]any) TagRecord {
	t := TagRecord{}
	t.ID, _ = asInt64(raw[FieldID])
	t.Name, _ = raw[FieldName].(string)
	t.Color, _ = asInt64(raw[FieldColor])
	return t
}

func asRecords(reply any) ([]map[string]any, error) {
	items, ok := reply.([]any)
	if !ok {
		if reply == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: expected list, got %T", ErrUnexpectedResult, reply)
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected record, got %T", ErrUnexpectedResult, item)
		}
		out = append(out, rec)
	}
	return out, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// asIDs decodes an id list; the ERP sends false for empty relations.
func asIDs(v any) []int64 {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if id, ok := asInt64(item); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// asReference decodes a many2one [id, display_name] pair or false.
func asReference(v any) *Reference {
	pair, ok := v.([]any)
	if !ok || len(pair) < 1 {
		return nil
	}
	id, ok := asInt64(pair[0])
	if !ok {
		return nil
	}
	ref := &Reference{ID: id}
	if len(pair) > 1 {
		ref.Name, _ = pair[1].(string)
	}
	return ref
}
