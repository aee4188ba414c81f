package odoo

import (
	"context"
	"fmt"
)

// executor is the generic execute_kw primitive.
type executor interface {
	Execute(ctx context.Context, uid int64, model, method string, args []any, kwargs map[string]any) (any, error)
}

// SearchOptions page and order a search.
type SearchOptions struct {
	Limit  int
	Offset int
	Order  string
}

func (o SearchOptions) wire() map[string]any {
	kw := map[string]any{}
	if o.Limit > 0 {
		kw["limit"] = o.Limit
	}
	if o.Offset > 0 {
		kw["offset"] = o.Offset
	}
	if o.Order != "" {
		kw["order"] = o.Order
	}
	return kw
}

// ProductFields are read when no explicit field list is given.
var ProductFields = []string{
	FieldID, FieldName, FieldListPrice, FieldStandardPrice,
	FieldCurrencyID, FieldTagIDs, FieldSaleOK, FieldPurchaseOK,
}

var tagFields = []string{FieldID, FieldName, FieldColor}

// Catalog is the set of typed product and tag operations bound to one
// ERP session.
type Catalog struct {
	exec executor
	uid  int64
}

// NewCatalog binds exec to the session uid.
func NewCatalog(exec executor, uid int64) *Catalog {
	return &Catalog{exec: exec, uid: uid}
}

// UID returns the session id.
func (c *Catalog) UID() int64 {
	return c.uid
}

// CountProducts counts products matching d.
func (c *Catalog) CountProducts(ctx context.Context, d Domain) (int, error) {
	return c.count(ctx, ModelProduct, d)
}

// SearchProducts returns the ids of products matching d.
func (c *Catalog) SearchProducts(ctx context.Context, d Domain, opts SearchOptions) ([]int64, error) {
	return c.search(ctx, ModelProduct, d, opts)
}

// ReadProducts reads fields of the given products. With no fields,
// ProductFields are read.
func (c *Catalog) ReadProducts(ctx context.Context, ids []int64, fields ...string) ([]ProductRecord, error) {
	if len(fields) == 0 {
		fields = ProductFields
	}
	raw, err := c.read(ctx, ModelProduct, ids, fields)
	if err != nil {
		return nil, err
	}
	out := make([]ProductRecord, 0, len(raw))
	for _, r := range raw {
		out = append(out, decodeProduct(r))
	}
	return out, nil
}

// CreateProduct creates a stockable, sellable, non-purchasable product.
func (c *Catalog) CreateProduct(ctx context.Context, v ProductValues) (int64, error) {
	return c.create(ctx, ModelProduct, v.wire())
}

// WriteProduct updates the prices of one product.
func (c *Catalog) WriteProduct(ctx context.Context, id int64, v PriceValues) error {
	_, err := c.exec.Execute(ctx, c.uid, ModelProduct, "write", []any{[]any{id}, v.wire()}, nil)
	return err
}

// CountTags counts tags matching d.
func (c *Catalog) CountTags(ctx context.Context, d Domain) (int, error) {
	return c.count(ctx, ModelTag, d)
}

// SearchTags returns the ids of tags matching d.
func (c *Catalog) SearchTags(ctx context.Context, d Domain, opts SearchOptions) ([]int64, error) {
	return c.search(ctx, ModelTag, d, opts)
}

// ReadTags reads id, name and color of the given tags.
func (c *Catalog) ReadTags(ctx context.Context, ids []int64) ([]TagRecord, error) {
	raw, err := c.read(ctx, ModelTag, ids, tagFields)
	if err != nil {
		return nil, err
	}
	out := make([]TagRecord, 0, len(raw))
	for _, r := range raw {
		out = append(out, decodeTag(r))
	}
	return out, nil
}

// CreateTag creates a tag.
func (c *Catalog) CreateTag(ctx context.Context, v TagValues) (int64, error) {
	return c.create(ctx, ModelTag, map[string]any{FieldName: v.Name, FieldColor: v.Color})
}

func (c *Catalog) count(ctx context.Context, model string, d Domain) (int, error) {
	reply, err := c.exec.Execute(ctx, c.uid, model, "search_count", []any{d.Wire()}, nil)
	if err != nil {
		return 0, err
	}
	n, ok := asInt64(reply)
	if !ok {
		return 0, fmt.Errorf("%w: %s.search_count returned %T", ErrUnexpectedResult, model, reply)
	}
	return int(n), nil
}

func (c *Catalog) search(ctx context.Context, model string, d Domain, opts SearchOptions) ([]int64, error) {
	reply, err := c.exec.Execute(ctx, c.uid, model, "search", []any{d.Wire()}, opts.wire())
	if err != nil {
		return nil, err
	}
	if _, ok := reply.([]any); !ok && reply != nil {
		return nil, fmt.Errorf("%w: %s.search returned %T", ErrUnexpectedResult, model, reply)
	}
	return asIDs(reply), nil
}

func (c *Catalog) read(ctx context.Context, model string, ids []int64, fields []string) ([]map[string]any, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	wireIDs := make([]any, len(ids))
	for i, id := range ids {
		wireIDs[i] = id
	}
	wireFields := make([]any, len(fields))
	for i, f := range fields {
		wireFields[i] = f
	}
	reply, err := c.exec.Execute(ctx, c.uid, model, "read", []any{wireIDs, wireFields}, nil)
	if err != nil {
		return nil, err
	}
	return asRecords(reply)
}

func (c *Catalog) create(ctx context.Context, model string, vals map[string]any) (int64, error) {
	reply, err := c.exec.Execute(ctx, c.uid, model, "create", []any{vals}, nil)
	if err != nil {
		return 0, err
	}
	id, ok := asInt64(reply)
	if !ok {
		return 0, fmt.Errorf("%w: %s.create returned %T", ErrUnexpectedResult, model, reply)
	}
	return id, nil
}
