package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/odyssey-erp/odoo-inventory-gateway/internal/odoo"
)

type memoryProduct struct {
	odoo.ProductRecord
	Type        string
	DefaultCode string
	CategoryID  int64
}

func (p memoryProduct) field(name string) any {
	switch name {
	case odoo.FieldID:
		return p.ID
	case odoo.FieldName:
		return p.Name
	case odoo.FieldType:
		return p.Type
	case odoo.FieldDefaultCode:
		return p.DefaultCode
	case odoo.FieldCategoryID:
		return p.CategoryID
	}
	return nil
}

// memoryCatalog is an in-memory ERP that evaluates search domains.
type memoryCatalog struct {
	products map[int64]*memoryProduct
	tags     map[int64]odoo.TagRecord
	nextID   int64

	calls       []string
	domains     map[string][]any
	tagReadArgs [][]int64
	fail        map[string]error
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{
		products: map[int64]*memoryProduct{},
		tags:     map[int64]odoo.TagRecord{},
		domains:  map[string][]any{},
		fail:     map[string]error{},
	}
}

func (m *memoryCatalog) addProduct(name string, price float64, tagIDs ...int64) int64 {
	m.nextID++
	m.products[m.nextID] = &memoryProduct{
		ProductRecord: odoo.ProductRecord{
			ID:         m.nextID,
			Name:       name,
			ListPrice:  price,
			Currency:   &odoo.Reference{ID: 1, Name: "USD"},
			TagIDs:     tagIDs,
			SaleOK:     true,
			PurchaseOK: true,
		},
		Type: odoo.TypeStockable,
	}
	return m.nextID
}

func (m *memoryCatalog) addTag(name string, color int64) int64 {
	m.nextID++
	m.tags[m.nextID] = odoo.TagRecord{ID: m.nextID, Name: name, Color: color}
	return m.nextID
}

func (m *memoryCatalog) count(method string) int {
	n := 0
	for _, c := range m.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (m *memoryCatalog) record(method string) error {
	m.calls = append(m.calls, method)
	return m.fail[method]
}

func (m *memoryCatalog) matchProducts(d odoo.Domain) []int64 {
	var ids []int64
	for id, p := range m.products {
		if evalDomain(d, p.field) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := m.products[ids[i]], m.products[ids[j]]
		if a.Name == b.Name {
			return a.ID < b.ID
		}
		return a.Name < b.Name
	})
	return ids
}

func (m *memoryCatalog) matchTags(d odoo.Domain) []int64 {
	var ids []int64
	for id, t := range m.tags {
		tag := t
		get := func(name string) any {
			switch name {
			case odoo.FieldID:
				return tag.ID
			case odoo.FieldName:
				return tag.Name
			}
			return nil
		}
		if evalDomain(d, get) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return m.tags[ids[i]].Name < m.tags[ids[j]].Name })
	return ids
}

func pageOf(ids []int64, opts odoo.SearchOptions) []int64 {
	if opts.Offset >= len(ids) {
		return []int64{}
	}
	ids = ids[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(ids) {
		ids = ids[:opts.Limit]
	}
	return ids
}

func (m *memoryCatalog) CountProducts(ctx context.Context, d odoo.Domain) (int, error) {
	m.domains["product.search_count"] = d.Wire()
	if err := m.record("product.search_count"); err != nil {
		return 0, err
	}
	return len(m.matchProducts(d)), nil
}

func (m *memoryCatalog) SearchProducts(ctx context.Context, d odoo.Domain, opts odoo.SearchOptions) ([]int64, error) {
	m.domains["product.search"] = d.Wire()
	if err := m.record("product.search"); err != nil {
		return nil, err
	}
	return pageOf(m.matchProducts(d), opts), nil
}

func (m *memoryCatalog) ReadProducts(ctx context.Context, ids []int64, fields ...string) ([]odoo.ProductRecord, error) {
	if err := m.record("product.read"); err != nil {
		return nil, err
	}
	out := make([]odoo.ProductRecord, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			rec := p.ProductRecord
			rec.TagIDs = append([]int64(nil), p.TagIDs...)
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryCatalog) CreateProduct(ctx context.Context, v odoo.ProductValues) (int64, error) {
	if err := m.record("product.create"); err != nil {
		return 0, err
	}
	m.nextID++
	p := &memoryProduct{
		ProductRecord: odoo.ProductRecord{
			ID:         m.nextID,
			Name:       v.Name,
			ListPrice:  v.ListPrice,
			TagIDs:     append([]int64(nil), v.TagIDs...),
			SaleOK:     true,
			PurchaseOK: false,
		},
		Type: odoo.TypeStockable,
	}
	if v.StandardPrice != nil {
		p.StandardPrice = *v.StandardPrice
	}
	m.products[p.ID] = p
	return p.ID, nil
}

func (m *memoryCatalog) WriteProduct(ctx context.Context, id int64, v odoo.PriceValues) error {
	if err := m.record("product.write"); err != nil {
		return err
	}
	p, ok := m.products[id]
	if !ok {
		return &odoo.Fault{Code: 2, Message: fmt.Sprintf("MissingError: record %d does not exist", id)}
	}
	p.ListPrice = v.ListPrice
	if v.StandardPrice != nil {
		p.StandardPrice = *v.StandardPrice
	}
	return nil
}

func (m *memoryCatalog) CountTags(ctx context.Context, d odoo.Domain) (int, error) {
	m.domains["tag.search_count"] = d.Wire()
	if err := m.record("tag.search_count"); err != nil {
		return 0, err
	}
	return len(m.matchTags(d)), nil
}

func (m *memoryCatalog) SearchTags(ctx context.Context, d odoo.Domain, opts odoo.SearchOptions) ([]int64, error) {
	m.domains["tag.search"] = d.Wire()
	if err := m.record("tag.search"); err != nil {
		return nil, err
	}
	return pageOf(m.matchTags(d), opts), nil
}

func (m *memoryCatalog) ReadTags(ctx context.Context, ids []int64) ([]odoo.TagRecord, error) {
	m.tagReadArgs = append(m.tagReadArgs, append([]int64(nil), ids...))
	if err := m.record("tag.read"); err != nil {
		return nil, err
	}
	out := make([]odoo.TagRecord, 0, len(ids))
	for _, id := range ids {
		if t, ok := m.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memoryCatalog) CreateTag(ctx context.Context, v odoo.TagValues) (int64, error) {
	if err := m.record("tag.create"); err != nil {
		return 0, err
	}
	return m.addTag(v.Name, v.Color), nil
}

// evalDomain evaluates a prefix-notation domain: consecutive terms are
// ANDed and an OR marker joins the next two terms.
func evalDomain(d odoo.Domain, get func(string) any) bool {
	pos := 0
	var term func() bool
	term = func() bool {
		t := d[pos]
		pos++
		if t.Or {
			a := term()
			b := term()
			return a || b
		}
		return evalClause(t.Clause, get)
	}
	for pos < len(d) {
		if !term() {
			return false
		}
	}
	return true
}

func evalClause(c odoo.Clause, get func(string) any) bool {
	got := get(c.Field)
	switch c.Operator {
	case odoo.OpEqual:
		return fmt.Sprint(got) == fmt.Sprint(c.Value)
	case odoo.OpILike:
		return strings.Contains(strings.ToLower(fmt.Sprint(got)), strings.ToLower(fmt.Sprint(c.Value)))
	case odoo.OpIn:
		ids, _ := c.Value.([]int64)
		for _, id := range ids {
			if fmt.Sprint(got) == fmt.Sprint(id) {
				return true
			}
		}
		return false
	}
	panic("unsupported operator " + c.Operator)
}

var _ Catalog = (*memoryCatalog)(nil)
