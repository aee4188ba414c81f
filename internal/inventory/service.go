package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/odoo-inventory-gateway/internal/odoo"
	"github.com/odyssey-erp/odoo-inventory-gateway/internal/platform/httpx"
)

const orderByName = "name"

var (
	listFields    = []string{odoo.FieldID, odoo.FieldName, odoo.FieldListPrice, odoo.FieldStandardPrice, odoo.FieldCurrencyID, odoo.FieldTagIDs}
	createdFields = []string{odoo.FieldID, odoo.FieldName, odoo.FieldStandardPrice, odoo.FieldListPrice, odoo.FieldTagIDs, odoo.FieldSaleOK, odoo.FieldPurchaseOK}
	priceFields   = []string{odoo.FieldID, odoo.FieldName, odoo.FieldListPrice, odoo.FieldStandardPrice}
	updatedFields = []string{odoo.FieldID, odoo.FieldName, odoo.FieldListPrice, odoo.FieldStandardPrice, odoo.FieldTagIDs}
	matchFields   = []string{odoo.FieldID, odoo.FieldName}
)

// Service implements the inventory operations on top of an ERP catalog.
type Service struct {
	logger *slog.Logger
}

// NewService builds Service.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ListInventory returns one page of stockable products, optionally
// filtered by a name or internal reference term and by category.
func (s *Service) ListInventory(ctx context.Context, cat Catalog, p ListParams) (ProductPage, error) {
	d := odoo.Domain{}.And(odoo.Where(odoo.FieldType, odoo.OpEqual, odoo.TypeStockable))
	if p.Search != "" {
		d = d.Or(
			odoo.Where(odoo.FieldName, odoo.OpILike, p.Search),
			odoo.Where(odoo.FieldDefaultCode, odoo.OpILike, p.Search),
		)
	}
	if p.CategoryID != nil {
		d = d.And(odoo.Where(odoo.FieldCategoryID, odoo.OpEqual, *p.CategoryID))
	}

	total, err := cat.CountProducts(ctx, d)
	if err != nil {
		return ProductPage{}, upstream("Could not retrieve products", err)
	}
	ids, err := cat.SearchProducts(ctx, d, odoo.SearchOptions{Limit: p.Limit, Offset: p.Offset, Order: orderByName})
	if err != nil {
		return ProductPage{}, upstream("Could not retrieve products", err)
	}
	page := ProductPage{Products: []Product{}, Total: total}
	if len(ids) == 0 {
		return page, nil
	}

	records, err := cat.ReadProducts(ctx, ids, listFields...)
	if err != nil {
		return ProductPage{}, upstream("Could not retrieve products", err)
	}
	var tagIDs [][]int64
	for _, rec := range records {
		tagIDs = append(tagIDs, rec.TagIDs)
	}
	tags, err := resolveTags(ctx, cat, tagIDs...)
	if err != nil {
		return ProductPage{}, upstream("Could not retrieve products", err)
	}

	for _, rec := range records {
		page.Products = append(page.Products, Product{
			ID:        rec.ID,
			Name:      rec.Name,
			Price:     rec.ListPrice,
			CostPrice: rec.StandardPrice,
			Currency:  currencyFromRecord(rec.Currency),
			Tags:      tagsFor(rec.TagIDs, tags),
		})
	}
	return page, nil
}

// ListTags returns one page of tags, optionally filtered by name.
func (s *Service) ListTags(ctx context.Context, cat Catalog, p ListParams) (TagPage, error) {
	d := odoo.Domain{}
	if p.Search != "" {
		d = d.And(odoo.Where(odoo.FieldName, odoo.OpILike, p.Search))
	}

	total, err := cat.CountTags(ctx, d)
	if err != nil {
		return TagPage{}, upstream("Could not retrieve tags", err)
	}
	ids, err := cat.SearchTags(ctx, d, odoo.SearchOptions{Limit: p.Limit, Offset: p.Offset, Order: orderByName})
	if err != nil {
		return TagPage{}, upstream("Could not retrieve tags", err)
	}
	page := TagPage{Tags: []Tag{}, Total: total}
	if len(ids) == 0 {
		return page, nil
	}
	records, err := cat.ReadTags(ctx, ids)
	if err != nil {
		return TagPage{}, upstream("Could not retrieve tags", err)
	}
	for _, rec := range records {
		page.Tags = append(page.Tags, tagFromRecord(rec))
	}
	return page, nil
}

// CreateTag creates a tag unless one with the exact same name exists.
func (s *Service) CreateTag(ctx context.Context, cat Catalog, in CreateTagInput) (Tag, error) {
	existing, err := cat.SearchTags(ctx, odoo.Domain{}.And(odoo.Where(odoo.FieldName, odoo.OpEqual, in.Name)), odoo.SearchOptions{})
	if err != nil {
		return Tag{}, upstream("Could not create tag", err)
	}
	if len(existing) > 0 {
		return Tag{}, httpx.Conflict(fmt.Sprintf("Tag %q already exists", in.Name))
	}

	id, err := cat.CreateTag(ctx, odoo.TagValues{Name: in.Name, Color: in.Color})
	if err != nil {
		return Tag{}, upstream("Could not create tag", err)
	}
	s.logger.Info("tag created", slog.Int64("tag_id", id), slog.String("name", in.Name))
	return Tag{ID: id, Name: in.Name, Color: in.Color}, nil
}

// CreateProduct creates a stockable product after checking that every tag
// exists and that no product has the same name.
func (s *Service) CreateProduct(ctx context.Context, cat Catalog, in CreateProductInput) (CreatedProduct, error) {
	if len(in.TagIDs) > 0 {
		found, err := cat.CountTags(ctx, odoo.Domain{}.And(odoo.Where(odoo.FieldID, odoo.OpIn, in.TagIDs)))
		if err != nil {
			return CreatedProduct{}, upstream("Could not create product", err)
		}
		if found != len(in.TagIDs) {
			return CreatedProduct{}, httpx.Validation("One or more tag IDs do not exist")
		}
	}

	existing, err := cat.SearchProducts(ctx, odoo.Domain{}.And(odoo.Where(odoo.FieldName, odoo.OpEqual, in.Name)), odoo.SearchOptions{})
	if err != nil {
		return CreatedProduct{}, upstream("Could not create product", err)
	}
	if len(existing) > 0 {
		return CreatedProduct{}, httpx.Conflict(fmt.Sprintf("Product %q already exists", in.Name))
	}

	id, err := cat.CreateProduct(ctx, odoo.ProductValues{
		Name:          in.Name,
		ListPrice:     in.Price,
		StandardPrice: in.CostPrice,
		TagIDs:        in.TagIDs,
	})
	if err != nil {
		return CreatedProduct{}, upstream("Could not create product", err)
	}
	s.logger.Info("product created", slog.Int64("product_id", id), slog.String("name", in.Name))

	rec, err := readOne(ctx, cat, id, createdFields)
	if err != nil {
		return CreatedProduct{}, upstream("Could not create product", err)
	}
	tags, err := resolveTags(ctx, cat, rec.TagIDs)
	if err != nil {
		return CreatedProduct{}, upstream("Could not create product", err)
	}
	return CreatedProduct{
		ID:             id,
		Name:           rec.Name,
		CostPrice:      rec.StandardPrice,
		SalePrice:      rec.ListPrice,
		Tags:           tagsFor(rec.TagIDs, tags),
		CanBeSold:      rec.SaleOK,
		CanBePurchased: rec.PurchaseOK,
	}, nil
}

// UpdateProductPrice sets the sale price of the single product matching
// the given name, and the cost price too when asked. An exact name match
// is tried first, then a case-insensitive substring match.
func (s *Service) UpdateProductPrice(ctx context.Context, cat Catalog, in UpdatePriceInput) (PriceChange, error) {
	ids, err := cat.SearchProducts(ctx, odoo.Domain{}.And(odoo.Where(odoo.FieldName, odoo.OpEqual, in.ProductName)), odoo.SearchOptions{})
	if err != nil {
		return PriceChange{}, upstream("Could not update product", err)
	}
	if len(ids) == 0 {
		ids, err = cat.SearchProducts(ctx, odoo.Domain{}.And(odoo.Where(odoo.FieldName, odoo.OpILike, in.ProductName)), odoo.SearchOptions{})
		if err != nil {
			return PriceChange{}, upstream("Could not update product", err)
		}
	}

	switch {
	case len(ids) == 0:
		return PriceChange{}, httpx.NotFound(
			"Product not found: "+in.ProductName,
			"Try using the search API to find the exact product name",
		)
	case len(ids) > 1:
		records, err := cat.ReadProducts(ctx, ids, matchFields...)
		if err != nil {
			return PriceChange{}, upstream("Could not update product", err)
		}
		matches := make([]httpx.Match, 0, len(records))
		for _, rec := range records {
			matches = append(matches, httpx.Match{ID: rec.ID, Name: rec.Name})
		}
		return PriceChange{}, httpx.Ambiguous(
			fmt.Sprintf("Multiple products found matching %q", in.ProductName),
			matches,
			"Please use the exact product name",
		)
	}

	id := ids[0]
	current, err := readOne(ctx, cat, id, priceFields)
	if err != nil {
		return PriceChange{}, upstream("Could not update product", err)
	}

	values := odoo.PriceValues{ListPrice: in.Price}
	if in.UpdateCostPrice {
		cost := in.Price
		values.StandardPrice = &cost
	}
	if err := cat.WriteProduct(ctx, id, values); err != nil {
		return PriceChange{}, upstream("Could not update product", err)
	}
	s.logger.Info("product price updated",
		slog.Int64("product_id", id),
		slog.Float64("previous_price", current.ListPrice),
		slog.Float64("new_price", in.Price),
	)

	updated, err := readOne(ctx, cat, id, updatedFields)
	if err != nil {
		return PriceChange{}, upstream("Could not update product", err)
	}
	tags, err := resolveTags(ctx, cat, updated.TagIDs)
	if err != nil {
		return PriceChange{}, upstream("Could not update product", err)
	}
	return PriceChange{
		ID:               updated.ID,
		Name:             updated.Name,
		PreviousPrice:    current.ListPrice,
		NewPrice:         updated.ListPrice,
		CostPrice:        updated.StandardPrice,
		CostPriceUpdated: in.UpdateCostPrice,
		Tags:             tagsFor(updated.TagIDs, tags),
	}, nil
}

func readOne(ctx context.Context, cat Catalog, id int64, fields []string) (odoo.ProductRecord, error) {
	records, err := cat.ReadProducts(ctx, []int64{id}, fields...)
	if err != nil {
		return odoo.ProductRecord{}, err
	}
	if len(records) == 0 {
		return odoo.ProductRecord{}, fmt.Errorf("%w: product %d not readable", odoo.ErrUnexpectedResult, id)
	}
	return records[0], nil
}

// resolveTags reads every distinct tag id of the given lists with a single
// call.
func resolveTags(ctx context.Context, cat Catalog, lists ...[]int64) (map[int64]Tag, error) {
	seen := map[int64]struct{}{}
	var ids []int64
	for _, list := range lists {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	out := make(map[int64]Tag, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	records, err := cat.ReadTags(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		out[rec.ID] = tagFromRecord(rec)
	}
	return out, nil
}

// tagsFor keeps the order of ids and skips ids the ERP did not return.
func tagsFor(ids []int64, tags map[int64]Tag) []Tag {
	out := make([]Tag, 0, len(ids))
	for _, id := range ids {
		if tag, ok := tags[id]; ok {
			out = append(out, tag)
		}
	}
	return out
}

// upstream wraps an ERP failure. Fault summaries are shown to the caller.
func upstream(message string, err error) error {
	var fault *odoo.Fault
	if errors.As(err, &fault) {
		if summary := fault.Summary(); summary != "" {
			message += ": " + summary
		}
	}
	return httpx.Upstream(message, err)
}
