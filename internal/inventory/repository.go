package inventory

import (
	"context"

	"github.com/odyssey-erp/odoo-inventory-gateway/internal/odoo"
)

// Catalog abstracts the ERP operations the service needs. It is satisfied
// by *odoo.Catalog.
type Catalog interface {
	CountProducts(ctx context.Context, d odoo.Domain) (int, error)
	SearchProducts(ctx context.Context, d odoo.Domain, opts odoo.SearchOptions) ([]int64, error)
	ReadProducts(ctx context.Context, ids []int64, fields ...string) ([]odoo.ProductRecord, error)
	CreateProduct(ctx context.Context, v odoo.ProductValues) (int64, error)
	WriteProduct(ctx context.Context, id int64, v odoo.PriceValues) error
	CountTags(ctx context.Context, d odoo.Domain) (int, error)
	SearchTags(ctx context.Context, d odoo.Domain, opts odoo.SearchOptions) ([]int64, error)
	ReadTags(ctx context.Context, ids []int64) ([]odoo.TagRecord, error)
	CreateTag(ctx context.Context, v odoo.TagValues) (int64, error)
}

var _ Catalog = (*odoo.Catalog)(nil)

// Connector opens an ERP session for one request.
type Connector interface {
	Connect(ctx context.Context) (Catalog, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context) (Catalog, error)

// Connect calls f.
func (f ConnectorFunc) Connect(ctx context.Context) (Catalog, error) {
	return f(ctx)
}

// SessionConnector opens catalogs through ERP sessions.
func SessionConnector(sessions *odoo.Sessions) Connector {
	return ConnectorFunc(func(ctx context.Context) (Catalog, error) {
		cat, err := sessions.Connect(ctx)
		if err != nil {
			return nil, err
		}
		return cat, nil
	})
}
