package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odoo-inventory-gateway/internal/inventory"
	"github.com/odyssey-erp/odoo-inventory-gateway/internal/observability"
	"github.com/odyssey-erp/odoo-inventory-gateway/internal/odoo"
	"github.com/odyssey-erp/odoo-inventory-gateway/internal/platform/cache"
)

// GatewayOptions tunes NewGateway for the hosting entrypoint.
type GatewayOptions struct {
	RequestLog bool
}

// Gateway is the assembled HTTP surface and the resources behind it.
type Gateway struct {
	Handler http.Handler
	Metrics *observability.Metrics
	closers []func() error
}

// NewGateway wires the ERP client, the optional Redis session cache, the
// metrics registry and the router.
func NewGateway(ctx context.Context, cfg *Config, logger *slog.Logger, opts GatewayOptions) (*Gateway, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	metrics := observability.NewMetrics()
	client, err := odoo.NewClient(cfg.Odoo(), odoo.WithRecorder(metrics))
	if err != nil {
		return nil, fmt.Errorf("app: erp client: %w", err)
	}
	g := &Gateway{Metrics: metrics, closers: []func() error{client.Close}}

	sessionOpts := []odoo.SessionOption{odoo.WithLogger(logger)}
	if cfg.RedisAddr != "" {
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, erp session cache disabled", slog.Any("error", err))
		} else {
			g.closers = append(g.closers, redisClient.Close)
			sessionOpts = append(sessionOpts, odoo.WithSessionStore(odoo.NewRedisSessionStore(redisClient), cfg.ERPSessionTTL))
			logger.Info("erp session cache enabled", slog.Duration("ttl", cfg.ERPSessionTTL))
		}
	}
	sessions := odoo.NewSessions(client, sessionOpts...)

	handler := inventory.NewHandler(logger, inventory.NewService(logger), inventory.SessionConnector(sessions))
	g.Handler = NewRouter(RouterParams{
		Logger:     logger,
		Config:     cfg,
		Inventory:  handler,
		Metrics:    metrics,
		RequestLog: opts.RequestLog,
	})
	return g, nil
}

// Close releases the ERP handles and the Redis client.
func (g *Gateway) Close() error {
	var errs []error
	for i := len(g.closers) - 1; i >= 0; i-- {
		errs = append(errs, g.closers[i]())
	}
	return errors.Join(errs...)
}
