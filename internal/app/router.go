package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odoo-inventory-gateway/internal/auth"
	"github.com/odyssey-erp/odoo-inventory-gateway/internal/inventory"
	"github.com/odyssey-erp/odoo-inventory-gateway/internal/observability"
	"github.com/odyssey-erp/odoo-inventory-gateway/internal/platform/httpx"
)

const serviceName = "odoo-inventory-gateway"

// healthPath skips the shared secret; metrics stay behind it.
const (
	healthPath  = "/healthz"
	metricsPath = "/metrics"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger    *slog.Logger
	Config    *Config
	Inventory *inventory.Handler
	Metrics   *observability.Metrics
	// RequestLog enables chi's request logger.
	RequestLog bool
}

// NewRouter constructs the chi.Router with gateway defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	var secret auth.SharedSecret
	if params.Config != nil {
		secret = auth.SharedSecret{
			ClientID:     params.Config.ClientID,
			ClientSecret: params.Config.ClientSecret,
			Exempt:       []string{healthPath},
		}
	}

	if params.RequestLog {
		r.Use(chimw.Logger)
	}
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Auth:    secret,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get(healthPath, func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{
			"status":  "healthy",
			"service": serviceName,
		}
		if params.Config != nil {
			body["environment_check"] = params.Config.EnvironmentCheck()
		}
		httpx.JSON(w, http.StatusOK, body)
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, metricsPath, params.Metrics.Handler())
	}

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondError(w, httpx.MethodNotAllowed("Method Not Allowed"))
	})
	r.NotFound(params.Inventory.NotFound)
	params.Inventory.MountRoutes(r)

	return r
}
