package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/odyssey-erp/odoo-inventory-gateway/internal/app"
	"github.com/odyssey-erp/odoo-inventory-gateway/internal/platform/lambdaurl"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	// Warm invocations reuse the gateway and its cached ERP session.
	gateway, err := app.NewGateway(context.Background(), cfg, logger, app.GatewayOptions{})
	if err != nil {
		logger.Error("build gateway", slog.Any("error", err))
		os.Exit(1)
	}

	lambda.Start(lambdaurl.Handler(gateway.Handler))
}
