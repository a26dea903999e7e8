// Command registryd runs the in-memory service registry.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/registryd/api"
	"github.com/kbukum/registryd/bootstrap"
	"github.com/kbukum/registryd/config"
	"github.com/kbukum/registryd/observability"
	"github.com/kbukum/registryd/registry"
	"github.com/kbukum/registryd/server"
	"github.com/kbukum/registryd/version"
)

const serviceName = "registryd"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "registryd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	var cfg appConfig
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = version.GetShortVersion()
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}

	metrics, err := setupObservability(ctx, app, cfg.Observability)
	if err != nil {
		return err
	}

	regComponent := registry.NewComponent(cfg.Registry, app.Logger, metrics)

	srv := server.New(cfg.Server, app.Logger)
	srv.ApplyDefaults(serviceName, app.Components.HealthAll)
	api.RegisterRoutes(srv.GinEngine(), regComponent.Registry(), app.Logger)

	// Registration order is start order; shutdown runs in reverse, so the
	// server drains before the registry stops pruning.
	if err := app.RegisterComponent(regComponent); err != nil {
		return err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}

	return app.Run(ctx)
}

// setupObservability starts the OTLP exporters when enabled and registers
// their shutdown with the app. It returns nil metrics when disabled, which
// the registry treats as a no-op sink.
func setupObservability(ctx context.Context, app *bootstrap.App[*appConfig], cfg observability.Config) (*observability.Metrics, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	meterProvider, err := observability.InitMeter(ctx, cfg, serviceName, version.GetShortVersion())
	if err != nil {
		return nil, fmt.Errorf("initializing meter: %w", err)
	}
	tracerProvider, err := observability.InitTracer(ctx, cfg, serviceName, version.GetShortVersion())
	if err != nil {
		return nil, fmt.Errorf("initializing tracer: %w", err)
	}

	app.OnStop(func(stopCtx context.Context) error {
		if err := tracerProvider.Shutdown(stopCtx); err != nil {
			app.Logger.Warn("tracer shutdown", map[string]interface{}{"error": err.Error()})
		}
		return meterProvider.Shutdown(stopCtx)
	})

	return observability.NewMetrics(observability.Meter(serviceName))
}
