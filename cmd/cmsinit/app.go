package main

import (
	"context"
	"log/slog"
	"time"

	"lingua/cmsinit/internal/api"
	"lingua/cmsinit/internal/breaker"
	"lingua/cmsinit/internal/cma"
	"lingua/cmsinit/internal/config"
	"lingua/cmsinit/internal/notify"
	"lingua/cmsinit/internal/orchestrator"
	"lingua/cmsinit/internal/schema"
	"lingua/cmsinit/internal/telemetry"
)

// AppContext holds the dependencies shared by the subcommands.
type AppContext struct {
	cfg          *config.Config
	otelProvider *telemetry.Provider
	orchestrator *orchestrator.Orchestrator
	router       *api.Router
}

// buildAppContext wires telemetry, the management client, the optional NATS
// notifier, the orchestrator and the HTTP router from cfg.
func buildAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	app := &AppContext{cfg: cfg}

	// An unreachable collector never blocks startup; an empty endpoint
	// disables telemetry entirely.
	if cfg.Telemetry.OTLPEndpoint == "" {
		slog.Info("OTEL telemetry disabled (no endpoint configured)")
	} else {
		tp, err := telemetry.InitProvider(ctx, cfg.Telemetry)
		if err != nil {
			slog.Warn("OTEL provider init failed, telemetry disabled", "err", err)
		} else {
			app.otelProvider = tp
		}
	}

	client := cma.NewClient(cfg.Management, breaker.New("management"))
	bootstrapper := schema.NewBootstrapper(client, cfg.Management.SpaceID)
	management := orchestrator.ProberFunc(func(ctx context.Context) error {
		return client.Probe(ctx, cfg.Management.SpaceID)
	})

	// A nil interface, not a nil *notify.Publisher, disables the notify phase.
	var notifier orchestrator.Notifier
	if cfg.Notify.NATSURL != "" {
		notifier = notify.NewPublisher(cfg.Notify, cfg.Management, breaker.New("nats"))
	}

	app.orchestrator = orchestrator.New(bootstrapper, management, notifier)
	app.router = api.NewRouter(app.orchestrator, cfg.Telemetry.ServiceName, cfg.Bootstrap.Timeout)

	return app, nil
}

// shutdownTelemetry flushes OTEL exporters, if any were started.
func (a *AppContext) shutdownTelemetry() {
	if a.otelProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.otelProvider.Shutdown(ctx); err != nil {
		slog.Warn("OTEL shutdown error", "err", err)
	}
}
