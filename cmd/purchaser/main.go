package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/fieldops/internal/adapters/nats"
	"github.com/samirrijal/fieldops/internal/adapters/postgres"
	"github.com/samirrijal/fieldops/internal/app"
	"github.com/samirrijal/fieldops/internal/core/ports"
	"github.com/samirrijal/fieldops/internal/pkg/config"
	"github.com/samirrijal/fieldops/internal/pkg/logging"
	"github.com/samirrijal/fieldops/internal/workflows"
)

func main() {
	cfg, err := config.Load("fieldops-purchaser")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// status events are best effort
	var events ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, order events disabled", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	svc, err := app.NewServices(db, events, nil, 0)
	if err != nil {
		log.Fatalf("services: %v", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.PurchaseWorkflow)
	w.RegisterActivity(&workflows.PurchaseActivities{Orders: svc.Orders})

	slog.Info("purchase worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
