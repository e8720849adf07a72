package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/fieldops/internal/adapters/postgres"
	"github.com/samirrijal/fieldops/internal/adapters/valkey"
	"github.com/samirrijal/fieldops/internal/core/ports"
	"github.com/samirrijal/fieldops/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Customers  *usecases.CustomerMapService
	Orders     *usecases.OrderService
	Pickings   *usecases.PickingService
	Checklists *usecases.ChecklistService
	Map        *usecases.MapService
	// Purchases runs purchase order creation as a workflow; nil runs it inline.
	Purchases ports.WorkflowStarter
	Auth      AuthConfig
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
