// Package app wires the postgres adapters into the use case services shared
// by the fieldops binaries.
package app

import (
	"fmt"

	"github.com/samirrijal/fieldops/internal/adapters/postgres"
	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/core/geosync"
	"github.com/samirrijal/fieldops/internal/core/ports"
	"github.com/samirrijal/fieldops/internal/core/usecases"
)

// Entities lists every locatable entity in a stable order.
var Entities = []domain.EntityKind{
	domain.EntityCustomerMap,
	domain.EntityInstallmentOrder,
	domain.EntityDeliveryPicking,
}

// Services groups the use case services.
type Services struct {
	Customers  *usecases.CustomerMapService
	Orders     *usecases.OrderService
	Pickings   *usecases.PickingService
	Checklists *usecases.ChecklistService
	Map        *usecases.MapService
}

// Synchronizer builds the geometry synchronizer of one entity.
func Synchronizer(db *postgres.DB, entity domain.EntityKind) (*geosync.Synchronizer, error) {
	repo, err := postgres.NewGeometryRepo(db, entity)
	if err != nil {
		return nil, fmt.Errorf("geometry repo: %w", err)
	}
	return geosync.New(repo, entity, geosync.PolicyFor(entity)), nil
}

// NewServices wires the services to db. events and cache may be nil.
func NewServices(db *postgres.DB, events ports.EventPublisher, cache ports.CacheService, mapTTL int) (*Services, error) {
	syncs := make(map[domain.EntityKind]*geosync.Synchronizer, len(Entities))
	for _, e := range Entities {
		s, err := Synchronizer(db, e)
		if err != nil {
			return nil, err
		}
		syncs[e] = s
	}

	pickings := postgres.NewPickingRepo(db)
	return &Services{
		Customers: usecases.NewCustomerMapService(postgres.NewCustomerMapRepo(db), syncs[domain.EntityCustomerMap], events),
		Orders: usecases.NewOrderService(
			postgres.NewInstallmentOrderRepo(db),
			postgres.NewProductRepo(db),
			postgres.NewPurchaseOrderRepo(db),
			syncs[domain.EntityInstallmentOrder],
			events,
		),
		Pickings:   usecases.NewPickingService(pickings, syncs[domain.EntityDeliveryPicking], events),
		Checklists: usecases.NewChecklistService(postgres.NewChecklistRepo(db), pickings),
		Map:        usecases.NewMapService(postgres.NewMapRepo(db), cache, mapTTL),
	}, nil
}
