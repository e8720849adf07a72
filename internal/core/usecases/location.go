package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/core/geosync"
	"github.com/samirrijal/fieldops/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return offset, limit
}

// locator runs location writes through the synchronizer and announces
// display changes on the event bus.
type locator struct {
	sync   *geosync.Synchronizer
	events ports.EventPublisher
}

// precheck validates an update before the owning row is written.
func (l locator) precheck(u domain.LocationUpdate) error {
	if u.Shape != nil {
		p, ok := geosync.FromGeometry(u.Shape)
		if !ok {
			return nil // Apply reports it
		}
		return geosync.Validate(&p.Lat, &p.Lon)
	}
	return geosync.Validate(u.Latitude, u.Longitude)
}

// prepare resolves the location of a record that is about to be inserted.
func (l locator) prepare(loc *domain.Location, u domain.LocationUpdate) error {
	return l.sync.Prepare(loc, u)
}

// created announces the location of a freshly inserted record.
func (l locator) created(ctx context.Context, id int64, loc *domain.Location, u domain.LocationUpdate) {
	if !u.Empty() {
		l.publish(ctx, "location.created", id, "", loc)
	}
}

func (l locator) apply(ctx context.Context, id int64, loc *domain.Location, u domain.LocationUpdate) error {
	if u.Empty() {
		return nil
	}
	prev := loc.LocationDisplay
	if err := l.sync.Apply(ctx, id, loc, u); err != nil {
		return err
	}
	l.publish(ctx, "location.changed", id, prev, loc)
	return nil
}

func (l locator) clear(ctx context.Context, id int64, loc *domain.Location) error {
	prev := loc.LocationDisplay
	if err := l.sync.Clear(ctx, id, loc); err != nil {
		return err
	}
	l.publish(ctx, "location.cleared", id, prev, loc)
	return nil
}

func (l locator) refresh(loc *domain.Location) {
	l.sync.Refresh(loc)
}

func (l locator) publish(ctx context.Context, typ string, id int64, prev string, loc *domain.Location) {
	if l.events == nil || (typ == "location.changed" && prev == loc.LocationDisplay) {
		return
	}
	event := &domain.LocationEvent{
		ID:        uuid.NewString(),
		Type:      typ,
		Entity:    l.sync.Entity(),
		RecordID:  id,
		Previous:  prev,
		Current:   loc.LocationDisplay,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Time:      time.Now().UTC(),
	}
	if err := l.events.PublishLocationEvent(ctx, event); err != nil {
		slog.Warn("publish location event failed", "entity", event.Entity, "id", id, "error", err)
	}
}
