package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/core/usecases"
)

// mapEntities maps the URL segment of the dashboard routes to entities.
var mapEntities = map[string]domain.EntityKind{
	"customers":  domain.EntityCustomerMap,
	"orders":     domain.EntityInstallmentOrder,
	"deliveries": domain.EntityDeliveryPicking,
}

func entityParam(c *fiber.Ctx) (domain.EntityKind, bool) {
	name := c.Params("entity")
	if e, ok := mapEntities[name]; ok {
		return e, true
	}
	e := domain.EntityKind(name)
	return e, e.Valid()
}

// MapLocationsHandler returns the pins of an entity. lat, lon and radius
// (metres) restrict the result to a circle.
func MapLocationsHandler(deps *Dependencies, fixed domain.EntityKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entity := fixed
		if entity == "" {
			var ok bool
			if entity, ok = entityParam(c); !ok {
				return errNotFound(c, "unknown map entity")
			}
		}

		var near *usecases.NearFilter
		if c.Query("lat") != "" || c.Query("lon") != "" {
			lat, lon := c.QueryFloat("lat", 0), c.QueryFloat("lon", 0)
			if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
				return newError(c, 422, "invalid_coordinate", "lat must be within [-90, 90] and lon within [-180, 180]")
			}
			radius := c.QueryFloat("radius", 1000)
			if radius <= 0 || radius > 100000 {
				return errBadRequest(c, "radius must be between 1 and 100000 meters")
			}
			near = &usecases.NearFilter{Lat: lat, Lon: lon, RadiusMeters: radius}
		}

		locs, err := deps.Map.Locations(c.UserContext(), entity, near)
		if err != nil {
			return errFrom(c, err)
		}
		if locs == nil {
			locs = []domain.MapLocation{}
		}
		c.Set("Cache-Control", "private, max-age=30")
		return c.JSON(fiber.Map{"count": len(locs), "locations": locs})
	}
}

// MapGeoJSONHandler returns a FeatureCollection of an entity.
func MapGeoJSONHandler(deps *Dependencies, fixed domain.EntityKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entity := fixed
		if entity == "" {
			var ok bool
			if entity, ok = entityParam(c); !ok {
				return errNotFound(c, "unknown map entity")
			}
		}
		data, err := deps.Map.GeoJSON(c.UserContext(), entity)
		if err != nil {
			return errFrom(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		c.Set("Cache-Control", "private, max-age=30")
		return c.Send(data)
	}
}

// MapDebugHandler reports location coverage and PostGIS availability.
func MapDebugHandler(deps *Dependencies, fixed domain.EntityKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entity := fixed
		if entity == "" {
			var ok bool
			if entity, ok = entityParam(c); !ok {
				return errNotFound(c, "unknown map entity")
			}
		}
		stats, err := deps.Map.Debug(c.UserContext(), entity)
		if err != nil {
			return errFrom(c, err)
		}
		c.Set("Cache-Control", "no-cache")
		return c.JSON(stats)
	}
}

// legacyMapRoutes are the dashboard paths of the previous release.
var legacyMapRoutes = []DeprecatedRoute{
	{Path: "/customer_map_tracking/customers_json", SunsetDate: time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC), Alternative: "/v1/map/customers/locations"},
	{Path: "/customer_map_tracking/customers_geojson", SunsetDate: time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC), Alternative: "/v1/map/customers/geojson"},
	{Path: "/customer_map_tracking/debug_customers", SunsetDate: time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC), Alternative: "/v1/map/customers/debug"},
	{Path: "/customer_map_tracking/customer/:id", SunsetDate: time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC), Alternative: "/v1/customers/:id"},
}
