package http

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/core/geosync"
)

// locationBody is the location part of a create or update body. shape is a
// GeoJSON Point; when it is sent it wins over the scalars.
type locationBody struct {
	Latitude  *float64        `json:"latitude"`
	Longitude *float64        `json:"longitude"`
	Shape     json.RawMessage `json:"shape"`
}

func (b locationBody) update() (domain.LocationUpdate, error) {
	u := domain.LocationUpdate{Latitude: b.Latitude, Longitude: b.Longitude}
	if len(b.Shape) > 0 && string(b.Shape) != "null" {
		g, err := geosync.ParseGeoJSON(b.Shape)
		if err != nil {
			return domain.LocationUpdate{}, err
		}
		u.Shape = g
	}
	return u, nil
}

// paramID reads a positive integer path parameter.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// page reads offset and limit; the services clamp them.
func page(c *fiber.Ctx) (int, int) {
	return c.QueryInt("offset", 0), c.QueryInt("limit", 0)
}
