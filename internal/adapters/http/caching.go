package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type cacheRule struct {
	prefix string
	value  string
}

// cacheRules are tried in order, first prefix wins. Map pins and GeoJSON are
// also cached server side and invalidated by location events; records change
// through the write routes and must be revalidated.
var cacheRules = []cacheRule{
	{"/metrics", "no-store"},
	{"/v1/health", "no-store"},
	{"/v1/ready", "no-store"},
	{"/v1/map/", "private, max-age=30"},
	{"/customer_map_tracking/", "private, max-age=30"},
	{"/v1/checklist-images/", "private, max-age=300"},
	{"/docs", "public, max-age=3600"},
	{"/v1/", "private, no-cache"},
}

// CachingMiddleware fills in Cache-Control on GET responses whose handler
// did not set one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if c.Method() != fiber.MethodGet || c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}
		path := c.Path()
		for _, r := range cacheRules {
			if strings.HasPrefix(path, r.prefix) {
				c.Set(fiber.HeaderCacheControl, r.value)
				break
			}
		}
		return err
	}
}
