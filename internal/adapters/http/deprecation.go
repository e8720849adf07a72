package http

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/fieldops/internal/pkg/metrics"
)

// DeprecatedRoute is a path kept for old dashboard clients until SunsetDate.
type DeprecatedRoute struct {
	Path        string // route pattern, ":name" segments match one segment
	SunsetDate  time.Time
	Alternative string // successor pattern; its ":name" segments are filled from Path
}

// DeprecationMiddleware sets the RFC 8594 Deprecation and Sunset headers and
// an RFC 8288 successor link on the matching route, and counts the hit.
func DeprecationMiddleware(deprecated []DeprecatedRoute) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, d := range deprecated {
			params, ok := matchPattern(c.Path(), d.Path)
			if !ok {
				continue
			}
			c.Set("Deprecation", "true")
			c.Set("Sunset", d.SunsetDate.UTC().Format(time.RFC1123))
			if d.Alternative != "" {
				c.Set("Link", fmt.Sprintf(`<%s>; rel="successor-version"`, expandPattern(d.Alternative, params)))
			}
			days := math.Max(0, math.Ceil(time.Until(d.SunsetDate).Hours()/24))
			c.Set("Warning", fmt.Sprintf(`299 - "Deprecated API, will sunset in %.0f days"`, days))
			metrics.LegacyRequests.WithLabelValues(d.Path).Inc()
			break
		}
		return c.Next()
	}
}

// matchPattern matches path against pattern segment by segment and returns
// the values of its ":name" segments.
func matchPattern(path, pattern string) (map[string]string, bool) {
	ps := strings.Split(strings.Trim(path, "/"), "/")
	qs := strings.Split(strings.Trim(pattern, "/"), "/")
	if len(ps) != len(qs) {
		return nil, false
	}
	params := map[string]string{}
	for i, q := range qs {
		if name, ok := strings.CutPrefix(q, ":"); ok {
			if ps[i] == "" {
				return nil, false
			}
			params[name] = ps[i]
			continue
		}
		if ps[i] != q {
			return nil, false
		}
	}
	return params, true
}

func expandPattern(pattern string, params map[string]string) string {
	segs := strings.Split(pattern, "/")
	for i, s := range segs {
		if name, ok := strings.CutPrefix(s, ":"); ok {
			if v, found := params[name]; found {
				segs[i] = v
			}
		}
	}
	return strings.Join(segs, "/")
}
