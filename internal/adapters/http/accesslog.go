package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Scrapes and health checks would drown the log.
var quietPaths = map[string]bool{
	"/metrics":   true,
	"/v1/health": true,
	"/v1/ready":  true,
	"/docs":      true,
}

// AccessLogMiddleware writes one structured line per request. Records are
// logged under their route pattern (/v1/customers/:id) next to the concrete
// path, and mutating calls carry the authenticated actor.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if quietPaths[c.Path()] {
			return c.Next()
		}
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		attrs := []slog.Attr{
			slog.String("route", c.Route().Path),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
		}
		if who := actor(c); who != "" {
			attrs = append(attrs, slog.String("actor", who))
		}

		level := slog.LevelInfo
		switch {
		case err != nil || status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		logger := LoggerFromCtx(c.UserContext())
		if RequestIDFromCtx(c.UserContext()) == "" {
			logger = logger.With("method", method)
		}
		logger.LogAttrs(c.UserContext(), level, method+" "+path, attrs...)
		return err
	}
}
