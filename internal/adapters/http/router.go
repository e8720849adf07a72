package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, 429, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness run without the request timeout
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	t := func(h fiber.Handler) fiber.Handler { return timeout.NewWithContext(h, requestTimeout) }
	auth := RequireAuth(deps.Auth)

	v1 := app.Group("/v1")

	// Customer map entries
	v1.Get("/customers", t(ListCustomersHandler(deps)))
	v1.Get("/customers/geojson", t(MapGeoJSONHandler(deps, domain.EntityCustomerMap)))
	v1.Get("/customers/:id", t(GetCustomerHandler(deps)))
	v1.Post("/customers", auth, t(CreateCustomerHandler(deps)))
	v1.Patch("/customers/:id", auth, t(UpdateCustomerHandler(deps)))
	v1.Delete("/customers/:id", auth, t(ArchiveCustomerHandler(deps)))
	v1.Post("/customers/:id/set-location", auth, t(SetCustomerLocationHandler(deps)))
	v1.Post("/customers/:id/clear-location", auth, t(ClearCustomerLocationHandler(deps)))

	// Installment orders
	v1.Get("/orders", t(ListOrdersHandler(deps)))
	v1.Get("/orders/geojson", t(MapGeoJSONHandler(deps, domain.EntityInstallmentOrder)))
	v1.Get("/orders/:id", t(GetOrderHandler(deps)))
	v1.Get("/orders/:id/purchase-orders", t(OrderPurchaseOrdersHandler(deps)))
	v1.Post("/orders", auth, t(CreateOrderHandler(deps)))
	v1.Patch("/orders/:id", auth, t(UpdateOrderHandler(deps)))
	v1.Post("/orders/:id/submit", auth, t(SubmitOrderHandler(deps)))
	v1.Post("/orders/:id/approve", auth, t(ApproveOrderHandler(deps)))
	v1.Post("/orders/:id/reject", auth, t(RejectOrderHandler(deps)))
	v1.Post("/orders/:id/done", auth, t(DoneOrderHandler(deps)))
	v1.Post("/orders/:id/purchase", auth, t(CreatePurchaseOrderHandler(deps)))
	v1.Post("/orders/:id/set-location", auth, t(SetOrderLocationHandler(deps)))
	v1.Post("/orders/:id/clear-location", auth, t(ClearOrderLocationHandler(deps)))

	// Delivery orders
	v1.Get("/deliveries", t(ListDeliveriesHandler(deps)))
	v1.Get("/deliveries/:id", t(GetDeliveryHandler(deps)))
	v1.Get("/deliveries/:id/details", t(DetailsHandler(deps)))
	v1.Get("/deliveries/:id/checklist", t(DeliveryChecklistHandler(deps)))
	v1.Post("/deliveries/:id/start", auth, t(StartDeliveryHandler(deps)))
	v1.Put("/deliveries/:id/location", auth, t(SetDeliveredLocationHandler(deps)))
	v1.Delete("/deliveries/:id/location", auth, t(ClearDeliveredLocationHandler(deps)))
	v1.Post("/deliveries/:id/generate-details", auth, t(GenerateDetailsHandler(deps)))
	v1.Post("/deliveries/:id/return", auth, t(CreateReturnHandler(deps)))
	v1.Post("/deliveries/:id/checklist", auth, t(OpenChecklistHandler(deps)))

	// Installation checklists
	v1.Get("/checklists", t(ListChecklistsHandler(deps)))
	v1.Get("/checklists/:id", t(GetChecklistHandler(deps)))
	v1.Post("/checklists", auth, t(CreateChecklistHandler(deps)))
	v1.Patch("/checklists/:id", auth, t(UpdateChecklistHandler(deps)))
	v1.Post("/checklist-lines/:id/prepare-inspection", auth, t(PrepareInspectionHandler(deps)))
	v1.Get("/checklist-images/:id/:field", t(ChecklistImageHandler(deps)))

	// Map dashboard
	v1.Get("/map/:entity/locations", t(MapLocationsHandler(deps, "")))
	v1.Get("/map/:entity/geojson", t(MapGeoJSONHandler(deps, "")))
	v1.Get("/map/:entity/debug", t(MapDebugHandler(deps, "")))

	// Deprecated dashboard paths
	legacy := app.Group("/customer_map_tracking", DeprecationMiddleware(legacyMapRoutes))
	legacy.Get("/customers_json", t(MapLocationsHandler(deps, domain.EntityCustomerMap)))
	legacy.Get("/customers_geojson", t(MapGeoJSONHandler(deps, domain.EntityCustomerMap)))
	legacy.Get("/debug_customers", t(MapDebugHandler(deps, domain.EntityCustomerMap)))
	legacy.Get("/customer/:id", t(GetCustomerHandler(deps)))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
