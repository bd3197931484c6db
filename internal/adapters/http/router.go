package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/tempusgw/internal/pkg/metrics"
)

// computeSunset is when the pre-REST /v1/compute alias goes away.
var computeSunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 30 non-GET requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        30,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodGet
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
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

	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{Path: "/v1/compute", SunsetDate: computeSunset, Alternative: "/v1/itineraries"},
	}))

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	backend := deps.backendTimeout()
	withBackend := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, backend)
	}

	v1 := app.Group("/v1")

	// Session
	v1.Get("/state", withBackend(StateHandler(deps)))
	v1.Post("/connect", withBackend(ConnectHandler(deps)))
	v1.Get("/plugins", withBackend(PluginsHandler(deps)))
	v1.Get("/plugins/:plugin/options", withBackend(PluginOptionsHandler(deps)))
	v1.Put("/plugins/:plugin/options/:name", withBackend(SetPluginOptionHandler(deps)))
	v1.Get("/constants", withBackend(ConstantsHandler(deps)))

	// Graph build: no handler timeout, each backend call has its own
	v1.Post("/graph/build", BuildGraphHandler(deps))

	// Itineraries
	v1.Post("/itineraries", withBackend(ComputeItineraryHandler(deps)))
	v1.Get("/itineraries", timeout.NewWithContext(ListItinerariesHandler(deps), 15*time.Second))
	v1.Get("/itineraries/:id", timeout.NewWithContext(GetItineraryHandler(deps), 15*time.Second))
	v1.Get("/itineraries/:id/layer", timeout.NewWithContext(ItineraryLayerHandler(deps), 15*time.Second))
	v1.Post("/compute", withBackend(ComputeItineraryHandler(deps)))

	// GraphQL
	app.Post("/graphql", withBackend(GraphQLHandler(deps)))

	// API documentation (Swagger UI)
	SetupDocs(app, deps.OpenAPIPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
