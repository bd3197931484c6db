package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses the handler
// left alone.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics", path == "/v1/state":
			ttl = "no-cache" // live values

		case path == "/v1/constants":
			ttl = "public, max-age=300" // changes only on a graph build

		case strings.HasPrefix(path, "/v1/plugins"):
			ttl = "private, max-age=0" // options are mutable

		case strings.HasPrefix(path, "/v1/itineraries/"):
			ttl = "public, max-age=3600" // stored itineraries never change

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
