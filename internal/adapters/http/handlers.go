package http

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/pkg/geospatial"
)

// StateHandler returns the backend state and what it allows.
func StateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, err := deps.Session.State(c.UserContext())
		if err != nil {
			return errFrom(c, err)
		}
		c.Set("Cache-Control", "no-cache")
		return c.JSON(status)
	}
}

// ConnectHandler reads the backend state and its plugin list.
func ConnectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := deps.Session.Connect(c.UserContext())
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(res)
	}
}

// PluginsHandler lists the routing plugins loaded by the backend.
func PluginsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plugins, err := deps.Session.Plugins(c.UserContext())
		if err != nil {
			return errFrom(c, err)
		}
		if plugins == nil {
			plugins = []string{}
		}
		return c.JSON(plugins)
	}
}

// PluginOptionsHandler lists a plugin's options with their current values.
func PluginOptionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plugin := c.Params("plugin")
		if plugin == "" {
			return errBadRequest(c, "plugin is required")
		}
		opts, err := deps.Session.PluginOptions(c.UserContext(), plugin)
		if err != nil {
			return errFrom(c, err)
		}
		if opts == nil {
			opts = []domain.PluginOption{}
		}
		return c.JSON(opts)
	}
}

type setOptionRequest struct {
	Value string `json:"value"`
}

// SetPluginOptionHandler sets one plugin option. The value is coerced to the
// option's declared type.
func SetPluginOptionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plugin, name := c.Params("plugin"), c.Params("name")
		var req setOptionRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		opt, err := deps.Session.SetPluginOption(c.UserContext(), plugin, name, req.Value)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(opt)
	}
}

// ConstantsHandler returns the transport types and networks of the loaded graph.
func ConstantsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		consts, err := deps.Session.Constants(c.UserContext())
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(consts)
	}
}

type buildRequest struct {
	DBOptions string `json:"db_options"`
}

// BuildGraphHandler connects the backend to a database and builds its graph.
func BuildGraphHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req buildRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		status, err := deps.Builds.Build(c.UserContext(), req.DBOptions)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(status)
	}
}

// ComputeItineraryHandler computes and stores an itinerary.
// With ?format=html the roadmap is returned as an HTML table.
func ComputeItineraryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q domain.ItineraryQuery
		if err := c.BodyParser(&q); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		it, err := deps.Itineraries.Compute(c.UserContext(), q)
		if err != nil {
			return errFrom(c, err)
		}
		c.Location("/v1/itineraries/" + it.ID)
		c.Status(fiber.StatusCreated)
		return writeItinerary(c, deps, it)
	}
}

// GetItineraryHandler returns a stored itinerary.
func GetItineraryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		it, err := deps.Itineraries.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err)
		}
		c.Set("Cache-Control", "public, max-age=3600")
		return writeItinerary(c, deps, it)
	}
}

// ListItinerariesHandler pages through stored itineraries, newest first.
func ListItinerariesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		items, total, err := deps.Itineraries.List(c.UserContext(), offset, limit)
		if err != nil {
			return errFrom(c, err)
		}
		if items == nil {
			items = []domain.Itinerary{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: items, Pagination: pg})
	}
}

// ItineraryLayerHandler returns the overview path as a GeoJSON layer.
func ItineraryLayerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		it, err := deps.Itineraries.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err)
		}
		fc := geospatial.Layer(it.Result.OverviewPath, deps.layerStyle())
		data, err := fc.MarshalJSON()
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

func writeItinerary(c *fiber.Ctx, deps *Dependencies, it *domain.Itinerary) error {
	if c.Query("format") != "html" {
		return c.JSON(it)
	}
	var buf bytes.Buffer
	if err := RenderRoadmap(&buf, it.Result, deps.IconDir); err != nil {
		return errInternal(c, err.Error())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
