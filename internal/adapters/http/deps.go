package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/tempusgw/internal/adapters/postgres"
	"github.com/samirrijal/tempusgw/internal/adapters/valkey"
	"github.com/samirrijal/tempusgw/internal/core/usecases"
	"github.com/samirrijal/tempusgw/internal/pkg/geospatial"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Session     *usecases.SessionService
	Builds      *usecases.BuildService
	Itineraries *usecases.ItineraryService

	// BackendTimeout bounds handlers that call the routing backend.
	BackendTimeout time.Duration
	// IconDir prefixes roadmap icons in HTML output.
	IconDir string
	// LayerStyle styles the GeoJSON itinerary layer.
	LayerStyle geospatial.Style
	// OpenAPIPath is served at /docs/openapi.yaml; defaults to api/openapi.yaml.
	OpenAPIPath string

	NATS  *nats.Conn
	DB    *postgres.DB
	Cache *valkey.Cache
}

func (d *Dependencies) backendTimeout() time.Duration {
	if d.BackendTimeout <= 0 {
		return 2 * time.Minute
	}
	return d.BackendTimeout
}

func (d *Dependencies) layerStyle() geospatial.Style {
	if d.LayerStyle.Color == "" {
		return geospatial.DefaultStyle
	}
	return d.LayerStyle
}
