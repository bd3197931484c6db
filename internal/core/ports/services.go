package ports

import (
	"context"

	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/core/roadmap"
)

// RoutingBackend is the set of services exposed by the routing backend.
// Each method is a single round-trip.
type RoutingBackend interface {
	State(ctx context.Context) (domain.ServerStatus, error)
	Plugins(ctx context.Context) ([]string, error)
	OptionDescriptions(ctx context.Context, plugin string) ([]domain.PluginOption, error)
	// Options returns current option values keyed by option name.
	Options(ctx context.Context, plugin string) (map[string]string, error)
	SetOption(ctx context.Context, plugin, name, value string) error
	Constants(ctx context.Context) (domain.Constants, error)

	Connect(ctx context.Context, dbOptions string) error
	PreBuild(ctx context.Context) error
	Build(ctx context.Context) error

	PreProcess(ctx context.Context, plugin string, req roadmap.RequestDocument) error
	Process(ctx context.Context, plugin string) error
	Result(ctx context.Context, plugin string) (roadmap.ResultDocument, error)
	Metrics(ctx context.Context, plugin string) ([]domain.Metric, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishItineraryComputed(ctx context.Context, event *domain.ItineraryComputedEvent) error
	PublishGraphBuilt(ctx context.Context, event *domain.GraphBuiltEvent) error
}

// StatePublisher announces backend state transitions.
type StatePublisher interface {
	PublishState(ctx context.Context, status domain.ServerStatus) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeGraphBuilt(ctx context.Context, handler func(ctx context.Context, event *domain.GraphBuiltEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// GraphBuildStarter runs a graph build out of process and waits for it.
type GraphBuildStarter interface {
	RunGraphBuild(ctx context.Context, dbOptions string) (domain.ServerStatus, error)
}
