package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/tempusgw/internal/core/domain"
)

// graphBackend is the slice of ports.RoutingBackend a graph build needs.
type graphBackend interface {
	Connect(ctx context.Context, dbOptions string) error
	PreBuild(ctx context.Context) error
	Build(ctx context.Context) error
	State(ctx context.Context) (domain.ServerStatus, error)
}

// GraphBuildActivities wraps the backend services run by GraphBuildWorkflow.
type GraphBuildActivities struct {
	Backend graphBackend
}

// NewGraphBuildActivities binds the activities to a routing backend.
func NewGraphBuildActivities(backend graphBackend) *GraphBuildActivities {
	return &GraphBuildActivities{Backend: backend}
}

// ConnectBackend points the backend at a graph database.
func (a *GraphBuildActivities) ConnectBackend(ctx context.Context, dbOptions string) error {
	if err := a.Backend.Connect(ctx, dbOptions); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// PreBuildGraph loads the road and public transport data.
func (a *GraphBuildActivities) PreBuildGraph(ctx context.Context) error {
	if err := a.Backend.PreBuild(ctx); err != nil {
		return fmt.Errorf("pre_build: %w", err)
	}
	return nil
}

// BuildGraph builds the in-memory multimodal graph.
func (a *GraphBuildActivities) BuildGraph(ctx context.Context) error {
	if err := a.Backend.Build(ctx); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	return nil
}

// BackendState reads back the state after a build.
func (a *GraphBuildActivities) BackendState(ctx context.Context) (domain.ServerStatus, error) {
	status, err := a.Backend.State(ctx)
	if err != nil {
		return status, fmt.Errorf("state: %w", err)
	}
	slog.InfoContext(ctx, "backend state after build", "state", status.State.String())
	return status, nil
}
