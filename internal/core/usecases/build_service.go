package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/core/ports"
	"github.com/samirrijal/tempusgw/internal/pkg/metrics"
)

// BuildService (re)builds the backend routing graph.
type BuildService struct {
	backend   ports.RoutingBackend
	session   *SessionService
	starter   ports.GraphBuildStarter
	publisher ports.EventPublisher
}

// NewBuildService creates a new BuildService. starter and publisher may be
// nil; without a starter builds run in-process.
func NewBuildService(
	backend ports.RoutingBackend,
	session *SessionService,
	starter ports.GraphBuildStarter,
	publisher ports.EventPublisher,
) *BuildService {
	return &BuildService{backend: backend, session: session, starter: starter, publisher: publisher}
}

// Build connects the backend to the database described by dbOptions, then
// pre-builds and builds the graph. It returns the state reached.
func (s *BuildService) Build(ctx context.Context, dbOptions string) (domain.ServerStatus, error) {
	var (
		status domain.ServerStatus
		err    error
	)
	if s.starter != nil {
		status, err = s.starter.RunGraphBuild(ctx, dbOptions)
	} else {
		status, err = RunGraphBuild(ctx, s.backend, dbOptions)
	}
	if err != nil {
		metrics.GraphBuilds.WithLabelValues(metrics.OutcomeError).Inc()
		return status, err
	}
	metrics.GraphBuilds.WithLabelValues(metrics.OutcomeOK).Inc()
	metrics.BackendState.Set(float64(status.State))

	if s.session != nil {
		if err := s.session.InvalidateConstants(ctx); err != nil {
			slog.WarnContext(ctx, "constants cache invalidation failed", "error", err)
		}
	}
	if s.publisher != nil {
		event := &domain.GraphBuiltEvent{State: status.State, DBOptions: dbOptions, BuiltAt: time.Now().UTC()}
		if err := s.publisher.PublishGraphBuilt(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish graph built failed", "error", err)
		}
	}

	slog.InfoContext(ctx, "graph built", "state", status.StateText)
	return status, nil
}

// RunGraphBuild performs connect, pre_build and build in order, stopping at
// the first failure, and reads the resulting state.
func RunGraphBuild(ctx context.Context, backend ports.RoutingBackend, dbOptions string) (domain.ServerStatus, error) {
	if err := backend.Connect(ctx, dbOptions); err != nil {
		return domain.ServerStatus{}, fmt.Errorf("connect: %w", err)
	}
	if err := backend.PreBuild(ctx); err != nil {
		return domain.ServerStatus{}, fmt.Errorf("pre_build: %w", err)
	}
	if err := backend.Build(ctx); err != nil {
		return domain.ServerStatus{}, fmt.Errorf("build: %w", err)
	}
	status, err := backend.State(ctx)
	if err != nil {
		return domain.ServerStatus{}, fmt.Errorf("state: %w", err)
	}
	return status, nil
}
