package workflows

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/core/ports"
)

var _ ports.GraphBuildStarter = (*Starter)(nil)

// Starter runs graph builds through Temporal and waits for their outcome.
type Starter struct {
	client    client.Client
	taskQueue string
}

func NewStarter(c client.Client, taskQueue string) *Starter {
	return &Starter{client: c, taskQueue: taskQueue}
}

// RunGraphBuild starts GraphBuildWorkflow and blocks until it completes.
func (s *Starter) RunGraphBuild(ctx context.Context, dbOptions string) (domain.ServerStatus, error) {
	opts := client.StartWorkflowOptions{
		ID:        "graph-build-" + uuid.NewString(),
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, GraphBuildWorkflow, GraphBuildInput{DBOptions: dbOptions})
	if err != nil {
		return domain.NewServerStatus(domain.StateUnknown, dbOptions), fmt.Errorf("start graph build: %w", err)
	}

	var status domain.ServerStatus
	if err := run.Get(ctx, &status); err != nil {
		return domain.NewServerStatus(domain.StateUnknown, dbOptions), fmt.Errorf("graph build %s: %w", run.GetID(), err)
	}
	return status, nil
}
