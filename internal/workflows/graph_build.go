package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/tempusgw/internal/core/domain"
)

// GraphBuildInput is the input of GraphBuildWorkflow.
type GraphBuildInput struct {
	DBOptions string
}

// GraphBuildWorkflow runs connect, pre_build, build and state on the backend,
// stopping at the first failure. Activities are never retried.
func GraphBuildWorkflow(ctx workflow.Context, input GraphBuildInput) (domain.ServerStatus, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting graph build", "dbOptions", input.DBOptions)

	quick := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	// pre_build and build can take a long time on large networks
	slow := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	status := domain.NewServerStatus(domain.StateUnknown, input.DBOptions)

	if err := workflow.ExecuteActivity(quick, "ConnectBackend", input.DBOptions).Get(ctx, nil); err != nil {
		return status, err
	}
	if err := workflow.ExecuteActivity(slow, "PreBuildGraph").Get(ctx, nil); err != nil {
		return status, err
	}
	if err := workflow.ExecuteActivity(slow, "BuildGraph").Get(ctx, nil); err != nil {
		return status, err
	}
	if err := workflow.ExecuteActivity(quick, "BackendState").Get(ctx, &status); err != nil {
		return status, err
	}

	logger.Info("Graph build finished", "state", status.StateText)
	return status, nil
}
