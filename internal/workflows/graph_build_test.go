package workflows

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/tempusgw/internal/core/domain"
)

type fakeBackend struct {
	calls   []string
	failOn  string
	options string
}

func (f *fakeBackend) step(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return errors.New(name + " refused")
	}
	return nil
}

func (f *fakeBackend) Connect(ctx context.Context, dbOptions string) error {
	f.options = dbOptions
	return f.step("connect")
}

func (f *fakeBackend) PreBuild(ctx context.Context) error { return f.step("pre_build") }
func (f *fakeBackend) Build(ctx context.Context) error    { return f.step("build") }

func (f *fakeBackend) State(ctx context.Context) (domain.ServerStatus, error) {
	if err := f.step("state"); err != nil {
		return domain.ServerStatus{}, err
	}
	return domain.NewServerStatus(domain.StateGraphBuilt, f.options), nil
}

func TestGraphBuildWorkflow(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()

	backend := &fakeBackend{}
	env.RegisterActivity(NewGraphBuildActivities(backend))

	env.ExecuteWorkflow(GraphBuildWorkflow, GraphBuildInput{DBOptions: "dbname=tempus_test_db"})

	if !env.IsWorkflowCompleted() {
		t.Fatal("expected workflow to complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var status domain.ServerStatus
	if err := env.GetWorkflowResult(&status); err != nil {
		t.Fatalf("result: %v", err)
	}
	if status.State != domain.StateGraphBuilt || !status.CanQuery {
		t.Errorf("expected graph built, got %+v", status)
	}
	if got := strings.Join(backend.calls, ","); got != "connect,pre_build,build,state" {
		t.Errorf("unexpected call order %s", got)
	}
}

func TestGraphBuildWorkflow_NoRetryOnFailure(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()

	backend := &fakeBackend{failOn: "build"}
	env.RegisterActivity(NewGraphBuildActivities(backend))

	env.ExecuteWorkflow(GraphBuildWorkflow, GraphBuildInput{DBOptions: "dbname=x"})

	if !env.IsWorkflowCompleted() {
		t.Fatal("expected workflow to complete")
	}
	err := env.GetWorkflowError()
	if err == nil || !strings.Contains(err.Error(), "build refused") {
		t.Fatalf("expected build failure, got %v", err)
	}
	if got := strings.Join(backend.calls, ","); got != "connect,pre_build,build" {
		t.Errorf("expected a single build attempt and no state call, got %s", got)
	}
}
