package main

import (
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/tempusgw/internal/adapters/wps"
	"github.com/samirrijal/tempusgw/internal/pkg/config"
	"github.com/samirrijal/tempusgw/internal/pkg/logging"
	"github.com/samirrijal/tempusgw/internal/workflows"
)

func main() {
	cfg, err := config.Load("tempusgw-builder")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	// One build at a time: the backend holds a single graph.
	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     1,
		MaxConcurrentWorkflowTaskExecutionSize: 2,
	})

	w.RegisterWorkflow(workflows.GraphBuildWorkflow)
	w.RegisterActivity(workflows.NewGraphBuildActivities(wps.New(cfg.WPS.URL, cfg.WPS.TimeoutDuration())))

	slog.Info("graph build worker started", "task_queue", cfg.Temporal.TaskQueue, "wps", cfg.WPS.URL)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
