// Command tempusctl drives a Tempus routing backend from the shell.
//
//	tempusctl [global flags] <state|plugins|options|build|route> [flags]
//
// Global flags can be set from TEMPUS_* environment variables.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/peterbourgon/ff"

	"github.com/samirrijal/tempusgw/internal/adapters/wps"
	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/core/usecases"
	"github.com/samirrijal/tempusgw/internal/pkg/logging"
)

type globals struct {
	wpsURL  string
	timeout time.Duration
	plugin  string
	asJSON  bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "tempusctl:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tempusctl", flag.ContinueOnError)
	var (
		g        globals
		logLevel = fs.String("log-level", "warn", "log level")
	)
	fs.StringVar(&g.wpsURL, "wps-url", "http://localhost/wps", "routing backend WPS endpoint")
	fs.DurationVar(&g.timeout, "timeout", 2*time.Minute, "timeout per backend call")
	fs.StringVar(&g.plugin, "plugin", "sample_road_plugin", "routing plugin")
	fs.BoolVar(&g.asJSON, "json", false, "print JSON instead of tables")
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("TEMPUS")); err != nil {
		return err
	}
	logging.Setup(*logLevel, "text", "tempusctl")

	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("missing command")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := wps.New(g.wpsURL, g.timeout)
	session := usecases.NewSessionService(backend, nil, g.wpsURL, 0)

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "state":
		status, err := session.State(ctx)
		if err != nil {
			return err
		}
		return g.print(out, status, func(tw *tabwriter.Writer) {
			fmt.Fprintf(tw, "state\t%d (%s)\n", status.State, status.StateText)
			fmt.Fprintf(tw, "db_options\t%s\n", status.DBOptions)
			fmt.Fprintf(tw, "can_query\t%t\n", status.CanQuery)
		})

	case "plugins":
		plugins, err := session.Plugins(ctx)
		if err != nil {
			return err
		}
		return g.print(out, plugins, func(tw *tabwriter.Writer) {
			for _, p := range plugins {
				fmt.Fprintln(tw, p)
			}
		})

	case "options":
		opts, err := session.PluginOptions(ctx, g.plugin)
		if err != nil {
			return err
		}
		return g.print(out, opts, func(tw *tabwriter.Writer) {
			for _, o := range opts {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Name, o.Value, o.Description)
			}
		})

	case "build":
		bfs := flag.NewFlagSet("build", flag.ContinueOnError)
		dbOptions := bfs.String("db-options", "dbname=tempus", "libpq connection string for the backend")
		if err := ff.Parse(bfs, rest, ff.WithEnvVarPrefix("TEMPUS_BUILD")); err != nil {
			return err
		}
		status, err := usecases.NewBuildService(backend, session, nil, nil).Build(ctx, *dbOptions)
		if err != nil {
			return err
		}
		return g.print(out, status, func(tw *tabwriter.Writer) {
			fmt.Fprintf(tw, "state\t%s\n", status.StateText)
		})

	case "route":
		q, err := parseRouteFlags(rest)
		if err != nil {
			return err
		}
		q.Plugin = g.plugin
		it, err := usecases.NewItineraryService(backend, session, nil, nil, g.plugin).Compute(ctx, q)
		if err != nil {
			return err
		}
		return g.print(out, it, func(tw *tabwriter.Writer) {
			printRoadmap(tw, it.Result)
			fmt.Fprintf(tw, "\nlength\t%.1f\n", it.Length)
		})

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (g globals) print(out io.Writer, v any, table func(tw *tabwriter.Writer)) error {
	if g.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

// printRoadmap writes one line per roadmap row; multi-cost rows continue on
// indented lines.
func printRoadmap(tw *tabwriter.Writer, r domain.RoutingResult) {
	for i, row := range r.Roadmap {
		costs := strings.Split(row.Costs, "\n")
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, row.Description, costs[0])
		for _, c := range costs[1:] {
			fmt.Fprintf(tw, "\t\t%s\n", c)
		}
	}
	for _, m := range r.Metrics {
		fmt.Fprintf(tw, "%s\t%s\n", m.Name, m.Value)
	}
}
