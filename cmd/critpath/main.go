package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joshharrison/critpath/internal/batch"
	"github.com/joshharrison/critpath/internal/config"
	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/loader"
	"github.com/joshharrison/critpath/internal/reporter"
	"github.com/joshharrison/critpath/internal/server"
	"github.com/joshharrison/critpath/internal/ui"
)

var (
	flagConfig      string
	flagJSON        bool
	flagNoColor     bool
	flagPrecision   int
	flagSkip        []string
	flagMaxParallel int
	flagAddr        string
)

// cfg is resolved once per invocation in the root PersistentPreRunE.
var cfg *config.Config

var logger = log.New(os.Stderr, "critpath: ", 0)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "critpath",
		Short: "Compute the critical path of a project task list",
		Long: `critpath reads tasks with durations and predecessors from a CSV or JSON
file, computes earliest and latest start/finish times and slack for every
task, and reports the minimum project duration and every critical path.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ./critpath.toml if present)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().IntVar(&flagPrecision, "precision", config.DefaultPrecision, "Decimals shown for times")

	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(pathCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}

func resolveConfig(cmd *cobra.Command) error {
	var err error

	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return err
	}

	// Flags win over the config file when set explicitly.
	if cmd.Flags().Changed("precision") {
		cfg.Output.Precision = flagPrecision
	}
	if flagNoColor {
		cfg.Output.Color = false
	}
	if flagJSON {
		cfg.Output.Format = "json"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	ui.SetColor(cfg.Output.Color)
	return nil
}

func solverConfig() cpm.Config {
	return cpm.Config{
		Tolerance: cfg.Solver.Tolerance,
		MaxPaths:  cfg.Solver.MaxPaths,
	}
}

// solveFile is shared logic for every command reading a task file.
func solveFile(path string) (*graph.TaskGraph, *cpm.Schedule, error) {
	records, err := loader.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}

	g, err := graph.Build(records)
	if err != nil {
		return nil, nil, fmt.Errorf("build task graph: %w", err)
	}

	if len(flagSkip) > 0 {
		g, err = skipTasks(g, flagSkip)
		if err != nil {
			return nil, nil, err
		}
	}

	sched, err := cpm.SolveWith(g, solverConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("CPM analysis: %w", err)
	}

	return g, sched, nil
}

// skipTasks drops the named tasks and every dependency on them.
func skipTasks(g *graph.TaskGraph, ids []string) (*graph.TaskGraph, error) {
	skip := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, ok := g.Task(id); !ok {
			return nil, fmt.Errorf("--skip: unknown task %q (known: %s)", id, strings.Join(g.IDs(), ", "))
		}
		skip[id] = true
	}

	return g.Filter(func(t graph.Task) bool {
		return !skip[t.ID]
	})
}

func solveCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:   "solve FILE...",
		Short: "Print the full schedule of one or more task files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := cfg.Output.Format
			if cmd.Flags().Changed("format") && !flagJSON {
				format = flagFormat
			}

			maxParallel := cfg.Batch.MaxParallel
			if cmd.Flags().Changed("max-parallel") {
				maxParallel = flagMaxParallel
			}

			jobs := make([]batch.Job, len(args))
			for i, arg := range args {
				jobs[i] = batch.Job{Name: arg}
			}

			results := batch.Run(cmd.Context(), jobs, maxParallel,
				func(_ context.Context, job batch.Job) (*graph.TaskGraph, *cpm.Schedule, error) {
					return solveFile(job.Name)
				})

			out := cmd.OutOrStdout()

			if format == "json" && len(results) > 1 {
				var docs []*reporter.Document
				for _, res := range results {
					if res.Err != nil {
						logger.Printf("%s: %v", res.Job.Name, res.Err)
						continue
					}

					doc := reporter.New(res.Graph, res.Schedule, cfg.Output.Precision).Document()
					doc.Source = res.Job.Name
					docs = append(docs, doc)
				}

				if err := reporter.PrintDocuments(out, docs); err != nil {
					return err
				}

				return batch.FirstError(results)
			}

			for i, res := range results {
				if res.Err != nil {
					logger.Printf("%s: %v", res.Job.Name, res.Err)
					continue
				}

				if len(results) > 1 {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "📄 %s\n", ui.Bold(res.Job.Name))
				}

				if err := render(out, format, reporter.New(res.Graph, res.Schedule, cfg.Output.Precision)); err != nil {
					return err
				}
			}

			return batch.FirstError(results)
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", config.DefaultFormat, "Output format (table, json, path, ascii, dot)")
	cmd.Flags().StringSliceVar(&flagSkip, "skip", nil, "Task ids to leave out of the analysis")
	cmd.Flags().IntVar(&flagMaxParallel, "max-parallel", config.DefaultMaxParallel, "Max files solved concurrently")

	return cmd
}

func pathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path FILE",
		Short: "Print only the critical path(s) and project duration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, sched, err := solveFile(args[0])
			if err != nil {
				return err
			}

			rpt := reporter.New(g, sched, cfg.Output.Precision)
			if cfg.Output.Format == "json" {
				return rpt.PrintJSON(cmd.OutOrStdout())
			}

			return render(cmd.OutOrStdout(), "path", rpt)
		},
	}

	cmd.Flags().StringSliceVar(&flagSkip, "skip", nil, "Task ids to leave out of the analysis")

	return cmd
}

func vizCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:   "viz FILE",
		Short: "Print the task graph as ASCII waves or Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagFormat != "ascii" && flagFormat != "dot" {
				return fmt.Errorf("unsupported viz format %q (use ascii or dot)", flagFormat)
			}

			g, sched, err := solveFile(args[0])
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), flagFormat, reporter.New(g, sched, cfg.Output.Precision))
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")
	cmd.Flags().StringSliceVar(&flagSkip, "skip", nil, "Task ids to leave out of the analysis")

	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := cfg.Addr()
			if flagAddr != "" {
				addr = flagAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(addr, solverConfig(), logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, localhost:7433)")

	return cmd
}

func render(w io.Writer, format string, rpt *reporter.Reporter) error {
	switch format {
	case "table":
		rpt.PrintTable(w)
	case "json":
		return rpt.PrintJSON(w)
	case "path":
		fmt.Fprintf(w, "Minimum project duration: %s\n", ui.Bold(fmt.Sprintf("%.*f", rpt.Precision, rpt.Schedule.ProjectDuration)))
		rpt.PrintPath(w)
	case "ascii":
		rpt.PrintWaves(w)
	case "dot":
		rpt.PrintDOT(w)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}

	return nil
}
