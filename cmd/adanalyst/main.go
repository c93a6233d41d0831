package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"adanalyst/internal/audit"
	"adanalyst/internal/config"
	"adanalyst/internal/creative"
	"adanalyst/internal/evaluator"
	"adanalyst/internal/insight"
	"adanalyst/internal/llm"
	"adanalyst/internal/logging"
	"adanalyst/internal/metrics"
	"adanalyst/internal/notify"
	"adanalyst/internal/pipeline"
	"adanalyst/internal/planner"
	"adanalyst/internal/prompts"
	"adanalyst/internal/workspace"
)

const (
	appName      = "adanalyst"
	version      = "1.1"
	defaultQuery = "Analyze ROAS drop"
)

// Process exit codes.
const (
	exitOK    = 0
	exitData  = 1
	exitSetup = 2
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func setupError(err error) error { return &exitError{code: exitSetup, err: err} }

type options struct {
	workspace string
	config    string
	verbose   bool
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and maps the outcome to a process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(stderr, err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitSetup
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   appName + " [query]",
		Short: "Diagnose ad performance and rewrite weak creatives with an LLM",
		Long: `Loads ad performance data, asks an LLM to explain the latest ROAS change,
validates that explanation (retrying once when confidence is low) and proposes
new copy for low-CTR creatives. Artifacts are written to reports/.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := defaultQuery
			if len(args) == 1 {
				query = args[0]
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, query, stdout)
		},
	}
	cmd.Flags().StringVar(&opts.workspace, "workspace", ".", "Path to workspace root")
	cmd.Flags().StringVar(&opts.config, "config", "", "Path to config file (default <workspace>/config/config.yaml)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output")
	return cmd
}

func run(ctx context.Context, opts *options, query string, stdout io.Writer) error {
	ws, err := workspace.Resolve(opts.workspace)
	if err != nil {
		return setupError(err)
	}
	configPath := ws.ConfigPath
	if opts.config != "" {
		if configPath, err = ws.ResolvePath(opts.config); err != nil {
			return setupError(err)
		}
	}
	if err := config.LoadDotEnv(ws.EnvPath); err != nil {
		return setupError(err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return setupError(err)
	}
	if err := ws.EnsureDirs(); err != nil {
		return setupError(err)
	}

	level := zapcore.InfoLevel
	if opts.verbose {
		level = zapcore.DebugLevel
	}
	logs, err := logging.Setup(logging.Options{LogPath: ws.LogPath, Console: stdout, Level: level})
	if err != nil {
		return setupError(err)
	}
	defer func() {
		_ = logs.Close()
	}()

	log := logs.Agent("Orchestrator")
	log.Info(fmt.Sprintf("Starting Ad Analyst v%s...", version))
	log.Info(fmt.Sprintf("Random seed set to %d", cfg.System.RandomSeed))

	runner, err := compose(ctx, ws, cfg, logs)
	if err != nil {
		return setupError(err)
	}

	// Data failures and report write failures both end the run with exitData.
	if _, err := runner.Run(ctx, query); err != nil {
		return &exitError{code: exitData, err: err}
	}
	return nil
}

// compose wires every pipeline collaborator from the configuration.
func compose(ctx context.Context, ws *workspace.Workspace, cfg *config.Config, logs *logging.Logging) (*pipeline.Runner, error) {
	gen, err := llm.New(ctx, llm.Settings{
		Provider:    cfg.LLM.Provider,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		Seed:        cfg.System.RandomSeed,
		Timeout:     cfg.TimeoutDuration(),
	}, logs.Agent("LLMClient"))
	if err != nil {
		return nil, err
	}

	dataPath, err := ws.ResolvePath(cfg.Data.Path)
	if err != nil {
		return nil, err
	}
	store := prompts.NewStore(ws.PromptsDir)

	deps := pipeline.Deps{
		Planner: planner.New(store, gen, logs.Agent("PlannerAgent")),
		Analyzer: metrics.NewAnalyzer(metrics.Options{
			Path:           dataPath,
			UseSampleData:  cfg.Data.UseSampleData,
			SampleSize:     cfg.Data.SampleSize,
			LowCTR:         cfg.Thresholds.LowCTR,
			NormalizeNames: cfg.Data.NormalizeCampaignNames,
			Generator:      gen,
			Logger:         logs.Agent("DataAgent"),
		}),
		Insight:   insight.New(store, gen, logs.Agent("InsightAgent")),
		Evaluator: evaluator.New(store, gen, logs.Agent("EvaluatorAgent")),
		Creative:  creative.New(store, gen, logs.Agent("CreativeGenerator")),
		Auditor:   audit.NewLogger(ws.AuditDBPath),
	}
	if cfg.System.Notify {
		deps.Notifier = notify.New(true)
	}
	logs.Agent("Orchestrator").Debug("Pipeline composed",
		zap.String("workspace", ws.Root),
		zap.String("data", dataPath),
		zap.String("prompts", ws.PromptsDir),
		zap.String("reports", ws.ReportsDir),
	)
	return pipeline.New(deps, ws.ReportsDir, logs.Agent("Orchestrator"))
}
