package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"osrm-travel-tools/internal/config"
	"osrm-travel-tools/internal/demo"
	"osrm-travel-tools/internal/platform/obs"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scenarioPath string
	outDir       string
	profile      string
	delaySeconds float64
	offline      bool
)

var rootCmd = &cobra.Command{
	Use:   "osrmtools",
	Short: "Travel times and distances from an OSRM routing server",
	Long: `osrmtools computes travel times and distances with an OSRM server.

Run without a subcommand to execute both demos against the built-in
Delhi landmarks scenario:

- a many-to-many matrix (OSRM /table)
- pairwise origin-destination travel times (OSRM /route)

Results are printed and saved as CSV files in the results directory.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(ctx context.Context, r *demo.Runner) error {
			return r.Run(ctx)
		})
	},
}

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Run only the many-to-many matrix demo",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(ctx context.Context, r *demo.Runner) error {
			return r.RunMatrix(ctx)
		})
	},
}

var pairwiseCmd = &cobra.Command{
	Use:   "pairwise",
	Short: "Run only the pairwise origin-destination demo",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(ctx context.Context, r *demo.Runner) error {
			return r.RunPairwise(ctx)
		})
	},
}

// loadConfig reads .env and the environment, then applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("scenario") {
		cfg.ScenarioPath = scenarioPath
	}
	if flags.Changed("out") {
		cfg.ResultsDir = outDir
	}
	if flags.Changed("profile") {
		cfg.Profile = profile
	}
	if flags.Changed("delay") {
		cfg.Delay = time.Duration(delaySeconds * float64(time.Second))
	}
	if flags.Changed("offline") {
		cfg.Offline = offline
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads config, installs the logger and returns a context tagged with
// a fresh run id that is cancelled on SIGINT/SIGTERM.
func setup(cmd *cobra.Command) (context.Context, *config.Config, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := obs.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	obs.SetLogger(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	ctx = obs.WithRunID(ctx, uuid.NewString())

	return ctx, cfg, func() {
		stop()
		_ = logger.Sync()
	}, nil
}

func withRunner(cmd *cobra.Command, fn func(ctx context.Context, r *demo.Runner) error) error {
	ctx, cfg, teardown, err := setup(cmd)
	if err != nil {
		return err
	}
	defer teardown()

	scenario, err := config.LoadScenario(cfg.ScenarioPath)
	if err != nil {
		return err
	}

	provider, cleanup, err := buildProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	obs.L().Debug("starting demo",
		zap.String("run_id", obs.RunID(ctx)),
		zap.String("osrm", cfg.OSRMBaseURL),
		zap.String("profile", cfg.Profile),
		zap.String("cache", cfg.CacheDriver),
		zap.Bool("offline", cfg.Offline),
	)

	r := &demo.Runner{
		Out:      cmd.OutOrStdout(),
		Provider: provider,
		Scenario: scenario,
		OutDir:   cfg.ResultsDir,
		Profile:  cfg.Profile,
		Delay:    cfg.Delay,
	}
	return fn(ctx, r)
}

// Execute runs the root command and exits non-zero on any failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&scenarioPath, "scenario", "", "scenario YAML file (default: built-in Delhi landmarks)")
	pf.StringVarP(&outDir, "out", "o", "results", "directory for CSV results")
	pf.StringVarP(&profile, "profile", "p", "", "OSRM routing profile (default: scenario profile, then driving)")
	pf.Float64Var(&delaySeconds, "delay", 1.0, "seconds to wait between pairwise route requests")
	pf.BoolVar(&offline, "offline", false, "estimate travel times locally instead of calling OSRM")

	rootCmd.AddCommand(matrixCmd, pairwiseCmd, serveCmd)
}
