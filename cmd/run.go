package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalnine/agentbench/internal/agent"
	"github.com/signalnine/agentbench/internal/config"
	"github.com/signalnine/agentbench/internal/profile"
	"github.com/signalnine/agentbench/internal/report"
	"github.com/signalnine/agentbench/internal/result"
	"github.com/signalnine/agentbench/internal/runner"
	"github.com/signalnine/agentbench/internal/scenario"
	"github.com/signalnine/agentbench/internal/tuner"
)

var (
	flagExe                string
	flagTasks              string
	flagProfileRoot        string
	flagSourceProfile      string
	flagTimeout            int
	flagProvider           string
	flagModel              string
	flagTemperature        float64
	flagLoops              int
	flagApplyHeuristics    bool
	flagSelfAnalyze        bool
	flagSelfAnalyzeTimeout int
	flagSimulate           bool
	flagMode               string
	flagScenario           string
	flagTags               []string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scenario suite for one or more loops",
		RunE:  runBenchmark,
	}
	f := cmd.Flags()
	f.StringVar(&flagExe, "exe", "", "agent executable, optionally followed by leading arguments")
	f.StringVar(&flagTasks, "tasks", "", "scenario file (JSON or YAML)")
	f.StringVar(&flagProfileRoot, "profile-root", "", "isolated agent profile used for the run")
	f.StringVar(&flagSourceProfile, "source-profile", "", "profile that seeds config.toml")
	f.IntVar(&flagTimeout, "timeout", 0, "default per-turn timeout in seconds")
	f.StringVar(&flagProvider, "provider", "", "provider override passed to the agent")
	f.StringVar(&flagModel, "model", "", "model override passed to the agent")
	f.Float64Var(&flagTemperature, "temperature", 0, "temperature override passed to the agent")
	f.IntVar(&flagLoops, "loops", 0, "number of benchmark loops")
	f.BoolVar(&flagApplyHeuristics, "apply-heuristics", false, "tune config.toml between loops")
	f.BoolVar(&flagSelfAnalyze, "self-analyze", false, "ask the agent to review each loop")
	f.IntVar(&flagSelfAnalyzeTimeout, "self-analyze-timeout", 0, "self-analysis timeout in seconds")
	f.BoolVar(&flagSimulate, "simulate", false, "answer from canned responses instead of the agent")
	f.StringVar(&flagMode, "mode", "", "agent mode: process, simulate or container")
	f.StringVar(&flagScenario, "scenario", "", "run only the scenario with this id")
	f.StringSliceVar(&flagTags, "tag", nil, "run only scenarios carrying one of these tags")
	return cmd
}

// applyRunFlags overrides cfg with the run flags the user set explicitly.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("exe") {
		cfg.Exe = flagExe
	}
	if f.Changed("tasks") {
		cfg.Tasks = flagTasks
	}
	if f.Changed("profile-root") {
		cfg.ProfileRoot = config.ExpandHome(flagProfileRoot)
	}
	if f.Changed("source-profile") {
		cfg.SourceProfile = config.ExpandHome(flagSourceProfile)
	}
	if f.Changed("timeout") {
		cfg.TimeoutSecs = flagTimeout
	}
	if f.Changed("provider") {
		cfg.Provider = flagProvider
	}
	if f.Changed("model") {
		cfg.Model = flagModel
	}
	if f.Changed("temperature") {
		t := flagTemperature
		cfg.Temperature = &t
	}
	if f.Changed("loops") {
		cfg.Loops = flagLoops
	}
	if f.Changed("apply-heuristics") {
		cfg.ApplyHeuristics = flagApplyHeuristics
	}
	if f.Changed("self-analyze") {
		cfg.SelfAnalyze = flagSelfAnalyze
	}
	if f.Changed("self-analyze-timeout") {
		cfg.SelfAnalyzeTimeoutSecs = flagSelfAnalyzeTimeout
	}
	if f.Changed("mode") {
		cfg.Mode = flagMode
	}
	if flagSimulate {
		cfg.Mode = config.ModeSimulate
	}
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	tasksPath, err := filepath.Abs(cfg.Tasks)
	if err != nil {
		return fmt.Errorf("resolving tasks path: %w", err)
	}
	scenarios, err := scenario.Load(tasksPath)
	if err != nil {
		return err
	}
	scenarios = scenario.Filter(scenarios, flagScenario, flagTags)

	profileRoot, err := filepath.Abs(cfg.ProfileRoot)
	if err != nil {
		return fmt.Errorf("resolving profile root: %w", err)
	}
	cfg.ProfileRoot = profileRoot
	if err := profile.Ensure(profileRoot, cfg.SourceProfile); err != nil {
		return err
	}
	unlock, err := profile.Lock(profileRoot)
	if err != nil {
		return err
	}
	defer unlock()

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}

	runID := result.NewRunID(time.Now())
	inner, err := result.OpenStore(profileRoot, runID, logger)
	if err != nil {
		return err
	}
	store := &report.Store{Store: inner}

	out := cmd.OutOrStdout()
	orch := &runner.Orchestrator{
		Runner: &runner.Runner{
			Provider:       provider,
			DefaultTimeout: cfg.Timeout(),
			Logger:         logger,
		},
		Store: store,
		Info: runner.RunInfo{
			RunID:       runID,
			ProfileRoot: profileRoot,
			TasksFile:   tasksPath,
			Mode:        cfg.Mode,
			Provider:    cfg.Provider,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Simulated:   cfg.Mode == config.ModeSimulate,
		},
		Loops:              cfg.Loops,
		SelfAnalyze:        cfg.SelfAnalyze,
		SelfAnalyzeTimeout: cfg.SelfAnalyzeTimeout(),
		ConfigPath:         profile.ConfigPath(profileRoot),
		Out:                out,
		Logger:             logger,
	}
	if cfg.ApplyHeuristics {
		orch.Tuner = tuner.New(profile.ConfigPath(profileRoot))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting run",
		zap.String("run", runID),
		zap.String("mode", cfg.Mode),
		zap.Int("scenarios", len(scenarios)),
		zap.Int("loops", cfg.Loops))
	fmt.Fprintf(out, "Run %s: %d scenarios, %d loop(s) %s\n", runID, len(scenarios), cfg.Loops, dimText("("+inner.Dir+")"))

	summary, err := orch.Run(ctx, scenarios)
	if err != nil {
		return err
	}
	if latest, ok := summary.Latest(); ok {
		fmt.Fprintf(out, "Final score: %.2f/%.2f (pass rate %.2f%%)\n", latest.Score, latest.MaxScore, latest.PassRate)
	}
	fmt.Fprintf(out, "Loop summary: %s\n", inner.SummaryPath())
	return nil
}

// newProvider selects how turns reach the agent for the whole run.
func newProvider(cfg *config.Config) (agent.Provider, error) {
	inv := agent.Invocation{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Env:         cfg.AgentEnv(os.Environ()),
	}
	switch cfg.Mode {
	case config.ModeSimulate:
		inv.Exe = []string{cfg.Exe}
		return agent.NewSimulated(inv), nil
	case config.ModeContainer:
		argv, err := shlex.Split(cfg.Exe)
		if err != nil {
			return nil, fmt.Errorf("parsing executable %q: %w", cfg.Exe, err)
		}
		inv.Exe = argv
		// Only the configured variables are passed into the container.
		inv.Env = cfg.AgentEnv(nil)
		c := agent.NewContainer(inv, cfg.Container.Image, cfg.ProfileRoot, logger)
		c.CPULimit = cfg.Container.CPUs
		c.MemoryLimit = cfg.Container.MemoryMB * 1024 * 1024
		return c, nil
	default:
		argv, err := agent.ResolveExecutable(cfg.Exe)
		if err != nil {
			return nil, err
		}
		inv.Exe = argv
		return agent.NewProcess(inv, logger), nil
	}
}
