package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/signalnine/agentbench/internal/result"
	"github.com/signalnine/agentbench/internal/scenario"
)

// ArtifactStore persists what a run produces.
type ArtifactStore interface {
	WriteLoopReport(r *result.LoopReport) error
	WriteAnalysis(loop int, text string) error
	WriteSummary(s *result.RunSummary) error
}

// ConfigTuner edits the agent configuration after a loop.
type ConfigTuner interface {
	Apply(results []result.ScenarioResult) ([]string, error)
}

// RunInfo is copied into every loop report.
type RunInfo struct {
	RunID       string
	ProfileRoot string
	TasksFile   string
	Mode        string
	Provider    string
	Model       string
	Temperature *float64
	Simulated   bool
}

// Orchestrator runs the whole scenario set once per loop and sequences the
// post-loop self-analysis and tuning steps.
type Orchestrator struct {
	Runner *Runner
	Store  ArtifactStore
	Info   RunInfo
	Loops  int

	// Tuner is consulted between loops; nil disables tuning.
	Tuner ConfigTuner

	SelfAnalyze        bool
	SelfAnalyzeTimeout time.Duration
	// ConfigPath is snapshotted into the self-analysis prompt.
	ConfigPath string

	Out    io.Writer
	Logger *zap.Logger

	now func() time.Time
}

var (
	passedLabel = color.New(color.FgGreen, color.Bold).SprintFunc()
	failedLabel = color.New(color.FgRed, color.Bold).SprintFunc()
)

// Run executes every loop in order and persists the run summary.
func (o *Orchestrator) Run(ctx context.Context, scenarios []scenario.Scenario) (*result.RunSummary, error) {
	loops := max(o.Loops, 1)
	summary := &result.RunSummary{RunID: o.Info.RunID, Loops: []result.LoopScore{}}
	for loop := 1; loop <= loops; loop++ {
		report, err := o.RunLoop(ctx, loop, scenarios)
		if err != nil {
			return summary, err
		}
		summary.Append(report)
	}
	if err := o.Store.WriteSummary(summary); err != nil {
		return summary, fmt.Errorf("writing run summary: %w", err)
	}
	return summary, nil
}

// RunLoop runs one loop, persists its report, then performs the optional
// self-analysis and tuning steps. Only cancellation and report persistence
// failures are returned as errors.
func (o *Orchestrator) RunLoop(ctx context.Context, loop int, scenarios []scenario.Scenario) (*result.LoopReport, error) {
	logger := o.logger().With(zap.String("run", o.Info.RunID), zap.Int("loop", loop))
	out := o.out()

	results := make([]result.ScenarioResult, 0, len(scenarios))
	for _, sc := range scenarios {
		res, err := o.Runner.RunScenario(ctx, sc)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
		fmt.Fprintf(out, "[loop %d] [%s] %s (%gs)\n", loop, statusLabel(res.Status), res.ID, res.DurationS)
	}

	report := &result.LoopReport{
		RunID:               o.Info.RunID,
		LoopIndex:           loop,
		Timestamp:           o.clock().UTC(),
		ProfileRoot:         o.Info.ProfileRoot,
		TasksFile:           o.Info.TasksFile,
		Mode:                o.Info.Mode,
		ProviderOverride:    optional(o.Info.Provider),
		ModelOverride:       optional(o.Info.Model),
		TemperatureOverride: o.Info.Temperature,
		Simulated:           o.Info.Simulated,
		Summary:             Summarize(results),
		Scenarios:           results,
	}
	if err := o.Store.WriteLoopReport(report); err != nil {
		return nil, fmt.Errorf("writing loop %d report: %w", loop, err)
	}
	logger.Info("loop complete",
		zap.Float64("score", report.Summary.Score),
		zap.Float64("max_score", report.Summary.MaxScore),
		zap.Float64("pass_rate", report.Summary.PassRate))

	if o.SelfAnalyze {
		if err := o.selfAnalyze(ctx, report, logger); err != nil {
			return nil, err
		}
	}

	if o.Tuner != nil && loop < o.Loops {
		changes, err := o.Tuner.Apply(report.Scenarios)
		switch {
		case err != nil:
			logger.Warn("heuristic tuning failed", zap.Error(err))
		case len(changes) > 0:
			logger.Info("applied heuristics", zap.Strings("changes", changes))
			fmt.Fprintf(out, "[loop %d] Applied heuristics: %s\n", loop, strings.Join(changes, ", "))
		default:
			fmt.Fprintf(out, "[loop %d] No heuristic changes applied.\n", loop)
		}
	}
	return report, nil
}

func (o *Orchestrator) selfAnalyze(ctx context.Context, report *result.LoopReport, logger *zap.Logger) error {
	configText := ""
	if o.ConfigPath != "" {
		data, err := os.ReadFile(o.ConfigPath)
		switch {
		case err == nil:
			configText = ConfigSnapshot(string(data))
		case !errors.Is(err, os.ErrNotExist):
			logger.Warn("could not read config for self-analysis", zap.Error(err))
		}
	}

	prompt := AnalysisPrompt(report, configText)
	var text string
	tr, err := o.Runner.Provider.Run(ctx, prompt, o.SelfAnalyzeTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("self-analysis failed", zap.Error(err))
		text = fmt.Sprintf("self-analysis failed: %v", err)
	} else {
		text = strings.TrimSpace(tr.Response)
		if text == "" {
			text = "(sin respuesta)"
		}
		if tr.Timeout {
			logger.Warn("self-analysis timed out", zap.Duration("timeout", o.SelfAnalyzeTimeout))
		}
	}
	if err := o.Store.WriteAnalysis(report.LoopIndex, text+"\n"); err != nil {
		logger.Warn("could not persist self-analysis", zap.Error(err))
		return nil
	}
	fmt.Fprintf(o.out(), "[loop %d] Self-analysis written\n", report.LoopIndex)
	return nil
}

// Summarize aggregates one loop's scenario results.
func Summarize(results []result.ScenarioResult) result.Summary {
	var s result.Summary
	var duration float64
	for _, r := range results {
		s.Score += r.Score
		s.MaxScore += r.MaxScore
		duration += r.DurationS
		if r.Passed {
			s.PassedScenarios++
		}
	}
	s.TotalScenarios = len(results)
	if s.TotalScenarios > 0 {
		s.PassRate = float64(s.PassedScenarios) / float64(s.TotalScenarios) * 100
		s.AvgDurationS = round3(duration / float64(s.TotalScenarios))
	}
	return s
}

func statusLabel(status string) string {
	label := strings.ToUpper(status)
	if status == result.StatusPassed {
		return passedLabel(label)
	}
	return failedLabel(label)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (o *Orchestrator) clock() time.Time {
	if o.now != nil {
		return o.now()
	}
	return time.Now()
}

func (o *Orchestrator) out() io.Writer {
	if o.Out == nil {
		return io.Discard
	}
	return o.Out
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
