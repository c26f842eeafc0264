package runner

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/signalnine/agentbench/internal/agent"
	"github.com/signalnine/agentbench/internal/checks"
	"github.com/signalnine/agentbench/internal/result"
	"github.com/signalnine/agentbench/internal/scenario"
)

// Runner drives the turns of a single scenario against a Provider.
type Runner struct {
	Provider       agent.Provider
	DefaultTimeout time.Duration
	Logger         *zap.Logger
}

// RunScenario executes sc's turns in order, stopping at the first turn that
// times out or exits non-zero, then checks the last recorded response. The
// returned error is non-nil only when ctx is cancelled.
func (r *Runner) RunScenario(ctx context.Context, sc scenario.Scenario) (*result.ScenarioResult, error) {
	logger := r.logger().With(zap.String("scenario", sc.ID))
	res := &result.ScenarioResult{
		ID:            sc.ID,
		Description:   sc.Description,
		Tags:          sc.Tags,
		Weight:        sc.Weight,
		MaxScore:      sc.Weight,
		TurnResults:   []result.TurnResult{},
		CheckFailures: []string{},
	}
	if len(sc.Turns) == 0 {
		res.Status = result.StatusError
		res.CheckFailures = append(res.CheckFailures, "Scenario has no turns.")
		return res, nil
	}

	crashed := false
	var total float64
	for i, turn := range sc.Turns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		timeout := turn.Timeout(r.DefaultTimeout)
		tr, err := r.Provider.Run(ctx, strings.TrimSpace(turn.Prompt), timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("agent invocation failed", zap.Int("turn", i), zap.Error(err))
			res.TurnResults = append(res.TurnResults, result.TurnResult{TurnIndex: i, Stderr: err.Error()})
			res.CheckFailures = append(res.CheckFailures, fmt.Sprintf("turn %d: %v", i, err))
			crashed = true
			break
		}
		tr.TurnIndex = i
		res.TurnResults = append(res.TurnResults, *tr)
		total += tr.DurationS

		logger.Debug("turn complete",
			zap.Int("turn", i),
			zap.String("invocation", tr.InvocationID),
			zap.Bool("timed_out", tr.Timeout),
			zap.Intp("exit_code", tr.ExitCode),
			zap.Float64("duration_s", tr.DurationS))

		if tr.Timeout {
			res.CheckFailures = append(res.CheckFailures, fmt.Sprintf("turn %d: timeout at %ss", i, formatSeconds(timeout)))
			crashed = true
			break
		}
		if !tr.Succeeded() {
			res.CheckFailures = append(res.CheckFailures, fmt.Sprintf("turn %d: non-zero exit code %s", i, formatExitCode(tr.ExitCode)))
			crashed = true
			break
		}
	}

	final := ""
	if n := len(res.TurnResults); n > 0 {
		final = res.TurnResults[n-1].Response
	}
	passedChecks, failures := checks.Evaluate(final, sc.Checks)
	res.CheckFailures = append(res.CheckFailures, failures...)

	res.Passed = !crashed && passedChecks
	res.Status = result.StatusFailed
	if res.Passed {
		res.Status = result.StatusPassed
		res.Score = sc.Weight
	}
	res.DurationS = round3(total)
	return res, nil
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func formatExitCode(code *int) string {
	if code == nil {
		return "none"
	}
	return strconv.Itoa(*code)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
