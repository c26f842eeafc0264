package result

import "time"

const (
	StatusPassed = "passed"
	StatusFailed = "failed"
	StatusError  = "error"
)

// TurnResult is the outcome of one agent invocation.
type TurnResult struct {
	TurnIndex    int      `json:"turn_index"`
	InvocationID string   `json:"invocation_id"`
	Command      []string `json:"command"`
	Timeout      bool     `json:"timeout"`
	ExitCode     *int     `json:"exit_code"`
	DurationS    float64  `json:"duration_s"`
	Stdout       string   `json:"stdout"`
	Stderr       string   `json:"stderr"`
	Response     string   `json:"response"`
}

// Succeeded reports whether the turn neither timed out nor exited non-zero.
func (t *TurnResult) Succeeded() bool {
	return !t.Timeout && t.ExitCode != nil && *t.ExitCode == 0
}

type ScenarioResult struct {
	ID            string       `json:"id"`
	Description   string       `json:"description"`
	Tags          []string     `json:"tags"`
	Weight        float64      `json:"weight"`
	Status        string       `json:"status"`
	TurnResults   []TurnResult `json:"turn_results"`
	Passed        bool         `json:"passed"`
	Score         float64      `json:"score"`
	MaxScore      float64      `json:"max_score"`
	CheckFailures []string     `json:"check_failures"`
	DurationS     float64      `json:"duration_s"`
}

type Summary struct {
	Score           float64 `json:"score"`
	MaxScore        float64 `json:"max_score"`
	PassRate        float64 `json:"pass_rate"`
	PassedScenarios int     `json:"passed_scenarios"`
	TotalScenarios  int     `json:"total_scenarios"`
	AvgDurationS    float64 `json:"avg_duration_s"`
}

// ScoreRatio returns score/max_score, or 0 when there is nothing to score.
func (s Summary) ScoreRatio() float64 {
	if s.MaxScore <= 0 {
		return 0
	}
	return s.Score / s.MaxScore
}

type LoopReport struct {
	RunID               string           `json:"run_id"`
	LoopIndex           int              `json:"loop_index"`
	Timestamp           time.Time        `json:"timestamp_utc"`
	ProfileRoot         string           `json:"profile_root"`
	TasksFile           string           `json:"tasks_file"`
	Mode                string           `json:"mode"`
	ProviderOverride    *string          `json:"provider_override"`
	ModelOverride       *string          `json:"model_override"`
	TemperatureOverride *float64         `json:"temperature_override"`
	Simulated           bool             `json:"simulated"`
	Summary             Summary          `json:"summary"`
	Scenarios           []ScenarioResult `json:"scenarios"`
}

// Failed returns the scenarios that did not pass, in report order.
func (r *LoopReport) Failed() []ScenarioResult {
	var out []ScenarioResult
	for _, s := range r.Scenarios {
		if !s.Passed {
			out = append(out, s)
		}
	}
	return out
}

type LoopScore struct {
	LoopIndex int     `json:"loop_index"`
	Score     float64 `json:"score"`
	MaxScore  float64 `json:"max_score"`
	PassRate  float64 `json:"pass_rate"`
}

// RunSummary is the cross-loop record persisted once per run.
type RunSummary struct {
	RunID string      `json:"run_id"`
	Loops []LoopScore `json:"loops"`
}

// Append records a completed loop.
func (s *RunSummary) Append(r *LoopReport) {
	s.Loops = append(s.Loops, LoopScore{
		LoopIndex: r.LoopIndex,
		Score:     r.Summary.Score,
		MaxScore:  r.Summary.MaxScore,
		PassRate:  r.Summary.PassRate,
	})
}

// Latest returns the most recent loop, or false when none ran.
func (s *RunSummary) Latest() (LoopScore, bool) {
	if len(s.Loops) == 0 {
		return LoopScore{}, false
	}
	return s.Loops[len(s.Loops)-1], true
}
