// Package gate decides whether a benchmark run is good enough to ship.
package gate

import (
	"errors"
	"fmt"

	"github.com/signalnine/agentbench/internal/result"
)

var ErrNoLoops = errors.New("summary has no loops")

// DefaultThresholds match the values CI uses when no flags are given.
var DefaultThresholds = Thresholds{
	MinPassRate:   70.0,
	MinScoreRatio: 0.70,
}

type Thresholds struct {
	MinPassRate   float64 // percent, 0-100
	MinScoreRatio float64 // 0.0-1.0
}

// Verdict is the gate outcome for the latest loop of a run.
type Verdict struct {
	RunID      string
	Loop       result.LoopScore
	ScoreRatio float64
	Passed     bool
	Reasons    []string
}

// Evaluate checks the most recent loop of s against t.
func Evaluate(s *result.RunSummary, t Thresholds) (*Verdict, error) {
	latest, ok := s.Latest()
	if !ok {
		return nil, ErrNoLoops
	}
	v := &Verdict{
		RunID:      s.RunID,
		Loop:       latest,
		ScoreRatio: result.Summary{Score: latest.Score, MaxScore: latest.MaxScore}.ScoreRatio(),
	}
	if latest.PassRate < t.MinPassRate {
		v.Reasons = append(v.Reasons, fmt.Sprintf("pass_rate %.2f%% < min_pass_rate %.2f%%", latest.PassRate, t.MinPassRate))
	}
	if v.ScoreRatio < t.MinScoreRatio {
		v.Reasons = append(v.Reasons, fmt.Sprintf("score_ratio %.3f < min_score_ratio %.3f", v.ScoreRatio, t.MinScoreRatio))
	}
	v.Passed = len(v.Reasons) == 0
	return v, nil
}
