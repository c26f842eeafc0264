package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/agentbench/internal/gate"
	"github.com/signalnine/agentbench/internal/result"
)

var (
	flagMinPassRate   float64
	flagMinScoreRatio float64
)

var errGateFailed = errors.New("quality gate failed")

func newGateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gate [summary.json]",
		Short: "Fail when the latest loop of a run is below the quality thresholds",
		Long:  "Exit status is 0 when the gate passes, 1 when a threshold is missed and 2 when the summary cannot be read or has no loops.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path, err := artifactPath(cmd, args)
			if err != nil {
				return &exitError{code: 2, err: err}
			}
			summary, err := result.ReadSummary(path)
			if err != nil {
				fmt.Fprintf(out, "[GATE] summary not readable: %s\n", path)
				return &exitError{code: 2, err: err}
			}
			v, err := gate.Evaluate(summary, gate.Thresholds{
				MinPassRate:   flagMinPassRate,
				MinScoreRatio: flagMinScoreRatio,
			})
			if err != nil {
				fmt.Fprintln(out, "[GATE] summary has no loops")
				return &exitError{code: 2, err: err}
			}

			fmt.Fprintf(out, "[GATE] latest loop=%d score=%.2f/%.2f ratio=%.3f pass_rate=%.2f%%\n",
				v.Loop.LoopIndex, v.Loop.Score, v.Loop.MaxScore, v.ScoreRatio, v.Loop.PassRate)
			if !v.Passed {
				fmt.Fprintf(out, "[GATE] %s\n", failLabel("FAILED"))
				for _, r := range v.Reasons {
					fmt.Fprintf(out, "- %s\n", r)
				}
				return &exitError{code: 1, err: errGateFailed}
			}
			fmt.Fprintf(out, "[GATE] %s\n", okLabel("PASSED"))
			return nil
		},
	}
	cmd.Flags().Float64Var(&flagMinPassRate, "min-pass-rate", gate.DefaultThresholds.MinPassRate, "minimum pass rate percentage")
	cmd.Flags().Float64Var(&flagMinScoreRatio, "min-score-ratio", gate.DefaultThresholds.MinScoreRatio, "minimum score/max_score ratio")
	return cmd
}
