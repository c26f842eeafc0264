package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/signalnine/agentbench/internal/result"
)

// Formats accepted by Generate.
const (
	FormatMarkdown = "markdown"
	FormatTable    = "table"
	FormatJSON     = "json"
)

// Generate renders a persisted loop report or run summary found at path.
func Generate(path, format string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var probe struct {
		Loops     json.RawMessage `json:"loops"`
		Scenarios json.RawMessage `json:"scenarios"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	switch {
	case probe.Scenarios != nil:
		var r result.LoopReport
		if err := json.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("parsing loop report: %w", err)
		}
		return writeLoop(&r, format, w)
	case probe.Loops != nil:
		var s result.RunSummary
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("parsing summary: %w", err)
		}
		return writeSummary(&s, format, w)
	default:
		return fmt.Errorf("%s is neither a loop report nor a run summary", path)
	}
}

func writeLoop(r *result.LoopReport, format string, w io.Writer) error {
	switch format {
	case FormatMarkdown:
		return WriteMarkdown(r, w)
	case FormatJSON:
		return writeJSON(r, w)
	case FormatTable:
		return writeLoopTable(r, w)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeSummary(s *result.RunSummary, format string, w io.Writer) error {
	switch format {
	case FormatMarkdown:
		return writeSummaryMarkdown(s, w)
	case FormatJSON:
		return writeJSON(s, w)
	case FormatTable:
		return writeSummaryTable(s, w)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// WriteMarkdown renders the human-readable companion of a loop report.
func WriteMarkdown(r *result.LoopReport, w io.Writer) error {
	lines := []string{
		"# Agent Benchmark Report",
		"",
		fmt.Sprintf("- Run ID: `%s`", r.RunID),
		fmt.Sprintf("- Timestamp: `%s`", r.Timestamp.UTC().Format(time.RFC3339)),
		fmt.Sprintf("- Profile root: `%s`", r.ProfileRoot),
		fmt.Sprintf("- Tasks file: `%s`", r.TasksFile),
		fmt.Sprintf("- Loop index: `%d`", r.LoopIndex),
		"",
		"## Summary",
		"",
		fmt.Sprintf("- Score: **%.2f / %.2f**", r.Summary.Score, r.Summary.MaxScore),
		fmt.Sprintf("- Pass rate: **%.2f%%**", r.Summary.PassRate),
		fmt.Sprintf("- Scenarios: %d passed / %d total", r.Summary.PassedScenarios, r.Summary.TotalScenarios),
		fmt.Sprintf("- Avg scenario duration: %.2fs", r.Summary.AvgDurationS),
		"",
		"## Scenarios",
		"",
	}
	for _, s := range r.Scenarios {
		lines = append(lines,
			fmt.Sprintf("### %s (%s)", s.ID, s.Status),
			"",
			"- Weight: "+formatFloat(s.Weight),
			"- Duration: "+formatFloat(s.DurationS)+"s",
			"- Description: "+s.Description,
		)
		if len(s.CheckFailures) > 0 {
			lines = append(lines, "- Failures:")
			for _, f := range s.CheckFailures {
				lines = append(lines, "  - "+f)
			}
		}
		lines = append(lines, "")
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func writeLoopTable(r *result.LoopReport, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tSTATUS\tWEIGHT\tSCORE\tDURATION\tFAILURES")
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for _, s := range r.Scenarios {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2fs\t%d\n",
			s.ID, s.Status, s.Weight, s.Score, s.DurationS, len(s.CheckFailures))
	}
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	fmt.Fprintf(tw, "TOTAL\t%d/%d\t%.2f\t%.2f\t%.2fs\t%.2f%%\n",
		r.Summary.PassedScenarios, r.Summary.TotalScenarios,
		r.Summary.MaxScore, r.Summary.Score, r.Summary.AvgDurationS, r.Summary.PassRate)
	return tw.Flush()
}

func writeSummaryTable(s *result.RunSummary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "RUN %s\n", s.RunID)
	fmt.Fprintln(tw, "LOOP\tSCORE\tMAX SCORE\tRATIO\tPASS RATE")
	fmt.Fprintln(tw, strings.Repeat("-", 60))
	for _, l := range s.Loops {
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.3f\t%.2f%%\n",
			l.LoopIndex, l.Score, l.MaxScore, ratio(l), l.PassRate)
	}
	return tw.Flush()
}

func writeSummaryMarkdown(s *result.RunSummary, w io.Writer) error {
	fmt.Fprintf(w, "# Agent Benchmark Summary\n\n- Run ID: `%s`\n\n", s.RunID)
	fmt.Fprintln(w, "| Loop | Score | Max Score | Ratio | Pass Rate |")
	fmt.Fprintln(w, "|---|---|---|---|---|")
	for _, l := range s.Loops {
		fmt.Fprintf(w, "| %d | %.2f | %.2f | %.3f | %.2f%% |\n",
			l.LoopIndex, l.Score, l.MaxScore, ratio(l), l.PassRate)
	}
	return nil
}

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func ratio(l result.LoopScore) float64 {
	return result.Summary{Score: l.Score, MaxScore: l.MaxScore}.ScoreRatio()
}

// formatFloat prints whole numbers with a trailing ".0" so weights read as
// decimals.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
