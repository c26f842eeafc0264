package result_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/agentbench/internal/result"
)

func TestNewRunID(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("X", 3600))
	assert.Equal(t, "20260304T040607Z", result.NewRunID(ts))
}

func TestWriteAndReadLoopReport(t *testing.T) {
	store, err := result.OpenStore(t.TempDir(), "run1", nil)
	require.NoError(t, err)

	code := 0
	report := &result.LoopReport{
		RunID:     "run1",
		LoopIndex: 2,
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Summary:   result.Summary{Score: 1, MaxScore: 3, PassRate: 50, PassedScenarios: 1, TotalScenarios: 2},
		Scenarios: []result.ScenarioResult{
			{ID: "a", Status: result.StatusPassed, Passed: true, Score: 1, MaxScore: 1,
				TurnResults: []result.TurnResult{{ExitCode: &code, Response: "ok"}}},
			{ID: "b", Status: result.StatusFailed, MaxScore: 2,
				TurnResults: []result.TurnResult{{Timeout: true}}},
		},
	}
	require.NoError(t, store.WriteLoopReport(report))

	path := filepath.Join(store.Dir, "run1.loop2.json")
	assert.Equal(t, path, store.LoopPath(2, "json"))
	got, err := result.ReadLoopReport(path)
	require.NoError(t, err)
	assert.Equal(t, report.Summary, got.Summary)
	require.Len(t, got.Scenarios, 2)
	require.NotNil(t, got.Scenarios[0].TurnResults[0].ExitCode)
	assert.Equal(t, 0, *got.Scenarios[0].TurnResults[0].ExitCode)
	assert.Nil(t, got.Scenarios[1].TurnResults[0].ExitCode, "timed out turns have no exit code")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"exit_code": null`)
}

func TestWriteSummaryUpdatesLatest(t *testing.T) {
	root := t.TempDir()
	store, err := result.OpenStore(root, "run1", nil)
	require.NoError(t, err)
	assert.Equal(t, result.RunsDir(root), store.Dir)

	sum := &result.RunSummary{RunID: "run1"}
	sum.Append(&result.LoopReport{LoopIndex: 1, Summary: result.Summary{Score: 2, MaxScore: 4, PassRate: 50}})
	require.NoError(t, store.WriteSummary(sum))

	got, err := result.ReadSummary(filepath.Join(store.Dir, "latest.summary.json"))
	require.NoError(t, err)
	assert.Equal(t, []result.LoopScore{{LoopIndex: 1, Score: 2, MaxScore: 4, PassRate: 50}}, got.Loops)

	// A second run repoints the link.
	store2, err := result.OpenStore(root, "run2", nil)
	require.NoError(t, err)
	require.NoError(t, store2.WriteSummary(&result.RunSummary{RunID: "run2"}))
	got, err = result.ReadSummary(filepath.Join(store.Dir, "latest.summary.json"))
	require.NoError(t, err)
	assert.Equal(t, "run2", got.RunID)
}

func TestWriteSummaryWithBlockedLatestLink(t *testing.T) {
	root := t.TempDir()
	store, err := result.OpenStore(root, "run1", nil)
	require.NoError(t, err)
	blocked := filepath.Join(store.Dir, "latest.summary.json")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "keep"), 0o755))

	require.NoError(t, store.WriteSummary(&result.RunSummary{RunID: "run1"}))
	got, err := result.ReadSummary(store.SummaryPath())
	require.NoError(t, err)
	assert.Equal(t, "run1", got.RunID)
	assert.DirExists(t, filepath.Join(blocked, "keep"))
}

func TestWriteAnalysis(t *testing.T) {
	store, err := result.OpenStore(t.TempDir(), "run1", nil)
	require.NoError(t, err)
	require.NoError(t, store.WriteAnalysis(3, "diagnostico\n"))
	data, err := os.ReadFile(filepath.Join(store.Dir, "run1.loop3.self_analysis.md"))
	require.NoError(t, err)
	assert.Equal(t, "diagnostico\n", string(data))
}

func TestReadSummaryMissing(t *testing.T) {
	_, err := result.ReadSummary(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSummaryHelpers(t *testing.T) {
	assert.Equal(t, 0.0, result.Summary{}.ScoreRatio())
	assert.InDelta(t, 0.5, result.Summary{Score: 1, MaxScore: 2}.ScoreRatio(), 1e-9)

	var sum result.RunSummary
	_, ok := sum.Latest()
	assert.False(t, ok)
	sum.Append(&result.LoopReport{LoopIndex: 1})
	sum.Append(&result.LoopReport{LoopIndex: 2})
	latest, ok := sum.Latest()
	assert.True(t, ok)
	assert.Equal(t, 2, latest.LoopIndex)
}

func TestTurnSucceeded(t *testing.T) {
	zero, one := 0, 1
	assert.True(t, (&result.TurnResult{ExitCode: &zero}).Succeeded())
	assert.False(t, (&result.TurnResult{ExitCode: &one}).Succeeded())
	assert.False(t, (&result.TurnResult{}).Succeeded())
	assert.False(t, (&result.TurnResult{Timeout: true, ExitCode: &zero}).Succeeded())
}
