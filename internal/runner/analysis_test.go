package runner_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/signalnine/agentbench/internal/result"
	"github.com/signalnine/agentbench/internal/runner"
)

func TestRedactConfig(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"api key", `api_key = "sk-123"`, `api_key = "[REDACTED]"`},
		{"indented mixed case", `  Bot_Token="abc"`, `Bot_Token = "[REDACTED]"`},
		{"password", `db_password = 'pw'`, `db_password = "[REDACTED]"`},
		{"plain", `default_model = "gpt"`, `default_model = "gpt"`},
		{"section", `[secrets]`, `[secrets]`},
		{"comment without assignment", `# token rotation`, `# token rotation`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runner.RedactConfig(tt.in))
		})
	}
}

func TestConfigSnapshotTruncates(t *testing.T) {
	raw := strings.Repeat("a", runner.MaxConfigSnapshot+10)
	got := runner.ConfigSnapshot(raw)
	assert.Equal(t, strings.Repeat("a", runner.MaxConfigSnapshot)+"\n... [TRUNCATED]", got)

	short := "x = 1"
	assert.Equal(t, short, runner.ConfigSnapshot(short))
}

func TestAnalysisPrompt(t *testing.T) {
	report := &result.LoopReport{
		Summary: result.Summary{Score: 1, MaxScore: 3, PassRate: 50},
		Scenarios: []result.ScenarioResult{
			{ID: "ok", Passed: true},
			{ID: "bad", CheckFailures: []string{"f1", "f2"}},
			{ID: "quiet"},
		},
	}
	got := runner.AnalysisPrompt(report, "x = 1")
	assert.Contains(t, got, "Resumen score: 1.00/3.00\n")
	assert.Contains(t, got, "Pass rate: 50.00%\n")
	assert.Contains(t, got, "Fallos principales:\n- bad: f1, f2\n- quiet: sin detalle\n\n")
	assert.Contains(t, got, "```toml\nx = 1\n```")
	assert.NotContains(t, got, "- ok:")
	assert.True(t, strings.HasSuffix(got, "4) Plan de validación (comandos concretos)\n"))
}

func TestAnalysisPromptLimitsFailures(t *testing.T) {
	report := &result.LoopReport{}
	for _, id := range []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7"} {
		report.Scenarios = append(report.Scenarios, result.ScenarioResult{ID: id})
	}
	got := runner.AnalysisPrompt(report, "")
	assert.Contains(t, got, "- s5: sin detalle")
	assert.NotContains(t, got, "- s6:")
}

func TestAnalysisPromptNoFailures(t *testing.T) {
	got := runner.AnalysisPrompt(&result.LoopReport{}, "")
	assert.Contains(t, got, "Fallos principales:\n- Sin fallos\n")
}
