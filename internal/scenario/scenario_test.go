package scenario_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/agentbench/internal/scenario"
)

func TestLoadJSON(t *testing.T) {
	scenarios, err := scenario.Load("testdata/agent_tasks.json")
	require.NoError(t, err)
	require.Len(t, scenarios, 3)

	assert.Equal(t, "exact_echo", scenarios[0].ID)
	require.NotNil(t, scenarios[0].Checks)
	require.NotNil(t, scenarios[0].Checks.Equals)
	assert.Equal(t, "BENCH_OK_001", *scenarios[0].Checks.Equals)

	recall := scenarios[1]
	assert.Equal(t, 2.0, recall.Weight)
	require.Len(t, recall.Turns, 2)
	assert.Equal(t, 60*time.Second, recall.Turns[1].Timeout(120*time.Second))
	assert.Equal(t, 120*time.Second, recall.Turns[0].Timeout(120*time.Second))

	assert.Equal(t, 1.0, scenarios[2].Weight, "missing weight defaults to 1.0")
	assert.Nil(t, scenarios[2].Checks)
}

func TestLoadYAML(t *testing.T) {
	scenarios, err := scenario.Load("testdata/agent_tasks.yaml")
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, 1.5, scenarios[0].Weight)
	assert.Equal(t, 3, scenarios[0].Checks.NumberedStepsMin)
	assert.Equal(t, []string{"no puedo", "cannot"}, scenarios[1].Checks.AnyOf)
	assert.Equal(t, 1.0, scenarios[1].Weight)
}

func TestLoadMissing(t *testing.T) {
	_, err := scenario.Load("testdata/nonexistent.json")
	assert.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		notList bool
	}{
		{"json object", `{"id": "x"}`, true},
		{"yaml mapping", "id: x\nturns: []\n", true},
		{"empty document", "", true},
		{"malformed json", `[{"id": "x",]`, false},
		{"duplicate ids", `[{"id": "a"}, {"id": "a"}]`, false},
		{"zero weight", `[{"id": "a", "weight": 0}]`, false},
		{"negative weight", "- id: a\n  weight: -1\n", false},
		{"negative timeout", `[{"id": "a", "turns": [{"prompt": "p", "timeout_secs": -5}]}]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scenario.Parse([]byte(tt.input))
			require.Error(t, err)
			if tt.notList {
				assert.ErrorIs(t, err, scenario.ErrNotList)
			}
		})
	}
}

func TestParseEmptyList(t *testing.T) {
	scenarios, err := scenario.Parse([]byte("[]"))
	require.NoError(t, err)
	assert.Empty(t, scenarios)
}

func TestParseDefaultsID(t *testing.T) {
	scenarios, err := scenario.Parse([]byte(`[{"turns": [{"prompt": "p"}]}]`))
	require.NoError(t, err)
	assert.Equal(t, "unknown", scenarios[0].ID)
}

func TestFilter(t *testing.T) {
	all := []scenario.Scenario{
		{ID: "a", Tags: []string{"memory"}},
		{ID: "b", Tags: []string{"safety", "basic"}},
		{ID: "c"},
	}
	tests := []struct {
		name string
		id   string
		tags []string
		want []string
	}{
		{"no filters", "", nil, []string{"a", "b", "c"}},
		{"by id", "b", nil, []string{"b"}},
		{"by tag", "", []string{"basic"}, []string{"b"}},
		{"any tag matches", "", []string{"memory", "safety"}, []string{"a", "b"}},
		{"id and wrong tag", "a", []string{"safety"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, s := range scenario.Filter(all, tt.id, tt.tags) {
				got = append(got, s.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
