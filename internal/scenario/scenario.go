package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNotList is returned when the scenario source is not a top-level sequence.
var ErrNotList = errors.New("scenario source must be a top-level list")

type Scenario struct {
	ID          string     `yaml:"id" json:"id"`
	Description string     `yaml:"description" json:"description"`
	Tags        []string   `yaml:"tags" json:"tags"`
	Weight      float64    `yaml:"weight" json:"weight"`
	Turns       []Turn     `yaml:"turns" json:"turns"`
	Checks      *CheckSpec `yaml:"checks" json:"checks,omitempty"`
}

type Turn struct {
	Prompt      string `yaml:"prompt" json:"prompt"`
	TimeoutSecs int    `yaml:"timeout_secs" json:"timeout_secs,omitempty"`
}

// CheckSpec holds the declarative rules applied to a scenario's final
// response. Every rule is optional.
type CheckSpec struct {
	Equals           *string  `yaml:"equals" json:"equals,omitempty"`
	MustContain      []string `yaml:"must_contain" json:"must_contain,omitempty"`
	MustNotContain   []string `yaml:"must_not_contain" json:"must_not_contain,omitempty"`
	AnyOf            []string `yaml:"any_of" json:"any_of,omitempty"`
	NumberedStepsMin int      `yaml:"numbered_steps_min" json:"numbered_steps_min,omitempty"`
}

// Timeout returns the turn's own timeout, or def when the turn has none.
func (t Turn) Timeout(def time.Duration) time.Duration {
	if t.TimeoutSecs > 0 {
		return time.Duration(t.TimeoutSecs) * time.Second
	}
	return def
}

// HasTag reports whether the scenario carries any of the given tags.
func (s *Scenario) HasTag(tags ...string) bool {
	for _, t := range tags {
		if slices.Contains(s.Tags, t) {
			return true
		}
	}
	return false
}

// Load reads a scenario source. YAML and JSON documents are both accepted.
func Load(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenarios %s: %w", path, err)
	}
	scenarios, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading scenarios %s: %w", path, err)
	}
	return scenarios, nil
}

// Parse decodes and validates a scenario document. JSON input is decoded
// with encoding/json, anything else as YAML.
func Parse(data []byte) ([]Scenario, error) {
	var raw []rawScenario
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		if trimmed[0] != '[' {
			return nil, ErrNotList
		}
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("parsing: %w", err)
		}
	} else {
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("parsing: %w", err)
		}
		if len(root.Content) == 0 || root.Content[0].Kind != yaml.SequenceNode {
			return nil, ErrNotList
		}
		if err := root.Content[0].Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding: %w", err)
		}
	}
	return build(raw)
}

type rawScenario struct {
	ID          string     `yaml:"id" json:"id"`
	Description string     `yaml:"description" json:"description"`
	Tags        []string   `yaml:"tags" json:"tags"`
	Weight      *float64   `yaml:"weight" json:"weight"`
	Turns       []Turn     `yaml:"turns" json:"turns"`
	Checks      *CheckSpec `yaml:"checks" json:"checks"`
}

func build(raw []rawScenario) ([]Scenario, error) {
	scenarios := make([]Scenario, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, r := range raw {
		s := Scenario{
			ID:          r.ID,
			Description: r.Description,
			Tags:        r.Tags,
			Weight:      1.0,
			Turns:       r.Turns,
			Checks:      r.Checks,
		}
		if s.ID == "" {
			s.ID = "unknown"
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("scenario %d: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true

		if r.Weight != nil {
			if *r.Weight <= 0 {
				return nil, fmt.Errorf("scenario %q: weight must be positive, got %v", s.ID, *r.Weight)
			}
			s.Weight = *r.Weight
		}
		for j, t := range s.Turns {
			if t.TimeoutSecs < 0 {
				return nil, fmt.Errorf("scenario %q turn %d: timeout_secs must not be negative", s.ID, j)
			}
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Filter keeps scenarios matching id (when non-empty) and carrying at least
// one of tags (when any are given). Declared order is preserved.
func Filter(scenarios []Scenario, id string, tags []string) []Scenario {
	var out []Scenario
	for _, s := range scenarios {
		if id != "" && s.ID != id {
			continue
		}
		if len(tags) > 0 && !s.HasTag(tags...) {
			continue
		}
		out = append(out, s)
	}
	return out
}
