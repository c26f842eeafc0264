// Package tuner applies heuristic configuration edits between benchmark
// loops based on which scenarios failed.
package tuner

import (
	"errors"
	"fmt"
	"os"

	"github.com/signalnine/agentbench/internal/fsutil"
	"github.com/signalnine/agentbench/internal/result"
)

// Rule edits the document when ScenarioID failed and returns a description
// of every edit that changed it.
type Rule struct {
	ScenarioID string
	Apply      func(doc *Document) []string
}

// DefaultRules is the built-in failure-to-setting mapping.
var DefaultRules = []Rule{
	{
		ScenarioID: "memory_recall_two_turn",
		Apply: func(doc *Document) []string {
			var changes []string
			if doc.EnsureSection("autonomy").EnsureListItem("auto_approve", "memory_store") {
				changes = append(changes, "autonomy.auto_approve += memory_store")
			}
			if doc.EnsureSection("memory").SetBool("auto_save", true) {
				changes = append(changes, "memory.auto_save = true")
			}
			return changes
		},
	},
	{
		ScenarioID: "context_file_awareness",
		Apply: func(doc *Document) []string {
			var changes []string
			integration := doc.EnsureSection("integration")
			if integration.SetBool("openclaw_sync", true) {
				changes = append(changes, "integration.openclaw_sync = true")
			}
			if integration.SetBool("shared_memory", true) {
				changes = append(changes, "integration.shared_memory = true")
			}
			return changes
		},
	},
}

// Tuner rewrites the agent's config file at Path.
type Tuner struct {
	Path  string
	Rules []Rule
}

func New(path string) *Tuner {
	return &Tuner{Path: path, Rules: DefaultRules}
}

// Apply runs every rule whose scenario failed and rewrites the file in one
// atomic step when anything changed. A missing file yields a single
// explanatory change line rather than an error.
func (t *Tuner) Apply(results []result.ScenarioResult) ([]string, error) {
	data, err := os.ReadFile(t.Path)
	if errors.Is(err, os.ErrNotExist) {
		return []string{"config not found: " + t.Path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	original := string(data)

	failed := make(map[string]bool)
	for _, r := range results {
		if !r.Passed {
			failed[r.ID] = true
		}
	}

	doc := Parse(original)
	var changes []string
	for _, rule := range t.Rules {
		if failed[rule.ScenarioID] {
			changes = append(changes, rule.Apply(doc)...)
		}
	}
	updated := doc.String()
	if len(changes) == 0 || updated == original {
		return nil, nil
	}

	if Validate(original) == nil {
		if err := Validate(updated); err != nil {
			return nil, fmt.Errorf("refusing to write %s: %w", t.Path, err)
		}
	}
	if err := fsutil.WriteFileAtomic(t.Path, []byte(updated), 0o644); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}
	return changes, nil
}
