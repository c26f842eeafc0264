// Package checks evaluates an agent response against a scenario's
// declarative check rules.
package checks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/signalnine/agentbench/internal/scenario"
)

// stepPattern matches step marker candidates. Whether a candidate counts
// depends on what precedes it; see anchored.
var stepPattern = regexp.MustCompile(`(?i)\d+\.\s+|(?:paso|step)\s+\d+`)

// Evaluate applies every declared rule and reports all violations. A nil
// CheckSpec always passes.
func Evaluate(response string, cs *scenario.CheckSpec) (bool, []string) {
	if cs == nil {
		return true, nil
	}

	var failures []string
	text := strings.TrimSpace(response)
	lower := strings.ToLower(text)

	if cs.Equals != nil && text != *cs.Equals {
		failures = append(failures, fmt.Sprintf("equals failed: expected `%s` got `%s`", *cs.Equals, text))
	}

	for _, needle := range cs.MustContain {
		if !strings.Contains(lower, strings.ToLower(needle)) {
			failures = append(failures, fmt.Sprintf("must_contain missing: `%s`", needle))
		}
	}

	for _, needle := range cs.MustNotContain {
		if strings.Contains(lower, strings.ToLower(needle)) {
			failures = append(failures, fmt.Sprintf("must_not_contain matched: `%s`", needle))
		}
	}

	if len(cs.AnyOf) > 0 && !containsAny(lower, cs.AnyOf) {
		failures = append(failures, fmt.Sprintf("any_of failed: none of %v", cs.AnyOf))
	}

	if cs.NumberedStepsMin > 0 {
		if got := CountSteps(text); got < cs.NumberedStepsMin {
			failures = append(failures, fmt.Sprintf("numbered_steps_min failed: expected >= %d, got %d", cs.NumberedStepsMin, got))
		}
	}

	return len(failures) == 0, failures
}

// CountSteps returns the number of step markers in text.
// A marker counts at the start of a line or after a sentence terminator and
// whitespace, so "1. a. 2. b." counts two steps.
func CountSteps(text string) int {
	n := 0
	for _, loc := range stepPattern.FindAllStringIndex(text, -1) {
		if anchored(text[:loc[0]]) {
			n++
		}
	}
	return n
}

func anchored(before string) bool {
	line := strings.TrimRight(before, " \t")
	if line == "" || strings.HasSuffix(line, "\n") {
		return true
	}
	trimmed := strings.TrimRight(before, " \t\r\n\f\v")
	if trimmed == before || trimmed == "" {
		return false
	}
	return strings.ContainsRune(".;!?", rune(trimmed[len(trimmed)-1]))
}

func containsAny(lower string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
