package agent

import (
	"regexp"
	"strings"
)

// DefaultLogNamespace is the module prefix the agent uses in its tracing output.
const DefaultLogNamespace = "zeroclaw::"

var (
	ansiPattern     = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	severityPattern = regexp.MustCompile(`\b(INFO|WARN|ERROR|DEBUG|TRACE)\b`)
)

// CleanResponse strips ANSI color codes and drops lines that carry both a
// log severity and the agent's logging namespace.
func CleanResponse(text, namespace string) string {
	cleaned := ansiPattern.ReplaceAllString(text, "")
	lines := strings.Split(cleaned, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isTraceLine(line, namespace) {
			continue
		}
		kept = append(kept, strings.TrimSuffix(line, "\r"))
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func isTraceLine(line, namespace string) bool {
	return namespace != "" && strings.Contains(line, namespace) && severityPattern.MatchString(line)
}

// pickResponse prefers the cleaned stdout and falls back to stderr.
func pickResponse(stdout, stderr, namespace string) string {
	if resp := CleanResponse(stdout, namespace); resp != "" {
		return resp
	}
	return CleanResponse(stderr, namespace)
}
