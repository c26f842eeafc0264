// Package agent invokes the agent under test for a single conversational
// turn. A Provider is chosen once per run: a real process, a container, or
// a deterministic simulation.
package agent

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/signalnine/agentbench/internal/result"
)

// Provider answers one prompt within timeout. A non-nil error means the
// agent could not be invoked at all or ctx was cancelled; timeouts and
// non-zero exits are reported in the TurnResult.
type Provider interface {
	Run(ctx context.Context, prompt string, timeout time.Duration) (*result.TurnResult, error)
}

// Invocation describes how the agent CLI is called.
type Invocation struct {
	// Exe is the executable followed by any fixed leading arguments.
	Exe         []string
	Provider    string
	Model       string
	Temperature *float64
	Env         []string
	// LogNamespace marks the agent's own trace lines; see CleanResponse.
	LogNamespace string
}

// Command returns the argv for one turn carrying prompt.
func (inv Invocation) Command(prompt string) []string {
	argv := append([]string{}, inv.Exe...)
	argv = append(argv, "agent", "-m", prompt)
	if inv.Provider != "" {
		argv = append(argv, "--provider", inv.Provider)
	}
	if inv.Model != "" {
		argv = append(argv, "--model", inv.Model)
	}
	if inv.Temperature != nil {
		argv = append(argv, "--temperature", strconv.FormatFloat(*inv.Temperature, 'f', -1, 64))
	}
	return argv
}

func (inv Invocation) namespace() string {
	if inv.LogNamespace == "" {
		return DefaultLogNamespace
	}
	return inv.LogNamespace
}

// Seconds converts d to seconds rounded to the millisecond.
func Seconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}

func exitCode(code int) *int {
	return &code
}
