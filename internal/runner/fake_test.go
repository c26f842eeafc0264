package runner_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/signalnine/agentbench/internal/result"
	"github.com/signalnine/agentbench/internal/scenario"
)

// scriptedTurn describes how the fake agent answers one prompt.
type scriptedTurn struct {
	response string
	exitCode int
	timeout  bool
	err      error
}

// fakeProvider answers prompts from a script keyed by prompt text. Unknown
// prompts get "OK".
type fakeProvider struct {
	mu       sync.Mutex
	script   map[string]scriptedTurn
	prompts  []string
	timeouts []time.Duration
}

func (f *fakeProvider) Run(_ context.Context, prompt string, timeout time.Duration) (*result.TurnResult, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.timeouts = append(f.timeouts, timeout)
	turn, ok := f.script[prompt]
	f.mu.Unlock()
	if !ok {
		turn = scriptedTurn{response: "OK"}
	}
	if turn.err != nil {
		return nil, turn.err
	}
	tr := &result.TurnResult{
		Command:   []string{"fake", "agent", "-m", prompt},
		DurationS: 0.5,
		Stdout:    turn.response,
		Response:  strings.TrimSpace(turn.response),
	}
	if turn.timeout {
		tr.Timeout = true
		return tr, nil
	}
	code := turn.exitCode
	tr.ExitCode = &code
	return tr, nil
}

func (f *fakeProvider) called(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.prompts {
		if strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}

var errBoom = errors.New("boom")

func ptr[T any](v T) *T { return &v }

func turns(prompts ...string) []scenario.Turn {
	out := make([]scenario.Turn, len(prompts))
	for i, p := range prompts {
		out[i] = scenario.Turn{Prompt: p}
	}
	return out
}
