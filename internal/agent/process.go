package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/signalnine/agentbench/internal/result"
)

// WaitDelay bounds how long Run waits for output pipes after the agent is
// killed, in case children outside its process group hold them open.
var WaitDelay = 2 * time.Second

// Process runs the agent as a local child process.
type Process struct {
	Invocation
	Logger *zap.Logger
}

func NewProcess(inv Invocation, logger *zap.Logger) *Process {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Process{Invocation: inv, Logger: logger}
}

func (p *Process) Run(ctx context.Context, prompt string, timeout time.Duration) (*result.TurnResult, error) {
	if len(p.Exe) == 0 {
		return nil, errors.New("no agent executable configured")
	}
	argv := p.Command(prompt)
	res := &result.TurnResult{InvocationID: uuid.NewString(), Command: argv}

	turnCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(turnCtx, argv[0], argv[1:]...)
	cmd.Env = p.Env
	cmd.WaitDelay = WaitDelay
	killGroupOnCancel(cmd)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res.DurationS = Seconds(time.Since(start))
	res.Stdout = strings.TrimSpace(stdout.String())
	res.Stderr = strings.TrimSpace(stderr.String())

	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(turnCtx.Err(), context.DeadlineExceeded):
		res.Timeout = true
	case err == nil:
		res.ExitCode = exitCode(0)
	default:
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running agent: %w", err)
		}
		res.ExitCode = exitCode(exitErr.ExitCode())
	}
	res.Response = pickResponse(res.Stdout, res.Stderr, p.namespace())

	p.Logger.Debug("agent turn finished",
		zap.String("invocation", res.InvocationID),
		zap.Duration("timeout", timeout),
		zap.Bool("timed_out", res.Timeout),
		zap.Intp("exit_code", res.ExitCode),
		zap.Float64("duration_s", res.DurationS))
	return res, nil
}
