package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/signalnine/agentbench/internal/docker"
	"github.com/signalnine/agentbench/internal/result"
)

// Container runs each turn in a fresh container with the profile root
// bind-mounted at the same path.
type Container struct {
	Invocation
	Image       string
	ProfileRoot string
	CPULimit    float64
	MemoryLimit int64
	Logger      *zap.Logger

	// run is swapped in tests.
	run func(ctx context.Context, opts *docker.RunOpts) (*docker.RunResult, error)
}

func NewContainer(inv Invocation, image, profileRoot string, logger *zap.Logger) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Container{
		Invocation:  inv,
		Image:       image,
		ProfileRoot: profileRoot,
		Logger:      logger,
		run:         docker.RunContainer,
	}
}

func (c *Container) Run(ctx context.Context, prompt string, timeout time.Duration) (*result.TurnResult, error) {
	argv := c.Command(prompt)
	res := &result.TurnResult{InvocationID: uuid.NewString(), Command: argv}

	out, err := c.run(ctx, &docker.RunOpts{
		Image:       c.Image,
		Command:     argv,
		WorkDir:     c.ProfileRoot,
		Env:         c.Env,
		Timeout:     timeout,
		Mounts:      []docker.Mount{{Source: c.ProfileRoot, Target: c.ProfileRoot}},
		CPULimit:    c.CPULimit,
		MemoryLimit: c.MemoryLimit,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("running agent container: %w", err)
	}

	res.DurationS = Seconds(out.Duration)
	res.Stdout = strings.TrimSpace(out.Stdout)
	res.Stderr = strings.TrimSpace(out.Stderr)
	if out.TimedOut {
		res.Timeout = true
	} else {
		res.ExitCode = exitCode(out.ExitCode)
	}
	res.Response = pickResponse(res.Stdout, res.Stderr, c.namespace())

	c.Logger.Debug("agent container turn finished",
		zap.String("invocation", res.InvocationID),
		zap.String("image", c.Image),
		zap.Bool("timed_out", res.Timeout),
		zap.Intp("exit_code", res.ExitCode))
	return res, nil
}
