package process

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/logger"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
)

// Runner starts an external tool and waits for it
type Runner interface {
	Run(ctx context.Context, tool, args string) error
}

// ExecRunner runs tools as child processes. Child output is streamed to
// Stdout and Stderr; nothing is captured.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
	Dir    string
	Logger logger.Logger
}

// NewExecRunner creates a runner streaming to the console
func NewExecRunner(log logger.Logger) *ExecRunner {
	return &ExecRunner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: log,
	}
}

// WithOutput returns a copy of r that also tees child output to w
func (r *ExecRunner) WithOutput(w io.Writer) *ExecRunner {
	cp := *r
	if w == nil {
		return &cp
	}
	cp.Stdout = teeTo(r.Stdout, w)
	cp.Stderr = teeTo(r.Stderr, w)
	return &cp
}

// Run starts tool with the single argument string and blocks until it exits.
// A start failure or a non-zero exit is returned as *types.ProcessError.
func (r *ExecRunner) Run(ctx context.Context, tool, args string) error {
	cmd, err := buildCommand(ctx, tool, args)
	if err != nil {
		return &types.ProcessError{Tool: tool, Args: args, ExitCode: -1, Err: err}
	}
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if r.Logger != nil {
		r.Logger.Debug("Starting process", logger.WithField("tool", tool), logger.WithField("args", args))
	}

	if err := cmd.Start(); err != nil {
		return &types.ProcessError{Tool: tool, Args: args, ExitCode: -1, Err: err}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return &types.ProcessError{Tool: tool, Args: args, ExitCode: -1, Err: ctx.Err()}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &types.ProcessError{Tool: tool, Args: args, ExitCode: exitErr.ExitCode()}
		}
		return &types.ProcessError{Tool: tool, Args: args, ExitCode: -1, Err: err}
	}
	return nil
}

func teeTo(primary, extra io.Writer) io.Writer {
	if primary == nil {
		return extra
	}
	return io.MultiWriter(primary, extra)
}
