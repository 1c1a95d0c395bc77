//go:build !windows

package process

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/google/shlex"
)

// buildCommand splits the argument string with shell quoting rules
func buildCommand(ctx context.Context, tool, args string) (*exec.Cmd, error) {
	parts, err := shlex.Split(args)
	if err != nil {
		return nil, fmt.Errorf("split arguments: %w", err)
	}
	return exec.CommandContext(ctx, tool, parts...), nil
}
