//go:build windows

package process

import (
	"context"
	"os/exec"
	"syscall"
)

// buildCommand hands the argument string to CreateProcess untouched. The
// engine tools parse their own command line, including quoted -key="value"
// pairs that Go's per-argument escaping would mangle.
func buildCommand(ctx context.Context, tool, args string) (*exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, tool)
	cmdLine := syscall.EscapeArg(tool)
	if args != "" {
		cmdLine += " " + args
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: cmdLine}
	return cmd, nil
}
