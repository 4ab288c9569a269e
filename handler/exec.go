package handler

import (
	"context"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// RunShellCommand executes a generated command through an embedded POSIX
// shell interpreter wired to the caller's terminal. It returns the
// command's exit status; a non-zero status is not an error.
func RunShellCommand(ctx context.Context, command string) (int, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return -1, fmt.Errorf("failed to parse command: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return -1, fmt.Errorf("failed to determine working directory: %w", err)
	}

	runner, err := interp.New(
		interp.StdIO(os.Stdin, os.Stdout, os.Stderr),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.Dir(cwd),
	)
	if err != nil {
		return -1, fmt.Errorf("failed to create shell interpreter: %w", err)
	}

	if err := runner.Run(ctx, file); err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return int(status), nil
		}
		return -1, fmt.Errorf("command failed: %w", err)
	}

	return 0, nil
}
