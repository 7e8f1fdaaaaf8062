package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result holds the captured output of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs an external program with an argument vector. Implementations
// must never route arguments through a shell.
type Executor interface {
	Run(ctx context.Context, dir string, name string, args ...string) (Result, error)
}

// ExecExecutor runs processes with os/exec.
type ExecExecutor struct{}

// Run starts name with args in dir and waits for it to finish. A non-zero
// exit is returned as an *exec.ExitError alongside the captured Result.
func (ExecExecutor) Run(ctx context.Context, dir string, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}
	return result, err
}

// CommandError is a git invocation that exited unsuccessfully.
type CommandError struct {
	Args     []string
	exitCode int
	stderr   string
	Err      error
}

// NewCommandError creates a CommandError.
func NewCommandError(args []string, exitCode int, stderr string, err error) *CommandError {
	return &CommandError{
		Args:     args,
		exitCode: exitCode,
		stderr:   strings.TrimSpace(stderr),
		Err:      err,
	}
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s failed (exit %d)", strings.Join(e.Args, " "), e.exitCode)
	if e.stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.stderr)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error { return e.Err }

// ExitCode returns the process exit code.
func (e *CommandError) ExitCode() int { return e.exitCode }

// Stderr returns the captured error output.
func (e *CommandError) Stderr() string { return e.stderr }
