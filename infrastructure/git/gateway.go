// Package git wraps the git executable and go-git for the commit pipeline.
package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/helixml/autocommit/domain/commit"
)

// exitNotRepository is the exit code git uses for fatal errors such as
// running outside a repository.
const exitNotRepository = 128

// Gateway runs git subcommands against a repository root.
type Gateway struct {
	executor Executor
	binary   string
	logger   *slog.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithExecutor sets the process executor.
func WithExecutor(e Executor) GatewayOption {
	return func(g *Gateway) { g.executor = e }
}

// WithBinary sets the git executable name or path.
func WithBinary(path string) GatewayOption {
	return func(g *Gateway) {
		if path != "" {
			g.binary = path
		}
	}
}

// NewGateway creates a Gateway.
func NewGateway(logger *slog.Logger, opts ...GatewayOption) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gateway{
		executor: ExecExecutor{},
		binary:   "git",
		logger:   logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ModifiedFiles lists tracked files with unstaged modifications.
func (g *Gateway) ModifiedFiles(ctx context.Context, root string) ([]string, error) {
	out, err := g.run(ctx, root, "diff", "--name-only")
	if err != nil {
		return nil, fmt.Errorf("list modified files: %w", err)
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// DiffText returns the working tree diff with zero context lines.
func (g *Gateway) DiffText(ctx context.Context, root string) (string, error) {
	out, err := g.run(ctx, root, "diff", "--unified=0")
	if err != nil {
		return "", fmt.Errorf("get diff: %w", err)
	}
	return out, nil
}

// StageAndCommit stages everything and commits it with message. The message
// is passed as a single argument. When staging succeeds but the commit does
// not, the returned error also matches commit.ErrStagedUncommitted. Nothing
// is rolled back.
func (g *Gateway) StageAndCommit(ctx context.Context, root string, message string) error {
	if _, err := g.run(ctx, root, "add", "."); err != nil {
		return fmt.Errorf("stage changes: %w", err)
	}
	g.logger.Debug("staged changes", slog.String("root", root))

	if _, err := g.run(ctx, root, "commit", "-m", message); err != nil {
		return fmt.Errorf("commit changes: %w: %w", commit.ErrStagedUncommitted, err)
	}
	g.logger.Debug("committed changes", slog.String("root", root))
	return nil
}

func (g *Gateway) run(ctx context.Context, root string, args ...string) (string, error) {
	argv := append([]string{"-C", root}, args...)
	result, err := g.executor.Run(ctx, "", g.binary, argv...)
	if err == nil {
		return result.Stdout, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("git %s: %w", args[0], ctxErr)
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %w", commit.ErrGitUnavailable, err)
	}

	cmdErr := NewCommandError(args, result.ExitCode, result.Stderr, err)
	if result.ExitCode == exitNotRepository && isMissingRepository(result.Stderr) {
		return "", fmt.Errorf("%w: %w", commit.ErrRepositoryNotFound, cmdErr)
	}
	return "", cmdErr
}

func isMissingRepository(stderr string) bool {
	s := strings.ToLower(stderr)
	return strings.Contains(s, "not a git repository") || strings.Contains(s, "cannot change to")
}
