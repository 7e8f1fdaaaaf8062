package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/helixml/autocommit/domain/commit"
)

// ResolveRepositoryRoot walks upward from start to the first directory that
// holds git metadata and returns that working tree root.
func ResolveRepositoryRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%w: no .git above %s", commit.ErrRepositoryNotFound, abs)
		}
		return "", fmt.Errorf("open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, gogit.ErrIsBareRepository) {
			return "", fmt.Errorf("%w: %s is a bare repository", commit.ErrRepositoryNotFound, abs)
		}
		return "", fmt.Errorf("get worktree: %w", err)
	}

	return worktree.Filesystem.Root(), nil
}

// ResolveRepositoryRoot satisfies the pipeline's gateway contract.
func (g *Gateway) ResolveRepositoryRoot(start string) (string, error) {
	return ResolveRepositoryRoot(start)
}

// HeadCommit returns the hash HEAD points to.
func (g *Gateway) HeadCommit(ctx context.Context, root string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo, err := gogit.PlainOpen(root)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%w: %s", commit.ErrRepositoryNotFound, root)
		}
		return "", fmt.Errorf("open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get HEAD: %w", err)
	}
	return head.Hash().String(), nil
}
