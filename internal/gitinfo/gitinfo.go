// Package gitinfo reads branch information from the build root repository.
package gitinfo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// ErrDetachedHead is returned when HEAD does not point at a branch.
var ErrDetachedHead = errors.New("HEAD is detached")

// ErrNotRepository is returned when no repository encloses the directory.
var ErrNotRepository = errors.New("not a git repository")

// CurrentBranch returns the short name of the branch checked out in the
// repository enclosing dir. Parent directories are searched for .git.
func CurrentBranch(ctx context.Context, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%s: %w", dir, ErrNotRepository)
		}
		return "", fmt.Errorf("opening repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", ErrDetachedHead
	}

	return head.Name().Short(), nil
}
