package gitinfo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/ship/internal/testutil"
)

// initRepoWithCommit creates a repository with one commit on master.
func initRepoWithCommit(t *testing.T) (string, *git.Repository, plumbing.Hash) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	testutil.WriteFile(t, dir, "README.md", "hello")

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)

	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Unix(0, 0)},
	})
	require.NoError(t, err)

	return dir, repo, hash
}

func TestCurrentBranch(t *testing.T) {
	t.Run("default branch", func(t *testing.T) {
		dir, _, _ := initRepoWithCommit(t)

		name, err := CurrentBranch(context.Background(), dir)
		require.NoError(t, err)
		assert.Equal(t, "master", name)
	})

	t.Run("checked out branch with slash", func(t *testing.T) {
		dir, repo, _ := initRepoWithCommit(t)
		wt, err := repo.Worktree()
		require.NoError(t, err)
		require.NoError(t, wt.Checkout(&git.CheckoutOptions{
			Branch: plumbing.NewBranchReferenceName("release/2.0"),
			Create: true,
		}))

		name, err := CurrentBranch(context.Background(), dir)
		require.NoError(t, err)
		assert.Equal(t, "release/2.0", name)
	})

	t.Run("subdirectory finds enclosing repository", func(t *testing.T) {
		dir, _, _ := initRepoWithCommit(t)
		testutil.WriteFile(t, dir, filepath.Join("src", "main.go"), "package main")

		name, err := CurrentBranch(context.Background(), filepath.Join(dir, "src"))
		require.NoError(t, err)
		assert.Equal(t, "master", name)
	})

	t.Run("detached head", func(t *testing.T) {
		dir, repo, hash := initRepoWithCommit(t)
		wt, err := repo.Worktree()
		require.NoError(t, err)
		require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: hash}))

		_, err = CurrentBranch(context.Background(), dir)
		assert.ErrorIs(t, err, ErrDetachedHead)
	})

	t.Run("not a repository", func(t *testing.T) {
		_, err := CurrentBranch(context.Background(), t.TempDir())
		assert.ErrorIs(t, err, ErrNotRepository)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := CurrentBranch(ctx, t.TempDir())
		assert.ErrorIs(t, err, context.Canceled)
	})
}
