package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

// isGitURL checks if the input string looks like a remote Git location.
func isGitURL(input string) bool {
	return strings.HasSuffix(input, ".git") ||
		strings.HasPrefix(input, "git@") ||
		strings.HasPrefix(input, "ssh://") ||
		strings.HasPrefix(input, "file://") ||
		strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://")
}

// GitAcquirer clones remote sources into Workdir/<repo> or updates an
// existing clone there. Local directories are used in place.
type GitAcquirer struct {
	Workdir  string
	Progress io.Writer // Receives go-git progress output, may be nil
	Log      Logger
}

// Acquire returns the local directory holding source at branch.
// All failures are returned as *AcquisitionError.
func (a *GitAcquirer) Acquire(ctx context.Context, source, branch string) (string, error) {
	log := a.Log
	if log == nil {
		log = nopLogger{}
	}

	if info, err := os.Stat(source); err == nil && info.IsDir() && !isGitURL(source) {
		if branch != "" {
			log.Warn("branch %q ignored for local directory %s", branch, source)
		}
		return source, nil
	}
	if !isGitURL(source) {
		return "", &AcquisitionError{Source: source, Err: errors.New("not a local directory or git URL")}
	}

	dest := filepath.Join(a.Workdir, repoNameFromURL(source))
	if _, err := os.Stat(dest); err == nil {
		log.Info("Updating repository '%s'...", dest)
		if err := a.update(ctx, dest, branch); err != nil {
			return "", &AcquisitionError{Source: source, Err: err}
		}
		return dest, nil
	}

	log.Info("Cloning %s ...", source)
	if err := a.clone(ctx, source, dest, branch); err != nil {
		return "", &AcquisitionError{Source: source, Err: err}
	}
	return dest, nil
}

func (a *GitAcquirer) clone(ctx context.Context, url, dest, branch string) error {
	opts := &git.CloneOptions{
		URL:      url,
		Progress: a.Progress,
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	}

	_, err := git.PlainCloneContext(ctx, dest, false, opts)
	if err != nil {
		// Attempt cleanup even if clone failed
		_ = os.RemoveAll(dest)
		return fmt.Errorf("failed to clone repository '%s': %w", url, err)
	}
	return nil
}

// update fetches every remote head and, if branch is set, checks out
// origin/<branch> as a detached HEAD.
func (a *GitAcquirer) update(ctx context.Context, dest, branch string) error {
	repo, err := git.PlainOpen(dest)
	if err != nil {
		return fmt.Errorf("open repo %s: %w", dest, err)
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{"+refs/heads/*:refs/remotes/origin/*"},
		Progress:   a.Progress,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetch %s: %w", dest, err)
	}

	if branch == "" {
		return nil
	}
	ref, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return fmt.Errorf("resolve origin/%s: %w", branch, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree %s: %w", dest, err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: ref.Hash(), Force: true}); err != nil {
		return fmt.Errorf("checkout origin/%s: %w", branch, err)
	}
	return nil
}

// listRemoteBranches returns the sorted branch names advertised by url.
func listRemoteBranches(ctx context.Context, url string) ([]string, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return nil, &AcquisitionError{Source: url, Err: fmt.Errorf("list remote refs: %w", err)}
	}

	var branches []string
	for _, ref := range refs {
		if ref.Name().IsBranch() {
			branches = append(branches, ref.Name().Short())
		}
	}
	sort.Strings(branches)
	return branches, nil
}
