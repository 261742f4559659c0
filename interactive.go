package main

import (
	"context"
	"errors"
	"fmt"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
)

// errSelectionAborted is returned when the user leaves the finder without choosing.
var errSelectionAborted = errors.New("branch selection aborted")

// pickBranch replaces cfg.Branch with the user's choice. Local sources have
// no remote branches, so the request is dropped with a warning.
func pickBranch(ctx context.Context, cfg *RunConfig, log Logger) error {
	if !isGitURL(cfg.Source) {
		log.Warn("--interactive ignored for local source %s", cfg.Source)
		return nil
	}
	branch, err := runBranchFinder(ctx, cfg.Source)
	if err != nil {
		return err
	}
	cfg.Branch = branch
	return nil
}

// runBranchFinder lists the remote branches of url and lets the user pick one.
func runBranchFinder(ctx context.Context, url string) (string, error) {
	branches, err := listRemoteBranches(ctx, url)
	if err != nil {
		return "", err
	}
	if len(branches) == 0 {
		return "", fmt.Errorf("no branches advertised by %s", url)
	}

	idx, err := fuzzyfinder.Find(
		branches,
		func(i int) string {
			return branches[i]
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return "Select the branch to summarize. Press Enter to confirm."
			}
			return fmt.Sprintf("Source: %s\nBranch: %s\nOutput: %s", url, branches[i],
				outputFileName(repoNameFromURL(url), branches[i]))
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", errSelectionAborted
		}
		return "", fmt.Errorf("fuzzy finder error: %w", err)
	}
	return branches[idx], nil
}
