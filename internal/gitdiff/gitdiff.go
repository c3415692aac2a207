// Package gitdiff summarizes the changes between a base branch and HEAD
// for pull request analysis. It shells out to git for all queries and never
// mutates repository state.
package gitdiff

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Defaults for change analysis.
const (
	DefaultBaseBranch   = "main"
	DefaultMaxDiffLines = 500
)

// ChangeSet is the result of analyzing changes between two revisions.
// Field names match the JSON payload returned to MCP clients.
type ChangeSet struct {
	// BaseBranch is the branch the comparison was made against.
	BaseBranch string `json:"base_branch"`
	// FilesChanged is the raw `git diff --name-status` output.
	FilesChanged string `json:"files_changed"`
	// Statistics is the raw `git diff --stat` output.
	Statistics string `json:"statistics"`
	// Commits is the raw `git log --oneline` output for the range.
	Commits string `json:"commits"`
	// Diff holds the full diff text, possibly capped, or a placeholder
	// when the diff was not requested.
	Diff string `json:"diff"`
	// Truncated reports whether Diff was capped at MaxDiffLines.
	Truncated bool `json:"truncated"`
	// TotalDiffLines is the uncapped line count of the diff, or 0 when
	// the diff was not requested.
	TotalDiffLines int `json:"total_diff_lines"`
}

// Options configures a single analysis call.
type Options struct {
	// BaseBranch to compare against. Empty means DefaultBaseBranch.
	BaseBranch string
	// IncludeDiff controls whether the full diff text is fetched.
	IncludeDiff bool
	// MaxDiffLines caps the diff text. Must be positive.
	MaxDiffLines int
	// WorkDir is the directory git runs in. Empty means the analyzer's
	// configured default, falling back to the process working directory.
	WorkDir string
}

// Analyzer runs read-only git queries against a working directory.
type Analyzer struct {
	defaultWorkDir string
}

// NewAnalyzer creates an Analyzer. defaultWorkDir is used when a call does
// not name a working directory; it may be empty.
func NewAnalyzer(defaultWorkDir string) *Analyzer {
	return &Analyzer{defaultWorkDir: defaultWorkDir}
}

// Analyze produces a ChangeSet for the given options.
//
// The name-status query is required: if it fails, Analyze returns a
// *GitError carrying git's stderr. The stat and log queries are
// best-effort, matching the behavior of the tools this feeds: an agent can
// still reason about a change with partial context. Any non-git failure is
// wrapped in *AnalysisError.
func (a *Analyzer) Analyze(ctx context.Context, opts Options) (*ChangeSet, error) {
	if opts.MaxDiffLines <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidMaxDiffLines, opts.MaxDiffLines)
	}

	base := opts.BaseBranch
	if base == "" {
		base = DefaultBaseBranch
	}

	dir, err := a.resolveWorkDir(opts.WorkDir)
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}

	rng := base + "...HEAD"

	filesOut, err := runGit(ctx, dir, "diff", "--name-status", rng)
	if err != nil {
		return nil, err
	}

	// Best-effort queries: ignore failures, keep whatever stdout we got.
	statOut, _ := runGit(ctx, dir, "diff", "--stat", rng)
	commitsOut, _ := runGit(ctx, dir, "log", "--oneline", rng)

	cs := &ChangeSet{
		BaseBranch:   base,
		FilesChanged: filesOut,
		Statistics:   statOut,
		Commits:      commitsOut,
		Diff:         "Diff not included (set include_diff=true to see the full diff)",
	}

	if opts.IncludeDiff {
		diffOut, _ := runGit(ctx, dir, "diff", rng)
		cs.Diff, cs.Truncated, cs.TotalDiffLines = capDiff(diffOut, opts.MaxDiffLines)
	}

	return cs, nil
}

// resolveWorkDir picks the directory git runs in: explicit argument, then
// the configured default, then the process working directory. Each step
// degrades to the next rather than failing the call.
func (a *Analyzer) resolveWorkDir(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if a.defaultWorkDir != "" {
		return a.defaultWorkDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return cwd, nil
}

// capDiff applies the line cap to the raw diff text. When the diff exceeds
// maxLines, the first maxLines lines are kept and a truncation notice is
// appended telling the caller how to retrieve more.
func capDiff(diff string, maxLines int) (text string, truncated bool, total int) {
	lines := strings.Split(diff, "\n")
	total = len(lines)
	if total <= maxLines {
		return diff, false, total
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(lines[:maxLines], "\n"))
	sb.WriteString(fmt.Sprintf("\n\n... Output truncated. Showing %d of %d lines...", maxLines, total))
	sb.WriteString("\n... Use max_diff_lines parameter to see more...")
	return sb.String(), true, total
}

// runGit executes a git command in dir and returns its stdout. A non-zero
// exit becomes a *GitError with the command's stderr attached.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		gerr := &GitError{Args: args, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			gerr.Stderr = string(exitErr.Stderr)
		}
		return "", gerr
	}
	return string(out), nil
}
