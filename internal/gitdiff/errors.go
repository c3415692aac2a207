package gitdiff

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMaxDiffLines is returned when a caller asks for a non-positive
// diff line cap.
var ErrInvalidMaxDiffLines = errors.New("max_diff_lines must be positive")

// GitError indicates that a required git query failed. It carries the
// command's stderr so callers can report what git actually complained about.
type GitError struct {
	Args   []string
	Stderr string
	Err    error
}

// Error implements the error interface.
func (e *GitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
}

// Unwrap returns the underlying error.
func (e *GitError) Unwrap() error {
	return e.Err
}

// AnalysisError wraps any non-git failure during change analysis.
type AnalysisError struct {
	Err error
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	return fmt.Sprintf("change analysis failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *AnalysisError) Unwrap() error {
	return e.Err
}
