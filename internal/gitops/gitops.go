package gitops

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNothingToCommit is returned by Snapshot when the tree is clean.
var ErrNothingToCommit = errors.New("nothing to commit")

// Init initializes a new git repository at dir.
func Init(dir string) error {
	cmd := exec.Command("git", "init", "--quiet")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git init: %s: %w", out, err)
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Committer snapshots the data directory after writes.
type Committer struct {
	Dir         string
	AuthorName  string
	AuthorEmail string
}

// Dirty reports whether the working tree has uncommitted changes.
func (c Committer) Dirty() (bool, error) {
	status := c.git("status", "--porcelain")
	out, err := status.Output()
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return len(strings.TrimSpace(string(out))) > 0, nil
}

// Snapshot stages every file and commits with message. It returns the short
// commit hash, or ErrNothingToCommit when there is no change.
func (c Committer) Snapshot(message string) (string, error) {
	dirty, err := c.Dirty()
	if err != nil {
		return "", err
	}
	if !dirty {
		return "", ErrNothingToCommit
	}

	if out, err := c.git("add", "-A").CombinedOutput(); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}
	if out, err := c.git("commit", "--quiet", "-m", message).CombinedOutput(); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	out, err := c.git("rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// git builds a command in c.Dir with author and committer set from c, so
// commits succeed without a global git identity.
func (c Committer) git(args ...string) *exec.Cmd {
	cmd := exec.Command("git", args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME="+c.AuthorName,
		"GIT_AUTHOR_EMAIL="+c.AuthorEmail,
		"GIT_COMMITTER_NAME="+c.AuthorName,
		"GIT_COMMITTER_EMAIL="+c.AuthorEmail,
	)
	return cmd
}
