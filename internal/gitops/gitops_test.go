package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) Committer {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	return Committer{Dir: dir, AuthorName: "Test Author", AuthorEmail: "test@example.com"}
}

func TestIsRepo(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	c := newRepo(t)
	assert.True(t, IsRepo(c.Dir), "initialized dir should be a repo")
}

func TestSnapshot(t *testing.T) {
	c := newRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir, "installments.csv"), []byte("id\n"), 0o644))

	dirty, err := c.Dirty()
	require.NoError(t, err)
	assert.True(t, dirty)

	hash, err := c.Snapshot("emi add: HDFC")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	log := exec.Command("git", "log", "--format=%s|%an <%ae>", "-1")
	log.Dir = c.Dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "emi add: HDFC|Test Author <test@example.com>")
}

func TestSnapshot_Clean(t *testing.T) {
	c := newRepo(t)
	_, err := c.Snapshot("nothing")
	assert.ErrorIs(t, err, ErrNothingToCommit)
}
