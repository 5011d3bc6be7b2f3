package fs_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/telcheck/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ io.Writer = (*fs.File)(nil)

func TestFile_WritesNothingUntilCommit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reports", "summary.md")
	f, err := fs.Create(path)
	require.NoError(t, err)

	_, err = io.WriteString(f, "# Report\n")
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "report should not exist until commit")

	require.NoError(t, f.Commit())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Report\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be gone after commit")
}

func TestFile_CommitReplacesExistingReport(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "summary.md")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	f, err := fs.Create(path)
	require.NoError(t, err)
	_, err = io.WriteString(f, "new")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	require.NoError(t, f.Commit())

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestFile_AbortKeepsExistingReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "summary.md")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	f, err := fs.Create(path)
	require.NoError(t, err)
	_, err = io.WriteString(f, "partial")
	require.NoError(t, err)

	require.NoError(t, f.Abort())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFile_AbortAfterCommitIsNoop(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "summary.md")
	f, err := fs.Create(path)
	require.NoError(t, err)

	require.NoError(t, f.Commit())
	require.NoError(t, f.Abort())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
