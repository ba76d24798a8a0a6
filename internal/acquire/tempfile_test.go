package acquire_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendbot/internal/acquire"
)

func TestTempFile_ReleaseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	f := &acquire.TempFile{Path: path}
	assert.NoError(t, f.Release())
	assert.NoFileExists(t, path)
	assert.NoError(t, f.Release())
}

func TestTempFile_ReleaseMissingFile(t *testing.T) {
	f := &acquire.TempFile{Path: filepath.Join(t.TempDir(), "gone.png")}
	assert.NoError(t, f.Release())

	var nilFile *acquire.TempFile
	assert.NoError(t, nilFile.Release())
}

func TestPurgeStale(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	old := filepath.Join(dir, "old.png")
	fresh := filepath.Join(dir, "fresh.png")
	require.NoError(t, os.WriteFile(old, []byte("o"), 0o600))
	require.NoError(t, os.WriteFile(fresh, []byte("f"), 0o600))
	require.NoError(t, os.Chtimes(old, now.Add(-2*time.Hour), now.Add(-2*time.Hour)))

	n, err := acquire.PurgeStale(dir, time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)

	n, err = acquire.PurgeStale(filepath.Join(dir, "missing"), time.Hour, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}
