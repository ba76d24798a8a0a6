package acquire

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"spendbot/internal/domain"
)

// TempFile is a downloaded document on local disk. It is owned by exactly one session
// and removed by Release.
type TempFile struct {
	Path        string
	ContentType string
	FileType    domain.FileType
	Size        int64

	once       sync.Once
	releaseErr error
}

// ReadAll returns the file contents.
func (f *TempFile) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading temp file: %w", err)
	}
	return data, nil
}

// Release deletes the file. Only the first call does any work; a file that is already
// gone is not an error.
func (f *TempFile) Release() error {
	if f == nil {
		return nil
	}
	f.once.Do(func() {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			f.releaseErr = fmt.Errorf("removing temp file %s: %w", f.Path, err)
		}
	})
	return f.releaseErr
}

// PurgeStale removes regular files in dir last modified before now-maxAge and returns
// how many were removed. A missing dir is not an error.
func PurgeStale(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading temp dir: %w", err)
	}
	cutoff := now.Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
