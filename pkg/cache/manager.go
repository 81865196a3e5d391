package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/openclimdata/subgrib/pkg/errors"
	"github.com/openclimdata/subgrib/pkg/fsutil"
)

// Info represents cache information.
type Info struct {
	Directory  string
	TotalSize  int64
	IndexFiles int
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	TotalFreed int64
	Files      int
}

// Manager performs maintenance operations on a cache directory.
type Manager struct {
	directory string
}

// NewManager creates a cache manager for the given directory.
func NewManager(directory string) *Manager {
	return &Manager{directory: directory}
}

// NewDefaultManager creates a cache manager on the user cache directory.
func NewDefaultManager() (*Manager, error) {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user cache directory")
	}
	return NewManager(cacheDir), nil
}

// GetDirectory returns the cache directory path.
func (m *Manager) GetDirectory() string { return m.directory }

// GetInfo returns size and entry-count information about the index cache.
func (m *Manager) GetInfo() (*Info, error) {
	info := &Info{Directory: m.directory}

	size, files, err := dirSizeAndFiles(filepath.Join(m.directory, indexSubdir))
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to get index cache info")
	}
	info.TotalSize = size
	info.IndexFiles = files
	return info, nil
}

// Clean removes all cached index record sets and reports the space freed.
func (m *Manager) Clean() (*CleanResult, error) {
	dir := filepath.Join(m.directory, indexSubdir)
	size, files, err := dirSizeAndFiles(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return &CleanResult{}, nil
		}
		return nil, errors.Wrap(err, "failed to inspect index cache")
	}
	if err := os.RemoveAll(dir); err != nil {
		return nil, errors.Wrap(err, "failed to clean index cache")
	}
	return &CleanResult{TotalFreed: size, Files: files}, nil
}

// CleanOlderThan removes cached entries whose modification time is older
// than maxAge.
func (m *Manager) CleanOlderThan(maxAge time.Duration) (*CleanResult, error) {
	dir := filepath.Join(m.directory, indexSubdir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return &CleanResult{}, nil
		}
		return nil, errors.Wrap(err, "failed to read index cache")
	}

	result := &CleanResult{}
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		if fi.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return result, errors.Wrapf(err, "failed to remove %s", entry.Name())
		}
		result.TotalFreed += fi.Size()
		result.Files++
	}
	return result, nil
}

func dirSizeAndFiles(dir string) (int64, int, error) {
	var size int64
	var files int
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
			files++
		}
		return nil
	})
	return size, files, err
}
