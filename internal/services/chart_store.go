package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ChartStore keeps one spending chart PNG per user under a directory.
//
// Files are replaced atomically so readers never see a partial PNG. Renders
// for the same user run one at a time, each over its own snapshot, so the
// last completed write reflects the latest data.
type ChartStore struct {
	dir   string
	locks sync.Map // user id -> *semaphore.Weighted
}

func NewChartStore(dir string) *ChartStore {
	return &ChartStore{dir: dir}
}

// Path returns the chart file location for userID.
func (s *ChartStore) Path(userID string) string {
	return filepath.Join(s.dir, "chart_"+url.PathEscape(userID)+".png")
}

func (s *ChartStore) acquire(ctx context.Context, userID string) (release func(), err error) {
	v, _ := s.locks.LoadOrStore(userID, semaphore.NewWeighted(1))
	sem := v.(*semaphore.Weighted)
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}

// Store runs render and persists its output for userID, returning the file
// path and the bytes written. A nil PNG means the user has nothing to chart:
// any previous file is removed. When render fails, or ctx ends while waiting
// for another render of the same user, the existing file is left untouched.
func (s *ChartStore) Store(ctx context.Context, userID string, render func() ([]byte, error)) (path string, png []byte, err error) {
	release, err := s.acquire(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	defer release()

	png, err = render()
	if err != nil {
		return "", nil, err
	}
	path = s.Path(userID)
	if png == nil {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("remove stale chart: %w", err)
		}
		return path, nil, nil
	}
	if err := s.write(path, png); err != nil {
		return "", nil, err
	}
	return path, png, nil
}

// Read returns the stored chart for userID, or os.ErrNotExist.
func (s *ChartStore) Read(userID string) ([]byte, error) {
	return os.ReadFile(s.Path(userID))
}

func (s *ChartStore) write(path string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".chart-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp chart: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write chart: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync chart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close chart: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod chart: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace chart: %w", err)
	}
	return nil
}
