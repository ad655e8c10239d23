package static

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// DirSource serves files from a directory on disk.
//
// When watching is enabled the source keeps an index of the regular files
// below the directory. Lookups for names outside the index fail without
// touching the disk. Any change reported by fsnotify drops the index and the
// next lookup rebuilds it.
type DirSource struct {
	dir    string
	logger *slog.Logger

	mu      sync.RWMutex
	index   map[string]struct{}
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	once    sync.Once
}

// NewDirSource creates a source serving dir. With watch set, changes below
// dir are tracked through fsnotify until Close is called.
func NewDirSource(dir string, watch bool, logger *slog.Logger) (*DirSource, error) {
	if logger == nil {
		logger = slog.Default().With("component", "static")
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat content directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content path is not a directory: %s", dir)
	}

	s := &DirSource{
		dir:    dir,
		logger: logger,
	}
	if !watch {
		return s, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	s.watcher = watcher
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	if err := s.addDirectories(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch content directory: %w", err)
	}
	go s.watchLoop()

	logger.Info("watching static content directory", "path", dir)
	return s, nil
}

// Open implements router.ContentSource.
func (s *DirSource) Open(name string) (io.ReadCloser, string, bool) {
	rel := cleanName(name)
	if rel == "" {
		return nil, "", false
	}
	if s.watcher != nil && !s.indexed(rel) {
		return nil, "", false
	}

	f, err := os.Open(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, "", false
	}
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		f.Close()
		return nil, "", false
	}
	return f, MimeType(name), true
}

// Close stops watching. It is safe to call more than once.
func (s *DirSource) Close() error {
	if s.watcher == nil {
		return nil
	}
	var err error
	s.once.Do(func() {
		close(s.stopCh)
		<-s.doneCh
		if closeErr := s.watcher.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close watcher: %w", closeErr)
		}
	})
	return err
}

// indexed reports whether rel is a known file, rebuilding the index if it
// was invalidated.
func (s *DirSource) indexed(rel string) bool {
	s.mu.RLock()
	index := s.index
	s.mu.RUnlock()

	if index == nil {
		built, err := s.buildIndex()
		if err != nil {
			s.logger.Error("failed to index static content", "path", s.dir, "error", err)
			return false
		}
		s.mu.Lock()
		if s.index == nil {
			s.index = built
		}
		index = s.index
		s.mu.Unlock()
	}

	_, ok := index[rel]
	return ok
}

func (s *DirSource) buildIndex() (map[string]struct{}, error) {
	index := make(map[string]struct{})
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		index[filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("static content indexed", "path", s.dir, "files", len(index))
	return index, nil
}

func (s *DirSource) invalidate() {
	s.mu.Lock()
	s.index = nil
	s.mu.Unlock()
}

// addDirectories watches dir and all of its subdirectories.
func (s *DirSource) addDirectories(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := s.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", path, err)
			}
		}
		return nil
	})
}

func (s *DirSource) watchLoop() {
	defer close(s.doneCh)

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			s.logger.Debug("static content changed",
				"file", event.Name,
				"op", event.Op.String(),
			)
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := s.addDirectories(event.Name); err != nil {
						s.logger.Error("failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			s.invalidate()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("file watcher error", "error", err)

		case <-s.stopCh:
			return
		}
	}
}
