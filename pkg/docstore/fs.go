package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/natefinch/atomic"
	"github.com/sirupsen/logrus"
)

// FS is a Store over a directory tree. Document paths are slash-separated
// and relative to the root.
type FS struct {
	hub

	root   string
	logger *logrus.Entry

	mu     sync.Mutex
	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFS creates a store rooted at root.
func NewFS(root string, logger *logrus.Entry) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	return &FS{
		hub:    newHub(),
		root:   abs,
		logger: logger.WithField("component", "docstore"),
	}, nil
}

// Root returns the absolute root directory.
func (s *FS) Root() string {
	return s.root
}

func (s *FS) abs(p string) (string, string, error) {
	c, err := Clean(p)
	if err != nil {
		return "", "", err
	}
	return c, filepath.Join(s.root, filepath.FromSlash(c)), nil
}

func (s *FS) rel(abs string) (string, bool) {
	r, err := filepath.Rel(s.root, abs)
	if err != nil || r == "." || strings.HasPrefix(r, "..") {
		return "", false
	}
	return filepath.ToSlash(r), true
}

func (s *FS) Read(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c, full, err := s.abs(p)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read %s: %w", c, ErrNotFound)
		}
		return "", fmt.Errorf("read %s: %w", c, err)
	}
	return string(b), nil
}

// Write replaces the document in place. The content is written to a
// temporary file next to it and renamed over the original.
func (s *FS) Write(ctx context.Context, p, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c, full, err := s.abs(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("ensure directory for %s: %w", c, err)
	}
	if err := atomic.WriteFile(full, strings.NewReader(text)); err != nil {
		return fmt.Errorf("write %s: %w", c, err)
	}
	return nil
}

func (s *FS) List(ctx context.Context, scope string) ([]string, error) {
	start := s.root
	if sc := strings.Trim(scope, "/"); sc != "" {
		_, full, err := s.abs(sc)
		if err != nil {
			return nil, err
		}
		start = full
	}

	var paths []string
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p != start && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(d.Name()) || !IsDocument(d.Name()) {
			return nil
		}
		if r, ok := s.rel(p); ok {
			paths = append(paths, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Watch starts translating filesystem notifications into document events.
// It returns once the watcher is running; Close stops it.
func (s *FS) Watch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fsw != nil {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	s.fsw = fsw
	watched := s.addTree(s.root)

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.WithField("dirs", watched).Info("document watcher started")
	return nil
}

// addTree watches dir and every non-hidden directory below it.
func (s *FS) addTree(dir string) int {
	watched := 0
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != s.root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := s.fsw.Add(p); err != nil {
			s.logger.WithError(err).WithField("path", p).Warn("cannot watch directory")
			return nil
		}
		watched++
		return nil
	})
	return watched
}

// Close stops the watcher.
func (s *FS) Close() error {
	s.mu.Lock()
	fsw := s.fsw
	cancel := s.cancel
	s.fsw = nil
	s.mu.Unlock()

	if fsw == nil {
		return nil
	}
	cancel()
	err := fsw.Close()
	s.wg.Wait()
	return err
}

func (s *FS) loop(ctx context.Context) {
	defer s.wg.Done()

	s.mu.Lock()
	fsw := s.fsw
	s.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			s.handleEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			s.logger.WithError(err).Warn("document watcher error")
		}
	}
}

func (s *FS) handleEvent(event fsnotify.Event) {
	// New directory: start watching it and report documents moved in with it.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			s.mu.Lock()
			if s.fsw != nil {
				s.addTree(event.Name)
			}
			s.mu.Unlock()
			_ = filepath.WalkDir(event.Name, func(p string, d fs.DirEntry, err error) error {
				if err == nil && !d.IsDir() && IsDocument(p) {
					if r, ok := s.rel(p); ok {
						s.publish(Event{Kind: EventCreate, Path: r})
					}
				}
				return nil
			})
			return
		}
	}

	r, ok := s.rel(event.Name)
	if !ok || isHidden(filepath.Base(r)) {
		return
	}
	if !IsDocument(r) {
		// The path is gone, so there is no telling whether it was a
		// directory. Subscribers treat a non-document delete as one.
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			s.wg.Add(1)
			go s.dropWatch(event.Name)
			s.logger.WithField("path", r).Debug("directory removed or moved away")
			s.publish(Event{Kind: EventDelete, Path: r})
		}
		return
	}

	var kind EventKind
	switch {
	case event.Has(fsnotify.Create):
		kind = EventCreate
	case event.Has(fsnotify.Write):
		kind = EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// A rename reports the old name here; the new name arrives as Create.
		kind = EventDelete
	default:
		return
	}
	s.logger.WithFields(logrus.Fields{"path": r, "kind": kind}).Debug("document changed")
	s.publish(Event{Kind: kind, Path: r})
}

// dropWatch stops watching dir and everything below it. A directory moved
// out of the root keeps its inotify watch otherwise. It runs off the event
// loop so that Remove never waits on the loop it is called from.
func (s *FS) dropWatch(dir string) {
	defer s.wg.Done()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fsw == nil {
		return
	}
	prefix := dir + string(filepath.Separator)
	for _, w := range s.fsw.WatchList() {
		if w == dir || strings.HasPrefix(w, prefix) {
			_ = s.fsw.Remove(w)
		}
	}
}
