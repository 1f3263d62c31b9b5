package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store. Every change publishes its event
// synchronously after the store lock is released.
type Memory struct {
	hub

	mu        sync.RWMutex
	docs      map[string]string
	readErrs  map[string]error
	writeErrs map[string]error
}

// NewMemory creates a Memory store seeded with docs.
func NewMemory(docs map[string]string) *Memory {
	m := &Memory{
		hub:       newHub(),
		docs:      make(map[string]string, len(docs)),
		readErrs:  make(map[string]error),
		writeErrs: make(map[string]error),
	}
	for p, text := range docs {
		if c, err := Clean(p); err == nil {
			m.docs[c] = text
		}
	}
	return m
}

func (m *Memory) Read(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c, err := Clean(p)
	if err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.readErrs[c]; err != nil {
		return "", err
	}
	text, ok := m.docs[c]
	if !ok {
		return "", fmt.Errorf("read %s: %w", c, ErrNotFound)
	}
	return text, nil
}

func (m *Memory) Write(ctx context.Context, p, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c, err := Clean(p)
	if err != nil {
		return err
	}
	m.mu.Lock()
	if err := m.writeErrs[c]; err != nil {
		m.mu.Unlock()
		return err
	}
	_, existed := m.docs[c]
	m.docs[c] = text
	m.mu.Unlock()

	kind := EventModify
	if !existed {
		kind = EventCreate
	}
	m.publish(Event{Kind: kind, Path: c})
	return nil
}

func (m *Memory) List(ctx context.Context, scope string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var paths []string
	for p := range m.docs {
		if IsDocument(p) && InScope(p, scope) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Delete removes a document.
func (m *Memory) Delete(p string) error {
	c, err := Clean(p)
	if err != nil {
		return err
	}
	m.mu.Lock()
	if _, ok := m.docs[c]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("delete %s: %w", c, ErrNotFound)
	}
	delete(m.docs, c)
	m.mu.Unlock()

	m.publish(Event{Kind: EventDelete, Path: c})
	return nil
}

// DeleteDir removes every document below dir and publishes a single delete
// event for dir itself, the way the filesystem reports a directory that
// went away.
func (m *Memory) DeleteDir(dir string) error {
	c, err := Clean(dir)
	if err != nil {
		return err
	}
	prefix := c + "/"
	m.mu.Lock()
	n := 0
	for p := range m.docs {
		if strings.HasPrefix(p, prefix) {
			delete(m.docs, p)
			n++
		}
	}
	m.mu.Unlock()
	if n == 0 {
		return fmt.Errorf("delete %s: %w", c, ErrNotFound)
	}

	m.publish(Event{Kind: EventDelete, Path: c})
	return nil
}

// Rename moves a document to a new path.
func (m *Memory) Rename(oldPath, newPath string) error {
	from, err := Clean(oldPath)
	if err != nil {
		return err
	}
	to, err := Clean(newPath)
	if err != nil {
		return err
	}
	m.mu.Lock()
	text, ok := m.docs[from]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("rename %s: %w", from, ErrNotFound)
	}
	delete(m.docs, from)
	m.docs[to] = text
	m.mu.Unlock()

	m.publish(Event{Kind: EventRename, Path: to, OldPath: from})
	return nil
}

// SetText replaces a document without publishing an event, simulating an
// edit the watcher has not reported yet.
func (m *Memory) SetText(p, text string) {
	if c, err := Clean(p); err == nil {
		m.mu.Lock()
		m.docs[c] = text
		m.mu.Unlock()
	}
}

// FailReads makes every Read of p return err. A nil err clears it.
func (m *Memory) FailReads(p string, err error) {
	c, _ := Clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.readErrs, c)
		return
	}
	m.readErrs[c] = err
}

// FailWrites makes every Write of p return err. A nil err clears it.
func (m *Memory) FailWrites(p string, err error) {
	c, _ := Clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.writeErrs, c)
		return
	}
	m.writeErrs[c] = err
}
