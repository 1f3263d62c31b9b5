// Package docstore is the host document store: reading, writing and listing
// markdown documents and notifying subscribers when they change.
package docstore

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/mattsolo1/grove-tasks/pkg/events"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrOutsideRoot is returned for paths that escape the store root.
	ErrOutsideRoot = errors.New("path outside store root")
)

// EventKind is the kind of a document change.
type EventKind int

const (
	EventCreate EventKind = iota
	EventModify
	EventDelete
	EventRename
)

func (k EventKind) String() string {
	switch k {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	}
	return "unknown"
}

// Event describes one change. OldPath is set for renames only.
type Event struct {
	Kind    EventKind
	Path    string
	OldPath string
}

// Store is everything the indexing engine needs from its host.
type Store interface {
	Read(ctx context.Context, path string) (string, error)
	Write(ctx context.Context, path, text string) error
	// List returns the document paths under scope ("" for everything),
	// sorted.
	List(ctx context.Context, scope string) ([]string, error)
	// Subscribe registers handler for one kind of change. The returned
	// function removes it.
	Subscribe(kind EventKind, handler events.Handler[Event]) (unsubscribe func())
}

// IsDocument reports whether p names a markdown document.
func IsDocument(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	return ext == ".md" || ext == ".markdown"
}

// Clean normalizes a document path to a relative, slash-separated form.
func Clean(p string) (string, error) {
	c := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if c == "." || c == "/" || c == ".." || strings.HasPrefix(c, "../") {
		return "", ErrOutsideRoot
	}
	return strings.TrimPrefix(c, "/"), nil
}

// InScope reports whether p lies under scope. An empty scope covers
// everything.
func InScope(p, scope string) bool {
	scope = strings.Trim(scope, "/")
	if scope == "" || scope == "." {
		return true
	}
	return p == scope || strings.HasPrefix(p, scope+"/")
}

// hub fans events out per kind.
type hub struct {
	buses map[EventKind]*events.Bus[Event]
}

func newHub() hub {
	h := hub{buses: make(map[EventKind]*events.Bus[Event])}
	for _, k := range []EventKind{EventCreate, EventModify, EventDelete, EventRename} {
		h.buses[k] = events.NewBus[Event]()
	}
	return h
}

func (h hub) Subscribe(kind EventKind, handler events.Handler[Event]) func() {
	bus, ok := h.buses[kind]
	if !ok {
		return func() {}
	}
	tok := bus.Subscribe(handler)
	return func() { bus.Unsubscribe(tok) }
}

func (h hub) publish(ev Event) {
	if bus, ok := h.buses[ev.Kind]; ok {
		bus.Publish(ev)
	}
}
