package docstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func TestFSReadWriteList(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, root, "todo.md", "- [ ] a #task\n")
	writeFile(t, root, "projects/x.md", "# X\n")
	writeFile(t, root, ".obsidian/workspace.md", "ignored")
	writeFile(t, root, "notes/photo.jpg", "ignored")

	s, err := NewFS(root, nil)
	require.NoError(t, err)

	paths, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"projects/x.md", "todo.md"}, paths)

	paths, err = s.List(ctx, "projects")
	require.NoError(t, err)
	assert.Equal(t, []string{"projects/x.md"}, paths)

	text, err := s.Read(ctx, "todo.md")
	require.NoError(t, err)
	assert.Equal(t, "- [ ] a #task\n", text)

	_, err = s.Read(ctx, "nope.md")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Write(ctx, "todo.md", "- [x] a #done\n"))
	b, err := os.ReadFile(filepath.Join(root, "todo.md"))
	require.NoError(t, err)
	assert.Equal(t, "- [x] a #done\n", string(b))

	require.NoError(t, s.Write(ctx, "logs/done.md", "new\n"))
	_, err = os.Stat(filepath.Join(root, "logs", "done.md"))
	assert.NoError(t, err)

	assert.ErrorIs(t, s.Write(ctx, "../escape.md", "x"), ErrOutsideRoot)
}

func TestFSWatchPublishesDocumentEvents(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "todo.md", "a\n")

	s, err := NewFS(root, nil)
	require.NoError(t, err)
	require.NoError(t, s.Watch(context.Background()))
	defer s.Close()

	var mu sync.Mutex
	seen := map[string]bool{}
	record := func(ev Event) {
		mu.Lock()
		seen[ev.Kind.String()+":"+ev.Path] = true
		mu.Unlock()
	}
	s.Subscribe(EventCreate, record)
	s.Subscribe(EventModify, record)
	s.Subscribe(EventDelete, record)

	writeFile(t, root, "new.md", "b\n")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen["create:new.md"]
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(root, "todo.md")))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen["delete:todo.md"]
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFSWatchReportsDirectoryMovedAway(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, root, "work/a.md", "- [ ] x #task\n")

	s, err := NewFS(root, nil)
	require.NoError(t, err)
	require.NoError(t, s.Watch(context.Background()))
	defer s.Close()

	deleted := make(chan string, 8)
	s.Subscribe(EventDelete, func(ev Event) { deleted <- ev.Path })

	require.NoError(t, os.Rename(filepath.Join(root, "work"), filepath.Join(outside, "work")))
	select {
	case p := <-deleted:
		assert.Equal(t, "work", p)
	case <-time.After(2 * time.Second):
		t.Fatal("no delete event for the moved directory")
	}
}
