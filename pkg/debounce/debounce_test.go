package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls map[string]int
}

func newRecorder() *recorder {
	return &recorder{calls: make(map[string]int)}
}

func (r *recorder) fn(key string) {
	r.mu.Lock()
	r.calls[key]++
	r.mu.Unlock()
}

func (r *recorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[key]
}

func TestLeadingEdgeRunsImmediately(t *testing.T) {
	rec := newRecorder()
	d := New(time.Hour, rec.fn)
	defer d.Stop()

	d.Trigger("a.md")

	assert.Equal(t, 1, rec.count("a.md"))
	assert.False(t, d.Pending("a.md"))
}

func TestBurstCoalescesIntoOneTrailingCall(t *testing.T) {
	rec := newRecorder()
	d := New(30*time.Millisecond, rec.fn)
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Trigger("a.md")
	}
	assert.Equal(t, 1, rec.count("a.md"))
	assert.True(t, d.Pending("a.md"))

	require.Eventually(t, func() bool { return rec.count("a.md") == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 2, rec.count("a.md"))
}

func TestSingleTriggerHasNoTrailingCall(t *testing.T) {
	rec := newRecorder()
	d := New(10*time.Millisecond, rec.fn)
	defer d.Stop()

	d.Trigger("a.md")
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, rec.count("a.md"))

	// The window has closed, so the next change is a new leading edge.
	d.Trigger("a.md")
	assert.Equal(t, 2, rec.count("a.md"))
}

func TestKeysAreIndependent(t *testing.T) {
	rec := newRecorder()
	d := New(30*time.Millisecond, rec.fn)
	defer d.Stop()

	d.Trigger("a.md")
	d.Trigger("a.md")
	for i := 0; i < 10; i++ {
		d.Trigger("b.md")
	}

	assert.Equal(t, 1, rec.count("a.md"))
	assert.Equal(t, 1, rec.count("b.md"))

	require.Eventually(t, func() bool {
		return rec.count("a.md") == 2 && rec.count("b.md") == 2
	}, time.Second, 5*time.Millisecond)
}

func TestFlushAndCancel(t *testing.T) {
	rec := newRecorder()
	d := New(time.Hour, rec.fn)
	defer d.Stop()

	d.Trigger("a.md")
	d.Trigger("a.md")
	d.Trigger("b.md")
	d.Trigger("b.md")
	d.Cancel("b.md")

	d.Flush()

	assert.Equal(t, 2, rec.count("a.md"))
	assert.Equal(t, 1, rec.count("b.md"))
}

func TestStopIgnoresLaterTriggers(t *testing.T) {
	rec := newRecorder()
	d := New(10*time.Millisecond, rec.fn)

	d.Trigger("a.md")
	d.Trigger("a.md")
	d.Stop()
	d.Trigger("a.md")
	time.Sleep(40 * time.Millisecond)

	assert.Equal(t, 1, rec.count("a.md"))
}

func TestZeroWindowPassesThrough(t *testing.T) {
	rec := newRecorder()
	d := New(0, rec.fn)

	d.Trigger("a.md")
	d.Trigger("a.md")

	assert.Equal(t, 2, rec.count("a.md"))
}
