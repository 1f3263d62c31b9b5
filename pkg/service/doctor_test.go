package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityConflicts(t *testing.T) {
	s, mem := newService(t, map[string]string{
		"todo.md": "- [ ] a #task #p2 #urgent\n- [ ] b #task #p1\n- [ ] c #task #snooze #p0\n",
	})

	conflicts := s.PriorityConflicts()
	require.Len(t, conflicts, 2)
	assert.Equal(t, []string{"#p2", "#urgent"}, conflicts[0].Tags)
	assert.Equal(t, "#urgent", conflicts[0].Keep)
	assert.Equal(t, "#p0", conflicts[1].Keep)

	ctx := context.Background()
	for _, c := range conflicts {
		ok, err := s.FixConflict(ctx, c)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	text, err := mem.Read(ctx, "todo.md")
	require.NoError(t, err)
	assert.Equal(t, "- [ ] a #task #urgent\n- [ ] b #task #p1\n- [ ] c #task #p0\n", text)
	assert.Empty(t, s.PriorityConflicts())
}
