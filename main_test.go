package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInitializedOncePerRun(t *testing.T) {
	calls := 0
	orig := initConfig
	initConfig = func() { calls++ }
	defer func() { initConfig = orig }()

	for i := 0; i < 3; i++ {
		root := newRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs([]string{"version"})
		require.NoError(t, root.Execute())
		assert.NotEmpty(t, out.String())
	}
	assert.Equal(t, 3, calls)
}
