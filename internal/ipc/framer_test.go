package ipc

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineFramerSplitsAcrossReads(t *testing.T) {
	var f LineFramer

	require.NoError(t, f.Feed([]byte("pi")))
	assert.Empty(t, slices.Collect(f.Lines()))
	assert.Equal(t, 2, f.Buffered())

	require.NoError(t, f.Feed([]byte("ng\nlist-work")))
	assert.Equal(t, []string{"ping"}, slices.Collect(f.Lines()))

	require.NoError(t, f.Feed([]byte("spaces\n\nx")))
	assert.Equal(t, []string{"list-workspaces", ""}, slices.Collect(f.Lines()))
	assert.Equal(t, 1, f.Buffered())
}

func TestLineFramerStopKeepsRemainder(t *testing.T) {
	var f LineFramer
	require.NoError(t, f.Feed([]byte("a\nb\nc\n")))

	for line := range f.Lines() {
		assert.Equal(t, "a", line)
		break
	}
	assert.Equal(t, []string{"b", "c"}, slices.Collect(f.Lines()))
	assert.Zero(t, f.Buffered())
}

func TestLineFramerLimit(t *testing.T) {
	var f LineFramer
	require.NoError(t, f.Feed([]byte(strings.Repeat("x", MaxLineBuffer))))
	assert.ErrorIs(t, f.Feed([]byte("y")), ErrLineTooLong)
}

func TestLineFramerConsumedBytesDoNotCount(t *testing.T) {
	var f LineFramer
	chunk := []byte(strings.Repeat("x", 1023) + "\n")
	for range 200 {
		require.NoError(t, f.Feed(chunk))
		assert.Len(t, slices.Collect(f.Lines()), 1)
	}
	assert.Zero(t, f.Buffered())
}

func TestLineFramerReset(t *testing.T) {
	var f LineFramer
	require.NoError(t, f.Feed([]byte("partial")))
	f.Reset()
	assert.Zero(t, f.Buffered())
	require.NoError(t, f.Feed([]byte("next\n")))
	assert.Equal(t, []string{"next"}, slices.Collect(f.Lines()))
}
