package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemo(t *testing.T) {
	calls := map[string]int{}
	m, err := NewMemo(2, func(key string) bool {
		calls[key]++
		return strings.HasPrefix(key, "ok")
	})
	require.NoError(t, err)

	assert.True(t, m.Check("ok-1"))
	assert.True(t, m.Check("ok-1"))
	assert.False(t, m.Check("bad"))
	assert.False(t, m.Check("bad"))
	assert.Equal(t, 1, calls["ok-1"])
	assert.Equal(t, 1, calls["bad"])

	// ok-1 is least recently used and gets evicted
	assert.True(t, m.Check("ok-2"))
	assert.Equal(t, 2, m.Len())
	assert.True(t, m.Check("ok-1"))
	assert.Equal(t, 2, calls["ok-1"])
}

func TestNewMemoRejectsBadSize(t *testing.T) {
	_, err := NewMemo(0, func(string) bool { return true })
	require.Error(t, err)
	assert.Panics(t, func() { MustMemo(-1, func(string) bool { return true }) })
}
