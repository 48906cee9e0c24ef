package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemory_Forms(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"http://localhost:8080/search?query=foo&max_hits=10&index=logs", "query=foo&max_hits=10&index=logs"},
		{"/search?index=logs", "index=logs"},
		{"?query=foo", "query=foo"},
		{"query=foo&index=logs", "query=foo&index=logs"},
	}
	for _, tt := range tests {
		m, err := NewMemory(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, m.Current(), tt.raw)
	}
}

func TestMemory_ReadParams(t *testing.T) {
	m, err := NewMemory("?query=error%20AND%20x&max_hits=10&index=logs")
	require.NoError(t, err)

	p := m.ReadParams()
	assert.Equal(t, "error AND x", p.Get("query"))
	assert.Equal(t, "10", p.Get("max_hits"))
	assert.Equal(t, "logs", p.Get("index"))
}

func TestMemory_PushBackForward(t *testing.T) {
	var m Memory
	assert.Equal(t, "", m.Current())

	m.PushParams("?index=a")
	m.PushParams("index=b")
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, "index=b", m.Current())

	require.True(t, m.Back())
	assert.Equal(t, "index=a", m.Current())
	require.True(t, m.Forward())
	assert.Equal(t, "index=b", m.Current())
	assert.False(t, m.Forward())

	require.True(t, m.Back())
	require.True(t, m.Back())
	assert.False(t, m.Back())

	// Pushing after going back drops the forward entries.
	m.PushParams("?index=c")
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "index=c", m.Current())
	assert.False(t, m.Forward())
}
