package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCache_SetThenGet(t *testing.T) {
	c := New(time.Hour)

	c.Set("key", []byte("value"), time.Minute)

	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)
}

func TestTTLCache_GetMissingKey(t *testing.T) {
	c := New(time.Hour)

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestTTLCache_ExpiredEntryNotReturned(t *testing.T) {
	c := New(time.Hour)

	c.Set("key", []byte("value"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestTTLCache_StatsTracksHitsAndMisses(t *testing.T) {
	c := New(time.Hour)
	c.Set("key", []byte("value"), time.Minute)

	_, _ = c.Get("key")
	_, _ = c.Get("key")
	_, _ = c.Get("missing")

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestTTLCache_SweepEvictsExpiredEntries(t *testing.T) {
	c := New(5 * time.Millisecond)
	c.Set("key", []byte("value"), time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	c.mu.RLock()
	_, stillPresent := c.entries["key"]
	c.mu.RUnlock()
	assert.False(t, stillPresent)
}
