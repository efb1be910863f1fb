package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetSetRoundTrip(t *testing.T) {
	s := New(true)
	e := Entry{Status: 200, ContentType: "application/json", Body: []byte(`{"ok":true}`)}

	_, ok := s.Get("k")
	assert.False(t, ok)

	s.Set("k", e, time.Minute)
	got, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, e, got)
}

func TestSetOverwritesExistingKey(t *testing.T) {
	s := New(true)
	s.Set("k", Entry{Body: []byte("old")}, time.Minute)
	s.Set("k", Entry{Body: []byte("new")}, time.Minute)

	got, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("new"), got.Body)
	assert.Equal(t, 1, s.Len())
}

func TestLazyExpiry(t *testing.T) {
	s := New(true)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	s.Set("k", Entry{Body: []byte("v")}, 30*time.Second)

	clock = clock.Add(29 * time.Second)
	_, ok := s.Get("k")
	assert.True(t, ok, "entry should survive inside the TTL")

	clock = clock.Add(2 * time.Second)
	_, ok = s.Get("k")
	assert.False(t, ok, "entry past its expiry must be treated as absent")
	assert.Equal(t, 0, s.Len(), "expired entry is evicted on read")
}

func TestInvalidateAll(t *testing.T) {
	s := New(true)
	s.Set("a", Entry{Body: []byte("1")}, time.Minute)
	s.Set("b", Entry{Body: []byte("2")}, time.Minute)

	s.InvalidateAll()

	_, ok := s.Get("a")
	assert.False(t, ok)
	_, ok = s.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestDisablingFlushes(t *testing.T) {
	s := New(true)
	s.Set("k", Entry{Body: []byte("v")}, time.Minute)

	s.SetEnabled(false)
	assert.False(t, s.Enabled())
	assert.Equal(t, 0, s.Len(), "disabling must flush so re-enabling serves nothing stale")

	s.SetEnabled(true)
	_, ok := s.Get("k")
	assert.False(t, ok)
}

func TestNonPositiveTTLIgnored(t *testing.T) {
	s := New(true)
	s.Set("k", Entry{Body: []byte("v")}, 0)
	_, ok := s.Get("k")
	assert.False(t, ok)
}
