package ddsreader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapHashKeyStoreRememberResolve(t *testing.T) {
	s := newMapHashKeyStore[string]()
	ctx := context.Background()

	_, ok := s.Resolve(ctx, KeyHash{1})
	assert.False(t, ok)

	s.Remember(KeyHash{1}, "a")
	k, ok := s.Resolve(ctx, KeyHash{1})
	assert.True(t, ok)
	assert.Equal(t, "a", k)
}

func TestLRUHashKeyStoreRememberResolve(t *testing.T) {
	s := newLRUHashKeyStore[string](1024 * 1024)
	ctx := context.Background()

	s.Remember(KeyHash{2}, "widget")
	k, ok := s.Resolve(ctx, KeyHash{2})
	assert.True(t, ok)
	assert.Equal(t, "widget", k)

	_, ok = s.Resolve(ctx, KeyHash{3})
	assert.False(t, ok)
}
