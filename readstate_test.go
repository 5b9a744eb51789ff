package ddsreader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadStateAdvanceTracksLatestInstantAndPerWriterSN(t *testing.T) {
	rs := newReadState[int]()
	w1 := guidFor(1)
	w2 := guidFor(2)

	rs.advance(w1, 5, 100)
	rs.advance(w2, 1, 50)

	assert.Equal(t, Timestamp(100), rs.latestInstant)
	assert.Equal(t, SequenceNumber(5), rs.lastReadSN[w1])
	assert.Equal(t, SequenceNumber(1), rs.lastReadSN[w2])

	// A later, lower timestamp from a different writer must not roll
	// latestInstant backwards.
	rs.advance(w2, 2, 40)
	assert.Equal(t, Timestamp(100), rs.latestInstant)
	assert.Equal(t, SequenceNumber(2), rs.lastReadSN[w2])
}

func TestReadStateWithHashStoreRemembersAndResolves(t *testing.T) {
	store := newMapHashKeyStore[string]()
	rs := newReadStateWithHashStore[string](store)

	hash := KeyHash{1, 2, 3}
	rs.hashKeys.Remember(hash, "widget-1")

	k, ok := rs.hashKeys.Resolve(context.Background(), hash)
	assert.True(t, ok)
	assert.Equal(t, "widget-1", k)

	_, ok = rs.hashKeys.Resolve(context.Background(), KeyHash{9, 9, 9})
	assert.False(t, ok)
}
