package ddsreader

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func guidFor(b byte) GUID {
	var prefix [12]byte
	prefix[0] = b
	return NewGUIDWithPrefix(prefix, EntityId{b, 0, 0, 0})
}

func TestTopicCacheAppendKeepsSortedOrder(t *testing.T) {
	tc := NewTopicCache("topic/a")
	w := guidFor(1)

	tc.Append(NewDataChange(w, 3, 30, []byte("c"), ReprMsgpack))
	tc.Append(NewDataChange(w, 1, 10, []byte("a"), ReprMsgpack))
	tc.Append(NewDataChange(w, 2, 20, []byte("b"), ReprMsgpack))

	got := tc.GetChangesInRangeBestEffort(ZeroTimestamp, TimestampNow())
	assert.Len(t, got, 3)
	assert.Equal(t, SequenceNumber(1), got[0].Change.SequenceNumber)
	assert.Equal(t, SequenceNumber(2), got[1].Change.SequenceNumber)
	assert.Equal(t, SequenceNumber(3), got[2].Change.SequenceNumber)
}

func TestTopicCacheBestEffortRangeIsHalfOpen(t *testing.T) {
	tc := NewTopicCache("topic/a")
	w := guidFor(1)

	tc.Append(NewDataChange(w, 1, 10, []byte("a"), ReprMsgpack))
	tc.Append(NewDataChange(w, 2, 20, []byte("b"), ReprMsgpack))
	tc.Append(NewDataChange(w, 3, 30, []byte("c"), ReprMsgpack))

	got := tc.GetChangesInRangeBestEffort(10, 20)
	assert.Len(t, got, 1)
	assert.Equal(t, Timestamp(20), got[0].Timestamp)
}

func TestTopicCacheReliableRangeIsPerWriter(t *testing.T) {
	tc := NewTopicCache("topic/a")
	w1 := guidFor(1)
	w2 := guidFor(2)

	tc.Append(NewDataChange(w1, 1, 10, []byte("a"), ReprMsgpack))
	tc.Append(NewDataChange(w1, 2, 20, []byte("b"), ReprMsgpack))
	tc.Append(NewDataChange(w2, 1, 15, []byte("x"), ReprMsgpack))

	lastRead := map[GUID]SequenceNumber{w1: 1}
	got := tc.GetChangesInRangeReliable(lastRead)

	assert.Len(t, got, 2)
	for _, tsc := range got {
		if tsc.Change.Writer == w1 {
			assert.Equal(t, SequenceNumber(2), tsc.Change.SequenceNumber)
		} else {
			assert.Equal(t, SequenceNumber(1), tsc.Change.SequenceNumber)
		}
	}
}

func TestTopicCacheReliableRangeUnseenWriterStartsAtZero(t *testing.T) {
	tc := NewTopicCache("topic/a")
	w := guidFor(7)
	tc.Append(NewDataChange(w, 1, 10, []byte("a"), ReprMsgpack))

	got := tc.GetChangesInRangeReliable(map[GUID]SequenceNumber{})
	assert.Len(t, got, 1)
}

func TestTopicCacheAppendIsConcurrencySafe(t *testing.T) {
	tc := NewTopicCache("topic/a")
	w := guidFor(9)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(sn int) {
			defer wg.Done()
			tc.Append(NewDataChange(w, SequenceNumber(sn), Timestamp(sn), nil, ReprMsgpack))
		}(i)
	}
	wg.Wait()

	got := tc.GetChangesInRangeBestEffort(ZeroTimestamp, TimestampNow())
	assert.Len(t, got, 50)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Timestamp <= got[i].Timestamp)
	}
}
