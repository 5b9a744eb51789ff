package ddsreader

import (
	"sort"
	"sync"
)

// TimestampedChange pairs a CacheChange with the timestamp it was stored
// under, the item type yielded by both range queries below.
type TimestampedChange struct {
	Timestamp Timestamp
	Change    CacheChange
}

// TopicCache is the shared, mutable, ordered collection of cache changes
// for one topic. It is safe for concurrent use by the
// receive path (Append) and any number of readers (the two range
// queries). Entries are append-only from the consumer's perspective and
// totally ordered by (Timestamp, Writer, SequenceNumber).
type TopicCache struct {
	mu        sync.Mutex
	topicName string
	changes   []CacheChange
}

// NewTopicCache creates the shared cache for one topic, normally owned by
// the subscriber and handed to every reader attached to that topic.
func NewTopicCache(topicName string) *TopicCache {
	return &TopicCache{topicName: topicName}
}

// TopicName reports the name of the topic this cache belongs to.
func (c *TopicCache) TopicName() string {
	return c.topicName
}

func less(a, b CacheChange) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	if a.Writer != b.Writer {
		return a.Writer.Less(b.Writer)
	}
	return a.SequenceNumber < b.SequenceNumber
}

// Append inserts a new CacheChange in its sorted position. The receive
// path is expected to call this for every observed publication or
// dispose; it never blocks beyond the mutex and never removes entries.
func (c *TopicCache) Append(cc CacheChange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := sort.Search(len(c.changes), func(i int) bool {
		return !less(c.changes[i], cc)
	})
	c.changes = append(c.changes, CacheChange{})
	copy(c.changes[idx+1:], c.changes[idx:])
	c.changes[idx] = cc
}

// GetChangesInRangeBestEffort returns every entry with timestamp strictly
// greater than lowerExclusive and not exceeding upperInclusive, in
// ascending order.
func (c *TopicCache) GetChangesInRangeBestEffort(lowerExclusive, upperInclusive Timestamp) []TimestampedChange {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := sort.Search(len(c.changes), func(i int) bool {
		return c.changes[i].Timestamp > lowerExclusive
	})
	out := make([]TimestampedChange, 0, len(c.changes)-start)
	for i := start; i < len(c.changes); i++ {
		cc := c.changes[i]
		if cc.Timestamp > upperInclusive {
			break
		}
		out = append(out, TimestampedChange{Timestamp: cc.Timestamp, Change: cc})
	}
	return out
}

// GetChangesInRangeReliable returns, for each writer, every entry whose
// sequence number is strictly greater than that writer's entry in
// lastReadSN (absent entries are treated as 0, i.e. nothing read yet),
// in the cache's total order.
func (c *TopicCache) GetChangesInRangeReliable(lastReadSN map[GUID]SequenceNumber) []TimestampedChange {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]TimestampedChange, 0)
	for _, cc := range c.changes {
		if cc.SequenceNumber > lastReadSN[cc.Writer] {
			out = append(out, TimestampedChange{Timestamp: cc.Timestamp, Change: cc})
		}
	}
	return out
}
