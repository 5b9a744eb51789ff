package ddsreader

// ReadState holds the mutable read pointers owned by a single reader. It
// is never shared between readers; each SimpleDataReader owns exactly
// one.
type ReadState[K any] struct {
	latestInstant Timestamp
	lastReadSN    map[GUID]SequenceNumber
	hashKeys      HashKeyStore[K]
}

// newReadState builds the default ReadState: zero instant, empty
// per-writer sequence map, and a grow-only hash map.
func newReadState[K any]() *ReadState[K] {
	return &ReadState[K]{
		latestInstant: ZeroTimestamp,
		lastReadSN:    make(map[GUID]SequenceNumber),
		hashKeys:      newMapHashKeyStore[K](),
	}
}

// newReadStateWithHashStore builds a ReadState backed by a caller-supplied
// HashKeyStore, e.g. lruHashKeyStore or redisHashKeyStore, for readers
// that need bounded memory or cross-process hash resolution.
func newReadStateWithHashStore[K any](store HashKeyStore[K]) *ReadState[K] {
	return &ReadState[K]{
		latestInstant: ZeroTimestamp,
		lastReadSN:    make(map[GUID]SequenceNumber),
		hashKeys:      store,
	}
}

// advance records successful delivery of a change at ts from writer w
// with sequence number s, maintaining the invariant latest_instant >= ts
// and last_read_sn[w] >= s.
func (r *ReadState[K]) advance(w GUID, s SequenceNumber, ts Timestamp) {
	if ts > r.latestInstant {
		r.latestInstant = ts
	}
	r.lastReadSN[w] = s
}
