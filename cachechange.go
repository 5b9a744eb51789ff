package ddsreader

// payloadKind discriminates the three CacheChange payload variants.
type payloadKind int

const (
	payloadData payloadKind = iota
	payloadDisposeByKey
	payloadDisposeByKeyHash
)

// CacheChange is an immutable record already placed in TopicCache by the
// receive path. It is never mutated after construction; readers only
// ever read through a pointer/value copy of it.
type CacheChange struct {
	Writer         GUID
	SequenceNumber SequenceNumber
	Timestamp      Timestamp

	kind payloadKind

	// Data payload: serialized value bytes, valid when kind == payloadData.
	dataBytes  []byte
	dataRepr   RepresentationIdentifier

	// DisposeByKey payload: serialized key bytes, valid when
	// kind == payloadDisposeByKey.
	keyBytes []byte
	keyRepr  RepresentationIdentifier

	// DisposeByKeyHash payload, valid when kind == payloadDisposeByKeyHash.
	keyHash KeyHash
}

// NewDataChange constructs a CacheChange carrying a serialized value.
func NewDataChange(writer GUID, sn SequenceNumber, ts Timestamp, payload []byte, repr RepresentationIdentifier) CacheChange {
	return CacheChange{
		Writer: writer, SequenceNumber: sn, Timestamp: ts,
		kind: payloadData, dataBytes: payload, dataRepr: repr,
	}
}

// NewDisposeByKeyChange constructs a CacheChange carrying a serialized key
// for an explicit dispose.
func NewDisposeByKeyChange(writer GUID, sn SequenceNumber, ts Timestamp, keyBytes []byte, repr RepresentationIdentifier) CacheChange {
	return CacheChange{
		Writer: writer, SequenceNumber: sn, Timestamp: ts,
		kind: payloadDisposeByKey, keyBytes: keyBytes, keyRepr: repr,
	}
}

// NewDisposeByKeyHashChange constructs a CacheChange carrying only a key
// hash; the reader must resolve it against previously seen keys.
func NewDisposeByKeyHashChange(writer GUID, sn SequenceNumber, ts Timestamp, hash KeyHash) CacheChange {
	return CacheChange{
		Writer: writer, SequenceNumber: sn, Timestamp: ts,
		kind: payloadDisposeByKeyHash, keyHash: hash,
	}
}
