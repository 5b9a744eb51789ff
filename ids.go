package ddsreader

import (
	"fmt"
	"time"

	uuid "github.com/satori/go.uuid"
)

// EntityId identifies an entity (reader, writer, ...) within a participant.
// It is opaque to this package; only equality and ordering matter.
type EntityId [4]byte

func (e EntityId) String() string {
	return fmt.Sprintf("%x", [4]byte(e))
}

// GUID is the globally unique identifier of an RTPS entity: a participant
// prefix plus an EntityId. Allocation of the prefix is a participant/
// discovery concern and out of scope; NewGUID synthesizes one for readers
// constructed directly against this package.
type GUID struct {
	Prefix [12]byte
	Entity EntityId
}

// NewGUID synthesizes a GUID for a reader whose participant prefix is not
// otherwise supplied. Discovery/participant allocation of guid prefixes is
// out of scope for this core; production embedders are expected to call
// NewGUIDWithPrefix with their participant's real prefix.
func NewGUID(entity EntityId) GUID {
	id := uuid.NewV4()
	var prefix [12]byte
	copy(prefix[:], id.Bytes()[:12])
	return GUID{Prefix: prefix, Entity: entity}
}

// NewGUIDWithPrefix builds a GUID from an externally allocated participant
// prefix, for embedders that already run RTPS discovery.
func NewGUIDWithPrefix(prefix [12]byte, entity EntityId) GUID {
	return GUID{Prefix: prefix, Entity: entity}
}

func (g GUID) String() string {
	return fmt.Sprintf("%x:%s", g.Prefix, g.Entity)
}

// Less gives GUID a total order. TopicCache uses it to break ties between
// changes from different writers that share a timestamp.
func (g GUID) Less(other GUID) bool {
	for i := range g.Prefix {
		if g.Prefix[i] != other.Prefix[i] {
			return g.Prefix[i] < other.Prefix[i]
		}
	}
	return g.Entity.String() < other.Entity.String()
}

// SequenceNumber is a per-writer monotonic counter, strictly increasing
// starting at 1 (0 is reserved as "none read yet").
type SequenceNumber int64

// Timestamp is the arrival instant of a CacheChange, nanoseconds since the
// Unix epoch. Using an integer instant (rather than wall-clock time.Time)
// keeps TopicCache ordering comparisons cheap and exact.
type Timestamp int64

// ZeroTimestamp is the initial value of ReadState.latestInstant.
const ZeroTimestamp Timestamp = 0

// TimestampNow returns the current instant, used as the best-effort range
// query's upper bound.
func TimestampNow() Timestamp {
	return Timestamp(time.Now().UnixNano())
}

// KeyHash is a fixed-width digest of a topic key, carried on the wire when
// a dispose message does not include the full key.
type KeyHash [16]byte

func (h KeyHash) String() string {
	return fmt.Sprintf("%x", [16]byte(h))
}

// RepresentationIdentifier is the 2-byte wire tag identifying the
// serialization format of a payload or key.
type RepresentationIdentifier uint16

const (
	// ReprCDRLittleEndian and ReprCDRBigEndian are the standard RTPS tags,
	// carried for documentation/interop even though this core ships
	// msgpack-based adapters rather than a CDR codec.
	ReprCDRLittleEndian RepresentationIdentifier = 0x0001
	ReprCDRBigEndian    RepresentationIdentifier = 0x0000

	// ReprMsgpack is this package's reference encoding for the shipped
	// MsgpackAdapter.
	ReprMsgpack RepresentationIdentifier = 0x8001
	// ReprMsgpackCompressed is ReprMsgpack wrapped in zstd framing, handled
	// by CompressedAdapter.
	ReprMsgpackCompressed RepresentationIdentifier = 0x8002
)
