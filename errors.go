package ddsreader

import (
	"errors"
	"fmt"
)

// Kind classifies the errors this package returns. It deliberately does
// not include an "Internal" value: an invariant violation panics rather
// than being returned as an error.
type Kind int

const (
	// KindPreconditionNotMet: the owning participant is gone at
	// construction, or the supplied TopicCache does not belong to the
	// reader's topic.
	KindPreconditionNotMet Kind = iota
	// KindSerialization: unknown representation id, failed payload/key
	// decode, or dispose-by-hash against an unseen hash.
	KindSerialization
)

func (k Kind) String() string {
	switch k {
	case KindPreconditionNotMet:
		return "PreconditionNotMet"
	case KindSerialization:
		return "Serialization"
	default:
		return "Unknown"
	}
}

// Error is the one error type this package returns. Callers that need to
// branch on kind should use errors.As and inspect Kind.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func newPreconditionNotMet(format string, args ...any) error {
	return &Error{Kind: KindPreconditionNotMet, msg: fmt.Sprintf(format, args...)}
}

func newSerializationError(topic string, typeName string, format string, args ...any) error {
	detail := fmt.Sprintf(format, args...)
	return &Error{
		Kind: KindSerialization,
		msg:  fmt.Sprintf("%s Topic = %s, Type = %s", detail, topic, typeName),
	}
}

// ErrStatusRecvDisconnected is the status stream's sole end-of-stream
// signal.
var ErrStatusRecvDisconnected = errors.New("ddsreader: status receiver disconnected")

// panicInvariant is the single place a fatal invariant violation is
// raised. Go's sync.Mutex has no poisoning concept, so there is normally
// nothing to panic on; this remains as the designated escape hatch for a
// caller-supplied TopicCache/ReadState found to violate its invariants
// (e.g. a nil payload slipping past construction).
func panicInvariant(topic string, what string) {
	panic(fmt.Sprintf("ddsreader: invariant violation in %s for topic %q", what, topic))
}
