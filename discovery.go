package ddsreader

import "errors"

// DiscoveryCommand is the single outbound message this core emits.
// Other command variants that exist on the wire but are out of scope
// are not modeled here.
type DiscoveryCommand struct {
	RemoveLocalReader *GUID
}

// ReaderCommand is accepted on a reader's inbound command channel but
// never acted upon by this core: ResetRequestedDeadlineStatus exists so
// an external deadline-tracking collaborator can send it without
// erroring, but this package does not implement deadline-missed
// recovery.
type ReaderCommand struct {
	ResetRequestedDeadlineStatus bool
}

// DiscoverySink is the external discovery collaborator: a single-sender
// bounded channel the reader pushes RemoveLocalReader onto when dropped.
// A full or closed channel must never block or panic the caller — Send
// reports whether the command was delivered so the reader can log
// appropriately.
type DiscoverySink interface {
	Send(cmd DiscoveryCommand) error
}

// ErrDiscoveryChannelClosed is returned by a DiscoverySink implementation
// when its channel has been closed, so callers can distinguish "closed"
// (logged at debug) from any other send failure (logged at error).
var ErrDiscoveryChannelClosed = errors.New("ddsreader: discovery channel disconnected")

// ChanDiscoverySink adapts a buffered Go channel into a DiscoverySink.
type ChanDiscoverySink struct {
	Ch     chan DiscoveryCommand
	closed bool
}

// NewChanDiscoverySink builds a DiscoverySink backed by a bounded Go
// channel.
func NewChanDiscoverySink(capacity int) *ChanDiscoverySink {
	return &ChanDiscoverySink{Ch: make(chan DiscoveryCommand, capacity)}
}

func (s *ChanDiscoverySink) Send(cmd DiscoveryCommand) error {
	if s.closed {
		return ErrDiscoveryChannelClosed
	}
	select {
	case s.Ch <- cmd:
		return nil
	default:
		return errDiscoveryChannelFull
	}
}

var errDiscoveryChannelFull = errors.New("ddsreader: discovery command channel full")

// Close marks the sink closed; further Send calls report
// ErrDiscoveryChannelClosed instead of panicking on a closed channel.
func (s *ChanDiscoverySink) Close() {
	s.closed = true
}

// Subscriber is the owning collaborator a reader notifies on drop so it
// can forget the reader's GUID. The subscriber is expected to hold weak
// back-references to its readers, looked up by GUID on removal.
type Subscriber interface {
	RemoveReader(guid GUID)
}

// NoopSubscriber is a Subscriber that does nothing, useful for readers
// constructed outside a full participant/subscriber graph (e.g. in
// tests or the demo binary).
type NoopSubscriber struct{}

func (NoopSubscriber) RemoveReader(GUID) {}
