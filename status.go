package ddsreader

import (
	"context"
	"sync"
)

// DataReaderStatusKind enumerates the status events a reader reports but
// never acts on.
type DataReaderStatusKind int

const (
	StatusDeadlineMissed DataReaderStatusKind = iota
	StatusLivelinessChanged
	StatusSubscriptionMatched
	StatusSampleRejected
	StatusRequestedIncompatibleQos
)

func (k DataReaderStatusKind) String() string {
	switch k {
	case StatusDeadlineMissed:
		return "deadline_missed"
	case StatusLivelinessChanged:
		return "liveliness_changed"
	case StatusSubscriptionMatched:
		return "subscription_matched"
	case StatusSampleRejected:
		return "sample_rejected"
	case StatusRequestedIncompatibleQos:
		return "requested_incompatible_qos"
	default:
		return "unknown"
	}
}

// DataReaderStatus is one status event produced by the receive path.
type DataReaderStatus struct {
	Kind  DataReaderStatusKind
	Count int
}

// StatusReceiver is a non-blocking receiver of DataReaderStatus values.
// It never applies the statuses it reports — deadline recovery and
// liveliness enforcement are left to the caller.
type StatusReceiver struct {
	ch          chan DataReaderStatus
	eventSource *pollEventSource
	metrics     *Metrics

	closed     chan struct{}
	closedOnce sync.Once
}

func newStatusReceiver(capacity int, metrics *Metrics) *StatusReceiver {
	return &StatusReceiver{
		ch:          make(chan DataReaderStatus, capacity),
		eventSource: newPollEventSource(),
		metrics:     metrics,
		closed:      make(chan struct{}),
	}
}

// disconnect marks every StatusStream built from this receiver as
// disconnected. Safe to call more than once.
func (s *StatusReceiver) disconnect() {
	s.closedOnce.Do(func() {
		close(s.closed)
	})
	s.eventSource.signal()
}

// push is called by the receive path to enqueue a status event. The
// receive path must not block, so a push against a full channel is
// simply dropped, mirroring the discovery/reader command channel's
// non-blocking send.
func (s *StatusReceiver) push(status DataReaderStatus) {
	select {
	case s.ch <- status:
		s.metrics.recordStatusEvent(status.Kind.String())
		s.eventSource.signal()
	default:
	}
}

// TryRecvStatus returns the next pending status event, if any.
func (s *StatusReceiver) TryRecvStatus() (DataReaderStatus, bool) {
	select {
	case status := <-s.ch:
		return status, true
	default:
		return DataReaderStatus{}, false
	}
}

// RegisterInterest exposes the status receiver's event source for polling.
func (s *StatusReceiver) RegisterInterest(mask InterestMask) (Registration, error) {
	return s.eventSource.register(func() {}), nil
}

// StatusStream is the lazy async stream of status events.
type StatusStream struct {
	receiver *StatusReceiver
}

// AsStatusStream builds a StatusStream over this receiver.
func (s *StatusReceiver) AsStatusStream() *StatusStream {
	return &StatusStream{receiver: s}
}

// Next blocks until a status event is available, ctx is done, or the
// stream's owning reader is dropped, in which case it returns
// ErrStatusRecvDisconnected, the sole end-of-stream signal.
func (s *StatusStream) Next(ctx context.Context) (DataReaderStatus, error) {
	if status, ok := s.receiver.TryRecvStatus(); ok {
		return status, nil
	}
	for {
		select {
		case status := <-s.receiver.ch:
			return status, nil
		case <-s.receiver.closed:
			return DataReaderStatus{}, ErrStatusRecvDisconnected
		case <-ctx.Done():
			return DataReaderStatus{}, ctx.Err()
		}
	}
}
