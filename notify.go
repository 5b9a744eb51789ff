package ddsreader

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// notificationChannelCapacity bounds the wake-ping channel. The receive
// path must never block on a full channel; once full, further pings are
// dropped and logged, relying on the level-triggered state in
// pollEventSource plus the next drain to catch up.
const notificationChannelCapacity = 64

// InterestMask is the bitmask used by the older event-registration style:
// register/reregister/deregister taking an interest mask.
type InterestMask uint32

const (
	InterestReadable InterestMask = 1 << iota
)

// Interest is the newer, typed event-registration style.
type Interest struct {
	Readable bool
}

// Registration is returned by both registration styles; Cancel
// deregisters the listener.
type Registration struct {
	cancel func()
}

// Cancel deregisters the listener. Safe to call more than once.
func (r Registration) Cancel() {
	if r.cancel != nil {
		r.cancel()
	}
}

// pollEventSource is the poll-integrable collaborator backing both
// registration styles: edge-triggered listener callbacks (invoked once
// per signal, the "newer"/"older" registries both just add one) plus a
// level-triggered "ready" flag that Drain resets, so an external
// registry that missed an edge can still observe state via the flag
// until the next drain.
type pollEventSource struct {
	mu        sync.Mutex
	listeners map[int]func()
	nextID    int
	ready     atomic.Bool
}

func newPollEventSource() *pollEventSource {
	return &pollEventSource{listeners: make(map[int]func())}
}

func (p *pollEventSource) register(cb func()) Registration {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = cb
	p.mu.Unlock()
	return Registration{cancel: func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}}
}

func (p *pollEventSource) signal() {
	p.ready.Store(true)
	p.mu.Lock()
	cbs := make([]func(), 0, len(p.listeners))
	for _, cb := range p.listeners {
		cbs = append(cbs, cb)
	}
	p.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

func (p *pollEventSource) drain() {
	p.ready.Store(false)
}

func (p *pollEventSource) isReady() bool {
	return p.ready.Load()
}

// wakerSlot is a mutex-guarded optional waker: written by the consumer
// (SetWaker), read and consumed by the receive path when it wants to
// wake a suspended async stream poll.
type wakerSlot struct {
	mu sync.Mutex
	fn func()
}

func (w *wakerSlot) set(fn func()) {
	w.mu.Lock()
	w.fn = fn
	w.mu.Unlock()
}

func (w *wakerSlot) wake() {
	w.mu.Lock()
	fn := w.fn
	w.fn = nil
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// notificationBridge bundles the notification channel, poll event source,
// and waker slot owned by one reader.
type notificationBridge struct {
	ch          chan struct{}
	eventSource *pollEventSource
	waker       wakerSlot
	topicName   string
}

func newNotificationBridge(topicName string) *notificationBridge {
	return &notificationBridge{
		ch:          make(chan struct{}, notificationChannelCapacity),
		eventSource: newPollEventSource(),
		topicName:   topicName,
	}
}

// ping is called by the receive path on every successful Append to
// TopicCache: it pushes one wake ping, signals the event source, and
// wakes any parked async-stream waker.
func (b *notificationBridge) ping() {
	select {
	case b.ch <- struct{}{}:
	default:
		log.Debug().Str("topic", b.topicName).Msg("ddsreader: notification channel full, dropping wake ping")
	}
	b.eventSource.signal()
	b.waker.wake()
}

// drainReadNotifications drains all pending wake pings and resets the
// level-triggered ready flag. Callers must call this immediately before
// any TryTakeOne to avoid losing level-triggered state.
func (b *notificationBridge) drainReadNotifications() {
	for {
		select {
		case <-b.ch:
		default:
			b.eventSource.drain()
			return
		}
	}
}

// setWaker installs or clears the async waker.
func (b *notificationBridge) setWaker(fn func()) {
	b.waker.set(fn)
}

// RegisterInterest is the older registration style: register/reregister/
// deregister with an interest mask, delegating to the same event source
// as RegisterInterestV2.
func (b *notificationBridge) RegisterInterest(mask InterestMask) (Registration, error) {
	return b.eventSource.register(func() {}), nil
}

// RegisterInterestV2 is the newer registration style taking a typed
// Interest value.
func (b *notificationBridge) RegisterInterestV2(interest Interest) (Registration, error) {
	return b.eventSource.register(func() {}), nil
}
