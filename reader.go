package ddsreader

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Participant is the minimal capability this package needs from the
// owning domain participant: whether it is still alive. Discovery, QoS
// negotiation, and the rest of participant lifecycle are out of scope.
type Participant interface {
	Alive() bool
}

// SimpleDataReader is the central reader for keyed topics: it glues
// ReadState, TopicCache, deserialization dispatch, the notification
// bridge, and status reporting. It can only "take" — there is no dedup
// or read-vs-take cache.
type SimpleDataReader[K KeyHasher] struct {
	topic      string
	typeName   string
	qosPolicy  QosPolicies
	guid       GUID
	subscriber Subscriber

	topicCache *TopicCache
	readState  *ReadState[K]
	readMu     sync.Mutex

	notify         *notificationBridge
	discovery      DiscoverySink
	statusReceiver *StatusReceiver
	readerCommands chan ReaderCommand

	metrics *Metrics

	dropOnce sync.Once
}

// ReaderConfig carries the optional construction parameters of
// NewSimpleDataReader; the zero value selects the defaults (a grow-only
// hash map, no metrics registration).
type ReaderConfig[K KeyHasher] struct {
	HashKeyStore        HashKeyStore[K]
	Discovery           DiscoverySink
	Subscriber          Subscriber
	EnableMetrics       bool
	StatusChannelDepth  int
	ReaderCommandDepth  int
}

// NewSimpleDataReader constructs a keyed reader attached to topicCache.
// It fails with a PreconditionNotMet error if participant is not alive,
// or if topicCache does not belong to topicName. Callers own the
// returned reader and must call Close when done with it.
func NewSimpleDataReader[K KeyHasher](
	participant Participant,
	entity EntityId,
	topicName string,
	typeName string,
	qos QosPolicies,
	topicCache *TopicCache,
	cfg ReaderConfig[K],
) (*SimpleDataReader[K], error) {
	if !participant.Alive() {
		return nil, newPreconditionNotMet("Cannot create new DataReader, DomainParticipant doesn't exist.")
	}
	if topicCache.TopicName() != topicName {
		return nil, newPreconditionNotMet(
			"Topic name = %s and topic cache name = %s not equal when creating a SimpleDataReader",
			topicName, topicCache.TopicName())
	}

	guid := NewGUID(entity)

	hashStore := cfg.HashKeyStore
	if hashStore == nil {
		hashStore = newMapHashKeyStore[K]()
	}
	discovery := cfg.Discovery
	if discovery == nil {
		discovery = NewChanDiscoverySink(16)
	}
	subscriber := cfg.Subscriber
	if subscriber == nil {
		subscriber = NoopSubscriber{}
	}
	statusDepth := cfg.StatusChannelDepth
	if statusDepth <= 0 {
		statusDepth = 16
	}
	cmdDepth := cfg.ReaderCommandDepth
	if cmdDepth <= 0 {
		cmdDepth = 4
	}

	var metrics *Metrics
	if cfg.EnableMetrics {
		metrics = NewMetrics(topicName, true)
	}

	return &SimpleDataReader[K]{
		topic:          topicName,
		typeName:       typeName,
		qosPolicy:      qos,
		guid:           guid,
		subscriber:     subscriber,
		topicCache:     topicCache,
		readState:      newReadStateWithHashStore[K](hashStore),
		notify:         newNotificationBridge(topicName),
		discovery:      discovery,
		statusReceiver: newStatusReceiver(statusDepth, metrics),
		readerCommands: make(chan ReaderCommand, cmdDepth),
		metrics:        metrics,
	}, nil
}

// Qos returns the reader's QoS snapshot.
func (r *SimpleDataReader[K]) Qos() *QosPolicies { return &r.qosPolicy }

// GUID returns the reader's globally unique identifier.
func (r *SimpleDataReader[K]) GUID() GUID { return r.guid }

// Topic returns the reader's topic name.
func (r *SimpleDataReader[K]) Topic() string { return r.topic }

// SetWaker installs or clears an async waker signalled when new data
// arrives.
func (r *SimpleDataReader[K]) SetWaker(wake func()) {
	r.notify.setWaker(wake)
}

// DrainReadNotifications drains all pending wake pings from the
// notification channel and the event source. Must be called immediately
// before any TryTakeOne call to avoid losing level-triggered state.
func (r *SimpleDataReader[K]) DrainReadNotifications() {
	r.notify.drainReadNotifications()
}

// RegisterInterest exposes the older register/reregister/deregister
// event-registration style.
func (r *SimpleDataReader[K]) RegisterInterest(mask InterestMask) (Registration, error) {
	return r.notify.RegisterInterest(mask)
}

// RegisterInterestV2 exposes the newer typed Interest registration
// style.
func (r *SimpleDataReader[K]) RegisterInterestV2(interest Interest) (Registration, error) {
	return r.notify.RegisterInterestV2(interest)
}

// TryRecvStatus returns the next pending DataReaderStatus, if any.
func (r *SimpleDataReader[K]) TryRecvStatus() (DataReaderStatus, bool) {
	return r.statusReceiver.TryRecvStatus()
}

// AsStatusStream returns the lazy async stream of status events.
func (r *SimpleDataReader[K]) AsStatusStream() *StatusStream {
	return r.statusReceiver.AsStatusStream()
}

// PushStatus is called by the receive path to deliver a status event.
func (r *SimpleDataReader[K]) PushStatus(status DataReaderStatus) {
	r.statusReceiver.push(status)
}

// PushReaderCommand enqueues a reader command (e.g.
// ResetRequestedDeadlineStatus). Commands are buffered up to
// ReaderCommandDepth and never read or acted upon by this core; once the
// buffer is full, further commands are dropped with a debug log.
func (r *SimpleDataReader[K]) PushReaderCommand(cmd ReaderCommand) {
	select {
	case r.readerCommands <- cmd:
	default:
		log.Debug().Str("topic", r.topic).Msg("ddsreader: reader command channel full, dropping command")
	}
}

// AppendChange is the receive-path entry point: it appends cc to the
// shared TopicCache and pings the notification bridge. Production
// wiring normally calls TopicCache.Append directly and pings the
// bridges of every reader attached to the topic; this helper is
// provided for the common single-reader case and by the demo/tests.
func (r *SimpleDataReader[K]) AppendChange(cc CacheChange) {
	r.topicCache.Append(cc)
	r.notify.ping()
}

// isReliable reports whether this reader uses Reliable QoS.
func (r *SimpleDataReader[K]) isReliable() bool {
	return r.qosPolicy.isReliable()
}

// Close tears the reader down: sends RemoveLocalReader to discovery and
// tells the subscriber to forget this reader's GUID. Safe to call more
// than once; only the first call has any effect, guaranteeing exactly
// one RemoveLocalReader command even under repeated Close.
func (r *SimpleDataReader[K]) Close() {
	r.dropOnce.Do(func() {
		r.subscriber.RemoveReader(r.guid)

		err := r.discovery.Send(DiscoveryCommand{RemoveLocalReader: &r.guid})
		switch {
		case err == nil:
		case err == ErrDiscoveryChannelClosed:
			log.Debug().Str("topic", r.topic).Msg("ddsreader: failed to send DiscoveryCommand::RemoveLocalReader, maybe shutting down")
		default:
			log.Error().Err(err).Str("topic", r.topic).Msg("ddsreader: failed to send DiscoveryCommand::RemoveLocalReader")
		}

		r.statusReceiver.disconnect() // wake and disconnect any blocked status stream
		r.metrics.Unregister()
	})
}

// TryTakeOne attempts to consume the next undelivered change. Methods
// cannot introduce new type parameters in Go, so the payload type D and
// its DeserializerAdapter/KeyFromBytes capabilities are supplied as a
// free function instead of a method.
func TryTakeOne[K KeyHasher, D Keyed[K]](
	r *SimpleDataReader[K],
	da DeserializerAdapter[D],
	ka KeyFromBytes[K],
) (*DeserializedCacheChange[D, K], error) {
	return takeOne[K, D](r, da.SupportedEncodings(), da.FromBytes, ka)
}

// TryTakeOneSeed is the seeded variant of TryTakeOne: seed threads
// through value decoding only, never key decoding.
func TryTakeOneSeed[K KeyHasher, D Keyed[K], S any](
	r *SimpleDataReader[K],
	da SeedDeserializerAdapter[D, S],
	ka KeyFromBytes[K],
	seed S,
) (*DeserializedCacheChange[D, K], error) {
	decode := func(data []byte, repr RepresentationIdentifier) (D, error) {
		return da.FromBytesSeed(seed, data, repr)
	}
	return takeOne[K, D](r, da.SupportedEncodings(), decode, ka)
}

func takeOne[K KeyHasher, D Keyed[K]](
	r *SimpleDataReader[K],
	supportedEncodings []RepresentationIdentifier,
	decodeValue func([]byte, RepresentationIdentifier) (D, error),
	ka KeyFromBytes[K],
) (*DeserializedCacheChange[D, K], error) {
	startedAt := time.Now()
	_, span := startTakeSpan(r.topic, r.qosPolicy.Reliability)
	defer span.End()

	// Lock order is fixed: TopicCache before ReadState. Snapshot the read
	// pointers under readMu, release it, then query TopicCache (which
	// guards itself with its own mutex) — readMu and the cache's mutex
	// are never held at once, so TopicCache.Append on the receive path
	// can never contend with this reader in the reverse order.
	r.readMu.Lock()
	reliable := r.isReliable()
	var lastReadSN map[GUID]SequenceNumber
	var lowerExclusive Timestamp
	if reliable {
		lastReadSN = make(map[GUID]SequenceNumber, len(r.readState.lastReadSN))
		for w, sn := range r.readState.lastReadSN {
			lastReadSN[w] = sn
		}
	} else {
		lowerExclusive = r.readState.latestInstant
	}
	r.readMu.Unlock()

	var tc TimestampedChange
	var ok bool
	if reliable {
		changes := r.topicCache.GetChangesInRangeReliable(lastReadSN)
		if len(changes) > 0 {
			tc, ok = changes[0], true
		}
	} else {
		changes := r.topicCache.GetChangesInRangeBestEffort(lowerExclusive, TimestampNow())
		if len(changes) > 0 {
			tc, ok = changes[0], true
		}
	}
	if !ok {
		r.metrics.recordTake(outcomeEmpty, startedAt)
		return nil, nil
	}

	r.readMu.Lock()
	defer r.readMu.Unlock()

	// Re-validate against the current read pointers: a concurrent take
	// may have advanced past tc while readMu was released for the cache
	// query above, in which case tc is stale and must not be redelivered.
	if reliable {
		if tc.Change.SequenceNumber <= r.readState.lastReadSN[tc.Change.Writer] {
			r.metrics.recordTake(outcomeEmpty, startedAt)
			return nil, nil
		}
	} else if tc.Timestamp <= r.readState.latestInstant {
		r.metrics.recordTake(outcomeEmpty, startedAt)
		return nil, nil
	}

	sample, err := dispatchDecode[K, D](tc.Change, r.readState.hashKeys, supportedEncodings, decodeValue, ka)
	if err != nil {
		r.metrics.recordTake(outcomeError, startedAt)
		r.metrics.recordError(KindSerialization)
		return nil, newSerializationError(r.topic, r.typeName, err.Error())
	}

	r.readState.advance(tc.Change.Writer, tc.Change.SequenceNumber, tc.Timestamp)
	r.metrics.recordTake(outcomeDelivered, startedAt)
	if sample.IsDispose() {
		r.metrics.recordDispose()
	}

	return &DeserializedCacheChange[D, K]{
		Timestamp:      tc.Timestamp,
		Writer:         tc.Change.Writer,
		SequenceNumber: tc.Change.SequenceNumber,
		Sample:         sample,
	}, nil
}
