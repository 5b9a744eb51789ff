package ddsreader

import "github.com/rs/zerolog/log"

// Unit is the key type for no-key topics: every instance shares the same
// (empty) key, so HashKey is constant.
type Unit struct{}

func (Unit) HashKey() KeyHash { return KeyHash{} }

// UnitKeyAdapter is the trivial KeyFromBytes[Unit] every no-key reader
// uses: no-key topics carry no meaningful key bytes, so decoding always
// succeeds with the single Unit value.
type UnitKeyAdapter struct{}

func (UnitKeyAdapter) KeyFromBytes([]byte, RepresentationIdentifier) (Unit, error) {
	return Unit{}, nil
}

// noKeyWrapper adapts a plain payload type D into Keyed[Unit] so it can
// flow through the keyed SimpleDataReader's take algorithm unchanged: it
// wraps one decoded value and reports the Unit key for it.
type noKeyWrapper[D any] struct {
	value D
}

func (noKeyWrapper[D]) Key() Unit { return Unit{} }

// noKeyAdapter adapts a DeserializerAdapter[D] into one for
// noKeyWrapper[D].
type noKeyAdapter[D any] struct {
	inner DeserializerAdapter[D]
}

func (a noKeyAdapter[D]) SupportedEncodings() []RepresentationIdentifier {
	return a.inner.SupportedEncodings()
}

func (a noKeyAdapter[D]) FromBytes(data []byte, repr RepresentationIdentifier) (noKeyWrapper[D], error) {
	v, err := a.inner.FromBytes(data, repr)
	return noKeyWrapper[D]{value: v}, err
}

// NoKeySimpleDataReader wraps a keyed SimpleDataReader[Unit], projecting
// away the Dispose variant: dispose events are meaningless on no-key
// topics and are silently dropped, with an informational log message.
type NoKeySimpleDataReader[D any] struct {
	keyed *SimpleDataReader[Unit]
}

// NewNoKeySimpleDataReader constructs a no-key reader over the given
// topic cache, exactly like NewSimpleDataReader but with the key type
// fixed to Unit.
func NewNoKeySimpleDataReader[D any](
	participant Participant,
	entity EntityId,
	topicName string,
	typeName string,
	qos QosPolicies,
	topicCache *TopicCache,
	cfg ReaderConfig[Unit],
) (*NoKeySimpleDataReader[D], error) {
	keyed, err := NewSimpleDataReader[Unit](participant, entity, topicName, typeName, qos, topicCache, cfg)
	if err != nil {
		return nil, err
	}
	return &NoKeySimpleDataReader[D]{keyed: keyed}, nil
}

func (r *NoKeySimpleDataReader[D]) Qos() *QosPolicies               { return r.keyed.Qos() }
func (r *NoKeySimpleDataReader[D]) GUID() GUID                      { return r.keyed.GUID() }
func (r *NoKeySimpleDataReader[D]) Topic() string                   { return r.keyed.Topic() }
func (r *NoKeySimpleDataReader[D]) SetWaker(wake func())            { r.keyed.SetWaker(wake) }
func (r *NoKeySimpleDataReader[D]) DrainReadNotifications()         { r.keyed.DrainReadNotifications() }
func (r *NoKeySimpleDataReader[D]) TryRecvStatus() (DataReaderStatus, bool) {
	return r.keyed.TryRecvStatus()
}
func (r *NoKeySimpleDataReader[D]) AsStatusStream() *StatusStream { return r.keyed.AsStatusStream() }
func (r *NoKeySimpleDataReader[D]) AppendChange(cc CacheChange)   { r.keyed.AppendChange(cc) }
func (r *NoKeySimpleDataReader[D]) Close()                        { r.keyed.Close() }

// TryTakeOneNoKey projects a keyed take result down to an optional D,
// dropping Dispose samples.
func TryTakeOneNoKey[D any](r *NoKeySimpleDataReader[D], da DeserializerAdapter[D]) (*D, error) {
	wrapped, err := TryTakeOne[Unit, noKeyWrapper[D]](r.keyed, noKeyAdapter[D]{inner: da}, UnitKeyAdapter{})
	if err != nil {
		return nil, err
	}
	if wrapped == nil {
		return nil, nil
	}
	if wrapped.Sample.IsDispose() {
		log.Info().Str("topic", r.keyed.Topic()).Msg("ddsreader: got dispose from no_key topic")
		return nil, nil
	}
	v := wrapped.Sample.Value.value
	return &v, nil
}
