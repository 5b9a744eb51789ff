package ddsreader

import (
	"context"

	"github.com/rs/zerolog/log"
)

// SampleStream is a lazy, infinite, non-terminating async adapter over a
// SimpleDataReader. Go has no Future/Waker model, so Next blocks until
// data is ready, ctx is done, or the loop is woken — but it implements a
// race-free poll protocol: try synchronously, install a waker, try once
// more to close the race, then park.
type SampleStream[K KeyHasher, D Keyed[K]] struct {
	reader *SimpleDataReader[K]
	da     DeserializerAdapter[D]
	ka     KeyFromBytes[K]
}

// NewSampleStream builds a SampleStream over reader. Go methods cannot
// introduce new type parameters, so construction is a free function
// exactly like TryTakeOne.
func NewSampleStream[K KeyHasher, D Keyed[K]](r *SimpleDataReader[K], da DeserializerAdapter[D], ka KeyFromBytes[K]) *SampleStream[K, D] {
	return &SampleStream[K, D]{reader: r, da: da, ka: ka}
}

// IsTerminated always reports false: the stream never ends; callers stop
// it by simply no longer calling Next.
func (s *SampleStream[K, D]) IsTerminated() bool { return false }

// Next blocks for the next sample. It never returns (nil, nil) — an
// error, a ctx cancellation, or a delivered sample are the only outcomes.
func (s *SampleStream[K, D]) Next(ctx context.Context) (*DeserializedCacheChange[D, K], error) {
	for {
		s.reader.DrainReadNotifications()
		item, err := TryTakeOne[K, D](s.reader, s.da, s.ka)
		if err != nil {
			return nil, err
		}
		if item != nil {
			return item, nil
		}

		woken := make(chan struct{}, 1)
		s.reader.SetWaker(func() {
			select {
			case woken <- struct{}{}:
			default:
			}
		})

		item, err = TryTakeOne[K, D](s.reader, s.da, s.ka)
		if err != nil {
			s.reader.SetWaker(nil)
			return nil, err
		}
		if item != nil {
			s.reader.SetWaker(nil)
			return item, nil
		}

		select {
		case <-woken:
			s.reader.SetWaker(nil)
			continue
		case <-ctx.Done():
			s.reader.SetWaker(nil)
			return nil, ctx.Err()
		}
	}
}

// NoKeySampleStream is the no-key projection of SampleStream, filtering
// out Dispose events the same way TryTakeOneNoKey does.
type NoKeySampleStream[D any] struct {
	inner *SampleStream[Unit, noKeyWrapper[D]]
	topic string
}

// NewNoKeySampleStream builds a NoKeySampleStream over a no-key reader.
func NewNoKeySampleStream[D any](r *NoKeySimpleDataReader[D], da DeserializerAdapter[D]) *NoKeySampleStream[D] {
	return &NoKeySampleStream[D]{
		inner: NewSampleStream[Unit, noKeyWrapper[D]](r.keyed, noKeyAdapter[D]{inner: da}, UnitKeyAdapter{}),
		topic: r.Topic(),
	}
}

func (s *NoKeySampleStream[D]) IsTerminated() bool { return false }

// Next blocks for the next Value sample, silently skipping Dispose
// events.
func (s *NoKeySampleStream[D]) Next(ctx context.Context) (*D, error) {
	for {
		item, err := s.inner.Next(ctx)
		if err != nil {
			return nil, err
		}
		if item.Sample.IsDispose() {
			log.Info().Str("topic", s.topic).Msg("ddsreader: got dispose from no_key topic")
			continue
		}
		v := item.Sample.Value.value
		return &v, nil
	}
}
