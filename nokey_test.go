package ddsreader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vmihailenco/msgpack/v5"
)

type plainEvent struct {
	Name string
}

func newTestNoKeyReader(t *testing.T, topic string) (*NoKeySimpleDataReader[plainEvent], *TopicCache) {
	t.Helper()
	tc := NewTopicCache(topic)
	r, err := NewNoKeySimpleDataReader[plainEvent](
		alwaysAlive{}, EntityId{2, 0, 0, 0}, topic, "PlainEvent",
		QosPolicies{Reliability: Reliable}, tc, ReaderConfig[Unit]{})
	assert.NoError(t, err)
	return r, tc
}

func TestNoKeyReaderDeliversValues(t *testing.T) {
	r, tc := newTestNoKeyReader(t, "topic/events")
	w := guidFor(1)

	data, err := msgpack.Marshal(plainEvent{Name: "started"})
	assert.NoError(t, err)
	tc.Append(NewDataChange(w, 1, 10, data, ReprMsgpack))

	got, err := TryTakeOneNoKey[plainEvent](r, MsgpackAdapter[plainEvent]{})
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, "started", got.Name)
}

func TestNoKeyReaderDropsDisposeSamples(t *testing.T) {
	r, tc := newTestNoKeyReader(t, "topic/events")
	w := guidFor(1)

	tc.Append(NewDisposeByKeyChange(w, 1, 10, nil, ReprMsgpack))

	got, err := TryTakeOneNoKey[plainEvent](r, MsgpackAdapter[plainEvent]{})
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestNoKeyStreamDropsDisposeAndDeliversValue(t *testing.T) {
	r, tc := newTestNoKeyReader(t, "topic/events")
	w := guidFor(1)

	tc.Append(NewDisposeByKeyChange(w, 1, 10, nil, ReprMsgpack))
	data, err := msgpack.Marshal(plainEvent{Name: "started"})
	assert.NoError(t, err)
	tc.Append(NewDataChange(w, 2, 11, data, ReprMsgpack))

	stream := NewNoKeySampleStream[plainEvent](r, MsgpackAdapter[plainEvent]{})
	got, err := stream.Next(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "started", got.Name)
}
