package ddsreader

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// E6 — async stream wake: polling an empty cache blocks, and appending a
// change wakes the parked Next call with the decoded sample.
func TestSampleStreamWakesOnAppend(t *testing.T) {
	r, _ := newTestReader(t, "topic/a", Reliable)
	stream := NewSampleStream[widgetKey, widget](r, MsgpackAdapter[widget]{}, MsgpackKeyAdapter[widgetKey]{})
	assert.False(t, stream.IsTerminated())

	result := make(chan *DeserializedCacheChange[widget, widgetKey], 1)
	errs := make(chan error, 1)
	go func() {
		got, err := stream.Next(context.Background())
		if err != nil {
			errs <- err
			return
		}
		result <- got
	}()

	// Give Next a chance to observe the empty cache and park on the waker.
	time.Sleep(30 * time.Millisecond)

	w := guidFor(1)
	r.AppendChange(NewDataChange(w, 1, 10, encodeWidget(t, widget{ID: "woken", Count: 1}), ReprMsgpack))

	select {
	case got := <-result:
		assert.Equal(t, "woken", got.Sample.Value.ID)
	case err := <-errs:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(time.Second):
		t.Fatal("Next did not wake after AppendChange")
	}
}

func TestSampleStreamReturnsImmediatelyWhenDataAlreadyPresent(t *testing.T) {
	r, tc := newTestReader(t, "topic/a", Reliable)
	w := guidFor(1)
	tc.Append(NewDataChange(w, 1, 10, encodeWidget(t, widget{ID: "present", Count: 1}), ReprMsgpack))

	stream := NewSampleStream[widgetKey, widget](r, MsgpackAdapter[widget]{}, MsgpackKeyAdapter[widgetKey]{})
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	got, err := stream.Next(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "present", got.Sample.Value.ID)
}

func TestSampleStreamNextRespectsContextCancellation(t *testing.T) {
	r, _ := newTestReader(t, "topic/a", Reliable)
	stream := NewSampleStream[widgetKey, widget](r, MsgpackAdapter[widget]{}, MsgpackKeyAdapter[widgetKey]{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := stream.Next(ctx)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Next did not return after context cancellation")
	}
}
