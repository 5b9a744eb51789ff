package ddsreader

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusReceiverTryRecvStatus(t *testing.T) {
	s := newStatusReceiver(4, nil)
	_, ok := s.TryRecvStatus()
	assert.False(t, ok)

	s.push(DataReaderStatus{Kind: StatusSubscriptionMatched, Count: 1})
	got, ok := s.TryRecvStatus()
	assert.True(t, ok)
	assert.Equal(t, StatusSubscriptionMatched, got.Kind)
}

func TestStatusStreamNextBlocksUntilPush(t *testing.T) {
	s := newStatusReceiver(4, nil)
	stream := s.AsStatusStream()

	done := make(chan DataReaderStatus, 1)
	go func() {
		status, err := stream.Next(context.Background())
		assert.NoError(t, err)
		done <- status
	}()

	time.Sleep(20 * time.Millisecond)
	s.push(DataReaderStatus{Kind: StatusLivelinessChanged, Count: 2})

	select {
	case got := <-done:
		assert.Equal(t, StatusLivelinessChanged, got.Kind)
	case <-time.After(time.Second):
		t.Fatal("Next did not return after push")
	}
}

func TestStatusStreamNextReturnsOnDisconnect(t *testing.T) {
	s := newStatusReceiver(4, nil)
	stream := s.AsStatusStream()

	done := make(chan error, 1)
	go func() {
		_, err := stream.Next(context.Background())
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	s.disconnect()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStatusRecvDisconnected)
	case <-time.After(time.Second):
		t.Fatal("Next did not return after disconnect")
	}
}

func TestStatusStreamNextRespectsContextCancellation(t *testing.T) {
	s := newStatusReceiver(4, nil)
	stream := s.AsStatusStream()
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
