package ddsreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotificationBridgePingThenDrain(t *testing.T) {
	b := newNotificationBridge("topic/a")
	assert.False(t, b.eventSource.isReady())

	b.ping()
	assert.True(t, b.eventSource.isReady())
	assert.Len(t, b.ch, 1)

	b.drainReadNotifications()
	assert.False(t, b.eventSource.isReady())
	assert.Len(t, b.ch, 0)
}

func TestNotificationBridgePingDoesNotBlockWhenChannelFull(t *testing.T) {
	b := newNotificationBridge("topic/a")
	for i := 0; i < notificationChannelCapacity+10; i++ {
		b.ping()
	}
	assert.Len(t, b.ch, notificationChannelCapacity)
}

func TestNotificationBridgeWakesInstalledWaker(t *testing.T) {
	b := newNotificationBridge("topic/a")
	woken := make(chan struct{}, 1)
	b.setWaker(func() { woken <- struct{}{} })

	b.ping()

	select {
	case <-woken:
	default:
		t.Fatal("expected waker to be invoked on ping")
	}

	// The waker is consumed exactly once: a second ping with no waker
	// installed must not panic or resend.
	b.ping()
	select {
	case <-woken:
		t.Fatal("waker should have been cleared after first invocation")
	default:
	}
}

func TestPollEventSourceRegisterAndCancel(t *testing.T) {
	p := newPollEventSource()
	calls := 0
	reg := p.register(func() { calls++ })

	p.signal()
	assert.Equal(t, 1, calls)

	reg.Cancel()
	p.signal()
	assert.Equal(t, 1, calls)
}
