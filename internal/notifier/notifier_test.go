package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	mu       sync.Mutex
	warnings int
}

func (l *testLogger) Warn(string, ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings++
}

func (l *testLogger) Error(string, ...interface{}) {}

func (l *testLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.warnings
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *capturingPublisher) Publish(event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	n := New(&testLogger{}, nil)
	defer n.Close()

	var mu sync.Mutex
	var received []Event
	n.Subscribe(1, func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, e)
	})

	n.Publish(1, EventAppointmentCreated)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int64(1), received[0].AgendaID)
	assert.Equal(t, EventAppointmentCreated, received[0].Kind)
	assert.NotEmpty(t, received[0].ID)
	assert.False(t, received[0].OccurredAt.IsZero())
}

func TestSubscriberScopedToAgenda(t *testing.T) {
	n := New(&testLogger{}, nil)
	defer n.Close()

	var mu sync.Mutex
	counts := map[int64]int{}
	n.Subscribe(1, func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		counts[1]++
	})
	n.Subscribe(2, func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		counts[2]++
	})

	n.Publish(1, EventAppointmentCancelled)
	n.Publish(1, EventExceptionChanged)
	n.Publish(2, EventAppointmentCreated)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return counts[1] == 2 && counts[2] == 1
	})
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	n := New(&testLogger{}, nil)
	defer n.Close()

	var mu sync.Mutex
	first, second := 0, 0
	unsubscribe := n.Subscribe(1, func(Event) {
		mu.Lock()
		defer mu.Unlock()
		first++
	})
	n.Subscribe(1, func(Event) {
		mu.Lock()
		defer mu.Unlock()
		second++
	})

	n.Publish(1, EventAppointmentCreated)
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return second == 1
	})

	unsubscribe()
	n.Publish(1, EventAppointmentCreated)
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return second == 2
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, first)
}

func TestPublishForwardsToExternalPublisher(t *testing.T) {
	pub := &capturingPublisher{}
	n := New(&testLogger{}, pub)
	defer n.Close()

	n.Publish(7, EventAppointmentRescheduled)

	waitFor(t, func() bool {
		pub.mu.Lock()
		defer pub.mu.Unlock()
		return len(pub.events) == 1
	})

	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Equal(t, int64(7), pub.events[0].AgendaID)
	assert.Equal(t, EventAppointmentRescheduled, pub.events[0].Kind)
}

func TestPublishNeverBlocks(t *testing.T) {
	logger := &testLogger{}
	n := New(logger, nil)
	defer n.Close()

	// Подписчик держит диспетчер, очередь заполняется до отказа
	release := make(chan struct{})
	n.Subscribe(1, func(Event) {
		<-release
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < eventBufferSize+16; i++ {
			n.Publish(1, EventAppointmentCreated)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on full buffer")
	}
	close(release)

	require.Greater(t, logger.warnCount(), 0)
}

func TestPublishAfterCloseIsNoop(t *testing.T) {
	n := New(&testLogger{}, nil)

	delivered := 0
	n.Subscribe(1, func(Event) { delivered++ })

	n.Close()
	n.Close() // повторный Close безопасен

	n.Publish(1, EventAppointmentCreated)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, delivered)
}
