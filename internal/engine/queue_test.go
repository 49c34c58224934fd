package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/airdraw/internal/model"
)

func msg(id string) inbound {
	return inbound{Payload: []byte(id), From: model.Peer{ID: id}}
}

func TestInbox_EnqueueDequeue(t *testing.T) {
	q := newInbox()

	ok := q.Enqueue(msg("peer-1"))
	require.True(t, ok, "enqueue should succeed")

	got, ok := q.TryDequeue()
	require.True(t, ok, "dequeue should succeed")
	assert.Equal(t, "peer-1", got.From.ID)
	assert.Equal(t, []byte("peer-1"), got.Payload)
}

func TestInbox_FIFO(t *testing.T) {
	q := newInbox()

	for _, id := range []string{"A", "B", "C"} {
		q.Enqueue(msg(id))
	}

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, got.From.ID)
	}
}

func TestInbox_TryDequeue_Empty(t *testing.T) {
	q := newInbox()

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestInbox_Wait_SignalsOnEnqueue(t *testing.T) {
	q := newInbox()

	done := make(chan struct{})
	go func() {
		<-q.Wait()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	q.Enqueue(msg("x"))

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("wait did not signal")
	}
}

func TestInbox_Close_WakesWaiters(t *testing.T) {
	q := newInbox()

	done := make(chan struct{})
	go func() {
		<-q.Wait()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()
	q.Close() // idempotent

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("wait did not unblock after close")
	}
}

func TestInbox_Enqueue_AfterClose(t *testing.T) {
	q := newInbox()
	q.Close()

	assert.False(t, q.Enqueue(msg("late")), "enqueue after close should return false")
}

func TestInbox_Len(t *testing.T) {
	q := newInbox()

	assert.Equal(t, 0, q.Len())
	q.Enqueue(msg("1"))
	q.Enqueue(msg("2"))
	assert.Equal(t, 2, q.Len())

	q.TryDequeue()
	assert.Equal(t, 1, q.Len())
	q.TryDequeue()
	assert.Equal(t, 0, q.Len())
}

func TestInbox_ThreadSafe(t *testing.T) {
	q := newInbox()

	const producers = 10
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(msg("p"))
			}
		}()
	}
	wg.Wait()

	received := 0
	for {
		if _, ok := q.TryDequeue(); !ok {
			break
		}
		received++
	}
	assert.Equal(t, producers*perProducer, received)
}
