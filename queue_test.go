package eos

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueSendReceiveFIFO(t *testing.T) {
	k := NewKernel()
	q := CreateStaticQueue[int](k, make([]int, 3))
	var producer Task
	k.CreateStaticTask(nil, nil, 1, "p", make([]byte, 8), &producer)

	ok1, _ := q.SendISR(1, WriteBack)
	require.True(t, ok1)
	ok2, _ := q.SendISR(2, WriteBack)
	require.True(t, ok2)
	ok3, _ := q.SendISR(3, WriteBack)
	require.True(t, ok3)
	ok4, _ := q.SendISR(4, WriteBack)
	assert.False(t, ok4, "queue at capacity must reject a fourth WriteBack")

	v, ok := q.Receive(&producer, 0)
	require.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = q.Receive(&producer, 0)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestQueueWriteFrontJumpsQueue(t *testing.T) {
	k := NewKernel()
	q := CreateStaticQueue[string](k, make([]string, 3))
	var consumer Task
	k.CreateStaticTask(nil, nil, 1, "c", make([]byte, 8), &consumer)

	okNormal, _ := q.SendISR("normal", WriteBack)
	require.True(t, okNormal)
	okUrgent, _ := q.SendISR("urgent", WriteFront)
	require.True(t, okUrgent)

	v, ok := q.Receive(&consumer, 0)
	require.True(t, ok)
	assert.Equal(t, "urgent", v)
}

func TestQueueOverwriteNeverBlocks(t *testing.T) {
	k := NewKernel()
	q := CreateStaticQueue[int](k, make([]int, 1))
	var consumer Task
	k.CreateStaticTask(nil, nil, 1, "c", make([]byte, 8), &consumer)

	ok1, _ := q.SendISR(1, WriteBack)
	require.True(t, ok1)
	ok2, _ := q.SendISR(2, Overwrite)
	require.True(t, ok2)

	v, ok := q.Receive(&consumer, 0)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

// Scenario 4: queue backpressure. A full queue blocks a priority-2
// sender with an infinite timeout; a priority-1 receiver draining one
// item unblocks it immediately, since the sender outranks the
// receiver.
func TestQueueBackpressureUnblocksSender(t *testing.T) {
	k := NewKernel(WithMaxTicks(10))
	q := CreateStaticQueue[int](k, make([]int, 2))

	var sendResults sync.Mutex
	results := []bool{}
	record := func(ok bool) {
		sendResults.Lock()
		results = append(results, ok)
		sendResults.Unlock()
	}

	var sender, receiver Task
	k.CreateStaticTask(func(tk *Task, _ any) {
		ok, _ := q.Send(tk, 1, WriteBack, 0)
		record(ok)
		ok, _ = q.Send(tk, 2, WriteBack, 0)
		record(ok)
		ok, _ = q.Send(tk, 3, WriteBack, 0)
		record(ok)
		// Now send a fourth item with an unbounded timeout: it can
		// only succeed once the receiver below drains the queue.
		ok, _ = q.Send(tk, 4, WriteBack, InfiniteTicks)
		record(ok)
	}, nil, 2, "sender", make([]byte, 64), &sender)

	var drained int
	k.CreateStaticTask(func(tk *Task, _ any) {
		tk.Delay(2)
		v, ok := q.Receive(tk, 0)
		if ok {
			drained = v
		}
	}, nil, 1, "receiver", make([]byte, 64), &receiver)

	require.NoError(t, k.Scheduler(context.Background()))

	sendResults.Lock()
	defer sendResults.Unlock()
	require.Len(t, results, 4)
	assert.True(t, results[0])
	assert.True(t, results[1])
	assert.False(t, results[2], "third non-blocking send on a full queue must fail")
	assert.True(t, results[3], "blocked send must succeed once the receiver drains an item")
	assert.Equal(t, 1, drained)
}

// With more than one slot, Overwrite on a full queue must discard the
// oldest unread item, not the most recently written one.
func TestQueueOverwriteDiscardsOldest(t *testing.T) {
	k := NewKernel()
	q := CreateStaticQueue[int](k, make([]int, 3))
	var consumer Task
	k.CreateStaticTask(nil, nil, 1, "c", make([]byte, 8), &consumer)

	ok1, _ := q.SendISR(1, WriteBack)
	require.True(t, ok1)
	ok2, _ := q.SendISR(2, WriteBack)
	require.True(t, ok2)
	ok3, _ := q.SendISR(3, WriteBack)
	require.True(t, ok3)
	ok4, _ := q.SendISR(4, Overwrite)
	require.True(t, ok4, "overwrite on a full queue must still succeed")
	assert.Equal(t, 3, q.Len(), "overwrite must not grow item_count past capacity")

	var got []int
	for i := 0; i < 3; i++ {
		v, ok := q.Receive(&consumer, 0)
		require.True(t, ok)
		got = append(got, v)
	}
	assert.Equal(t, []int{2, 3, 4}, got, "the oldest item (1) must be the one discarded")
}

// A sender blocked with an infinite timeout on a full queue must not be
// starved of wakeups: each dequeue wakes exactly the highest-priority
// waiting sender, mirroring EOSQueueAddBlockedSender's priority order.
func TestQueueBlockedSendersWakeInPriorityOrder(t *testing.T) {
	k := NewKernel(WithMaxTicks(20))
	q := CreateStaticQueue[string](k, make([]string, 1))
	okFirst, _ := q.SendISR("first", WriteBack)
	require.True(t, okFirst)

	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	var low, high, receiver Task
	k.CreateStaticTask(func(tk *Task, _ any) {
		if ok, _ := q.Send(tk, "low", WriteBack, InfiniteTicks); ok {
			record("low")
		}
	}, nil, 1, "low-sender", make([]byte, 64), &low)
	k.CreateStaticTask(func(tk *Task, _ any) {
		tk.Delay(3) // let low-sender block first
		if ok, _ := q.Send(tk, "high", WriteBack, InfiniteTicks); ok {
			record("high")
		}
	}, nil, 3, "high-sender", make([]byte, 64), &high)
	k.CreateStaticTask(func(tk *Task, _ any) {
		tk.Delay(2)
		q.Receive(tk, 0) // drain "first", wakes one blocked sender
		tk.Delay(2)
		q.Receive(tk, 0) // drain the one that sent, wakes the other
	}, nil, 2, "receiver", make([]byte, 64), &receiver)

	require.NoError(t, k.Scheduler(context.Background()))
	require.Equal(t, []string{"high", "low"}, order, "the higher-priority blocked sender must be woken first")
}

func TestQueueSingleReceiverEnforced(t *testing.T) {
	k := NewKernel(WithMaxTicks(10))
	q := CreateStaticQueue[int](k, make([]int, 1))

	var first, second Task
	var firstOK, secondOK bool
	firstStarted := make(chan struct{})

	k.CreateStaticTask(func(tk *Task, _ any) {
		close(firstStarted)
		_, firstOK = q.Receive(tk, InfiniteTicks)
	}, nil, 1, "first", make([]byte, 64), &first)

	k.CreateStaticTask(func(tk *Task, _ any) {
		<-firstStarted
		tk.Delay(1)
		_, secondOK = q.Receive(tk, 0)
	}, nil, 1, "second", make([]byte, 64), &second)

	require.NoError(t, k.Scheduler(context.Background()))
	assert.False(t, firstOK)
	assert.False(t, secondOK)
}
