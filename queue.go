package eos

// QueueFlag controls where Send places an item relative to the
// queue's existing contents, mirroring the write-position flags
// original_source/eos/queue.c takes on EOSQueueSend.
type QueueFlag int

const (
	// WriteBack appends to the tail (ordinary FIFO send).
	WriteBack QueueFlag = iota
	// WriteFront inserts ahead of everything currently queued, for a
	// single urgent item that must be the next one Received.
	WriteFront
	// Overwrite always succeeds: once the queue is full it discards
	// the oldest unread item to make room for the new one instead of
	// blocking or failing, matching the original's overwrite variant.
	Overwrite
)

// Queue is a bounded, static-storage FIFO of T, with at most one
// receiver blocked on it at a time — mirroring
// original_source/eos/queue.c's single-waiter discipline
// (waiting_tasks.index names the one task Receive may wake).
type Queue[T any] struct {
	k *Kernel

	buf        []T
	head, size int

	receiver list
	// senders holds tasks blocked in Send on a full queue, sorted by
	// descending priority (head is the highest-priority waiter) —
	// mirrors EOSQueueAddBlockedSender's insertion discipline.
	senders list
}

// CreateStaticQueue builds a Queue backed by buf; buf's length is the
// queue's capacity. Mirrors EOSCreateStaticQueue, generalized with Go
// generics past the original's fixed byte-size item model.
func CreateStaticQueue[T any](k *Kernel, buf []T) *Queue[T] {
	return &Queue[T]{k: k, buf: buf, receiver: newList(syncLinkKind), senders: newList(syncLinkKind)}
}

// insertSender splices t into the blocked-sender list in descending-
// priority order, so retrieve always wakes the highest-priority
// waiter first. Mirrors Semaphore.insertWaiter's scan.
func (q *Queue[T]) insertSender(t *Task) {
	var ref *Task
	for c := q.senders.head; c != nil; c = q.senders.next(c) {
		if c.Priority < t.Priority {
			ref = c
			break
		}
	}
	if ref == nil {
		q.senders.add(t)
	} else {
		q.senders.insertBefore(t, ref)
	}
}

// Cap reports the queue's fixed capacity.
func (q *Queue[T]) Cap() int { return len(q.buf) }

// Len reports how many items are currently queued.
func (q *Queue[T]) Len() int {
	q.k.mu.Lock()
	defer q.k.mu.Unlock()
	return q.size
}

func (q *Queue[T]) at(i int) int { return (q.head + i) % len(q.buf) }

// SendISR enqueues v without blocking, for use from the ISR-equivalent
// critical section; it fails (returns ok=false) if the queue is full,
// except under Overwrite, which always succeeds by discarding the
// oldest item. It wakes a blocked receiver, if any, mirroring
// EOSQueueSendISR; yield reports whether that receiver outranks the
// currently running task, the same hint MailSendISR returns.
func (q *Queue[T]) SendISR(v T, flag QueueFlag) (ok, yield bool) {
	q.k.mu.Lock()
	defer q.k.mu.Unlock()
	return q.send(v, flag)
}

// Send enqueues v, blocking up to ticks if the queue is currently
// full (InfiniteTicks to wait forever), and reports whether it was
// able to enqueue, plus whether a woken receiver outranks the caller.
// Overwrite never blocks, since it always succeeds.
func (q *Queue[T]) Send(t *Task, v T, flag QueueFlag, ticks uint32) (ok, yield bool) {
	q.k.mu.Lock()
	if flag == Overwrite || q.size < len(q.buf) {
		ok, yield = q.send(v, flag)
		q.k.mu.Unlock()
		return ok, yield
	}
	if ticks == 0 {
		q.k.mu.Unlock()
		return false, false
	}

	// spec.md §4.5: without Overwrite, a full queue's sender waits in
	// the priority-sorted waiter list; a successful dequeue wakes the
	// highest-priority blocked sender (see retrieve).
	q.insertSender(t)
	q.k.mu.Unlock()

	t.k.mu.Lock()
	if ticks == InfiniteTicks {
		t.state = StateSuspended
	} else {
		t.state = StateBlocked
		t.ticksToDelay = ticks
	}
	t.blockSource = BlockQueue
	t.k.mu.Unlock()
	t.doneCheckpoint()

	q.k.mu.Lock()
	defer q.k.mu.Unlock()
	if q.senders.belongs(t) {
		// Still queued: never woken by a dequeue, remove ourselves. (A
		// timeout has already unlinked t in TickIncrement and falls
		// through to the retry below.)
		q.senders.remove(t)
		return false, false
	}
	if q.size < len(q.buf) {
		return q.send(v, flag)
	}
	return false, false
}

// send is the unlocked core of SendISR/Send: queue management plus
// waking a blocked Receive. Caller must hold q.k.mu. yield reports
// whether the woken receiver outranks the currently running task.
func (q *Queue[T]) send(v T, flag QueueFlag) (ok, yield bool) {
	switch flag {
	case Overwrite:
		// Mirrors EOSQueueSendISR's overwrite path: write at the next
		// enqueue slot; if the ring was already full that slot is the
		// oldest unread item, so advance the read pointer past it
		// instead of growing item_count.
		full := q.size >= len(q.buf)
		q.buf[q.at(q.size%len(q.buf))] = v
		if full {
			q.head = q.at(1)
		} else {
			q.size++
		}
	case WriteFront:
		if q.size == len(q.buf) {
			return false, false
		}
		q.head = (q.head - 1 + len(q.buf)) % len(q.buf)
		q.buf[q.head] = v
		q.size++
	default: // WriteBack
		if q.size == len(q.buf) {
			return false, false
		}
		q.buf[q.at(q.size)] = v
		q.size++
	}

	if r := q.receiver.index; r != nil && r.blockSource == BlockQueue {
		yield = q.k.running != nil && r.Priority > q.k.running.Priority
		q.k.moveToReady(r)
	}
	return true, yield
}

// Receive removes and returns the item at the head of the queue,
// blocking up to ticks (InfiniteTicks for forever) if it is currently
// empty. It reports whether an item was retrieved. Only one task may
// ever have a Receive outstanding on a given Queue at a time — a
// second concurrent Receive fails immediately (ok=false, logged at
// Warn if a logger is set), matching original_source/eos/queue.c's
// single-receiver invariant.
func (q *Queue[T]) Receive(t *Task, ticks uint32) (v T, ok bool) {
	q.k.mu.Lock()
	if q.receiver.index != nil && q.receiver.index != t {
		if q.k.cfg.Logger != nil {
			q.k.cfg.Logger.WithField("task", t.Name).Warn("eos: queue already has a waiting receiver")
		}
		q.k.mu.Unlock()
		var zero T
		return zero, false
	}

	if q.size > 0 {
		v = q.retrieve()
		q.k.mu.Unlock()
		return v, true
	}
	if ticks == 0 {
		q.k.mu.Unlock()
		return v, false
	}
	q.receiver.index = t
	q.k.mu.Unlock()

	t.k.mu.Lock()
	if ticks == InfiniteTicks {
		t.state = StateSuspended
	} else {
		t.state = StateBlocked
		t.ticksToDelay = ticks
	}
	t.blockSource = BlockQueue
	t.k.mu.Unlock()
	t.doneCheckpoint()

	q.k.mu.Lock()
	defer func() {
		q.receiver.index = nil
		q.k.mu.Unlock()
	}()
	if q.size > 0 {
		return q.retrieve(), true
	}
	var zero T
	return zero, false
}

// retrieve is the unlocked core of Receive's fast and wakeup paths.
// Caller must hold q.k.mu.
func (q *Queue[T]) retrieve() T {
	v := q.buf[q.head]
	var zero T
	q.buf[q.head] = zero
	q.head = q.at(1)
	q.size--

	for {
		w := q.senders.head
		if w == nil {
			break
		}
		q.senders.remove(w)
		if w.blockSource != BlockQueue {
			// Stale: already timed out, discard and keep scanning rather
			// than leaving it stuck at the head forever, mirroring
			// EOSQueueRetrieve's do/while skip loop.
			continue
		}
		q.k.moveToReady(w)
		break
	}
	return v
}
