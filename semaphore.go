package eos

// SemaphoreKind selects one of the three semaphore flavors
// original_source/eos/semaphore.c implements over a single shared
// struct: counting, binary, and the priority-inheriting mutex.
type SemaphoreKind int

const (
	Counting SemaphoreKind = iota
	Binary
	Mutex
)

// Semaphore is a priority-sorted-waiter synchronization primitive.
// Counting and Binary track only a count; Mutex additionally tracks
// an owner and performs priority inheritance on Take/GiveISR. Mirrors
// EOSSemaphore. Inheritance is single-hop: boosting an owner does not
// boost the owner of another mutex that owner is itself waiting on.
type Semaphore struct {
	k *Kernel

	kind  SemaphoreKind
	count uint32
	max   uint32

	owner   *Task
	waiters list
}

// CreateStaticCounterSemaphore creates a counting semaphore with the
// given initial count and ceiling. Mirrors EOSCreateStaticSemaphore
// called with a counting configuration.
func CreateStaticCounterSemaphore(k *Kernel, initial, max uint32) *Semaphore {
	return &Semaphore{k: k, kind: Counting, count: initial, max: max, waiters: newList(syncLinkKind)}
}

// CreateStaticBinarySemaphore creates a binary semaphore, available
// (1) or taken (0) depending on initiallyAvailable.
func CreateStaticBinarySemaphore(k *Kernel, initiallyAvailable bool) *Semaphore {
	c := uint32(0)
	if initiallyAvailable {
		c = 1
	}
	return &Semaphore{k: k, kind: Binary, count: c, max: 1, waiters: newList(syncLinkKind)}
}

// CreateStaticMutexSemaphore creates an unlocked priority-inheriting
// mutex. Mirrors EOSCreateStaticMutex.
func CreateStaticMutexSemaphore(k *Kernel) *Semaphore {
	return &Semaphore{k: k, kind: Mutex, count: 1, max: 1, waiters: newList(syncLinkKind)}
}

// Take acquires the semaphore, blocking up to ticks (InfiniteTicks to
// wait forever) if it is currently unavailable, and reports success.
// On a Mutex already held by t, Take succeeds immediately, any number
// of times, without decrementing again or queueing; there is no
// recursion count, so a single GiveISR fully releases the mutex (see
// SPEC_FULL.md §7).
func (s *Semaphore) Take(t *Task, ticks uint32) bool {
	s.k.mu.Lock()
	if s.kind == Mutex && s.owner == t {
		s.k.mu.Unlock()
		return true
	}
	if s.count > 0 {
		s.count--
		if s.kind == Mutex {
			s.owner = t
		}
		s.k.mu.Unlock()
		return true
	}

	if ticks == 0 {
		s.k.mu.Unlock()
		return false
	}

	// Priority-sorted insert: the highest-priority waiter sits at the
	// head, mirroring EOSAddTaskToSemaphore.
	s.insertWaiter(t)

	if s.kind == Mutex && s.owner != nil && t.Priority > s.owner.Priority {
		s.inheritTo(s.owner, t.Priority)
	}
	s.k.mu.Unlock()

	t.k.mu.Lock()
	if ticks == InfiniteTicks {
		t.state = StateSuspended
	} else {
		t.state = StateBlocked
		t.ticksToDelay = ticks
	}
	t.blockSource = BlockSemaphore
	t.k.mu.Unlock()
	t.doneCheckpoint()

	s.k.mu.Lock()
	defer s.k.mu.Unlock()
	if s.waiters.belongs(t) {
		// Still queued: never granted, remove ourselves.
		s.waiters.remove(t)
		return false
	}
	if ticks != InfiniteTicks && t.ticksToDelay == 0 {
		// Timed out: TickIncrement already unlinked t from waiters and
		// zeroed ticksToDelay. Retry the fast path once before failing.
		if s.count == 0 {
			return false
		}
		s.count--
	}
	if s.kind == Mutex {
		s.owner = t
	}
	return true
}

// GiveISR releases the semaphore, waking the highest-priority waiter
// if any, and — for a Mutex — reverting any priority inheritance the
// outgoing owner picked up. Safe to call from the ISR-equivalent
// critical section. Mirrors EOSSemaphoreGiveISR's disinherit-before-
// pop-waiter-before-free-key ordering. ok reports whether the give was
// valid (false if t doesn't hold the mutex, or the count is already at
// its ceiling); yield reports whether the task just woken outranks the
// currently running task, mirroring the high_priority return
// EOS_SEMAPHORE_GIVE's caller yields on.
func (s *Semaphore) GiveISR(t *Task) (ok, yield bool) {
	s.k.mu.Lock()
	defer s.k.mu.Unlock()

	if s.kind == Mutex {
		if s.owner != t {
			return false, false
		}
		s.disinherit(t)
		s.owner = nil
	} else if s.count >= s.max {
		return false, false
	}

	for {
		w := s.waiters.head
		if w == nil {
			s.count++
			return true, false
		}
		s.waiters.remove(w)
		if w.blockSource != BlockSemaphore {
			// Stale: already timed out (TickIncrement unlinks it from
			// here too, but a waiter removed some other way could still
			// be seen mid-transition) — discard and keep scanning,
			// mirroring EOSSemaphoreGiveISR's do/while skip loop.
			continue
		}
		if s.kind == Mutex {
			s.owner = w
		}
		// Counting/Binary: the freed unit passes straight to w without
		// ever touching count, matching EOSSemaphoreGiveISR's pop-
		// waiter-instead-of-incrementing-count path.
		yield = s.k.running != nil && w.Priority > s.k.running.Priority
		s.k.moveToReady(w)
		return true, yield
	}
}

// insertWaiter splices t into the waiter list in descending-priority
// order, so the head is always the highest-priority waiter. Mirrors
// EOSAddTaskToSemaphore's insertion scan.
func (s *Semaphore) insertWaiter(t *Task) {
	var ref *Task
	for c := s.waiters.head; c != nil; c = s.waiters.next(c) {
		if c.Priority < t.Priority {
			ref = c
			break
		}
	}
	if ref == nil {
		s.waiters.add(t)
	} else {
		s.waiters.insertBefore(t, ref)
	}
}

// inheritTo boosts holder's priority to at least prio, relocating it
// to the corresponding ready level if it is currently runnable.
// Mirrors the priority-boost half of EOSAddTaskToSemaphore.
func (s *Semaphore) inheritTo(holder *Task, prio uint8) {
	if holder.Priority >= prio {
		return
	}
	oldPrio := holder.Priority
	onReady := holder.schedLink.parent == &s.k.ready[oldPrio]
	holder.Priority = prio
	if onReady {
		// Use removeFromSchedList rather than a bare list.remove so the
		// old level's round-robin index is advanced first if it
		// pointed at holder — see Kernel.removeFromSchedList.
		s.k.removeFromSchedList(holder)
		s.k.ready[prio].add(holder)
	}
}

// disinherit reverts t to its original priority if inheritance had
// raised it, relocating it to the corresponding ready level if
// runnable. Mirrors the disinherit half of EOSSemaphoreGiveISR.
func (s *Semaphore) disinherit(t *Task) {
	if t.Priority == t.originalPriority {
		return
	}
	oldPrio := t.Priority
	onReady := t.schedLink.parent == &s.k.ready[oldPrio]
	t.Priority = t.originalPriority
	if onReady {
		s.k.removeFromSchedList(t)
		s.k.ready[t.Priority].add(t)
	}
}
