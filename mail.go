package eos

// Mail is a single-slot, task-addressed mailbox: each Task has exactly
// one mail value and a pending count, set by MailSendISR and consumed
// by MailWait. There is no separate Mailbox type — the mailbox lives
// inside every Task, matching eos.h's EOSTaskMail fields.

// MailSendISR posts v to dst's mailbox: the value is latest-write-wins
// but the pending count increments on every send, and wakes dst if it
// is currently blocked waiting for mail. It reports whether dst
// outranks the currently running task, a hint that the caller (if
// itself a task) may want to yield. Safe to call from the
// ISR-equivalent critical section, i.e. it never blocks. Mirrors
// EOSMailSendISR.
func (k *Kernel) MailSendISR(dst *Task, v uint32) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	dst.mailValue = v
	dst.mailCount++

	if dst.blockSource == BlockMail && (k.blocked.belongs(dst) || k.suspended.belongs(dst)) {
		k.moveToReady(dst)
	}
	return k.running != nil && dst.Priority > k.running.Priority
}

// MailWait blocks the calling task until mail arrives or ticks elapse,
// whichever comes first, and reports which happened. Passing
// InfiniteTicks waits forever. On success *msg receives the pending
// value and the pending count is decremented. Mirrors the original's
// three-phase block/receive/unblock protocol used throughout
// scheduler.c's wait primitives, generalized to mail.
func (t *Task) MailWait(msg *uint32, ticks uint32) bool {
	t.k.mu.Lock()
	if t.mailCount > 0 {
		*msg = t.mailValue
		t.mailCount--
		t.k.mu.Unlock()
		return true
	}
	t.k.mu.Unlock()

	if ticks == 0 {
		return false
	}

	if ticks == InfiniteTicks {
		t.state = StateSuspended
	} else {
		t.state = StateBlocked
		t.ticksToDelay = ticks
	}
	t.blockSource = BlockMail
	t.doneCheckpoint()

	t.k.mu.Lock()
	defer t.k.mu.Unlock()
	if t.mailCount > 0 {
		*msg = t.mailValue
		t.mailCount--
		return true
	}
	return false
}

// MailClear discards any unread mail without waiting, leaving the
// mailbox empty.
func (t *Task) MailClear() {
	t.k.mu.Lock()
	defer t.k.mu.Unlock()
	t.mailValue = 0
	t.mailCount = 0
}
