package eos

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Kernel owns the scheduling lists, the tick counter, and the
// supervised set of task goroutines. It plays the role of the
// original kernel's file-scope globals (eos_tick, eos_running_task,
// ready_list[], blocked_list, suspended_list) bundled into a value so
// more than one can exist in a process (useful for tests).
type Kernel struct {
	mu sync.Mutex

	cfg Config

	tick    uint32
	running *Task

	ready     []list
	blocked   list
	suspended list

	group    *errgroup.Group
	groupCtx context.Context

	idleStackBuf []byte
	idleTask     Task
	idleCreated  bool
}

// NewKernel constructs a Kernel with the given options layered over
// DefaultConfig.
func NewKernel(opts ...Option) *Kernel {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	k := &Kernel{cfg: cfg, tick: cfg.InitialTick}
	k.ready = make([]list, int(cfg.MaxPriority)+1)
	for p := range k.ready {
		k.ready[p] = newList(schedLinkKind)
	}
	k.blocked = newList(schedLinkKind)
	k.suspended = newList(schedLinkKind)
	k.group, k.groupCtx = errgroup.WithContext(context.Background())
	return k
}

// Tick returns the current tick count.
func (k *Kernel) Tick() uint32 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.tick
}

// CreateStaticTask registers a new task and binds it to caller-owned
// storage: stackBuf backs the task's scratch Stack, taskBuf backs the
// Task record itself. Neither is ever reallocated by the kernel.
// Mirrors EOSCreateStaticTask.
func (k *Kernel) CreateStaticTask(body TaskFunc, args any, priority uint8, name string, stackBuf []byte, taskBuf *Task) *Task {
	k.mu.Lock()
	if priority > k.cfg.MaxPriority {
		priority = k.cfg.MaxPriority
	}

	*taskBuf = Task{
		k:                k,
		Name:             truncateName(name, k.cfg.NameLen),
		Priority:         priority,
		originalPriority: priority,
		body:             body,
		args:             args,
		stack:            NewStack(stackBuf, k.cfg),
		state:            StateRunning,
		blockSource:      BlockNone,
		resumeCh:         make(chan struct{}),
		doneCh:           make(chan struct{}),
	}
	k.ready[priority].add(taskBuf)
	k.mu.Unlock()

	k.spawn(taskBuf)
	return taskBuf
}

// spawn starts t's backing goroutine, parked until the scheduler's
// first dispatch, supervised by the kernel's errgroup so a task
// panicking with anything other than exitSignal becomes a single
// fatal error surfaced from Scheduler, instead of silently wedging
// every other task.
func (k *Kernel) spawn(t *Task) {
	k.group.Go(func() (err error) {
		select {
		case <-t.resumeCh:
		case <-k.groupCtx.Done():
			return nil
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					if _, ok := r.(exitSignal); !ok {
						err = fmt.Errorf("eos: task %q panicked: %v", t.Name, r)
					}
				}
			}()
			t.body(t, t.args)
		}()
		if err != nil {
			return err
		}

		t.state = StateEnded
		select {
		case t.doneCh <- struct{}{}:
		case <-k.groupCtx.Done():
		}
		return nil
	})
}

func (k *Kernel) createIdleTask() {
	if k.idleCreated {
		return
	}
	k.idleCreated = true
	k.idleStackBuf = make([]byte, k.cfg.WatermarkRoom+64)
	k.CreateStaticTask(func(t *Task, _ any) {
		for {
			k.cfg.IdleHook()
			t.Yield()
		}
	}, nil, 0, "idle", k.idleStackBuf, &k.idleTask)
}

// pickNext scans priority levels from highest to lowest and returns
// the first level's preserved-index task, or its head if no index is
// set. Mirrors EOSGetNextTaskToRun.
func (k *Kernel) pickNext() *Task {
	k.mu.Lock()
	defer k.mu.Unlock()
	for p := int(k.cfg.MaxPriority); p >= 0; p-- {
		l := &k.ready[p]
		if l.head == nil {
			continue
		}
		if l.index != nil {
			return l.index
		}
		return l.head
	}
	k.assert(false, "no ready task found (idle task missing?)")
	return nil
}

// runSlice dispatches t for exactly one slice: hand it the baton,
// wait for it to yield/block/suspend/end (or for ctx/groupCtx to end
// the run), then check its scratch stack's watermark.
func (k *Kernel) runSlice(ctx context.Context, t *Task) error {
	k.mu.Lock()
	k.running = t
	k.mu.Unlock()

	select {
	case t.resumeCh <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-k.groupCtx.Done():
		return k.group.Wait()
	}

	select {
	case <-t.doneCh:
	case <-ctx.Done():
		return ctx.Err()
	case <-k.groupCtx.Done():
		return k.group.Wait()
	}

	k.assert(!t.stack.Overflowed(), "task %q stack watermark overflow", t.Name)
	return nil
}

// relocate performs the post-dispatch bookkeeping: advance the
// level's round-robin index, then move t between ready/blocked/
// suspended according to the state it left behind. Mirrors the
// switch in EOSScheduler after a task returns control.
func (k *Kernel) relocate(t *Task) {
	k.mu.Lock()
	defer k.mu.Unlock()

	l := &k.ready[t.Priority]
	// Always advance the index first, even if t stays put: this is
	// what makes yielding "true" round robin under preemption by a
	// higher level that later returns control to this one.
	l.setIndex(l.next(t))

	switch t.state {
	case StateEnded:
		l.remove(t)
	case StateYield:
		// stays in ready[p]; index already advanced above.
	case StateBlocked:
		if t.blockSource == BlockNone {
			// Stale Blocked left by a primitive that didn't actually
			// block; treat like Yield.
			return
		}
		l.remove(t)
		t.unblockTick = k.tick + t.ticksToDelay
		t.tickOverflow = t.unblockTick < k.tick
		k.insertBlocked(t)
	case StateSuspended:
		if t.blockSource == BlockNone {
			return
		}
		l.remove(t)
		k.suspended.add(t)
	default:
		k.assert(false, "task %q left invalid post-run state %v", t.Name, t.state)
	}
	if k.cfg.Logger != nil {
		k.cfg.Logger.WithFields(map[string]any{
			"task": t.Name, "priority": t.Priority, "tick": k.tick, "state": t.state.String(),
		}).Debug("eos: relocate")
	}
}

func (k *Kernel) insertBlocked(t *Task) {
	var idx *Task
	for c := k.blocked.head; c != nil; c = k.blocked.next(c) {
		if delayRemain(k.tick, c.unblockTick) > delayRemain(k.tick, t.unblockTick) {
			idx = c
			break
		}
	}
	if idx == nil {
		k.blocked.add(t)
	} else {
		k.blocked.insertBefore(t, idx)
	}
}

// TickIncrement advances the tick counter and unblocks every task
// whose deadline has passed, walking the blocked list from its head
// (least remaining time first) and stopping at the first task that is
// still genuinely waiting — including the wrap-safe tick_over_flow
// dance. Mirrors EOSTickIncrement.
func (k *Kernel) TickIncrement() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.tick++

	for {
		d := k.blocked.head
		if d == nil {
			break
		}
		if d.tickOverflow {
			if d.unblockTick >= k.tick {
				d.tickOverflow = false
				continue
			}
			break
		}
		if d.unblockTick > k.tick {
			break
		}

		k.blocked.remove(d)
		d.ticksToDelay = 0
		d.blockSource = BlockNone
		// d may still be linked into a synchronization object's waiter
		// list (Semaphore.waiters, Queue.senders); unlink it here
		// rather than leaving that to the primitive's own wakeup path,
		// mirroring EOSTickIncrement's explicit sync-list removal
		// (scheduler.c:85-89) — otherwise a later Give/Send could still
		// find and hand ownership to a task that already timed out.
		if d.syncLink.parent != nil {
			d.syncLink.parent.remove(d)
		}
		k.ready[d.Priority].add(d)
	}
}

// removeFromSchedList removes t from whichever of ready/blocked/
// suspended currently holds it, correctly advancing a ready level's
// round-robin index first if t was it. Used by ISR-safe wakeups and
// by mutex priority (dis)inheritance, both of which may need to move
// a task that the scheduler itself did not just dispatch.
func (k *Kernel) removeFromSchedList(t *Task) {
	parent := t.schedLink.parent
	if parent == nil {
		return
	}
	if parent.getIndex() == t {
		parent.setIndex(parent.next(t))
	}
	parent.remove(t)
}

// moveToReady relocates t onto ready[t.Priority], appending to the
// tail so it yields to already-queued equal-priority tasks, and
// clears its block source. t may currently be on blocked, suspended,
// or a different ready level (after a priority change).
func (k *Kernel) moveToReady(t *Task) {
	k.removeFromSchedList(t)
	t.blockSource = BlockNone
	k.ready[t.Priority].add(t)
}

func delayRemain(tick, unblockTick uint32) uint32 {
	return timeDifference(tick, unblockTick)
}

func timeDifference(ref, act uint32) uint32 {
	if ref <= act {
		return act - ref
	}
	return (0xffffffff - (ref - act)) + 1
}

// Scheduler runs the dispatch loop: pick the highest-priority ready
// task (honoring the round-robin index), dispatch it for one slice,
// relocate it, pulse the tick, repeat — until ctx is canceled, a task
// panics with a contract violation, or (in test configurations)
// Config.MaxTicks is reached. It seeds priority 0 with an idle task on
// first call, exactly like EOSScheduler does with EOSIdleTask.
func (k *Kernel) Scheduler(ctx context.Context) (err error) {
	k.createIdleTask()

	defer func() {
		if r := recover(); r != nil {
			if cv, ok := r.(*ContractViolation); ok {
				err = cv
				return
			}
			panic(r)
		}
	}()

	var elapsed uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-k.groupCtx.Done():
			return k.group.Wait()
		default:
		}

		t := k.pickNext()
		if e := k.runSlice(ctx, t); e != nil {
			return e
		}
		k.relocate(t)
		k.TickIncrement()
		elapsed++

		if k.cfg.MaxTicks > 0 && elapsed >= k.cfg.MaxTicks {
			return nil
		}
	}
}

// RunningTask returns the task currently holding the dispatch baton,
// or nil outside of a dispatch slice (e.g. before Scheduler starts).
func (k *Kernel) RunningTask() *Task {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.running
}
