package eos

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// traceRecorder collects ordered events from multiple task goroutines
// under one mutex, standing in for the printed traces spec.md §8's
// scenarios describe.
type traceRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *traceRecorder) record(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *traceRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

// Scenario 1: two equal-priority tasks yielding strictly alternate.
func TestSchedulerEqualPriorityAlternation(t *testing.T) {
	k := NewKernel(WithMaxTicks(6))
	tr := &traceRecorder{}

	var t1, t2 Task
	k.CreateStaticTask(func(tk *Task, _ any) {
		for {
			tr.record("T1")
			tk.Yield()
		}
	}, nil, 1, "T1", make([]byte, 64), &t1)
	k.CreateStaticTask(func(tk *Task, _ any) {
		for {
			tr.record("T2")
			tk.Yield()
		}
	}, nil, 1, "T2", make([]byte, 64), &t2)

	require.NoError(t, k.Scheduler(context.Background()))
	assert.Equal(t, []string{"T1", "T2", "T1", "T2", "T1", "T2"}, tr.snapshot())
}

// Scenario 2: a task delaying fewer ticks wakes before one delaying
// more, even though both issue Delay at the same dispatch round.
func TestSchedulerDelayOrdering(t *testing.T) {
	k := NewKernel(WithMaxTicks(20))
	tr := &traceRecorder{}

	var t1, t2 Task
	k.CreateStaticTask(func(tk *Task, _ any) {
		tk.Delay(4)
		tr.record("T1")
	}, nil, 1, "T1", make([]byte, 64), &t1)
	k.CreateStaticTask(func(tk *Task, _ any) {
		tk.Delay(2)
		tr.record("T2")
	}, nil, 1, "T2", make([]byte, 64), &t2)

	require.NoError(t, k.Scheduler(context.Background()))
	assert.Equal(t, []string{"T2", "T1"}, tr.snapshot())
}

// Scenario 6: tick wraparound. A task delaying across the 32-bit tick
// boundary remains blocked through the wrap and wakes only once the
// counter has genuinely advanced past its deadline.
func TestSchedulerTickWraparound(t *testing.T) {
	k := NewKernel(WithMaxTicks(10), WithInitialTick(0xFFFFFFFE))
	tr := &traceRecorder{}

	var task Task
	k.CreateStaticTask(func(tk *Task, _ any) {
		tk.Delay(5)
		tr.record("woke")
	}, nil, 1, "T", make([]byte, 64), &task)

	require.NoError(t, k.Scheduler(context.Background()))
	assert.Equal(t, []string{"woke"}, tr.snapshot())
}

// A task's scratch stack watermark must survive an ordinary run.
func TestSchedulerWatermarkSurvivesDispatch(t *testing.T) {
	k := NewKernel(WithMaxTicks(3))
	var task Task
	buf := make([]byte, 48)
	k.CreateStaticTask(func(tk *Task, _ any) {
		for {
			tk.Yield()
		}
	}, nil, 1, "T", buf, &task)

	require.NoError(t, k.Scheduler(context.Background()))
	assert.False(t, task.stack.Overflowed())
}

// A task body that panics with anything other than Exit's internal
// sentinel is a fatal contract violation surfaced from Scheduler.
func TestSchedulerTaskPanicIsFatal(t *testing.T) {
	k := NewKernel(WithMaxTicks(50))
	var task Task
	k.CreateStaticTask(func(tk *Task, _ any) {
		panic("boom")
	}, nil, 1, "T", make([]byte, 64), &task)

	err := k.Scheduler(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

// Task.Exit unwinds to end-of-task without being treated as fatal.
func TestTaskExitEndsCleanly(t *testing.T) {
	k := NewKernel(WithMaxTicks(5))
	tr := &traceRecorder{}
	var task Task
	k.CreateStaticTask(func(tk *Task, _ any) {
		tr.record("before")
		tk.Exit()
		tr.record("after") // unreachable
	}, nil, 1, "T", make([]byte, 64), &task)

	require.NoError(t, k.Scheduler(context.Background()))
	assert.Equal(t, []string{"before"}, tr.snapshot())
}
