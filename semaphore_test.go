package eos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinarySemaphoreTakeGive(t *testing.T) {
	k := NewKernel()
	s := CreateStaticBinarySemaphore(k, true)
	var task Task
	k.CreateStaticTask(nil, nil, 1, "T", make([]byte, 8), &task)

	require.True(t, s.Take(&task, 0))
	assert.False(t, s.Take(&task, 0), "binary semaphore must not be re-takeable while held")
	ok, _ := s.GiveISR(&task)
	require.True(t, ok)
	assert.True(t, s.Take(&task, 0))
}

func TestCounterSemaphoreCeiling(t *testing.T) {
	k := NewKernel()
	s := CreateStaticCounterSemaphore(k, 2, 2)
	var task Task
	k.CreateStaticTask(nil, nil, 1, "T", make([]byte, 8), &task)

	require.True(t, s.Take(&task, 0))
	require.True(t, s.Take(&task, 0))
	assert.False(t, s.Take(&task, 0))
}

// Recursive take: a mutex holder re-taking its own mutex succeeds
// without counting; a single Give fully releases it, per spec.md §9's
// documented recursive-take simplification.
func TestMutexRecursiveTake(t *testing.T) {
	k := NewKernel()
	m := CreateStaticMutexSemaphore(k)
	var task Task
	k.CreateStaticTask(nil, nil, 1, "T", make([]byte, 8), &task)

	require.True(t, m.Take(&task, 0))
	require.True(t, m.Take(&task, 0), "re-take by the holder must succeed")
	require.True(t, m.Take(&task, 0))

	ok, _ := m.GiveISR(&task)
	require.True(t, ok)
	assert.Nil(t, m.owner)
}

// Scenario 5: priority inheritance. A mutex held by a low-priority
// task L is boosted to a higher-priority waiter H's level for the
// duration of the hold, and reverts to L's original priority on
// release.
func TestMutexPriorityInheritance(t *testing.T) {
	k := NewKernel(WithMaxTicks(20))
	m := CreateStaticMutexSemaphore(k)

	priorityDuringHold := make(chan uint8, 1)

	var low, high Task
	k.CreateStaticTask(func(tk *Task, _ any) {
		m.Take(tk, 0)
		tk.Delay(3) // give H a chance to block on m and boost us
		priorityDuringHold <- tk.Priority
		tk.Delay(2)
		m.GiveISR(tk)
	}, nil, 1, "L", make([]byte, 64), &low)

	k.CreateStaticTask(func(tk *Task, _ any) {
		tk.Delay(2) // let L take the mutex first
		m.Take(tk, InfiniteTicks)
	}, nil, 3, "H", make([]byte, 64), &high)

	require.NoError(t, k.Scheduler(context.Background()))

	select {
	case p := <-priorityDuringHold:
		assert.Equal(t, uint8(3), p, "L must be boosted to H's priority while H waits")
	default:
		t.Fatal("L never reported its held priority")
	}
	assert.Equal(t, uint8(1), low.Priority, "L must revert to its original priority after Give")
}
