// Package eos is a cooperative, priority-preemption-by-yield real-time
// kernel for small targets: a scheduler over fixed priority levels,
// tick-driven delays, task-to-task mail, bounded FIFO queues, and
// counting/binary/priority-inheriting semaphores.
//
// Task creation is entirely static: every task, queue, and semaphore
// owns caller-provided storage, and the set of tasks does not grow
// once Scheduler starts. Each Task is backed by one real goroutine
// parked on a channel baton, so a task body is an ordinary Go function
// whose locals survive a suspension for free — see DESIGN.md for why
// that replaces the byte-buffer/resume-pointer machinery of the
// original C kernel without changing the externally observed
// suspend/resume contract.
package eos
