package eos

// link is one of a Task's two intrusive list hooks. A Task carries
// exactly two: schedLink threads it through ready[p]/blocked/suspended,
// syncLink threads it through at most one synchronization object's
// waiter list — see spec.md §3's "two independent list hooks"
// invariant. Nodes are never owned by the list; the task owns the
// node, the list only threads it, per the intrusive-list design note.
type link struct {
	prev, next *Task
	parent     *list
}

// linkKind selects which of a Task's two link sets a list threads,
// standing in for the "link" macro parameter of the C original's
// EOS_ADD_TO_LIST(list, task, link) family — Go has no textual macros,
// so the list itself remembers which hook it uses.
type linkKind int

const (
	schedLinkKind linkKind = iota
	syncLinkKind
)

func (t *Task) linkFor(k linkKind) *link {
	if k == schedLinkKind {
		return &t.schedLink
	}
	return &t.syncLink
}

// list is a doubly-linked, intrusive, bounded-O(1) list over Tasks.
// head/tail bound the list; index is a scratch cursor — the
// "preserved next" for ready-list round robin (§4.2) or the unique
// holder/receiver for a semaphore/queue waiter list (§4.5/§4.6).
type list struct {
	kind        linkKind
	head, tail  *Task
	index       *Task
}

func newList(kind linkKind) list { return list{kind: kind} }

// add appends task to the tail of the list. Mirrors EOS_ADD_TO_LIST.
func (l *list) add(task *Task) {
	ln := task.linkFor(l.kind)
	ln.parent = l
	if l.head == nil {
		ln.prev, ln.next = nil, nil
		l.head, l.tail = task, task
		return
	}
	tailLn := l.tail.linkFor(l.kind)
	tailLn.next = task
	ln.prev = l.tail
	ln.next = nil
	l.tail = task
}

// remove unlinks task from the list. Mirrors EOS_REMOVE_FROM_LIST.
func (l *list) remove(task *Task) {
	ln := task.linkFor(l.kind)
	if ln.prev == nil {
		l.head = ln.next
		if l.head != nil {
			l.head.linkFor(l.kind).prev = nil
		}
	} else {
		ln.prev.linkFor(l.kind).next = ln.next
	}
	if ln.next == nil {
		l.tail = ln.prev
		if l.tail != nil {
			l.tail.linkFor(l.kind).next = nil
		}
	} else {
		ln.next.linkFor(l.kind).prev = ln.prev
	}
	ln.prev, ln.next, ln.parent = nil, nil, nil
}

// insertBefore splices newTask immediately before ref. ref must
// already belong to the list. Mirrors EOS_INSERT_PREV_TO_ITEM_IN_LIST.
func (l *list) insertBefore(newTask, ref *Task) {
	if ref == nil {
		return
	}
	refLn := ref.linkFor(l.kind)
	newLn := newTask.linkFor(l.kind)
	newLn.prev = refLn.prev
	refLn.prev = newTask
	newLn.next = ref
	newLn.parent = l
	if newLn.prev == nil {
		l.head = newTask
	} else {
		newLn.prev.linkFor(l.kind).next = newTask
	}
}

func (l *list) belongs(task *Task) bool {
	return task.linkFor(l.kind).parent == l
}

func (l *list) next(task *Task) *Task {
	return task.linkFor(l.kind).next
}

func (l *list) setIndex(task *Task) { l.index = task }
func (l *list) getIndex() *Task     { return l.index }
func (l *list) empty() bool         { return l.head == nil }
