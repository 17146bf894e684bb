package eos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAddRemoveOrder(t *testing.T) {
	l := newList(schedLinkKind)
	a, b, c := &Task{Name: "a"}, &Task{Name: "b"}, &Task{Name: "c"}

	l.add(a)
	l.add(b)
	l.add(c)

	require.Equal(t, a, l.head)
	require.Equal(t, c, l.tail)
	assert.Equal(t, b, l.next(a))
	assert.Equal(t, c, l.next(b))
	assert.Nil(t, l.next(c))

	l.remove(b)
	assert.Equal(t, c, l.next(a))
	assert.False(t, l.belongs(b))
	assert.Nil(t, b.schedLink.parent)
}

func TestListInsertBeforePreservesOrder(t *testing.T) {
	l := newList(syncLinkKind)
	a, b := &Task{Name: "a"}, &Task{Name: "b"}
	l.add(a)
	l.add(b)

	mid := &Task{Name: "mid"}
	l.insertBefore(mid, b)

	got := []string{}
	for c := l.head; c != nil; c = l.next(c) {
		got = append(got, c.Name)
	}
	assert.Equal(t, []string{"a", "mid", "b"}, got)
}

func TestListIndexCursor(t *testing.T) {
	l := newList(schedLinkKind)
	a, b := &Task{Name: "a"}, &Task{Name: "b"}
	l.add(a)
	l.add(b)

	assert.Nil(t, l.getIndex())
	l.setIndex(b)
	assert.Equal(t, b, l.getIndex())
	assert.True(t, l.empty() == false)
}

func TestListEmpty(t *testing.T) {
	l := newList(schedLinkKind)
	assert.True(t, l.empty())
	l.add(&Task{Name: "x"})
	assert.False(t, l.empty())
}
