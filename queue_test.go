package rtkernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func queueNames(q *threadQueue) []string {
	var names []string
	for t := q.first(); t != nil; t = t.next {
		names = append(names, t.name)
	}
	return names
}

func TestThreadQueue_insertPrio(t *testing.T) {
	var q threadQueue
	mk := func(name string, prio Priority) *Thread {
		return &Thread{name: name, prio: prio}
	}
	q.insertPrio(mk(`a5`, 5))
	q.insertPrio(mk(`b9`, 9))
	q.insertPrio(mk(`c5`, 5))
	q.insertPrio(mk(`d1`, 1))
	ahead := mk(`e5`, 5)
	q.insertPrioAhead(ahead)
	assert.Equal(t, []string{`b9`, `e5`, `a5`, `c5`, `d1`}, queueNames(&q))

	q.remove(ahead)
	assert.Nil(t, ahead.queue)
	assert.Equal(t, []string{`b9`, `a5`, `c5`, `d1`}, queueNames(&q))

	assert.Equal(t, `b9`, q.popFront().name)
	assert.Equal(t, `a5`, q.popFront().name)
	assert.Equal(t, `c5`, q.popFront().name)
	assert.Equal(t, `d1`, q.popFront().name)
	assert.True(t, q.isEmpty())
	assert.Nil(t, q.popFront())
}

func TestThreadQueue_fifo(t *testing.T) {
	var q threadQueue
	for _, name := range []string{`x`, `y`, `z`} {
		q.pushBack(&Thread{name: name})
	}
	assert.Equal(t, []string{`x`, `y`, `z`}, queueNames(&q))
	y := q.first().next
	y.dequeue()
	assert.Equal(t, []string{`x`, `z`}, queueNames(&q))
}

func TestVTList_deltas(t *testing.T) {
	var l vtList
	a, b, c := &VirtualTimer{}, &VirtualTimer{}, &VirtualTimer{}
	l.insert(a, 10)
	l.insert(b, 4)
	l.insert(c, 10)
	var deltas []Interval
	for p := l.head; p != nil; p = p.next {
		deltas = append(deltas, p.delta)
	}
	assert.Equal(t, []Interval{4, 6, 0}, deltas)
	assert.Same(t, c, l.tail)

	l.remove(b)
	assert.Same(t, a, l.head)
	assert.Equal(t, Interval(10), a.delta)
	assert.False(t, b.armed)
}

func TestThreadQueue_exclusiveLinkage(t *testing.T) {
	k := &Kernel{opts: &kernelOptions{}}
	a := &Thread{k: k, name: `a`, prio: 5}
	var q1, q2 threadQueue
	q1.pushBack(a)
	for _, insert := range []func(){
		func() { q2.pushBack(a) },
		func() { q2.insertPrio(a) },
		func() { q2.insertPrioAhead(a) },
		func() { q1.pushBack(a) },
	} {
		assert.PanicsWithValue(t, &HaltError{Reason: `thread already queued`}, insert)
	}
	assert.Same(t, &q1, a.queue)
	assert.True(t, q2.isEmpty())
	assert.Equal(t, []string{`a`}, queueNames(&q1))
}
