package message

import "container/heap"

// innerQueue implements container/heap.Interface over a slice of
// Message; Queue below wraps it so callers see a typed Push/Pop instead
// of heap's interface{}-based one.
type innerQueue []Message

func (q innerQueue) Len() int            { return len(q) }
func (q innerQueue) Less(i, j int) bool  { return q[i].Less(q[j]) }
func (q innerQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *innerQueue) Push(x interface{}) { *q = append(*q, x.(Message)) }
func (q *innerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Queue is the scheduler's priority-ordered event queue: pop always
// returns the message with the earliest arrival time, ties broken by
// descending message priority and then insertion order.
type Queue struct {
	inner innerQueue
	next  uint64
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{inner: innerQueue{}}
}

// Push inserts a message, stamping it with the next insertion sequence
// number for stable tie-breaking.
func (q *Queue) Push(m Message) {
	m.seq = q.next
	q.next++
	heap.Push(&q.inner, m)
}

// Pop removes and returns the earliest-eligible message. It panics if the
// queue is empty; callers must check Len first.
func (q *Queue) Pop() Message {
	return heap.Pop(&q.inner).(Message)
}

// Len reports how many messages are queued.
func (q *Queue) Len() int { return q.inner.Len() }
