package graph

import "container/heap"

// QueueNode is a priority-queue entry: a node and its tentative distance.
type QueueNode struct {
	Node     NodeID
	Distance uint32
}

// Less orders entries by ascending distance, then ascending NodeID, so the
// minimum popped from a queue is deterministic.
func (a QueueNode) Less(b QueueNode) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Node < b.Node
}

// PriorityQueue is a binary min-heap of QueueNode. The zero value is an
// empty queue ready for use.
type PriorityQueue struct {
	items queueItems
}

// NewPriorityQueue returns an empty queue with capacity for n entries.
func NewPriorityQueue(n int) *PriorityQueue {
	return &PriorityQueue{items: make(queueItems, 0, n)}
}

// Push adds an entry.
func (q *PriorityQueue) Push(n QueueNode) {
	heap.Push(&q.items, n)
}

// Pop removes and returns the minimum entry. ok is false if the queue is empty.
func (q *PriorityQueue) Pop() (n QueueNode, ok bool) {
	if len(q.items) == 0 {
		return QueueNode{}, false
	}
	return heap.Pop(&q.items).(QueueNode), true
}

// Peek returns the minimum entry without removing it.
func (q *PriorityQueue) Peek() (QueueNode, bool) {
	if len(q.items) == 0 {
		return QueueNode{}, false
	}
	return q.items[0], true
}

// Len returns the number of queued entries.
func (q *PriorityQueue) Len() int {
	return len(q.items)
}

// queueItems implements heap.Interface.
type queueItems []QueueNode

func (h queueItems) Len() int           { return len(h) }
func (h queueItems) Less(i, j int) bool { return h[i].Less(h[j]) }
func (h queueItems) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *queueItems) Push(x any) {
	*h = append(*h, x.(QueueNode))
}

func (h *queueItems) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
