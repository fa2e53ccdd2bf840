package utils

// Comparable items define the heap order: a.Less(b) means a is popped before b.
type Comparable interface {
	Less(o interface{}) bool
}

// PriorityQueue implements heap.Interface over Comparable items.
type PriorityQueue []Comparable

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	return pq[i].Less(pq[j])
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *PriorityQueue) Push(x interface{}) {
	*pq = append(*pq, x.(Comparable))
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

// Peek returns the item that would be popped next without removing it.
func (pq PriorityQueue) Peek() Comparable {
	if len(pq) == 0 {
		return nil
	}
	return pq[0]
}
