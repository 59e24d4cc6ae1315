package scheduler

import "container/heap"

// publishHeap implements container/heap.Interface for PublishEvent,
// sorted by TriggerAt (earliest first — min-heap).
type publishHeap []PublishEvent

func (h publishHeap) Len() int           { return len(h) }
func (h publishHeap) Less(i, j int) bool { return h[i].TriggerAt.Before(h[j].TriggerAt) }
func (h publishHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *publishHeap) Push(x any) {
	*h = append(*h, x.(PublishEvent))
}

func (h *publishHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// heapPush adds a PublishEvent to the heap, maintaining the heap invariant.
func heapPush(h *publishHeap, e PublishEvent) {
	heap.Push(h, e)
}

// heapPop removes and returns the PublishEvent with the earliest TriggerAt.
// Panics if the heap is empty.
func heapPop(h *publishHeap) PublishEvent {
	return heap.Pop(h).(PublishEvent)
}

// heapRemoveById removes the first PublishEvent for the given publication.
// Returns true if an event was found and removed.
func heapRemoveById(h *publishHeap, publicationId string) bool {
	for i, e := range *h {
		if e.PublicationId == publicationId {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}
