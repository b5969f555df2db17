package datastructure

import "errors"

var (
	ErrHeapEmpty       = errors.New("priority queue is empty")
	ErrItemNotFound    = errors.New("item not found in priority queue")
	ErrRankNotSmaller  = errors.New("new rank must be smaller than current rank")
)

type PriorityQueueNode[T comparable] struct {
	Rank float64
	Item T
}

// MinHeap is a binary-heap priority queue keyed by Rank, with
// DecreaseKey support through an item -> index map.
type MinHeap[T comparable] struct {
	heap    []PriorityQueueNode[T]
	indexOf map[T]int
}

func NewMinHeap[T comparable]() *MinHeap[T] {
	return &MinHeap[T]{
		heap:    make([]PriorityQueueNode[T], 0),
		indexOf: make(map[T]int),
	}
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

func (h *MinHeap[T]) isEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeap[T]) parent(index int) int {
	return (index - 1) / 2
}

func (h *MinHeap[T]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.indexOf[h.heap[i].Item] = i
	h.indexOf[h.heap[j].Item] = j
}

func (h *MinHeap[T]) heapifyUp(index int) {
	for index != 0 && h.heap[index].Rank < h.heap[h.parent(index)].Rank {
		h.swap(index, h.parent(index))
		index = h.parent(index)
	}
}

func (h *MinHeap[T]) heapifyDown(index int) {
	for {
		smallest := index
		left := 2*index + 1
		right := 2*index + 2

		if left < len(h.heap) && h.heap[left].Rank < h.heap[smallest].Rank {
			smallest = left
		}
		if right < len(h.heap) && h.heap[right].Rank < h.heap[smallest].Rank {
			smallest = right
		}
		if smallest == index {
			return
		}
		h.swap(index, smallest)
		index = smallest
	}
}

func (h *MinHeap[T]) Insert(node PriorityQueueNode[T]) {
	h.heap = append(h.heap, node)
	h.indexOf[node.Item] = len(h.heap) - 1
	h.heapifyUp(len(h.heap) - 1)
}

func (h *MinHeap[T]) GetMin() (PriorityQueueNode[T], error) {
	if h.isEmpty() {
		return PriorityQueueNode[T]{}, ErrHeapEmpty
	}
	return h.heap[0], nil
}

func (h *MinHeap[T]) ExtractMin() (PriorityQueueNode[T], error) {
	if h.isEmpty() {
		return PriorityQueueNode[T]{}, ErrHeapEmpty
	}
	root := h.heap[0]
	delete(h.indexOf, root.Item)

	last := len(h.heap) - 1
	h.heap[0] = h.heap[last]
	h.heap = h.heap[:last]
	if !h.isEmpty() {
		h.indexOf[h.heap[0].Item] = 0
		h.heapifyDown(0)
	}
	return root, nil
}

// DecreaseKey lowers the rank of node.Item to node.Rank.
func (h *MinHeap[T]) DecreaseKey(node PriorityQueueNode[T]) error {
	index, ok := h.indexOf[node.Item]
	if !ok {
		return ErrItemNotFound
	}
	if node.Rank > h.heap[index].Rank {
		return ErrRankNotSmaller
	}
	h.heap[index].Rank = node.Rank
	h.heapifyUp(index)
	return nil
}
