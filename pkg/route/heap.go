package route

// minHeap is a concrete-typed min-heap for the Dijkstra priority queue.
// Avoids interface boxing overhead of container/heap.
//
// Entries with equal distance order by push sequence, so candidates
// discovered earlier pop first and traversal output is reproducible on
// identical input.
type minHeap struct {
	items []pqItem
	seq   int
}

type pqItem struct {
	node int32
	dist float64
	seq  int
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) Push(node int32, dist float64) {
	h.items = append(h.items, pqItem{node: node, dist: dist, seq: h.seq})
	h.seq++
	h.siftUp(len(h.items) - 1)
}

func (h *minHeap) Pop() pqItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *minHeap) less(i, j int) bool {
	if h.items[i].dist != h.items[j].dist {
		return h.items[i].dist < h.items[j].dist
	}
	return h.items[i].seq < h.items[j].seq
}

func (h *minHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *minHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.less(left, smallest) {
			smallest = left
		}
		if right < n && h.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
