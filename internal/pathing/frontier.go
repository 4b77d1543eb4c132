package pathing

// entry is the per-cell search record. index is the heap slot, -1 when the
// cell is not in the open set.
type entry struct {
	node      Node
	g         float64
	f         float64
	parent    Key
	hasParent bool

	index int
	seq   uint64
}

func (e *entry) key() float64 {
	return frontierKey(e.f, e.node.Velocity)
}

// frontier is a binary heap of entries ordered by f minus velocity, then by
// insertion order.
type frontier []*entry

func (pq frontier) Len() int { return len(pq) }

func (pq frontier) Less(i, j int) bool {
	ki, kj := pq[i].key(), pq[j].key()
	if ki != kj {
		return ki < kj
	}
	return pq[i].seq < pq[j].seq
}

func (pq frontier) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *frontier) Push(x any) {
	n := len(*pq)
	item := x.(*entry)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *frontier) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}
