package tree

import "container/heap"

// Neighbor is a point found by a search, with its distance to the query.
type Neighbor struct {
	Point    *Point
	Distance float32
}

// candidates keeps the best k neighbors seen so far. The root is the worst
// one: largest distance, then largest insertion index, so searches over
// equal distances keep the earliest inserted points.
type candidates struct {
	k     int
	items []Neighbor
}

func newCandidates(k int) *candidates {
	return &candidates{k: k, items: make([]Neighbor, 0, k)}
}

func (c *candidates) Len() int { return len(c.items) }
func (c *candidates) Less(i, j int) bool {
	a, b := c.items[i], c.items[j]
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.Point.index > b.Point.index
}
func (c *candidates) Swap(i, j int)      { c.items[i], c.items[j] = c.items[j], c.items[i] }
func (c *candidates) Push(x interface{}) { c.items = append(c.items, x.(Neighbor)) }
func (c *candidates) Pop() interface{} {
	last := c.items[len(c.items)-1]
	c.items = c.items[:len(c.items)-1]
	return last
}

func (c *candidates) full() bool { return len(c.items) == c.k }

// bound is the distance a new point must beat once the set is full.
func (c *candidates) bound() float32 { return c.items[0].Distance }

// offer adds p if the set is not full or p ranks before the worst member.
func (c *candidates) offer(p *Point, d float32) {
	if !c.full() {
		heap.Push(c, Neighbor{Point: p, Distance: d})
		return
	}
	worst := c.items[0]
	if d < worst.Distance || (d == worst.Distance && p.index < worst.Point.index) {
		c.items[0] = Neighbor{Point: p, Distance: d}
		heap.Fix(c, 0)
	}
}

// sorted empties the set and returns its members nearest first.
func (c *candidates) sorted() []*Neighbor {
	out := make([]*Neighbor, len(c.items))
	for i := len(out) - 1; i >= 0; i-- {
		n := heap.Pop(c).(Neighbor)
		out[i] = &n
	}
	return out
}
