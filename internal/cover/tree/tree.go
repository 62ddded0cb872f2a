package tree

// This implementation is adapted from github.com/viant/gds/tree/cover.

import (
	"container/heap"
	"math"
	"sort"
)

// Tree represents a cover tree for Euclidean kNN and range queries.
//
// A tree is built by Insert calls followed by Seal. Sealing computes subtree
// radii once; afterwards searches never mutate the tree and may run
// concurrently. Searching an unsealed tree is correct but does not prune.
type Tree[T any] struct {
	root         *Node
	base         float32
	distanceFunc DistanceFunc
	values       []T
	sealed       bool
}

// DefaultBase is used when NewTree receives a base <= 1.
const DefaultBase = 1.3

// radiusSlack widens sealed radii so float32 rounding never makes the
// triangle-inequality bound prune a point that is within range.
const radiusSlack = 1e-5

// NewTree constructs a cover tree with the provided base.
func NewTree[T any](base float32) *Tree[T] {
	if base <= 1 {
		base = DefaultBase
	}
	return &Tree[T]{
		base:         base,
		distanceFunc: Euclidean,
	}
}

// Len returns the number of inserted points.
func (t *Tree[T]) Len() int { return len(t.values) }

// Insert adds a new value/vector pair to the tree and returns its index.
func (t *Tree[T]) Insert(value T, point *Point) int32 {
	point.index = int32(len(t.values))
	t.values = append(t.values, value)
	t.sealed = false
	if t.root == nil {
		node := NewNode(point, 0)
		t.root = &node
	} else {
		t.insert(t.root, point, 0)
	}
	return point.index
}

// Value returns the stored value for the given point.
func (t *Tree[T]) Value(point *Point) T {
	var zero T
	if point == nil || !point.HasValue() || int(point.index) >= len(t.values) {
		return zero
	}
	return t.values[point.index]
}

// coverRadius is base^level, the distance within which a node at level
// covers its children.
func (t *Tree[T]) coverRadius(level int32) float32 {
	return float32(math.Pow(float64(t.base), float64(level)))
}

func (t *Tree[T]) insert(node *Node, point *Point, level int32) {
	for {
		r := t.coverRadius(level)
		if t.distance(point, node.point) >= r {
			level++
			if level <= node.level {
				continue
			}
			root := NewNode(point, level)
			root.children = append(root.children, *t.root)
			t.root = &root
			return
		}
		next := t.coveringChild(node, point, r)
		if next == nil {
			node.children = append(node.children, NewNode(point, level-1))
			return
		}
		node, level = next, level-1
	}
}

func (t *Tree[T]) coveringChild(node *Node, point *Point, r float32) *Node {
	for i := range node.children {
		if t.distance(point, node.children[i].point) < r {
			return &node.children[i]
		}
	}
	return nil
}

// Seal computes subtree radii for pruning. It must be called after the last
// Insert and before concurrent searches.
func (t *Tree[T]) Seal() {
	if t.root != nil {
		t.computeRadius(t.root)
	}
	t.sealed = true
}

func (t *Tree[T]) computeRadius(n *Node) float32 {
	maxR := float32(0)
	for i := range n.children {
		child := &n.children[i]
		d := t.distance(n.point, child.point) + t.computeRadius(child)
		if d > maxR {
			maxR = d
		}
	}
	maxR += maxR * radiusSlack
	n.radius = maxR
	return maxR
}

func (t *Tree[T]) distance(a, b *Point) float32 {
	return t.distanceFunc(a.Vector, b.Vector)
}

func (t *Tree[T]) boundRadius(n *Node) float32 {
	if !t.sealed {
		return float32(math.MaxFloat32)
	}
	return n.radius
}

// KNearestNeighbors runs a depth-first kNN search. Results are ordered by
// ascending distance.
func (t *Tree[T]) KNearestNeighbors(point *Point, k int) []*Neighbor {
	if t.root == nil || k <= 0 {
		return nil
	}
	c := newCandidates(k)
	t.kNearestNeighbors(t.root, point, c)
	return c.sorted()
}

func (t *Tree[T]) kNearestNeighbors(node *Node, point *Point, c *candidates) {
	c.offer(node.point, t.distance(point, node.point))
	if len(node.children) == 0 {
		return
	}
	type childDist struct {
		child *Node
		dist  float32
	}
	cds := make([]childDist, 0, len(node.children))
	for i := range node.children {
		child := &node.children[i]
		cds = append(cds, childDist{child: child, dist: t.distance(point, child.point)})
	}
	sort.Slice(cds, func(i, j int) bool { return cds[i].dist < cds[j].dist })
	for _, cd := range cds {
		if c.full() && cd.dist-t.boundRadius(cd.child) > c.bound() {
			continue
		}
		t.kNearestNeighbors(cd.child, point, c)
	}
}

// KNearestNeighborsBestFirst performs a best-first search with a node priority queue.
func (t *Tree[T]) KNearestNeighborsBestFirst(point *Point, k int) []*Neighbor {
	if t.root == nil || k <= 0 {
		return nil
	}
	c := newCandidates(k)
	pq := &frontier{}
	rootDist := t.distance(point, t.root.point)
	heap.Push(pq, nodeItem{node: t.root, lb: rootDist - t.boundRadius(t.root), centerDist: rootDist})

	for pq.Len() > 0 {
		top := heap.Pop(pq).(nodeItem)
		if c.full() && top.lb > c.bound() {
			break
		}
		c.offer(top.node.point, top.centerDist)
		for i := range top.node.children {
			child := &top.node.children[i]
			cd := t.distance(point, child.point)
			lb := cd - t.boundRadius(child)
			if c.full() && lb > c.bound() {
				continue
			}
			heap.Push(pq, nodeItem{node: child, lb: lb, centerDist: cd})
		}
	}
	return c.sorted()
}

// Within returns every point whose distance to point is at most radius, in
// tree traversal order.
func (t *Tree[T]) Within(point *Point, radius float32) []Neighbor {
	if t.root == nil {
		return nil
	}
	var out []Neighbor
	t.within(t.root, point, radius, &out)
	return out
}

func (t *Tree[T]) within(n *Node, point *Point, radius float32, out *[]Neighbor) {
	d := t.distance(point, n.point)
	if d <= radius {
		*out = append(*out, Neighbor{Point: n.point, Distance: d})
	}
	if d-t.boundRadius(n) > radius {
		return
	}
	for i := range n.children {
		t.within(&n.children[i], point, radius, out)
	}
}

// frontier orders unexplored nodes by the lower bound on any distance in
// their subtree, nearer centers first on equal bounds.
type frontier []nodeItem

type nodeItem struct {
	node       *Node
	lb         float32
	centerDist float32
}

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].lb != f[j].lb {
		return f[i].lb < f[j].lb
	}
	return f[i].centerDist < f[j].centerDist
}
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x interface{}) { *f = append(*f, x.(nodeItem)) }
func (f *frontier) Pop() interface{} {
	last := (*f)[len(*f)-1]
	*f = (*f)[:len(*f)-1]
	return last
}
