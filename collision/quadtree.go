package collision

import "github.com/phanxgames/orrery"

const noNode = -1

// quadNode is one region of the tree. Nodes live in the Quadtree's arena and
// refer to each other by index.
type quadNode struct {
	bounds   orrery.Rect
	items    []int32
	children int32 // index of the first of four consecutive quadrants, or noNode
	parent   int32
	depth    int
}

// Quadtree is the broad-phase index. It is rebuilt from empty every pass:
// Reset, Insert every collider, then Test.
//
// A node keeps its colliders in a flat list until the list grows past the
// capacity, then splits into four quadrants and moves down every collider
// that fits entirely inside one of them. Colliders straddling a quadrant
// boundary stay with the node.
type Quadtree struct {
	nodes    []quadNode
	items    []*Collider
	capacity int
	maxDepth int
}

// NewQuadtree creates an empty tree. capacity is the collider count a node
// holds before it splits; maxDepth stops subdivision.
func NewQuadtree(bounds orrery.Rect, capacity, maxDepth int) *Quadtree {
	if capacity < 1 {
		capacity = 1
	}
	if maxDepth < 0 {
		maxDepth = 0
	}
	q := &Quadtree{capacity: capacity, maxDepth: maxDepth}
	q.Reset(bounds)
	return q
}

// Reset empties the tree and sets the root region. Node storage is reused.
func (q *Quadtree) Reset(bounds orrery.Rect) {
	for i := range q.nodes {
		q.nodes[i].items = q.nodes[i].items[:0]
	}
	q.nodes = q.nodes[:0]
	q.items = q.items[:0]
	q.newNode(bounds, noNode, 0)
}

// Bounds returns the root region.
func (q *Quadtree) Bounds() orrery.Rect { return q.nodes[0].bounds }

// Len returns the number of inserted colliders.
func (q *Quadtree) Len() int { return len(q.items) }

// NodeCount returns the number of nodes, root included.
func (q *Quadtree) NodeCount() int { return len(q.nodes) }

// Insert adds c. Colliders outside the root region are kept at the root.
func (q *Quadtree) Insert(c *Collider) {
	q.items = append(q.items, c)
	q.insertAt(0, int32(len(q.items)-1))
}

func (q *Quadtree) insertAt(n, item int32) {
	for {
		if q.nodes[n].children != noNode {
			if child := q.fit(n, item); child != noNode {
				n = child
				continue
			}
			q.nodes[n].items = append(q.nodes[n].items, item)
			return
		}
		q.nodes[n].items = append(q.nodes[n].items, item)
		if len(q.nodes[n].items) > q.capacity && q.nodes[n].depth < q.maxDepth {
			q.split(n)
		}
		return
	}
}

// split creates n's quadrants and redistributes its colliders.
func (q *Quadtree) split(n int32) {
	quads := q.nodes[n].bounds.Quadrants()
	depth := q.nodes[n].depth + 1
	first := q.newNode(quads[0], n, depth)
	for i := 1; i < 4; i++ {
		q.newNode(quads[i], n, depth)
	}
	q.nodes[n].children = first

	items := q.nodes[n].items
	kept := items[:0]
	for _, item := range items {
		if child := q.fit(n, item); child != noNode {
			q.insertAt(child, item)
		} else {
			kept = append(kept, item)
		}
	}
	q.nodes[n].items = kept
}

// fit returns the quadrant of n that fully contains item, or noNode.
func (q *Quadtree) fit(n, item int32) int32 {
	first := q.nodes[n].children
	c := q.items[item]
	for i := int32(0); i < 4; i++ {
		if c.Classify(q.nodes[first+i].bounds) == Inside {
			return first + i
		}
	}
	return noNode
}

func (q *Quadtree) newNode(bounds orrery.Rect, parent int32, depth int) int32 {
	idx := int32(len(q.nodes))
	if len(q.nodes) < cap(q.nodes) {
		// Reclaim the item storage of a node from a previous pass.
		q.nodes = q.nodes[:idx+1]
		items := q.nodes[idx].items[:0]
		q.nodes[idx] = quadNode{bounds: bounds, items: items, children: noNode, parent: parent, depth: depth}
		return idx
	}
	q.nodes = append(q.nodes, quadNode{bounds: bounds, children: noNode, parent: parent, depth: depth})
	return idx
}

// Test calls fn once for every candidate pair: each pair within a node, then
// each collider of a node against every collider held by its ancestors.
// Two colliders that overlap are always reported together.
func (q *Quadtree) Test(fn func(a, b *Collider)) {
	if len(q.nodes) == 0 {
		return
	}
	stack := make([]int32, 1, 32)
	stack[0] = 0
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &q.nodes[n]

		items := node.items
		for i := 0; i < len(items); i++ {
			a := q.items[items[i]]
			for j := i + 1; j < len(items); j++ {
				fn(a, q.items[items[j]])
			}
		}
		for p := node.parent; p != noNode; p = q.nodes[p].parent {
			for _, i := range items {
				a := q.items[i]
				for _, j := range q.nodes[p].items {
					fn(a, q.items[j])
				}
			}
		}

		if node.children != noNode {
			for i := int32(3); i >= 0; i-- {
				stack = append(stack, node.children+i)
			}
		}
	}
}

// EachNode calls fn with every node's region and depth, parents first.
func (q *Quadtree) EachNode(fn func(bounds orrery.Rect, depth int)) {
	for i := range q.nodes {
		fn(q.nodes[i].bounds, q.nodes[i].depth)
	}
}
