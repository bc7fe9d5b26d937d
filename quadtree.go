// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

const (
	// DefaultQuadtreeCapacity is the default per-node item capacity before
	// a leaf splits.
	DefaultQuadtreeCapacity = 8
	// DefaultQuadtreeMaxDepth bounds recursive splitting.
	DefaultQuadtreeMaxDepth = 20

	adjacencyExpandFraction = 0.01
	adjacencyExpandFloor    = 1e-6
	adjacencyTouchTolerance = 1e-9
)

// QTItem is one entry stored in a Quadtree: an id, its bounds, its
// centroid (used only as a convenience for callers), and an opaque
// payload (typically a PageID).
type QTItem struct {
	ID       uint64
	Bounds   MBR
	Centroid Point
	Data     interface{}
}

// qtNode is a point-region quadtree node. Leaves hold items directly;
// internal nodes fan out into four fixed-order children.
type qtNode struct {
	bounds   MBR
	depth    int
	items    []QTItem
	children [4]*qtNode // NW, NE, SW, SE
	isLeaf   bool
}

const (
	quadNW = 0
	quadNE = 1
	quadSW = 2
	quadSE = 3
)

// Quadtree is a point-region quadtree over QTItem bounds, used to answer
// "which pages are near this region" adjacency queries.
type Quadtree struct {
	root     *qtNode
	bounds   MBR
	capacity int
	maxDepth int
	count    int
}

// NewQuadtree creates an empty quadtree over rootBounds with the given
// per-node capacity and max depth. Values <= 0 fall back to the package
// defaults.
func NewQuadtree(rootBounds MBR, capacity, maxDepth int) *Quadtree {
	if capacity <= 0 {
		capacity = DefaultQuadtreeCapacity
	}
	if maxDepth <= 0 {
		maxDepth = DefaultQuadtreeMaxDepth
	}
	return &Quadtree{
		root:     &qtNode{bounds: rootBounds, isLeaf: true},
		bounds:   rootBounds,
		capacity: capacity,
		maxDepth: maxDepth,
	}
}

// Len returns the number of items currently stored.
func (q *Quadtree) Len() int {
	return q.count
}

// Insert adds item to the tree. It fails with ErrInvalid if item.Bounds
// does not intersect the tree's root bounds.
func (q *Quadtree) Insert(item QTItem) error {
	if !q.bounds.Intersects(item.Bounds) {
		return newErr("quadtree_insert", KindInvalid, ErrInvalid)
	}
	insertIntoNode(q.root, item, q.capacity, q.maxDepth)
	q.count++
	return nil
}

func insertIntoNode(n *qtNode, item QTItem, capacity, maxDepth int) {
	if !n.isLeaf {
		for _, c := range n.children {
			if childFullyContains(c, item.Bounds) {
				insertIntoNode(c, item, capacity, maxDepth)
				return
			}
		}
		n.items = append(n.items, item)
		return
	}

	if len(n.items) < capacity || n.depth == maxDepth {
		n.items = append(n.items, item)
		return
	}

	splitNode(n)
	for _, c := range n.children {
		if childFullyContains(c, item.Bounds) {
			insertIntoNode(c, item, capacity, maxDepth)
			return
		}
	}
	n.items = append(n.items, item)
}

func childFullyContains(c *qtNode, bounds MBR) bool {
	return c != nil && c.bounds.ContainsMBR(bounds)
}

// splitNode turns a leaf into an internal node with four children,
// redistributing items that are entirely contained within a single child.
// Straddling items remain in the parent's own item list.
func splitNode(n *qtNode) {
	mid := n.bounds.Centroid()
	n.children[quadNW] = &qtNode{
		bounds: MBR{MinX: n.bounds.MinX, MinY: mid.Y, MaxX: mid.X, MaxY: n.bounds.MaxY},
		depth:  n.depth + 1, isLeaf: true,
	}
	n.children[quadNE] = &qtNode{
		bounds: MBR{MinX: mid.X, MinY: mid.Y, MaxX: n.bounds.MaxX, MaxY: n.bounds.MaxY},
		depth:  n.depth + 1, isLeaf: true,
	}
	n.children[quadSW] = &qtNode{
		bounds: MBR{MinX: n.bounds.MinX, MinY: n.bounds.MinY, MaxX: mid.X, MaxY: mid.Y},
		depth:  n.depth + 1, isLeaf: true,
	}
	n.children[quadSE] = &qtNode{
		bounds: MBR{MinX: mid.X, MinY: n.bounds.MinY, MaxX: n.bounds.MaxX, MaxY: mid.Y},
		depth:  n.depth + 1, isLeaf: true,
	}
	n.isLeaf = false

	existing := n.items
	n.items = nil
	for _, it := range existing {
		placed := false
		for _, c := range n.children {
			if c.bounds.ContainsMBR(it.Bounds) {
				c.items = append(c.items, it)
				placed = true
				break
			}
		}
		if !placed {
			n.items = append(n.items, it)
		}
	}
}

// QueryRange returns every item whose bounds intersect the query region,
// descending only into nodes whose bounds intersect it.
func (q *Quadtree) QueryRange(region MBR) []QTItem {
	var out []QTItem
	queryRangeNode(q.root, region, &out)
	return out
}

func queryRangeNode(n *qtNode, region MBR, out *[]QTItem) {
	if n == nil || !n.bounds.Intersects(region) {
		return
	}
	for _, it := range n.items {
		if it.Bounds.Intersects(region) {
			*out = append(*out, it)
		}
	}
	if !n.isLeaf {
		for _, c := range n.children {
			queryRangeNode(c, region, out)
		}
	}
}

// FindAdjacentToRegion expands region by 1% of each dimension (floor
// 1e-6), range-queries the expanded region, then keeps only items whose
// bounds intersect or touch the original region (touch tolerance 1e-9).
func (q *Quadtree) FindAdjacentToRegion(region MBR) []QTItem {
	expanded := expandRegion(region)
	candidates := q.QueryRange(expanded)

	tolerant := MBR{
		MinX: region.MinX - adjacencyTouchTolerance,
		MinY: region.MinY - adjacencyTouchTolerance,
		MaxX: region.MaxX + adjacencyTouchTolerance,
		MaxY: region.MaxY + adjacencyTouchTolerance,
	}
	out := candidates[:0]
	for _, c := range candidates {
		if c.Bounds.Intersects(tolerant) {
			out = append(out, c)
		}
	}
	return out
}

func expandRegion(region MBR) MBR {
	dx := (region.MaxX - region.MinX) * adjacencyExpandFraction
	if dx < adjacencyExpandFloor {
		dx = adjacencyExpandFloor
	}
	dy := (region.MaxY - region.MinY) * adjacencyExpandFraction
	if dy < adjacencyExpandFloor {
		dy = adjacencyExpandFloor
	}
	return MBR{
		MinX: region.MinX - dx, MinY: region.MinY - dy,
		MaxX: region.MaxX + dx, MaxY: region.MaxY + dy,
	}
}

// FindAdjacent answers "what's near item id", expanding that item's own
// bounds by 1% rather than an arbitrary caller-supplied region. It fails
// with ErrNotFound if no item with that id exists.
func (q *Quadtree) FindAdjacent(id uint64) ([]QTItem, error) {
	item, ok := q.findByID(q.root, id)
	if !ok {
		return nil, newErr("quadtree_find_adjacent", KindNotFound, ErrNotFound)
	}
	all := q.FindAdjacentToRegion(item.Bounds)
	out := all[:0]
	for _, it := range all {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out, nil
}

func (q *Quadtree) findByID(n *qtNode, id uint64) (QTItem, bool) {
	if n == nil {
		return QTItem{}, false
	}
	for _, it := range n.items {
		if it.ID == id {
			return it, true
		}
	}
	if !n.isLeaf {
		for _, c := range n.children {
			if it, ok := q.findByID(c, id); ok {
				return it, true
			}
		}
	}
	return QTItem{}, false
}

// QueryRadius returns every item whose centroid lies within radius r of
// center: a range query over the enclosing square (by item bounds)
// followed by an exact centroid-distance filter.
func (q *Quadtree) QueryRadius(center Point, r float64) []QTItem {
	square := MBR{MinX: center.X - r, MinY: center.Y - r, MaxX: center.X + r, MaxY: center.Y + r}
	candidates := q.QueryRange(square)
	rSq := r * r
	out := candidates[:0]
	for _, c := range candidates {
		if center.DistanceSq(c.Centroid) <= rSq {
			out = append(out, c)
		}
	}
	return out
}

// Remove deletes the first item matching id via depth-first search,
// compacting the owning node's item list. No node merging occurs: the
// tree is expected to be rebuilt on the next build, not incrementally
// re-balanced.
func (q *Quadtree) Remove(id uint64) error {
	if removeFromNode(q.root, id) {
		q.count--
		return nil
	}
	return newErr("quadtree_remove", KindNotFound, ErrNotFound)
}

func removeFromNode(n *qtNode, id uint64) bool {
	if n == nil {
		return false
	}
	for i, it := range n.items {
		if it.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return true
		}
	}
	if !n.isLeaf {
		for _, c := range n.children {
			if removeFromNode(c, id) {
				return true
			}
		}
	}
	return false
}

// Update removes the item with the given id and re-inserts newItem
// (forcing newItem.ID to match). It fails with ErrNotFound if the item
// does not exist.
func (q *Quadtree) Update(id uint64, newItem QTItem) error {
	if err := q.Remove(id); err != nil {
		return err
	}
	newItem.ID = id
	return q.Insert(newItem)
}

// QuadtreeStats summarizes the shape of a quadtree.
type QuadtreeStats struct {
	TotalItems int
	TotalNodes int
	MaxDepth   int
	LeafCount  int
}

// Stats walks the tree once to compute item/node/leaf counts and maximum
// depth.
func (q *Quadtree) Stats() QuadtreeStats {
	var s QuadtreeStats
	statsNode(q.root, &s)
	return s
}

func statsNode(n *qtNode, s *QuadtreeStats) {
	if n == nil {
		return
	}
	s.TotalNodes++
	s.TotalItems += len(n.items)
	if n.depth > s.MaxDepth {
		s.MaxDepth = n.depth
	}
	if n.isLeaf {
		s.LeafCount++
	} else {
		for _, c := range n.children {
			statsNode(c, s)
		}
	}
}

// Clear drops all items, keeping the configured bounds, capacity, and
// max depth.
func (q *Quadtree) Clear() {
	q.root = &qtNode{bounds: q.bounds, isLeaf: true}
	q.count = 0
}
