// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

import (
	"math"
	"sort"
)

// kdNode is one node of a 2-D k-d tree. SplitDim alternates by depth
// (0 = x, 1 = y). Bounds and Count summarize the subtree rooted here so
// range queries and partition can prune without visiting every node.
type kdNode struct {
	Point    Point
	ID       uint64
	Data     interface{}
	SplitDim int
	Left     *kdNode
	Right    *kdNode
	Bounds   MBR
	Count    int
}

// KDTree is a balanced 2-D k-d tree over (point, id, payload) tuples,
// used both as the object-centroid block partitioner and as the
// page-centroid allocation index.
type KDTree struct {
	root *kdNode
}

// NewKDTree returns an empty k-d tree.
func NewKDTree() *KDTree {
	return &KDTree{}
}

// Len returns the number of points currently in the tree.
func (t *KDTree) Len() int {
	if t.root == nil {
		return 0
	}
	return t.root.Count
}

// Insert adds (p, id, data) to the tree, descending by alternating split
// dimension. Insertion is not self-balancing; bulk-loaded trees stay
// balanced but individual inserts can skew a tree over time.
func (t *KDTree) Insert(p Point, id uint64, data interface{}) {
	t.root = insertNode(t.root, p, id, data, 0)
}

func insertNode(n *kdNode, p Point, id uint64, data interface{}, depth int) *kdNode {
	if n == nil {
		return &kdNode{
			Point:    p,
			ID:       id,
			Data:     data,
			SplitDim: depth % 2,
			Bounds:   MBR{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y},
			Count:    1,
		}
	}
	if axisValue(p, n.SplitDim) < axisValue(n.Point, n.SplitDim) {
		n.Left = insertNode(n.Left, p, id, data, depth+1)
	} else {
		n.Right = insertNode(n.Right, p, id, data, depth+1)
	}
	n.Bounds = n.Bounds.ExpandPoint(p)
	n.Count = 1 + childCount(n.Left) + childCount(n.Right)
	return n
}

func childCount(n *kdNode) int {
	if n == nil {
		return 0
	}
	return n.Count
}

func axisValue(p Point, dim int) float64 {
	if dim == 0 {
		return p.X
	}
	return p.Y
}

// kdEntry is the intermediate representation used by BulkLoad.
type kdEntry struct {
	Point Point
	ID    uint64
	Data  interface{}
}

// BulkLoad discards the existing tree and rebuilds it from scratch by
// recursive median split, producing an approximately balanced tree
// (depth <= ceil(log2(n+1)) in expectation). Ties in the median axis are
// broken by stable sort, preserving original order.
func (t *KDTree) BulkLoad(points []Point, ids []uint64, data []interface{}) {
	entries := make([]kdEntry, len(points))
	for i := range points {
		var d interface{}
		if data != nil {
			d = data[i]
		}
		entries[i] = kdEntry{Point: points[i], ID: ids[i], Data: d}
	}
	t.root = bulkBuild(entries, 0)
}

func bulkBuild(entries []kdEntry, depth int) *kdNode {
	if len(entries) == 0 {
		return nil
	}
	dim := depth % 2
	sort.SliceStable(entries, func(i, j int) bool {
		return axisValue(entries[i].Point, dim) < axisValue(entries[j].Point, dim)
	})
	mid := len(entries) / 2
	node := &kdNode{
		Point:    entries[mid].Point,
		ID:       entries[mid].ID,
		Data:     entries[mid].Data,
		SplitDim: dim,
	}
	node.Left = bulkBuild(entries[:mid], depth+1)
	node.Right = bulkBuild(entries[mid+1:], depth+1)

	bounds := MBR{MinX: node.Point.X, MinY: node.Point.Y, MaxX: node.Point.X, MaxY: node.Point.Y}
	count := 1
	if node.Left != nil {
		bounds = bounds.Union(node.Left.Bounds)
		count += node.Left.Count
	}
	if node.Right != nil {
		bounds = bounds.Union(node.Right.Bounds)
		count += node.Right.Count
	}
	node.Bounds = bounds
	node.Count = count
	return node
}

// KDResult is one hit from a k-d tree query.
type KDResult struct {
	Point Point
	ID    uint64
	Data  interface{}
}

// Nearest returns the point nearest to q by branch-and-bound descent. The
// second return value is false if the tree is empty.
func (t *KDTree) Nearest(q Point) (KDResult, bool) {
	if t.root == nil {
		return KDResult{}, false
	}
	best := t.root
	bestDist := q.DistanceSq(t.root.Point)
	nearestSearch(t.root, q, &best, &bestDist)
	return KDResult{Point: best.Point, ID: best.ID, Data: best.Data}, true
}

func nearestSearch(n *kdNode, q Point, best **kdNode, bestDist *float64) {
	if n == nil {
		return
	}
	d := q.DistanceSq(n.Point)
	if d < *bestDist {
		*bestDist = d
		*best = n
	}

	diff := axisValue(q, n.SplitDim) - axisValue(n.Point, n.SplitDim)
	near, far := n.Left, n.Right
	if diff > 0 {
		near, far = n.Right, n.Left
	}
	nearestSearch(near, q, best, bestDist)
	if diff*diff < *bestDist {
		nearestSearch(far, q, best, bestDist)
	}
}

// KNearest returns the k points of minimum Euclidean distance to q, in
// non-decreasing distance order. Implemented as range-then-sort, which is
// acceptable for small k relative to tree size per the component's
// contract.
func (t *KDTree) KNearest(q Point, k int) []KDResult {
	if k <= 0 || t.root == nil {
		return nil
	}
	all := make([]KDResult, 0, t.root.Count)
	collectAll(t.root, &all)

	sort.Slice(all, func(i, j int) bool {
		return q.DistanceSq(all[i].Point) < q.DistanceSq(all[j].Point)
	})
	if k > len(all) {
		k = len(all)
	}
	return all[:k]
}

func collectAll(n *kdNode, out *[]KDResult) {
	if n == nil {
		return
	}
	collectAll(n.Left, out)
	*out = append(*out, KDResult{Point: n.Point, ID: n.ID, Data: n.Data})
	collectAll(n.Right, out)
}

// RangeQuery returns every point whose coordinates lie within the closed
// rectangle mbr, pruning subtrees whose bounds do not intersect it.
func (t *KDTree) RangeQuery(mbr MBR) []KDResult {
	var out []KDResult
	rangeSearch(t.root, mbr, &out)
	return out
}

func rangeSearch(n *kdNode, mbr MBR, out *[]KDResult) {
	if n == nil || !n.Bounds.Intersects(mbr) {
		return
	}
	if mbr.ContainsPoint(n.Point) {
		*out = append(*out, KDResult{Point: n.Point, ID: n.ID, Data: n.Data})
	}
	rangeSearch(n.Left, mbr, out)
	rangeSearch(n.Right, mbr, out)
}

// RadiusQuery returns every point within radius r of center, computed as a
// range query over the enclosing square followed by an exact distance
// filter.
func (t *KDTree) RadiusQuery(center Point, r float64) []KDResult {
	square := MBR{
		MinX: center.X - r, MinY: center.Y - r,
		MaxX: center.X + r, MaxY: center.Y + r,
	}
	candidates := t.RangeQuery(square)
	rSq := r * r
	out := candidates[:0]
	for _, c := range candidates {
		if center.DistanceSq(c.Point) <= rSq {
			out = append(out, c)
		}
	}
	return out
}

// Partition performs a top-down collection of subtree MBRs: any subtree
// whose size is <= maxPointsPerBlock, or which is a leaf, emits its bounds
// as one block. Output order is left-first pre-order.
func (t *KDTree) Partition(maxPointsPerBlock int) []MBR {
	var out []MBR
	partitionNode(t.root, maxPointsPerBlock, &out)
	return out
}

func partitionNode(n *kdNode, maxPointsPerBlock int, out *[]MBR) {
	if n == nil {
		return
	}
	if n.Count <= maxPointsPerBlock || (n.Left == nil && n.Right == nil) {
		*out = append(*out, n.Bounds)
		return
	}
	partitionNode(n.Left, maxPointsPerBlock, out)
	partitionNode(n.Right, maxPointsPerBlock, out)
}

// Depth returns the tree's maximum root-to-leaf depth (-1 for an empty
// tree, 0 for a single-node tree).
func (t *KDTree) Depth() int {
	return nodeDepth(t.root)
}

func nodeDepth(n *kdNode) int {
	if n == nil {
		return -1
	}
	l := nodeDepth(n.Left)
	r := nodeDepth(n.Right)
	if l > r {
		return l + 1
	}
	return r + 1
}

// IsBalanced reports whether the tree's depth satisfies
// depth <= 2*ceil(log2(n+1)), the balance bound bulk-load is expected to
// produce.
func (t *KDTree) IsBalanced() bool {
	n := t.Len()
	if n == 0 {
		return true
	}
	bound := 2 * int(math.Ceil(math.Log2(float64(n+1))))
	return t.Depth() <= bound
}
