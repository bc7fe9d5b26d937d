// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

import (
	"testing"
)

func TestKDTreeInsertAndNearest(t *testing.T) {
	tr := NewKDTree()
	pts := []Point{{0, 0}, {1, 1}, {2, 2}, {10, 10}, {20, 20}}
	for i, p := range pts {
		tr.Insert(p, uint64(i+1), nil)
	}
	if tr.Len() != len(pts) {
		t.Fatalf("Len() = %d, want %d", tr.Len(), len(pts))
	}

	got, ok := tr.Nearest(Point{X: 0.5, Y: 0.5})
	if !ok {
		t.Fatalf("Nearest() returned ok=false on non-empty tree")
	}
	if got.Point != (Point{0, 0}) && got.Point != (Point{1, 1}) {
		t.Errorf("Nearest(0.5,0.5) = %+v, want (0,0) or (1,1)", got.Point)
	}
}

func TestKDTreeNearestEmpty(t *testing.T) {
	tr := NewKDTree()
	_, ok := tr.Nearest(Point{X: 1, Y: 1})
	if ok {
		t.Errorf("Nearest() on empty tree should return ok=false")
	}
}

func TestKDTreeBulkLoadKNN(t *testing.T) {
	pts := []Point{{0, 0}, {1, 1}, {2, 2}, {10, 10}, {20, 20}}
	ids := []uint64{1, 2, 3, 4, 5}
	tr := NewKDTree()
	tr.BulkLoad(pts, ids, nil)

	if tr.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", tr.Len())
	}

	res := tr.KNearest(Point{X: 0.5, Y: 0.5}, 3)
	if len(res) != 3 {
		t.Fatalf("KNearest() len = %d, want 3", len(res))
	}
	want := []Point{{0, 0}, {1, 1}, {2, 2}}
	for i, w := range want {
		if res[i].Point != w {
			t.Errorf("KNearest()[%d] = %+v, want %+v", i, res[i].Point, w)
		}
	}
}

func TestKDTreeBulkLoadBalanced(t *testing.T) {
	n := 200
	pts := make([]Point, n)
	ids := make([]uint64, n)
	for i := 0; i < n; i++ {
		pts[i] = Point{X: float64(i % 17), Y: float64((i * 13) % 29)}
		ids[i] = uint64(i + 1)
	}
	tr := NewKDTree()
	tr.BulkLoad(pts, ids, nil)
	if !tr.IsBalanced() {
		t.Errorf("bulk-loaded tree of %d points should be balanced, depth=%d", n, tr.Depth())
	}
}

func TestKDTreeRangeQuery(t *testing.T) {
	tr := NewKDTree()
	tr.Insert(Point{10, 20}, 1, nil)
	tr.Insert(Point{30, 40}, 2, nil)
	tr.Insert(Point{50, 60}, 3, nil)

	res := tr.RangeQuery(MBR{MinX: 0, MinY: 0, MaxX: 35, MaxY: 45})
	if len(res) != 2 {
		t.Fatalf("RangeQuery() len = %d, want 2", len(res))
	}
}

func TestKDTreeRangeQueryEmpty(t *testing.T) {
	tr := NewKDTree()
	res := tr.RangeQuery(MBR{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10})
	if len(res) != 0 {
		t.Errorf("RangeQuery() on empty tree should be empty, got %d", len(res))
	}
}

func TestKDTreeRadiusQuery(t *testing.T) {
	tr := NewKDTree()
	tr.Insert(Point{0, 0}, 1, nil)
	tr.Insert(Point{3, 4}, 2, nil)
	tr.Insert(Point{100, 100}, 3, nil)

	res := tr.RadiusQuery(Point{0, 0}, 5)
	if len(res) != 2 {
		t.Fatalf("RadiusQuery() len = %d, want 2", len(res))
	}
}

func TestKDTreePartition(t *testing.T) {
	n := 100
	pts := make([]Point, n)
	ids := make([]uint64, n)
	for i := 0; i < n; i++ {
		pts[i] = Point{X: float64(i), Y: float64(i * 2)}
		ids[i] = uint64(i + 1)
	}
	tr := NewKDTree()
	tr.BulkLoad(pts, ids, nil)

	blocks := tr.Partition(10)
	if len(blocks) == 0 {
		t.Fatalf("Partition() returned no blocks")
	}
	var union MBR = EmptyMBR()
	for _, b := range blocks {
		union = union.Union(b)
	}
	if union.MinX != 0 || union.MaxX != float64(n-1) {
		t.Errorf("partition union x-range = [%v,%v], want [0,%v]", union.MinX, union.MaxX, n-1)
	}
}

func TestKDTreeDepthAndIsBalancedEmpty(t *testing.T) {
	tr := NewKDTree()
	if tr.Depth() != -1 {
		t.Errorf("Depth() on empty tree = %d, want -1", tr.Depth())
	}
	if !tr.IsBalanced() {
		t.Errorf("empty tree should be considered balanced")
	}
}
