// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

import "testing"

func TestAllocatorBestFitReusesNonFullPage(t *testing.T) {
	pool := newPagePool(4, 16)
	a := newAllocator(pool, StrategyBestFit)

	p1, err := a.PickPage(Point{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("PickPage() error: %v", err)
	}
	p1.Objects = append(p1.Objects, NewPointObject(Point{X: 1, Y: 1}))

	p2, err := a.PickPage(Point{X: 1.1, Y: 1.1})
	if err != nil {
		t.Fatalf("PickPage() error: %v", err)
	}
	if p1.Header.PageID != p2.Header.PageID {
		t.Errorf("expected second allocation to reuse the same non-full page")
	}
}

func TestAllocatorCreatesNewPageWhenFull(t *testing.T) {
	pool := newPagePool(1, 16)
	a := newAllocator(pool, StrategyBestFit)

	p1, _ := a.PickPage(Point{X: 1, Y: 1})
	p1.Objects = append(p1.Objects, NewPointObject(Point{X: 1, Y: 1}))
	p1.Header.Flags.set(PageFull)
	a.centroids.Insert(Point{X: 1, Y: 1}, uint64(p1.Header.PageID), nil)

	p2, err := a.PickPage(Point{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("PickPage() error: %v", err)
	}
	if p1.Header.PageID == p2.Header.PageID {
		t.Errorf("expected a new page when the nearest page is full")
	}
}

func TestAllocatorStrategyNewTrack(t *testing.T) {
	pool := newPagePool(64, 16)
	a := newAllocator(pool, StrategyNewTrack)

	a.PickPage(Point{X: 1, Y: 1})
	a.PickPage(Point{X: 900, Y: 900})

	if len(pool.AllTracks()) < 2 {
		t.Errorf("StrategyNewTrack should create a new track per allocation beyond first page reuse")
	}
}

func TestAllocatorRebuild(t *testing.T) {
	pool := newPagePool(64, 16)
	a := newAllocator(pool, StrategyBestFit)

	p, _ := a.PickPage(Point{X: 5, Y: 5})
	p.Objects = append(p.Objects, NewPointObject(Point{X: 5, Y: 5}))
	p.Header.Centroid = Point{X: 5, Y: 5}

	a.Rebuild()
	if a.centroids.Len() != 1 {
		t.Errorf("Rebuild() should index exactly the non-empty pages, got %d", a.centroids.Len())
	}
}
