// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

// AllocStrategy selects the track-choice policy the allocator falls back
// to when no existing, non-full page is nearest to the incoming centroid.
type AllocStrategy int

const (
	// StrategyBestFit picks the track whose extent grows least under
	// expansion by the new centroid. The default: it minimizes
	// inter-track drift of a track's spatial footprint.
	StrategyBestFit AllocStrategy = iota
	// StrategyNearestTrack picks the track whose centroid is nearest to
	// the new centroid.
	StrategyNearestTrack
	// StrategySequential always prefers the most recently created track.
	StrategySequential
	// StrategyNewTrack always creates a new track.
	StrategyNewTrack
)

// allocator chooses a page to receive a newly inserted object's centroid,
// maintaining a k-d tree indexed by page centroid as its index of
// existing pages.
type allocator struct {
	pool      *PagePool
	strategy  AllocStrategy
	centroids *KDTree
}

func newAllocator(pool *PagePool, strategy AllocStrategy) *allocator {
	return &allocator{pool: pool, strategy: strategy, centroids: NewKDTree()}
}

// PickPage answers "which page should receive this object?" per the
// allocator contract: prefer an existing non-full page nearest to p;
// otherwise pick (or create) a track by the configured strategy and
// allocate a fresh page in it.
func (a *allocator) PickPage(p Point) (*Page, error) {
	if a.centroids.Len() > 0 {
		if res, ok := a.centroids.Nearest(p); ok {
			pageID := uint32(res.ID)
			if page := a.pool.GetPage(pageID); page != nil && !page.IsFull() {
				return page, nil
			}
		}
	}

	track, err := a.pickTrack(p)
	if err != nil {
		return nil, err
	}

	page := a.pool.AllocPage()
	page.Header.Centroid = p
	if err := track.addPage(page, a.pool.GetPage); err != nil {
		return nil, err
	}
	a.centroids.Insert(p, uint64(page.Header.PageID), nil)
	return page, nil
}

func (a *allocator) pickTrack(p Point) (*Track, error) {
	switch a.strategy {
	case StrategyNearestTrack:
		if t := a.nearestTrackWithSpace(p); t != nil {
			return t, nil
		}
	case StrategyBestFit:
		if t := a.bestFitTrackWithSpace(p); t != nil {
			return t, nil
		}
	case StrategySequential:
		if t := a.pool.MostRecentTrack(); t != nil && t.HasSpace() {
			return t, nil
		}
	case StrategyNewTrack:
		// always falls through to creating a new track below.
	}
	return a.pool.CreateTrack(), nil
}

func (a *allocator) nearestTrackWithSpace(p Point) *Track {
	var best *Track
	bestDist := -1.0
	for _, t := range a.pool.AllTracks() {
		if !t.HasSpace() {
			continue
		}
		d := p.DistanceSq(t.Centroid)
		if best == nil || d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

func (a *allocator) bestFitTrackWithSpace(p Point) *Track {
	var best *Track
	bestGrowth := -1.0
	for _, t := range a.pool.AllTracks() {
		if !t.HasSpace() {
			continue
		}
		growth := t.Extent.Union(MBR{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}).Area() - t.Extent.Area()
		if best == nil || growth < bestGrowth {
			best, bestGrowth = t, growth
		}
	}
	return best
}

// Rebuild discards the page-centroid k-d tree and rebuilds it from the
// pool's current non-empty pages. Called after deletes, per the
// shared-resource policy: the allocation tree is updated incrementally
// on insert but rebuilt wholesale on remove.
func (a *allocator) Rebuild() {
	pages := a.pool.AllPages()
	points := make([]Point, 0, len(pages))
	ids := make([]uint64, 0, len(pages))
	for _, p := range pages {
		if len(p.Objects) == 0 {
			continue
		}
		points = append(points, p.Header.Centroid)
		ids = append(ids, uint64(p.Header.PageID))
	}
	a.centroids = NewKDTree()
	a.centroids.BulkLoad(points, ids, nil)
}
