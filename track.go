// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

// DefaultPagesPerTrack is the default maximum number of pages per track.
const DefaultPagesPerTrack = 16

// Track groups up to a configured number of pages under a single logical
// "seek-free zone". A page's TrackID is set when the page is added and
// never changed afterward.
type Track struct {
	ID       uint32
	PageIDs  []uint32
	Extent   MBR
	Centroid Point
	Capacity int
}

func newTrack(id uint32, capacity int) *Track {
	if capacity <= 0 {
		capacity = DefaultPagesPerTrack
	}
	return &Track{ID: id, Extent: EmptyMBR(), Capacity: capacity}
}

// HasSpace reports whether the track has a free page slot.
func (t *Track) HasSpace() bool {
	return len(t.PageIDs) < t.Capacity
}

// IsFull reports whether all page slots are used.
func (t *Track) IsFull() bool {
	return len(t.PageIDs) >= t.Capacity
}

// addPage records ownership of page by id and recomputes the track's
// extent/centroid from the full set of owned pages. It fails with
// ErrFull if the track has no free slot.
func (t *Track) addPage(page *Page, allPages func(uint32) *Page) error {
	if !t.HasSpace() {
		return newErr("track_add_page", KindFull, ErrFull)
	}
	page.Header.TrackID = t.ID
	t.PageIDs = append(t.PageIDs, page.Header.PageID)
	t.recomputeDerived(allPages)
	return nil
}

// recomputeDerived sets Extent to the union of owned pages' extents and
// Centroid to the mean of owned pages' centroids, excluding pages with an
// empty extent (i.e. empty pages) from the centroid average.
func (t *Track) recomputeDerived(getPage func(uint32) *Page) {
	extent := EmptyMBR()
	var sumX, sumY float64
	var n float64
	for _, id := range t.PageIDs {
		p := getPage(id)
		if p == nil {
			continue
		}
		if !p.Header.Extent.IsEmpty() {
			extent = extent.Union(p.Header.Extent)
			sumX += p.Header.Centroid.X
			sumY += p.Header.Centroid.Y
			n++
		}
	}
	t.Extent = extent
	if n > 0 {
		t.Centroid = Point{X: sumX / n, Y: sumY / n}
	} else {
		t.Centroid = Point{}
	}
}

// ObjectCount sums object counts over all pages owned by the track.
func (t *Track) ObjectCount(getPage func(uint32) *Page) int {
	total := 0
	for _, id := range t.PageIDs {
		if p := getPage(id); p != nil {
			total += len(p.Objects)
		}
	}
	return total
}

// removePage drops id from the track's page list and recomputes derived
// fields. It fails with ErrNotFound if id is not owned by this track.
func (t *Track) removePage(id uint32, getPage func(uint32) *Page) error {
	idx := -1
	for i, pid := range t.PageIDs {
		if pid == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return newErr("track_remove_page", KindNotFound, ErrNotFound)
	}
	t.PageIDs = append(t.PageIDs[:idx], t.PageIDs[idx+1:]...)
	t.recomputeDerived(getPage)
	return nil
}
