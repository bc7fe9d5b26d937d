// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

// PagePool owns all pages and all tracks, and is the single source of
// truth for page and track identity: it hands out monotonically
// increasing IDs starting at 1, never reused within a session.
type PagePool struct {
	pages         map[uint32]*Page
	tracks        map[uint32]*Track
	trackOrder    []uint32
	nextPageID    uint32
	nextTrackID   uint32
	pageCapacity  int
	trackCapacity int
}

// newPagePool creates an empty pool using pageCapacity/trackCapacity as
// the per-page/per-track capacity for every page/track it allocates.
func newPagePool(pageCapacity, trackCapacity int) *PagePool {
	return &PagePool{
		pages:         make(map[uint32]*Page),
		tracks:        make(map[uint32]*Track),
		pageCapacity:  pageCapacity,
		trackCapacity: trackCapacity,
	}
}

// AllocPage creates a new page with a fresh page ID, not yet assigned to
// a track.
func (pp *PagePool) AllocPage() *Page {
	pp.nextPageID++
	p := newPage(pp.nextPageID, pp.pageCapacity)
	pp.pages[p.Header.PageID] = p
	return p
}

// CreateTrack creates and registers a new track with a fresh track ID.
func (pp *PagePool) CreateTrack() *Track {
	pp.nextTrackID++
	t := newTrack(pp.nextTrackID, pp.trackCapacity)
	pp.tracks[t.ID] = t
	pp.trackOrder = append(pp.trackOrder, t.ID)
	return t
}

// GetPage returns the page with the given id, or nil if none exists.
func (pp *PagePool) GetPage(id uint32) *Page {
	return pp.pages[id]
}

// GetTrack returns the track with the given id, or nil if none exists.
func (pp *PagePool) GetTrack(id uint32) *Track {
	return pp.tracks[id]
}

// MostRecentTrack returns the most recently created track, or nil if
// none exist. Used by the sequential allocation strategy.
func (pp *PagePool) MostRecentTrack() *Track {
	if len(pp.trackOrder) == 0 {
		return nil
	}
	return pp.tracks[pp.trackOrder[len(pp.trackOrder)-1]]
}

// AllTracks returns every track in creation order.
func (pp *PagePool) AllTracks() []*Track {
	out := make([]*Track, 0, len(pp.trackOrder))
	for _, id := range pp.trackOrder {
		out = append(out, pp.tracks[id])
	}
	return out
}

// AllPages returns every page, keyed by page ID, in page-ID ascending
// order.
func (pp *PagePool) AllPages() []*Page {
	out := make([]*Page, 0, len(pp.pages))
	for id := uint32(1); id <= pp.nextPageID; id++ {
		if p, ok := pp.pages[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// FreePage removes a page from the pool and from its owning track, if
// any.
func (pp *PagePool) FreePage(id uint32) error {
	p, ok := pp.pages[id]
	if !ok {
		return newErr("page_pool_free_page", KindNotFound, ErrNotFound)
	}
	if t := pp.tracks[p.Header.TrackID]; t != nil {
		t.removePage(id, pp.GetPage)
	}
	delete(pp.pages, id)
	return nil
}

// QueryRegion returns every page whose extent intersects region.
func (pp *PagePool) QueryRegion(region MBR) []*Page {
	var out []*Page
	for _, p := range pp.AllPages() {
		if p.Header.Extent.Intersects(region) {
			out = append(out, p)
		}
	}
	return out
}

// PagePoolStats reports aggregate counts across the pool.
type PagePoolStats struct {
	TotalPages   int
	TotalTracks  int
	TotalObjects int
}

// Stats computes pool-wide page/track/object counts.
func (pp *PagePool) Stats() PagePoolStats {
	s := PagePoolStats{TotalPages: len(pp.pages), TotalTracks: len(pp.tracks)}
	for _, p := range pp.pages {
		s.TotalObjects += len(p.Objects)
	}
	return s
}
