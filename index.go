// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

// SpatialIndex orchestrates the block partitioner, the page/track store,
// and the adjacency quadtree behind a single façade. It holds the
// object-centroid k-d tree (built lazily by Build), the page-extent
// quadtree (built lazily), the page pool, the block list, the overall
// bounds, and the is-built state.
//
// State machine: empty -> dirty <-> built. Build moves dirty -> built;
// any mutating operation sets built -> dirty; QueryKNN requires built;
// QueryRange and FindAdjacentPages work in dirty state but may be slower.
type SpatialIndex struct {
	config Config
	pool   *PagePool
	cache  *PageCache
	alloc  *allocator

	blockTree *KDTree
	pageTree  *Quadtree

	blocks      []Block
	objectPages map[uint64]uint32 // object id -> owning page id

	bounds       MBR
	nextObjectID uint64
	nextBlockID  uint64
	isBuilt      bool
}

// NewSpatialIndex creates an index with the given configuration.
func NewSpatialIndex(cfg Config) *SpatialIndex {
	pool := newPagePool(cfg.PageCapacity, cfg.PagesPerTrack)
	idx := &SpatialIndex{
		config:      cfg,
		pool:        pool,
		cache:       NewPageCache(pool, cfg.CacheSize),
		alloc:       newAllocator(pool, cfg.AllocStrategy),
		blockTree:   NewKDTree(),
		objectPages: make(map[uint64]uint32),
		bounds:      EmptyMBR(),
	}
	return idx
}

// Insert assigns obj an id if zero, appends it to an allocator-chosen
// page, expands bounds, and marks the index dirty.
func (idx *SpatialIndex) Insert(obj SpatialObject) (uint64, error) {
	if obj.ID == 0 {
		idx.nextObjectID++
		obj.ID = idx.nextObjectID
	} else if obj.ID > idx.nextObjectID {
		idx.nextObjectID = obj.ID
	}

	page, err := idx.alloc.PickPage(obj.Centroid)
	if err != nil {
		return 0, newErr("insert", KindAlloc, err)
	}
	if err := page.AddObject(obj); err != nil {
		// page reported full between PickPage and AddObject (shouldn't
		// normally happen); fall back to a fresh page in the same track.
		page, err = idx.forceNewPage(page.Header.TrackID, obj.Centroid)
		if err != nil {
			return 0, newErr("insert", KindAlloc, err)
		}
		if err := page.AddObject(obj); err != nil {
			return 0, newErr("insert", KindAlloc, err)
		}
	}

	idx.objectPages[obj.ID] = page.Header.PageID
	idx.bounds = idx.bounds.Union(obj.MBR)
	idx.isBuilt = false
	return obj.ID, nil
}

func (idx *SpatialIndex) forceNewPage(trackID uint32, centroid Point) (*Page, error) {
	track := idx.pool.GetTrack(trackID)
	if track == nil || !track.HasSpace() {
		track = idx.pool.CreateTrack()
	}
	page := idx.pool.AllocPage()
	page.Header.Centroid = centroid
	if err := track.addPage(page, idx.pool.GetPage); err != nil {
		return nil, err
	}
	idx.alloc.centroids.Insert(centroid, uint64(page.Header.PageID), nil)
	return page, nil
}

// BulkInsert inserts each object in turn, stopping at the first failure.
func (idx *SpatialIndex) BulkInsert(objs []SpatialObject) ([]uint64, error) {
	ids := make([]uint64, 0, len(objs))
	for _, o := range objs {
		id, err := idx.Insert(o)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Remove looks up the object's page in the id-to-page map, removes the
// object (freeing the page if it is left empty), and rebuilds the
// allocation k-d tree. It fails with ErrNotFound if id is not present.
func (idx *SpatialIndex) Remove(id uint64) error {
	pageID, ok := idx.objectPages[id]
	if !ok {
		return newErr("remove", KindNotFound, ErrNotFound)
	}
	page := idx.pool.GetPage(pageID)
	if page == nil {
		return newErr("remove", KindNotFound, ErrNotFound)
	}
	if err := page.RemoveObject(id); err != nil {
		return newErr("remove", KindNotFound, err)
	}
	delete(idx.objectPages, id)

	if len(page.Objects) == 0 {
		// An emptied page is reclaimed rather than left to sit in the pool
		// forever; FreePage also detaches it from its track and recomputes
		// the track's derived extent/centroid.
		if err := idx.pool.FreePage(page.Header.PageID); err != nil {
			return newErr("remove", KindNotFound, err)
		}
	} else if track := idx.pool.GetTrack(page.Header.TrackID); track != nil {
		track.recomputeDerived(idx.pool.GetPage)
	}
	idx.alloc.Rebuild()
	idx.isBuilt = false
	return nil
}

// Get returns the object with the given id and the page holding it.
func (idx *SpatialIndex) Get(id uint64) (SpatialObject, *Page, error) {
	pageID, ok := idx.objectPages[id]
	if !ok {
		return SpatialObject{}, nil, newErr("get", KindNotFound, ErrNotFound)
	}
	page := idx.pool.GetPage(pageID)
	obj, ok := page.FindObject(id)
	if !ok {
		return SpatialObject{}, nil, newErr("get", KindNotFound, ErrNotFound)
	}
	return obj, page, nil
}

// Update removes the existing object with id and re-inserts newObj,
// preserving id. It fails with ErrNotFound if id is absent.
func (idx *SpatialIndex) Update(id uint64, newObj SpatialObject) error {
	if _, _, err := idx.Get(id); err != nil {
		return newErr("update", KindNotFound, ErrNotFound)
	}
	if err := idx.Remove(id); err != nil {
		return err
	}
	newObj.ID = id
	_, err := idx.Insert(newObj)
	return err
}

// Build bulk-builds the block k-d tree from all object centroids,
// partitions into blocks using config.BlockSize, and rebuilds the page
// quadtree when EnableQuadtree is set. It creates no tracks: every
// Block's TrackID is left 0, and pages stay in the tracks the allocator
// placed them in.
func (idx *SpatialIndex) Build() error {
	objects := idx.allObjects()

	points := make([]Point, len(objects))
	ids := make([]uint64, len(objects))
	for i, o := range objects {
		points[i] = o.Centroid
		ids[i] = o.ID
	}
	idx.blockTree = NewKDTree()
	idx.blockTree.BulkLoad(points, ids, nil)

	blockMBRs := idx.blockTree.Partition(idx.config.BlockSize)
	idx.blocks = make([]Block, 0, len(blockMBRs))
	for _, bounds := range blockMBRs {
		idx.nextBlockID++
		count := len(idx.blockTree.RangeQuery(bounds))
		idx.blocks = append(idx.blocks, Block{
			BlockID:     idx.nextBlockID,
			Bounds:      bounds,
			Centroid:    bounds.Centroid(),
			ObjectCount: count,
		})
	}

	if idx.config.EnableQuadtree {
		idx.rebuildPageQuadtree()
	}

	idx.isBuilt = true
	return nil
}

func (idx *SpatialIndex) rebuildPageQuadtree() {
	rootBounds := idx.bounds
	if rootBounds.IsEmpty() {
		rootBounds = MBR{MinX: 0, MinY: 0, MaxX: 0, MaxY: 0}
	}
	qt := NewQuadtree(rootBounds, DefaultQuadtreeCapacity, DefaultQuadtreeMaxDepth)
	for _, p := range idx.pool.AllPages() {
		if len(p.Objects) == 0 {
			continue
		}
		qt.Insert(QTItem{
			ID:       uint64(p.Header.PageID),
			Bounds:   p.Header.Extent,
			Centroid: p.Header.Centroid,
			Data:     p.Header.PageID,
		})
	}
	idx.pageTree = qt
}

func (idx *SpatialIndex) allObjects() []SpatialObject {
	var out []SpatialObject
	for _, p := range idx.pool.AllPages() {
		out = append(out, p.Objects...)
	}
	return out
}

// QueryRange returns every object whose MBR intersects mbr, in the scan
// order of the pages traversed.
func (idx *SpatialIndex) QueryRange(mbr MBR) []SpatialObject {
	var out []SpatialObject
	for _, p := range idx.pool.QueryRegion(mbr) {
		for _, o := range p.Objects {
			if o.MBR.Intersects(mbr) {
				out = append(out, o)
			}
		}
	}
	return out
}

// QueryPoint is QueryRange with a degenerate rectangle at p.
func (idx *SpatialIndex) QueryPoint(p Point) []SpatialObject {
	return idx.QueryRange(MBR{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y})
}

// QueryKNN returns the k objects nearest to p by centroid distance, in
// non-decreasing order, from the block k-d tree. It requires the index
// to be built.
func (idx *SpatialIndex) QueryKNN(p Point, k int) ([]SpatialObject, error) {
	if !idx.isBuilt {
		return nil, newErr("query_knn", KindNotBuilt, ErrNotBuilt)
	}
	results := idx.blockTree.KNearest(p, k)
	out := make([]SpatialObject, 0, len(results))
	for _, r := range results {
		obj, _, err := idx.Get(r.ID)
		if err == nil {
			out = append(out, obj)
		}
	}
	return out, nil
}

// AdjacentPagesResult is the outcome of FindAdjacentPages.
type AdjacentPagesResult struct {
	PageIDs        []uint32
	TrackIDs       []uint32
	Count          int
	EstimatedSeeks int
}

// FindAdjacentPages builds the page quadtree if it does not yet exist,
// queries it for items adjacent to region, and reports the resulting
// page/track IDs plus an estimated seek count.
func (idx *SpatialIndex) FindAdjacentPages(region MBR) AdjacentPagesResult {
	if !idx.config.EnableQuadtree {
		return AdjacentPagesResult{}
	}
	if idx.pageTree == nil {
		idx.rebuildPageQuadtree()
	}
	items := idx.pageTree.FindAdjacentToRegion(region)

	result := AdjacentPagesResult{
		PageIDs:  make([]uint32, 0, len(items)),
		TrackIDs: make([]uint32, 0, len(items)),
		Count:    len(items),
	}
	for _, it := range items {
		pageID := it.Data.(uint32)
		result.PageIDs = append(result.PageIDs, pageID)
		trackID := uint32(0)
		if p := idx.pool.GetPage(pageID); p != nil {
			trackID = p.Header.TrackID
		}
		result.TrackIDs = append(result.TrackIDs, trackID)
	}
	result.EstimatedSeeks = estimateSeeks(result.TrackIDs)
	return result
}

// estimateSeeks counts track transitions when scanning trackIDs in order:
// starting last=0, for each track id t, if t != last && last != 0,
// increment seeks; set last = t.
func estimateSeeks(trackIDs []uint32) int {
	seeks := 0
	var last uint32
	for _, t := range trackIDs {
		if t != last && last != 0 {
			seeks++
		}
		last = t
	}
	return seeks
}

// EstimateSeeksForPageIDs applies the same track-transition rule to an
// arbitrary caller-supplied page-ID sequence instead of a fresh quadtree
// query, useful for benchmarking a query plan without re-deriving the
// quadtree.
func (idx *SpatialIndex) EstimateSeeksForPageIDs(ids []uint32) int {
	trackIDs := make([]uint32, len(ids))
	for i, id := range ids {
		if p := idx.pool.GetPage(id); p != nil {
			trackIDs[i] = p.Header.TrackID
		}
	}
	return estimateSeeks(trackIDs)
}

// EstimateSeeksForQueries runs FindAdjacentPages over each region in turn
// and sums the resulting estimated seeks.
func (idx *SpatialIndex) EstimateSeeksForQueries(regions []MBR) int {
	total := 0
	for _, r := range regions {
		total += idx.FindAdjacentPages(r).EstimatedSeeks
	}
	return total
}

// GetBlock returns the block whose bounds contain p, after Build.
func (idx *SpatialIndex) GetBlock(p Point) (Block, bool) {
	for _, b := range idx.blocks {
		if b.Bounds.ContainsPoint(p) {
			return b, true
		}
	}
	return Block{}, false
}

// QueryBlocks returns every block intersecting mbr.
func (idx *SpatialIndex) QueryBlocks(mbr MBR) []Block {
	var out []Block
	for _, b := range idx.blocks {
		if b.Bounds.Intersects(mbr) {
			out = append(out, b)
		}
	}
	return out
}

// Clear drops all objects, pages, tracks, and blocks, keeping
// configuration.
func (idx *SpatialIndex) Clear() {
	idx.pool = newPagePool(idx.config.PageCapacity, idx.config.PagesPerTrack)
	idx.cache = NewPageCache(idx.pool, idx.config.CacheSize)
	idx.alloc = newAllocator(idx.pool, idx.config.AllocStrategy)
	idx.blockTree = NewKDTree()
	idx.pageTree = nil
	idx.blocks = nil
	idx.objectPages = make(map[uint64]uint32)
	idx.bounds = EmptyMBR()
	idx.isBuilt = false
}

// IndexStats summarizes the index's current shape.
type IndexStats struct {
	TotalObjects      int
	TotalBlocks       int
	TotalPages        int
	TotalTracks       int
	KDTreeDepth       int
	QuadtreeDepth     int
	AvgObjectsPerPage float64
	PageUtilization   float64
	Bounds            MBR
}

// Stats computes object/block/page/track counts, average objects per
// page, average page utilization, k-d/quadtree depth, and bounds.
func (idx *SpatialIndex) Stats() IndexStats {
	poolStats := idx.pool.Stats()
	s := IndexStats{
		TotalObjects: poolStats.TotalObjects,
		TotalBlocks:  len(idx.blocks),
		TotalPages:   poolStats.TotalPages,
		TotalTracks:  poolStats.TotalTracks,
		KDTreeDepth:  idx.blockTree.Depth(),
		Bounds:       idx.bounds,
	}
	if idx.pageTree != nil {
		s.QuadtreeDepth = idx.pageTree.Stats().MaxDepth
	}
	if poolStats.TotalPages > 0 {
		s.AvgObjectsPerPage = float64(poolStats.TotalObjects) / float64(poolStats.TotalPages)
		var totalUtil float64
		for _, p := range idx.pool.AllPages() {
			totalUtil += p.Utilization()
		}
		s.PageUtilization = totalUtil / float64(poolStats.TotalPages)
	}
	return s
}

// Optimize rebuilds the allocation k-d tree and the page quadtree. It
// does not physically re-cluster pages.
func (idx *SpatialIndex) Optimize() error {
	idx.alloc.Rebuild()
	if idx.config.EnableQuadtree {
		idx.rebuildPageQuadtree()
	}
	return nil
}

// QueryAdjacent runs FindAdjacentPages(region) then collects the objects
// of every returned page whose MBR intersects region.
func (idx *SpatialIndex) QueryAdjacent(region MBR) []SpatialObject {
	adjacent := idx.FindAdjacentPages(region)
	var out []SpatialObject
	for _, pageID := range adjacent.PageIDs {
		p := idx.pool.GetPage(pageID)
		if p == nil {
			continue
		}
		for _, o := range p.Objects {
			if o.MBR.Intersects(region) {
				out = append(out, o)
			}
		}
	}
	return out
}

// Bounds returns the current MBR-union of all inserted-not-removed
// objects.
func (idx *SpatialIndex) Bounds() MBR {
	return idx.bounds
}

// IsBuilt reports whether Build has run since the last mutation.
func (idx *SpatialIndex) IsBuilt() bool {
	return idx.isBuilt
}

// Persist writes every page to a fresh data file at path, stamping
// created/modified time with now. It is the caller's responsibility to
// have called Build first if an up-to-date block partition matters to the
// reader; Persist only serializes pages, not the k-d/quadtree indexes,
// which LoadIndexFile rebuilds from page contents.
func (idx *SpatialIndex) Persist(path string, now uint64) error {
	dm, err := Create(path, DefaultPageSize, idx.config.PagesPerTrack, now)
	if err != nil {
		return err
	}
	defer dm.Close()

	pages := idx.pool.AllPages()
	trackCount := len(idx.pool.AllTracks())
	objectCount := uint64(0)
	for _, p := range pages {
		objectCount += uint64(len(p.Objects))
	}
	return dm.Sync(pages, trackCount, objectCount, idx.bounds, now)
}

// LoadIndexFile opens a data file written by Persist and re-inserts every
// stored object into a fresh index built from cfg, then calls Build.
func LoadIndexFile(cfg Config, path string) (*SpatialIndex, error) {
	dm, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer dm.Close()

	idx := NewSpatialIndex(cfg)
	hdr := dm.Header()
	// Pages sit at page-ID-derived offsets and IDs freed before Persist
	// leave zero-filled gaps, so scan until PageCount written pages are seen.
	for pageID, found := uint32(1), uint32(0); found < hdr.PageCount; pageID++ {
		page, err := dm.ReadPage(pageID)
		if err != nil {
			return nil, err
		}
		if page.Header.PageID == 0 {
			continue
		}
		found++
		for _, obj := range page.Objects {
			if _, err := idx.Insert(obj); err != nil {
				return nil, err
			}
		}
	}
	if err := idx.Build(); err != nil {
		return nil, err
	}
	return idx, nil
}
