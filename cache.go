// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

// DefaultCacheSize is the default number of pages resident in the LRU.
const DefaultCacheSize = 128

// cacheEntry is one node of the MRU doubly linked list.
type cacheEntry struct {
	pageID      uint32
	accessCount uint64
	prev, next  *cacheEntry
}

// PageCache is a capacity-bounded LRU over page IDs: a hash map for O(1)
// lookup plus a doubly linked MRU list. It holds no page data itself —
// page_id is a reference back into the owning PagePool, which remains the
// single source of page identity and content.
//
// Single-threaded and single-shard, unlike the sharded/TTL-based cache
// this is grounded on: there is exactly one mutator per the package's
// concurrency model, so sharding buys nothing.
type PageCache struct {
	pool     *PagePool
	capacity int
	entries  map[uint32]*cacheEntry
	head     *cacheEntry // most recently used
	tail     *cacheEntry // least recently used

	hits      uint64
	misses    uint64
	evictions uint64
}

// NewPageCache creates a cache bound to pool with the given capacity
// (falling back to DefaultCacheSize if capacity <= 0).
func NewPageCache(pool *PagePool, capacity int) *PageCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &PageCache{
		pool:     pool,
		capacity: capacity,
		entries:  make(map[uint32]*cacheEntry),
	}
}

// Get returns the page for pageID, splicing its entry to the MRU head on
// a hit. On a miss, if the page exists in the pool, it is admitted
// (evicting from the LRU tail as needed) and returned; if every resident
// page is pinned and the cache is at capacity, the page is returned
// without being admitted. If the page does not exist, ok is false.
func (c *PageCache) Get(pageID uint32) (*Page, bool) {
	if e, ok := c.entries[pageID]; ok {
		c.hits++
		e.accessCount++
		c.moveToFront(e)
		return c.pool.GetPage(pageID), true
	}

	c.misses++
	p := c.pool.GetPage(pageID)
	if p == nil {
		return nil, false
	}
	c.admit(pageID)
	return p, true
}

func (c *PageCache) admit(pageID uint32) {
	for len(c.entries) >= c.capacity {
		if !c.evictOne() {
			return
		}
	}
	e := &cacheEntry{pageID: pageID, accessCount: 1}
	c.entries[pageID] = e
	c.pushFront(e)
}

// evictOne drops the LRU-tail entry whose underlying page is not pinned.
// It returns false if every resident page is pinned (no room can be
// made).
func (c *PageCache) evictOne() bool {
	for e := c.tail; e != nil; e = e.prev {
		p := c.pool.GetPage(e.pageID)
		if p != nil && p.Header.Flags.has(PagePinned) {
			continue
		}
		c.unlink(e)
		delete(c.entries, e.pageID)
		c.evictions++
		return true
	}
	return false
}

func (c *PageCache) pushFront(e *cacheEntry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *PageCache) unlink(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}

func (c *PageCache) moveToFront(e *cacheEntry) {
	if c.head == e {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

// Pin marks a page as pinned, exempting it from eviction.
func (c *PageCache) Pin(pageID uint32) error {
	p := c.pool.GetPage(pageID)
	if p == nil {
		return newErr("page_cache_pin", KindNotFound, ErrNotFound)
	}
	p.Header.Flags.set(PagePinned)
	return nil
}

// Unpin clears a page's pinned flag.
func (c *PageCache) Unpin(pageID uint32) error {
	p := c.pool.GetPage(pageID)
	if p == nil {
		return newErr("page_cache_unpin", KindNotFound, ErrNotFound)
	}
	p.Header.Flags.clear(PagePinned)
	return nil
}

// MarkDirty sets a page's dirty flag.
func (c *PageCache) MarkDirty(pageID uint32) error {
	p := c.pool.GetPage(pageID)
	if p == nil {
		return newErr("page_cache_mark_dirty", KindNotFound, ErrNotFound)
	}
	p.Header.Flags.set(PageDirty)
	return nil
}

// Evict removes up to count entries from the LRU tail (skipping pinned
// pages), making room without flushing them.
func (c *PageCache) Evict(count int) int {
	evicted := 0
	for i := 0; i < count; i++ {
		if !c.evictOne() {
			break
		}
		evicted++
	}
	return evicted
}

// Len returns the number of entries currently resident.
func (c *PageCache) Len() int {
	return len(c.entries)
}

// HitRate returns hits/(hits+misses), or 0 if no Get has ever been
// called.
func (c *PageCache) HitRate() float64 {
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

// Flush walks every page in the pool and writes dirty ones through
// writeThrough, clearing the dirty flag on success. The cache does not
// maintain a separate write-back queue; this is the only path that
// persists dirty pages.
func (c *PageCache) Flush(writeThrough func(*Page) error) error {
	for _, p := range c.pool.AllPages() {
		if !p.Header.Flags.has(PageDirty) {
			continue
		}
		if err := writeThrough(p); err != nil {
			return newErr("page_cache_flush", KindIO, err)
		}
		p.Header.Flags.clear(PageDirty)
	}
	return nil
}
