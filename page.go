// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

import (
	"encoding/binary"
	"hash/fnv"
)

// DefaultPageCapacity is the default maximum number of objects per page.
const DefaultPageCapacity = 64

// MaxObjectsPerPage is the hard ceiling page capacity is clamped to.
const MaxObjectsPerPage = 64

// PageFlags is a bitset of page status flags.
type PageFlags uint32

const (
	PageAllocated PageFlags = 1 << iota
	PageFull
	PageDirty
	PagePinned
)

func (f PageFlags) has(flag PageFlags) bool { return f&flag != 0 }
func (f *PageFlags) set(flag PageFlags)     { *f |= flag }
func (f *PageFlags) clear(flag PageFlags)   { *f &^= flag }

// PageHeader is the fixed metadata block stored at the start of every
// page: identity, ownership, derived spatial summary, and an integrity
// checksum.
type PageHeader struct {
	PageID      uint32
	TrackID     uint32
	ObjectCount uint32
	Flags       PageFlags
	Extent      MBR
	Centroid    Point
	Checksum    uint64
}

// Page is a fixed-capacity container of spatial objects: the unit of
// caching and I/O. Objects are stored by value, in insertion order.
type Page struct {
	Header   PageHeader
	Objects  []SpatialObject
	Capacity int
}

// newPage creates a page with the given identity and capacity, not yet
// assigned to a track.
func newPage(id uint32, capacity int) *Page {
	if capacity <= 0 || capacity > MaxObjectsPerPage {
		capacity = DefaultPageCapacity
	}
	p := &Page{
		Capacity: capacity,
	}
	p.Header.PageID = id
	p.Header.Extent = EmptyMBR()
	p.Header.Flags.set(PageAllocated)
	return p
}

// IsFull reports whether the page has reached its object capacity.
func (p *Page) IsFull() bool {
	return p.Header.Flags.has(PageFull)
}

// AddObject appends obj by value, expanding extent and toggling dirty
// (and full, if the page is now at capacity). It fails with ErrFull if
// the page has no remaining capacity.
func (p *Page) AddObject(obj SpatialObject) error {
	if len(p.Objects) >= p.Capacity {
		return newErr("page_add_object", KindFull, ErrFull)
	}
	p.Objects = append(p.Objects, obj)
	p.Header.ObjectCount = uint32(len(p.Objects))
	p.recomputeCentroidIncremental(obj)
	p.Header.Extent = p.Header.Extent.Union(obj.MBR)
	p.Header.Flags.set(PageDirty)
	if len(p.Objects) == p.Capacity {
		p.Header.Flags.set(PageFull)
	}
	return nil
}

// recomputeCentroidIncremental updates Header.Centroid by folding in a
// newly added object, keeping it the arithmetic mean of all objects'
// centroids without rescanning.
func (p *Page) recomputeCentroidIncremental(added SpatialObject) {
	n := float64(len(p.Objects))
	if n == 1 {
		p.Header.Centroid = added.Centroid
		return
	}
	p.Header.Centroid = Point{
		X: p.Header.Centroid.X + (added.Centroid.X-p.Header.Centroid.X)/n,
		Y: p.Header.Centroid.Y + (added.Centroid.Y-p.Header.Centroid.Y)/n,
	}
}

// RemoveObject compacts the object array and recomputes extent and
// centroid from scratch, clearing full. It fails with ErrNotFound if id
// is not present.
func (p *Page) RemoveObject(id uint64) error {
	idx := -1
	for i, o := range p.Objects {
		if o.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return newErr("page_remove_object", KindNotFound, ErrNotFound)
	}
	p.Objects = append(p.Objects[:idx], p.Objects[idx+1:]...)
	p.Header.ObjectCount = uint32(len(p.Objects))
	p.Header.Flags.clear(PageFull)
	p.Header.Flags.set(PageDirty)
	p.recomputeDerivedFromScratch()
	return nil
}

func (p *Page) recomputeDerivedFromScratch() {
	if len(p.Objects) == 0 {
		p.Header.Extent = EmptyMBR()
		p.Header.Centroid = Point{}
		return
	}
	extent := EmptyMBR()
	var sumX, sumY float64
	for _, o := range p.Objects {
		extent = extent.Union(o.MBR)
		sumX += o.Centroid.X
		sumY += o.Centroid.Y
	}
	n := float64(len(p.Objects))
	p.Header.Extent = extent
	p.Header.Centroid = Point{X: sumX / n, Y: sumY / n}
}

// FindObject returns the object with the given id via linear scan, or
// false if not present.
func (p *Page) FindObject(id uint64) (SpatialObject, bool) {
	for _, o := range p.Objects {
		if o.ID == id {
			return o, true
		}
	}
	return SpatialObject{}, false
}

// Utilization returns object_count / capacity.
func (p *Page) Utilization() float64 {
	if p.Capacity == 0 {
		return 0
	}
	return float64(len(p.Objects)) / float64(p.Capacity)
}

// pageRecordSize is the fixed per-object record size written by
// Serialize: id(8) + type(4) + centroid(16) + mbr(32).
const pageRecordSize = 8 + 4 + 16 + 32

// pageHeaderSize is the on-disk page header size, matching the file
// format's PAGE_HEADER_SIZE-equivalent layout described in the data
// model: page_id, track_id, object_count, flags (4 each), extent (32),
// centroid (16), checksum (8).
const pageHeaderSize = 4 + 4 + 4 + 4 + 32 + 16 + 8

// Serialize writes the page header verbatim, then per object
// (id, type, centroid, mbr). Full geometry is not part of this contract;
// this is a page index sufficient for spatial layout, not a durable
// geometry store.
func (p *Page) Serialize() []byte {
	buf := make([]byte, pageHeaderSize+len(p.Objects)*pageRecordSize)
	p.Header.Checksum = p.computeChecksum()
	writePageHeader(buf, &p.Header)

	off := pageHeaderSize
	for _, o := range p.Objects {
		binary.LittleEndian.PutUint64(buf[off:], o.ID)
		binary.LittleEndian.PutUint32(buf[off+8:], uint32(o.Type))
		putFloat64(buf[off+12:], o.Centroid.X)
		putFloat64(buf[off+20:], o.Centroid.Y)
		putFloat64(buf[off+28:], o.MBR.MinX)
		putFloat64(buf[off+36:], o.MBR.MinY)
		putFloat64(buf[off+44:], o.MBR.MaxX)
		putFloat64(buf[off+52:], o.MBR.MaxY)
		off += pageRecordSize
	}
	return buf
}

// DeserializePage is the symmetric reverse of Serialize. It fails with
// ErrCorrupt if object_count exceeds MaxObjectsPerPage or the buffer is
// too short for the declared object count.
func DeserializePage(buf []byte) (*Page, error) {
	if len(buf) < pageHeaderSize {
		return nil, newErr("page_deserialize", KindCorrupt, ErrCorrupt)
	}
	hdr := readPageHeader(buf)
	if hdr.ObjectCount > MaxObjectsPerPage {
		return nil, newErr("page_deserialize", KindCorrupt, ErrCorrupt)
	}
	need := pageHeaderSize + int(hdr.ObjectCount)*pageRecordSize
	if len(buf) < need {
		return nil, newErr("page_deserialize", KindCorrupt, ErrCorrupt)
	}

	p := &Page{Header: hdr, Capacity: DefaultPageCapacity}
	off := pageHeaderSize
	for i := uint32(0); i < hdr.ObjectCount; i++ {
		var o SpatialObject
		o.ID = binary.LittleEndian.Uint64(buf[off:])
		o.Type = GeomType(binary.LittleEndian.Uint32(buf[off+8:]))
		o.Centroid.X = getFloat64(buf[off+12:])
		o.Centroid.Y = getFloat64(buf[off+20:])
		o.MBR.MinX = getFloat64(buf[off+28:])
		o.MBR.MinY = getFloat64(buf[off+36:])
		o.MBR.MaxX = getFloat64(buf[off+44:])
		o.MBR.MaxY = getFloat64(buf[off+52:])
		p.Objects = append(p.Objects, o)
		off += pageRecordSize
	}
	return p, nil
}

func writePageHeader(buf []byte, h *PageHeader) {
	binary.LittleEndian.PutUint32(buf[0:], h.PageID)
	binary.LittleEndian.PutUint32(buf[4:], h.TrackID)
	binary.LittleEndian.PutUint32(buf[8:], h.ObjectCount)
	binary.LittleEndian.PutUint32(buf[12:], uint32(h.Flags))
	putFloat64(buf[16:], h.Extent.MinX)
	putFloat64(buf[24:], h.Extent.MinY)
	putFloat64(buf[32:], h.Extent.MaxX)
	putFloat64(buf[40:], h.Extent.MaxY)
	putFloat64(buf[48:], h.Centroid.X)
	putFloat64(buf[56:], h.Centroid.Y)
	binary.LittleEndian.PutUint64(buf[64:], h.Checksum)
}

func readPageHeader(buf []byte) PageHeader {
	var h PageHeader
	h.PageID = binary.LittleEndian.Uint32(buf[0:])
	h.TrackID = binary.LittleEndian.Uint32(buf[4:])
	h.ObjectCount = binary.LittleEndian.Uint32(buf[8:])
	h.Flags = PageFlags(binary.LittleEndian.Uint32(buf[12:]))
	h.Extent.MinX = getFloat64(buf[16:])
	h.Extent.MinY = getFloat64(buf[24:])
	h.Extent.MaxX = getFloat64(buf[32:])
	h.Extent.MaxY = getFloat64(buf[40:])
	h.Centroid.X = getFloat64(buf[48:])
	h.Centroid.Y = getFloat64(buf[56:])
	h.Checksum = binary.LittleEndian.Uint64(buf[64:])
	return h
}

// computeChecksum is an FNV-1a hash over page_id, track_id, object_count,
// and, per object, (id, centroid).
func (p *Page) computeChecksum() uint64 {
	h := fnv.New64a()
	var tmp [8]byte
	binary.LittleEndian.PutUint32(tmp[:4], p.Header.PageID)
	h.Write(tmp[:4])
	binary.LittleEndian.PutUint32(tmp[:4], p.Header.TrackID)
	h.Write(tmp[:4])
	binary.LittleEndian.PutUint32(tmp[:4], p.Header.ObjectCount)
	h.Write(tmp[:4])
	for _, o := range p.Objects {
		binary.LittleEndian.PutUint64(tmp[:], o.ID)
		h.Write(tmp[:])
		putFloat64(tmp[:], o.Centroid.X)
		h.Write(tmp[:])
		putFloat64(tmp[:], o.Centroid.Y)
		h.Write(tmp[:])
	}
	return h.Sum64()
}

// Verify recomputes the checksum and compares it to the stored value.
func (p *Page) Verify() bool {
	return p.computeChecksum() == p.Header.Checksum
}
