// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

import (
	"encoding/binary"
	"os"
)

// FileMagic is the little-endian magic number stored in every Urbis data
// file header ("URBI" read big-endian).
const FileMagic uint32 = 0x55524249

// FileVersion is the current on-disk format version.
const FileVersion uint32 = 1

// DefaultPageSize is the default on-disk page size in bytes, independent
// of PageCapacity (the object-count limit): the page record is padded or
// truncated to this stride on disk.
const DefaultPageSize = 4096

// fileHeaderSize is the fixed 128-byte header size.
const fileHeaderSize = 128

// DiskFileHeader is the 128-byte fixed header written at the start of a
// persisted index file.
type DiskFileHeader struct {
	Magic         uint32
	Version       uint32
	PageCount     uint32
	TrackCount    uint32
	ObjectCount   uint64
	Bounds        MBR
	CreatedTime   uint64
	ModifiedTime  uint64
	PageSize      uint32
	PagesPerTrack uint32
	IndexOffset   uint64
	DataOffset    uint64
}

func (h *DiskFileHeader) dataOffset() uint64 {
	return fileHeaderSize + uint64(h.PageSize)
}

// DiskManager owns a persisted index's backing file: header, pages, and
// the open os.File handle. No mmap is used (the package's single-threaded
// concurrency model has no concurrent reader/writer for mmap to help
// with) and no unsafe pointer casts; all I/O goes through
// encoding/binary over a plain os.File.
type DiskManager struct {
	file   *os.File
	header DiskFileHeader
	path   string

	PagesRead    uint64
	PagesWritten uint64
}

// Create creates a new data file at path with a freshly initialized
// header sized for the given page size / pages-per-track.
func Create(path string, pageSize, pagesPerTrack int, now uint64) (*DiskManager, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, newErr("disk_manager_create", KindIO, err)
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	dm := &DiskManager{
		file: f,
		path: path,
		header: DiskFileHeader{
			Magic:         FileMagic,
			Version:       FileVersion,
			PageSize:      uint32(pageSize),
			PagesPerTrack: uint32(pagesPerTrack),
			Bounds:        EmptyMBR(),
			CreatedTime:   now,
			ModifiedTime:  now,
		},
	}
	dm.header.IndexOffset = fileHeaderSize
	dm.header.DataOffset = dm.header.dataOffset()
	if err := dm.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return dm, nil
}

// Open opens an existing data file, validating the magic number and
// version. It fails with ErrCorrupt on a bad magic and ErrVersion if
// version > FileVersion.
func Open(path string) (*DiskManager, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, newErr("disk_manager_open", KindIO, err)
	}
	buf := make([]byte, fileHeaderSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		f.Close()
		return nil, newErr("disk_manager_open", KindIO, err)
	}
	hdr := readFileHeader(buf)
	if hdr.Magic != FileMagic {
		f.Close()
		return nil, newErr("disk_manager_open", KindCorrupt, ErrCorrupt)
	}
	if hdr.Version > FileVersion {
		f.Close()
		return nil, newErr("disk_manager_open", KindVersion, ErrVersion)
	}
	return &DiskManager{file: f, path: path, header: hdr}, nil
}

// Close closes the underlying file handle.
func (dm *DiskManager) Close() error {
	if err := dm.file.Close(); err != nil {
		return newErr("disk_manager_close", KindIO, err)
	}
	return nil
}

// WritePage writes page at its page-id-derived offset.
func (dm *DiskManager) WritePage(page *Page) error {
	buf := make([]byte, dm.header.PageSize)
	record := page.Serialize()
	copy(buf, record)
	offset := int64(dm.header.dataOffset()) + int64(page.Header.PageID-1)*int64(dm.header.PageSize)
	if _, err := dm.file.WriteAt(buf, offset); err != nil {
		return newErr("disk_manager_write_page", KindIO, err)
	}
	dm.PagesWritten++
	return nil
}

// ReadPage reads and deserializes the page at the given page id.
func (dm *DiskManager) ReadPage(pageID uint32) (*Page, error) {
	buf := make([]byte, dm.header.PageSize)
	offset := int64(dm.header.dataOffset()) + int64(pageID-1)*int64(dm.header.PageSize)
	if _, err := dm.file.ReadAt(buf, offset); err != nil {
		return nil, newErr("disk_manager_get_page", KindIO, err)
	}
	p, err := DeserializePage(buf)
	if err != nil {
		return nil, err
	}
	dm.PagesRead++
	return p, nil
}

// Sync writes every page in pages, then the header, reflecting
// page_count/track_count/object_count/bounds/modified_time.
func (dm *DiskManager) Sync(pages []*Page, trackCount int, objectCount uint64, bounds MBR, now uint64) error {
	for _, p := range pages {
		if err := dm.WritePage(p); err != nil {
			return err
		}
	}
	dm.header.PageCount = uint32(len(pages))
	dm.header.TrackCount = uint32(trackCount)
	dm.header.ObjectCount = objectCount
	dm.header.Bounds = bounds
	dm.header.ModifiedTime = now
	return dm.writeHeader()
}

func (dm *DiskManager) writeHeader() error {
	buf := make([]byte, fileHeaderSize)
	writeFileHeader(buf, &dm.header)
	if _, err := dm.file.WriteAt(buf, 0); err != nil {
		return newErr("disk_manager_sync", KindIO, err)
	}
	return nil
}

// Header returns a copy of the current on-disk header.
func (dm *DiskManager) Header() DiskFileHeader {
	return dm.header
}

func writeFileHeader(buf []byte, h *DiskFileHeader) {
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:], h.Version)
	binary.LittleEndian.PutUint32(buf[8:], h.PageCount)
	binary.LittleEndian.PutUint32(buf[12:], h.TrackCount)
	binary.LittleEndian.PutUint64(buf[16:], h.ObjectCount)
	putFloat64(buf[24:], h.Bounds.MinX)
	putFloat64(buf[32:], h.Bounds.MinY)
	putFloat64(buf[40:], h.Bounds.MaxX)
	putFloat64(buf[48:], h.Bounds.MaxY)
	binary.LittleEndian.PutUint64(buf[56:], h.CreatedTime)
	binary.LittleEndian.PutUint64(buf[64:], h.ModifiedTime)
	binary.LittleEndian.PutUint32(buf[72:], h.PageSize)
	binary.LittleEndian.PutUint32(buf[76:], h.PagesPerTrack)
	binary.LittleEndian.PutUint64(buf[80:], h.IndexOffset)
	binary.LittleEndian.PutUint64(buf[88:], h.DataOffset)
	// bytes [96:128) are reserved padding, left zero.
}

func readFileHeader(buf []byte) DiskFileHeader {
	var h DiskFileHeader
	h.Magic = binary.LittleEndian.Uint32(buf[0:])
	h.Version = binary.LittleEndian.Uint32(buf[4:])
	h.PageCount = binary.LittleEndian.Uint32(buf[8:])
	h.TrackCount = binary.LittleEndian.Uint32(buf[12:])
	h.ObjectCount = binary.LittleEndian.Uint64(buf[16:])
	h.Bounds.MinX = getFloat64(buf[24:])
	h.Bounds.MinY = getFloat64(buf[32:])
	h.Bounds.MaxX = getFloat64(buf[40:])
	h.Bounds.MaxY = getFloat64(buf[48:])
	h.CreatedTime = binary.LittleEndian.Uint64(buf[56:])
	h.ModifiedTime = binary.LittleEndian.Uint64(buf[64:])
	h.PageSize = binary.LittleEndian.Uint32(buf[72:])
	h.PagesPerTrack = binary.LittleEndian.Uint32(buf[76:])
	h.IndexOffset = binary.LittleEndian.Uint64(buf[80:])
	h.DataOffset = binary.LittleEndian.Uint64(buf[88:])
	return h
}
