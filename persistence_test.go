// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPageSerializeDeserializeRoundTrip(t *testing.T) {
	p := newPage(1, 4)
	p.AddObject(NewPointObject(Point{X: 1, Y: 2}))
	p.AddObject(NewPointObject(Point{X: 3, Y: 4}))

	buf := p.Serialize()
	got, err := DeserializePage(buf)
	if err != nil {
		t.Fatalf("DeserializePage() error: %v", err)
	}
	if got.Header.PageID != p.Header.PageID {
		t.Errorf("PageID = %d, want %d", got.Header.PageID, p.Header.PageID)
	}
	if got.Header.ObjectCount != p.Header.ObjectCount {
		t.Errorf("ObjectCount = %d, want %d", got.Header.ObjectCount, p.Header.ObjectCount)
	}
	if len(got.Objects) != len(p.Objects) {
		t.Fatalf("len(Objects) = %d, want %d", len(got.Objects), len(p.Objects))
	}
	for i := range p.Objects {
		if got.Objects[i].ID != p.Objects[i].ID {
			t.Errorf("Objects[%d].ID = %d, want %d", i, got.Objects[i].ID, p.Objects[i].ID)
		}
		if got.Objects[i].Centroid != p.Objects[i].Centroid {
			t.Errorf("Objects[%d].Centroid = %+v, want %+v", i, got.Objects[i].Centroid, p.Objects[i].Centroid)
		}
	}
}

func TestPageVerifyChecksum(t *testing.T) {
	p := newPage(1, 4)
	p.AddObject(NewPointObject(Point{X: 1, Y: 2}))
	p.Serialize() // stamps p.Header.Checksum
	if !p.Verify() {
		t.Errorf("Verify() should succeed on an unmodified serialized page")
	}
	p.Header.ObjectCount = 99
	if p.Verify() {
		t.Errorf("Verify() should fail after header tampering")
	}
}

func TestDeserializePageCorruptObjectCount(t *testing.T) {
	buf := make([]byte, pageHeaderSize)
	writePageHeader(buf, &PageHeader{ObjectCount: MaxObjectsPerPage + 1})
	_, err := DeserializePage(buf)
	if err == nil {
		t.Fatalf("expected corrupt error for object_count exceeding MaxObjectsPerPage")
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.urbis")

	dm, err := Create(path, DefaultPageSize, DefaultPagesPerTrack, 1000)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	pts := []Point{{10, 10}, {100, 100}, {200, 200}}
	var pages []*Page
	bounds := EmptyMBR()
	for i, p := range pts {
		page := newPage(uint32(i+1), 64)
		obj := NewPointObject(p)
		obj.ID = uint64(i + 1)
		page.AddObject(obj)
		pages = append(pages, page)
		bounds = bounds.Union(obj.MBR)
	}

	if err := dm.Sync(pages, 1, uint64(len(pts)), bounds, 1001); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if err := dm.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer reopened.Close()

	hdr := reopened.Header()
	if hdr.ObjectCount != uint64(len(pts)) {
		t.Errorf("ObjectCount = %d, want %d", hdr.ObjectCount, len(pts))
	}
	wantBounds := MBR{MinX: 10, MinY: 10, MaxX: 200, MaxY: 200}
	if hdr.Bounds != wantBounds {
		t.Errorf("Bounds = %+v, want %+v", hdr.Bounds, wantBounds)
	}

	got, err := reopened.ReadPage(1)
	if err != nil {
		t.Fatalf("ReadPage() error: %v", err)
	}
	if len(got.Objects) != 1 || got.Objects[0].Centroid != (Point{10, 10}) {
		t.Errorf("ReadPage(1) objects = %+v, want one object at (10,10)", got.Objects)
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.urbis")
	dm, err := Create(path, DefaultPageSize, DefaultPagesPerTrack, 1)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	dm.Close()

	f, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("failed to reopen file for corruption: %v", err)
	}
	f.WriteAt([]byte{0, 0, 0, 0}, 0)
	f.Close()

	_, err = Open(path)
	if err == nil {
		t.Fatalf("expected error opening file with corrupted magic")
	}
}
