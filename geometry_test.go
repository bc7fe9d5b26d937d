// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

import (
	"math"
	"testing"
)

func TestPointDistance(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 3, Y: 4}
	if got := a.Distance(b); math.Abs(got-5) > 1e-9 {
		t.Errorf("Distance() = %v, want 5", got)
	}
	if got := a.DistanceSq(b); got != 25 {
		t.Errorf("DistanceSq() = %v, want 25", got)
	}
}

func TestPointEquals(t *testing.T) {
	a := Point{X: 1.0000001, Y: 2}
	b := Point{X: 1.0000002, Y: 2}
	if !a.Equals(b, 1e-6) {
		t.Errorf("expected points to be equal within epsilon")
	}
	if a.Equals(Point{X: 5, Y: 5}, 1e-6) {
		t.Errorf("expected distant points not to be equal")
	}
}

func TestMBREmpty(t *testing.T) {
	m := EmptyMBR()
	if !m.IsEmpty() {
		t.Errorf("EmptyMBR() should be empty")
	}
	if m.Area() != 0 {
		t.Errorf("empty MBR area should be 0, got %v", m.Area())
	}
}

func TestMBRExpandPoint(t *testing.T) {
	m := EmptyMBR()
	m = m.ExpandPoint(Point{X: 1, Y: 1})
	m = m.ExpandPoint(Point{X: 5, Y: 3})
	want := MBR{MinX: 1, MinY: 1, MaxX: 5, MaxY: 3}
	if m != want {
		t.Errorf("ExpandPoint chain = %+v, want %+v", m, want)
	}
}

func TestMBRUnion(t *testing.T) {
	a := MBR{MinX: 0, MinY: 0, MaxX: 2, MaxY: 2}
	b := MBR{MinX: 1, MinY: 1, MaxX: 4, MaxY: 4}
	got := a.Union(b)
	want := MBR{MinX: 0, MinY: 0, MaxX: 4, MaxY: 4}
	if got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}
}

func TestMBRIntersectsAndContains(t *testing.T) {
	a := MBR{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	b := MBR{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15}
	c := MBR{MinX: 20, MinY: 20, MaxX: 30, MaxY: 30}

	if !a.Intersects(b) {
		t.Errorf("a should intersect b")
	}
	if a.Intersects(c) {
		t.Errorf("a should not intersect c")
	}
	if !a.ContainsPoint(Point{X: 10, Y: 10}) {
		t.Errorf("boundary point should be contained")
	}
	if a.ContainsMBR(b) {
		t.Errorf("a should not fully contain b")
	}

	inner := MBR{MinX: 2, MinY: 2, MaxX: 4, MaxY: 4}
	if !a.ContainsMBR(inner) {
		t.Errorf("a should fully contain inner")
	}
}

func TestMBRCentroid(t *testing.T) {
	m := MBR{MinX: 0, MinY: 0, MaxX: 4, MaxY: 2}
	got := m.Centroid()
	want := Point{X: 2, Y: 1}
	if got != want {
		t.Errorf("Centroid() = %+v, want %+v", got, want)
	}
}

func TestNewPointObject(t *testing.T) {
	obj := NewPointObject(Point{X: 3, Y: 4})
	if obj.Type != GeomPoint {
		t.Fatalf("expected GeomPoint type")
	}
	if obj.Centroid != (Point{X: 3, Y: 4}) {
		t.Errorf("centroid = %+v, want (3,4)", obj.Centroid)
	}
	want := MBR{MinX: 3, MinY: 4, MaxX: 3, MaxY: 4}
	if obj.MBR != want {
		t.Errorf("mbr = %+v, want %+v", obj.MBR, want)
	}
}

func TestNewLineStringObject(t *testing.T) {
	pts := []Point{{X: 0, Y: 0}, {X: 10, Y: 0}}
	obj := NewLineStringObject(pts)
	if obj.Type != GeomLineString {
		t.Fatalf("expected GeomLineString type")
	}
	want := Point{X: 5, Y: 0}
	if !obj.Centroid.Equals(want, 1e-9) {
		t.Errorf("centroid = %+v, want %+v", obj.Centroid, want)
	}
	wantMBR := MBR{MinX: 0, MinY: 0, MaxX: 10, MaxY: 0}
	if obj.MBR != wantMBR {
		t.Errorf("mbr = %+v, want %+v", obj.MBR, wantMBR)
	}
}

func TestNewPolygonObjectSquareCentroid(t *testing.T) {
	ring := []Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}}
	obj := NewPolygonObject(ring, nil)
	if obj.Type != GeomPolygon {
		t.Fatalf("expected GeomPolygon type")
	}
	want := Point{X: 2, Y: 2}
	if !obj.Centroid.Equals(want, 1e-9) {
		t.Errorf("centroid = %+v, want %+v", obj.Centroid, want)
	}
}

func TestPolygonAreaWithHole(t *testing.T) {
	exterior := []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	hole := []Point{{X: 2, Y: 2}, {X: 4, Y: 2}, {X: 4, Y: 4}, {X: 2, Y: 4}}
	poly := Polygon{Exterior: exterior, Holes: [][]Point{hole}}

	got := PolygonArea(poly)
	want := 100.0 - 4.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("PolygonArea() = %v, want %v", got, want)
	}
}

func TestLineStringCentroidDegenerate(t *testing.T) {
	single := []Point{{X: 7, Y: 9}}
	got := lineStringCentroid(single)
	if got != (Point{X: 7, Y: 9}) {
		t.Errorf("degenerate centroid = %+v, want (7,9)", got)
	}

	coincident := []Point{{X: 1, Y: 1}, {X: 1, Y: 1}}
	got = lineStringCentroid(coincident)
	if got != (Point{X: 1, Y: 1}) {
		t.Errorf("coincident centroid = %+v, want (1,1)", got)
	}
}

func TestGeomTypeString(t *testing.T) {
	cases := map[GeomType]string{
		GeomPoint:      "point",
		GeomLineString: "linestring",
		GeomPolygon:    "polygon",
		GeomType(99):   "unknown",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("GeomType(%d).String() = %q, want %q", typ, got, want)
		}
	}
}
