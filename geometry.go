// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

import "math"

// Point is a 2-D coordinate pair.
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Sqrt(p.DistanceSq(q))
}

// DistanceSq returns the squared Euclidean distance between p and q. Used
// on hot paths (nearest-neighbor comparisons) where the square root can be
// deferred or skipped entirely.
func (p Point) DistanceSq(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Equals reports whether p and q are within epsilon of each other on both
// axes.
func (p Point) Equals(q Point, epsilon float64) bool {
	return math.Abs(p.X-q.X) <= epsilon && math.Abs(p.Y-q.Y) <= epsilon
}

// MBR is an axis-aligned minimum bounding rectangle.
type MBR struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyMBR returns an MBR in the "empty" state: MinX > MaxX and MinY > MaxY,
// so that the first ExpandPoint/ExpandMBR establishes real bounds.
func EmptyMBR() MBR {
	return MBR{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// IsEmpty reports whether the rectangle is degenerate per the MBR invariant
// in the data model: min > max on either axis.
func (m MBR) IsEmpty() bool {
	return m.MinX > m.MaxX || m.MinY > m.MaxY
}

// ExpandPoint returns the smallest MBR containing both m and p.
func (m MBR) ExpandPoint(p Point) MBR {
	if m.IsEmpty() {
		return MBR{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
	}
	return MBR{
		MinX: math.Min(m.MinX, p.X),
		MinY: math.Min(m.MinY, p.Y),
		MaxX: math.Max(m.MaxX, p.X),
		MaxY: math.Max(m.MaxY, p.Y),
	}
}

// Union returns the smallest MBR containing both m and other.
func (m MBR) Union(other MBR) MBR {
	if m.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return m
	}
	return MBR{
		MinX: math.Min(m.MinX, other.MinX),
		MinY: math.Min(m.MinY, other.MinY),
		MaxX: math.Max(m.MaxX, other.MaxX),
		MaxY: math.Max(m.MaxY, other.MaxY),
	}
}

// Intersection returns the overlapping region of m and other. The result is
// empty (per IsEmpty) if the two rectangles do not overlap.
func (m MBR) Intersection(other MBR) MBR {
	return MBR{
		MinX: math.Max(m.MinX, other.MinX),
		MinY: math.Max(m.MinY, other.MinY),
		MaxX: math.Min(m.MaxX, other.MaxX),
		MaxY: math.Min(m.MaxY, other.MaxY),
	}
}

// Intersects reports whether m and other overlap (closed rectangles: edges
// touching counts as intersecting).
func (m MBR) Intersects(other MBR) bool {
	if m.IsEmpty() || other.IsEmpty() {
		return false
	}
	return m.MinX <= other.MaxX && m.MaxX >= other.MinX &&
		m.MinY <= other.MaxY && m.MaxY >= other.MinY
}

// ContainsPoint reports whether p lies within (or on the boundary of) m.
func (m MBR) ContainsPoint(p Point) bool {
	if m.IsEmpty() {
		return false
	}
	return p.X >= m.MinX && p.X <= m.MaxX && p.Y >= m.MinY && p.Y <= m.MaxY
}

// ContainsMBR reports whether m entirely contains other.
func (m MBR) ContainsMBR(other MBR) bool {
	if m.IsEmpty() || other.IsEmpty() {
		return false
	}
	return other.MinX >= m.MinX && other.MaxX <= m.MaxX &&
		other.MinY >= m.MinY && other.MaxY <= m.MaxY
}

// Centroid returns the geometric center of the rectangle.
func (m MBR) Centroid() Point {
	return Point{X: (m.MinX + m.MaxX) / 2, Y: (m.MinY + m.MaxY) / 2}
}

// Area returns the rectangle's area, or 0 if empty.
func (m MBR) Area() float64 {
	if m.IsEmpty() {
		return 0
	}
	return (m.MaxX - m.MinX) * (m.MaxY - m.MinY)
}

// GeomType discriminates the geometry payload carried by a SpatialObject.
type GeomType int

const (
	GeomPoint GeomType = iota
	GeomLineString
	GeomPolygon
)

func (t GeomType) String() string {
	switch t {
	case GeomPoint:
		return "point"
	case GeomLineString:
		return "linestring"
	case GeomPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// Polygon is an exterior ring with zero or more interior rings (holes).
// Holes are preserved for geometry fidelity (e.g. WKT/GeoJSON export) but
// ignored by centroid and area computations, per the data model contract.
type Polygon struct {
	Exterior []Point
	Holes    [][]Point
}

// SpatialObject is the unit of storage in the index: an id, a geometry
// variant, and the derived centroid/MBR that every other component
// (allocator, k-d tree, quadtree) relies on.
//
// Properties is an opaque caller-defined payload (e.g. re-marshaled GeoJSON
// "properties") carried through insert/get/remove. It plays no part in any
// derived field or index.
type SpatialObject struct {
	ID   uint64
	Type GeomType

	// Exactly one of these is populated, selected by Type.
	Point      Point
	LineString []Point
	Polygon    Polygon

	Centroid Point
	MBR      MBR

	Properties []byte
}

// NewPointObject constructs an unassigned-id point object with derived
// fields already computed.
func NewPointObject(p Point) SpatialObject {
	obj := SpatialObject{Type: GeomPoint, Point: p}
	obj.UpdateDerived()
	return obj
}

// NewLineStringObject constructs an unassigned-id linestring object.
func NewLineStringObject(points []Point) SpatialObject {
	obj := SpatialObject{Type: GeomLineString, LineString: append([]Point(nil), points...)}
	obj.UpdateDerived()
	return obj
}

// NewPolygonObject constructs an unassigned-id polygon object. holes may be
// nil.
func NewPolygonObject(exterior []Point, holes [][]Point) SpatialObject {
	obj := SpatialObject{Type: GeomPolygon, Polygon: Polygon{
		Exterior: append([]Point(nil), exterior...),
		Holes:    holes,
	}}
	obj.UpdateDerived()
	return obj
}

// UpdateDerived recomputes Centroid and MBR from the current geometry. It
// must be called after any in-place mutation of the geometry payload; the
// constructors above call it automatically.
func (o *SpatialObject) UpdateDerived() {
	switch o.Type {
	case GeomPoint:
		o.Centroid = o.Point
		o.MBR = MBR{MinX: o.Point.X, MinY: o.Point.Y, MaxX: o.Point.X, MaxY: o.Point.Y}
	case GeomLineString:
		o.Centroid = lineStringCentroid(o.LineString)
		o.MBR = lineStringMBR(o.LineString)
	case GeomPolygon:
		o.Centroid = polygonCentroid(o.Polygon.Exterior)
		o.MBR = lineStringMBR(o.Polygon.Exterior)
	}
}

// lineStringCentroid is the length-weighted average of segment midpoints.
// A zero-length degenerate line (all points coincident, or a single point)
// falls back to the first vertex.
func lineStringCentroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	if len(points) == 1 {
		return points[0]
	}

	var sumX, sumY, totalLen float64
	for i := 0; i < len(points)-1; i++ {
		a, b := points[i], points[i+1]
		segLen := a.Distance(b)
		midX, midY := (a.X+b.X)/2, (a.Y+b.Y)/2
		sumX += midX * segLen
		sumY += midY * segLen
		totalLen += segLen
	}
	if totalLen == 0 {
		return points[0]
	}
	return Point{X: sumX / totalLen, Y: sumY / totalLen}
}

func lineStringMBR(points []Point) MBR {
	mbr := EmptyMBR()
	for _, p := range points {
		mbr = mbr.ExpandPoint(p)
	}
	return mbr
}

// polygonCentroid computes the standard signed-area centroid of a ring.
// For a zero-area (degenerate) ring it falls back to the vertex average.
func polygonCentroid(ring []Point) Point {
	n := len(ring)
	if n == 0 {
		return Point{}
	}
	if n < 3 {
		return vertexAverage(ring)
	}

	var area, cx, cy float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
		area += cross
		cx += (ring[i].X + ring[j].X) * cross
		cy += (ring[i].Y + ring[j].Y) * cross
	}
	area /= 2
	if area == 0 {
		return vertexAverage(ring)
	}
	cx /= 6 * area
	cy /= 6 * area
	return Point{X: cx, Y: cy}
}

func vertexAverage(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(points))
	return Point{X: sumX / n, Y: sumY / n}
}

// PolygonArea returns the polygon's signed exterior-ring area minus the sum
// of its holes' areas (positive for a counter-clockwise exterior ring).
func PolygonArea(poly Polygon) float64 {
	area := ringArea(poly.Exterior)
	for _, hole := range poly.Holes {
		area -= math.Abs(ringArea(hole))
	}
	return area
}

func ringArea(ring []Point) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return area / 2
}
