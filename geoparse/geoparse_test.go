// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geoparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbis-db/urbis"
)

func TestParseWKTPoint(t *testing.T) {
	obj, err := ParseWKT("POINT (10 20)")
	require.NoError(t, err)
	assert.Equal(t, urbis.GeomPoint, obj.Type)
	assert.Equal(t, urbis.Point{X: 10, Y: 20}, obj.Point)
}

func TestParseWKTLowercaseAndWhitespace(t *testing.T) {
	obj, err := ParseWKT("  point(  1.5   -2.5 )")
	require.NoError(t, err)
	assert.Equal(t, urbis.Point{X: 1.5, Y: -2.5}, obj.Point)
}

func TestParseWKTLineString(t *testing.T) {
	obj, err := ParseWKT("LINESTRING (0 0, 10 0, 10 10)")
	require.NoError(t, err)
	require.Len(t, obj.LineString, 3)
	assert.Equal(t, urbis.Point{X: 10, Y: 10}, obj.LineString[2])
}

func TestParseWKTPolygonWithHole(t *testing.T) {
	wkt := "POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0), (2 2, 4 2, 4 4, 2 4, 2 2))"
	obj, err := ParseWKT(wkt)
	require.NoError(t, err)
	assert.Len(t, obj.Polygon.Exterior, 5)
	assert.Len(t, obj.Polygon.Holes, 1)
}

func TestParseWKTMalformedMissingParen(t *testing.T) {
	_, err := ParseWKT("POINT 10 20")
	assert.Error(t, err)
}

func TestParseWKTUnsupportedKeyword(t *testing.T) {
	_, err := ParseWKT("MULTIPOINT (1 1, 2 2)")
	assert.Error(t, err)
}

func TestExportWKTRoundTrip(t *testing.T) {
	orig := urbis.NewPointObject(urbis.Point{X: 3, Y: 4})
	s, err := ExportWKT(orig)
	require.NoError(t, err)
	got, err := ParseWKT(s)
	require.NoErrorf(t, err, "ParseWKT(%q)", s)
	assert.Equal(t, orig.Point, got.Point)
}

func TestParseGeoJSONFeatureCollection(t *testing.T) {
	doc := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [1, 2]}, "properties": {"name": "a"}},
			{"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0,0],[1,1]]}, "properties": null}
		]
	}`
	objs, err := ParseGeoJSONString(doc)
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, urbis.GeomPoint, objs[0].Type)
	assert.EqualValues(t, 1, objs[0].ID)
	assert.EqualValues(t, 2, objs[1].ID)
	assert.Contains(t, string(objs[0].Properties), `"name":"a"`)
}

func TestParseGeoJSONBarePolygon(t *testing.T) {
	doc := `{"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`
	objs, err := ParseGeoJSONString(doc)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, urbis.GeomPolygon, objs[0].Type)
}

func TestParseGeoJSONUnsupportedType(t *testing.T) {
	_, err := ParseGeoJSONString(`{"type": "MultiPoint", "coordinates": []}`)
	assert.Error(t, err)
}

func TestParseGeoJSONSyntaxError(t *testing.T) {
	_, err := ParseGeoJSONString(`{not valid json`)
	assert.Error(t, err)
}

func TestExportGeoJSONRoundTrip(t *testing.T) {
	orig := urbis.NewPointObject(urbis.Point{X: 5, Y: 6})
	data, err := ExportGeoJSON(orig)
	require.NoError(t, err)
	objs, err := ParseGeoJSONString(string(data))
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, orig.Point, objs[0].Point)
}
