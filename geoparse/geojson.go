// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geoparse reads and writes GeoJSON and WKT spatial data, producing
// and consuming urbis.SpatialObject values.
package geoparse

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urbis-db/urbis"
)

type geojsonGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type geojsonFeature struct {
	Type       string          `json:"type"`
	Geometry   geojsonGeometry `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
	ID         json.RawMessage `json:"id"`
}

type geojsonFeatureCollection struct {
	Type     string           `json:"type"`
	Features []geojsonFeature `json:"features"`
}

// ParseGeoJSONFile reads path and parses it as GeoJSON.
func ParseGeoJSONFile(path string) ([]urbis.SpatialObject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, urbis.WrapError("geojson_parse_file", urbis.KindIO, err)
	}
	return ParseGeoJSONString(string(data))
}

// ParseGeoJSONString parses a GeoJSON document: a FeatureCollection, a bare
// Feature, or a bare Geometry. Every resulting object gets a sequential ID
// starting at 1 in document order; callers wanting stable IDs should
// reassign them before inserting into an index. A Feature's "properties"
// object, if present, is re-marshaled to bytes and attached as
// SpatialObject.Properties.
func ParseGeoJSONString(doc string) ([]urbis.SpatialObject, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(doc), &probe); err != nil {
		return nil, urbis.WrapError("geojson_parse", urbis.KindSyntax, err)
	}

	var nextID uint64 = 1
	switch probe.Type {
	case "FeatureCollection":
		var fc geojsonFeatureCollection
		if err := json.Unmarshal([]byte(doc), &fc); err != nil {
			return nil, urbis.WrapError("geojson_parse", urbis.KindSyntax, err)
		}
		objs := make([]urbis.SpatialObject, 0, len(fc.Features))
		for _, gf := range fc.Features {
			obj, err := geometryToObject(gf.Geometry, gf.Properties)
			if err != nil {
				return nil, err
			}
			obj.ID = nextID
			nextID++
			objs = append(objs, obj)
		}
		return objs, nil

	case "Feature":
		var gf geojsonFeature
		if err := json.Unmarshal([]byte(doc), &gf); err != nil {
			return nil, urbis.WrapError("geojson_parse", urbis.KindSyntax, err)
		}
		obj, err := geometryToObject(gf.Geometry, gf.Properties)
		if err != nil {
			return nil, err
		}
		obj.ID = nextID
		return []urbis.SpatialObject{obj}, nil

	case "Point", "LineString", "Polygon":
		var g geojsonGeometry
		if err := json.Unmarshal([]byte(doc), &g); err != nil {
			return nil, urbis.WrapError("geojson_parse", urbis.KindSyntax, err)
		}
		obj, err := geometryToObject(g, nil)
		if err != nil {
			return nil, err
		}
		obj.ID = nextID
		return []urbis.SpatialObject{obj}, nil

	default:
		return nil, urbis.WrapError("geojson_parse", urbis.KindUnsupported, fmt.Errorf("unsupported geometry type %q", probe.Type))
	}
}

func geometryToObject(g geojsonGeometry, properties json.RawMessage) (urbis.SpatialObject, error) {
	var props []byte
	if len(properties) > 0 && string(properties) != "null" {
		props = []byte(properties)
	}

	switch g.Type {
	case "Point":
		var coord [2]float64
		if err := json.Unmarshal(g.Coordinates, &coord); err != nil {
			return urbis.SpatialObject{}, urbis.WrapError("geojson_parse_geometry", urbis.KindSyntax, err)
		}
		obj := urbis.NewPointObject(urbis.Point{X: coord[0], Y: coord[1]})
		obj.Properties = props
		return obj, nil

	case "LineString":
		var coords [][2]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return urbis.SpatialObject{}, urbis.WrapError("geojson_parse_geometry", urbis.KindSyntax, err)
		}
		pts := coordsToPoints(coords)
		obj := urbis.NewLineStringObject(pts)
		obj.Properties = props
		return obj, nil

	case "Polygon":
		var rings [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return urbis.SpatialObject{}, urbis.WrapError("geojson_parse_geometry", urbis.KindSyntax, err)
		}
		if len(rings) == 0 {
			return urbis.SpatialObject{}, urbis.WrapError("geojson_parse_geometry", urbis.KindInvalid, fmt.Errorf("polygon with no rings"))
		}
		exterior := coordsToPoints(rings[0])
		holes := make([][]urbis.Point, 0, len(rings)-1)
		for _, r := range rings[1:] {
			holes = append(holes, coordsToPoints(r))
		}
		obj := urbis.NewPolygonObject(exterior, holes)
		obj.Properties = props
		return obj, nil

	default:
		return urbis.SpatialObject{}, urbis.WrapError("geojson_parse_geometry", urbis.KindUnsupported, fmt.Errorf("unsupported geometry type %q", g.Type))
	}
}

func coordsToPoints(coords [][2]float64) []urbis.Point {
	pts := make([]urbis.Point, len(coords))
	for i, c := range coords {
		pts[i] = urbis.Point{X: c[0], Y: c[1]}
	}
	return pts
}

// ExportGeoJSON renders obj as a GeoJSON Feature document.
func ExportGeoJSON(obj urbis.SpatialObject) ([]byte, error) {
	geom, err := objectToGeometry(obj)
	if err != nil {
		return nil, err
	}
	feature := struct {
		Type       string          `json:"type"`
		Geometry   geojsonGeometry `json:"geometry"`
		Properties json.RawMessage `json:"properties,omitempty"`
	}{
		Type:     "Feature",
		Geometry: geom,
	}
	if len(obj.Properties) > 0 {
		feature.Properties = json.RawMessage(obj.Properties)
	}
	return json.Marshal(feature)
}

func objectToGeometry(obj urbis.SpatialObject) (geojsonGeometry, error) {
	switch obj.Type {
	case urbis.GeomPoint:
		// Centroid, not Point: NewPointObject guarantees Centroid == Point,
		// and Centroid is the only field DeserializePage restores, so this
		// also works for an object read back from a persisted index.
		coords, err := json.Marshal([2]float64{obj.Centroid.X, obj.Centroid.Y})
		if err != nil {
			return geojsonGeometry{}, err
		}
		return geojsonGeometry{Type: "Point", Coordinates: coords}, nil

	case urbis.GeomLineString:
		coords, err := json.Marshal(pointsToCoords(obj.LineString))
		if err != nil {
			return geojsonGeometry{}, err
		}
		return geojsonGeometry{Type: "LineString", Coordinates: coords}, nil

	case urbis.GeomPolygon:
		rings := make([][][2]float64, 0, 1+len(obj.Polygon.Holes))
		rings = append(rings, pointsToCoords(obj.Polygon.Exterior))
		for _, h := range obj.Polygon.Holes {
			rings = append(rings, pointsToCoords(h))
		}
		coords, err := json.Marshal(rings)
		if err != nil {
			return geojsonGeometry{}, err
		}
		return geojsonGeometry{Type: "Polygon", Coordinates: coords}, nil

	default:
		return geojsonGeometry{}, urbis.WrapError("geojson_export", urbis.KindUnsupported, fmt.Errorf("unsupported geometry type %v", obj.Type))
	}
}

func pointsToCoords(pts []urbis.Point) [][2]float64 {
	coords := make([][2]float64, len(pts))
	for i, p := range pts {
		coords[i] = [2]float64{p.X, p.Y}
	}
	return coords
}
