// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/urbis-db/urbis"
)

// withTempOutput redirects os.Stdout to a pipe for the duration of fn and
// returns everything written to it.
func withTempOutput(fn func()) string {
	stdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = stdout
	buf := new(bytes.Buffer)
	buf.ReadFrom(r)
	return buf.String()
}

func writeTempGeoJSON(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "in.geojson")
	doc := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[1,1]},"properties":null},
		{"type":"Feature","geometry":{"type":"Point","coordinates":[100,100]},"properties":null}
	]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func TestBuildStatsQueryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := writeTempGeoJSON(t, dir)
	dataPath := filepath.Join(dir, "out.urbis")

	cfgFile, dataArg = "", dataPath
	build := newBuildCmd()
	build.SetArgs([]string{"--input", input})
	if err := build.Execute(); err != nil {
		t.Fatalf("build command error: %v", err)
	}

	cfgFile, dataArg = "", dataPath
	stats := newStatsCmd()
	stats.SetArgs([]string{})
	out := withTempOutput(func() {
		if err := stats.Execute(); err != nil {
			t.Fatalf("stats command error: %v", err)
		}
	})
	if !bytes.Contains([]byte(out), []byte("objects:            2")) {
		t.Errorf("stats output = %q, want to mention 2 objects", out)
	}

	cfgFile, dataArg = "", dataPath
	query := newQueryCmd()
	query.SetArgs([]string{"range", "--min-x", "0", "--min-y", "0", "--max-x", "5", "--max-y", "5"})
	out = withTempOutput(func() {
		if err := query.Execute(); err != nil {
			t.Fatalf("query command error: %v", err)
		}
	})
	if !bytes.Contains([]byte(out), []byte("centroid=(1.000000, 1.000000)")) {
		t.Errorf("query range output = %q, want the (1,1) point", out)
	}
}

func TestBuildReloadExportGeoJSON(t *testing.T) {
	dir := t.TempDir()
	input := writeTempGeoJSON(t, dir)
	dataPath := filepath.Join(dir, "out.urbis")

	cfgFile, dataArg = "", dataPath
	build := newBuildCmd()
	build.SetArgs([]string{"--input", input})
	if err := build.Execute(); err != nil {
		t.Fatalf("build command error: %v", err)
	}

	// A fresh process-equivalent command invocation: export only ever sees
	// objects through openIndex() -> LoadIndexFile, so it exercises the
	// DeserializePage path exactly like a second urbisctl invocation would.
	cfgFile, dataArg = "", dataPath
	export := newExportCmd()
	export.SetArgs([]string{"--format", "geojson"})
	out := withTempOutput(func() {
		if err := export.Execute(); err != nil {
			t.Fatalf("export command error: %v", err)
		}
	})
	if !bytes.Contains([]byte(out), []byte(`"coordinates":[1,1]`)) {
		t.Errorf("export output = %q, want coordinates [1,1] for the reloaded point", out)
	}
	if !bytes.Contains([]byte(out), []byte(`"coordinates":[100,100]`)) {
		t.Errorf("export output = %q, want coordinates [100,100] for the reloaded point", out)
	}
	if bytes.Contains([]byte(out), []byte(`"coordinates":[0,0]`)) {
		t.Errorf("export output = %q, a reloaded point must not fall back to the zero value", out)
	}
}

func TestWarnLossyGeometry(t *testing.T) {
	// A point read back after reload never reports lossy; a LineString or
	// Polygon read back after reload does, since DeserializePage leaves
	// their raw geometry fields at the zero value.
	objs := []urbis.SpatialObject{
		{Type: urbis.GeomPoint},
		{Type: urbis.GeomLineString},
		{Type: urbis.GeomLineString, LineString: []urbis.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}},
		{Type: urbis.GeomPolygon},
	}
	if got := warnLossyGeometry(objs); got != 2 {
		t.Errorf("warnLossyGeometry() = %d, want 2", got)
	}
}

func TestLoadObjectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	os.WriteFile(path, []byte("POINT (1 2)"), 0o644)
	if _, err := loadObjects(path, "auto"); err == nil {
		t.Fatalf("expected error for unrecognized extension without --format")
	}
}

func TestLoadObjectsWKT(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.wkt")
	os.WriteFile(path, []byte("POINT (1 2)\nPOINT (3 4)\n"), 0o644)
	objs, err := loadObjects(path, "auto")
	if err != nil {
		t.Fatalf("loadObjects() error: %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("len(objs) = %d, want 2", len(objs))
	}
}
