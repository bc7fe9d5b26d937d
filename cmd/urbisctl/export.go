// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/urbis-db/urbis"
	"github.com/urbis-db/urbis/geoparse"
)

func newExportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every object in the index as GeoJSON or WKT",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex()
			if err != nil {
				return err
			}
			region := idx.Bounds()
			objs := idx.QueryRange(region)

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return urbis.WrapError("export", urbis.KindIO, err)
				}
				defer f.Close()
				out = f
			}

			lossy := warnLossyGeometry(objs)

			switch format {
			case "geojson":
				fmt.Fprintln(out, `{"type":"FeatureCollection","features":[`)
				for i, o := range objs {
					data, err := geoparse.ExportGeoJSON(o)
					if err != nil {
						return err
					}
					sep := ","
					if i == len(objs)-1 {
						sep = ""
					}
					fmt.Fprintf(out, "%s%s\n", data, sep)
				}
				fmt.Fprintln(out, "]}")
			case "wkt":
				for _, o := range objs {
					s, err := geoparse.ExportWKT(o)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, s)
				}
			default:
				return fmt.Errorf("unsupported export format %q: want geojson or wkt", format)
			}
			if lossy > 0 {
				log.Warnf("export: %d of %d objects are LineString/Polygon reloaded from disk; a page only persists centroid+MBR, so their original vertices are gone and they exported as empty geometry", lossy, len(objs))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "geojson", "export format: geojson or wkt")
	cmd.Flags().StringVar(&output, "output", "", "output file path (default: stdout)")
	return cmd
}

// warnLossyGeometry counts objects whose raw geometry cannot have
// survived a disk round trip: a persisted page stores only centroid and
// MBR per object, so a LineString or Polygon read back via LoadIndexFile
// always has a zero-value LineString/Polygon field. Point objects are
// unaffected because Centroid == Point is an invariant of
// NewPointObject, and export reads Centroid for points.
func warnLossyGeometry(objs []urbis.SpatialObject) int {
	n := 0
	for _, o := range objs {
		switch o.Type {
		case urbis.GeomLineString:
			if len(o.LineString) == 0 {
				n++
			}
		case urbis.GeomPolygon:
			if len(o.Polygon.Exterior) == 0 {
				n++
			}
		}
	}
	return n
}
