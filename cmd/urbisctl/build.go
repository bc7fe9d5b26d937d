// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/urbis-db/urbis"
	"github.com/urbis-db/urbis/geoparse"
)

func newBuildCmd() *cobra.Command {
	var inputPath string
	var format string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an index from a GeoJSON or WKT input file and persist it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DataPath == "" {
				return fmt.Errorf("no data path: pass --data or set data_path in --config")
			}

			objs, err := loadObjects(inputPath, format)
			if err != nil {
				return err
			}

			idx := urbis.NewSpatialIndex(cfg)
			if _, err := idx.BulkInsert(objs); err != nil {
				return err
			}
			if err := idx.Build(); err != nil {
				return err
			}

			if err := idx.Persist(cfg.DataPath, uint64(time.Now().Unix())); err != nil {
				return err
			}

			stats := idx.Stats()
			log.WithFields(logFields(stats)).Info("index built")
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to a GeoJSON or WKT file (required)")
	cmd.Flags().StringVar(&format, "format", "auto", "input format: geojson, wkt, or auto (by extension)")
	cmd.MarkFlagRequired("input")
	return cmd
}

func loadObjects(path, format string) ([]urbis.SpatialObject, error) {
	resolved := format
	if resolved == "auto" || resolved == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".geojson":
			resolved = "geojson"
		case ".wkt":
			resolved = "wkt"
		default:
			return nil, fmt.Errorf("cannot infer format from extension %q: pass --format", filepath.Ext(path))
		}
	}

	switch resolved {
	case "geojson":
		return geoparse.ParseGeoJSONFile(path)

	case "wkt":
		lines, err := readLines(path)
		if err != nil {
			return nil, err
		}
		objs := make([]urbis.SpatialObject, 0, len(lines))
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			obj, err := geoparse.ParseWKT(line)
			if err != nil {
				return nil, err
			}
			objs = append(objs, obj)
		}
		return objs, nil

	default:
		return nil, fmt.Errorf("unsupported format %q", resolved)
	}
}

func logFields(s urbis.IndexStats) map[string]interface{} {
	return map[string]interface{}{
		"objects":     s.TotalObjects,
		"pages":       s.TotalPages,
		"tracks":      s.TotalTracks,
		"blocks":      s.TotalBlocks,
		"utilization": s.PageUtilization,
	}
}
