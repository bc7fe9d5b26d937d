// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex()
			if err != nil {
				return err
			}
			s := idx.Stats()
			fmt.Printf("objects:            %d\n", s.TotalObjects)
			fmt.Printf("pages:              %d\n", s.TotalPages)
			fmt.Printf("tracks:             %d\n", s.TotalTracks)
			fmt.Printf("blocks:             %d\n", s.TotalBlocks)
			fmt.Printf("kdtree depth:       %d\n", s.KDTreeDepth)
			fmt.Printf("quadtree depth:     %d\n", s.QuadtreeDepth)
			fmt.Printf("avg objects/page:   %.2f\n", s.AvgObjectsPerPage)
			fmt.Printf("page utilization:   %.2f%%\n", s.PageUtilization*100)
			fmt.Printf("bounds:             (%.3f, %.3f) - (%.3f, %.3f)\n",
				s.Bounds.MinX, s.Bounds.MinY, s.Bounds.MaxX, s.Bounds.MaxY)
			return nil
		},
	}
}
