// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/urbis-db/urbis"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query a built index",
	}
	cmd.AddCommand(newQueryRangeCmd())
	cmd.AddCommand(newQueryPointCmd())
	cmd.AddCommand(newQueryKNNCmd())
	cmd.AddCommand(newQueryAdjacentCmd())
	return cmd
}

func newQueryRangeCmd() *cobra.Command {
	var minX, minY, maxX, maxY float64
	cmd := &cobra.Command{
		Use:   "range",
		Short: "List objects whose MBR intersects the given rectangle",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex()
			if err != nil {
				return err
			}
			results := idx.QueryRange(urbis.MBR{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY})
			printObjects(results)
			return nil
		},
	}
	cmd.Flags().Float64Var(&minX, "min-x", 0, "rectangle min X")
	cmd.Flags().Float64Var(&minY, "min-y", 0, "rectangle min Y")
	cmd.Flags().Float64Var(&maxX, "max-x", 0, "rectangle max X")
	cmd.Flags().Float64Var(&maxY, "max-y", 0, "rectangle max Y")
	return cmd
}

func newQueryPointCmd() *cobra.Command {
	var x, y float64
	cmd := &cobra.Command{
		Use:   "point",
		Short: "List objects whose MBR contains the given point",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex()
			if err != nil {
				return err
			}
			results := idx.QueryPoint(urbis.Point{X: x, Y: y})
			printObjects(results)
			return nil
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "point X")
	cmd.Flags().Float64Var(&y, "y", 0, "point Y")
	return cmd
}

func newQueryKNNCmd() *cobra.Command {
	var x, y float64
	var k int
	cmd := &cobra.Command{
		Use:   "knn",
		Short: "List the k objects nearest to the given point",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex()
			if err != nil {
				return err
			}
			results, err := idx.QueryKNN(urbis.Point{X: x, Y: y}, k)
			if err != nil {
				return err
			}
			printObjects(results)
			return nil
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "query point X")
	cmd.Flags().Float64Var(&y, "y", 0, "query point Y")
	cmd.Flags().IntVar(&k, "k", 10, "number of neighbors")
	return cmd
}

func newQueryAdjacentCmd() *cobra.Command {
	var minX, minY, maxX, maxY float64
	cmd := &cobra.Command{
		Use:   "adjacent",
		Short: "List pages/tracks adjacent to the given region and their estimated seek cost",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := openIndex()
			if err != nil {
				return err
			}
			region := urbis.MBR{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
			result := idx.FindAdjacentPages(region)
			fmt.Printf("pages=%v tracks=%v count=%d estimated_seeks=%d\n",
				result.PageIDs, result.TrackIDs, result.Count, result.EstimatedSeeks)
			return nil
		},
	}
	cmd.Flags().Float64Var(&minX, "min-x", 0, "region min X")
	cmd.Flags().Float64Var(&minY, "min-y", 0, "region min Y")
	cmd.Flags().Float64Var(&maxX, "max-x", 0, "region max X")
	cmd.Flags().Float64Var(&maxY, "max-y", 0, "region max Y")
	return cmd
}

func printObjects(objs []urbis.SpatialObject) {
	for _, o := range objs {
		fmt.Printf("id=%d type=%s centroid=(%.6f, %.6f)\n", o.ID, o.Type, o.Centroid.X, o.Centroid.Y)
	}
}
