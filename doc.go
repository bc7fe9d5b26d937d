// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package urbis implements a disk-aware, in-process spatial index for
// static or lightly-mutated 2-D GIS datasets.
//
// Its distinguishing property is physical-locality-aware page layout:
// objects whose centroids cluster in space are placed together on pages,
// and pages whose centroids cluster are grouped into tracks, so a range or
// neighborhood query touches a small, track-local set of pages.
//
// The package is organized around three coupled subsystems: a balanced
// k-d tree that partitions object centroids into blocks, a fixed-capacity
// page/track store with an LRU cache and a spatial allocator, and a
// point-region quadtree over page extents that answers adjacency queries.
// SpatialIndex orchestrates all three behind a single façade.
package urbis
