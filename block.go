// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

// Block is a partition of the object set produced by building the block
// k-d tree from object centroids. Blocks are a read-only view created at
// build time; any mutation of the index invalidates them (is_built
// becomes false).
type Block struct {
	BlockID     uint64
	Bounds      MBR
	Centroid    Point
	TrackID     uint32
	ObjectCount int
}
