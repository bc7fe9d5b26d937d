// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

import (
	"encoding/binary"
	"math"
)

// putFloat64 writes f as a little-endian IEEE-754 bit pattern into buf.
func putFloat64(buf []byte, f float64) {
	binary.LittleEndian.PutUint64(buf, math.Float64bits(f))
}

// getFloat64 reads a little-endian IEEE-754 bit pattern from buf.
func getFloat64(buf []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(buf))
}
