// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"errors"
	"os"

	"github.com/urbis-db/urbis"
)

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, urbis.WrapError("read_lines", urbis.KindIO, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, urbis.WrapError("read_lines", urbis.KindIO, err)
	}
	return lines, nil
}

func openIndex() (*urbis.SpatialIndex, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DataPath == "" {
		return nil, urbis.WrapError("open_index", urbis.KindInvalid, errors.New("no data path: pass --data or set data_path in --config"))
	}
	return urbis.LoadIndexFile(cfg, cfg.DataPath)
}
