// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urbis

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every knob a SpatialIndex accepts. Fields a YAML document
// omits are filled in from DefaultConfig by LoadConfigFile/LoadConfigBytes
// (a field set explicitly to its zero value keeps that value); callers
// constructing a Config by hand should start from DefaultConfig() and
// override only what they need.
type Config struct {
	BlockSize         int           `yaml:"block_size"`
	PageCapacity      int           `yaml:"page_capacity"`
	CacheSize         int           `yaml:"cache_size"`
	PagesPerTrack     int           `yaml:"pages_per_track"`
	AllocStrategy     AllocStrategy `yaml:"-"`
	AllocStrategyName string        `yaml:"alloc_strategy"`
	EnableQuadtree    bool          `yaml:"enable_quadtree"`
	Persist           bool          `yaml:"persist"`
	DataPath          string        `yaml:"data_path"`
}

// DefaultConfig returns the documented defaults: block_size=1024,
// page_capacity=64, cache_size=128, pages_per_track=16,
// alloc_strategy=best-fit, enable_quadtree=true, persist=false.
func DefaultConfig() Config {
	return Config{
		BlockSize:         1024,
		PageCapacity:      DefaultPageCapacity,
		CacheSize:         DefaultCacheSize,
		PagesPerTrack:     DefaultPagesPerTrack,
		AllocStrategy:     StrategyBestFit,
		AllocStrategyName: "best-fit",
		EnableQuadtree:    true,
		Persist:           false,
	}
}

type yamlConfig struct {
	BlockSize      *int    `yaml:"block_size"`
	PageCapacity   *int    `yaml:"page_capacity"`
	CacheSize      *int    `yaml:"cache_size"`
	PagesPerTrack  *int    `yaml:"pages_per_track"`
	AllocStrategy  *string `yaml:"alloc_strategy"`
	EnableQuadtree *bool   `yaml:"enable_quadtree"`
	Persist        *bool   `yaml:"persist"`
	DataPath       *string `yaml:"data_path"`
}

// LoadConfigBytes parses a YAML document into a Config, applying
// DefaultConfig() for any field the document omits.
func LoadConfigBytes(data []byte) (Config, error) {
	cfg := DefaultConfig()
	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, newErr("load_config", KindParse, err)
	}

	if raw.BlockSize != nil {
		cfg.BlockSize = *raw.BlockSize
	}
	if raw.PageCapacity != nil {
		cfg.PageCapacity = *raw.PageCapacity
	}
	if raw.CacheSize != nil {
		cfg.CacheSize = *raw.CacheSize
	}
	if raw.PagesPerTrack != nil {
		cfg.PagesPerTrack = *raw.PagesPerTrack
	}
	if raw.AllocStrategy != nil {
		strategy, err := parseAllocStrategy(*raw.AllocStrategy)
		if err != nil {
			return Config{}, err
		}
		cfg.AllocStrategy = strategy
		cfg.AllocStrategyName = *raw.AllocStrategy
	}
	if raw.EnableQuadtree != nil {
		cfg.EnableQuadtree = *raw.EnableQuadtree
	}
	if raw.Persist != nil {
		cfg.Persist = *raw.Persist
	}
	if raw.DataPath != nil {
		cfg.DataPath = *raw.DataPath
	}

	if cfg.PageCapacity > MaxObjectsPerPage {
		cfg.PageCapacity = MaxObjectsPerPage
	}
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML config file at path.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, newErr("load_config_file", KindIO, err)
	}
	return LoadConfigBytes(data)
}

func parseAllocStrategy(name string) (AllocStrategy, error) {
	switch name {
	case "nearest-track":
		return StrategyNearestTrack, nil
	case "best-fit":
		return StrategyBestFit, nil
	case "sequential":
		return StrategySequential, nil
	case "new-track":
		return StrategyNewTrack, nil
	default:
		return 0, newErr("parse_alloc_strategy", KindInvalid, ErrInvalid)
	}
}
