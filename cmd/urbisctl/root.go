// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/urbis-db/urbis"
)

var (
	cfgFile string
	dataArg string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "urbisctl",
		Short: "Inspect and query Urbis spatial index files",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&dataArg, "data", "", "path to the index data file (overrides config data_path)")

	viper.SetEnvPrefix("URBIS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	root.AddCommand(newBuildCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newExportCmd())
	return root
}

// loadConfig resolves a Config honoring the documented precedence: flag >
// env > file > DefaultConfig.
func loadConfig() (urbis.Config, error) {
	cfg := urbis.DefaultConfig()
	if cfgFile != "" {
		fileCfg, err := urbis.LoadConfigFile(cfgFile)
		if err != nil {
			return urbis.Config{}, err
		}
		cfg = fileCfg
	}

	if v := viper.GetString("DATA_PATH"); v != "" {
		cfg.DataPath = v
	}
	if dataArg != "" {
		cfg.DataPath = dataArg
	}
	return cfg, nil
}
