// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const appVersion = "0.1.0"

// --- Global Command Variables ---
var (
	configPath    string
	flagEmail     string
	flagCacheIn   string
	flagCacheOut  string
	flagCacheDir  string
	flagLogLevel  string
	flagLogDir    string
	dbPath        string
	organism      string
	branchPenalty int
	outputFormat  string

	rootCmd = &cobra.Command{
		Use:     "taxodist",
		Short:   "Taxonomic distances between reactions and their pathways' expected ranges",
		Version: appVersion,
		Long: `taxodist reads a metabolic database export, fetches taxonomy
lineages from the NCBI directory service (cached across runs), and
reports per-reaction taxonomic distances against the pathways'
expected ranges or a single organism of interest.`,
	}

	distanceCmd = &cobra.Command{
		Use:   "distance",
		Short: "Compute per-reaction distances from a database export",
		Long: `Computes one distance per reaction. With --orga, the distance from
that organism to the closest expected-range taxon of each reaction;
without it, the spread among each reaction's own expected ranges.`,
		RunE: runDistance, // Defined in cmd_distance.go
	}

	fetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Prefetch lineages for every taxon referenced by an export",
		Long: `Resolves every expected-range taxon of the export against the
directory service and persists the lineage cache, without computing
any distances. Useful to warm the cache before repeated runs.`,
		RunE: runFetch, // Defined in cmd_fetch.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the taxodist version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taxodist %s\n", appVersion)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "taxodist.yaml", "Optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagEmail, "email", "", "Caller identity required by the directory service")
	rootCmd.PersistentFlags().StringVar(&flagCacheIn, "cache-in", "", "Flat JSON lineage cache to preload")
	rootCmd.PersistentFlags().StringVar(&flagCacheOut, "cache-out", "", "Write the lineage cache here after the run")
	rootCmd.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "Directory for the persistent BadgerDB cache tier")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogDir, "log-dir", "", "Directory for JSON log files")

	distanceCmd.Flags().StringVar(&dbPath, "db", "", "Database relation export (required)")
	distanceCmd.Flags().StringVar(&organism, "orga", "", "Organism of interest: taxon identifier or scientific name")
	distanceCmd.Flags().IntVar(&branchPenalty, "branch-penalty", 0, "Weight of descending tree edges (default 1)")
	distanceCmd.Flags().StringVar(&outputFormat, "format", "", "Output format: table or tsv (default: table on a terminal)")
	_ = distanceCmd.MarkFlagRequired("db")

	fetchCmd.Flags().StringVar(&dbPath, "db", "", "Database relation export (required)")
	_ = fetchCmd.MarkFlagRequired("db")

	rootCmd.AddCommand(distanceCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(versionCmd)
}

// flagConfig gathers flag values into a Config for merging with the
// config file.
func flagConfig() Config {
	return Config{
		Email:         flagEmail,
		CacheIn:       flagCacheIn,
		CacheOut:      flagCacheOut,
		CacheDir:      flagCacheDir,
		BranchPenalty: branchPenalty,
		LogLevel:      flagLogLevel,
		LogDir:        flagLogDir,
	}
}
