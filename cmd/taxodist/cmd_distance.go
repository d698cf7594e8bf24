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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/taxodist/internal/metacyc"
	"github.com/AleutianAI/taxodist/internal/resolver"
	"github.com/AleutianAI/taxodist/internal/taxonomy"
)

// runDistance is the main pipeline: parse the export, resolve every
// referenced lineage through the cache tiers, compute one distance per
// reaction, and render the report.
func runDistance(cmd *cobra.Command, args []string) error {
	format, err := resolveFormat(outputFormat)
	if err != nil {
		return err
	}

	env, err := newRunEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()

	export, err := metacyc.ParseFile(dbPath)
	if err != nil {
		return err
	}
	env.logger.Info("export parsed",
		"path", dbPath,
		"reactions", len(export.ReactionPathways),
		"ranged_pathways", len(export.PathwayRanges),
		"taxa", len(export.AllTaxa()),
	)

	var orga *taxonomy.Taxon
	if organism != "" {
		orga, err = env.resolveOrganism(ctx, organism)
		if err != nil {
			return err
		}
		env.logger.Info("organism resolved",
			"taxid", orga.TaxID,
			"name", orga.ScientificName,
		)
	}

	r, err := resolver.New(resolver.Config{
		Export:        export,
		Store:         env.store,
		BranchPenalty: env.cfg.BranchPenalty,
		Logger:        env.logger,
	})
	if err != nil {
		return err
	}

	results, summary, err := r.Resolve(ctx, orga)
	if err != nil {
		return err
	}

	if err := renderReport(cmd.OutOrStdout(), format, results, summary, orga); err != nil {
		return err
	}

	if env.cfg.CacheOut != "" {
		if err := env.store.SaveCache(env.cfg.CacheOut); err != nil {
			return err
		}
	}
	return nil
}
