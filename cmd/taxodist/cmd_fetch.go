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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/taxodist/internal/metacyc"
	"github.com/AleutianAI/taxodist/internal/taxonomy"
)

// runFetch warms the lineage cache for every expected-range taxon of
// the export without computing distances. Paced at the directory
// service's rate limit, a large export takes a while; warming once and
// reusing the cache is what makes repeat distance runs fast.
func runFetch(cmd *cobra.Command, args []string) error {
	env, err := newRunEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	if env.cfg.CacheOut == "" && env.cfg.CacheDir == "" {
		return fmt.Errorf("fetch persists nothing without --cache-out or --cache-dir")
	}

	ctx := cmd.Context()

	export, err := metacyc.ParseFile(dbPath)
	if err != nil {
		return err
	}

	taxa := export.AllTaxa()
	missing := 0
	for _, id := range taxa {
		if _, err := env.store.Lineage(ctx, id); err != nil {
			var lookup *taxonomy.LookupError
			if errors.As(err, &lookup) {
				env.logger.Warn("taxon not found, skipping", "taxon", id)
				missing++
				continue
			}
			return fmt.Errorf("lineage of %s: %w", id, err)
		}
	}
	env.logger.Info("prefetch complete",
		"taxa", len(taxa),
		"cached", env.store.Len(),
		"missing", missing,
	)

	if env.cfg.CacheOut != "" {
		if err := env.store.SaveCache(env.cfg.CacheOut); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d of %d taxa (%d not found)\n",
		len(taxa)-missing, len(taxa), missing)
	return nil
}
