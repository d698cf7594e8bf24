// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package resolver computes per-reaction taxonomic distances from a
// database export.
//
// For every reaction it aggregates the expected-range taxa of all its
// pathways, merges the ranges' lineages (and the organism of
// interest, when given) into one tree, and reports the minimum
// distance per reaction. The whole run is a pure batch transform:
// build once, query once, no state kept across invocations.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/AleutianAI/taxodist/internal/distance"
	"github.com/AleutianAI/taxodist/internal/metacyc"
	"github.com/AleutianAI/taxodist/internal/store"
	"github.com/AleutianAI/taxodist/internal/taxonomy"
	"github.com/AleutianAI/taxodist/internal/tree"
	"github.com/AleutianAI/taxodist/pkg/logging"
)

// DistanceResult is one reaction's outcome.
type DistanceResult struct {
	// ReactionID is the export's reaction identifier.
	ReactionID string

	// Distance is the minimum distance found, nil when none of the
	// reaction's expected ranges could be resolved.
	Distance *int

	// Taxon is the expected-range taxon achieving the minimum,
	// "" when unresolved.
	Taxon string
}

// Summary counts outcomes for the end-of-run report.
type Summary struct {
	// Total is the number of reactions in the export.
	Total int

	// Resolved is the number of reactions with a distance.
	Resolved int

	// Unresolved is the number of reactions with no resolvable
	// expected range.
	Unresolved int

	// MissingTaxa lists export taxa unknown to the directory service
	// and every cache tier, sorted.
	MissingTaxa []string
}

// Config configures a Resolver.
type Config struct {
	// Export is the parsed database export.
	Export *metacyc.Export

	// Store supplies lineages for every referenced taxon.
	Store *store.Store

	// BranchPenalty weights descending edges; 1 is the plain metric.
	BranchPenalty int

	// Logger defaults to logging.Default().
	Logger *logging.Logger
}

// Resolver runs the batch distance computation.
type Resolver struct {
	export  *metacyc.Export
	store   *store.Store
	penalty int
	logger  *logging.Logger
}

// New validates the configuration and returns a Resolver.
func New(cfg Config) (*Resolver, error) {
	if cfg.Export == nil {
		return nil, fmt.Errorf("export is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.BranchPenalty == 0 {
		cfg.BranchPenalty = 1
	}
	if cfg.BranchPenalty < 1 {
		return nil, fmt.Errorf("branch penalty must be >= 1, got %d", cfg.BranchPenalty)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Resolver{
		export:  cfg.Export,
		store:   cfg.Store,
		penalty: cfg.BranchPenalty,
		logger:  cfg.Logger,
	}, nil
}

// Resolve computes one DistanceResult per reaction.
//
// With an organism, each reaction reports the minimum distance from
// the organism to any of its expected ranges. Without one (global
// mode), it reports the minimum pairwise distance among the
// reaction's own ranges — the spread of its expected coverage.
//
// Per-taxon lookup misses are recovered: affected reactions fall back
// to their remaining ranges or report an absent distance. Tree
// inconsistencies and distance queries for unmerged names abort the
// run, since every figure computed after them would be suspect.
func (r *Resolver) Resolve(ctx context.Context, organism *taxonomy.Taxon) ([]DistanceResult, Summary, error) {
	names, missing, err := r.fetchRanges(ctx)
	if err != nil {
		return nil, Summary{}, err
	}

	merged := tree.New()
	for _, id := range sortedKeys(names) {
		taxon := names[id]
		if err := merged.Merge(taxon.Lineage); err != nil {
			return nil, Summary{}, fmt.Errorf("merge lineage of %s: %w", id, err)
		}
	}
	if organism != nil {
		if err := merged.Merge(organism.Lineage); err != nil {
			return nil, Summary{}, fmt.Errorf("merge organism lineage: %w", err)
		}
	}

	engine, err := distance.NewWithPenalty(merged, r.penalty)
	if err != nil {
		return nil, Summary{}, err
	}

	summary := Summary{MissingTaxa: missing}
	var results []DistanceResult
	for _, reaction := range r.export.Reactions() {
		summary.Total++

		var targets []string
		for _, rangeID := range r.export.RangesOf(reaction) {
			if taxon, ok := names[rangeID]; ok {
				targets = append(targets, taxon.ScientificName)
			}
		}
		if len(targets) == 0 {
			results = append(results, DistanceResult{ReactionID: reaction})
			summary.Unresolved++
			continue
		}

		var nearest distance.Nearest
		if organism != nil {
			nearest, err = engine.MinToTargets(organism.ScientificName, targets)
		} else {
			nearest, err = engine.MinPairwise(targets)
		}
		if err != nil {
			return nil, Summary{}, fmt.Errorf("distance for %s: %w", reaction, err)
		}

		d := nearest.Distance
		results = append(results, DistanceResult{
			ReactionID: reaction,
			Distance:   &d,
			Taxon:      nearest.Taxon,
		})
		summary.Resolved++
	}

	r.logger.Info("resolution complete",
		"reactions", summary.Total,
		"resolved", summary.Resolved,
		"unresolved", summary.Unresolved,
		"missing_taxa", len(summary.MissingTaxa),
	)
	return results, summary, nil
}

// fetchRanges resolves every expected-range taxon of the export
// through the store. Lookup misses are collected, any other failure
// is terminal.
func (r *Resolver) fetchRanges(ctx context.Context) (map[string]*taxonomy.Taxon, []string, error) {
	names := make(map[string]*taxonomy.Taxon)
	var missing []string

	for _, id := range r.export.AllTaxa() {
		taxon, err := r.store.Lineage(ctx, id)
		if err != nil {
			var lookup *taxonomy.LookupError
			if errors.As(err, &lookup) {
				r.logger.Warn("taxon not found, skipping", "taxon", id)
				missing = append(missing, id)
				continue
			}
			return nil, nil, fmt.Errorf("lineage of %s: %w", id, err)
		}
		names[id] = taxon
	}
	sort.Strings(missing)
	return names, missing, nil
}

func sortedKeys(m map[string]*taxonomy.Taxon) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
