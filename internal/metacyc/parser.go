// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package metacyc parses the flat relation export of a metabolic
// database.
//
// The export is a tab-separated file with one relation per line:
//
//	is_in_pathway<TAB>RXN-14213<TAB>PWY-6305
//	taxonomic_range<TAB>PWY-6305<TAB>TAX-33090
//
// Blank lines and lines starting with '#' are skipped. Relation types
// other than the two above are ignored for forward compatibility.
package metacyc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Relation types consumed from the export.
const (
	relationInPathway = "is_in_pathway"
	relationTaxRange  = "taxonomic_range"
)

// Export holds the read-only reaction and pathway associations of one
// database export.
type Export struct {
	// ReactionPathways maps a reaction identifier to the pathways it
	// belongs to, in file order, deduplicated.
	ReactionPathways map[string][]string

	// PathwayRanges maps a pathway identifier to its expected-range
	// taxa, in file order, deduplicated. Pathways without a curated
	// range simply have no entry.
	PathwayRanges map[string][]string
}

// Parse reads a relation export.
//
// Malformed lines (a known relation with the wrong field count) are
// an error carrying the line number; silently dropping them would
// skew every downstream distance.
func Parse(r io.Reader) (*Export, error) {
	export := &Export{
		ReactionPathways: make(map[string][]string),
		PathwayRanges:    make(map[string][]string),
	}
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		relation := fields[0]
		if relation != relationInPathway && relation != relationTaxRange {
			continue
		}
		if len(fields) != 3 || fields[1] == "" || fields[2] == "" {
			return nil, fmt.Errorf("line %d: malformed %s relation (want 3 tab-separated fields)", lineNo, relation)
		}

		dedupeKey := line
		if _, dup := seen[dedupeKey]; dup {
			continue
		}
		seen[dedupeKey] = struct{}{}

		switch relation {
		case relationInPathway:
			export.ReactionPathways[fields[1]] = append(export.ReactionPathways[fields[1]], fields[2])
		case relationTaxRange:
			export.PathwayRanges[fields[1]] = append(export.PathwayRanges[fields[1]], fields[2])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return export, nil
}

// ParseFile reads a relation export from disk.
func ParseFile(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export %s: %w", path, err)
	}
	defer f.Close()

	export, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return export, nil
}

// AllTaxa returns the sorted set of every expected-range taxon
// referenced by any pathway.
func (e *Export) AllTaxa() []string {
	set := make(map[string]struct{})
	for _, taxa := range e.PathwayRanges {
		for _, taxon := range taxa {
			set[taxon] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for taxon := range set {
		out = append(out, taxon)
	}
	sort.Strings(out)
	return out
}

// RangesOf returns the deduplicated union of expected-range taxa over
// every pathway the reaction belongs to, in pathway-then-file order.
func (e *Export) RangesOf(reaction string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, pathway := range e.ReactionPathways[reaction] {
		for _, taxon := range e.PathwayRanges[pathway] {
			if _, dup := seen[taxon]; dup {
				continue
			}
			seen[taxon] = struct{}{}
			out = append(out, taxon)
		}
	}
	return out
}

// Reactions returns all reaction identifiers, sorted.
func (e *Export) Reactions() []string {
	out := make([]string, 0, len(e.ReactionPathways))
	for reaction := range e.ReactionPathways {
		out = append(out, reaction)
	}
	sort.Strings(out)
	return out
}
