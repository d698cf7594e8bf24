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
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/AleutianAI/taxodist/internal/resolver"
	"github.com/AleutianAI/taxodist/internal/taxonomy"
	"github.com/AleutianAI/taxodist/pkg/ux"
)

// resolveFormat maps the --format flag to a concrete format. When the
// flag is unset, a terminal gets the styled table and anything piped
// gets machine-readable TSV.
func resolveFormat(format string) (string, error) {
	switch format {
	case "table", "tsv":
		return format, nil
	case "":
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return "table", nil
		}
		return "tsv", nil
	default:
		return "", fmt.Errorf("unknown format %q (want table or tsv)", format)
	}
}

func renderReport(w io.Writer, format string, results []resolver.DistanceResult, summary resolver.Summary, organism *taxonomy.Taxon) error {
	if format == "tsv" {
		return renderTSV(w, results)
	}
	return renderTable(w, results, summary, organism)
}

// distanceString renders a result's distance, "NA" when the reaction
// had no resolvable expected range.
func distanceString(r resolver.DistanceResult) string {
	if r.Distance == nil {
		return "NA"
	}
	return strconv.Itoa(*r.Distance)
}

// renderTSV writes one header line and one reaction per line, suitable
// for awk/join pipelines.
func renderTSV(w io.Writer, results []resolver.DistanceResult) error {
	if _, err := fmt.Fprintln(w, "reaction\tdistance\ttaxon"); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", r.ReactionID, distanceString(r), r.Taxon); err != nil {
			return err
		}
	}
	return nil
}

// renderTable writes the styled terminal report.
func renderTable(w io.Writer, results []resolver.DistanceResult, summary resolver.Summary, organism *taxonomy.Taxon) error {
	title := "Taxonomic range spread per reaction"
	if organism != nil {
		title = fmt.Sprintf("Taxonomic distances to %s", organism.ScientificName)
	}
	fmt.Fprintln(w, ux.Styles.Title.Render(title))
	fmt.Fprintln(w)

	reactionWidth := len("REACTION")
	for _, r := range results {
		if len(r.ReactionID) > reactionWidth {
			reactionWidth = len(r.ReactionID)
		}
	}

	header := fmt.Sprintf("%-*s  %8s  %s", reactionWidth, "REACTION", "DISTANCE", "NEAREST TAXON")
	fmt.Fprintln(w, ux.Styles.Header.Render(header))

	for _, r := range results {
		line := fmt.Sprintf("%-*s  %8s  %s", reactionWidth, r.ReactionID, distanceString(r), r.Taxon)
		if r.Distance == nil {
			line = ux.Styles.Muted.Render(line)
		}
		fmt.Fprintln(w, line)
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Reactions:  %d", summary.Total))
	lines = append(lines, fmt.Sprintf("Resolved:   %d", summary.Resolved))
	if summary.Unresolved > 0 {
		lines = append(lines, ux.Styles.Warning.Render(fmt.Sprintf("Unresolved: %d", summary.Unresolved)))
	}
	if len(summary.MissingTaxa) > 0 {
		lines = append(lines, ux.Styles.Warning.Render(
			fmt.Sprintf("Missing taxa: %s", strings.Join(summary.MissingTaxa, ", "))))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, ux.Styles.SummaryBox.Render(strings.Join(lines, "\n")))
	return nil
}
