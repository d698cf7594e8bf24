// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolver

import (
	"context"
	"strings"
	"testing"

	"github.com/AleutianAI/taxodist/internal/metacyc"
	"github.com/AleutianAI/taxodist/internal/store"
	"github.com/AleutianAI/taxodist/internal/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves a small canned taxonomy:
//
//	Life ── Eukaryota ── Animalia        (taxid 1000)
//	              └───── Fungi           (taxid 2000)
//	Life ── Bacteria                     (taxid 3000)
type fakeFetcher struct{}

var cannedTaxa = map[string]*taxonomy.Taxon{
	"1000": {
		TaxID:          "1000",
		ScientificName: "Animalia",
		Lineage:        []string{"Life", "Eukaryota", "Animalia"},
		LineageIDs:     []string{"1", "100", "1000"},
		ParentTaxID:    "100",
	},
	"2000": {
		TaxID:          "2000",
		ScientificName: "Fungi",
		Lineage:        []string{"Life", "Eukaryota", "Fungi"},
		LineageIDs:     []string{"1", "100", "2000"},
		ParentTaxID:    "100",
	},
	"3000": {
		TaxID:          "3000",
		ScientificName: "Bacteria",
		Lineage:        []string{"Life", "Bacteria"},
		LineageIDs:     []string{"1", "3000"},
		ParentTaxID:    "1",
	},
}

func (fakeFetcher) FetchLineage(ctx context.Context, taxID string) (*taxonomy.Taxon, error) {
	taxon, ok := cannedTaxa[taxID]
	if !ok {
		return nil, &taxonomy.LookupError{Query: taxID}
	}
	return taxon, nil
}

func parseExport(t *testing.T, text string) *metacyc.Export {
	t.Helper()
	export, err := metacyc.Parse(strings.NewReader(text))
	require.NoError(t, err)
	return export
}

func newResolver(t *testing.T, export *metacyc.Export) *Resolver {
	t.Helper()
	r, err := New(Config{
		Export: export,
		Store:  store.New(store.Config{Fetcher: fakeFetcher{}}),
	})
	require.NoError(t, err)
	return r
}

func TestResolve_OrganismDirectMembership(t *testing.T) {
	// RXN-1 belongs to P1 (range Animalia) and P2 (range Fungi).
	export := parseExport(t, `
is_in_pathway	RXN-1	P1
is_in_pathway	RXN-1	P2
taxonomic_range	P1	TAX-1000
taxonomic_range	P2	TAX-2000
`)
	r := newResolver(t, export)

	results, summary, err := r.Resolve(context.Background(), cannedTaxa["2000"])
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NotNil(t, results[0].Distance)
	assert.Zero(t, *results[0].Distance, "organism inside the expected range")
	assert.Equal(t, "Fungi", results[0].Taxon)
	assert.Equal(t, Summary{Total: 1, Resolved: 1}, summary)
}

func TestResolve_OrganismPicksClosestRange(t *testing.T) {
	export := parseExport(t, `
is_in_pathway	RXN-1	P1
taxonomic_range	P1	TAX-1000
taxonomic_range	P1	TAX-3000
`)
	r := newResolver(t, export)

	// Fungi is 2 edges from Animalia, 3 from Bacteria.
	results, _, err := r.Resolve(context.Background(), cannedTaxa["2000"])
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Distance)
	assert.Equal(t, 2, *results[0].Distance)
	assert.Equal(t, "Animalia", results[0].Taxon)
}

func TestResolve_GlobalMode(t *testing.T) {
	export := parseExport(t, `
is_in_pathway	RXN-1	P1
is_in_pathway	RXN-2	P2
taxonomic_range	P1	TAX-1000
taxonomic_range	P1	TAX-2000
taxonomic_range	P2	TAX-3000
`)
	r := newResolver(t, export)

	results, summary, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// RXN-1's ranges are siblings: spread of 2.
	require.NotNil(t, results[0].Distance)
	assert.Equal(t, "RXN-1", results[0].ReactionID)
	assert.Equal(t, 2, *results[0].Distance)

	// RXN-2 has a single range: spread of 0.
	require.NotNil(t, results[1].Distance)
	assert.Equal(t, "RXN-2", results[1].ReactionID)
	assert.Zero(t, *results[1].Distance)
	assert.Equal(t, "Bacteria", results[1].Taxon)

	assert.Equal(t, 2, summary.Resolved)
}

func TestResolve_MissingTaxonRecovered(t *testing.T) {
	// RXN-1 depends only on an unknown taxon; RXN-2 mixes a known and
	// an unknown one.
	export := parseExport(t, `
is_in_pathway	RXN-1	P1
is_in_pathway	RXN-2	P2
taxonomic_range	P1	TAX-9999
taxonomic_range	P2	TAX-9999
taxonomic_range	P2	TAX-2000
`)
	r := newResolver(t, export)

	results, summary, err := r.Resolve(context.Background(), cannedTaxa["2000"])
	require.NoError(t, err, "a lookup miss must not abort the run")
	require.Len(t, results, 2)

	assert.Nil(t, results[0].Distance, "reaction depending only on the missing taxon")
	assert.Empty(t, results[0].Taxon)

	require.NotNil(t, results[1].Distance, "reaction falls back to its remaining range")
	assert.Zero(t, *results[1].Distance)

	assert.Equal(t, 1, summary.Unresolved)
	assert.Equal(t, 1, summary.Resolved)
	assert.Equal(t, []string{"TAX-9999"}, summary.MissingTaxa)
}

func TestResolve_UnrangedPathway(t *testing.T) {
	export := parseExport(t, `
is_in_pathway	RXN-1	P1
`)
	r := newResolver(t, export)

	results, summary, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Distance)
	assert.Equal(t, 1, summary.Unresolved)
}

func TestResolve_BranchPenalty(t *testing.T) {
	export := parseExport(t, `
is_in_pathway	RXN-1	P1
taxonomic_range	P1	TAX-1000
`)
	r, err := New(Config{
		Export:        export,
		Store:         store.New(store.Config{Fetcher: fakeFetcher{}}),
		BranchPenalty: 20,
	})
	require.NoError(t, err)

	// Fungi -> Animalia: 1 up, 1 down at 20.
	results, _, err := r.Resolve(context.Background(), cannedTaxa["2000"])
	require.NoError(t, err)
	require.NotNil(t, results[0].Distance)
	assert.Equal(t, 21, *results[0].Distance)
}

func TestNew_Validation(t *testing.T) {
	st := store.New(store.Config{})
	export := parseExport(t, "")

	_, err := New(Config{Store: st})
	assert.Error(t, err)

	_, err = New(Config{Export: export})
	assert.Error(t, err)

	_, err = New(Config{Export: export, Store: st, BranchPenalty: -1})
	assert.Error(t, err)
}
