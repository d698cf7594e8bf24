// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package metacyc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `# MetaCyc relation export
is_in_pathway	RXN-1	PWY-A
is_in_pathway	RXN-1	PWY-B
is_in_pathway	RXN-2	PWY-A

taxonomic_range	PWY-A	TAX-2
taxonomic_range	PWY-A	TAX-4751
taxonomic_range	PWY-B	TAX-33090
compound_of	PWY-A	CPD-1
`

func TestParse(t *testing.T) {
	export, err := Parse(strings.NewReader(sampleExport))
	require.NoError(t, err)

	assert.Equal(t, []string{"PWY-A", "PWY-B"}, export.ReactionPathways["RXN-1"])
	assert.Equal(t, []string{"PWY-A"}, export.ReactionPathways["RXN-2"])
	assert.Equal(t, []string{"TAX-2", "TAX-4751"}, export.PathwayRanges["PWY-A"])
	assert.Equal(t, []string{"TAX-33090"}, export.PathwayRanges["PWY-B"])
}

func TestParse_IgnoresUnknownRelations(t *testing.T) {
	export, err := Parse(strings.NewReader("frob\tA\nis_in_pathway\tRXN-1\tPWY-A\n"))
	require.NoError(t, err)
	assert.Len(t, export.ReactionPathways, 1)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(strings.NewReader("is_in_pathway\tRXN-1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	_, err = Parse(strings.NewReader("taxonomic_range\tPWY-A\t\n"))
	require.Error(t, err)
}

func TestParse_DeduplicatesRepeats(t *testing.T) {
	doubled := sampleExport + sampleExport
	export, err := Parse(strings.NewReader(doubled))
	require.NoError(t, err)

	assert.Equal(t, []string{"PWY-A", "PWY-B"}, export.ReactionPathways["RXN-1"])
	assert.Equal(t, []string{"TAX-2", "TAX-4751"}, export.PathwayRanges["PWY-A"])
}

func TestAllTaxa(t *testing.T) {
	export, err := Parse(strings.NewReader(sampleExport))
	require.NoError(t, err)

	assert.Equal(t, []string{"TAX-2", "TAX-33090", "TAX-4751"}, export.AllTaxa())
}

func TestRangesOf(t *testing.T) {
	export, err := Parse(strings.NewReader(sampleExport))
	require.NoError(t, err)

	// Union over both pathways, file order, no duplicates.
	assert.Equal(t, []string{"TAX-2", "TAX-4751", "TAX-33090"}, export.RangesOf("RXN-1"))
	assert.Equal(t, []string{"TAX-2", "TAX-4751"}, export.RangesOf("RXN-2"))
	assert.Empty(t, export.RangesOf("RXN-UNKNOWN"))
}

func TestReactions(t *testing.T) {
	export, err := Parse(strings.NewReader(sampleExport))
	require.NoError(t, err)
	assert.Equal(t, []string{"RXN-1", "RXN-2"}, export.Reactions())
}
