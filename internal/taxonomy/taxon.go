// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package taxonomy models taxa and fetches their lineages from the
// NCBI taxonomy directory service.
package taxonomy

import "fmt"

// Taxon is one taxonomy record with its ordered lineage. Records are
// immutable once fetched and cached for the process lifetime.
type Taxon struct {
	// TaxID is the numeric taxonomy identifier, as a string to match
	// the wire format.
	TaxID string `json:"taxid"`

	// ScientificName is the taxon's name, always the last lineage
	// element.
	ScientificName string `json:"scientific_name"`

	// Lineage holds ancestor names root-first, ending with the taxon
	// itself.
	Lineage []string `json:"lineage_taxa_name"`

	// LineageIDs holds the matching identifiers, root-first.
	LineageIDs []string `json:"lineage_taxa_id"`

	// ParentTaxID is the identifier of the direct parent.
	ParentTaxID string `json:"parent_taxid"`
}

// LookupError reports a taxon unknown to both the directory service
// and the cache. It is recoverable per-taxon: reactions depending
// only on the missing taxon report an absent distance, the run
// continues.
type LookupError struct {
	// Query is the identifier or scientific name that failed.
	Query string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("taxon %q not found in the directory service", e.Query)
}
