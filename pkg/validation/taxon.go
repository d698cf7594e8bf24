// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for user-supplied
// identifiers before they reach URLs or store keys.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// taxonIDPattern matches numeric NCBI taxonomy identifiers,
// optionally carrying the database export's "TAX-" prefix.
var taxonIDPattern = regexp.MustCompile(`^(TAX-)?[0-9]{1,10}$`)

// emailPattern is a permissive address check. The directory service
// only requires a contact string that looks like a mailbox; full RFC
// 5322 parsing is the validator library's job at the config layer.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateTaxonID validates a taxonomy identifier.
//
// Valid identifiers:
//   - 1-10 decimal digits
//   - optional "TAX-" prefix as written in database exports
//
// Returns an error if the identifier is empty or malformed, which
// keeps arbitrary strings out of directory-service request URLs.
func ValidateTaxonID(id string) error {
	if id == "" {
		return fmt.Errorf("taxon identifier cannot be empty")
	}
	if !taxonIDPattern.MatchString(id) {
		return fmt.Errorf("invalid taxon identifier: %q (must be 1-10 digits, optionally prefixed TAX-)", id)
	}
	return nil
}

// SanitizeTaxonID normalizes a taxonomy identifier to its bare
// numeric form, trimming whitespace and the "TAX-" prefix.
//
//	id, err := validation.SanitizeTaxonID(" TAX-511145 ")
//	// id == "511145"
func SanitizeTaxonID(id string) (string, error) {
	normalized := strings.TrimSpace(id)
	if err := ValidateTaxonID(normalized); err != nil {
		return "", err
	}
	return strings.TrimPrefix(normalized, "TAX-"), nil
}

// ValidateCallerIdentity validates the contact address sent to the
// directory service with every request, per its usage policy.
func ValidateCallerIdentity(email string) error {
	if email == "" {
		return fmt.Errorf("caller identity cannot be empty (the directory service requires a contact email)")
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid caller identity: %q (expected an email address)", email)
	}
	return nil
}
