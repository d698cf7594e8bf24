// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"testing"
)

func TestValidateTaxonID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		// Valid identifiers
		{"simple", "2", false},
		{"ecoli", "511145", false},
		{"prefixed", "TAX-511145", false},
		{"max length", "1234567890", false},

		// Invalid identifiers
		{"empty", "", true},
		{"name not id", "Bacteria", true},
		{"lowercase prefix", "tax-2", true},
		{"prefix only", "TAX-", true},
		{"too long", "12345678901", true},
		{"negative", "-5", true},
		{"path traversal", "../2", true},
		{"url injection", "2&db=other", true},
		{"whitespace", "51 1145", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaxonID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTaxonID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeTaxonID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare", "511145", "511145", false},
		{"prefixed", "TAX-511145", "511145", false},
		{"padded", "  TAX-2  ", "2", false},
		{"empty", "", "", true},
		{"garbage", "TAX-abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeTaxonID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeTaxonID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizeTaxonID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateCallerIdentity(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"plain", "someone@example.org", false},
		{"subdomain", "lab@bio.uni-nantes.fr", false},
		{"empty", "", true},
		{"no at", "example.org", true},
		{"no domain", "someone@", true},
		{"spaces", "some one@example.org", true},
		{"double at", "a@b@example.org", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCallerIdentity(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCallerIdentity(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}
