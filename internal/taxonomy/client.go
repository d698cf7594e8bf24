// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package taxonomy

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/AleutianAI/taxodist/pkg/logging"
	"github.com/AleutianAI/taxodist/pkg/validation"
)

const (
	// DefaultBaseURL is the E-utilities endpoint of the directory service.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultRequestInterval paces requests below the service's hard
	// limit of 3 requests per second. Violating the limit makes the
	// service reject further calls for the run, so pacing is a
	// correctness requirement, not tuning.
	DefaultRequestInterval = 350 * time.Millisecond

	// toolName identifies this client to the service, per its policy.
	toolName = "taxodist"
)

// HTTPClient allows injecting mock HTTP clients for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig configures a directory-service Client.
type ClientConfig struct {
	// Email is the caller identity sent with every request.
	// Required by the service's usage policy.
	Email string

	// BaseURL overrides the service endpoint (tests).
	BaseURL string

	// HTTPClient overrides the transport (tests). Defaults to
	// http.DefaultClient with a 30s timeout wrapper.
	HTTPClient HTTPClient

	// RequestInterval overrides the pacing interval (tests).
	RequestInterval time.Duration

	// Logger receives per-request debug logs. Defaults to the
	// package default logger.
	Logger *logging.Logger
}

// Client fetches taxonomy records over the E-utilities API.
//
// All requests pass through a single rate gate, so one Client must be
// shared by everything that talks to the service during a run.
type Client struct {
	http    HTTPClient
	limiter *rate.Limiter
	baseURL string
	email   string
	logger  *logging.Logger
}

// NewClient validates the caller identity and builds a paced client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := validation.ValidateCallerIdentity(cfg.Email); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.RequestInterval <= 0 {
		cfg.RequestInterval = DefaultRequestInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Client{
		http:    cfg.HTTPClient,
		limiter: rate.NewLimiter(rate.Every(cfg.RequestInterval), 1),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		email:   cfg.Email,
		logger:  cfg.Logger,
	}, nil
}

// efetch taxonomy XML payload.
type fetchResponse struct {
	XMLName xml.Name     `xml:"TaxaSet"`
	Taxa    []fetchTaxon `xml:"Taxon"`
}

type fetchTaxon struct {
	TaxID          string `xml:"TaxId"`
	ScientificName string `xml:"ScientificName"`
	ParentTaxID    string `xml:"ParentTaxId"`
	Lineage        string `xml:"Lineage"`
	LineageEx      struct {
		Taxa []struct {
			TaxID          string `xml:"TaxId"`
			ScientificName string `xml:"ScientificName"`
		} `xml:"Taxon"`
	} `xml:"LineageEx"`
}

// esearch XML payload.
type searchResponse struct {
	XMLName xml.Name `xml:"eSearchResult"`
	IDs     []string `xml:"IdList>Id"`
}

// FetchLineage retrieves the full record for a taxon identifier.
//
// The identifier may carry the database export's "TAX-" prefix.
// Returns *LookupError when the service has no record for it.
func (c *Client) FetchLineage(ctx context.Context, taxID string) (*Taxon, error) {
	id, err := validation.SanitizeTaxonID(taxID)
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"db": {"taxonomy"},
		"id": {id},
	}
	body, err := c.get(ctx, "efetch.fcgi", query)
	if err != nil {
		return nil, fmt.Errorf("fetch taxon %s: %w", id, err)
	}

	var payload fetchResponse
	if err := xml.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode taxon %s: %w", id, err)
	}
	if len(payload.Taxa) == 0 {
		return nil, &LookupError{Query: taxID}
	}

	entry := payload.Taxa[0]
	taxon := &Taxon{
		TaxID:          entry.TaxID,
		ScientificName: entry.ScientificName,
		ParentTaxID:    entry.ParentTaxID,
	}

	// Lineage is "a; b; c" of ancestors; the taxon itself is appended
	// so the chain always ends at the record.
	if entry.Lineage != "" {
		for _, name := range strings.Split(entry.Lineage, "; ") {
			taxon.Lineage = append(taxon.Lineage, name)
		}
	}
	taxon.Lineage = append(taxon.Lineage, entry.ScientificName)

	for _, ancestor := range entry.LineageEx.Taxa {
		taxon.LineageIDs = append(taxon.LineageIDs, ancestor.TaxID)
	}
	taxon.LineageIDs = append(taxon.LineageIDs, entry.TaxID)

	c.logger.Debug("fetched taxon",
		"taxid", taxon.TaxID,
		"name", taxon.ScientificName,
		"lineage_len", len(taxon.Lineage),
	)
	return taxon, nil
}

// ResolveName resolves a scientific name to a taxon identifier via
// esearch. Returns *LookupError when the name matches nothing.
func (c *Client) ResolveName(ctx context.Context, scientificName string) (string, error) {
	name := strings.TrimSpace(scientificName)
	if name == "" {
		return "", fmt.Errorf("scientific name cannot be empty")
	}

	query := url.Values{
		"db":   {"taxonomy"},
		"term": {name},
	}
	body, err := c.get(ctx, "esearch.fcgi", query)
	if err != nil {
		return "", fmt.Errorf("resolve name %q: %w", name, err)
	}

	var payload searchResponse
	if err := xml.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode search for %q: %w", name, err)
	}
	if len(payload.IDs) == 0 {
		return "", &LookupError{Query: scientificName}
	}
	return payload.IDs[0], nil
}

// get performs one paced GET against the service. Every call blocks
// on the rate gate first, which serializes requests and enforces the
// minimum inter-call delay regardless of call-site.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate gate: %w", err)
	}

	query.Set("tool", toolName)
	query.Set("email", c.email)

	u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory service returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
