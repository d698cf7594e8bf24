// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store holds fetched taxonomy lineages for a run.
//
// Lookup precedence: in-memory map, then the optional BadgerDB tier,
// then the directory-service fetcher. Fetched records are written
// back to both cache tiers. The whole map can additionally be loaded
// from and persisted to a flat JSON file, which is the interchange
// format with earlier runs and other tooling.
//
// The store owns its cache map exclusively; construction happens in
// a single sequential build phase before any distance queries run.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/taxodist/internal/taxonomy"
	"github.com/AleutianAI/taxodist/pkg/logging"
	"github.com/AleutianAI/taxodist/pkg/validation"
)

// Fetcher is the directory-service surface the store depends on.
type Fetcher interface {
	FetchLineage(ctx context.Context, taxID string) (*taxonomy.Taxon, error)
}

// Config configures a Store.
type Config struct {
	// Fetcher resolves cache misses against the directory service.
	// Nil makes the store cache-only: a miss is a LookupError.
	Fetcher Fetcher

	// DB is the optional persistent cache tier.
	DB *badger.DB

	// Logger defaults to logging.Default().
	Logger *logging.Logger
}

// Store is a process-scoped lineage cache. Not safe for concurrent
// use; the pipeline is single-threaded by design.
type Store struct {
	fetcher Fetcher
	db      *badger.DB
	logger  *logging.Logger
	taxa    map[string]*taxonomy.Taxon
}

// New creates an empty Store.
func New(cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Store{
		fetcher: cfg.Fetcher,
		db:      cfg.DB,
		logger:  cfg.Logger,
		taxa:    make(map[string]*taxonomy.Taxon),
	}
}

// Lineage returns the record for a taxon identifier, consulting the
// memory map, the Badger tier, and finally the directory service.
//
// Identifiers may carry the export's "TAX-" prefix; all tiers key by
// the bare numeric form so spellings share one entry. A taxon known
// to no tier returns *taxonomy.LookupError.
func (s *Store) Lineage(ctx context.Context, taxonID string) (*taxonomy.Taxon, error) {
	key, err := validation.SanitizeTaxonID(taxonID)
	if err != nil {
		return nil, err
	}

	if taxon, ok := s.taxa[key]; ok {
		return taxon, nil
	}

	if taxon := s.fromBadger(key); taxon != nil {
		s.taxa[key] = taxon
		return taxon, nil
	}

	if s.fetcher == nil {
		return nil, &taxonomy.LookupError{Query: taxonID}
	}

	taxon, err := s.fetcher.FetchLineage(ctx, key)
	if err != nil {
		return nil, err
	}
	s.taxa[key] = taxon
	s.toBadger(key, taxon)
	return taxon, nil
}

// Known reports whether an identifier is already resolvable without
// a remote call.
func (s *Store) Known(taxonID string) bool {
	key, err := validation.SanitizeTaxonID(taxonID)
	if err != nil {
		return false
	}
	if _, ok := s.taxa[key]; ok {
		return true
	}
	return s.fromBadger(key) != nil
}

// Len returns the number of records held in memory.
func (s *Store) Len() int {
	return len(s.taxa)
}

// Taxa returns the in-memory map. Callers must treat it as read-only.
func (s *Store) Taxa() map[string]*taxonomy.Taxon {
	return s.taxa
}

// LoadCache merges a flat JSON cache file into the memory map,
// returning the number of entries read. Keys may carry the "TAX-"
// prefix; they are normalized on the way in. A missing file is not an
// error: the run simply starts cold.
func (s *Store) LoadCache(path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("cache file missing, starting cold", "path", path)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cache %s: %w", path, err)
	}

	var entries map[string]*taxonomy.Taxon
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("decode cache %s: %w", path, err)
	}

	loaded := 0
	for id, taxon := range entries {
		key, err := validation.SanitizeTaxonID(id)
		if err != nil {
			s.logger.Warn("skipping malformed cache key", "key", id)
			continue
		}
		s.taxa[key] = taxon
		loaded++
	}
	s.logger.Info("cache loaded", "path", path, "entries", loaded)
	return loaded, nil
}

// SaveCache persists the memory map as a flat JSON cache file.
func (s *Store) SaveCache(path string) error {
	data, err := json.MarshalIndent(s.taxa, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0640); err != nil {
		return fmt.Errorf("write cache %s: %w", path, err)
	}
	s.logger.Info("cache saved", "path", path, "entries", len(s.taxa))
	return nil
}

func (s *Store) fromBadger(key string) *taxonomy.Taxon {
	if s.db == nil {
		return nil
	}
	var taxon *taxonomy.Taxon
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &taxon)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			s.logger.Warn("cache tier read failed", "key", key, "error", err.Error())
		}
		return nil
	}
	return taxon
}

func (s *Store) toBadger(key string, taxon *taxonomy.Taxon) {
	if s.db == nil {
		return
	}
	data, err := json.Marshal(taxon)
	if err != nil {
		s.logger.Warn("cache tier encode failed", "key", key, "error", err.Error())
		return
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		s.logger.Warn("cache tier write failed", "key", key, "error", err.Error())
	}
}
