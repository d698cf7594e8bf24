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
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/AleutianAI/taxodist/internal/store"
	"github.com/AleutianAI/taxodist/internal/taxonomy"
	"github.com/AleutianAI/taxodist/pkg/logging"
	"github.com/AleutianAI/taxodist/pkg/validation"
)

// runEnv bundles the shared plumbing of a command invocation: merged
// configuration, run-scoped logger, directory-service client, and the
// lineage store with its cache tiers.
type runEnv struct {
	cfg    Config
	logger *logging.Logger
	client *taxonomy.Client
	store  *store.Store
	db     *badger.DB
}

// newRunEnv merges config file and flags, then wires the logger,
// client, cache tiers, and store.
//
// Without a caller identity the store runs cache-only: every taxon
// must come from --cache-in or the Badger tier, and a miss surfaces
// as an unresolved reaction instead of a remote call.
func newRunEnv() (*runEnv, error) {
	fileCfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg := fileCfg.merged(flagConfig())

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.LogLevel),
		LogDir:  cfg.LogDir,
		Service: "taxodist",
	}).With("run_id", uuid.NewString())

	env := &runEnv{cfg: cfg, logger: logger}

	var fetcher store.Fetcher
	if cfg.Email != "" {
		client, err := taxonomy.NewClient(taxonomy.ClientConfig{
			Email:  cfg.Email,
			Logger: logger,
		})
		if err != nil {
			env.Close()
			return nil, err
		}
		env.client = client
		fetcher = client
	} else {
		logger.Warn("no caller identity configured, running cache-only")
	}

	if cfg.CacheDir != "" {
		db, err := store.OpenBadger(store.DefaultBadgerConfig(cfg.CacheDir))
		if err != nil {
			env.Close()
			return nil, err
		}
		env.db = db
	}

	env.store = store.New(store.Config{
		Fetcher: fetcher,
		DB:      env.db,
		Logger:  logger,
	})

	if cfg.CacheIn != "" {
		if _, err := env.store.LoadCache(cfg.CacheIn); err != nil {
			env.Close()
			return nil, err
		}
	}
	return env, nil
}

// resolveOrganism turns the --orga argument into a full taxonomy
// record. Numeric identifiers (with or without the TAX- prefix) go
// straight to the store; anything else is treated as a scientific
// name and resolved through the directory service first.
func (e *runEnv) resolveOrganism(ctx context.Context, query string) (*taxonomy.Taxon, error) {
	id, err := validation.SanitizeTaxonID(query)
	if err != nil {
		if e.client == nil {
			return nil, fmt.Errorf("resolving organism %q by name requires a caller identity (--email)", query)
		}
		id, err = e.client.ResolveName(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("organism %q: %w", query, err)
		}
	}
	taxon, err := e.store.Lineage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("organism %q: %w", query, err)
	}
	return taxon, nil
}

// Close releases the cache database and the log file.
func (e *runEnv) Close() {
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.logger.Warn("closing cache database", "error", err.Error())
		}
	}
	_ = e.logger.Close()
}
