// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package distance computes topological distances over a merged
// lineage tree.
//
// The distance between two nodes is
//
//	depth(a) + depth(b) - 2*depth(LCA(a, b))
//
// with the lowest common ancestor found by climbing the deeper node
// until depths match, then climbing both together until they meet.
// Distances are non-negative integers; distance to self is 0.
package distance

import (
	"fmt"

	"github.com/AleutianAI/taxodist/internal/tree"
)

// NotFoundError reports a query or target name absent from the tree.
// It signals a wiring defect (the resolver passed a name that was
// never merged) and must abort the run.
type NotFoundError struct {
	// Name is the missing node name.
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("node %q does not exist in the lineage tree", e.Name)
}

// Nearest is the result of a closest-of-several-targets query.
type Nearest struct {
	// Distance is the minimum distance found.
	Distance int

	// Taxon is the target name achieving that minimum. Ties keep the
	// first target in input order.
	Taxon string
}

// Engine answers distance queries against a built tree. It performs
// no mutation and is safe for concurrent reads once constructed.
type Engine struct {
	tree *tree.Tree

	// downPenalty weights each edge on the descending segment
	// (LCA towards the target). 1 gives the plain edge count.
	downPenalty int
}

// New returns an Engine computing plain edge-count distances.
func New(t *tree.Tree) *Engine {
	return &Engine{tree: t, downPenalty: 1}
}

// NewWithPenalty returns an Engine that multiplies descending edges
// by penalty. Historical curation workflows weighted branch changes
// more heavily than climbs; penalty 1 restores the symmetric metric.
func NewWithPenalty(t *tree.Tree, penalty int) (*Engine, error) {
	if penalty < 1 {
		return nil, fmt.Errorf("branch penalty must be >= 1, got %d", penalty)
	}
	return &Engine{tree: t, downPenalty: penalty}, nil
}

// Between returns the distance from query to target.
//
// With the default penalty the metric is symmetric; with a penalty
// above 1 the descending segment (from the common ancestor down to
// the target) costs penalty per edge.
func (e *Engine) Between(query, target string) (int, error) {
	a, ok := e.tree.Node(query)
	if !ok {
		return 0, &NotFoundError{Name: query}
	}
	b, ok := e.tree.Node(target)
	if !ok {
		return 0, &NotFoundError{Name: target}
	}

	lcaDepth := e.lcaDepth(a, b)
	up := a.Depth - lcaDepth
	down := b.Depth - lcaDepth
	return up + down*e.downPenalty, nil
}

// lcaDepth returns the depth of the lowest common ancestor of a and b.
func (e *Engine) lcaDepth(a, b *tree.Node) int {
	for a.Depth > b.Depth {
		a = e.parent(a)
	}
	for b.Depth > a.Depth {
		b = e.parent(b)
	}
	for a.Name != b.Name {
		a = e.parent(a)
		b = e.parent(b)
	}
	return a.Depth
}

func (e *Engine) parent(n *tree.Node) *tree.Node {
	p, _ := e.tree.Node(n.Parent)
	return p
}

// MinToTargets returns the minimum distance between query and any of
// the targets, evaluated in input order with a stable tie-break (the
// first target achieving the minimum wins).
//
// An empty target set or any name absent from the tree returns a
// *NotFoundError wrapped with context.
func (e *Engine) MinToTargets(query string, targets []string) (Nearest, error) {
	if len(targets) == 0 {
		return Nearest{}, fmt.Errorf("no targets given for query %q", query)
	}

	best := Nearest{Distance: -1}
	for _, target := range targets {
		d, err := e.Between(query, target)
		if err != nil {
			return Nearest{}, err
		}
		if best.Distance < 0 || d < best.Distance {
			best = Nearest{Distance: d, Taxon: target}
		}
	}
	return best, nil
}

// MinPairwise returns the minimum distance over all unordered pairs
// of the given names, with the contributing pair's second element as
// the reported taxon. A single name yields distance 0 to itself.
//
// This backs the global query mode, where a reaction's figure is the
// spread of its own expected ranges rather than the distance to a
// fixed organism.
func (e *Engine) MinPairwise(names []string) (Nearest, error) {
	switch len(names) {
	case 0:
		return Nearest{}, fmt.Errorf("no names given")
	case 1:
		if !e.tree.Contains(names[0]) {
			return Nearest{}, &NotFoundError{Name: names[0]}
		}
		return Nearest{Distance: 0, Taxon: names[0]}, nil
	}

	best := Nearest{Distance: -1}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			d, err := e.Between(names[i], names[j])
			if err != nil {
				return Nearest{}, err
			}
			if best.Distance < 0 || d < best.Distance {
				best = Nearest{Distance: d, Taxon: names[j]}
			}
		}
	}
	return best, nil
}
