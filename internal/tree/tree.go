// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package tree merges taxonomic lineages into a single shared tree.
//
// The tree is an arena of nodes indexed by name. Parent and child
// relationships are stored as name references, never as pointers, so
// there are no ownership cycles and teardown is a single map drop.
//
// Every name appearing in any merged lineage maps to exactly one
// node. Two lineages sharing a root prefix of length k share the same
// chain of k nodes after merging.
package tree

import (
	"fmt"
	"sort"
)

// Node is a single taxon in the merged tree. Nodes are created during
// Merge and never mutated afterwards except to gain children.
type Node struct {
	// Name is the unique key of this node.
	Name string

	// Parent is the name of the parent node, "" for the root.
	Parent string

	// Depth is the number of edges from the root (root is 0).
	Depth int

	children map[string]struct{}
}

// HasChild reports whether a direct child with the given name exists.
func (n *Node) HasChild(name string) bool {
	_, ok := n.children[name]
	return ok
}

// Children returns the node's direct child names, sorted for
// deterministic iteration.
func (n *Node) Children() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConsistencyError reports a lineage that conflicts with the tree
// built so far: a name reappearing under a different parent, or a
// lineage rooted somewhere other than the established root.
//
// Downstream distances computed over an inconsistently merged tree
// would be silently wrong, so callers must treat this as fatal.
type ConsistencyError struct {
	// Name is the conflicting taxon name.
	Name string

	// ExistingParent is the parent recorded by an earlier merge.
	ExistingParent string

	// NewParent is the parent implied by the conflicting lineage.
	NewParent string
}

func (e *ConsistencyError) Error() string {
	if e.ExistingParent == "" && e.NewParent == "" {
		return fmt.Sprintf("inconsistent lineage: %q conflicts with established root", e.Name)
	}
	return fmt.Sprintf("inconsistent lineage: %q already placed under %q, cannot re-parent under %q",
		e.Name, e.ExistingParent, e.NewParent)
}

// Tree is the merged lineage tree. It is not safe for concurrent
// mutation; the build phase is sequential by design.
type Tree struct {
	nodes map[string]*Node
	root  string
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{nodes: make(map[string]*Node)}
}

// Merge folds one lineage (ordered root first) into the tree.
//
// The walk starts at the root; at each step an existing child with
// the next name is reused, otherwise a new node is created. An empty
// lineage is a no-op. A lineage that disagrees with the established
// root, or that places an already-known name under a different
// parent, returns a *ConsistencyError and leaves the tree unchanged
// up to the conflicting element.
//
// Merge is idempotent: merging the same lineage twice leaves the tree
// structurally identical to merging it once.
func (t *Tree) Merge(lineage []string) error {
	if len(lineage) == 0 {
		return nil
	}

	rootName := lineage[0]
	if t.root == "" {
		t.nodes[rootName] = &Node{Name: rootName, children: make(map[string]struct{})}
		t.root = rootName
	} else if t.root != rootName {
		if existing, ok := t.nodes[rootName]; ok {
			return &ConsistencyError{Name: rootName, ExistingParent: existing.Parent}
		}
		return &ConsistencyError{Name: rootName}
	}

	current := t.nodes[t.root]
	for _, name := range lineage[1:] {
		if current.HasChild(name) {
			current = t.nodes[name]
			continue
		}
		if existing, ok := t.nodes[name]; ok {
			// Known name at another position in the tree.
			return &ConsistencyError{
				Name:           name,
				ExistingParent: existing.Parent,
				NewParent:      current.Name,
			}
		}
		node := &Node{
			Name:     name,
			Parent:   current.Name,
			Depth:    current.Depth + 1,
			children: make(map[string]struct{}),
		}
		t.nodes[name] = node
		current.children[name] = struct{}{}
		current = node
	}
	return nil
}

// Node returns the node with the given name, if present.
func (t *Tree) Node(name string) (*Node, bool) {
	n, ok := t.nodes[name]
	return n, ok
}

// Contains reports whether a name has been merged into the tree.
func (t *Tree) Contains(name string) bool {
	_, ok := t.nodes[name]
	return ok
}

// Root returns the root name, or "" for an empty tree.
func (t *Tree) Root() string {
	return t.root
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Ancestors returns the chain of names from the root down to (and
// including) the given node. The second return is false when the name
// is not in the tree.
func (t *Tree) Ancestors(name string) ([]string, bool) {
	node, ok := t.nodes[name]
	if !ok {
		return nil, false
	}
	chain := make([]string, node.Depth+1)
	for i := node.Depth; i >= 0; i-- {
		chain[i] = node.Name
		node = t.nodes[node.Parent]
	}
	return chain, true
}
