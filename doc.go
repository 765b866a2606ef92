/*
Package thicket is a conditional tree computation engine for attack and
risk tree modelling. It evaluates boolean conditions over typed
configuration attributes, materializes trees into condition-resolved
views, and follows cross-tree node references to build dependency graphs.

# Concept

Thicket treats a threat model as a set of trees owned by projects. Nodes
may carry a condition over the project's selected configuration; when a
tree is read it is materialized, meaning every condition is evaluated and
each node comes back flagged with whether it currently applies. Nodes may
also reference nodes owned by other trees, and the engine resolves those
references downward into a directed acyclic graph of dependent trees.

Every tree write is recorded in an append-only history ledger first, so a
bad edit is always one undo away.

# Key Features

  - Fail-closed evaluation: a condition that cannot be evaluated, for any
    reason, resolves to false rather than silently passing.
  - Hexagonal architecture: the core engine speaks to storage through
    ports, with in-memory, Redis and Badger adapters included.
  - Append-only history: versions are never rewritten, and undo is a
    deletion of the newest entry, not a mutation.
  - Multi-tenant: every operation is scoped to a tenant namespace.

# Usage

Initialize the engine with defaults (everything in memory) and work
through the facade:

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/thicket"
	)

	func main() {
		eng, err := thicket.New()
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		project, err := eng.CreateProject(ctx, "default", "My Threat Model", "")
		if err != nil {
			log.Fatal(err)
		}

		tree, err := eng.CreateTree(ctx, "default", project.ID, "Initial Access")
		if err != nil {
			log.Fatal(err)
		}

		computed, err := eng.Materialize(ctx, "default", project.ID, tree.ID)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("tree %s has %d nodes", computed.Title, len(computed.Nodes))
	}
*/
package thicket
