// Package query implements the relational-algebra operator tree: QueryNode
// construction, Condition/ConditionOperation/Operand predicates, a
// cost-based Optimizer applying structural rewrites, and an Executor that
// walks an optimized tree into a QueryResult tagged BlockStream (a Source
// result, re-reading its relation's blocks on every scan) or Materialized
// (every other operator's fixed output), so CrossProduct/InnerJoin can run
// a genuine block-nested loop against a repeatable Source instead of always
// pre-draining both sides into tuple slices.
//
// Nodes are plain Go struct pointers rather than an arena of integer
// handles — mirroring the "owning trees with back-references" pattern the
// original's design notes flag for re-architecture, but a direct pointer
// tree is the idiomatic Go shape here (see the rewrite-tree style borrowed
// from dolthub/go-mysql-server's analyzer memo) since nothing in this
// package needs the node count to outlive a single query's optimize/execute
// call.
package query
