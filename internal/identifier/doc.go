// Package identifier implements hierarchical namespace paths of the form
// db::table::field.
//
// An Identifier is a singly-linked chain: each node holds its own base
// segment and an optional pointer to its parent. Relations use Identifier to
// name themselves and their columns; internal/query uses it to qualify
// fields across joined relations and to detect shared-prefix collisions that
// RelationDefinition.StripHighestPrefix resolves.
package identifier
